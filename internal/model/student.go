package model

import (
	"time"

	"github.com/google/uuid"
)

// StudentStatus enum constants. Registration creates students in PENDING;
// an administrator activates or rejects the account.
const (
	StudentStatusPending  = "PENDING"
	StudentStatusActive   = "ACTIVE"
	StudentStatusRejected = "REJECTED"
)

// Student represents a clearance-seeking principal. DormOwnerID is only
// meaningful for boarders: it names the staff member (dormitory owner)
// allowed to act on this student's dormitory request and payment record.
type Student struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User           *User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`
	StudentNumber  string     `gorm:"type:varchar(20);uniqueIndex;not null" json:"student_number"`
	CourseID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"course_id"`
	Course         *Course    `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	YearLevel      int        `gorm:"not null" json:"year_level"`
	IsBoarder      bool       `gorm:"default:false" json:"is_boarder"`
	Status         string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	ProgramChairID *uuid.UUID `gorm:"type:uuid;index" json:"program_chair_id"`
	DormOwnerID    *uuid.UUID `gorm:"type:uuid;index" json:"dorm_owner_id"` // staff id, boarders only
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
