package model

import (
	"time"

	"github.com/google/uuid"
)

// Staff represents an office employee who reviews clearance requests for
// their office. IsDormOwner grants the dormitory-owner capability; the
// approval rules additionally require a per-student assignment before a
// dormitory owner may act.
type Staff struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User        *User     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`
	OfficeID    uuid.UUID `gorm:"type:uuid;not null;index" json:"office_id"`
	Office      *Office   `gorm:"foreignKey:OfficeID" json:"office,omitempty"`
	Title       string    `gorm:"type:varchar(100)" json:"title"`
	IsDormOwner bool      `gorm:"default:false" json:"is_dorm_owner"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ProgramChair is the school-level approver who unlocks permit printing
// once a student is cleared by every office.
type ProgramChair struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`
	DeanID    uuid.UUID `gorm:"type:uuid;not null;index" json:"dean_id"`
	Dean      *Dean     `gorm:"foreignKey:DeanID" json:"dean,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
