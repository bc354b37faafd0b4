package model

import (
	"time"

	"github.com/google/uuid"
)

// Semester enum constants
const (
	SemesterFirst  = "FIRST"
	SemesterSecond = "SECOND"
	SemesterSummer = "SUMMER"
)

// RequestStatus enum constants
const (
	RequestStatusPending  = "PENDING"
	RequestStatusApproved = "APPROVED"
	RequestStatusDenied   = "DENIED"
)

// ValidSemester reports whether sem is one of the three known semesters.
func ValidSemester(sem string) bool {
	switch sem {
	case SemesterFirst, SemesterSecond, SemesterSummer:
		return true
	}
	return false
}

// ClearanceRequest is one ask of one office by one student for one term.
// At most one live request exists per (student, office, school year,
// semester); the composite unique index enforces it at the store.
type ClearanceRequest struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StudentID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_request_term" json:"student_id"`
	Student      *Student   `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"student,omitempty"`
	OfficeID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_request_term" json:"office_id"`
	Office       *Office    `gorm:"foreignKey:OfficeID" json:"office,omitempty"`
	SchoolYear   string     `gorm:"type:varchar(9);not null;uniqueIndex:idx_request_term" json:"school_year"` // e.g. "2024-2025"
	Semester     string     `gorm:"type:varchar(10);not null;uniqueIndex:idx_request_term" json:"semester"`
	Status       string     `gorm:"type:varchar(10);not null;default:'PENDING';index" json:"status"`
	Remarks      string     `gorm:"type:text" json:"remarks"`
	Notes        string     `gorm:"type:text" json:"notes"` // denial reason
	ReviewedByID *uuid.UUID `gorm:"type:uuid" json:"reviewed_by_id"`
	ReviewedBy   *Staff     `gorm:"foreignKey:ReviewedByID;constraint:OnDelete:SET NULL;" json:"reviewed_by,omitempty"`
	RequestedAt  time.Time  `gorm:"not null" json:"requested_at"`
	ReviewedAt   *time.Time `json:"reviewed_at"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Clearance is the per-student-per-term aggregate. IsCleared is derived
// from the request set (no pending, no denied); PermitUnlocked is the
// program chair's explicit final authorization and is only valid while
// IsCleared holds.
type Clearance struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StudentID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_clearance_term" json:"student_id"`
	Student        *Student   `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"student,omitempty"`
	SchoolYear     string     `gorm:"type:varchar(9);not null;uniqueIndex:idx_clearance_term" json:"school_year"`
	Semester       string     `gorm:"type:varchar(10);not null;uniqueIndex:idx_clearance_term" json:"semester"`
	IsCleared      bool       `gorm:"default:false;index" json:"is_cleared"`
	ClearedAt      *time.Time `json:"cleared_at"`
	PermitUnlocked bool       `gorm:"default:false;index" json:"permit_unlocked"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
