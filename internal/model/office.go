package model

import (
	"time"

	"github.com/google/uuid"
)

// OfficeCategory enum constants
const (
	OfficeCategoryDeanOffice = "DEAN_OFFICE" // office of an academic school's dean
	OfficeCategorySSB        = "SSB"         // school-services bureau, scoped to one school
	OfficeCategoryDormitory  = "DORMITORY"
	OfficeCategoryOther      = "OTHER" // library, accounting, registrar, ...
)

// Office represents a clearance-issuing unit students must get sign-off from.
// DEAN_OFFICE and SSB offices are affiliated with a specific dean; the
// dormitory office is special-cased by the approval rules.
type Office struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Category    string     `gorm:"type:varchar(20);not null;default:'OTHER';index" json:"category"`
	DeanID      *uuid.UUID `gorm:"type:uuid;index" json:"dean_id"`
	Dean        *Dean      `gorm:"foreignKey:DeanID" json:"dean,omitempty"`
	Description string     `gorm:"type:text" json:"description"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// ValidOfficeCategory reports whether cat is one of the known office categories.
func ValidOfficeCategory(cat string) bool {
	switch cat {
	case OfficeCategoryDeanOffice, OfficeCategorySSB, OfficeCategoryDormitory, OfficeCategoryOther:
		return true
	}
	return false
}
