package model

import (
	"time"

	"github.com/google/uuid"
)

// Dean represents an academic school headed by a dean. Courses, dean
// offices, SSB offices and program chairs are all scoped to a dean.
type Dean struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Code      string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"code"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Course represents an academic program. Every course belongs to exactly
// one dean, which is what the SSB cross-school approval rule checks against.
type Course struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code      string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	DeanID    uuid.UUID `gorm:"type:uuid;not null;index" json:"dean_id"`
	Dean      *Dean     `gorm:"foreignKey:DeanID" json:"dean,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
