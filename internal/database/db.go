package database

import (
	"clearance/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models. Order matters: referenced tables first.
	err = db.AutoMigrate(
		&model.Dean{},
		&model.Course{},
		&model.Office{},
		&model.User{},
		&model.RefreshToken{},
		&model.Staff{},
		&model.ProgramChair{},
		&model.Student{},
		&model.ClearanceRequest{},
		&model.Clearance{},
		&model.Payment{},
		&model.AuditLog{},
	)
	if err != nil {
		log.Warn().Err(err).Msg("failed to auto-migrate models")
	}

	return db, nil
}
