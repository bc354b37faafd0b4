package repository

import (
	"context"

	"clearance/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClearanceRepository defines data access for the per-term aggregate record.
type ClearanceRepository interface {
	Create(ctx context.Context, clearance *model.Clearance) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Clearance, error)
	FindByTerm(ctx context.Context, studentID uuid.UUID, schoolYear, semester string) (*model.Clearance, error)
	Update(ctx context.Context, clearance *model.Clearance) error
}

type clearanceRepository struct {
	db *gorm.DB
}

func NewClearanceRepository(db *gorm.DB) ClearanceRepository {
	return &clearanceRepository{db: db}
}

func (r *clearanceRepository) Create(ctx context.Context, clearance *model.Clearance) error {
	return GetDB(ctx, r.db).Create(clearance).Error
}

func (r *clearanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Clearance, error) {
	var clearance model.Clearance
	err := GetDB(ctx, r.db).
		Preload("Student").
		Preload("Student.User").
		Preload("Student.Course").
		First(&clearance, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &clearance, nil
}

func (r *clearanceRepository) FindByTerm(ctx context.Context, studentID uuid.UUID, schoolYear, semester string) (*model.Clearance, error) {
	var clearance model.Clearance
	err := GetDB(ctx, r.db).
		Where("student_id = ? AND school_year = ? AND semester = ?", studentID, schoolYear, semester).
		First(&clearance).Error
	if err != nil {
		return nil, err
	}
	return &clearance, nil
}

func (r *clearanceRepository) Update(ctx context.Context, clearance *model.Clearance) error {
	return GetDB(ctx, r.db).Save(clearance).Error
}
