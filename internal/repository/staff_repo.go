package repository

import (
	"context"

	"clearance/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StaffRepository defines data access for office staff profiles.
type StaffRepository interface {
	Create(ctx context.Context, staff *model.Staff) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Staff, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Staff, error)
	ListByOffice(ctx context.Context, officeID uuid.UUID) ([]model.Staff, error)
	Update(ctx context.Context, staff *model.Staff) error
}

type staffRepository struct {
	db *gorm.DB
}

func NewStaffRepository(db *gorm.DB) StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) Create(ctx context.Context, staff *model.Staff) error {
	return GetDB(ctx, r.db).Create(staff).Error
}

func (r *staffRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	var staff model.Staff
	if err := GetDB(ctx, r.db).Preload("User").Preload("Office").First(&staff, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Staff, error) {
	var staff model.Staff
	if err := GetDB(ctx, r.db).Preload("User").Preload("Office").First(&staff, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepository) ListByOffice(ctx context.Context, officeID uuid.UUID) ([]model.Staff, error) {
	var staff []model.Staff
	if err := GetDB(ctx, r.db).Preload("User").Where("office_id = ?", officeID).Find(&staff).Error; err != nil {
		return nil, err
	}
	return staff, nil
}

func (r *staffRepository) Update(ctx context.Context, staff *model.Staff) error {
	return GetDB(ctx, r.db).Save(staff).Error
}

// ProgramChairRepository defines data access for program chair profiles.
type ProgramChairRepository interface {
	Create(ctx context.Context, chair *model.ProgramChair) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProgramChair, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.ProgramChair, error)
	FindByDean(ctx context.Context, deanID uuid.UUID) (*model.ProgramChair, error)
	List(ctx context.Context) ([]model.ProgramChair, error)
}

type programChairRepository struct {
	db *gorm.DB
}

func NewProgramChairRepository(db *gorm.DB) ProgramChairRepository {
	return &programChairRepository{db: db}
}

func (r *programChairRepository) Create(ctx context.Context, chair *model.ProgramChair) error {
	return GetDB(ctx, r.db).Create(chair).Error
}

func (r *programChairRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ProgramChair, error) {
	var chair model.ProgramChair
	if err := GetDB(ctx, r.db).Preload("User").Preload("Dean").First(&chair, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &chair, nil
}

func (r *programChairRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.ProgramChair, error) {
	var chair model.ProgramChair
	if err := GetDB(ctx, r.db).Preload("User").Preload("Dean").First(&chair, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &chair, nil
}

func (r *programChairRepository) FindByDean(ctx context.Context, deanID uuid.UUID) (*model.ProgramChair, error) {
	var chair model.ProgramChair
	if err := GetDB(ctx, r.db).Preload("User").First(&chair, "dean_id = ?", deanID).Error; err != nil {
		return nil, err
	}
	return &chair, nil
}

func (r *programChairRepository) List(ctx context.Context) ([]model.ProgramChair, error) {
	var chairs []model.ProgramChair
	if err := GetDB(ctx, r.db).Preload("User").Preload("Dean").Find(&chairs).Error; err != nil {
		return nil, err
	}
	return chairs, nil
}
