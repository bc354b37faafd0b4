package repository

import (
	"context"

	"clearance/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OfficeRepository defines data access for clearance-issuing offices.
type OfficeRepository interface {
	Create(ctx context.Context, office *model.Office) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Office, error)
	FindByName(ctx context.Context, name string) (*model.Office, error)
	FindByCategory(ctx context.Context, category string) ([]model.Office, error)
	List(ctx context.Context) ([]model.Office, error)
	ListByDean(ctx context.Context, deanID uuid.UUID) ([]model.Office, error)
	Update(ctx context.Context, office *model.Office) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type officeRepository struct {
	db *gorm.DB
}

func NewOfficeRepository(db *gorm.DB) OfficeRepository {
	return &officeRepository{db: db}
}

func (r *officeRepository) Create(ctx context.Context, office *model.Office) error {
	return GetDB(ctx, r.db).Create(office).Error
}

func (r *officeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Office, error) {
	var office model.Office
	if err := GetDB(ctx, r.db).Preload("Dean").First(&office, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &office, nil
}

func (r *officeRepository) FindByName(ctx context.Context, name string) (*model.Office, error) {
	var office model.Office
	if err := GetDB(ctx, r.db).First(&office, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &office, nil
}

func (r *officeRepository) FindByCategory(ctx context.Context, category string) ([]model.Office, error) {
	var offices []model.Office
	if err := GetDB(ctx, r.db).Where("category = ?", category).Order("name").Find(&offices).Error; err != nil {
		return nil, err
	}
	return offices, nil
}

func (r *officeRepository) List(ctx context.Context) ([]model.Office, error) {
	var offices []model.Office
	if err := GetDB(ctx, r.db).Preload("Dean").Order("name").Find(&offices).Error; err != nil {
		return nil, err
	}
	return offices, nil
}

func (r *officeRepository) ListByDean(ctx context.Context, deanID uuid.UUID) ([]model.Office, error) {
	var offices []model.Office
	if err := GetDB(ctx, r.db).Where("dean_id = ?", deanID).Order("name").Find(&offices).Error; err != nil {
		return nil, err
	}
	return offices, nil
}

func (r *officeRepository) Update(ctx context.Context, office *model.Office) error {
	return GetDB(ctx, r.db).Save(office).Error
}

func (r *officeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Office{}, "id = ?", id).Error
}
