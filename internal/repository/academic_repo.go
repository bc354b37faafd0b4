package repository

import (
	"context"

	"clearance/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeanRepository defines data access for academic schools.
type DeanRepository interface {
	Create(ctx context.Context, dean *model.Dean) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Dean, error)
	FindByCode(ctx context.Context, code string) (*model.Dean, error)
	List(ctx context.Context) ([]model.Dean, error)
}

type deanRepository struct {
	db *gorm.DB
}

func NewDeanRepository(db *gorm.DB) DeanRepository {
	return &deanRepository{db: db}
}

func (r *deanRepository) Create(ctx context.Context, dean *model.Dean) error {
	return GetDB(ctx, r.db).Create(dean).Error
}

func (r *deanRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Dean, error) {
	var dean model.Dean
	if err := GetDB(ctx, r.db).First(&dean, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &dean, nil
}

func (r *deanRepository) FindByCode(ctx context.Context, code string) (*model.Dean, error) {
	var dean model.Dean
	if err := GetDB(ctx, r.db).First(&dean, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &dean, nil
}

func (r *deanRepository) List(ctx context.Context) ([]model.Dean, error) {
	var deans []model.Dean
	if err := GetDB(ctx, r.db).Order("code").Find(&deans).Error; err != nil {
		return nil, err
	}
	return deans, nil
}

// CourseRepository defines data access for academic programs.
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	FindByCode(ctx context.Context, code string) (*model.Course, error)
	List(ctx context.Context) ([]model.Course, error)
	ListByDean(ctx context.Context, deanID uuid.UUID) ([]model.Course, error)
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *model.Course) error {
	return GetDB(ctx, r.db).Create(course).Error
}

func (r *courseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	var course model.Course
	if err := GetDB(ctx, r.db).Preload("Dean").First(&course, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) FindByCode(ctx context.Context, code string) (*model.Course, error) {
	var course model.Course
	if err := GetDB(ctx, r.db).Preload("Dean").First(&course, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) List(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	if err := GetDB(ctx, r.db).Preload("Dean").Order("code").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) ListByDean(ctx context.Context, deanID uuid.UUID) ([]model.Course, error) {
	var courses []model.Course
	if err := GetDB(ctx, r.db).Where("dean_id = ?", deanID).Order("code").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}
