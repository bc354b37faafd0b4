package repository

import (
	"context"

	"clearance/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatusCounts holds the per-status request tally for one student term.
type StatusCounts struct {
	Pending  int64
	Approved int64
	Denied   int64
}

// ClearanceRequestRepository defines data access for the request ledger.
type ClearanceRequestRepository interface {
	Create(ctx context.Context, req *model.ClearanceRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ClearanceRequest, error)
	FindByKey(ctx context.Context, studentID, officeID uuid.UUID, schoolYear, semester string) (*model.ClearanceRequest, error)
	ListByTerm(ctx context.Context, studentID uuid.UUID, schoolYear, semester string) ([]model.ClearanceRequest, error)
	ListByOffice(ctx context.Context, officeID uuid.UUID, status string, page, limit int) ([]model.ClearanceRequest, int64, error)
	CountByStatus(ctx context.Context, studentID uuid.UUID, schoolYear, semester string) (StatusCounts, error)
	Update(ctx context.Context, req *model.ClearanceRequest) error
}

type clearanceRequestRepository struct {
	db *gorm.DB
}

func NewClearanceRequestRepository(db *gorm.DB) ClearanceRequestRepository {
	return &clearanceRequestRepository{db: db}
}

func (r *clearanceRequestRepository) Create(ctx context.Context, req *model.ClearanceRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *clearanceRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ClearanceRequest, error) {
	var req model.ClearanceRequest
	err := GetDB(ctx, r.db).
		Preload("Office").
		Preload("Student").
		Preload("Student.Course").
		Preload("ReviewedBy").
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *clearanceRequestRepository) FindByKey(ctx context.Context, studentID, officeID uuid.UUID, schoolYear, semester string) (*model.ClearanceRequest, error) {
	var req model.ClearanceRequest
	err := GetDB(ctx, r.db).
		Where("student_id = ? AND office_id = ? AND school_year = ? AND semester = ?", studentID, officeID, schoolYear, semester).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *clearanceRequestRepository) ListByTerm(ctx context.Context, studentID uuid.UUID, schoolYear, semester string) ([]model.ClearanceRequest, error) {
	var reqs []model.ClearanceRequest
	err := GetDB(ctx, r.db).
		Preload("Office").
		Preload("ReviewedBy").
		Preload("ReviewedBy.User").
		Where("student_id = ? AND school_year = ? AND semester = ?", studentID, schoolYear, semester).
		Order("requested_at").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *clearanceRequestRepository) ListByOffice(ctx context.Context, officeID uuid.UUID, status string, page, limit int) ([]model.ClearanceRequest, int64, error) {
	var reqs []model.ClearanceRequest
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.ClearanceRequest{}).Where("office_id = ?", officeID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.
		Preload("Student").
		Preload("Student.User").
		Preload("Student.Course").
		Order("requested_at").
		Offset(offset).Limit(limit).
		Find(&reqs).Error
	if err != nil {
		return nil, 0, err
	}

	return reqs, total, nil
}

func (r *clearanceRequestRepository) CountByStatus(ctx context.Context, studentID uuid.UUID, schoolYear, semester string) (StatusCounts, error) {
	var rows []struct {
		Status string
		N      int64
	}
	err := GetDB(ctx, r.db).
		Model(&model.ClearanceRequest{}).
		Select("status, count(*) as n").
		Where("student_id = ? AND school_year = ? AND semester = ?", studentID, schoolYear, semester).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return StatusCounts{}, err
	}

	var counts StatusCounts
	for _, row := range rows {
		switch row.Status {
		case model.RequestStatusPending:
			counts.Pending = row.N
		case model.RequestStatusApproved:
			counts.Approved = row.N
		case model.RequestStatusDenied:
			counts.Denied = row.N
		}
	}
	return counts, nil
}

func (r *clearanceRequestRepository) Update(ctx context.Context, req *model.ClearanceRequest) error {
	return GetDB(ctx, r.db).Save(req).Error
}
