package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"clearance/internal/model"
	"clearance/internal/repository"
	"clearance/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateOfficeRequest struct {
	Name        string `json:"name" binding:"required"`
	Category    string `json:"category" binding:"required"`
	DeanCode    string `json:"dean_code"`
	Description string `json:"description"`
}

type UpdateOfficeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type OfficeResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	DeanCode    *string `json:"dean_code"`
	Description string  `json:"description"`
}

// OfficeService is the office registry: the catalog of clearance-issuing
// units plus the per-student required set.
type OfficeService interface {
	Create(ctx context.Context, req CreateOfficeRequest, adminUserID uuid.UUID) (*OfficeResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*OfficeResponse, error)
	List(ctx context.Context) ([]OfficeResponse, error)
	ListByDean(ctx context.Context, deanCode string) ([]OfficeResponse, error)
	RequiredForStudent(ctx context.Context, studentID uuid.UUID) ([]OfficeResponse, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateOfficeRequest, adminUserID uuid.UUID) (*OfficeResponse, error)
	Delete(ctx context.Context, id uuid.UUID, adminUserID uuid.UUID) error
}

type officeService struct {
	offices  repository.OfficeRepository
	deans    repository.DeanRepository
	students repository.StudentRepository
	audit    repository.AuditRepository
	txm      repository.TransactionManager
}

func NewOfficeService(
	offices repository.OfficeRepository,
	deans repository.DeanRepository,
	students repository.StudentRepository,
	audit repository.AuditRepository,
	txm repository.TransactionManager,
) OfficeService {
	return &officeService{
		offices:  offices,
		deans:    deans,
		students: students,
		audit:    audit,
		txm:      txm,
	}
}

func (s *officeService) Create(ctx context.Context, req CreateOfficeRequest, adminUserID uuid.UUID) (*OfficeResponse, error) {
	if !model.ValidOfficeCategory(req.Category) {
		return nil, apperror.Validation("unknown office category %q", req.Category)
	}
	if _, err := s.offices.FindByName(ctx, req.Name); err == nil {
		return nil, apperror.Validation("an office named %q already exists", req.Name)
	}

	office := &model.Office{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
	}

	// Dean/SSB offices must be tied to a school; others must not be.
	switch req.Category {
	case model.OfficeCategoryDeanOffice, model.OfficeCategorySSB:
		if req.DeanCode == "" {
			return nil, apperror.Validation("%s offices require a dean code", req.Category)
		}
		dean, err := s.deans.FindByCode(ctx, req.DeanCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.Validation("unknown dean code %q", req.DeanCode)
			}
			return nil, err
		}
		office.DeanID = &dean.ID
		office.Dean = dean
	default:
		if req.DeanCode != "" {
			return nil, apperror.Validation("%s offices cannot be tied to a dean", req.Category)
		}
	}

	err := s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.offices.Create(txCtx, office); createErr != nil {
			return fmt.Errorf("failed to create office: %w", createErr)
		}
		return s.writeOfficeAudit(txCtx, adminUserID, model.ActionCreateOffice, office)
	})
	if err != nil {
		return nil, err
	}

	return toOfficeResponse(office), nil
}

func (s *officeService) GetByID(ctx context.Context, id uuid.UUID) (*OfficeResponse, error) {
	office, err := s.offices.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("office %s not found", id)
		}
		return nil, err
	}
	return toOfficeResponse(office), nil
}

func (s *officeService) List(ctx context.Context) ([]OfficeResponse, error) {
	offices, err := s.offices.List(ctx)
	if err != nil {
		return nil, err
	}
	return toOfficeResponses(offices), nil
}

func (s *officeService) ListByDean(ctx context.Context, deanCode string) ([]OfficeResponse, error) {
	dean, err := s.deans.FindByCode(ctx, deanCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("dean %q not found", deanCode)
		}
		return nil, err
	}

	offices, err := s.offices.ListByDean(ctx, dean.ID)
	if err != nil {
		return nil, err
	}
	return toOfficeResponses(offices), nil
}

// RequiredForStudent returns every office except the dormitory one, which
// only boarders must clear. The set is a union, so an explicitly listed
// dormitory office is never duplicated.
func (s *officeService) RequiredForStudent(ctx context.Context, studentID uuid.UUID) ([]OfficeResponse, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("student %s not found", studentID)
		}
		return nil, err
	}

	all, err := s.offices.List(ctx)
	if err != nil {
		return nil, err
	}

	required := make([]model.Office, 0, len(all))
	for _, office := range all {
		if office.Category == model.OfficeCategoryDormitory && !student.IsBoarder {
			continue
		}
		required = append(required, office)
	}
	return toOfficeResponses(required), nil
}

func (s *officeService) Update(ctx context.Context, id uuid.UUID, req UpdateOfficeRequest, adminUserID uuid.UUID) (*OfficeResponse, error) {
	office, err := s.offices.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("office %s not found", id)
		}
		return nil, err
	}

	if req.Name != "" && req.Name != office.Name {
		if _, findErr := s.offices.FindByName(ctx, req.Name); findErr == nil {
			return nil, apperror.Validation("an office named %q already exists", req.Name)
		}
		office.Name = req.Name
	}
	if req.Description != "" {
		office.Description = req.Description
	}

	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.offices.Update(txCtx, office); updateErr != nil {
			return fmt.Errorf("failed to update office: %w", updateErr)
		}
		return s.writeOfficeAudit(txCtx, adminUserID, model.ActionUpdateOffice, office)
	})
	if err != nil {
		return nil, err
	}

	return toOfficeResponse(office), nil
}

func (s *officeService) Delete(ctx context.Context, id uuid.UUID, adminUserID uuid.UUID) error {
	office, err := s.offices.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("office %s not found", id)
		}
		return err
	}

	return s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if delErr := s.offices.Delete(txCtx, id); delErr != nil {
			return fmt.Errorf("failed to delete office: %w", delErr)
		}
		return s.writeOfficeAudit(txCtx, adminUserID, model.ActionDeleteOffice, office)
	})
}

func toOfficeResponse(office *model.Office) *OfficeResponse {
	res := &OfficeResponse{
		ID:          office.ID.String(),
		Name:        office.Name,
		Category:    office.Category,
		Description: office.Description,
	}
	if office.Dean != nil {
		code := office.Dean.Code
		res.DeanCode = &code
	}
	return res
}

func toOfficeResponses(offices []model.Office) []OfficeResponse {
	res := make([]OfficeResponse, 0, len(offices))
	for i := range offices {
		res = append(res, *toOfficeResponse(&offices[i]))
	}
	return res
}

func (s *officeService) writeOfficeAudit(ctx context.Context, adminUserID uuid.UUID, action string, office *model.Office) error {
	details, _ := json.Marshal(map[string]interface{}{
		"name":     office.Name,
		"category": office.Category,
	})
	entry := &model.AuditLog{
		UserID:     &adminUserID,
		Action:     action,
		EntityID:   office.ID.String(),
		EntityName: office.Name,
		Details:    string(details),
	}
	if err := s.audit.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
