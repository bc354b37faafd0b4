package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"clearance/internal/model"
	"clearance/internal/repository"
	"clearance/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Broadcaster pushes serialized events to connected dashboard clients.
// Satisfied by *websocket.Hub.
type Broadcaster interface {
	Publish(message []byte)
}

// ClearanceEvent is the payload broadcast when the state machine moves.
type ClearanceEvent struct {
	Type          string `json:"type"` // request_reviewed, student_cleared, permit_unlocked, requests_initialized
	StudentNumber string `json:"student_number,omitempty"`
	OfficeName    string `json:"office_name,omitempty"`
	Status        string `json:"status,omitempty"`
	SchoolYear    string `json:"school_year"`
	Semester      string `json:"semester"`
}

// --- DTOs ---

type ClearanceRequestResponse struct {
	ID          string  `json:"id"`
	OfficeID    string  `json:"office_id"`
	OfficeName  string  `json:"office_name"`
	SchoolYear  string  `json:"school_year"`
	Semester    string  `json:"semester"`
	Status      string  `json:"status"`
	Remarks     string  `json:"remarks"`
	Notes       string  `json:"notes"`
	ReviewedBy  *string `json:"reviewed_by"`
	RequestedAt string  `json:"requested_at"`
	ReviewedAt  *string `json:"reviewed_at"`
}

type ClearanceSummary struct {
	PendingCount   int64      `json:"pending_count"`
	ApprovedCount  int64      `json:"approved_count"`
	DeniedCount    int64      `json:"denied_count"`
	Cleared        bool       `json:"cleared"`
	ClearedAt      *time.Time `json:"cleared_at"`
	PermitUnlocked bool       `json:"permit_unlocked"`
}

type OfficeQueueFilter struct {
	Status string
	Page   int
	Limit  int
}

// ClearanceService owns the clearance state machine: the request ledger,
// the per-term aggregate, and the authorization rules deciding who may
// transition what.
type ClearanceService interface {
	InitializeRequests(ctx context.Context, studentID uuid.UUID, schoolYear, semester string) ([]uuid.UUID, error)
	Approve(ctx context.Context, requestID, reviewerUserID uuid.UUID) error
	Deny(ctx context.Context, requestID, reviewerUserID uuid.UUID, reason string) error
	ReRequest(ctx context.Context, requestID, studentUserID uuid.UUID) error
	UnlockPermit(ctx context.Context, clearanceID, chairUserID uuid.UUID) error
	CanPrint(ctx context.Context, clearanceID, principalUserID uuid.UUID) (bool, error)
	GetSummary(ctx context.Context, studentID uuid.UUID, schoolYear, semester string) (*ClearanceSummary, error)
	ListForStudent(ctx context.Context, studentUserID uuid.UUID, schoolYear, semester string) ([]ClearanceRequestResponse, error)
	ListForOffice(ctx context.Context, reviewerUserID uuid.UUID, filter OfficeQueueFilter) ([]ClearanceRequestResponse, int64, error)
}

type clearanceService struct {
	offices  repository.OfficeRepository
	students repository.StudentRepository
	staff    repository.StaffRepository
	chairs   repository.ProgramChairRepository
	requests repository.ClearanceRequestRepository
	records  repository.ClearanceRepository
	audit    repository.AuditRepository
	txm      repository.TransactionManager
	hub      Broadcaster
	logger   zerolog.Logger
}

func NewClearanceService(
	offices repository.OfficeRepository,
	students repository.StudentRepository,
	staff repository.StaffRepository,
	chairs repository.ProgramChairRepository,
	requests repository.ClearanceRequestRepository,
	records repository.ClearanceRepository,
	audit repository.AuditRepository,
	txm repository.TransactionManager,
	hub Broadcaster,
	logger zerolog.Logger,
) ClearanceService {
	return &clearanceService{
		offices:  offices,
		students: students,
		staff:    staff,
		chairs:   chairs,
		requests: requests,
		records:  records,
		audit:    audit,
		txm:      txm,
		hub:      hub,
		logger:   logger,
	}
}

// requiredOffices returns the office set a student must obtain sign-off
// from: every non-dormitory office, plus the dormitory office for boarders.
func (s *clearanceService) requiredOffices(ctx context.Context, student *model.Student) ([]model.Office, error) {
	all, err := s.offices.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list offices: %w", err)
	}

	required := make([]model.Office, 0, len(all))
	for _, office := range all {
		if office.Category == model.OfficeCategoryDormitory && !student.IsBoarder {
			continue
		}
		required = append(required, office)
	}
	return required, nil
}

func (s *clearanceService) InitializeRequests(ctx context.Context, studentID uuid.UUID, schoolYear, semester string) ([]uuid.UUID, error) {
	if err := validateTerm(schoolYear, semester); err != nil {
		return nil, err
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("student %s not found", studentID)
		}
		return nil, err
	}
	if student.Status != model.StudentStatusActive {
		return nil, apperror.InvalidState("student account is not active")
	}

	required, err := s.requiredOffices(ctx, student)
	if err != nil {
		return nil, err
	}

	if student.IsBoarder && student.DormOwnerID == nil {
		// The dormitory request is still created; nobody can approve it
		// until a dormitory owner is assigned.
		s.logger.Warn().
			Str("student", student.StudentNumber).
			Msg("boarder has no dormitory owner assigned")
	}

	ids := make([]uuid.UUID, 0, len(required))
	created := 0
	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		for _, office := range required {
			existing, findErr := s.requests.FindByKey(txCtx, student.ID, office.ID, schoolYear, semester)
			if findErr == nil {
				ids = append(ids, existing.ID)
				continue
			}
			if !errors.Is(findErr, gorm.ErrRecordNotFound) {
				return findErr
			}

			req := &model.ClearanceRequest{
				StudentID:   student.ID,
				OfficeID:    office.ID,
				SchoolYear:  schoolYear,
				Semester:    semester,
				Status:      model.RequestStatusPending,
				RequestedAt: time.Now(),
			}
			if createErr := s.requests.Create(txCtx, req); createErr != nil {
				return fmt.Errorf("failed to create request for office %s: %w", office.Name, createErr)
			}
			ids = append(ids, req.ID)
			created++
		}

		// The aggregate record is get-or-create keyed by the same term.
		if _, findErr := s.records.FindByTerm(txCtx, student.ID, schoolYear, semester); findErr != nil {
			if !errors.Is(findErr, gorm.ErrRecordNotFound) {
				return findErr
			}
			record := &model.Clearance{
				StudentID:  student.ID,
				SchoolYear: schoolYear,
				Semester:   semester,
			}
			if createErr := s.records.Create(txCtx, record); createErr != nil {
				return fmt.Errorf("failed to create clearance record: %w", createErr)
			}
		}

		if created > 0 {
			return s.writeAudit(txCtx, &student.UserID, model.ActionInitializeRequests, student.ID.String(), student.StudentNumber, map[string]interface{}{
				"school_year": schoolYear,
				"semester":    semester,
				"created":     created,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created > 0 {
		s.broadcast(ClearanceEvent{
			Type:          "requests_initialized",
			StudentNumber: student.StudentNumber,
			SchoolYear:    schoolYear,
			Semester:      semester,
		})
	}
	return ids, nil
}

// authorizeReviewer enforces who may act on a request: the assigned
// dormitory owner for dormitory requests, same-school staff for SSB
// offices, and staff of the matching office otherwise.
func (s *clearanceService) authorizeReviewer(req *model.ClearanceRequest, staff *model.Staff) error {
	office := req.Office
	student := req.Student
	if office == nil || student == nil {
		return fmt.Errorf("request %s loaded without relations", req.ID)
	}

	if office.Category == model.OfficeCategoryDormitory {
		if !staff.IsDormOwner {
			return apperror.Unauthorized("only a dormitory owner may act on dormitory requests")
		}
		if student.DormOwnerID == nil || *student.DormOwnerID != staff.ID {
			return apperror.Unauthorized("dormitory owners may only act on students assigned to them")
		}
		return nil
	}

	if staff.OfficeID != office.ID {
		return apperror.Unauthorized("staff of %q may not act on requests for %q", staffOfficeName(staff), office.Name)
	}

	if office.Category == model.OfficeCategorySSB {
		course := student.Course
		if office.DeanID == nil || course == nil || course.DeanID != *office.DeanID {
			return apperror.Unauthorized("school services staff may only act on students of their own school")
		}
	}
	return nil
}

func staffOfficeName(staff *model.Staff) string {
	if staff.Office != nil {
		return staff.Office.Name
	}
	return staff.OfficeID.String()
}

func (s *clearanceService) Approve(ctx context.Context, requestID, reviewerUserID uuid.UUID) error {
	return s.review(ctx, requestID, reviewerUserID, model.RequestStatusApproved, "")
}

func (s *clearanceService) Deny(ctx context.Context, requestID, reviewerUserID uuid.UUID, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return apperror.Validation("a denial reason is required")
	}
	return s.review(ctx, requestID, reviewerUserID, model.RequestStatusDenied, reason)
}

func (s *clearanceService) review(ctx context.Context, requestID, reviewerUserID uuid.UUID, status, reason string) error {
	staff, err := s.staff.FindByUserID(ctx, reviewerUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Unauthorized("reviewer is not a staff member")
		}
		return err
	}

	var event ClearanceEvent
	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		req, findErr := s.requests.FindByID(txCtx, requestID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("clearance request %s not found", requestID)
			}
			return findErr
		}

		if authErr := s.authorizeReviewer(req, staff); authErr != nil {
			return authErr
		}
		if req.Status != model.RequestStatusPending {
			return apperror.InvalidState("request is already %s", strings.ToLower(req.Status))
		}

		now := time.Now()
		req.Status = status
		req.ReviewedByID = &staff.ID
		req.ReviewedAt = &now
		if status == model.RequestStatusDenied {
			req.Notes = reason
		}
		if updateErr := s.requests.Update(txCtx, req); updateErr != nil {
			return fmt.Errorf("failed to update request: %w", updateErr)
		}

		record, recErr := s.recompute(txCtx, req.StudentID, req.SchoolYear, req.Semester)
		if recErr != nil {
			return recErr
		}

		action := model.ActionApproveRequest
		if status == model.RequestStatusDenied {
			action = model.ActionDenyRequest
		}
		details := map[string]interface{}{
			"office":      req.Office.Name,
			"school_year": req.SchoolYear,
			"semester":    req.Semester,
		}
		if reason != "" {
			details["reason"] = reason
		}
		if auditErr := s.writeAudit(txCtx, &reviewerUserID, action, req.ID.String(), req.Student.StudentNumber, details); auditErr != nil {
			return auditErr
		}

		event = ClearanceEvent{
			Type:          "request_reviewed",
			StudentNumber: req.Student.StudentNumber,
			OfficeName:    req.Office.Name,
			Status:        status,
			SchoolYear:    req.SchoolYear,
			Semester:      req.Semester,
		}
		if record.IsCleared {
			event.Type = "student_cleared"
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.broadcast(event)
	return nil
}

func (s *clearanceService) ReRequest(ctx context.Context, requestID, studentUserID uuid.UUID) error {
	student, err := s.students.FindByUserID(ctx, studentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Unauthorized("only students may resubmit clearance requests")
		}
		return err
	}

	return s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		req, findErr := s.requests.FindByID(txCtx, requestID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("clearance request %s not found", requestID)
			}
			return findErr
		}

		if req.StudentID != student.ID {
			return apperror.Unauthorized("students may only resubmit their own requests")
		}
		if req.Status != model.RequestStatusDenied {
			return apperror.InvalidState("only denied requests may be resubmitted")
		}

		req.Status = model.RequestStatusPending
		req.Notes = ""
		req.Remarks = ""
		req.ReviewedByID = nil
		req.ReviewedAt = nil
		req.RequestedAt = time.Now()
		if updateErr := s.requests.Update(txCtx, req); updateErr != nil {
			return fmt.Errorf("failed to reset request: %w", updateErr)
		}

		// A reopened request can pull the term back out of cleared state,
		// which also revokes any permit authorization.
		if _, recErr := s.recompute(txCtx, req.StudentID, req.SchoolYear, req.Semester); recErr != nil {
			return recErr
		}

		return s.writeAudit(txCtx, &studentUserID, model.ActionReRequest, req.ID.String(), student.StudentNumber, map[string]interface{}{
			"office":      req.Office.Name,
			"school_year": req.SchoolYear,
			"semester":    req.Semester,
		})
	})
}

// recompute re-derives the aggregate record from the request set. Cleared
// holds iff no request is pending and none is denied. The cleared date is
// stamped on the transition in and wiped on the transition out, which also
// revokes the permit authorization.
func (s *clearanceService) recompute(ctx context.Context, studentID uuid.UUID, schoolYear, semester string) (*model.Clearance, error) {
	counts, err := s.requests.CountByStatus(ctx, studentID, schoolYear, semester)
	if err != nil {
		return nil, fmt.Errorf("failed to count requests: %w", err)
	}

	record, err := s.records.FindByTerm(ctx, studentID, schoolYear, semester)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("no clearance record for this term")
		}
		return nil, err
	}

	cleared := counts.Pending == 0 && counts.Denied == 0
	switch {
	case cleared && !record.IsCleared:
		now := time.Now()
		record.IsCleared = true
		record.ClearedAt = &now
	case !cleared && record.IsCleared:
		record.IsCleared = false
		record.ClearedAt = nil
		record.PermitUnlocked = false
	default:
		return record, nil
	}

	if err := s.records.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update clearance record: %w", err)
	}
	return record, nil
}

// resolveChair reports whether the chair is responsible for the student:
// a direct assignment wins, otherwise the chair of the dean owning the
// student's course.
func resolveChair(student *model.Student, chair *model.ProgramChair) bool {
	if student.ProgramChairID != nil {
		return *student.ProgramChairID == chair.ID
	}
	return student.Course != nil && student.Course.DeanID == chair.DeanID
}

func (s *clearanceService) UnlockPermit(ctx context.Context, clearanceID, chairUserID uuid.UUID) error {
	chair, err := s.chairs.FindByUserID(ctx, chairUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Unauthorized("only a program chair may unlock permits")
		}
		return err
	}

	var event ClearanceEvent
	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		record, findErr := s.records.FindByID(txCtx, clearanceID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("clearance %s not found", clearanceID)
			}
			return findErr
		}

		if record.Student == nil {
			return fmt.Errorf("clearance %s loaded without student", record.ID)
		}
		if !resolveChair(record.Student, chair) {
			return apperror.Unauthorized("only the student's program chair may unlock the permit")
		}
		if !record.IsCleared {
			return apperror.InvalidState("cannot unlock: student not cleared by all offices")
		}
		if record.PermitUnlocked {
			return nil // unlock is one-way and idempotent
		}

		record.PermitUnlocked = true
		if updateErr := s.records.Update(txCtx, record); updateErr != nil {
			return fmt.Errorf("failed to unlock permit: %w", updateErr)
		}

		if auditErr := s.writeAudit(txCtx, &chairUserID, model.ActionUnlockPermit, record.ID.String(), record.Student.StudentNumber, map[string]interface{}{
			"school_year": record.SchoolYear,
			"semester":    record.Semester,
		}); auditErr != nil {
			return auditErr
		}

		event = ClearanceEvent{
			Type:          "permit_unlocked",
			StudentNumber: record.Student.StudentNumber,
			SchoolYear:    record.SchoolYear,
			Semester:      record.Semester,
		}
		return nil
	})
	if err != nil {
		return err
	}

	if event.Type != "" {
		s.broadcast(event)
	}
	return nil
}

// CanPrint is the read-side gate in front of permit rendering: only the
// student's program chair, and only after the permit is unlocked.
func (s *clearanceService) CanPrint(ctx context.Context, clearanceID, principalUserID uuid.UUID) (bool, error) {
	record, err := s.records.FindByID(ctx, clearanceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperror.NotFound("clearance %s not found", clearanceID)
		}
		return false, err
	}

	chair, err := s.chairs.FindByUserID(ctx, principalUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if record.Student == nil || !resolveChair(record.Student, chair) {
		return false, nil
	}
	return record.PermitUnlocked, nil
}

func (s *clearanceService) GetSummary(ctx context.Context, studentID uuid.UUID, schoolYear, semester string) (*ClearanceSummary, error) {
	record, err := s.records.FindByTerm(ctx, studentID, schoolYear, semester)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("no clearance record for this term")
		}
		return nil, err
	}

	counts, err := s.requests.CountByStatus(ctx, studentID, schoolYear, semester)
	if err != nil {
		return nil, err
	}

	return &ClearanceSummary{
		PendingCount:   counts.Pending,
		ApprovedCount:  counts.Approved,
		DeniedCount:    counts.Denied,
		Cleared:        record.IsCleared,
		ClearedAt:      record.ClearedAt,
		PermitUnlocked: record.PermitUnlocked,
	}, nil
}

func (s *clearanceService) ListForStudent(ctx context.Context, studentUserID uuid.UUID, schoolYear, semester string) ([]ClearanceRequestResponse, error) {
	student, err := s.students.FindByUserID(ctx, studentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("student profile not found")
		}
		return nil, err
	}

	reqs, err := s.requests.ListByTerm(ctx, student.ID, schoolYear, semester)
	if err != nil {
		return nil, err
	}

	res := make([]ClearanceRequestResponse, 0, len(reqs))
	for i := range reqs {
		res = append(res, toRequestResponse(&reqs[i]))
	}
	return res, nil
}

func (s *clearanceService) ListForOffice(ctx context.Context, reviewerUserID uuid.UUID, filter OfficeQueueFilter) ([]ClearanceRequestResponse, int64, error) {
	staff, err := s.staff.FindByUserID(ctx, reviewerUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, apperror.Unauthorized("reviewer is not a staff member")
		}
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	reqs, total, err := s.requests.ListByOffice(ctx, staff.OfficeID, filter.Status, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]ClearanceRequestResponse, 0, len(reqs))
	for i := range reqs {
		res = append(res, toRequestResponse(&reqs[i]))
	}
	return res, total, nil
}

// --- helpers ---

func validateTerm(schoolYear, semester string) error {
	if strings.TrimSpace(schoolYear) == "" {
		return apperror.Validation("school year is required")
	}
	if !model.ValidSemester(semester) {
		return apperror.Validation("semester must be FIRST, SECOND or SUMMER")
	}
	return nil
}

func toRequestResponse(req *model.ClearanceRequest) ClearanceRequestResponse {
	res := ClearanceRequestResponse{
		ID:          req.ID.String(),
		OfficeID:    req.OfficeID.String(),
		SchoolYear:  req.SchoolYear,
		Semester:    req.Semester,
		Status:      req.Status,
		Remarks:     req.Remarks,
		Notes:       req.Notes,
		RequestedAt: req.RequestedAt.Format(time.RFC3339),
	}
	if req.Office != nil {
		res.OfficeName = req.Office.Name
	}
	if req.ReviewedByID != nil {
		id := req.ReviewedByID.String()
		res.ReviewedBy = &id
	}
	if req.ReviewedAt != nil {
		at := req.ReviewedAt.Format(time.RFC3339)
		res.ReviewedAt = &at
	}
	return res
}

func (s *clearanceService) writeAudit(ctx context.Context, userID *uuid.UUID, action, entityID, entityName string, details map[string]interface{}) error {
	payload, _ := json.Marshal(details)
	entry := &model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(payload),
	}
	if err := s.audit.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *clearanceService) broadcast(event ClearanceEvent) {
	if s.hub == nil || event.Type == "" {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to marshal clearance event")
		return
	}
	s.hub.Publish(payload)
}
