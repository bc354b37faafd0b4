package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clearance/internal/model"
	"clearance/internal/repository"
	"clearance/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// --- DTOs ---

type RegisterStudentRequest struct {
	Username      string `json:"username" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=6"`
	FirstName     string `json:"first_name" binding:"required"`
	LastName      string `json:"last_name" binding:"required"`
	StudentNumber string `json:"student_number" binding:"required"`
	CourseCode    string `json:"course_code" binding:"required"`
	YearLevel     int    `json:"year_level" binding:"required,min=1"`
	IsBoarder     bool   `json:"is_boarder"`
}

type ActivateStudentRequest struct {
	SchoolYear string `json:"school_year" binding:"required"`
	Semester   string `json:"semester" binding:"required"`
}

type StudentResponse struct {
	ID            string `json:"id"`
	StudentNumber string `json:"student_number"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	CourseCode    string `json:"course_code"`
	CourseName    string `json:"course_name"`
	YearLevel     int    `json:"year_level"`
	IsBoarder     bool   `json:"is_boarder"`
	Status        string `json:"status"`
	HasDormOwner  bool   `json:"has_dorm_owner"`
	CreatedAt     string `json:"created_at"`
}

// StudentService owns student registration and the admin activation flow.
// Activation is what triggers the first clearance request batch for the
// term; rejection removes the account and everything hanging off it.
type StudentService interface {
	Register(ctx context.Context, req RegisterStudentRequest) (*StudentResponse, error)
	Activate(ctx context.Context, studentID, adminUserID uuid.UUID, req ActivateStudentRequest) (*StudentResponse, error)
	Reject(ctx context.Context, studentID, adminUserID uuid.UUID) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*StudentResponse, error)
	List(ctx context.Context, status string, page, limit int) ([]StudentResponse, int64, error)
	AssignProgramChair(ctx context.Context, studentID, chairID, adminUserID uuid.UUID) error
	AssignDormOwner(ctx context.Context, studentID, staffID, adminUserID uuid.UUID, boardingFee decimal.Decimal) error
}

type studentService struct {
	users     repository.UserRepository
	students  repository.StudentRepository
	staff     repository.StaffRepository
	chairs    repository.ProgramChairRepository
	courses   repository.CourseRepository
	payments  repository.PaymentRepository
	audit     repository.AuditRepository
	txm       repository.TransactionManager
	clearance ClearanceService
	logger    zerolog.Logger
}

func NewStudentService(
	users repository.UserRepository,
	students repository.StudentRepository,
	staff repository.StaffRepository,
	chairs repository.ProgramChairRepository,
	courses repository.CourseRepository,
	payments repository.PaymentRepository,
	audit repository.AuditRepository,
	txm repository.TransactionManager,
	clearance ClearanceService,
	logger zerolog.Logger,
) StudentService {
	return &studentService{
		users:     users,
		students:  students,
		staff:     staff,
		chairs:    chairs,
		courses:   courses,
		payments:  payments,
		audit:     audit,
		txm:       txm,
		clearance: clearance,
		logger:    logger,
	}
}

func (s *studentService) Register(ctx context.Context, req RegisterStudentRequest) (*StudentResponse, error) {
	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return nil, apperror.Validation("username already taken")
	}
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperror.Validation("email already registered")
	}
	if _, err := s.students.FindByNumber(ctx, req.StudentNumber); err == nil {
		return nil, apperror.Validation("student number already registered")
	}

	course, err := s.courses.FindByCode(ctx, req.CourseCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Validation("unknown course code %q", req.CourseCode)
		}
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashed),
		Role:      model.RoleStudent,
	}
	student := &model.Student{
		StudentNumber: req.StudentNumber,
		CourseID:      course.ID,
		YearLevel:     req.YearLevel,
		IsBoarder:     req.IsBoarder,
		Status:        model.StudentStatusPending,
	}

	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.users.Create(txCtx, user); createErr != nil {
			return fmt.Errorf("failed to create user: %w", createErr)
		}
		student.UserID = user.ID
		if createErr := s.students.Create(txCtx, student); createErr != nil {
			return fmt.Errorf("failed to create student profile: %w", createErr)
		}
		return s.writeAudit(txCtx, &user.ID, model.ActionRegisterStudent, student.ID.String(), req.StudentNumber, map[string]interface{}{
			"course":     req.CourseCode,
			"year_level": req.YearLevel,
			"is_boarder": req.IsBoarder,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("student", req.StudentNumber).Msg("student registered, awaiting activation")
	student.User = user
	student.Course = course
	return toStudentResponse(student), nil
}

func (s *studentService) Activate(ctx context.Context, studentID, adminUserID uuid.UUID, req ActivateStudentRequest) (*StudentResponse, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("student %s not found", studentID)
		}
		return nil, err
	}
	if student.Status == model.StudentStatusRejected {
		return nil, apperror.InvalidState("a rejected registration cannot be activated")
	}

	if student.Status != model.StudentStatusActive {
		student.Status = model.StudentStatusActive
		err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
			if updateErr := s.students.Update(txCtx, student); updateErr != nil {
				return fmt.Errorf("failed to activate student: %w", updateErr)
			}
			return s.writeAudit(txCtx, &adminUserID, model.ActionActivateStudent, student.ID.String(), student.StudentNumber, nil)
		})
		if err != nil {
			return nil, err
		}
	}

	// Batch creation is idempotent, so re-activating an already active
	// student for the same term is harmless.
	if _, err := s.clearance.InitializeRequests(ctx, student.ID, req.SchoolYear, req.Semester); err != nil {
		return nil, err
	}

	return toStudentResponse(student), nil
}

func (s *studentService) Reject(ctx context.Context, studentID, adminUserID uuid.UUID) error {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("student %s not found", studentID)
		}
		return err
	}
	if student.Status == model.StudentStatusActive {
		return apperror.InvalidState("an active student cannot be rejected; deactivate the account instead")
	}

	// Deleting the user cascades to the student profile, its requests,
	// clearance records and payments through the FK constraints.
	return s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if delErr := s.users.Delete(txCtx, student.UserID); delErr != nil {
			return fmt.Errorf("failed to delete rejected registration: %w", delErr)
		}
		return s.writeAudit(txCtx, &adminUserID, model.ActionRejectStudent, student.ID.String(), student.StudentNumber, nil)
	})
}

func (s *studentService) GetByUserID(ctx context.Context, userID uuid.UUID) (*StudentResponse, error) {
	student, err := s.students.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("student profile not found")
		}
		return nil, err
	}
	return toStudentResponse(student), nil
}

func (s *studentService) List(ctx context.Context, status string, page, limit int) ([]StudentResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	students, total, err := s.students.List(ctx, status, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]StudentResponse, 0, len(students))
	for i := range students {
		res = append(res, *toStudentResponse(&students[i]))
	}
	return res, total, nil
}

func (s *studentService) AssignProgramChair(ctx context.Context, studentID, chairID, adminUserID uuid.UUID) error {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("student %s not found", studentID)
		}
		return err
	}

	chair, err := s.chairs.FindByID(ctx, chairID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("program chair %s not found", chairID)
		}
		return err
	}

	student.ProgramChairID = &chair.ID
	return s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.students.Update(txCtx, student); updateErr != nil {
			return fmt.Errorf("failed to assign program chair: %w", updateErr)
		}
		return s.writeAudit(txCtx, &adminUserID, model.ActionAssignChair, student.ID.String(), student.StudentNumber, map[string]interface{}{
			"program_chair_id": chair.ID.String(),
		})
	})
}

// AssignDormOwner links a boarder to the staff member who manages their
// dormitory clearance, and opens the boarding fee record if none exists.
func (s *studentService) AssignDormOwner(ctx context.Context, studentID, staffID, adminUserID uuid.UUID, boardingFee decimal.Decimal) error {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("student %s not found", studentID)
		}
		return err
	}
	if !student.IsBoarder {
		return apperror.Validation("only boarders can have a dormitory owner")
	}

	staff, err := s.staff.FindByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("staff %s not found", staffID)
		}
		return err
	}
	if !staff.IsDormOwner {
		return apperror.Validation("staff member is not a dormitory owner")
	}

	student.DormOwnerID = &staff.ID
	return s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.students.Update(txCtx, student); updateErr != nil {
			return fmt.Errorf("failed to assign dormitory owner: %w", updateErr)
		}

		if _, findErr := s.payments.FindByStudent(txCtx, student.ID); findErr != nil {
			if !errors.Is(findErr, gorm.ErrRecordNotFound) {
				return findErr
			}
			payment := &model.Payment{
				StudentID: student.ID,
				Amount:    boardingFee,
			}
			if createErr := s.payments.Create(txCtx, payment); createErr != nil {
				return fmt.Errorf("failed to create payment record: %w", createErr)
			}
		}

		return s.writeAudit(txCtx, &adminUserID, model.ActionAssignDormOwner, student.ID.String(), student.StudentNumber, map[string]interface{}{
			"staff_id": staff.ID.String(),
		})
	})
}

func toStudentResponse(student *model.Student) *StudentResponse {
	res := &StudentResponse{
		ID:            student.ID.String(),
		StudentNumber: student.StudentNumber,
		YearLevel:     student.YearLevel,
		IsBoarder:     student.IsBoarder,
		Status:        student.Status,
		HasDormOwner:  student.DormOwnerID != nil,
		CreatedAt:     student.CreatedAt.Format(time.RFC3339),
	}
	if student.User != nil {
		res.FullName = student.User.FullName()
		res.Email = student.User.Email
	}
	if student.Course != nil {
		res.CourseCode = student.Course.Code
		res.CourseName = student.Course.Name
	}
	return res
}

func (s *studentService) writeAudit(ctx context.Context, userID *uuid.UUID, action, entityID, entityName string, details map[string]interface{}) error {
	entry := &model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
	}
	if details != nil {
		payload, _ := json.Marshal(details)
		entry.Details = string(payload)
	}
	if err := s.audit.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
