package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clearance/internal/model"
	"clearance/internal/repository"
	"clearance/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentResponse struct {
	ID        string  `json:"id"`
	StudentID string  `json:"student_id"`
	Amount    string  `json:"amount"`
	IsPaid    bool    `json:"is_paid"`
	PaidAt    *string `json:"paid_at"`
}

// PaymentService tracks the boarding fee of boarder students. Only the
// dormitory owner assigned to a student may flip their paid flag; the flag
// gates nothing in the clearance state machine.
type PaymentService interface {
	GetForStudent(ctx context.Context, studentUserID uuid.UUID) (*PaymentResponse, error)
	MarkPaid(ctx context.Context, paymentID, staffUserID uuid.UUID) (*PaymentResponse, error)
	MarkUnpaid(ctx context.Context, paymentID, staffUserID uuid.UUID) (*PaymentResponse, error)
}

type paymentService struct {
	payments repository.PaymentRepository
	students repository.StudentRepository
	staff    repository.StaffRepository
	audit    repository.AuditRepository
	txm      repository.TransactionManager
}

func NewPaymentService(
	payments repository.PaymentRepository,
	students repository.StudentRepository,
	staff repository.StaffRepository,
	audit repository.AuditRepository,
	txm repository.TransactionManager,
) PaymentService {
	return &paymentService{
		payments: payments,
		students: students,
		staff:    staff,
		audit:    audit,
		txm:      txm,
	}
}

func (s *paymentService) GetForStudent(ctx context.Context, studentUserID uuid.UUID) (*PaymentResponse, error) {
	student, err := s.students.FindByUserID(ctx, studentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("student profile not found")
		}
		return nil, err
	}

	payment, err := s.payments.FindByStudent(ctx, student.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("no payment record for this student")
		}
		return nil, err
	}
	return toPaymentResponse(payment), nil
}

func (s *paymentService) MarkPaid(ctx context.Context, paymentID, staffUserID uuid.UUID) (*PaymentResponse, error) {
	return s.setPaid(ctx, paymentID, staffUserID, true)
}

func (s *paymentService) MarkUnpaid(ctx context.Context, paymentID, staffUserID uuid.UUID) (*PaymentResponse, error) {
	return s.setPaid(ctx, paymentID, staffUserID, false)
}

func (s *paymentService) setPaid(ctx context.Context, paymentID, staffUserID uuid.UUID, paid bool) (*PaymentResponse, error) {
	staff, err := s.staff.FindByUserID(ctx, staffUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized("only staff may update payment records")
		}
		return nil, err
	}

	var payment *model.Payment
	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		payment, err = s.payments.FindByID(txCtx, paymentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("payment %s not found", paymentID)
			}
			return err
		}

		student := payment.Student
		if student == nil {
			return fmt.Errorf("payment %s loaded without student", payment.ID)
		}
		if !staff.IsDormOwner || student.DormOwnerID == nil || *student.DormOwnerID != staff.ID {
			return apperror.Unauthorized("only the assigned dormitory owner may update this payment")
		}

		payment.IsPaid = paid
		if paid {
			now := time.Now()
			payment.PaidAt = &now
		} else {
			payment.PaidAt = nil
		}
		if updateErr := s.payments.Update(txCtx, payment); updateErr != nil {
			return fmt.Errorf("failed to update payment: %w", updateErr)
		}

		action := model.ActionMarkPaymentPaid
		if !paid {
			action = model.ActionClearPaymentPaid
		}
		entry := &model.AuditLog{
			UserID:     &staffUserID,
			Action:     action,
			EntityID:   payment.ID.String(),
			EntityName: student.StudentNumber,
		}
		if auditErr := s.audit.Log(txCtx, entry); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toPaymentResponse(payment), nil
}

func toPaymentResponse(payment *model.Payment) *PaymentResponse {
	res := &PaymentResponse{
		ID:        payment.ID.String(),
		StudentID: payment.StudentID.String(),
		Amount:    payment.Amount.StringFixed(2),
		IsPaid:    payment.IsPaid,
	}
	if payment.PaidAt != nil {
		at := payment.PaidAt.Format(time.RFC3339)
		res.PaidAt = &at
	}
	return res
}
