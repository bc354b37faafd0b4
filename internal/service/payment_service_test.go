package service

import (
	"context"
	"testing"

	"clearance/internal/model"
	"clearance/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paymentEnv struct {
	*clearanceEnv
	payments *fakePaymentRepo
	svc      PaymentService
}

func newPaymentEnv() *paymentEnv {
	base := newClearanceEnv()
	env := &paymentEnv{
		clearanceEnv: base,
		payments:     &fakePaymentRepo{students: base.students},
	}
	env.svc = NewPaymentService(env.payments, base.students, base.staff, base.audit, fakeTxManager{})
	return env
}

func (e *paymentEnv) addPayment(student *model.Student, amount int64) *model.Payment {
	payment := &model.Payment{ID: uuid.New(), StudentID: student.ID, Amount: decimal.NewFromInt(amount)}
	e.payments.payments = append(e.payments.payments, payment)
	return payment
}

func TestGetPaymentForStudent(t *testing.T) {
	env := newPaymentEnv()
	student := env.addStudent("2025-3001", true, makeCourse(uuid.New()))
	env.addPayment(student, 4500)

	res, err := env.svc.GetForStudent(context.Background(), student.UserID)
	require.NoError(t, err)
	assert.Equal(t, "4500.00", res.Amount)
	assert.False(t, res.IsPaid)
	assert.Nil(t, res.PaidAt)

	noFee := env.addStudent("2025-3002", false, makeCourse(uuid.New()))
	_, err = env.svc.GetForStudent(context.Background(), noFee.UserID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = env.svc.GetForStudent(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestMarkPaidByAssignedDormOwner(t *testing.T) {
	env := newPaymentEnv()
	dorm := env.addOffice("Dormitory", model.OfficeCategoryDormitory, nil)
	student := env.addStudent("2025-3003", true, makeCourse(uuid.New()))
	owner := env.addStaff(dorm, true)
	student.DormOwnerID = &owner.ID
	payment := env.addPayment(student, 4500)

	res, err := env.svc.MarkPaid(context.Background(), payment.ID, owner.UserID)
	require.NoError(t, err)
	assert.True(t, res.IsPaid)
	assert.NotNil(t, res.PaidAt)
	assert.Contains(t, env.audit.actions(), model.ActionMarkPaymentPaid)

	res, err = env.svc.MarkUnpaid(context.Background(), payment.ID, owner.UserID)
	require.NoError(t, err)
	assert.False(t, res.IsPaid)
	assert.Nil(t, res.PaidAt)
	assert.Contains(t, env.audit.actions(), model.ActionClearPaymentPaid)
}

func TestMarkPaidAuthorization(t *testing.T) {
	env := newPaymentEnv()
	dorm := env.addOffice("Dormitory", model.OfficeCategoryDormitory, nil)
	student := env.addStudent("2025-3004", true, makeCourse(uuid.New()))
	owner := env.addStaff(dorm, true)
	otherOwner := env.addStaff(dorm, true)
	notOwner := env.addStaff(dorm, false)
	student.DormOwnerID = &owner.ID
	payment := env.addPayment(student, 4500)

	_, err := env.svc.MarkPaid(context.Background(), payment.ID, otherOwner.UserID)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = env.svc.MarkPaid(context.Background(), payment.ID, notOwner.UserID)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = env.svc.MarkPaid(context.Background(), payment.ID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = env.svc.MarkPaid(context.Background(), uuid.New(), owner.UserID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	assert.False(t, payment.IsPaid)
}
