package service

import (
	"context"

	"clearance/internal/model"
	"clearance/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository doubles. Lookups return gorm.ErrRecordNotFound the
// way the real implementations do, and finders attach the relations the
// services expect preloaded.

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeHub struct {
	events [][]byte
}

func (h *fakeHub) Publish(message []byte) {
	h.events = append(h.events, message)
}

// --- offices ---

type fakeOfficeRepo struct {
	offices []*model.Office
}

func (r *fakeOfficeRepo) Create(_ context.Context, office *model.Office) error {
	if office.ID == uuid.Nil {
		office.ID = uuid.New()
	}
	r.offices = append(r.offices, office)
	return nil
}

func (r *fakeOfficeRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Office, error) {
	for _, o := range r.offices {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOfficeRepo) FindByName(_ context.Context, name string) (*model.Office, error) {
	for _, o := range r.offices {
		if o.Name == name {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOfficeRepo) FindByCategory(_ context.Context, category string) ([]model.Office, error) {
	var res []model.Office
	for _, o := range r.offices {
		if o.Category == category {
			res = append(res, *o)
		}
	}
	return res, nil
}

func (r *fakeOfficeRepo) List(_ context.Context) ([]model.Office, error) {
	res := make([]model.Office, 0, len(r.offices))
	for _, o := range r.offices {
		res = append(res, *o)
	}
	return res, nil
}

func (r *fakeOfficeRepo) ListByDean(_ context.Context, deanID uuid.UUID) ([]model.Office, error) {
	var res []model.Office
	for _, o := range r.offices {
		if o.DeanID != nil && *o.DeanID == deanID {
			res = append(res, *o)
		}
	}
	return res, nil
}

func (r *fakeOfficeRepo) Update(_ context.Context, _ *model.Office) error { return nil }

func (r *fakeOfficeRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, o := range r.offices {
		if o.ID == id {
			r.offices = append(r.offices[:i], r.offices[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// --- students ---

type fakeStudentRepo struct {
	students []*model.Student
}

func (r *fakeStudentRepo) Create(_ context.Context, student *model.Student) error {
	if student.ID == uuid.Nil {
		student.ID = uuid.New()
	}
	r.students = append(r.students, student)
	return nil
}

func (r *fakeStudentRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Student, error) {
	for _, s := range r.students {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStudentRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*model.Student, error) {
	for _, s := range r.students {
		if s.UserID == userID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStudentRepo) FindByNumber(_ context.Context, studentNumber string) (*model.Student, error) {
	for _, s := range r.students {
		if s.StudentNumber == studentNumber {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStudentRepo) List(_ context.Context, status string, _, _ int) ([]model.Student, int64, error) {
	var res []model.Student
	for _, s := range r.students {
		if status == "" || s.Status == status {
			res = append(res, *s)
		}
	}
	return res, int64(len(res)), nil
}

func (r *fakeStudentRepo) Update(_ context.Context, _ *model.Student) error { return nil }

func (r *fakeStudentRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, s := range r.students {
		if s.ID == id {
			r.students = append(r.students[:i], r.students[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// --- staff ---

type fakeStaffRepo struct {
	staff []*model.Staff
}

func (r *fakeStaffRepo) Create(_ context.Context, staff *model.Staff) error {
	if staff.ID == uuid.Nil {
		staff.ID = uuid.New()
	}
	r.staff = append(r.staff, staff)
	return nil
}

func (r *fakeStaffRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Staff, error) {
	for _, s := range r.staff {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStaffRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*model.Staff, error) {
	for _, s := range r.staff {
		if s.UserID == userID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStaffRepo) ListByOffice(_ context.Context, officeID uuid.UUID) ([]model.Staff, error) {
	var res []model.Staff
	for _, s := range r.staff {
		if s.OfficeID == officeID {
			res = append(res, *s)
		}
	}
	return res, nil
}

func (r *fakeStaffRepo) Update(_ context.Context, _ *model.Staff) error { return nil }

// --- program chairs ---

type fakeChairRepo struct {
	chairs []*model.ProgramChair
}

func (r *fakeChairRepo) Create(_ context.Context, chair *model.ProgramChair) error {
	if chair.ID == uuid.Nil {
		chair.ID = uuid.New()
	}
	r.chairs = append(r.chairs, chair)
	return nil
}

func (r *fakeChairRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ProgramChair, error) {
	for _, c := range r.chairs {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeChairRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*model.ProgramChair, error) {
	for _, c := range r.chairs {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeChairRepo) FindByDean(_ context.Context, deanID uuid.UUID) (*model.ProgramChair, error) {
	for _, c := range r.chairs {
		if c.DeanID == deanID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeChairRepo) List(_ context.Context) ([]model.ProgramChair, error) {
	res := make([]model.ProgramChair, 0, len(r.chairs))
	for _, c := range r.chairs {
		res = append(res, *c)
	}
	return res, nil
}

// --- clearance requests ---

type fakeRequestRepo struct {
	requests []*model.ClearanceRequest
	offices  *fakeOfficeRepo
	students *fakeStudentRepo
}

func (r *fakeRequestRepo) attach(req *model.ClearanceRequest) *model.ClearanceRequest {
	if office, err := r.offices.FindByID(context.Background(), req.OfficeID); err == nil {
		req.Office = office
	}
	if student, err := r.students.FindByID(context.Background(), req.StudentID); err == nil {
		req.Student = student
	}
	return req
}

func (r *fakeRequestRepo) Create(_ context.Context, req *model.ClearanceRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	r.requests = append(r.requests, req)
	return nil
}

func (r *fakeRequestRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ClearanceRequest, error) {
	for _, req := range r.requests {
		if req.ID == id {
			return r.attach(req), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRequestRepo) FindByKey(_ context.Context, studentID, officeID uuid.UUID, schoolYear, semester string) (*model.ClearanceRequest, error) {
	for _, req := range r.requests {
		if req.StudentID == studentID && req.OfficeID == officeID && req.SchoolYear == schoolYear && req.Semester == semester {
			return r.attach(req), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRequestRepo) ListByTerm(_ context.Context, studentID uuid.UUID, schoolYear, semester string) ([]model.ClearanceRequest, error) {
	var res []model.ClearanceRequest
	for _, req := range r.requests {
		if req.StudentID == studentID && req.SchoolYear == schoolYear && req.Semester == semester {
			res = append(res, *r.attach(req))
		}
	}
	return res, nil
}

func (r *fakeRequestRepo) ListByOffice(_ context.Context, officeID uuid.UUID, status string, _, _ int) ([]model.ClearanceRequest, int64, error) {
	var res []model.ClearanceRequest
	for _, req := range r.requests {
		if req.OfficeID != officeID {
			continue
		}
		if status != "" && req.Status != status {
			continue
		}
		res = append(res, *r.attach(req))
	}
	return res, int64(len(res)), nil
}

func (r *fakeRequestRepo) CountByStatus(_ context.Context, studentID uuid.UUID, schoolYear, semester string) (repository.StatusCounts, error) {
	var counts repository.StatusCounts
	for _, req := range r.requests {
		if req.StudentID != studentID || req.SchoolYear != schoolYear || req.Semester != semester {
			continue
		}
		switch req.Status {
		case model.RequestStatusPending:
			counts.Pending++
		case model.RequestStatusApproved:
			counts.Approved++
		case model.RequestStatusDenied:
			counts.Denied++
		}
	}
	return counts, nil
}

func (r *fakeRequestRepo) Update(_ context.Context, _ *model.ClearanceRequest) error { return nil }

// --- clearance records ---

type fakeClearanceRepo struct {
	records  []*model.Clearance
	students *fakeStudentRepo
}

func (r *fakeClearanceRepo) Create(_ context.Context, record *model.Clearance) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	r.records = append(r.records, record)
	return nil
}

func (r *fakeClearanceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Clearance, error) {
	for _, rec := range r.records {
		if rec.ID == id {
			if student, err := r.students.FindByID(context.Background(), rec.StudentID); err == nil {
				rec.Student = student
			}
			return rec, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeClearanceRepo) FindByTerm(_ context.Context, studentID uuid.UUID, schoolYear, semester string) (*model.Clearance, error) {
	for _, rec := range r.records {
		if rec.StudentID == studentID && rec.SchoolYear == schoolYear && rec.Semester == semester {
			return rec, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeClearanceRepo) Update(_ context.Context, _ *model.Clearance) error { return nil }

// --- payments ---

type fakePaymentRepo struct {
	payments []*model.Payment
	students *fakeStudentRepo
}

func (r *fakePaymentRepo) Create(_ context.Context, payment *model.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	r.payments = append(r.payments, payment)
	return nil
}

func (r *fakePaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Payment, error) {
	for _, p := range r.payments {
		if p.ID == id {
			if student, err := r.students.FindByID(context.Background(), p.StudentID); err == nil {
				p.Student = student
			}
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePaymentRepo) FindByStudent(_ context.Context, studentID uuid.UUID) (*model.Payment, error) {
	for _, p := range r.payments {
		if p.StudentID == studentID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePaymentRepo) Update(_ context.Context, _ *model.Payment) error { return nil }

// --- audit log ---

type fakeAuditRepo struct {
	entries []model.AuditLog
}

func (r *fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, action string, _, _ int) ([]model.AuditLog, int64, error) {
	var res []model.AuditLog
	for _, e := range r.entries {
		if action == "" || e.Action == action {
			res = append(res, e)
		}
	}
	return res, int64(len(res)), nil
}

func (r *fakeAuditRepo) actions() []string {
	res := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		res = append(res, e.Action)
	}
	return res
}

// --- users ---

type fakeUserRepo struct {
	users  []*model.User
	tokens []*model.RefreshToken
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users = append(r.users, user)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) List(_ context.Context, role string, _, _ int) ([]model.User, int64, error) {
	var res []model.User
	for _, u := range r.users {
		if role == "" || u.Role == role {
			res = append(res, *u)
		}
	}
	return res, int64(len(res)), nil
}

func (r *fakeUserRepo) Update(_ context.Context, _ *model.User) error { return nil }

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, u := range r.users {
		if u.ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) SaveRefreshToken(_ context.Context, token *model.RefreshToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	r.tokens = append(r.tokens, token)
	return nil
}

func (r *fakeUserRepo) GetRefreshToken(_ context.Context, token string) (*model.RefreshToken, error) {
	for _, t := range r.tokens {
		if t.Token == token {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) DeleteRefreshTokens(_ context.Context, userID uuid.UUID) error {
	kept := r.tokens[:0]
	for _, t := range r.tokens {
		if t.UserID != userID {
			kept = append(kept, t)
		}
	}
	r.tokens = kept
	return nil
}

func (r *fakeUserRepo) DeleteExpiredRefreshTokens(_ context.Context) error { return nil }

// --- deans and courses ---

type fakeDeanRepo struct {
	deans []*model.Dean
}

func (r *fakeDeanRepo) Create(_ context.Context, dean *model.Dean) error {
	if dean.ID == uuid.Nil {
		dean.ID = uuid.New()
	}
	r.deans = append(r.deans, dean)
	return nil
}

func (r *fakeDeanRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Dean, error) {
	for _, d := range r.deans {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeDeanRepo) FindByCode(_ context.Context, code string) (*model.Dean, error) {
	for _, d := range r.deans {
		if d.Code == code {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeDeanRepo) List(_ context.Context) ([]model.Dean, error) {
	res := make([]model.Dean, 0, len(r.deans))
	for _, d := range r.deans {
		res = append(res, *d)
	}
	return res, nil
}

type fakeCourseRepo struct {
	courses []*model.Course
}

func (r *fakeCourseRepo) Create(_ context.Context, course *model.Course) error {
	if course.ID == uuid.Nil {
		course.ID = uuid.New()
	}
	r.courses = append(r.courses, course)
	return nil
}

func (r *fakeCourseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Course, error) {
	for _, c := range r.courses {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCourseRepo) FindByCode(_ context.Context, code string) (*model.Course, error) {
	for _, c := range r.courses {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCourseRepo) List(_ context.Context) ([]model.Course, error) {
	res := make([]model.Course, 0, len(r.courses))
	for _, c := range r.courses {
		res = append(res, *c)
	}
	return res, nil
}

func (r *fakeCourseRepo) ListByDean(_ context.Context, deanID uuid.UUID) ([]model.Course, error) {
	var res []model.Course
	for _, c := range r.courses {
		if c.DeanID == deanID {
			res = append(res, *c)
		}
	}
	return res, nil
}
