package service

import (
	"context"
	"encoding/json"
	"testing"

	"clearance/internal/model"
	"clearance/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testYear     = "2025-2026"
	testSemester = model.SemesterFirst
)

type clearanceEnv struct {
	offices  *fakeOfficeRepo
	students *fakeStudentRepo
	staff    *fakeStaffRepo
	chairs   *fakeChairRepo
	requests *fakeRequestRepo
	records  *fakeClearanceRepo
	audit    *fakeAuditRepo
	hub      *fakeHub
	svc      ClearanceService
}

func newClearanceEnv() *clearanceEnv {
	env := &clearanceEnv{
		offices:  &fakeOfficeRepo{},
		students: &fakeStudentRepo{},
		staff:    &fakeStaffRepo{},
		chairs:   &fakeChairRepo{},
		audit:    &fakeAuditRepo{},
		hub:      &fakeHub{},
	}
	env.requests = &fakeRequestRepo{offices: env.offices, students: env.students}
	env.records = &fakeClearanceRepo{students: env.students}
	env.svc = NewClearanceService(
		env.offices, env.students, env.staff, env.chairs,
		env.requests, env.records, env.audit, fakeTxManager{},
		env.hub, zerolog.Nop(),
	)
	return env
}

func (e *clearanceEnv) addOffice(name, category string, deanID *uuid.UUID) *model.Office {
	office := &model.Office{ID: uuid.New(), Name: name, Category: category, DeanID: deanID}
	e.offices.offices = append(e.offices.offices, office)
	return office
}

func (e *clearanceEnv) addStudent(number string, boarder bool, course *model.Course) *model.Student {
	student := &model.Student{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		StudentNumber: number,
		YearLevel:     3,
		IsBoarder:     boarder,
		Status:        model.StudentStatusActive,
	}
	if course != nil {
		student.CourseID = course.ID
		student.Course = course
	}
	e.students.students = append(e.students.students, student)
	return student
}

func (e *clearanceEnv) addStaff(office *model.Office, dormOwner bool) *model.Staff {
	staff := &model.Staff{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		OfficeID:    office.ID,
		Office:      office,
		IsDormOwner: dormOwner,
	}
	e.staff.staff = append(e.staff.staff, staff)
	return staff
}

func (e *clearanceEnv) addChair(deanID uuid.UUID) *model.ProgramChair {
	chair := &model.ProgramChair{ID: uuid.New(), UserID: uuid.New(), DeanID: deanID}
	e.chairs.chairs = append(e.chairs.chairs, chair)
	return chair
}

func (e *clearanceEnv) initialize(t *testing.T, student *model.Student) []uuid.UUID {
	t.Helper()
	ids, err := e.svc.InitializeRequests(context.Background(), student.ID, testYear, testSemester)
	require.NoError(t, err)
	return ids
}

func (e *clearanceEnv) record(t *testing.T, student *model.Student) *model.Clearance {
	t.Helper()
	record, err := e.records.FindByTerm(context.Background(), student.ID, testYear, testSemester)
	require.NoError(t, err)
	return record
}

func (e *clearanceEnv) lastEvent(t *testing.T) ClearanceEvent {
	t.Helper()
	require.NotEmpty(t, e.hub.events)
	var event ClearanceEvent
	require.NoError(t, json.Unmarshal(e.hub.events[len(e.hub.events)-1], &event))
	return event
}

func makeCourse(deanID uuid.UUID) *model.Course {
	return &model.Course{ID: uuid.New(), Code: "BSCS", Name: "BS Computer Science", DeanID: deanID}
}

func TestInitializeRequestsSkipsDormitoryForNonBoarders(t *testing.T) {
	env := newClearanceEnv()
	env.addOffice("Library", model.OfficeCategoryOther, nil)
	env.addOffice("Registrar", model.OfficeCategoryOther, nil)
	env.addOffice("Dormitory", model.OfficeCategoryDormitory, nil)
	student := env.addStudent("2025-0001", false, makeCourse(uuid.New()))

	ids := env.initialize(t, student)

	assert.Len(t, ids, 2)
	record := env.record(t, student)
	assert.False(t, record.IsCleared)
	assert.Contains(t, env.audit.actions(), model.ActionInitializeRequests)

	event := env.lastEvent(t)
	assert.Equal(t, "requests_initialized", event.Type)
	assert.Equal(t, student.StudentNumber, event.StudentNumber)
}

func TestInitializeRequestsIncludesDormitoryForBoarders(t *testing.T) {
	env := newClearanceEnv()
	env.addOffice("Library", model.OfficeCategoryOther, nil)
	env.addOffice("Dormitory", model.OfficeCategoryDormitory, nil)
	student := env.addStudent("2025-0002", true, makeCourse(uuid.New()))

	ids := env.initialize(t, student)

	assert.Len(t, ids, 2)
}

func TestInitializeRequestsIsIdempotent(t *testing.T) {
	env := newClearanceEnv()
	env.addOffice("Library", model.OfficeCategoryOther, nil)
	env.addOffice("Registrar", model.OfficeCategoryOther, nil)
	student := env.addStudent("2025-0003", false, makeCourse(uuid.New()))

	first := env.initialize(t, student)
	second := env.initialize(t, student)

	assert.ElementsMatch(t, first, second)
	assert.Len(t, env.requests.requests, 2)
	assert.Len(t, env.records.records, 1)
	// Only the first call created anything, so only one broadcast.
	assert.Len(t, env.hub.events, 1)
}

func TestInitializeRequestsRejectsInactiveStudent(t *testing.T) {
	env := newClearanceEnv()
	env.addOffice("Library", model.OfficeCategoryOther, nil)
	student := env.addStudent("2025-0004", false, makeCourse(uuid.New()))
	student.Status = model.StudentStatusPending

	_, err := env.svc.InitializeRequests(context.Background(), student.ID, testYear, testSemester)

	assert.ErrorIs(t, err, apperror.ErrInvalidState)
}

func TestInitializeRequestsValidatesTerm(t *testing.T) {
	env := newClearanceEnv()
	student := env.addStudent("2025-0005", false, makeCourse(uuid.New()))

	_, err := env.svc.InitializeRequests(context.Background(), student.ID, testYear, "THIRD")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.svc.InitializeRequests(context.Background(), student.ID, "  ", testSemester)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestApproveByOfficeStaff(t *testing.T) {
	env := newClearanceEnv()
	library := env.addOffice("Library", model.OfficeCategoryOther, nil)
	env.addOffice("Registrar", model.OfficeCategoryOther, nil)
	student := env.addStudent("2025-0006", false, makeCourse(uuid.New()))
	staff := env.addStaff(library, false)
	env.initialize(t, student)

	req, err := env.requests.FindByKey(context.Background(), student.ID, library.ID, testYear, testSemester)
	require.NoError(t, err)

	require.NoError(t, env.svc.Approve(context.Background(), req.ID, staff.UserID))

	assert.Equal(t, model.RequestStatusApproved, req.Status)
	require.NotNil(t, req.ReviewedByID)
	assert.Equal(t, staff.ID, *req.ReviewedByID)
	assert.NotNil(t, req.ReviewedAt)

	// One office still pending, so the aggregate stays open.
	assert.False(t, env.record(t, student).IsCleared)
	assert.Equal(t, "request_reviewed", env.lastEvent(t).Type)
}

func TestApproveRejectsWrongOfficeStaff(t *testing.T) {
	env := newClearanceEnv()
	library := env.addOffice("Library", model.OfficeCategoryOther, nil)
	registrar := env.addOffice("Registrar", model.OfficeCategoryOther, nil)
	student := env.addStudent("2025-0007", false, makeCourse(uuid.New()))
	outsider := env.addStaff(registrar, false)
	env.initialize(t, student)

	req, err := env.requests.FindByKey(context.Background(), student.ID, library.ID, testYear, testSemester)
	require.NoError(t, err)

	err = env.svc.Approve(context.Background(), req.ID, outsider.UserID)

	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.Equal(t, model.RequestStatusPending, req.Status)
}

func TestApproveRejectsNonStaffReviewer(t *testing.T) {
	env := newClearanceEnv()
	library := env.addOffice("Library", model.OfficeCategoryOther, nil)
	student := env.addStudent("2025-0008", false, makeCourse(uuid.New()))
	env.initialize(t, student)

	req, err := env.requests.FindByKey(context.Background(), student.ID, library.ID, testYear, testSemester)
	require.NoError(t, err)

	err = env.svc.Approve(context.Background(), req.ID, uuid.New())

	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestReviewRejectsAlreadyReviewedRequest(t *testing.T) {
	env := newClearanceEnv()
	library := env.addOffice("Library", model.OfficeCategoryOther, nil)
	student := env.addStudent("2025-0009", false, makeCourse(uuid.New()))
	staff := env.addStaff(library, false)
	env.initialize(t, student)

	req, err := env.requests.FindByKey(context.Background(), student.ID, library.ID, testYear, testSemester)
	require.NoError(t, err)
	require.NoError(t, env.svc.Approve(context.Background(), req.ID, staff.UserID))

	err = env.svc.Approve(context.Background(), req.ID, staff.UserID)
	assert.ErrorIs(t, err, apperror.ErrInvalidState)

	err = env.svc.Deny(context.Background(), req.ID, staff.UserID, "late return")
	assert.ErrorIs(t, err, apperror.ErrInvalidState)
}

func TestDenyRequiresReason(t *testing.T) {
	env := newClearanceEnv()
	library := env.addOffice("Library", model.OfficeCategoryOther, nil)
	student := env.addStudent("2025-0010", false, makeCourse(uuid.New()))
	staff := env.addStaff(library, false)
	env.initialize(t, student)

	req, err := env.requests.FindByKey(context.Background(), student.ID, library.ID, testYear, testSemester)
	require.NoError(t, err)

	err = env.svc.Deny(context.Background(), req.ID, staff.UserID, "   ")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestDenyRecordsReason(t *testing.T) {
	env := newClearanceEnv()
	library := env.addOffice("Library", model.OfficeCategoryOther, nil)
	student := env.addStudent("2025-0011", false, makeCourse(uuid.New()))
	staff := env.addStaff(library, false)
	env.initialize(t, student)

	req, err := env.requests.FindByKey(context.Background(), student.ID, library.ID, testYear, testSemester)
	require.NoError(t, err)

	require.NoError(t, env.svc.Deny(context.Background(), req.ID, staff.UserID, "unreturned books"))

	assert.Equal(t, model.RequestStatusDenied, req.Status)
	assert.Equal(t, "unreturned books", req.Notes)
	assert.Contains(t, env.audit.actions(), model.ActionDenyRequest)
}

func TestDormitoryRequestsRequireAssignedDormOwner(t *testing.T) {
	env := newClearanceEnv()
	dorm := env.addOffice("Dormitory", model.OfficeCategoryDormitory, nil)
	student := env.addStudent("2025-0012", true, makeCourse(uuid.New()))
	owner := env.addStaff(dorm, true)
	otherOwner := env.addStaff(dorm, true)
	notOwner := env.addStaff(dorm, false)
	student.DormOwnerID = &owner.ID
	env.initialize(t, student)

	req, err := env.requests.FindByKey(context.Background(), student.ID, dorm.ID, testYear, testSemester)
	require.NoError(t, err)

	err = env.svc.Approve(context.Background(), req.ID, notOwner.UserID)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	err = env.svc.Approve(context.Background(), req.ID, otherOwner.UserID)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	require.NoError(t, env.svc.Approve(context.Background(), req.ID, owner.UserID))
	assert.Equal(t, model.RequestStatusApproved, req.Status)
}

func TestSchoolServicesStaffLimitedToOwnSchool(t *testing.T) {
	env := newClearanceEnv()
	deanA := uuid.New()
	deanB := uuid.New()
	ssb := env.addOffice("SSB Engineering", model.OfficeCategorySSB, &deanA)
	staff := env.addStaff(ssb, false)

	sameSchool := env.addStudent("2025-0013", false, makeCourse(deanA))
	otherSchool := env.addStudent("2025-0014", false, makeCourse(deanB))
	env.initialize(t, sameSchool)
	env.initialize(t, otherSchool)

	reqSame, err := env.requests.FindByKey(context.Background(), sameSchool.ID, ssb.ID, testYear, testSemester)
	require.NoError(t, err)
	reqOther, err := env.requests.FindByKey(context.Background(), otherSchool.ID, ssb.ID, testYear, testSemester)
	require.NoError(t, err)

	err = env.svc.Approve(context.Background(), reqOther.ID, staff.UserID)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	require.NoError(t, env.svc.Approve(context.Background(), reqSame.ID, staff.UserID))
}

func TestApprovingAllRequestsClearsTheTerm(t *testing.T) {
	env := newClearanceEnv()
	library := env.addOffice("Library", model.OfficeCategoryOther, nil)
	registrar := env.addOffice("Registrar", model.OfficeCategoryOther, nil)
	student := env.addStudent("2025-0015", false, makeCourse(uuid.New()))
	librarian := env.addStaff(library, false)
	clerk := env.addStaff(registrar, false)
	env.initialize(t, student)

	req1, err := env.requests.FindByKey(context.Background(), student.ID, library.ID, testYear, testSemester)
	require.NoError(t, err)
	req2, err := env.requests.FindByKey(context.Background(), student.ID, registrar.ID, testYear, testSemester)
	require.NoError(t, err)

	require.NoError(t, env.svc.Approve(context.Background(), req1.ID, librarian.UserID))
	record := env.record(t, student)
	require.False(t, record.IsCleared)

	require.NoError(t, env.svc.Approve(context.Background(), req2.ID, clerk.UserID))
	assert.True(t, record.IsCleared)
	assert.NotNil(t, record.ClearedAt)
	assert.Equal(t, "student_cleared", env.lastEvent(t).Type)
}

func TestDeniedRequestBlocksClearing(t *testing.T) {
	env := newClearanceEnv()
	library := env.addOffice("Library", model.OfficeCategoryOther, nil)
	registrar := env.addOffice("Registrar", model.OfficeCategoryOther, nil)
	student := env.addStudent("2025-0016", false, makeCourse(uuid.New()))
	librarian := env.addStaff(library, false)
	clerk := env.addStaff(registrar, false)
	env.initialize(t, student)

	req1, err := env.requests.FindByKey(context.Background(), student.ID, library.ID, testYear, testSemester)
	require.NoError(t, err)
	req2, err := env.requests.FindByKey(context.Background(), student.ID, registrar.ID, testYear, testSemester)
	require.NoError(t, err)

	require.NoError(t, env.svc.Deny(context.Background(), req1.ID, librarian.UserID, "unreturned books"))
	require.NoError(t, env.svc.Approve(context.Background(), req2.ID, clerk.UserID))

	assert.False(t, env.record(t, student).IsCleared)
}

func TestReRequestResetsDeniedRequest(t *testing.T) {
	env := newClearanceEnv()
	library := env.addOffice("Library", model.OfficeCategoryOther, nil)
	student := env.addStudent("2025-0017", false, makeCourse(uuid.New()))
	staff := env.addStaff(library, false)
	env.initialize(t, student)

	req, err := env.requests.FindByKey(context.Background(), student.ID, library.ID, testYear, testSemester)
	require.NoError(t, err)
	require.NoError(t, env.svc.Deny(context.Background(), req.ID, staff.UserID, "unreturned books"))

	require.NoError(t, env.svc.ReRequest(context.Background(), req.ID, student.UserID))

	assert.Equal(t, model.RequestStatusPending, req.Status)
	assert.Empty(t, req.Notes)
	assert.Nil(t, req.ReviewedByID)
	assert.Nil(t, req.ReviewedAt)
	assert.Contains(t, env.audit.actions(), model.ActionReRequest)
}

func TestReRequestGuards(t *testing.T) {
	env := newClearanceEnv()
	library := env.addOffice("Library", model.OfficeCategoryOther, nil)
	student := env.addStudent("2025-0018", false, makeCourse(uuid.New()))
	other := env.addStudent("2025-0019", false, makeCourse(uuid.New()))
	staff := env.addStaff(library, false)
	env.initialize(t, student)

	req, err := env.requests.FindByKey(context.Background(), student.ID, library.ID, testYear, testSemester)
	require.NoError(t, err)

	// Still pending, nothing to resubmit.
	err = env.svc.ReRequest(context.Background(), req.ID, student.UserID)
	assert.ErrorIs(t, err, apperror.ErrInvalidState)

	require.NoError(t, env.svc.Deny(context.Background(), req.ID, staff.UserID, "unreturned books"))

	err = env.svc.ReRequest(context.Background(), req.ID, other.UserID)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	err = env.svc.ReRequest(context.Background(), req.ID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestUnclearingRevokesPermit(t *testing.T) {
	env := newClearanceEnv()
	deanID := uuid.New()
	library := env.addOffice("Library", model.OfficeCategoryOther, nil)
	student := env.addStudent("2025-0020", false, makeCourse(deanID))
	librarian := env.addStaff(library, false)
	chair := env.addChair(deanID)
	env.initialize(t, student)

	req, err := env.requests.FindByKey(context.Background(), student.ID, library.ID, testYear, testSemester)
	require.NoError(t, err)
	require.NoError(t, env.svc.Approve(context.Background(), req.ID, librarian.UserID))

	record := env.record(t, student)
	require.True(t, record.IsCleared)
	require.NoError(t, env.svc.UnlockPermit(context.Background(), record.ID, chair.UserID))
	require.True(t, record.PermitUnlocked)

	// A new office joins the required set mid-term; the fresh pending
	// request gets denied, pulling the term back out of cleared state.
	registrar := env.addOffice("Registrar", model.OfficeCategoryOther, nil)
	clerk := env.addStaff(registrar, false)
	env.initialize(t, student)

	newReq, err := env.requests.FindByKey(context.Background(), student.ID, registrar.ID, testYear, testSemester)
	require.NoError(t, err)
	require.NoError(t, env.svc.Deny(context.Background(), newReq.ID, clerk.UserID, "missing form"))

	assert.False(t, record.IsCleared)
	assert.Nil(t, record.ClearedAt)
	assert.False(t, record.PermitUnlocked)
}

func TestUnlockPermitRequiresClearedTerm(t *testing.T) {
	env := newClearanceEnv()
	deanID := uuid.New()
	env.addOffice("Library", model.OfficeCategoryOther, nil)
	student := env.addStudent("2025-0021", false, makeCourse(deanID))
	chair := env.addChair(deanID)
	env.initialize(t, student)

	record := env.record(t, student)
	err := env.svc.UnlockPermit(context.Background(), record.ID, chair.UserID)

	assert.ErrorIs(t, err, apperror.ErrInvalidState)
	assert.False(t, record.PermitUnlocked)
}

func TestUnlockPermitAuthorization(t *testing.T) {
	env := newClearanceEnv()
	deanA := uuid.New()
	deanB := uuid.New()
	library := env.addOffice("Library", model.OfficeCategoryOther, nil)
	student := env.addStudent("2025-0022", false, makeCourse(deanA))
	librarian := env.addStaff(library, false)
	ownChair := env.addChair(deanA)
	otherChair := env.addChair(deanB)
	env.initialize(t, student)

	req, err := env.requests.FindByKey(context.Background(), student.ID, library.ID, testYear, testSemester)
	require.NoError(t, err)
	require.NoError(t, env.svc.Approve(context.Background(), req.ID, librarian.UserID))
	record := env.record(t, student)

	err = env.svc.UnlockPermit(context.Background(), record.ID, otherChair.UserID)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	err = env.svc.UnlockPermit(context.Background(), record.ID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	require.NoError(t, env.svc.UnlockPermit(context.Background(), record.ID, ownChair.UserID))
	assert.True(t, record.PermitUnlocked)
	assert.Equal(t, "permit_unlocked", env.lastEvent(t).Type)
}

func TestDirectChairAssignmentOverridesDean(t *testing.T) {
	env := newClearanceEnv()
	deanA := uuid.New()
	deanB := uuid.New()
	library := env.addOffice("Library", model.OfficeCategoryOther, nil)
	student := env.addStudent("2025-0023", false, makeCourse(deanA))
	librarian := env.addStaff(library, false)
	deanChair := env.addChair(deanA)
	assigned := env.addChair(deanB)
	student.ProgramChairID = &assigned.ID
	env.initialize(t, student)

	req, err := env.requests.FindByKey(context.Background(), student.ID, library.ID, testYear, testSemester)
	require.NoError(t, err)
	require.NoError(t, env.svc.Approve(context.Background(), req.ID, librarian.UserID))
	record := env.record(t, student)

	// The dean's chair loses to the explicit assignment.
	err = env.svc.UnlockPermit(context.Background(), record.ID, deanChair.UserID)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	require.NoError(t, env.svc.UnlockPermit(context.Background(), record.ID, assigned.UserID))
}

func TestUnlockPermitIsIdempotent(t *testing.T) {
	env := newClearanceEnv()
	deanID := uuid.New()
	library := env.addOffice("Library", model.OfficeCategoryOther, nil)
	student := env.addStudent("2025-0024", false, makeCourse(deanID))
	librarian := env.addStaff(library, false)
	chair := env.addChair(deanID)
	env.initialize(t, student)

	req, err := env.requests.FindByKey(context.Background(), student.ID, library.ID, testYear, testSemester)
	require.NoError(t, err)
	require.NoError(t, env.svc.Approve(context.Background(), req.ID, librarian.UserID))
	record := env.record(t, student)

	require.NoError(t, env.svc.UnlockPermit(context.Background(), record.ID, chair.UserID))
	events := len(env.hub.events)

	require.NoError(t, env.svc.UnlockPermit(context.Background(), record.ID, chair.UserID))
	assert.True(t, record.PermitUnlocked)
	assert.Len(t, env.hub.events, events)
}

func TestCanPrint(t *testing.T) {
	env := newClearanceEnv()
	deanID := uuid.New()
	library := env.addOffice("Library", model.OfficeCategoryOther, nil)
	student := env.addStudent("2025-0025", false, makeCourse(deanID))
	librarian := env.addStaff(library, false)
	chair := env.addChair(deanID)
	otherChair := env.addChair(uuid.New())
	env.initialize(t, student)

	record := env.record(t, student)

	// Not yet unlocked.
	ok, err := env.svc.CanPrint(context.Background(), record.ID, chair.UserID)
	require.NoError(t, err)
	assert.False(t, ok)

	req, err := env.requests.FindByKey(context.Background(), student.ID, library.ID, testYear, testSemester)
	require.NoError(t, err)
	require.NoError(t, env.svc.Approve(context.Background(), req.ID, librarian.UserID))
	require.NoError(t, env.svc.UnlockPermit(context.Background(), record.ID, chair.UserID))

	ok, err = env.svc.CanPrint(context.Background(), record.ID, chair.UserID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.svc.CanPrint(context.Background(), record.ID, otherChair.UserID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = env.svc.CanPrint(context.Background(), record.ID, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = env.svc.CanPrint(context.Background(), uuid.New(), chair.UserID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetSummary(t *testing.T) {
	env := newClearanceEnv()
	library := env.addOffice("Library", model.OfficeCategoryOther, nil)
	registrar := env.addOffice("Registrar", model.OfficeCategoryOther, nil)
	env.addOffice("Clinic", model.OfficeCategoryOther, nil)
	student := env.addStudent("2025-0026", false, makeCourse(uuid.New()))
	librarian := env.addStaff(library, false)
	clerk := env.addStaff(registrar, false)
	env.initialize(t, student)

	req1, err := env.requests.FindByKey(context.Background(), student.ID, library.ID, testYear, testSemester)
	require.NoError(t, err)
	req2, err := env.requests.FindByKey(context.Background(), student.ID, registrar.ID, testYear, testSemester)
	require.NoError(t, err)
	require.NoError(t, env.svc.Approve(context.Background(), req1.ID, librarian.UserID))
	require.NoError(t, env.svc.Deny(context.Background(), req2.ID, clerk.UserID, "missing form"))

	summary, err := env.svc.GetSummary(context.Background(), student.ID, testYear, testSemester)
	require.NoError(t, err)

	assert.Equal(t, int64(1), summary.PendingCount)
	assert.Equal(t, int64(1), summary.ApprovedCount)
	assert.Equal(t, int64(1), summary.DeniedCount)
	assert.False(t, summary.Cleared)
	assert.False(t, summary.PermitUnlocked)

	_, err = env.svc.GetSummary(context.Background(), student.ID, "2030-2031", testSemester)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestListForStudent(t *testing.T) {
	env := newClearanceEnv()
	env.addOffice("Library", model.OfficeCategoryOther, nil)
	env.addOffice("Registrar", model.OfficeCategoryOther, nil)
	student := env.addStudent("2025-0027", false, makeCourse(uuid.New()))
	env.initialize(t, student)

	requests, err := env.svc.ListForStudent(context.Background(), student.UserID, testYear, testSemester)
	require.NoError(t, err)
	assert.Len(t, requests, 2)
	for _, req := range requests {
		assert.Equal(t, model.RequestStatusPending, req.Status)
		assert.NotEmpty(t, req.OfficeName)
	}

	_, err = env.svc.ListForStudent(context.Background(), uuid.New(), testYear, testSemester)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestListForOffice(t *testing.T) {
	env := newClearanceEnv()
	library := env.addOffice("Library", model.OfficeCategoryOther, nil)
	registrar := env.addOffice("Registrar", model.OfficeCategoryOther, nil)
	librarian := env.addStaff(library, false)
	student1 := env.addStudent("2025-0028", false, makeCourse(uuid.New()))
	student2 := env.addStudent("2025-0029", false, makeCourse(uuid.New()))
	env.initialize(t, student1)
	env.initialize(t, student2)

	requests, total, err := env.svc.ListForOffice(context.Background(), librarian.UserID, OfficeQueueFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, req := range requests {
		assert.Equal(t, library.ID.String(), req.OfficeID)
	}

	req1, err := env.requests.FindByKey(context.Background(), student1.ID, library.ID, testYear, testSemester)
	require.NoError(t, err)
	require.NoError(t, env.svc.Approve(context.Background(), req1.ID, librarian.UserID))

	pending, total, err := env.svc.ListForOffice(context.Background(), librarian.UserID, OfficeQueueFilter{Status: model.RequestStatusPending})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, pending, 1)
	assert.Equal(t, model.RequestStatusPending, pending[0].Status)

	// Registrar staff see a disjoint queue.
	clerk := env.addStaff(registrar, false)
	theirs, _, err := env.svc.ListForOffice(context.Background(), clerk.UserID, OfficeQueueFilter{})
	require.NoError(t, err)
	for _, req := range theirs {
		assert.Equal(t, registrar.ID.String(), req.OfficeID)
	}

	_, _, err = env.svc.ListForOffice(context.Background(), uuid.New(), OfficeQueueFilter{})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestBoarderTermLifecycle(t *testing.T) {
	env := newClearanceEnv()
	deanID := uuid.New()

	base := []*model.Office{
		env.addOffice("Library", model.OfficeCategoryOther, nil),
		env.addOffice("Registrar", model.OfficeCategoryOther, nil),
		env.addOffice("Accounting", model.OfficeCategoryOther, nil),
		env.addOffice("Guidance", model.OfficeCategoryOther, nil),
		env.addOffice("Dean's Office", model.OfficeCategoryDeanOffice, &deanID),
		env.addOffice("School Services Bureau", model.OfficeCategorySSB, &deanID),
	}
	dormitory := env.addOffice("Dormitory", model.OfficeCategoryDormitory, nil)

	student := env.addStudent("2025-0030", true, makeCourse(deanID))
	owner := env.addStaff(dormitory, true)
	student.DormOwnerID = &owner.ID
	chair := env.addChair(deanID)
	otherChair := env.addChair(uuid.New())

	ids := env.initialize(t, student)
	require.Len(t, ids, 7)

	// Every base office approves through its own staff member.
	for _, office := range base {
		reviewer := env.addStaff(office, false)
		req, err := env.requests.FindByKey(context.Background(), student.ID, office.ID, testYear, testSemester)
		require.NoError(t, err)
		require.NoError(t, env.svc.Approve(context.Background(), req.ID, reviewer.UserID))
	}

	record := env.record(t, student)
	require.False(t, record.IsCleared)

	dormReq, err := env.requests.FindByKey(context.Background(), student.ID, dormitory.ID, testYear, testSemester)
	require.NoError(t, err)
	require.NoError(t, env.svc.Approve(context.Background(), dormReq.ID, owner.UserID))

	require.True(t, record.IsCleared)
	require.NotNil(t, record.ClearedAt)
	assert.Equal(t, "student_cleared", env.lastEvent(t).Type)

	require.NoError(t, env.svc.UnlockPermit(context.Background(), record.ID, chair.UserID))
	assert.True(t, record.PermitUnlocked)

	canPrint, err := env.svc.CanPrint(context.Background(), record.ID, chair.UserID)
	require.NoError(t, err)
	assert.True(t, canPrint)

	canPrint, err = env.svc.CanPrint(context.Background(), record.ID, otherChair.UserID)
	require.NoError(t, err)
	assert.False(t, canPrint)
}
