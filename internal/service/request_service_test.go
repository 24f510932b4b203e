package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nitap-dev/mentor-portal-api/internal/models"
	"github.com/nitap-dev/mentor-portal-api/internal/policy"
	appErrors "github.com/nitap-dev/mentor-portal-api/pkg/errors"
)

type mockRequestRepo struct {
	items      map[string]*models.Request
	listResult []models.Request
	listTotal  int

	// forceUndecided simulates losing the conditional update race: the
	// row read as pending but another decision landed first.
	forceUndecided bool
}

func (m *mockRequestRepo) Create(ctx context.Context, req *models.Request) error {
	if m.items == nil {
		m.items = make(map[string]*models.Request)
	}
	cp := *req
	m.items[req.ID] = &cp
	return nil
}

func (m *mockRequestRepo) FindByID(ctx context.Context, id string) (*models.Request, error) {
	if r, ok := m.items[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRequestRepo) List(ctx context.Context, filter models.RequestFilter) ([]models.Request, int, error) {
	return m.listResult, m.listTotal, nil
}

func (m *mockRequestRepo) Decide(ctx context.Context, id string, status models.RequestStatus, notes, reviewedBy string, reviewedAt time.Time) (bool, error) {
	r, ok := m.items[id]
	if !ok || m.forceUndecided || r.Status != models.RequestPending {
		return false, nil
	}
	r.Status = status
	r.ReviewNotes = notes
	r.ReviewedBy = &reviewedBy
	r.ReviewedAt = &reviewedAt
	return true, nil
}

func studentScope(principalID, studentID string) *policy.Scope {
	return &policy.Scope{
		PrincipalID: principalID,
		Roles:       map[models.Role]struct{}{models.RoleStudent: {}},
		StudentID:   studentID,
	}
}

func hodScope(principalID, facultyID, department string) *policy.Scope {
	return &policy.Scope{
		PrincipalID: principalID,
		Roles:       map[models.Role]struct{}{models.RoleFaculty: {}, models.RoleHOD: {}},
		FacultyID:   facultyID,
		Department:  department,
	}
}

func newRequestFixture() (*RequestService, *mockRequestRepo) {
	repo := &mockRequestRepo{}
	students := &mockStudentSource{items: map[string]*models.Student{
		"s1": {ID: "s1", Name: "Student One", Department: "CSE"},
	}}
	faculty := &mockFacultySource{items: map[string]*models.Faculty{
		"f1": {ID: "f1", Name: "Dr. Mentor", Department: "CSE"},
	}}
	return NewRequestService(repo, students, faculty, validator.New(), zap.NewNop()), repo
}

func TestRequestCreateDerivesDepartment(t *testing.T) {
	svc, repo := newRequestFixture()

	request, err := svc.Create(context.Background(), studentScope("p1", "s1"), models.CreateRequestRequest{
		Type:        "LEAVE",
		Description: "family function",
	})
	require.NoError(t, err)
	assert.Equal(t, "CSE", request.Department)
	assert.Equal(t, models.RequestPending, request.Status)
	assert.Equal(t, "p1", request.RequesterPrincipalID)
	assert.Len(t, repo.items, 1)
}

func TestRequestDecideApprove(t *testing.T) {
	svc, repo := newRequestFixture()
	repo.items = map[string]*models.Request{
		"r1": {ID: "r1", RequesterPrincipalID: "p1", Department: "CSE", Status: models.RequestPending},
	}

	decided, err := svc.Decide(context.Background(), hodScope("p2", "f1", "CSE"), "r1", models.DecideRequestRequest{
		Status: models.RequestApproved,
		Notes:  "approved with conditions",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, decided.Status)
	require.NotNil(t, decided.ReviewedAt)
	require.NotNil(t, decided.ReviewedBy)
	assert.Equal(t, "p2", *decided.ReviewedBy)
	assert.Equal(t, "approved with conditions", decided.ReviewNotes)
}

func TestRequestDecideTwiceConflicts(t *testing.T) {
	svc, repo := newRequestFixture()
	repo.items = map[string]*models.Request{
		"r1": {ID: "r1", RequesterPrincipalID: "p1", Department: "CSE", Status: models.RequestPending},
	}
	scope := hodScope("p2", "f1", "CSE")

	_, err := svc.Decide(context.Background(), scope, "r1", models.DecideRequestRequest{Status: models.RequestApproved})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), scope, "r1", models.DecideRequestRequest{Status: models.RequestRejected})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAlreadyTerminal.Code, appErrors.FromError(err).Code)
	assert.Equal(t, models.RequestApproved, repo.items["r1"].Status)
}

func TestRequestDecideRacingLoserConflicts(t *testing.T) {
	svc, repo := newRequestFixture()
	repo.items = map[string]*models.Request{
		"r1": {ID: "r1", RequesterPrincipalID: "p1", Department: "CSE", Status: models.RequestPending},
	}
	repo.forceUndecided = true

	_, err := svc.Decide(context.Background(), hodScope("p2", "f1", "CSE"), "r1", models.DecideRequestRequest{Status: models.RequestRejected})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAlreadyTerminal.Code, appErrors.FromError(err).Code)
}

func TestRequestDecideOutsideDepartmentForbidden(t *testing.T) {
	svc, repo := newRequestFixture()
	repo.items = map[string]*models.Request{
		"r1": {ID: "r1", RequesterPrincipalID: "p1", Department: "CSE", Status: models.RequestPending},
	}

	_, err := svc.Decide(context.Background(), hodScope("p2", "f9", "ECE"), "r1", models.DecideRequestRequest{Status: models.RequestApproved})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Equal(t, models.RequestPending, repo.items["r1"].Status)
}

func TestRequestDecideByTargetFaculty(t *testing.T) {
	svc, repo := newRequestFixture()
	target := "p3"
	repo.items = map[string]*models.Request{
		"r1": {ID: "r1", RequesterPrincipalID: "p1", TargetPrincipalID: &target, Department: "CSE", Status: models.RequestPending},
	}

	scope := &policy.Scope{
		PrincipalID: "p3",
		Roles:       map[models.Role]struct{}{models.RoleFaculty: {}},
		FacultyID:   "f1",
	}
	decided, err := svc.Decide(context.Background(), scope, "r1", models.DecideRequestRequest{Status: models.RequestRejected, Notes: "not feasible"})
	require.NoError(t, err)
	assert.Equal(t, models.RequestRejected, decided.Status)
}

func TestRequestGetScopeChecks(t *testing.T) {
	svc, repo := newRequestFixture()
	repo.items = map[string]*models.Request{
		"r1": {ID: "r1", RequesterPrincipalID: "p1", Department: "CSE", Status: models.RequestPending},
	}

	_, err := svc.Get(context.Background(), studentScope("p1", "s1"), "r1")
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), studentScope("p9", "s9"), "r1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
