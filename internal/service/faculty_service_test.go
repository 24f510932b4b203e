package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nitap-dev/mentor-portal-api/internal/models"
	appErrors "github.com/nitap-dev/mentor-portal-api/pkg/errors"
)

const (
	facultyCSEID = "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"
	facultyECEID = "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb"
	studentCSEID = "cccccccc-cccc-4ccc-8ccc-cccccccccccc"
	studentECEID = "dddddddd-dddd-4ddd-8ddd-dddddddddddd"
)

type mockFacultyRepo struct {
	items       map[string]*models.Faculty
	menteeIDs   map[string][]string
	duplicate   bool
	assignments [][2]string
}

func (m *mockFacultyRepo) List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, int, error) {
	return nil, 0, nil
}

func (m *mockFacultyRepo) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	if f, ok := m.items[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockFacultyRepo) ExistsByEmployeeID(ctx context.Context, employeeID, excludeID string) (bool, error) {
	return m.duplicate, nil
}

func (m *mockFacultyRepo) Create(ctx context.Context, f *models.Faculty) error {
	if m.items == nil {
		m.items = make(map[string]*models.Faculty)
	}
	cp := *f
	m.items[f.ID] = &cp
	return nil
}

func (m *mockFacultyRepo) Update(ctx context.Context, f *models.Faculty) error {
	cp := *f
	m.items[f.ID] = &cp
	return nil
}

func (m *mockFacultyRepo) MenteeIDs(ctx context.Context, facultyID string) ([]string, error) {
	return m.menteeIDs[facultyID], nil
}

func (m *mockFacultyRepo) AssignMentor(ctx context.Context, facultyID, studentID string) error {
	m.assignments = append(m.assignments, [2]string{facultyID, studentID})
	return nil
}

type mockHODRepo struct {
	current      map[string]*models.HODAppointment
	appointments []*models.HODAppointment
}

func (m *mockHODRepo) CurrentByDepartment(ctx context.Context, department string) (*models.HODAppointment, error) {
	if a, ok := m.current[department]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockHODRepo) Appoint(ctx context.Context, a *models.HODAppointment) error {
	cp := *a
	m.appointments = append(m.appointments, &cp)
	if m.current == nil {
		m.current = make(map[string]*models.HODAppointment)
	}
	m.current[a.Department] = &cp
	return nil
}

type mockFacultyStudents struct {
	items      map[string]*models.Student
	lastFilter models.StudentFilter
}

func (m *mockFacultyStudents) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockFacultyStudents) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	m.lastFilter = filter
	var out []models.Student
	for _, id := range filter.IDs {
		if s, ok := m.items[id]; ok {
			out = append(out, *s)
		}
	}
	return out, len(out), nil
}

func newFacultyFixture() (*FacultyService, *mockFacultyRepo, *mockHODRepo, *mockPrincipalWriter) {
	repo := &mockFacultyRepo{
		items: map[string]*models.Faculty{
			facultyCSEID: {ID: facultyCSEID, Name: "Dr. CSE", Department: "CSE", Active: true},
			facultyECEID: {ID: facultyECEID, Name: "Dr. ECE", Department: "ECE", Active: true},
		},
		menteeIDs: map[string][]string{facultyCSEID: {studentCSEID}},
	}
	hods := &mockHODRepo{}
	students := &mockFacultyStudents{items: map[string]*models.Student{
		studentCSEID: {ID: studentCSEID, Name: "CSE Student", Department: "CSE"},
		studentECEID: {ID: studentECEID, Name: "ECE Student", Department: "ECE"},
	}}
	principals := &mockPrincipalWriter{}
	svc := NewFacultyService(repo, hods, students, principals, validator.New(), zap.NewNop())
	return svc, repo, hods, principals
}

func TestFacultyGetVisibility(t *testing.T) {
	svc, _, _, _ := newFacultyFixture()

	_, err := svc.Get(context.Background(), adminScope("p0"), facultyECEID)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), hodScope("p1", facultyCSEID, "CSE"), facultyECEID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.Get(context.Background(), facultyScope("p2", facultyECEID), facultyECEID)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), facultyScope("p2", facultyECEID), facultyCSEID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestFacultyMentees(t *testing.T) {
	svc, _, _, _ := newFacultyFixture()

	mentees, err := svc.Mentees(context.Background(), facultyScope("p1", facultyCSEID), facultyCSEID)
	require.NoError(t, err)
	require.Len(t, mentees, 1)
	assert.Equal(t, studentCSEID, mentees[0].ID)
}

func TestFacultyMenteesEmptyWithoutQuery(t *testing.T) {
	svc, repo, _, _ := newFacultyFixture()
	repo.menteeIDs = nil

	mentees, err := svc.Mentees(context.Background(), facultyScope("p1", facultyCSEID), facultyCSEID)
	require.NoError(t, err)
	assert.Empty(t, mentees)
}

func TestAssignMentorWithinDepartment(t *testing.T) {
	svc, repo, _, _ := newFacultyFixture()

	err := svc.AssignMentor(context.Background(), hodScope("p1", facultyCSEID, "CSE"), models.AssignMentorRequest{
		FacultyID: facultyCSEID,
		StudentID: studentCSEID,
	})
	require.NoError(t, err)
	require.Len(t, repo.assignments, 1)
	assert.Equal(t, [2]string{facultyCSEID, studentCSEID}, repo.assignments[0])
}

func TestAssignMentorCrossDepartmentForbiddenForHOD(t *testing.T) {
	svc, repo, _, _ := newFacultyFixture()

	err := svc.AssignMentor(context.Background(), hodScope("p1", facultyCSEID, "CSE"), models.AssignMentorRequest{
		FacultyID: facultyCSEID,
		StudentID: studentECEID,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.assignments)
}

func TestAssignMentorCrossDepartmentAllowedForAdmin(t *testing.T) {
	svc, repo, _, _ := newFacultyFixture()

	err := svc.AssignMentor(context.Background(), adminScope("p0"), models.AssignMentorRequest{
		FacultyID: facultyCSEID,
		StudentID: studentECEID,
	})
	require.NoError(t, err)
	require.Len(t, repo.assignments, 1)
}

func TestAssignMentorInactiveFacultyRejected(t *testing.T) {
	svc, repo, _, _ := newFacultyFixture()
	repo.items[facultyCSEID].Active = false

	err := svc.AssignMentor(context.Background(), adminScope("p0"), models.AssignMentorRequest{
		FacultyID: facultyCSEID,
		StudentID: studentCSEID,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAppointHODAdminOnly(t *testing.T) {
	svc, _, hods, _ := newFacultyFixture()

	_, err := svc.AppointHOD(context.Background(), hodScope("p1", facultyCSEID, "CSE"), models.AppointHODRequest{
		FacultyID:  facultyCSEID,
		Department: "CSE",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	appointment, err := svc.AppointHOD(context.Background(), adminScope("p0"), models.AppointHODRequest{
		FacultyID:  facultyCSEID,
		Department: "CSE",
	})
	require.NoError(t, err)
	assert.Equal(t, facultyCSEID, appointment.FacultyID)
	assert.Equal(t, "CSE", appointment.Department)
	require.Len(t, hods.appointments, 1)
}

func TestCurrentHODDepartmentScope(t *testing.T) {
	svc, _, hods, _ := newFacultyFixture()
	hods.current = map[string]*models.HODAppointment{
		"CSE": {ID: "a1", FacultyID: facultyCSEID, Department: "CSE"},
	}

	appointment, err := svc.CurrentHOD(context.Background(), hodScope("p1", facultyCSEID, "CSE"), "CSE")
	require.NoError(t, err)
	assert.Equal(t, facultyCSEID, appointment.FacultyID)

	_, err = svc.CurrentHOD(context.Background(), hodScope("p1", facultyCSEID, "CSE"), "ECE")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.CurrentHOD(context.Background(), adminScope("p0"), "ECE")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
