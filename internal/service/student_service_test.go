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
	"github.com/nitap-dev/mentor-portal-api/internal/policy"
	appErrors "github.com/nitap-dev/mentor-portal-api/pkg/errors"
)

type mockStudentRepo struct {
	items      map[string]*models.Student
	byRoll     map[int64]*models.Student
	duplicate  bool
	lastFilter models.StudentFilter
	updated    *models.Student
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	m.lastFilter = filter
	return nil, 0, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) FindByRollNumber(ctx context.Context, rollNumber int64) (*models.Student, error) {
	if s, ok := m.byRoll[rollNumber]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByRollNumber(ctx context.Context, rollNumber, registrationNumber int64, excludeID string) (bool, error) {
	return m.duplicate, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, s *models.Student) error {
	if m.items == nil {
		m.items = make(map[string]*models.Student)
	}
	cp := *s
	m.items[s.ID] = &cp
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, s *models.Student) error {
	cp := *s
	m.items[s.ID] = &cp
	m.updated = &cp
	return nil
}

type mockPrincipalWriter struct {
	created []*models.Principal
}

func (m *mockPrincipalWriter) Create(ctx context.Context, p *models.Principal) error {
	cp := *p
	m.created = append(m.created, &cp)
	return nil
}

func (m *mockPrincipalWriter) SetActive(ctx context.Context, id string, active bool) error {
	return nil
}

type mockMentorProfiles struct {
	profile *models.MentorProfile
}

func (m *mockMentorProfiles) MentorProfileForStudent(ctx context.Context, studentID string) (*models.MentorProfile, error) {
	if m.profile == nil {
		return nil, sql.ErrNoRows
	}
	cp := *m.profile
	return &cp, nil
}

func adminScope(principalID string) *policy.Scope {
	return &policy.Scope{
		PrincipalID: principalID,
		Roles:       map[models.Role]struct{}{models.RoleAdmin: {}},
	}
}

func newStudentFixture() (*StudentService, *mockStudentRepo, *mockPrincipalWriter, *mockMentorProfiles) {
	repo := &mockStudentRepo{items: map[string]*models.Student{
		"s1": {ID: "s1", RollNumber: 2301, Name: "Student One", Department: "CSE", Status: models.StudentPursuing, AccountStatus: models.AccountActive},
		"s2": {ID: "s2", RollNumber: 2302, Name: "Student Two", Department: "ECE", Status: models.StudentPursuing, AccountStatus: models.AccountActive},
	}}
	repo.byRoll = map[int64]*models.Student{
		2301: repo.items["s1"],
		2302: repo.items["s2"],
	}
	principals := &mockPrincipalWriter{}
	mentors := &mockMentorProfiles{}
	svc := NewStudentService(repo, principals, mentors, validator.New(), zap.NewNop())
	return svc, repo, principals, mentors
}

func TestStudentGetSelf(t *testing.T) {
	svc, _, _, _ := newStudentFixture()

	student, err := svc.Get(context.Background(), studentScope("p1", "s1"), "s1")
	require.NoError(t, err)
	assert.Equal(t, "Student One", student.Name)
}

func TestStudentGetOtherForbidden(t *testing.T) {
	svc, _, _, _ := newStudentFixture()

	_, err := svc.Get(context.Background(), studentScope("p1", "s1"), "s2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestStudentGetByFacultyNonMenteeForbidden(t *testing.T) {
	svc, _, _, _ := newStudentFixture()

	_, err := svc.Get(context.Background(), facultyScope("p2", "f1", "s2"), "s1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.Get(context.Background(), facultyScope("p2", "f1", "s1"), "s1")
	assert.NoError(t, err)
}

func TestStudentGetByRollNumberSameRules(t *testing.T) {
	svc, _, _, _ := newStudentFixture()

	student, err := svc.GetByRollNumber(context.Background(), adminScope("p0"), 2302)
	require.NoError(t, err)
	assert.Equal(t, "s2", student.ID)

	_, err = svc.GetByRollNumber(context.Background(), studentScope("p1", "s1"), 2302)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.GetByRollNumber(context.Background(), adminScope("p0"), 9999)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentListScopePinsDepartmentForHOD(t *testing.T) {
	svc, repo, _, _ := newStudentFixture()

	_, _, err := svc.List(context.Background(), hodScope("p3", "f1", "CSE"), models.StudentFilter{Department: "ECE"})
	require.NoError(t, err)
	assert.Equal(t, "CSE", repo.lastFilter.Department)
}

func TestStudentListAdminMayFilterDepartment(t *testing.T) {
	svc, repo, _, _ := newStudentFixture()

	_, _, err := svc.List(context.Background(), adminScope("p0"), models.StudentFilter{Department: "ECE"})
	require.NoError(t, err)
	assert.Equal(t, "ECE", repo.lastFilter.Department)
}

func TestStudentMentorProfile(t *testing.T) {
	svc, _, _, mentors := newStudentFixture()
	mentors.profile = &models.MentorProfile{ID: "f1", Name: "Dr. Mentor", Department: "CSE"}

	profile, err := svc.MentorProfile(context.Background(), studentScope("p1", "s1"), "s1")
	require.NoError(t, err)
	assert.Equal(t, "Dr. Mentor", profile.Name)
}

func TestStudentMentorProfileUnassigned(t *testing.T) {
	svc, _, _, _ := newStudentFixture()

	_, err := svc.MentorProfile(context.Background(), studentScope("p1", "s1"), "s1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func newCreateStudentRequest() models.CreateStudentRequest {
	return models.CreateStudentRequest{
		RollNumber:         2310,
		RegistrationNumber: 910,
		Name:               "New Student",
		CollegeEmail:       "new.student@college.edu",
		DOB:                "2005-04-12",
		Gender:             "F",
		Program:            "B.Tech",
		Branch:             "CSE",
		Department:         "ECE",
		Password:           "changeme123",
	}
}

func TestStudentCreateProvisionsAccount(t *testing.T) {
	svc, repo, principals, _ := newStudentFixture()

	student, err := svc.Create(context.Background(), adminScope("p0"), newCreateStudentRequest())
	require.NoError(t, err)
	assert.Equal(t, models.StudentPursuing, student.Status)
	assert.Equal(t, models.AccountActive, student.AccountStatus)
	assert.Equal(t, "ECE", student.Department)
	assert.NotNil(t, repo.items[student.ID])

	require.Len(t, principals.created, 1)
	account := principals.created[0]
	assert.Equal(t, models.RoleStudent, account.Role)
	assert.Equal(t, "new.student@college.edu", account.Email)
	require.NotNil(t, account.StudentID)
	assert.Equal(t, student.ID, *account.StudentID)
	assert.NotEqual(t, "changeme123", account.PasswordHash)
}

func TestStudentCreateHODPinnedToOwnDepartment(t *testing.T) {
	svc, _, _, _ := newStudentFixture()

	req := newCreateStudentRequest()
	req.Department = "ECE"
	student, err := svc.Create(context.Background(), hodScope("p3", "f1", "CSE"), req)
	require.NoError(t, err)
	assert.Equal(t, "CSE", student.Department)
}

func TestStudentCreateDuplicateRollConflicts(t *testing.T) {
	svc, repo, principals, _ := newStudentFixture()
	repo.duplicate = true

	_, err := svc.Create(context.Background(), adminScope("p0"), newCreateStudentRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, principals.created)
}

func TestStudentCreateByFacultyForbidden(t *testing.T) {
	svc, _, _, _ := newStudentFixture()

	_, err := svc.Create(context.Background(), facultyScope("p2", "f1"), newCreateStudentRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestStudentUpdateSelfLimitedFields(t *testing.T) {
	svc, repo, _, _ := newStudentFixture()

	phone := "9876543210"
	name := "Hacked Name"
	status := models.StudentGraduated
	department := "ECE"
	updated, err := svc.Update(context.Background(), studentScope("p1", "s1"), "s1", models.UpdateStudentRequest{
		Phone:      &phone,
		Name:       &name,
		Status:     &status,
		Department: &department,
	})
	require.NoError(t, err)

	assert.Equal(t, "9876543210", updated.Phone)
	assert.Equal(t, "Student One", updated.Name)
	assert.Equal(t, models.StudentPursuing, updated.Status)
	assert.Equal(t, "CSE", updated.Department)
	assert.Equal(t, "9876543210", repo.updated.Phone)
}

func TestStudentUpdateMentorManagesStatus(t *testing.T) {
	svc, _, _, _ := newStudentFixture()

	status := models.StudentGraduated
	name := "Renamed"
	updated, err := svc.Update(context.Background(), facultyScope("p2", "f1", "s1"), "s1", models.UpdateStudentRequest{
		Status: &status,
		Name:   &name,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StudentGraduated, updated.Status)
	assert.Equal(t, "Student One", updated.Name)
}

func TestStudentUpdateDepartmentAdminOnly(t *testing.T) {
	svc, _, _, _ := newStudentFixture()

	department := "ECE"
	updated, err := svc.Update(context.Background(), hodScope("p3", "f1", "CSE"), "s1", models.UpdateStudentRequest{Department: &department})
	require.NoError(t, err)
	assert.Equal(t, "CSE", updated.Department)

	updated, err = svc.Update(context.Background(), adminScope("p0"), "s1", models.UpdateStudentRequest{Department: &department})
	require.NoError(t, err)
	assert.Equal(t, "ECE", updated.Department)
}

func TestStudentUpdateOutOfScopeForbidden(t *testing.T) {
	svc, _, _, _ := newStudentFixture()

	phone := "9876543210"
	_, err := svc.Update(context.Background(), hodScope("p3", "f1", "CSE"), "s2", models.UpdateStudentRequest{Phone: &phone})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
