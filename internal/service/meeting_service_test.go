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
	"github.com/nitap-dev/mentor-portal-api/pkg/mailer"
)

type mockMeetingRepo struct {
	items      map[string]*models.Meeting
	listResult []models.Meeting
	listTotal  int
}

func (m *mockMeetingRepo) Create(ctx context.Context, meeting *models.Meeting) error {
	if m.items == nil {
		m.items = make(map[string]*models.Meeting)
	}
	cp := *meeting
	m.items[meeting.ID] = &cp
	return nil
}

func (m *mockMeetingRepo) FindByID(ctx context.Context, id string) (*models.Meeting, error) {
	if meeting, ok := m.items[id]; ok {
		cp := *meeting
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockMeetingRepo) List(ctx context.Context, filter models.MeetingFilter) ([]models.Meeting, int, error) {
	return m.listResult, m.listTotal, nil
}

func (m *mockMeetingRepo) UpdateStatus(ctx context.Context, id string, status models.MeetingStatus, cancelReason string) error {
	if meeting, ok := m.items[id]; ok {
		meeting.Status = status
		meeting.CancelReason = cancelReason
	}
	return nil
}

func (m *mockMeetingRepo) SetReview(ctx context.Context, id, review string) error {
	if meeting, ok := m.items[id]; ok {
		meeting.Review = review
	}
	return nil
}

type mockStudentSource struct {
	items map[string]*models.Student
}

func (m *mockStudentSource) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type mockFacultySource struct {
	items map[string]*models.Faculty
}

func (m *mockFacultySource) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	if f, ok := m.items[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type mockAppointments struct {
	items map[string]*models.HODAppointment
}

func (m *mockAppointments) CurrentByFaculty(ctx context.Context, facultyID string) (*models.HODAppointment, error) {
	if a, ok := m.items[facultyID]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type recordedNotification struct {
	meeting    models.Meeting
	organizer  string
	recipients []mailer.Address
}

type mockNotifier struct {
	sent []recordedNotification
}

func (m *mockNotifier) MeetingScheduled(meeting models.Meeting, organizer string, recipients []mailer.Address) {
	m.sent = append(m.sent, recordedNotification{meeting: meeting, organizer: organizer, recipients: recipients})
}

func facultyScope(principalID, facultyID string, menteeIDs ...string) *policy.Scope {
	mentees := make(map[string]struct{}, len(menteeIDs))
	for _, id := range menteeIDs {
		mentees[id] = struct{}{}
	}
	return &policy.Scope{
		PrincipalID: principalID,
		Roles:       map[models.Role]struct{}{models.RoleFaculty: {}},
		FacultyID:   facultyID,
		MenteeIDs:   mentees,
	}
}

func newMeetingFixture() (*MeetingService, *mockMeetingRepo, *mockNotifier) {
	repo := &mockMeetingRepo{}
	students := &mockStudentSource{items: map[string]*models.Student{
		"11111111-1111-1111-1111-111111111111": {ID: "11111111-1111-1111-1111-111111111111", Name: "Student One", CollegeEmail: "s1@nitap.ac.in", Department: "CSE"},
		"22222222-2222-2222-2222-222222222222": {ID: "22222222-2222-2222-2222-222222222222", Name: "Student Two", CollegeEmail: "s2@nitap.ac.in", Department: "CSE"},
	}}
	faculty := &mockFacultySource{items: map[string]*models.Faculty{
		"f1": {ID: "f1", Name: "Dr. Mentor", CollegeEmail: "mentor@nitap.ac.in", Department: "CSE"},
	}}
	notifier := &mockNotifier{}
	svc := NewMeetingService(repo, students, faculty, &mockAppointments{}, notifier, validator.New(), zap.NewNop())
	return svc, repo, notifier
}

func TestMeetingCreateWithMentees(t *testing.T) {
	svc, repo, notifier := newMeetingFixture()
	scope := facultyScope("p1", "f1", "11111111-1111-1111-1111-111111111111", "22222222-2222-2222-2222-222222222222")

	meeting, err := svc.Create(context.Background(), scope, models.RoleFaculty, models.CreateMeetingRequest{
		Date:       "2026-09-15",
		Time:       "14:30",
		StudentIDs: []string{"11111111-1111-1111-1111-111111111111", "22222222-2222-2222-2222-222222222222"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.MeetingScheduled, meeting.Status)
	assert.Equal(t, "p1", meeting.CreatorPrincipalID)
	assert.Equal(t, "CSE", meeting.Department)
	assert.Len(t, meeting.StudentIDs, 2)
	assert.Len(t, repo.items, 1)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "Dr. Mentor", notifier.sent[0].organizer)
	// Participants plus the organizer.
	assert.Len(t, notifier.sent[0].recipients, 3)
}

func TestMeetingCreateRejectsNonMentee(t *testing.T) {
	svc, repo, notifier := newMeetingFixture()
	scope := facultyScope("p1", "f1", "11111111-1111-1111-1111-111111111111")

	_, err := svc.Create(context.Background(), scope, models.RoleFaculty, models.CreateMeetingRequest{
		Date:       "2026-09-15",
		Time:       "14:30",
		StudentIDs: []string{"11111111-1111-1111-1111-111111111111", "22222222-2222-2222-2222-222222222222"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidParticipant.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.items)
	assert.Empty(t, notifier.sent)
}

func TestMeetingCreateRejectsUnknownStudent(t *testing.T) {
	svc, repo, _ := newMeetingFixture()
	scope := facultyScope("p1", "f1", "99999999-9999-9999-9999-999999999999")

	_, err := svc.Create(context.Background(), scope, models.RoleFaculty, models.CreateMeetingRequest{
		Date:       "2026-09-15",
		Time:       "14:30",
		StudentIDs: []string{"99999999-9999-9999-9999-999999999999"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidParticipant.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.items)
}

func TestMeetingCreateRequiresHeldRole(t *testing.T) {
	svc, _, _ := newMeetingFixture()
	scope := facultyScope("p1", "f1", "11111111-1111-1111-1111-111111111111")

	_, err := svc.Create(context.Background(), scope, models.RoleHOD, models.CreateMeetingRequest{
		Date:       "2026-09-15",
		Time:       "14:30",
		StudentIDs: []string{"11111111-1111-1111-1111-111111111111"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestMeetingCancelThenCancelAgain(t *testing.T) {
	svc, repo, _ := newMeetingFixture()
	repo.items = map[string]*models.Meeting{
		"m1": {ID: "m1", CreatorPrincipalID: "p1", Status: models.MeetingScheduled},
	}
	scope := facultyScope("p1", "f1")

	meeting, err := svc.Cancel(context.Background(), scope, "m1", models.CancelMeetingRequest{Reason: "exam week"})
	require.NoError(t, err)
	assert.Equal(t, models.MeetingCancelled, meeting.Status)
	assert.Equal(t, "exam week", meeting.CancelReason)

	_, err = svc.Cancel(context.Background(), scope, "m1", models.CancelMeetingRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAlreadyTerminal.Code, appErrors.FromError(err).Code)
}

func TestMeetingCancelCreatorOnly(t *testing.T) {
	svc, repo, _ := newMeetingFixture()
	repo.items = map[string]*models.Meeting{
		"m1": {ID: "m1", CreatorPrincipalID: "p1", Status: models.MeetingScheduled},
	}

	other := facultyScope("p2", "f2")
	_, err := svc.Cancel(context.Background(), other, "m1", models.CancelMeetingRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Equal(t, models.MeetingScheduled, repo.items["m1"].Status)
}

func TestMeetingCompleteTerminal(t *testing.T) {
	svc, repo, _ := newMeetingFixture()
	repo.items = map[string]*models.Meeting{
		"m1": {ID: "m1", CreatorPrincipalID: "p1", Status: models.MeetingCompleted},
	}
	scope := facultyScope("p1", "f1")

	_, err := svc.Complete(context.Background(), scope, "m1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAlreadyTerminal.Code, appErrors.FromError(err).Code)
}

func TestMeetingListInfersCompletion(t *testing.T) {
	svc, repo, _ := newMeetingFixture()
	past := time.Now().UTC().AddDate(0, 0, -2)
	future := time.Now().UTC().AddDate(0, 0, 2)
	repo.listResult = []models.Meeting{
		{ID: "m1", Status: models.MeetingScheduled, Date: past},
		{ID: "m2", Status: models.MeetingScheduled, Date: future},
		{ID: "m3", Status: models.MeetingCancelled, Date: past},
	}
	repo.listTotal = 3

	meetings, pagination, err := svc.List(context.Background(), facultyScope("p1", "f1"), 1, 20)
	require.NoError(t, err)
	require.Len(t, meetings, 3)
	assert.Equal(t, models.MeetingCompleted, meetings[0].Status)
	assert.Equal(t, models.MeetingScheduled, meetings[1].Status)
	assert.Equal(t, models.MeetingCancelled, meetings[2].Status)
	assert.Equal(t, 3, pagination.TotalCount)
}

func TestMeetingReviewCancelledRejected(t *testing.T) {
	svc, repo, _ := newMeetingFixture()
	repo.items = map[string]*models.Meeting{
		"m1": {ID: "m1", CreatorPrincipalID: "p1", Status: models.MeetingCancelled},
	}
	scope := facultyScope("p1", "f1")

	_, err := svc.AddReview(context.Background(), scope, "m1", models.MeetingReviewRequest{Review: "went well"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAlreadyTerminal.Code, appErrors.FromError(err).Code)
}

func TestMeetingReviewByCreator(t *testing.T) {
	svc, repo, _ := newMeetingFixture()
	repo.items = map[string]*models.Meeting{
		"m1": {ID: "m1", CreatorPrincipalID: "p1", Status: models.MeetingCompleted},
	}
	scope := facultyScope("p1", "f1")

	meeting, err := svc.AddReview(context.Background(), scope, "m1", models.MeetingReviewRequest{Review: "productive session"})
	require.NoError(t, err)
	assert.Equal(t, "productive session", meeting.Review)
	assert.Equal(t, "productive session", repo.items["m1"].Review)
}
