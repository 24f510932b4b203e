package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitap-dev/mentor-portal-api/internal/middleware"
	"github.com/nitap-dev/mentor-portal-api/internal/models"
	"github.com/nitap-dev/mentor-portal-api/internal/policy"
	"github.com/nitap-dev/mentor-portal-api/internal/service"
	"github.com/nitap-dev/mentor-portal-api/pkg/mailer"
)

const menteeID = "11111111-1111-4111-8111-111111111111"

type meetingRepoStub struct {
	items map[string]*models.Meeting
}

func (s *meetingRepoStub) Create(ctx context.Context, m *models.Meeting) error {
	if s.items == nil {
		s.items = make(map[string]*models.Meeting)
	}
	cp := *m
	s.items[m.ID] = &cp
	return nil
}

func (s *meetingRepoStub) FindByID(ctx context.Context, id string) (*models.Meeting, error) {
	if m, ok := s.items[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *meetingRepoStub) List(ctx context.Context, filter models.MeetingFilter) ([]models.Meeting, int, error) {
	return nil, 0, nil
}

func (s *meetingRepoStub) UpdateStatus(ctx context.Context, id string, status models.MeetingStatus, cancelReason string) error {
	if m, ok := s.items[id]; ok {
		m.Status = status
		m.CancelReason = cancelReason
	}
	return nil
}

func (s *meetingRepoStub) SetReview(ctx context.Context, id, review string) error {
	return nil
}

type studentSourceStub struct{}

func (studentSourceStub) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if id == menteeID {
		return &models.Student{ID: menteeID, Name: "Mentee", Department: "CSE", CollegeEmail: "mentee@college.edu"}, nil
	}
	return nil, sql.ErrNoRows
}

type facultySourceStub struct{}

func (facultySourceStub) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	return &models.Faculty{ID: id, Name: "Dr. Mentor", Department: "CSE", CollegeEmail: "mentor@college.edu"}, nil
}

type appointmentSourceStub struct{}

func (appointmentSourceStub) CurrentByFaculty(ctx context.Context, facultyID string) (*models.HODAppointment, error) {
	return nil, sql.ErrNoRows
}

type notifierStub struct{}

func (notifierStub) MeetingScheduled(meeting models.Meeting, organizer string, recipients []mailer.Address) {
}

func newMeetingHandler(repo *meetingRepoStub) *MeetingHandler {
	svc := service.NewMeetingService(repo, studentSourceStub{}, facultySourceStub{}, appointmentSourceStub{}, notifierStub{}, nil, nil)
	return NewMeetingHandler(svc)
}

func mentorScope() *policy.Scope {
	return &policy.Scope{
		PrincipalID: "p1",
		Roles:       map[models.Role]struct{}{models.RoleFaculty: {}},
		FacultyID:   "f1",
		MenteeIDs:   map[string]struct{}{menteeID: {}},
	}
}

func testContext(t *testing.T, method, path string, body interface{}, scope *policy.Scope) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	if scope != nil {
		c.Set(middleware.ContextScopeKey, scope)
	}
	return c, w
}

func TestMeetingHandlerCreate(t *testing.T) {
	repo := &meetingRepoStub{}
	handler := newMeetingHandler(repo)

	payload := models.CreateMeetingRequest{
		Date:       time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
		Time:       "14:00",
		StudentIDs: []string{menteeID},
	}
	c, w := testContext(t, http.MethodPost, "/meetings", payload, mentorScope())

	handler.CreateAsFaculty(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, repo.items, 1)
}

func TestMeetingHandlerCreateInvalidBody(t *testing.T) {
	handler := newMeetingHandler(&meetingRepoStub{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/meetings", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextScopeKey, mentorScope())

	handler.CreateAsFaculty(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMeetingHandlerCreateAsHODWithoutCapability(t *testing.T) {
	handler := newMeetingHandler(&meetingRepoStub{})

	payload := models.CreateMeetingRequest{
		Date:       time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
		Time:       "09:00",
		StudentIDs: []string{menteeID},
	}
	c, w := testContext(t, http.MethodPost, "/hod/meetings", payload, mentorScope())

	handler.CreateAsHOD(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMeetingHandlerCancelByNonCreator(t *testing.T) {
	repo := &meetingRepoStub{items: map[string]*models.Meeting{
		"m1": {ID: "m1", CreatorPrincipalID: "someone-else", Department: "CSE", Status: models.MeetingScheduled},
	}}
	handler := newMeetingHandler(repo)

	c, w := testContext(t, http.MethodPost, "/meetings/m1/cancel", models.CancelMeetingRequest{Reason: "clash"}, mentorScope())
	c.Params = gin.Params{{Key: "id", Value: "m1"}}

	handler.Cancel(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, models.MeetingScheduled, repo.items["m1"].Status)
}
