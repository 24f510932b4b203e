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

const receiverPrincipalID = "eeeeeeee-eeee-4eee-8eee-eeeeeeeeeeee"

type mockMessageRepo struct {
	sent []*models.Message
}

func (m *mockMessageRepo) Create(ctx context.Context, msg *models.Message) error {
	cp := *msg
	m.sent = append(m.sent, &cp)
	return nil
}

func (m *mockMessageRepo) ListForPrincipal(ctx context.Context, principalID string, limit int) ([]models.Message, error) {
	var out []models.Message
	for _, msg := range m.sent {
		if msg.SenderID == principalID || msg.ReceiverID == principalID {
			out = append(out, *msg)
		}
	}
	return out, nil
}

type mockPrincipalSource struct {
	items map[string]*models.Principal
}

func (m *mockPrincipalSource) FindByID(ctx context.Context, id string) (*models.Principal, error) {
	if p, ok := m.items[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func newMessageFixture() (*MessageService, *mockMessageRepo) {
	repo := &mockMessageRepo{}
	principals := &mockPrincipalSource{items: map[string]*models.Principal{
		receiverPrincipalID: {ID: receiverPrincipalID, Email: "mentor@college.edu", Role: models.RoleFaculty},
	}}
	students := &mockStudentSource{items: map[string]*models.Student{
		"s1": {ID: "s1", Name: "Student One", Department: "CSE"},
	}}
	faculty := &mockFacultySource{items: map[string]*models.Faculty{
		"f1": {ID: "f1", Name: "Dr. Mentor", Department: "CSE"},
	}}
	return NewMessageService(repo, principals, students, faculty, validator.New(), zap.NewNop()), repo
}

func TestMessageSendResolvesSenderName(t *testing.T) {
	svc, repo := newMessageFixture()

	msg, err := svc.Send(context.Background(), studentScope("p1", "s1"), models.SendMessageRequest{
		ReceiverID: receiverPrincipalID,
		Body:       "Could we reschedule Friday?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Student One", msg.SenderName)
	assert.Equal(t, "p1", msg.SenderID)
	require.Len(t, repo.sent, 1)

	msg, err = svc.Send(context.Background(), facultyScope("p2", "f1"), models.SendMessageRequest{
		ReceiverID: receiverPrincipalID,
		Body:       "Sure, Monday works.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Mentor", msg.SenderName)

	msg, err = svc.Send(context.Background(), adminScope("p0"), models.SendMessageRequest{
		ReceiverID: receiverPrincipalID,
		Body:       "Semester registration closes tomorrow.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Administrator", msg.SenderName)
}

func TestMessageSendUnknownReceiver(t *testing.T) {
	svc, repo := newMessageFixture()

	_, err := svc.Send(context.Background(), studentScope("p1", "s1"), models.SendMessageRequest{
		ReceiverID: "ffffffff-ffff-4fff-8fff-ffffffffffff",
		Body:       "hello?",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.sent)
}

func TestMessageListFiltersByPrincipal(t *testing.T) {
	svc, _ := newMessageFixture()

	_, err := svc.Send(context.Background(), studentScope("p1", "s1"), models.SendMessageRequest{
		ReceiverID: receiverPrincipalID,
		Body:       "first",
	})
	require.NoError(t, err)

	messages, err := svc.List(context.Background(), studentScope("p1", "s1"), 50)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "first", messages[0].Body)

	messages, err = svc.List(context.Background(), adminScope("p9"), 50)
	require.NoError(t, err)
	assert.Empty(t, messages)
}
