package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nitap-dev/mentor-portal-api/internal/models"
	"github.com/nitap-dev/mentor-portal-api/internal/policy"
	appErrors "github.com/nitap-dev/mentor-portal-api/pkg/errors"
)

type messageRepository interface {
	Create(ctx context.Context, m *models.Message) error
	ListForPrincipal(ctx context.Context, principalID string, limit int) ([]models.Message, error)
}

type messagePrincipalSource interface {
	FindByID(ctx context.Context, id string) (*models.Principal, error)
}

// MessageService implements the append-only message board between
// principals.
type MessageService struct {
	repo       messageRepository
	principals messagePrincipalSource
	students   requestStudentSource
	faculty    requestFacultySource
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewMessageService constructs a MessageService instance.
func NewMessageService(repo messageRepository, principals messagePrincipalSource, students requestStudentSource, faculty requestFacultySource, validate *validator.Validate, logger *zap.Logger) *MessageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MessageService{repo: repo, principals: principals, students: students, faculty: faculty, validator: validate, logger: logger}
}

// Send records a message from the scope's principal to the receiver. The
// sender's display name is resolved server side.
func (s *MessageService) Send(ctx context.Context, scope *policy.Scope, req models.SendMessageRequest) (*models.Message, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload")
	}

	if _, err := s.principals.FindByID(ctx, req.ReceiverID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "receiver not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load receiver")
	}

	name, err := s.senderName(ctx, scope)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		ID:         uuid.NewString(),
		SenderID:   scope.PrincipalID,
		SenderName: name,
		ReceiverID: req.ReceiverID,
		Body:       req.Body,
		SentAt:     time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to send message")
	}
	return message, nil
}

// List returns the principal's sent and received messages, newest first.
func (s *MessageService) List(ctx context.Context, scope *policy.Scope, limit int) ([]models.Message, error) {
	messages, err := s.repo.ListForPrincipal(ctx, scope.PrincipalID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list messages")
	}
	return messages, nil
}

func (s *MessageService) senderName(ctx context.Context, scope *policy.Scope) (string, error) {
	switch {
	case scope.StudentID != "":
		student, err := s.students.FindByID(ctx, scope.StudentID)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sender")
		}
		return student.Name, nil
	case scope.FacultyID != "":
		faculty, err := s.faculty.FindByID(ctx, scope.FacultyID)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sender")
		}
		return faculty.Name, nil
	}
	return "Administrator", nil
}
