package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nitap-dev/mentor-portal-api/internal/models"
	"github.com/nitap-dev/mentor-portal-api/internal/policy"
	appErrors "github.com/nitap-dev/mentor-portal-api/pkg/errors"
	"github.com/nitap-dev/mentor-portal-api/pkg/mailer"
)

type meetingRepository interface {
	Create(ctx context.Context, m *models.Meeting) error
	FindByID(ctx context.Context, id string) (*models.Meeting, error)
	List(ctx context.Context, filter models.MeetingFilter) ([]models.Meeting, int, error)
	UpdateStatus(ctx context.Context, id string, status models.MeetingStatus, cancelReason string) error
	SetReview(ctx context.Context, id, review string) error
}

type participantSource interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type meetingFacultySource interface {
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
}

type meetingAppointmentSource interface {
	CurrentByFaculty(ctx context.Context, facultyID string) (*models.HODAppointment, error)
}

type meetingNotifier interface {
	MeetingScheduled(meeting models.Meeting, organizer string, recipients []mailer.Address)
}

// MeetingService implements the meeting workflow: creation with a fixed
// participant set, listing under scope visibility, and the
// SCHEDULED -> COMPLETED / CANCELLED transitions.
type MeetingService struct {
	repo         meetingRepository
	students     participantSource
	faculty      meetingFacultySource
	appointments meetingAppointmentSource
	notifier     meetingNotifier
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewMeetingService constructs a MeetingService instance.
func NewMeetingService(repo meetingRepository, students participantSource, faculty meetingFacultySource, appointments meetingAppointmentSource, notifier meetingNotifier, validate *validator.Validate, logger *zap.Logger) *MeetingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MeetingService{
		repo:         repo,
		students:     students,
		faculty:      faculty,
		appointments: appointments,
		notifier:     notifier,
		validator:    validate,
		logger:       logger,
	}
}

// Create schedules a meeting on behalf of the scope, acting in the given
// role. Every participant must be inside the creator's mentoring scope;
// one out-of-scope or unknown student rejects the whole request and
// nothing is persisted. Notification delivery is asynchronous and never
// fails the call.
func (s *MeetingService) Create(ctx context.Context, scope *policy.Scope, as models.Role, req models.CreateMeetingRequest) (*models.Meeting, error) {
	if !scope.Has(as) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role not held")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid meeting payload")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "time must be HH:MM")
	}

	seen := make(map[string]struct{}, len(req.StudentIDs))
	participants := make([]models.Student, 0, len(req.StudentIDs))
	for _, id := range req.StudentIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		student, err := s.students.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrInvalidParticipant, fmt.Sprintf("student %s not found", id))
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load participant")
		}
		if !policy.ParticipantInScope(scope, student) {
			return nil, appErrors.Clone(appErrors.ErrInvalidParticipant, fmt.Sprintf("student %s is outside your mentoring scope", id))
		}
		participants = append(participants, *student)
	}

	organizer, err := s.faculty.FindByID(ctx, scope.FacultyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load organizer")
	}

	now := time.Now().UTC()
	meeting := &models.Meeting{
		ID:                 uuid.NewString(),
		CreatorPrincipalID: scope.PrincipalID,
		CreatorRole:        as,
		FacultyID:          &organizer.ID,
		Department:         organizer.Department,
		Date:               date,
		Time:               req.Time,
		Description:        req.Description,
		Status:             models.MeetingScheduled,
		StudentIDs:         studentIDs(participants),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if as == models.RoleHOD {
		appointment, err := s.appointments.CurrentByFaculty(ctx, scope.FacultyID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
		}
		meeting.HODID = &appointment.ID
		meeting.Department = appointment.Department
	}

	if err := s.repo.Create(ctx, meeting); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create meeting")
	}

	if s.notifier != nil {
		recipients := make([]mailer.Address, 0, len(participants)+1)
		for _, p := range participants {
			recipients = append(recipients, mailer.Address{Name: p.Name, Email: p.CollegeEmail})
		}
		recipients = append(recipients, mailer.Address{Name: organizer.Name, Email: organizer.CollegeEmail})
		s.notifier.MeetingScheduled(*meeting, organizer.Name, recipients)
	}

	return meeting, nil
}

// List returns the meetings visible to the scope, newest first. A
// scheduled meeting whose date has passed is presented as COMPLETED
// without rewriting the stored row.
func (s *MeetingService) List(ctx context.Context, scope *policy.Scope, page, pageSize int) ([]models.Meeting, *models.Pagination, error) {
	filter := policy.MeetingFilter(scope)
	filter.Page = page
	filter.PageSize = pageSize

	meetings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list meetings")
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	for i := range meetings {
		if meetings[i].Status == models.MeetingScheduled && meetings[i].Date.Before(today) {
			meetings[i].Status = models.MeetingCompleted
		}
	}

	return meetings, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns one meeting if the scope may read it.
func (s *MeetingService) Get(ctx context.Context, scope *policy.Scope, id string) (*models.Meeting, error) {
	meeting, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanReadMeeting(scope, meeting) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "meeting is outside your scope")
	}
	return meeting, nil
}

// Cancel moves a scheduled meeting to CANCELLED. Only the creator may
// cancel; cancelling a terminal meeting reports a conflict.
func (s *MeetingService) Cancel(ctx context.Context, scope *policy.Scope, id string, req models.CancelMeetingRequest) (*models.Meeting, error) {
	return s.transition(ctx, scope, id, models.MeetingCancelled, req.Reason)
}

// Complete moves a scheduled meeting to COMPLETED.
func (s *MeetingService) Complete(ctx context.Context, scope *policy.Scope, id string) (*models.Meeting, error) {
	return s.transition(ctx, scope, id, models.MeetingCompleted, "")
}

// AddReview records the creator's review of a meeting. Reviews are not
// allowed on cancelled meetings.
func (s *MeetingService) AddReview(ctx context.Context, scope *policy.Scope, id string, req models.MeetingReviewRequest) (*models.Meeting, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	meeting, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutateMeeting(scope, meeting) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the creator may review a meeting")
	}
	if meeting.Status == models.MeetingCancelled {
		return nil, appErrors.Clone(appErrors.ErrAlreadyTerminal, "cannot review a cancelled meeting")
	}

	if err := s.repo.SetReview(ctx, id, req.Review); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save review")
	}
	meeting.Review = req.Review
	return meeting, nil
}

func (s *MeetingService) transition(ctx context.Context, scope *policy.Scope, id string, to models.MeetingStatus, reason string) (*models.Meeting, error) {
	meeting, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutateMeeting(scope, meeting) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the creator may change a meeting")
	}
	if meeting.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrAlreadyTerminal, fmt.Sprintf("meeting is already %s", meeting.Status))
	}

	if err := s.repo.UpdateStatus(ctx, id, to, reason); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update meeting")
	}
	meeting.Status = to
	meeting.CancelReason = reason
	return meeting, nil
}

func (s *MeetingService) load(ctx context.Context, id string) (*models.Meeting, error) {
	meeting, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "meeting not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load meeting")
	}
	return meeting, nil
}

func studentIDs(students []models.Student) []string {
	ids := make([]string, len(students))
	for i, s := range students {
		ids[i] = s.ID
	}
	return ids
}
