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

type requestRepository interface {
	Create(ctx context.Context, req *models.Request) error
	FindByID(ctx context.Context, id string) (*models.Request, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.Request, int, error)
	Decide(ctx context.Context, id string, status models.RequestStatus, notes, reviewedBy string, reviewedAt time.Time) (bool, error)
}

type requestStudentSource interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type requestFacultySource interface {
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
}

// RequestService implements the PENDING -> APPROVED / REJECTED approval
// workflow.
type RequestService struct {
	repo      requestRepository
	students  requestStudentSource
	faculty   requestFacultySource
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRequestService constructs a RequestService instance.
func NewRequestService(repo requestRepository, students requestStudentSource, faculty requestFacultySource, validate *validator.Validate, logger *zap.Logger) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RequestService{repo: repo, students: students, faculty: faculty, validator: validate, logger: logger}
}

// Create raises a request on behalf of the scope. The department is
// derived from the requester's own record so HOD routing cannot be
// spoofed by the payload.
func (s *RequestService) Create(ctx context.Context, scope *policy.Scope, req models.CreateRequestRequest) (*models.Request, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}

	department, err := s.requesterDepartment(ctx, scope)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	request := &models.Request{
		ID:                   uuid.NewString(),
		RequesterPrincipalID: scope.PrincipalID,
		TargetPrincipalID:    req.TargetPrincipalID,
		Type:                 req.Type,
		Description:          req.Description,
		Department:           department,
		Status:               models.RequestPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create request")
	}
	return request, nil
}

// List returns requests visible to the scope, optionally filtered by
// status.
func (s *RequestService) List(ctx context.Context, scope *policy.Scope, status *models.RequestStatus, page, pageSize int) ([]models.Request, *models.Pagination, error) {
	filter := policy.RequestFilter(scope)
	filter.Status = status
	filter.Page = page
	filter.PageSize = pageSize

	requests, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	return requests, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns one request if the scope may read it.
func (s *RequestService) Get(ctx context.Context, scope *policy.Scope, id string) (*models.Request, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case scope.IsAdmin():
	case request.RequesterPrincipalID == scope.PrincipalID:
	case request.TargetPrincipalID != nil && *request.TargetPrincipalID == scope.PrincipalID:
	case scope.Has(models.RoleHOD) && request.Department == scope.Department:
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "request is outside your scope")
	}
	return request, nil
}

// Decide approves or rejects a pending request. The status flip is a
// conditional update, so two racing decisions cannot both land: the loser
// observes the terminal state and gets a conflict.
func (s *RequestService) Decide(ctx context.Context, scope *policy.Scope, id string, req models.DecideRequestRequest) (*models.Request, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload")
	}

	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanDecideRequest(scope, request) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "request is outside your scope")
	}
	if request.Status.Decided() {
		return nil, appErrors.Clone(appErrors.ErrAlreadyTerminal, "request is already decided")
	}

	reviewedAt := time.Now().UTC()
	decided, err := s.repo.Decide(ctx, id, req.Status, req.Notes, scope.PrincipalID, reviewedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decide request")
	}
	if !decided {
		return nil, appErrors.Clone(appErrors.ErrAlreadyTerminal, "request is already decided")
	}

	request.Status = req.Status
	request.ReviewNotes = req.Notes
	request.ReviewedBy = &scope.PrincipalID
	request.ReviewedAt = &reviewedAt
	return request, nil
}

func (s *RequestService) requesterDepartment(ctx context.Context, scope *policy.Scope) (string, error) {
	switch {
	case scope.Department != "":
		return scope.Department, nil
	case scope.StudentID != "":
		student, err := s.students.FindByID(ctx, scope.StudentID)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requester")
		}
		return student.Department, nil
	case scope.FacultyID != "":
		faculty, err := s.faculty.FindByID(ctx, scope.FacultyID)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requester")
		}
		return faculty.Department, nil
	}
	return "", nil
}

func (s *RequestService) load(ctx context.Context, id string) (*models.Request, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	return request, nil
}
