// Package policy maps an authenticated principal onto the records it may
// see or mutate. Every data-fetching service resolves a Scope first and
// applies its predicates before any caller-supplied filtering, so callers
// can narrow visibility but never widen it. Out-of-scope access fails with
// Forbidden, never NotFound and never an empty result.
package policy

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/nitap-dev/mentor-portal-api/internal/models"
	appErrors "github.com/nitap-dev/mentor-portal-api/pkg/errors"
)

// Scope is the resolved visibility of one principal for one request. A
// faculty member holding an open HOD appointment carries both the FACULTY
// and HOD capabilities; Department then comes from the appointment record,
// which wins over the faculty record's own department.
type Scope struct {
	PrincipalID string
	Roles       map[models.Role]struct{}
	Department  string
	FacultyID   string
	StudentID   string
	MenteeIDs   map[string]struct{}
}

// Has reports whether the scope carries the given role capability.
func (s *Scope) Has(role models.Role) bool {
	_, ok := s.Roles[role]
	return ok
}

// IsAdmin reports whether the scope is unrestricted.
func (s *Scope) IsAdmin() bool {
	return s.Has(models.RoleAdmin)
}

// Mentors reports whether the student is on the principal's mentee list.
func (s *Scope) Mentors(studentID string) bool {
	_, ok := s.MenteeIDs[studentID]
	return ok
}

type principalSource interface {
	FindByID(ctx context.Context, id string) (*models.Principal, error)
}

type mentorshipSource interface {
	MenteeIDs(ctx context.Context, facultyID string) ([]string, error)
}

type appointmentSource interface {
	CurrentByFaculty(ctx context.Context, facultyID string) (*models.HODAppointment, error)
}

// Resolver builds Scopes from session claims.
type Resolver struct {
	principals   principalSource
	mentorships  mentorshipSource
	appointments appointmentSource
	logger       *zap.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(principals principalSource, mentorships mentorshipSource, appointments appointmentSource, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{principals: principals, mentorships: mentorships, appointments: appointments, logger: logger}
}

// Resolve loads the principal's current scope. The scope reflects stored
// state at call time, so a revoked mentorship or a closed HOD appointment
// takes effect on the next request.
func (r *Resolver) Resolve(ctx context.Context, principalID string) (*Scope, error) {
	p, err := r.principals.FindByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "principal no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load principal")
	}
	if !p.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}

	scope := &Scope{
		PrincipalID: p.ID,
		Roles:       map[models.Role]struct{}{p.Role: {}},
	}

	switch p.Role {
	case models.RoleAdmin:
		return scope, nil

	case models.RoleStudent:
		if p.StudentID == nil {
			return nil, appErrors.Clone(appErrors.ErrInternal, "student principal missing student link")
		}
		scope.StudentID = *p.StudentID
		return scope, nil

	case models.RoleFaculty, models.RoleHOD:
		if p.FacultyID == nil {
			return nil, appErrors.Clone(appErrors.ErrInternal, "faculty principal missing faculty link")
		}
		scope.FacultyID = *p.FacultyID
		scope.Roles[models.RoleFaculty] = struct{}{}

		menteeIDs, err := r.mentorships.MenteeIDs(ctx, scope.FacultyID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentees")
		}
		scope.MenteeIDs = make(map[string]struct{}, len(menteeIDs))
		for _, id := range menteeIDs {
			scope.MenteeIDs[id] = struct{}{}
		}

		appointment, err := r.appointments.CurrentByFaculty(ctx, scope.FacultyID)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
			}
			// No open appointment: a principal stored as HOD falls back
			// to plain faculty capability until re-appointed.
			delete(scope.Roles, models.RoleHOD)
			return scope, nil
		}
		scope.Roles[models.RoleHOD] = struct{}{}
		scope.Department = appointment.Department
		return scope, nil
	}

	return nil, appErrors.Clone(appErrors.ErrForbidden, "unknown role")
}

// CanReadStudent reports whether the scope may read the student's record.
func CanReadStudent(s *Scope, st *models.Student) bool {
	switch {
	case s.IsAdmin():
		return true
	case s.Has(models.RoleHOD) && st.Department == s.Department:
		return true
	case s.Has(models.RoleFaculty) && s.Mentors(st.ID):
		return true
	case s.StudentID != "" && s.StudentID == st.ID:
		return true
	}
	return false
}

// CanWriteStudent reports whether the scope may mutate the student's
// record. Identical to read scope; field-level restrictions for faculty
// and students are enforced by the student service.
func CanWriteStudent(s *Scope, st *models.Student) bool {
	return CanReadStudent(s, st)
}

// StudentFilter returns the mandatory narrowing applied before any caller
// filters when listing students.
func StudentFilter(s *Scope) (models.StudentFilter, error) {
	switch {
	case s.IsAdmin():
		return models.StudentFilter{}, nil
	case s.Has(models.RoleHOD):
		return models.StudentFilter{Department: s.Department}, nil
	case s.Has(models.RoleFaculty):
		return models.StudentFilter{MentorID: s.FacultyID}, nil
	case s.StudentID != "":
		return models.StudentFilter{IDs: []string{s.StudentID}}, nil
	}
	return models.StudentFilter{}, appErrors.Clone(appErrors.ErrForbidden, "no student visibility")
}

// FacultyFilter returns the mandatory narrowing when listing faculty.
func FacultyFilter(s *Scope) (models.FacultyFilter, error) {
	switch {
	case s.IsAdmin():
		return models.FacultyFilter{}, nil
	case s.Has(models.RoleHOD):
		return models.FacultyFilter{Department: s.Department}, nil
	}
	return models.FacultyFilter{}, appErrors.Clone(appErrors.ErrForbidden, "no faculty visibility")
}

// MeetingFilter returns the scope's meeting visibility. The repository
// ORs the populated conditions, so a faculty member who is also HOD sees
// both their own meetings and the department's.
func MeetingFilter(s *Scope) models.MeetingFilter {
	f := models.MeetingFilter{}
	if s.IsAdmin() {
		return f
	}
	if s.Has(models.RoleFaculty) {
		f.CreatorPrincipalID = s.PrincipalID
	}
	if s.Has(models.RoleHOD) {
		f.Department = s.Department
	}
	if s.StudentID != "" {
		f.ParticipantID = s.StudentID
	}
	return f
}

// CanReadMeeting reports whether the scope may read the meeting.
func CanReadMeeting(s *Scope, m *models.Meeting) bool {
	switch {
	case s.IsAdmin():
		return true
	case m.CreatorPrincipalID == s.PrincipalID:
		return true
	case s.Has(models.RoleHOD) && m.Department == s.Department:
		return true
	}
	if s.StudentID != "" {
		for _, id := range m.StudentIDs {
			if id == s.StudentID {
				return true
			}
		}
	}
	return false
}

// CanMutateMeeting reports whether the scope may change the meeting's
// status or review. Only the creator may.
func CanMutateMeeting(s *Scope, m *models.Meeting) bool {
	return m.CreatorPrincipalID == s.PrincipalID
}

// RequestFilter returns the scope's request visibility.
func RequestFilter(s *Scope) models.RequestFilter {
	f := models.RequestFilter{}
	if s.IsAdmin() {
		return f
	}
	f.RequesterPrincipalID = s.PrincipalID
	f.TargetPrincipalID = s.PrincipalID
	if s.Has(models.RoleHOD) {
		f.Department = s.Department
	}
	return f
}

// CanDecideRequest reports whether the scope may approve or reject the
// request.
func CanDecideRequest(s *Scope, req *models.Request) bool {
	switch {
	case s.IsAdmin():
		return true
	case s.Has(models.RoleHOD) && req.Department == s.Department:
		return true
	case req.TargetPrincipalID != nil && *req.TargetPrincipalID == s.PrincipalID:
		return true
	}
	return false
}

// ParticipantInScope reports whether a student may be added to a meeting
// created under this scope.
func ParticipantInScope(s *Scope, st *models.Student) bool {
	if s.Has(models.RoleHOD) && st.Department == s.Department {
		return true
	}
	if s.Has(models.RoleFaculty) && s.Mentors(st.ID) {
		return true
	}
	return false
}
