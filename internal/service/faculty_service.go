package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nitap-dev/mentor-portal-api/internal/models"
	"github.com/nitap-dev/mentor-portal-api/internal/policy"
	appErrors "github.com/nitap-dev/mentor-portal-api/pkg/errors"
)

type facultyRepository interface {
	List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, int, error)
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
	ExistsByEmployeeID(ctx context.Context, employeeID, excludeID string) (bool, error)
	Create(ctx context.Context, f *models.Faculty) error
	Update(ctx context.Context, f *models.Faculty) error
	MenteeIDs(ctx context.Context, facultyID string) ([]string, error)
	AssignMentor(ctx context.Context, facultyID, studentID string) error
}

type hodRepository interface {
	CurrentByDepartment(ctx context.Context, department string) (*models.HODAppointment, error)
	Appoint(ctx context.Context, a *models.HODAppointment) error
}

type facultyStudentSource interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
}

type facultyPrincipalRepository interface {
	Create(ctx context.Context, p *models.Principal) error
}

// FacultyService implements faculty onboarding, mentee management, mentor
// assignment and HOD appointments.
type FacultyService struct {
	repo       facultyRepository
	hods       hodRepository
	students   facultyStudentSource
	principals facultyPrincipalRepository
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewFacultyService constructs a FacultyService instance.
func NewFacultyService(repo facultyRepository, hods hodRepository, students facultyStudentSource, principals facultyPrincipalRepository, validate *validator.Validate, logger *zap.Logger) *FacultyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &FacultyService{repo: repo, hods: hods, students: students, principals: principals, validator: validate, logger: logger}
}

// List returns faculty visible to the scope. Admin sees all departments,
// an HOD only their own.
func (s *FacultyService) List(ctx context.Context, scope *policy.Scope, filter models.FacultyFilter) ([]models.Faculty, *models.Pagination, error) {
	scoped, err := policy.FacultyFilter(scope)
	if err != nil {
		return nil, nil, err
	}

	scoped.Search = filter.Search
	scoped.Active = filter.Active
	scoped.Page = filter.Page
	scoped.PageSize = filter.PageSize
	scoped.SortBy = filter.SortBy
	scoped.SortOrder = filter.SortOrder
	if scope.IsAdmin() {
		scoped.Department = filter.Department
	}

	faculty, total, err := s.repo.List(ctx, scoped)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculty")
	}
	return faculty, &models.Pagination{Page: scoped.Page, PageSize: scoped.PageSize, TotalCount: total}, nil
}

// Get returns one faculty record. Admin and same-department HOD may read
// anyone; a faculty member may read themself.
func (s *FacultyService) Get(ctx context.Context, scope *policy.Scope, id string) (*models.Faculty, error) {
	faculty, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case scope.IsAdmin():
	case scope.Has(models.RoleHOD) && faculty.Department == scope.Department:
	case scope.FacultyID == faculty.ID:
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "faculty record is outside your scope")
	}
	return faculty, nil
}

// Mentees returns the full records of the faculty member's current
// mentees. Faculty may only list their own; admin and same-department HOD
// may list anyone's.
func (s *FacultyService) Mentees(ctx context.Context, scope *policy.Scope, facultyID string) ([]models.Student, error) {
	if _, err := s.Get(ctx, scope, facultyID); err != nil {
		return nil, err
	}

	ids, err := s.repo.MenteeIDs(ctx, facultyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentees")
	}
	if len(ids) == 0 {
		return []models.Student{}, nil
	}

	students, _, err := s.students.List(ctx, models.StudentFilter{IDs: ids, PageSize: len(ids)})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentees")
	}
	return students, nil
}

// Create onboards a faculty member and provisions their portal account.
func (s *FacultyService) Create(ctx context.Context, scope *policy.Scope, req models.CreateFacultyRequest) (*models.Faculty, error) {
	if !scope.IsAdmin() && !scope.Has(models.RoleHOD) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admin or HOD may onboard faculty")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faculty payload")
	}

	department := req.Department
	if !scope.IsAdmin() {
		department = scope.Department
	}

	exists, err := s.repo.ExistsByEmployeeID(ctx, req.EmployeeID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "employee id already onboarded")
	}

	now := time.Now().UTC()
	faculty := &models.Faculty{
		ID:            uuid.NewString(),
		EmployeeID:    req.EmployeeID,
		Name:          req.Name,
		Department:    department,
		CollegeEmail:  req.CollegeEmail,
		PersonalEmail: req.PersonalEmail,
		Phone1:        req.Phone1,
		Phone2:        req.Phone2,
		Office:        req.Office,
		OfficeHours:   req.OfficeHours,
		MTech:         req.MTech,
		PhD:           req.PhD,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, faculty); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create faculty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	principal := &models.Principal{
		ID:           uuid.NewString(),
		Email:        req.CollegeEmail,
		PasswordHash: string(hash),
		Role:         models.RoleFaculty,
		FacultyID:    &faculty.ID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.principals.Create(ctx, principal); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create faculty account")
	}

	return faculty, nil
}

// Update edits a faculty record. Admin and same-department HOD edit
// anyone; a faculty member edits their own contact and office fields but
// not their active flag.
func (s *FacultyService) Update(ctx context.Context, scope *policy.Scope, id string, req models.UpdateFacultyRequest) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faculty payload")
	}

	faculty, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	full := scope.IsAdmin() || (scope.Has(models.RoleHOD) && faculty.Department == scope.Department)
	self := scope.FacultyID == faculty.ID
	if !full && !self {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "faculty record is outside your scope")
	}

	applyString(&faculty.PersonalEmail, req.PersonalEmail)
	applyString(&faculty.Phone1, req.Phone1)
	applyString(&faculty.Phone2, req.Phone2)
	applyString(&faculty.Office, req.Office)
	applyString(&faculty.OfficeHours, req.OfficeHours)
	applyString(&faculty.MTech, req.MTech)
	applyString(&faculty.PhD, req.PhD)
	if full {
		applyString(&faculty.Name, req.Name)
		if req.Active != nil {
			faculty.Active = *req.Active
		}
	}

	faculty.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, faculty); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update faculty")
	}
	return faculty, nil
}

// AssignMentor replaces the student's active mentorship with the given
// faculty member. HODs may only pair records inside their department.
func (s *FacultyService) AssignMentor(ctx context.Context, scope *policy.Scope, req models.AssignMentorRequest) error {
	if !scope.IsAdmin() && !scope.Has(models.RoleHOD) {
		return appErrors.Clone(appErrors.ErrForbidden, "only admin or HOD may assign mentors")
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	faculty, err := s.load(ctx, req.FacultyID)
	if err != nil {
		return err
	}
	if !faculty.Active {
		return appErrors.Clone(appErrors.ErrValidation, "faculty member is inactive")
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if !scope.IsAdmin() {
		if faculty.Department != scope.Department || student.Department != scope.Department {
			return appErrors.Clone(appErrors.ErrForbidden, "mentor assignment crosses department boundary")
		}
	}

	if err := s.repo.AssignMentor(ctx, faculty.ID, student.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign mentor")
	}
	return nil
}

// AppointHOD opens a new HOD appointment, closing the department's current
// one. Admin only.
func (s *FacultyService) AppointHOD(ctx context.Context, scope *policy.Scope, req models.AppointHODRequest) (*models.HODAppointment, error) {
	if !scope.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admin may appoint an HOD")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid appointment payload")
	}

	faculty, err := s.load(ctx, req.FacultyID)
	if err != nil {
		return nil, err
	}
	if !faculty.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "faculty member is inactive")
	}

	appointment := &models.HODAppointment{
		ID:         uuid.NewString(),
		FacultyID:  faculty.ID,
		Department: req.Department,
		StartDate:  time.Now().UTC(),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.hods.Appoint(ctx, appointment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record appointment")
	}
	return appointment, nil
}

// CurrentHOD returns the department's open appointment, if any.
func (s *FacultyService) CurrentHOD(ctx context.Context, scope *policy.Scope, department string) (*models.HODAppointment, error) {
	if !scope.IsAdmin() && !(scope.Has(models.RoleHOD) && scope.Department == department) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "department is outside your scope")
	}

	appointment, err := s.hods.CurrentByDepartment(ctx, department)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no current appointment")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
	}
	return appointment, nil
}

func (s *FacultyService) load(ctx context.Context, id string) (*models.Faculty, error) {
	faculty, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	return faculty, nil
}
