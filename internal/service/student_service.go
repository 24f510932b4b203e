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

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByRollNumber(ctx context.Context, rollNumber int64) (*models.Student, error)
	ExistsByRollNumber(ctx context.Context, rollNumber, registrationNumber int64, excludeID string) (bool, error)
	Create(ctx context.Context, s *models.Student) error
	Update(ctx context.Context, s *models.Student) error
}

type studentPrincipalRepository interface {
	Create(ctx context.Context, p *models.Principal) error
	SetActive(ctx context.Context, id string, active bool) error
}

type mentorProfileSource interface {
	MentorProfileForStudent(ctx context.Context, studentID string) (*models.MentorProfile, error)
}

// StudentService implements student enrollment, listing, profile reads and
// role-limited edits.
type StudentService struct {
	repo       studentRepository
	principals studentPrincipalRepository
	mentors    mentorProfileSource
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewStudentService constructs a StudentService instance.
func NewStudentService(repo studentRepository, principals studentPrincipalRepository, mentors mentorProfileSource, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{repo: repo, principals: principals, mentors: mentors, validator: validate, logger: logger}
}

// List returns the students visible to the scope. The scope's mandatory
// narrowing is applied first; caller filters can only narrow further.
func (s *StudentService) List(ctx context.Context, scope *policy.Scope, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	scoped, err := policy.StudentFilter(scope)
	if err != nil {
		return nil, nil, err
	}

	scoped.Search = filter.Search
	scoped.Status = filter.Status
	scoped.Page = filter.Page
	scoped.PageSize = filter.PageSize
	scoped.SortBy = filter.SortBy
	scoped.SortOrder = filter.SortOrder
	if scope.IsAdmin() {
		scoped.Department = filter.Department
	}

	students, total, err := s.repo.List(ctx, scoped)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, &models.Pagination{Page: scoped.Page, PageSize: scoped.PageSize, TotalCount: total}, nil
}

// Get returns one student if the scope may read them.
func (s *StudentService) Get(ctx context.Context, scope *policy.Scope, id string) (*models.Student, error) {
	student, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanReadStudent(scope, student) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student is outside your scope")
	}
	return student, nil
}

// GetByRollNumber resolves a student by roll number under the same
// visibility rules as Get.
func (s *StudentService) GetByRollNumber(ctx context.Context, scope *policy.Scope, rollNumber int64) (*models.Student, error) {
	student, err := s.repo.FindByRollNumber(ctx, rollNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !policy.CanReadStudent(scope, student) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student is outside your scope")
	}
	return student, nil
}

// MentorProfile returns the public profile of the student's current
// mentor. Students may only ask for their own.
func (s *StudentService) MentorProfile(ctx context.Context, scope *policy.Scope, studentID string) (*models.MentorProfile, error) {
	student, err := s.Get(ctx, scope, studentID)
	if err != nil {
		return nil, err
	}

	profile, err := s.mentors.MentorProfileForStudent(ctx, student.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no mentor assigned")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentor")
	}
	return profile, nil
}

// Create enrolls a student and provisions their portal account. Admins can
// enroll into any department; an HOD is pinned to their own.
func (s *StudentService) Create(ctx context.Context, scope *policy.Scope, req models.CreateStudentRequest) (*models.Student, error) {
	if !scope.IsAdmin() && !scope.Has(models.RoleHOD) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admin or HOD may enroll students")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	dob, err := time.Parse("2006-01-02", req.DOB)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "dob must be YYYY-MM-DD")
	}

	department := req.Department
	if !scope.IsAdmin() {
		department = scope.Department
	}

	exists, err := s.repo.ExistsByRollNumber(ctx, req.RollNumber, req.RegistrationNumber, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "roll or registration number already enrolled")
	}

	now := time.Now().UTC()
	student := &models.Student{
		ID:                 uuid.NewString(),
		RollNumber:         req.RollNumber,
		RegistrationNumber: req.RegistrationNumber,
		Name:               req.Name,
		CollegeEmail:       req.CollegeEmail,
		PersonalEmail:      req.PersonalEmail,
		Phone:              req.Phone,
		DOB:                dob,
		Gender:             req.Gender,
		Community:          req.Community,
		Address:            req.Address,
		Program:            req.Program,
		Branch:             req.Branch,
		Department:         department,
		BloodGroup:         req.BloodGroup,
		DayScholar:         req.DayScholar,
		FatherName:         req.FatherName,
		FatherOccupation:   req.FatherOccupation,
		MotherName:         req.MotherName,
		MotherOccupation:   req.MotherOccupation,
		EmergencyContact:   req.EmergencyContact,
		XMarks:             req.XMarks,
		XIIMarks:           req.XIIMarks,
		JEEMains:           req.JEEMains,
		JEEAdvanced:        req.JEEAdvanced,
		Status:             models.StudentPursuing,
		AccountStatus:      models.AccountActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	principal := &models.Principal{
		ID:           uuid.NewString(),
		Email:        req.CollegeEmail,
		PasswordHash: string(hash),
		Role:         models.RoleStudent,
		StudentID:    &student.ID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.principals.Create(ctx, principal); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student account")
	}

	return student, nil
}

// Update edits a student record. The set of writable fields depends on who
// is asking: students edit their own contact and family details, mentors
// manage academic and account status, HOD and admin edit everything.
// Fields outside the caller's set are silently dropped.
func (s *StudentService) Update(ctx context.Context, scope *policy.Scope, id string, req models.UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanWriteStudent(scope, student) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student is outside your scope")
	}

	full := scope.IsAdmin() || scope.Has(models.RoleHOD)
	self := scope.StudentID != "" && scope.StudentID == student.ID
	mentor := scope.Has(models.RoleFaculty) && scope.Mentors(student.ID)

	if full || self {
		applyString(&student.PersonalEmail, req.PersonalEmail)
		applyString(&student.Phone, req.Phone)
		applyString(&student.Address, req.Address)
		applyString(&student.BloodGroup, req.BloodGroup)
		applyString(&student.FatherOccupation, req.FatherOccupation)
		applyString(&student.MotherOccupation, req.MotherOccupation)
		applyString(&student.EmergencyContact, req.EmergencyContact)
		if req.DayScholar != nil {
			student.DayScholar = *req.DayScholar
		}
	}
	if full || mentor {
		if req.Status != nil {
			student.Status = *req.Status
		}
		if req.AccountStatus != nil {
			student.AccountStatus = *req.AccountStatus
		}
	}
	if full {
		applyString(&student.Name, req.Name)
		applyString(&student.Gender, req.Gender)
		applyString(&student.Community, req.Community)
		applyString(&student.Program, req.Program)
		applyString(&student.Branch, req.Branch)
		applyString(&student.FatherName, req.FatherName)
		applyString(&student.MotherName, req.MotherName)
		if req.XMarks != nil {
			student.XMarks = *req.XMarks
		}
		if req.XIIMarks != nil {
			student.XIIMarks = *req.XIIMarks
		}
		if req.JEEMains != nil {
			student.JEEMains = *req.JEEMains
		}
		if req.JEEAdvanced != nil {
			student.JEEAdvanced = req.JEEAdvanced
		}
	}
	if scope.IsAdmin() && req.Department != nil {
		student.Department = *req.Department
	}

	student.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

func (s *StudentService) load(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
