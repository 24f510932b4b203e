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

type recordRepository interface {
	ListInternships(ctx context.Context, studentID string) ([]models.Internship, error)
	CreateInternship(ctx context.Context, in *models.Internship) error
	UpdateInternship(ctx context.Context, in *models.Internship) (bool, error)
	DeleteInternship(ctx context.Context, id, studentID string) (bool, error)
	ListProjects(ctx context.Context, studentID string) ([]models.Project, error)
	CreateProject(ctx context.Context, p *models.Project) error
	UpdateProject(ctx context.Context, p *models.Project) (bool, error)
	DeleteProject(ctx context.Context, id, studentID string) (bool, error)
	ListCoCurriculars(ctx context.Context, studentID string) ([]models.CoCurricular, error)
	CreateCoCurricular(ctx context.Context, c *models.CoCurricular) error
	GetCareerDetails(ctx context.Context, studentID string) (*models.CareerDetails, error)
	UpsertCareerDetails(ctx context.Context, cd *models.CareerDetails) error
	GetPersonalProblem(ctx context.Context, studentID string) (*models.PersonalProblem, error)
	UpsertPersonalProblem(ctx context.Context, pp *models.PersonalProblem) error
}

type academicRepository interface {
	ListSemesters(ctx context.Context, studentID string) ([]models.Semester, error)
	UpsertSemester(ctx context.Context, sem *models.Semester) error
}

type recordStudentSource interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// RecordService implements the student sub-records: internships, projects,
// co-curricular achievements, the career and personal-problem surveys, and
// semester results. Students write their own self-reported entries; who
// may read follows the student visibility rules, except personal problems
// which stay between the student, their mentor and the department HOD.
type RecordService struct {
	repo      recordRepository
	academics academicRepository
	students  recordStudentSource
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRecordService constructs a RecordService instance.
func NewRecordService(repo recordRepository, academics academicRepository, students recordStudentSource, validate *validator.Validate, logger *zap.Logger) *RecordService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RecordService{repo: repo, academics: academics, students: students, validator: validate, logger: logger}
}

// ListInternships returns the student's internship entries.
func (s *RecordService) ListInternships(ctx context.Context, scope *policy.Scope, studentID string) ([]models.Internship, error) {
	if err := s.requireRead(ctx, scope, studentID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListInternships(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list internships")
	}
	return items, nil
}

// CreateInternship records a new internship entry for the student.
func (s *RecordService) CreateInternship(ctx context.Context, scope *policy.Scope, studentID string, req models.InternshipRequest) (*models.Internship, error) {
	if err := s.requireWrite(ctx, scope, studentID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid internship payload")
	}

	now := time.Now().UTC()
	in := &models.Internship{
		ID:           uuid.NewString(),
		StudentID:    studentID,
		Semester:     req.Semester,
		Type:         req.Type,
		Organisation: req.Organisation,
		Stipend:      req.Stipend,
		Duration:     req.Duration,
		Location:     req.Location,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateInternship(ctx, in); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create internship")
	}
	return in, nil
}

// UpdateInternship edits an internship entry owned by the student.
func (s *RecordService) UpdateInternship(ctx context.Context, scope *policy.Scope, studentID, id string, req models.InternshipRequest) (*models.Internship, error) {
	if err := s.requireWrite(ctx, scope, studentID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid internship payload")
	}

	in := &models.Internship{
		ID:           id,
		StudentID:    studentID,
		Semester:     req.Semester,
		Type:         req.Type,
		Organisation: req.Organisation,
		Stipend:      req.Stipend,
		Duration:     req.Duration,
		Location:     req.Location,
		UpdatedAt:    time.Now().UTC(),
	}
	found, err := s.repo.UpdateInternship(ctx, in)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update internship")
	}
	if !found {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "internship not found")
	}
	return in, nil
}

// DeleteInternship removes an internship entry owned by the student.
func (s *RecordService) DeleteInternship(ctx context.Context, scope *policy.Scope, studentID, id string) error {
	if err := s.requireWrite(ctx, scope, studentID); err != nil {
		return err
	}
	found, err := s.repo.DeleteInternship(ctx, id, studentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete internship")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "internship not found")
	}
	return nil
}

// ListProjects returns the student's project entries.
func (s *RecordService) ListProjects(ctx context.Context, scope *policy.Scope, studentID string) ([]models.Project, error) {
	if err := s.requireRead(ctx, scope, studentID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListProjects(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list projects")
	}
	return items, nil
}

// CreateProject records a new project entry for the student.
func (s *RecordService) CreateProject(ctx context.Context, scope *policy.Scope, studentID string, req models.ProjectRequest) (*models.Project, error) {
	if err := s.requireWrite(ctx, scope, studentID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid project payload")
	}

	now := time.Now().UTC()
	p := &models.Project{
		ID:           uuid.NewString(),
		StudentID:    studentID,
		Semester:     req.Semester,
		Title:        req.Title,
		Description:  req.Description,
		Technologies: req.Technologies,
		Mentor:       req.Mentor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create project")
	}
	return p, nil
}

// UpdateProject edits a project entry owned by the student.
func (s *RecordService) UpdateProject(ctx context.Context, scope *policy.Scope, studentID, id string, req models.ProjectRequest) (*models.Project, error) {
	if err := s.requireWrite(ctx, scope, studentID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid project payload")
	}

	p := &models.Project{
		ID:           id,
		StudentID:    studentID,
		Semester:     req.Semester,
		Title:        req.Title,
		Description:  req.Description,
		Technologies: req.Technologies,
		Mentor:       req.Mentor,
		UpdatedAt:    time.Now().UTC(),
	}
	found, err := s.repo.UpdateProject(ctx, p)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update project")
	}
	if !found {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
	}
	return p, nil
}

// DeleteProject removes a project entry owned by the student.
func (s *RecordService) DeleteProject(ctx context.Context, scope *policy.Scope, studentID, id string) error {
	if err := s.requireWrite(ctx, scope, studentID); err != nil {
		return err
	}
	found, err := s.repo.DeleteProject(ctx, id, studentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete project")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "project not found")
	}
	return nil
}

// ListCoCurriculars returns the student's achievement entries.
func (s *RecordService) ListCoCurriculars(ctx context.Context, scope *policy.Scope, studentID string) ([]models.CoCurricular, error) {
	if err := s.requireRead(ctx, scope, studentID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListCoCurriculars(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list achievements")
	}
	return items, nil
}

// CreateCoCurricular records a new achievement entry for the student.
func (s *RecordService) CreateCoCurricular(ctx context.Context, scope *policy.Scope, studentID string, req models.CoCurricularRequest) (*models.CoCurricular, error) {
	if err := s.requireWrite(ctx, scope, studentID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid achievement payload")
	}

	now := time.Now().UTC()
	c := &models.CoCurricular{
		ID:          uuid.NewString(),
		StudentID:   studentID,
		Semester:    req.Semester,
		EventName:   req.EventName,
		EventType:   req.EventType,
		Position:    req.Position,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateCoCurricular(ctx, c); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create achievement")
	}
	return c, nil
}

// GetCareerDetails returns the student's career survey, or NotFound when
// it has never been filled in.
func (s *RecordService) GetCareerDetails(ctx context.Context, scope *policy.Scope, studentID string) (*models.CareerDetails, error) {
	if err := s.requireRead(ctx, scope, studentID); err != nil {
		return nil, err
	}
	cd, err := s.repo.GetCareerDetails(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "career details not filled in")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load career details")
	}
	return cd, nil
}

// SaveCareerDetails creates or replaces the student's career survey.
func (s *RecordService) SaveCareerDetails(ctx context.Context, scope *policy.Scope, studentID string, req models.CareerDetailsRequest) (*models.CareerDetails, error) {
	if err := s.requireWrite(ctx, scope, studentID); err != nil {
		return nil, err
	}

	cd := &models.CareerDetails{
		ID:             uuid.NewString(),
		StudentID:      studentID,
		Hobbies:        req.Hobbies,
		Strengths:      req.Strengths,
		AreasToImprove: req.AreasToImprove,
		Core:           req.Core,
		IT:             req.IT,
		HigherEd:       req.HigherEd,
		Startup:        req.Startup,
		FamilyBusiness: req.FamilyBusiness,
		OtherInterests: req.OtherInterests,
		UpdatedAt:      time.Now().UTC(),
	}
	if err := s.repo.UpsertCareerDetails(ctx, cd); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save career details")
	}
	return cd, nil
}

// GetPersonalProblem returns the student's personal-problem survey. The
// survey is visible only to the student, their mentor and the
// department's HOD.
func (s *RecordService) GetPersonalProblem(ctx context.Context, scope *policy.Scope, studentID string) (*models.PersonalProblem, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !canReadPersonalProblem(scope, student) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "personal problems are private to the student, mentor and HOD")
	}

	pp, err := s.repo.GetPersonalProblem(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no personal problem recorded")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load personal problem")
	}
	return pp, nil
}

// SavePersonalProblem creates or replaces the student's personal-problem
// survey. Only the student themself may write it.
func (s *RecordService) SavePersonalProblem(ctx context.Context, scope *policy.Scope, studentID string, req models.PersonalProblemRequest) (*models.PersonalProblem, error) {
	if scope.StudentID == "" || scope.StudentID != studentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the student may report a personal problem")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid personal problem payload")
	}

	pp := &models.PersonalProblem{
		ID:          uuid.NewString(),
		StudentID:   studentID,
		Description: req.Description,
		Counselling: req.Counselling,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.repo.UpsertPersonalProblem(ctx, pp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save personal problem")
	}
	return pp, nil
}

// ListSemesters returns the student's semester results with subjects.
func (s *RecordService) ListSemesters(ctx context.Context, scope *policy.Scope, studentID string) ([]models.Semester, error) {
	if err := s.requireRead(ctx, scope, studentID); err != nil {
		return nil, err
	}
	semesters, err := s.academics.ListSemesters(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semesters")
	}
	return semesters, nil
}

// SaveSemester creates or replaces one semester's results. Students submit
// their own; mentors, HOD and admin may correct them.
func (s *RecordService) SaveSemester(ctx context.Context, scope *policy.Scope, studentID string, req models.SemesterRequest) (*models.Semester, error) {
	if err := s.requireWrite(ctx, scope, studentID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid semester payload")
	}

	sem := &models.Semester{
		ID:        uuid.NewString(),
		StudentID: studentID,
		Number:    req.Number,
		SGPA:      req.SGPA,
		CGPA:      req.CGPA,
		Subjects:  make([]models.Subject, len(req.Subjects)),
	}
	for i, sub := range req.Subjects {
		pct := 0.0
		if sub.ConductedHours > 0 {
			pct = float64(sub.AttendedHours) / float64(sub.ConductedHours) * 100
		}
		sem.Subjects[i] = models.Subject{
			ID:             uuid.NewString(),
			Name:           sub.Name,
			Code:           sub.Code,
			Minor1:         sub.Minor1,
			MidExam:        sub.MidExam,
			Minor2:         sub.Minor2,
			EndExam:        sub.EndExam,
			Total:          sub.Total,
			ConductedHours: sub.ConductedHours,
			AttendedHours:  sub.AttendedHours,
			AttendancePct:  pct,
			Remarks:        sub.Remarks,
		}
	}

	if err := s.academics.UpsertSemester(ctx, sem); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save semester")
	}
	return sem, nil
}

func (s *RecordService) requireRead(ctx context.Context, scope *policy.Scope, studentID string) error {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return err
	}
	if !policy.CanReadStudent(scope, student) {
		return appErrors.Clone(appErrors.ErrForbidden, "student is outside your scope")
	}
	return nil
}

func (s *RecordService) requireWrite(ctx context.Context, scope *policy.Scope, studentID string) error {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return err
	}
	if !policy.CanWriteStudent(scope, student) {
		return appErrors.Clone(appErrors.ErrForbidden, "student is outside your scope")
	}
	return nil
}

func (s *RecordService) loadStudent(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

func canReadPersonalProblem(s *policy.Scope, st *models.Student) bool {
	switch {
	case s.StudentID != "" && s.StudentID == st.ID:
		return true
	case s.Has(models.RoleFaculty) && s.Mentors(st.ID):
		return true
	case s.Has(models.RoleHOD) && st.Department == s.Department:
		return true
	}
	return false
}
