package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nitap-dev/mentor-portal-api/internal/models"
)

// RecordRepository provides database access for the student-owned record
// collections: internships, projects, co-curriculars, the career survey
// and the personal-problem survey.
type RecordRepository struct {
	db *sqlx.DB
}

// NewRecordRepository creates a new instance of RecordRepository.
func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// ListInternships returns the student's internships ordered by semester.
func (r *RecordRepository) ListInternships(ctx context.Context, studentID string) ([]models.Internship, error) {
	const query = `SELECT id, student_id, semester, type, organisation, stipend, duration, location, created_at, updated_at
		FROM internships WHERE student_id = $1 ORDER BY semester, created_at`
	var items []models.Internship
	if err := r.db.SelectContext(ctx, &items, query, studentID); err != nil {
		return nil, fmt.Errorf("list internships: %w", err)
	}
	return items, nil
}

// CreateInternship appends an internship entry for the student.
func (r *RecordRepository) CreateInternship(ctx context.Context, in *models.Internship) error {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	in.CreatedAt = now
	in.UpdatedAt = now

	const query = `INSERT INTO internships (id, student_id, semester, type, organisation, stipend, duration, location, created_at, updated_at)
		VALUES (:id, :student_id, :semester, :type, :organisation, :stipend, :duration, :location, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, in); err != nil {
		return fmt.Errorf("create internship: %w", err)
	}
	return nil
}

// UpdateInternship updates an internship owned by the student. Returns
// false when no row matched the (id, student) pair.
func (r *RecordRepository) UpdateInternship(ctx context.Context, in *models.Internship) (bool, error) {
	in.UpdatedAt = time.Now().UTC()
	const query = `UPDATE internships SET semester = :semester, type = :type, organisation = :organisation, stipend = :stipend, duration = :duration, location = :location, updated_at = :updated_at
		WHERE id = :id AND student_id = :student_id`
	res, err := r.db.NamedExecContext(ctx, query, in)
	if err != nil {
		return false, fmt.Errorf("update internship: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update internship rows: %w", err)
	}
	return n > 0, nil
}

// DeleteInternship removes an internship owned by the student.
func (r *RecordRepository) DeleteInternship(ctx context.Context, id, studentID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM internships WHERE id = $1 AND student_id = $2`, id, studentID)
	if err != nil {
		return false, fmt.Errorf("delete internship: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete internship rows: %w", err)
	}
	return n > 0, nil
}

// ListProjects returns the student's projects ordered by semester.
func (r *RecordRepository) ListProjects(ctx context.Context, studentID string) ([]models.Project, error) {
	const query = `SELECT id, student_id, semester, title, description, technologies, mentor, created_at, updated_at
		FROM projects WHERE student_id = $1 ORDER BY semester, created_at`
	var items []models.Project
	if err := r.db.SelectContext(ctx, &items, query, studentID); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return items, nil
}

// CreateProject appends a project entry for the student.
func (r *RecordRepository) CreateProject(ctx context.Context, p *models.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	const query = `INSERT INTO projects (id, student_id, semester, title, description, technologies, mentor, created_at, updated_at)
		VALUES (:id, :student_id, :semester, :title, :description, :technologies, :mentor, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// UpdateProject updates a project owned by the student.
func (r *RecordRepository) UpdateProject(ctx context.Context, p *models.Project) (bool, error) {
	p.UpdatedAt = time.Now().UTC()
	const query = `UPDATE projects SET semester = :semester, title = :title, description = :description, technologies = :technologies, mentor = :mentor, updated_at = :updated_at
		WHERE id = :id AND student_id = :student_id`
	res, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return false, fmt.Errorf("update project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update project rows: %w", err)
	}
	return n > 0, nil
}

// DeleteProject removes a project owned by the student.
func (r *RecordRepository) DeleteProject(ctx context.Context, id, studentID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1 AND student_id = $2`, id, studentID)
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete project rows: %w", err)
	}
	return n > 0, nil
}

// ListCoCurriculars returns the student's co-curricular entries.
func (r *RecordRepository) ListCoCurriculars(ctx context.Context, studentID string) ([]models.CoCurricular, error) {
	const query = `SELECT id, student_id, semester, event_name, event_type, position, description, created_at, updated_at
		FROM co_curriculars WHERE student_id = $1 ORDER BY semester, created_at`
	var items []models.CoCurricular
	if err := r.db.SelectContext(ctx, &items, query, studentID); err != nil {
		return nil, fmt.Errorf("list co-curriculars: %w", err)
	}
	return items, nil
}

// CreateCoCurricular appends a co-curricular entry for the student.
func (r *RecordRepository) CreateCoCurricular(ctx context.Context, c *models.CoCurricular) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	const query = `INSERT INTO co_curriculars (id, student_id, semester, event_name, event_type, position, description, created_at, updated_at)
		VALUES (:id, :student_id, :semester, :event_name, :event_type, :position, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		return fmt.Errorf("create co-curricular: %w", err)
	}
	return nil
}

// GetCareerDetails returns the student's career survey.
func (r *RecordRepository) GetCareerDetails(ctx context.Context, studentID string) (*models.CareerDetails, error) {
	const query = `SELECT id, student_id, hobbies, strengths, areas_to_improve, core, it, higher_education, startup, family_business, other_interests, updated_at
		FROM career_details WHERE student_id = $1 LIMIT 1`
	var cd models.CareerDetails
	if err := r.db.GetContext(ctx, &cd, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get career details: %w", err)
	}
	return &cd, nil
}

// UpsertCareerDetails writes the one-per-student career survey.
func (r *RecordRepository) UpsertCareerDetails(ctx context.Context, cd *models.CareerDetails) error {
	if cd.ID == "" {
		cd.ID = uuid.NewString()
	}
	cd.UpdatedAt = time.Now().UTC()

	const query = `INSERT INTO career_details (id, student_id, hobbies, strengths, areas_to_improve, core, it, higher_education, startup, family_business, other_interests, updated_at)
		VALUES (:id, :student_id, :hobbies, :strengths, :areas_to_improve, :core, :it, :higher_education, :startup, :family_business, :other_interests, :updated_at)
		ON CONFLICT (student_id) DO UPDATE SET hobbies = EXCLUDED.hobbies, strengths = EXCLUDED.strengths, areas_to_improve = EXCLUDED.areas_to_improve, core = EXCLUDED.core, it = EXCLUDED.it, higher_education = EXCLUDED.higher_education, startup = EXCLUDED.startup, family_business = EXCLUDED.family_business, other_interests = EXCLUDED.other_interests, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, cd); err != nil {
		return fmt.Errorf("upsert career details: %w", err)
	}
	return nil
}

// GetPersonalProblem returns the student's personal-problem survey.
func (r *RecordRepository) GetPersonalProblem(ctx context.Context, studentID string) (*models.PersonalProblem, error) {
	const query = `SELECT id, student_id, description, counselling, updated_at
		FROM personal_problems WHERE student_id = $1 LIMIT 1`
	var pp models.PersonalProblem
	if err := r.db.GetContext(ctx, &pp, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get personal problem: %w", err)
	}
	return &pp, nil
}

// UpsertPersonalProblem writes the one-per-student survey.
func (r *RecordRepository) UpsertPersonalProblem(ctx context.Context, pp *models.PersonalProblem) error {
	if pp.ID == "" {
		pp.ID = uuid.NewString()
	}
	pp.UpdatedAt = time.Now().UTC()

	const query = `INSERT INTO personal_problems (id, student_id, description, counselling, updated_at)
		VALUES (:id, :student_id, :description, :counselling, :updated_at)
		ON CONFLICT (student_id) DO UPDATE SET description = EXCLUDED.description, counselling = EXCLUDED.counselling, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, pp); err != nil {
		return fmt.Errorf("upsert personal problem: %w", err)
	}
	return nil
}
