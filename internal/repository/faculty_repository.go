package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nitap-dev/mentor-portal-api/internal/models"
)

// FacultyRepository provides database access for faculty records and the
// mentorship relation.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository creates a new instance of FacultyRepository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

const facultyColumns = `id, employee_id, name, department, college_email, personal_email, phone1, phone2, office, office_hours, mtech, phd, active, created_at, updated_at`

// List returns faculty matching the filter with a total count.
func (r *FacultyRepository) List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, int, error) {
	baseQuery := `FROM faculty WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(employee_id) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"name":        true,
		"employee_id": true,
		"created_at":  true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "name"
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", facultyColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var faculty []models.Faculty
	if err := r.db.SelectContext(ctx, &faculty, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list faculty: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count faculty: %w", err)
	}

	return faculty, total, nil
}

// FindByID returns a faculty record by identifier.
func (r *FacultyRepository) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	query := `SELECT ` + facultyColumns + ` FROM faculty WHERE id = $1 LIMIT 1`
	var f models.Faculty
	if err := r.db.GetContext(ctx, &f, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find faculty by id: %w", err)
	}
	return &f, nil
}

// ExistsByEmployeeID reports whether the employee id is already taken.
func (r *FacultyRepository) ExistsByEmployeeID(ctx context.Context, employeeID, excludeID string) (bool, error) {
	const query = `SELECT COUNT(*) FROM faculty WHERE employee_id = $1 AND id <> $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, employeeID, excludeID); err != nil {
		return false, fmt.Errorf("check employee id: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new faculty record.
func (r *FacultyRepository) Create(ctx context.Context, f *models.Faculty) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.UpdatedAt = now

	const query = `INSERT INTO faculty (id, employee_id, name, department, college_email, personal_email, phone1, phone2, office, office_hours, mtech, phd, active, created_at, updated_at)
		VALUES (:id, :employee_id, :name, :department, :college_email, :personal_email, :phone1, :phone2, :office, :office_hours, :mtech, :phd, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, f); err != nil {
		return fmt.Errorf("create faculty: %w", err)
	}
	return nil
}

// Update updates mutable faculty fields.
func (r *FacultyRepository) Update(ctx context.Context, f *models.Faculty) error {
	f.UpdatedAt = time.Now().UTC()
	const query = `UPDATE faculty SET name = :name, department = :department, college_email = :college_email, personal_email = :personal_email, phone1 = :phone1, phone2 = :phone2, office = :office, office_hours = :office_hours, mtech = :mtech, phd = :phd, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, f); err != nil {
		return fmt.Errorf("update faculty: %w", err)
	}
	return nil
}

// MenteeIDs returns the ids of students mentored by the faculty member.
func (r *FacultyRepository) MenteeIDs(ctx context.Context, facultyID string) ([]string, error) {
	const query = `SELECT student_id FROM mentorships WHERE faculty_id = $1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, facultyID); err != nil {
		return nil, fmt.Errorf("list mentee ids: %w", err)
	}
	return ids, nil
}

// AssignMentor moves the student onto the faculty member's mentee list.
// The mentorships row is the source of truth; students.mentor_id is the
// derived index rebuilt in the same transaction. Any prior mentor link for
// the student is replaced, keeping the single-active-mentor invariant.
func (r *FacultyRepository) AssignMentor(ctx context.Context, facultyID, studentID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assign mentor: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM mentorships WHERE student_id = $1`, studentID); err != nil {
		return fmt.Errorf("clear previous mentorship: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO mentorships (faculty_id, student_id, assigned_at) VALUES ($1, $2, $3)`,
		facultyID, studentID, time.Now().UTC()); err != nil {
		return fmt.Errorf("insert mentorship: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE students SET mentor_id = $2, updated_at = $3 WHERE id = $1`,
		studentID, facultyID, time.Now().UTC()); err != nil {
		return fmt.Errorf("update mentor index: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit assign mentor: %w", err)
	}
	return nil
}

// MentorProfileForStudent returns the public profile of the student's
// mentor.
func (r *FacultyRepository) MentorProfileForStudent(ctx context.Context, studentID string) (*models.MentorProfile, error) {
	const query = `SELECT f.id, f.name, f.department, f.college_email, f.office, f.office_hours
		FROM faculty f JOIN mentorships m ON m.faculty_id = f.id
		WHERE m.student_id = $1 LIMIT 1`
	var p models.MentorProfile
	if err := r.db.GetContext(ctx, &p, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find mentor profile: %w", err)
	}
	return &p, nil
}
