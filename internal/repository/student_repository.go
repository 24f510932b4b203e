package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/nitap-dev/mentor-portal-api/internal/models"
)

// StudentRepository provides database access for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new instance of StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, roll_number, registration_number, name, college_email, personal_email, phone, dob, gender, community, address, program, branch, department, blood_group, day_scholar, father_name, father_occupation, mother_name, mother_occupation, emergency_contact, x_marks, xii_marks, jee_mains, jee_advanced, status, account_status, mentor_id, created_at, updated_at`

// List returns students matching the filter with a total count. The filter
// arrives with the policy's mandatory scope narrowing already applied.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	baseQuery := `FROM students WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.MentorID != "" {
		conditions = append(conditions, fmt.Sprintf("mentor_id = $%d", len(args)+1))
		args = append(args, filter.MentorID)
	}
	if len(filter.IDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.IDs))
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR CAST(roll_number AS TEXT) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"roll_number": true,
		"name":        true,
		"created_at":  true,
		"updated_at":  true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "roll_number"
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", studentColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}

	return students, total, nil
}

// FindByID returns a student by identifier.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1 LIMIT 1`
	var s models.Student
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by id: %w", err)
	}
	return &s, nil
}

// FindByRollNumber returns a student by roll number.
func (r *StudentRepository) FindByRollNumber(ctx context.Context, rollNumber int64) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE roll_number = $1 LIMIT 1`
	var s models.Student
	if err := r.db.GetContext(ctx, &s, query, rollNumber); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by roll number: %w", err)
	}
	return &s, nil
}

// ExistsByRollNumber reports whether another student already uses the roll
// or registration number.
func (r *StudentRepository) ExistsByRollNumber(ctx context.Context, rollNumber, registrationNumber int64, excludeID string) (bool, error) {
	const query = `SELECT COUNT(*) FROM students WHERE (roll_number = $1 OR registration_number = $2) AND id <> $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, rollNumber, registrationNumber, excludeID); err != nil {
		return false, fmt.Errorf("check roll number: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, s *models.Student) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	const query = `INSERT INTO students (id, roll_number, registration_number, name, college_email, personal_email, phone, dob, gender, community, address, program, branch, department, blood_group, day_scholar, father_name, father_occupation, mother_name, mother_occupation, emergency_contact, x_marks, xii_marks, jee_mains, jee_advanced, status, account_status, created_at, updated_at)
		VALUES (:id, :roll_number, :registration_number, :name, :college_email, :personal_email, :phone, :dob, :gender, :community, :address, :program, :branch, :department, :blood_group, :day_scholar, :father_name, :father_occupation, :mother_name, :mother_occupation, :emergency_contact, :x_marks, :xii_marks, :jee_mains, :jee_advanced, :status, :account_status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update updates mutable student fields. Lifecycle fields are included;
// MentorID is not, it only changes through the mentorships table.
func (r *StudentRepository) Update(ctx context.Context, s *models.Student) error {
	s.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET name = :name, college_email = :college_email, personal_email = :personal_email, phone = :phone, dob = :dob, gender = :gender, community = :community, address = :address, program = :program, branch = :branch, department = :department, blood_group = :blood_group, day_scholar = :day_scholar, father_name = :father_name, father_occupation = :father_occupation, mother_name = :mother_name, mother_occupation = :mother_occupation, emergency_contact = :emergency_contact, x_marks = :x_marks, xii_marks = :xii_marks, jee_mains = :jee_mains, jee_advanced = :jee_advanced, status = :status, account_status = :account_status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}
