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

// HODRepository provides database access for HOD appointments.
type HODRepository struct {
	db *sqlx.DB
}

// NewHODRepository creates a new instance of HODRepository.
func NewHODRepository(db *sqlx.DB) *HODRepository {
	return &HODRepository{db: db}
}

const hodColumns = `id, faculty_id, department, start_date, end_date, created_at`

// CurrentByFaculty returns the open-ended appointment held by the faculty
// member, if any.
func (r *HODRepository) CurrentByFaculty(ctx context.Context, facultyID string) (*models.HODAppointment, error) {
	query := `SELECT ` + hodColumns + ` FROM hod_appointments WHERE faculty_id = $1 AND end_date IS NULL LIMIT 1`
	var a models.HODAppointment
	if err := r.db.GetContext(ctx, &a, query, facultyID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find current appointment by faculty: %w", err)
	}
	return &a, nil
}

// CurrentByDepartment returns the department's open-ended appointment.
func (r *HODRepository) CurrentByDepartment(ctx context.Context, department string) (*models.HODAppointment, error) {
	query := `SELECT ` + hodColumns + ` FROM hod_appointments WHERE department = $1 AND end_date IS NULL LIMIT 1`
	var a models.HODAppointment
	if err := r.db.GetContext(ctx, &a, query, department); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find current appointment by department: %w", err)
	}
	return &a, nil
}

// Appoint closes the department's open appointment, if one exists, and
// opens a new one in a single transaction so at most one open appointment
// per department ever exists.
func (r *HODRepository) Appoint(ctx context.Context, a *models.HODAppointment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin appoint: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`UPDATE hod_appointments SET end_date = $2 WHERE department = $1 AND end_date IS NULL`,
		a.Department, a.StartDate); err != nil {
		return fmt.Errorf("close previous appointment: %w", err)
	}
	if _, err := tx.NamedExecContext(ctx,
		`INSERT INTO hod_appointments (id, faculty_id, department, start_date, end_date, created_at)
		VALUES (:id, :faculty_id, :department, :start_date, :end_date, :created_at)`, a); err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit appoint: %w", err)
	}
	return nil
}
