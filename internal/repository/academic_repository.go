package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nitap-dev/mentor-portal-api/internal/models"
)

// AcademicRepository provides database access for semester summaries and
// their subject results.
type AcademicRepository struct {
	db *sqlx.DB
}

// NewAcademicRepository creates a new instance of AcademicRepository.
func NewAcademicRepository(db *sqlx.DB) *AcademicRepository {
	return &AcademicRepository{db: db}
}

// ListSemesters returns the student's semesters with subjects attached,
// ordered by semester number.
func (r *AcademicRepository) ListSemesters(ctx context.Context, studentID string) ([]models.Semester, error) {
	const query = `SELECT id, student_id, number, sgpa, cgpa FROM semesters WHERE student_id = $1 ORDER BY number`
	var semesters []models.Semester
	if err := r.db.SelectContext(ctx, &semesters, query, studentID); err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}

	const subjectQuery = `SELECT id, semester_id, name, code, minor1, mid_exam, minor2, end_exam, total, conducted_hours, attended_hours, attendance_pct, remarks
		FROM subjects WHERE semester_id = $1 ORDER BY code`
	for i := range semesters {
		if err := r.db.SelectContext(ctx, &semesters[i].Subjects, subjectQuery, semesters[i].ID); err != nil {
			return nil, fmt.Errorf("list subjects: %w", err)
		}
	}
	return semesters, nil
}

// UpsertSemester writes a semester summary and replaces its subject rows
// atomically.
func (r *AcademicRepository) UpsertSemester(ctx context.Context, sem *models.Semester) error {
	if sem.ID == "" {
		sem.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert semester: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO semesters (id, student_id, number, sgpa, cgpa) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (student_id, number) DO UPDATE SET sgpa = EXCLUDED.sgpa, cgpa = EXCLUDED.cgpa`,
		sem.ID, sem.StudentID, sem.Number, sem.SGPA, sem.CGPA); err != nil {
		return fmt.Errorf("upsert semester: %w", err)
	}

	var semesterID string
	if err := tx.GetContext(ctx, &semesterID,
		`SELECT id FROM semesters WHERE student_id = $1 AND number = $2`, sem.StudentID, sem.Number); err != nil {
		return fmt.Errorf("resolve semester id: %w", err)
	}
	sem.ID = semesterID

	if _, err := tx.ExecContext(ctx, `DELETE FROM subjects WHERE semester_id = $1`, semesterID); err != nil {
		return fmt.Errorf("clear subjects: %w", err)
	}
	for i := range sem.Subjects {
		sub := &sem.Subjects[i]
		if sub.ID == "" {
			sub.ID = uuid.NewString()
		}
		sub.SemesterID = semesterID
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO subjects (id, semester_id, name, code, minor1, mid_exam, minor2, end_exam, total, conducted_hours, attended_hours, attendance_pct, remarks)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			sub.ID, sub.SemesterID, sub.Name, sub.Code, sub.Minor1, sub.MidExam, sub.Minor2, sub.EndExam, sub.Total, sub.ConductedHours, sub.AttendedHours, sub.AttendancePct, sub.Remarks); err != nil {
			return fmt.Errorf("insert subject: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert semester: %w", err)
	}
	return nil
}
