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

// MeetingRepository provides database access for meetings and their
// participant sets.
type MeetingRepository struct {
	db *sqlx.DB
}

// NewMeetingRepository creates a new instance of MeetingRepository.
func NewMeetingRepository(db *sqlx.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

const meetingColumns = `id, creator_principal_id, creator_role, faculty_id, hod_id, department, date, time, description, status, cancel_reason, review, created_at, updated_at`

// Create persists the meeting and its participant rows atomically. The
// participant set never changes after this insert.
func (r *MeetingRepository) Create(ctx context.Context, m *models.Meeting) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create meeting: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.NamedExecContext(ctx,
		`INSERT INTO meetings (id, creator_principal_id, creator_role, faculty_id, hod_id, department, date, time, description, status, cancel_reason, review, created_at, updated_at)
		VALUES (:id, :creator_principal_id, :creator_role, :faculty_id, :hod_id, :department, :date, :time, :description, :status, :cancel_reason, :review, :created_at, :updated_at)`, m); err != nil {
		return fmt.Errorf("insert meeting: %w", err)
	}

	for _, studentID := range m.StudentIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO meeting_participants (meeting_id, student_id) VALUES ($1, $2)`,
			m.ID, studentID); err != nil {
			return fmt.Errorf("insert meeting participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create meeting: %w", err)
	}
	return nil
}

// FindByID returns a meeting with its participant ids.
func (r *MeetingRepository) FindByID(ctx context.Context, id string) (*models.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE id = $1 LIMIT 1`
	var m models.Meeting
	if err := r.db.GetContext(ctx, &m, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find meeting by id: %w", err)
	}

	if err := r.db.SelectContext(ctx, &m.StudentIDs,
		`SELECT student_id FROM meeting_participants WHERE meeting_id = $1 ORDER BY student_id`, id); err != nil {
		return nil, fmt.Errorf("load meeting participants: %w", err)
	}
	return &m, nil
}

// List returns meetings visible through the filter, newest scheduled
// first, with a total count.
func (r *MeetingRepository) List(ctx context.Context, filter models.MeetingFilter) ([]models.Meeting, int, error) {
	baseQuery := `FROM meetings m WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.CreatorPrincipalID != "" {
		conditions = append(conditions, fmt.Sprintf("m.creator_principal_id = $%d", len(args)+1))
		args = append(args, filter.CreatorPrincipalID)
	}
	if filter.ParticipantID != "" {
		conditions = append(conditions, fmt.Sprintf("EXISTS (SELECT 1 FROM meeting_participants p WHERE p.meeting_id = m.id AND p.student_id = $%d)", len(args)+1))
		args = append(args, filter.ParticipantID)
	}
	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("m.department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}

	if len(conditions) > 0 {
		baseQuery += " AND (" + strings.Join(conditions, " OR ") + ")"
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY m.date DESC, m.time DESC LIMIT %d OFFSET %d",
		qualify(meetingColumns, "m"), baseQuery, pageSize, offset)

	var meetings []models.Meeting
	if err := r.db.SelectContext(ctx, &meetings, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list meetings: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count meetings: %w", err)
	}

	for i := range meetings {
		if err := r.db.SelectContext(ctx, &meetings[i].StudentIDs,
			`SELECT student_id FROM meeting_participants WHERE meeting_id = $1 ORDER BY student_id`, meetings[i].ID); err != nil {
			return nil, 0, fmt.Errorf("load meeting participants: %w", err)
		}
	}

	return meetings, total, nil
}

// UpdateStatus moves the meeting into a new status.
func (r *MeetingRepository) UpdateStatus(ctx context.Context, id string, status models.MeetingStatus, cancelReason string) error {
	const query = `UPDATE meetings SET status = $2, cancel_reason = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, cancelReason, time.Now().UTC()); err != nil {
		return fmt.Errorf("update meeting status: %w", err)
	}
	return nil
}

// SetReview records the creator's post-meeting review note.
func (r *MeetingRepository) SetReview(ctx context.Context, id, review string) error {
	const query = `UPDATE meetings SET review = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, review, time.Now().UTC()); err != nil {
		return fmt.Errorf("set meeting review: %w", err)
	}
	return nil
}

func qualify(columns, alias string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}
