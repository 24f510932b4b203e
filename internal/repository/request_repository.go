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

// RequestRepository provides database access for approval requests.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository creates a new instance of RequestRepository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

const requestColumns = `id, requester_principal_id, target_principal_id, type, description, department, status, review_notes, reviewed_by, reviewed_at, created_at, updated_at`

// Create inserts a new pending request.
func (r *RequestRepository) Create(ctx context.Context, req *models.Request) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now

	const query = `INSERT INTO requests (id, requester_principal_id, target_principal_id, type, description, department, status, review_notes, reviewed_by, reviewed_at, created_at, updated_at)
		VALUES (:id, :requester_principal_id, :target_principal_id, :type, :description, :department, :status, :review_notes, :reviewed_by, :reviewed_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

// FindByID returns a request by identifier.
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1 LIMIT 1`
	var req models.Request
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find request by id: %w", err)
	}
	return &req, nil
}

// List returns requests visible through the filter, newest first. Scope
// conditions are OR'd together so a faculty member sees both their own
// requests and those targeted at them.
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.Request, int, error) {
	baseQuery := `FROM requests WHERE 1=1`
	var scopeConds []string
	var args []interface{}

	if filter.RequesterPrincipalID != "" {
		scopeConds = append(scopeConds, fmt.Sprintf("requester_principal_id = $%d", len(args)+1))
		args = append(args, filter.RequesterPrincipalID)
	}
	if filter.TargetPrincipalID != "" {
		scopeConds = append(scopeConds, fmt.Sprintf("target_principal_id = $%d", len(args)+1))
		args = append(args, filter.TargetPrincipalID)
	}
	if filter.Department != "" {
		scopeConds = append(scopeConds, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if len(scopeConds) > 0 {
		baseQuery += " AND (" + strings.Join(scopeConds, " OR ") + ")"
	}

	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, *filter.Status)
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", requestColumns, baseQuery, pageSize, offset)

	var requests []models.Request
	if err := r.db.SelectContext(ctx, &requests, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count requests: %w", err)
	}

	return requests, total, nil
}

// Decide transitions a pending request into a terminal state. The WHERE
// clause guards against racing decisions: only a still-pending row is
// updated, and the caller learns whether the transition happened.
func (r *RequestRepository) Decide(ctx context.Context, id string, status models.RequestStatus, notes, reviewedBy string, reviewedAt time.Time) (bool, error) {
	const query = `UPDATE requests SET status = $2, review_notes = $3, reviewed_by = $4, reviewed_at = $5, updated_at = $5
		WHERE id = $1 AND status = $6`
	res, err := r.db.ExecContext(ctx, query, id, status, notes, reviewedBy, reviewedAt, models.RequestPending)
	if err != nil {
		return false, fmt.Errorf("decide request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("decide request rows: %w", err)
	}
	return n > 0, nil
}
