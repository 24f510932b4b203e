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

// PrincipalRepository provides database access for login identities.
type PrincipalRepository struct {
	db *sqlx.DB
}

// NewPrincipalRepository creates a new instance of PrincipalRepository.
func NewPrincipalRepository(db *sqlx.DB) *PrincipalRepository {
	return &PrincipalRepository{db: db}
}

const principalColumns = `id, email, password_hash, role, faculty_id, student_id, active, last_login, created_at, updated_at`

// FindByEmail returns a principal by email address.
func (r *PrincipalRepository) FindByEmail(ctx context.Context, email string) (*models.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM principals WHERE LOWER(email) = LOWER($1) LIMIT 1`
	var p models.Principal
	if err := r.db.GetContext(ctx, &p, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find principal by email: %w", err)
	}
	return &p, nil
}

// FindByID returns a principal by identifier.
func (r *PrincipalRepository) FindByID(ctx context.Context, id string) (*models.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM principals WHERE id = $1 LIMIT 1`
	var p models.Principal
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find principal by id: %w", err)
	}
	return &p, nil
}

// Create inserts a new principal.
func (r *PrincipalRepository) Create(ctx context.Context, p *models.Principal) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	const query = `INSERT INTO principals (id, email, password_hash, role, faculty_id, student_id, active, created_at, updated_at)
		VALUES (:id, :email, :password_hash, :role, :faculty_id, :student_id, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("create principal: %w", err)
	}
	return nil
}

// UpdatePassword updates the stored password hash.
func (r *PrincipalRepository) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	const query = `UPDATE principals SET password_hash = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash, updatedAt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// UpdateLastLogin updates the last_login timestamp.
func (r *PrincipalRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE principals SET last_login = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// SetActive toggles the account flag. Principals are never hard-deleted.
func (r *PrincipalRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE principals SET active = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, active, time.Now().UTC()); err != nil {
		return fmt.Errorf("set principal active: %w", err)
	}
	return nil
}
