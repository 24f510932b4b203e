package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitap-dev/mentor-portal-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func principalRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "faculty_id", "student_id", "active", "last_login", "created_at", "updated_at"}).
		AddRow("p1", "mentor@college.edu", "hash", string(models.RoleFaculty), "f1", nil, true, now, now, now)
}

func TestPrincipalFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPrincipalRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, role, faculty_id, student_id, active, last_login, created_at, updated_at FROM principals WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("mentor@college.edu").
		WillReturnRows(principalRows(time.Now()))

	p, err := repo.FindByEmail(context.Background(), "mentor@college.edu")
	require.NoError(t, err)
	assert.Equal(t, models.RoleFaculty, p.Role)
	require.NotNil(t, p.FacultyID)
	assert.Equal(t, "f1", *p.FacultyID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrincipalFindByEmailMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPrincipalRepository(db)

	mock.ExpectQuery("SELECT .* FROM principals").
		WithArgs("nobody@college.edu").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "nobody@college.edu")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrincipalCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPrincipalRepository(db)

	mock.ExpectExec("INSERT INTO principals").WillReturnResult(sqlmock.NewResult(1, 1))

	studentID := "s1"
	p := &models.Principal{Email: "student@college.edu", PasswordHash: "hash", Role: models.RoleStudent, StudentID: &studentID, Active: true}
	err := repo.Create(context.Background(), p)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrincipalUpdatePassword(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPrincipalRepository(db)

	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE principals SET password_hash = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("p1", "newhash", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdatePassword(context.Background(), "p1", "newhash", now)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
