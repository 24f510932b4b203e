package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitap-dev/mentor-portal-api/internal/models"
)

func TestMeetingCreateWithParticipants(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMeetingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO meetings").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO meeting_participants (meeting_id, student_id) VALUES ($1, $2)")).
		WithArgs(sqlmock.AnyArg(), "s1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO meeting_participants (meeting_id, student_id) VALUES ($1, $2)")).
		WithArgs(sqlmock.AnyArg(), "s2").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	facultyID := "f1"
	m := &models.Meeting{
		CreatorPrincipalID: "p1",
		CreatorRole:        models.RoleFaculty,
		FacultyID:          &facultyID,
		Department:         "CSE",
		Date:               time.Now().AddDate(0, 0, 7),
		Time:               "14:00",
		Status:             models.MeetingScheduled,
		StudentIDs:         []string{"s1", "s2"},
	}
	err := repo.Create(context.Background(), m)
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingCreateRollsBackOnParticipantFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMeetingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO meetings").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO meeting_participants").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	m := &models.Meeting{
		CreatorPrincipalID: "p1",
		CreatorRole:        models.RoleFaculty,
		Department:         "CSE",
		Date:               time.Now(),
		Time:               "10:00",
		Status:             models.MeetingScheduled,
		StudentIDs:         []string{"s1"},
	}
	err := repo.Create(context.Background(), m)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingFindByIDLoadsParticipants(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMeetingRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "creator_principal_id", "creator_role", "faculty_id", "hod_id", "department", "date", "time", "description", "status", "cancel_reason", "review", "created_at", "updated_at"}).
		AddRow("m1", "p1", string(models.RoleFaculty), "f1", nil, "CSE", now, "14:00", "sync", string(models.MeetingScheduled), "", "", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, creator_principal_id, creator_role, faculty_id, hod_id, department, date, time, description, status, cancel_reason, review, created_at, updated_at FROM meetings WHERE id = $1 LIMIT 1")).
		WithArgs("m1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT student_id FROM meeting_participants WHERE meeting_id = $1 ORDER BY student_id")).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow("s1").AddRow("s2"))

	m, err := repo.FindByID(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, m.StudentIDs)
	assert.Equal(t, models.MeetingScheduled, m.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingUpdateStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMeetingRepository(db)

	mock.ExpectExec("UPDATE meetings SET status").
		WithArgs("m1", models.MeetingCancelled, "room unavailable", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "m1", models.MeetingCancelled, "room unavailable")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
