package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
)

var scheduleRowColumns = []string{"id", "class_id", "classroom_id", "day", "start_time", "end_time", "modality_id", "disability", "created_at", "updated_at"}

func TestClassScheduleRepositoryListByClassroomAndDay(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewClassScheduleRepository(db)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM class_schedules WHERE classroom_id = $1 AND day = $2 ORDER BY start_time")).
		WithArgs("room-7", models.Monday).
		WillReturnRows(sqlmock.NewRows(scheduleRowColumns).
			AddRow("sch-1", "class-1", "room-7", "MONDAY", "08:00:00", "10:00:00", "1", false, now, now))

	schedules, err := repo.ListByClassroomAndDay(ctx, "room-7", models.Monday, "")
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, models.NewClockTime(8, 0), schedules[0].StartTime)
	assert.Equal(t, models.NewClockTime(10, 0), schedules[0].EndTime)
	require.NotNil(t, schedules[0].ClassroomID)
	assert.Equal(t, "room-7", *schedules[0].ClassroomID)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE cs.classroom_id = $1 AND cs.day = $2 AND c.semester_id = $3")).
		WithArgs("room-7", models.Monday, "sem-1").
		WillReturnRows(sqlmock.NewRows(scheduleRowColumns))

	schedules, err = repo.ListByClassroomAndDay(ctx, "room-7", models.Monday, "sem-1")
	require.NoError(t, err)
	assert.Empty(t, schedules)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassScheduleRepositoryBulkCreateWithTx(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewClassScheduleRepository(db)
	ctx := context.Background()

	room := "room-7"
	schedules := []models.ClassSchedule{
		{ClassID: "class-1", ClassroomID: &room, Day: models.Monday, StartTime: models.NewClockTime(8, 0), EndTime: models.NewClockTime(10, 0), ModalityID: "1"},
		{ClassID: "class-1", Day: models.Friday, StartTime: models.NewClockTime(14, 0), EndTime: models.NewClockTime(16, 0), ModalityID: "2"},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO class_schedules").
		WithArgs(sqlmock.AnyArg(), "class-1", "room-7", "MONDAY", "08:00:00", "10:00:00", "1", false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO class_schedules").
		WithArgs(sqlmock.AnyArg(), "class-1", nil, "FRIDAY", "14:00:00", "16:00:00", "2", false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.BulkCreateWithTx(ctx, tx, schedules))
	require.NoError(t, tx.Commit())
	assert.NotEmpty(t, schedules[0].ID)
	assert.NotEqual(t, schedules[0].ID, schedules[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassScheduleRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewClassScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM class_schedules WHERE id = $1")).
		WithArgs("sch-x").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "sch-x"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassScheduleRepositoryListTeacherBookedBySemester(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewClassScheduleRepository(db)
	now := time.Now()

	columns := append([]string{"teacher_id"}, scheduleRowColumns...)
	mock.ExpectQuery(regexp.QuoteMeta("JOIN teacher_assignments ta ON ta.class_id = cs.class_id")).
		WithArgs("sem-1", models.AssignmentAccepted).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("teacher-1", "sch-1", "class-1", nil, "TUESDAY", "14:00:00", "16:00:00", "2", false, now, now))

	schedules, err := repo.ListTeacherBookedBySemester(context.Background(), "sem-1")
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, "teacher-1", schedules[0].TeacherID)
	assert.Equal(t, "class-1", schedules[0].ClassID)
	assert.Equal(t, models.Tuesday, schedules[0].Day)
	assert.Nil(t, schedules[0].ClassroomID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
