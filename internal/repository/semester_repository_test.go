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

var semesterRowColumns = []string{"id", "year", "period", "start_date", "end_date", "start_special_week", "is_current", "created_at", "updated_at"}

func TestSemesterRepositoryFindCurrent(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewSemesterRepository(db)

	start := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(semesterRowColumns).
		AddRow("sem-1", 2025, 1, start, start.AddDate(0, 4, 0), nil, true, start, start)
	mock.ExpectQuery(regexp.QuoteMeta("FROM semesters WHERE is_current = TRUE LIMIT 1")).WillReturnRows(rows)

	semester, err := repo.FindCurrent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sem-1", semester.ID)
	assert.True(t, semester.IsCurrent)
	assert.Nil(t, semester.StartSpecialWeek)

	mock.ExpectQuery(regexp.QuoteMeta("FROM semesters WHERE is_current = TRUE LIMIT 1")).WillReturnError(sql.ErrNoRows)
	_, err = repo.FindCurrent(context.Background())
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterRepositoryListPast(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewSemesterRepository(db)

	start := time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(semesterRowColumns).
		AddRow("sem-0", 2024, 2, start, start.AddDate(0, 4, 0), nil, false, start, start)
	mock.ExpectQuery(regexp.QuoteMeta("FROM semesters WHERE is_current = FALSE ORDER BY year DESC, period DESC")).WillReturnRows(rows)

	semesters, err := repo.ListPast(context.Background())
	require.NoError(t, err)
	require.Len(t, semesters, 1)
	assert.False(t, semesters[0].IsCurrent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterRepositoryActivationStatements(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewSemesterRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM semesters WHERE is_current = TRUE FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("sem-1"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE semesters SET is_current = FALSE")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO semesters").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO semesters").
		WillReturnError(uniqueViolationErr())
	mock.ExpectRollback()

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.LockCurrentWithTx(ctx, tx))
	require.NoError(t, repo.ClearCurrentWithTx(ctx, tx))

	semester := &models.Semester{Year: 2025, Period: 2, IsCurrent: true}
	require.NoError(t, repo.CreateWithTx(ctx, tx, semester))
	assert.NotEmpty(t, semester.ID)
	assert.False(t, semester.CreatedAt.IsZero())

	err = repo.CreateWithTx(ctx, tx, &models.Semester{Year: 2025, Period: 2, IsCurrent: true})
	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}
