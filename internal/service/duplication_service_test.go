package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
	appErrors "github.com/ElCzar/secchub-backend-sub001/pkg/errors"
)

func newDuplicationFixture(t *testing.T) (*planningFixture, *semesterStub) {
	t.Helper()
	f := newPlanningFixture(t)
	f.book(t, "sched-1", "class-1", "room-7", models.Monday, "08:00", "10:00")
	f.book(t, "sched-2", "class-1", "room-7", models.Wednesday, "08:00", "10:00")
	f.book(t, "sched-3", "class-2", "", models.Friday, "14:00", "16:00")
	semesters := &semesterStub{current: "sem-2", semesters: map[string]models.Semester{
		"sem-1": {ID: "sem-1", Year: 2024, Period: 1},
		"sem-2": {ID: "sem-2", Year: 2024, Period: 2, IsCurrent: true},
	}}
	return f, semesters
}

func TestDuplicateAllPreservesCounts(t *testing.T) {
	f, semesters := newDuplicationFixture(t)
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	svc := NewDuplicationService(f.classes, f.schedules, semesters, f.scope, tx, nil).WithMetrics(NewMetricsService())

	copied, err := svc.DuplicateAll(context.Background(), models.AdminActor(), "sem-1", "sem-2")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	require.Len(t, copied, 2)

	totalSchedules := 0
	for _, c := range copied {
		assert.Equal(t, "sem-2", c.SemesterID)
		assert.NotContains(t, []string{"class-1", "class-2"}, c.ID)
		original, err := f.classes.FindByID(context.Background(), map[string]string{"course-math": "class-1", "course-art": "class-2"}[c.CourseID])
		require.NoError(t, err)
		assert.Equal(t, original.Capacity, c.Capacity)
		assert.Equal(t, original.StatusID, c.StatusID)
		for _, sc := range c.Schedules {
			assert.Equal(t, c.ID, sc.ClassID)
		}
		totalSchedules += len(c.Schedules)
	}
	assert.Equal(t, 3, totalSchedules)

	inTarget, err := f.classes.List(context.Background(), models.ClassFilter{SemesterID: "sem-2"})
	require.NoError(t, err)
	assert.Len(t, inTarget, 2)
	inSource, err := f.classes.List(context.Background(), models.ClassFilter{SemesterID: "sem-1"})
	require.NoError(t, err)
	assert.Len(t, inSource, 2)
}

func TestDuplicateAllHonoursScope(t *testing.T) {
	f, semesters := newDuplicationFixture(t)
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	svc := NewDuplicationService(f.classes, f.schedules, semesters, f.scope, tx, nil)

	copied, err := svc.ApplyToCurrent(context.Background(), models.SectionActor("sec-2"), "sem-1")
	require.NoError(t, err)
	require.Len(t, copied, 1)
	assert.Equal(t, "course-art", copied[0].CourseID)
	assert.Len(t, copied[0].Schedules, 1)
}

func TestDuplicateAllRollsBackOnFailure(t *testing.T) {
	f, semesters := newDuplicationFixture(t)
	f.schedules.err = errors.New("disk full")
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	svc := NewDuplicationService(f.classes, f.schedules, semesters, f.scope, tx, nil)

	_, err := svc.DuplicateAll(context.Background(), models.AdminActor(), "sem-1", "sem-2")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInternal.Code))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDuplicateAllMissingSemester(t *testing.T) {
	f, semesters := newDuplicationFixture(t)
	tx, mock := newTxProviderMock(t)
	svc := NewDuplicationService(f.classes, f.schedules, semesters, f.scope, tx, nil)

	_, err := svc.DuplicateAll(context.Background(), models.AdminActor(), "sem-1", "sem-9")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
	_, err = svc.DuplicateAll(context.Background(), models.AdminActor(), "sem-9", "sem-2")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
	_, err = svc.DuplicateAll(context.Background(), models.TeacherActor("teacher-1"), "sem-1", "sem-2")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden.Code))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDuplicateSelected(t *testing.T) {
	f, semesters := newDuplicationFixture(t)
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	svc := NewDuplicationService(f.classes, f.schedules, semesters, f.scope, tx, nil)

	applied, err := svc.DuplicateSelected(context.Background(), models.AdminActor(), "sem-1", []string{"class-1", "class-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDuplicateSelectedRejectsBadInput(t *testing.T) {
	f, semesters := newDuplicationFixture(t)
	tx, mock := newTxProviderMock(t)
	svc := NewDuplicationService(f.classes, f.schedules, semesters, f.scope, tx, nil)
	ctx := context.Background()

	_, err := svc.DuplicateSelected(ctx, models.AdminActor(), "sem-1", nil)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	_, err = svc.DuplicateSelected(ctx, models.AdminActor(), "sem-1", []string{"class-1", "class-404"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))

	_, err = svc.DuplicateSelected(ctx, models.SectionActor("sec-1"), "sem-1", []string{"class-2"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))

	_, err = svc.DuplicateSelected(ctx, models.AdminActor(), "sem-2", []string{"class-1"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPreviewIsReadOnly(t *testing.T) {
	f, semesters := newDuplicationFixture(t)
	tx, mock := newTxProviderMock(t)
	svc := NewDuplicationService(f.classes, f.schedules, semesters, f.scope, tx, nil)

	preview, err := svc.Preview(context.Background(), models.SectionActor("sec-1"), "sem-1")
	require.NoError(t, err)
	require.Len(t, preview, 1)
	assert.Equal(t, "class-1", preview[0].ID)
	assert.Len(t, preview[0].Schedules, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}
