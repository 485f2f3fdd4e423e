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

type planningFixture struct {
	courses   *courseStub
	classes   *classStoreStub
	schedules *scheduleStoreStub
	scope     *ScopeService
}

// newPlanningFixture seeds two sections: class-1 belongs to sec-1 and class-2 to sec-2.
func newPlanningFixture(t *testing.T) *planningFixture {
	t.Helper()
	courses := &courseStub{courses: map[string]models.Course{
		"course-math": {ID: "course-math", Name: "Math", SectionID: "sec-1"},
		"course-art":  {ID: "course-art", Name: "Art", SectionID: "sec-2"},
	}}
	classes := newClassStoreStub(courses,
		models.AcademicClass{ID: "class-1", CourseID: "course-math", SemesterID: "sem-1", Capacity: 30, StatusID: "open"},
		models.AcademicClass{ID: "class-2", CourseID: "course-art", SemesterID: "sem-1", Capacity: 25, StatusID: "open"},
	)
	schedules := &scheduleStoreStub{}
	return &planningFixture{
		courses:   courses,
		classes:   classes,
		schedules: schedules,
		scope:     NewScopeService(courses, classes, 2, nil),
	}
}

func (f *planningFixture) book(t *testing.T, id, classID, room string, day models.Weekday, start, end string) {
	t.Helper()
	sc := models.ClassSchedule{ID: id, ClassID: classID, Day: day, StartTime: clock(t, start), EndTime: clock(t, end), ModalityID: "in-person"}
	if room != "" {
		sc.ClassroomID = strPtr(room)
	}
	f.schedules.items = append(f.schedules.items, sc)
}

func TestFindConflictsClassroomSevenScenario(t *testing.T) {
	f := newPlanningFixture(t)
	f.book(t, "sched-1", "class-1", "room-7", models.Monday, "08:00", "10:00")
	svc := NewConflictService(f.schedules, f.scope, nil)

	overlapping := models.ConflictQuery{ClassroomID: "room-7", Day: models.Monday, StartTime: clock(t, "09:00"), EndTime: clock(t, "11:00"), ExcludeClassID: "class-2"}
	found, err := svc.FindConflicts(context.Background(), overlapping)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "sched-1", found[0].ID)

	touching := overlapping
	touching.StartTime, touching.EndTime = clock(t, "10:00"), clock(t, "12:00")
	found, err = svc.FindConflicts(context.Background(), touching)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "class-1", found[0].ClassID)

	otherDay := overlapping
	otherDay.Day = models.Tuesday
	found, err = svc.FindConflicts(context.Background(), otherDay)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestFindConflictsExcludesOwnClass(t *testing.T) {
	f := newPlanningFixture(t)
	f.book(t, "sched-1", "class-1", "room-7", models.Monday, "08:00", "10:00")
	svc := NewConflictService(f.schedules, f.scope, nil)

	found, err := svc.FindConflicts(context.Background(), models.ConflictQuery{
		ClassroomID: "room-7", Day: models.Monday, StartTime: clock(t, "08:30"), EndTime: clock(t, "09:30"), ExcludeClassID: "class-1",
	})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestFindConflictsRemoteSlotSkipsStore(t *testing.T) {
	f := newPlanningFixture(t)
	svc := NewConflictService(f.schedules, f.scope, nil)

	found, err := svc.FindConflicts(context.Background(), models.ConflictQuery{Day: models.Monday, StartTime: clock(t, "08:00"), EndTime: clock(t, "09:00")})
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Zero(t, f.schedules.lookups)
}

func TestFindConflictsRejectsInvalidWindow(t *testing.T) {
	f := newPlanningFixture(t)
	svc := NewConflictService(f.schedules, f.scope, nil)

	_, err := svc.FindConflicts(context.Background(), models.ConflictQuery{ClassroomID: "room-7", Day: models.Monday, StartTime: clock(t, "10:00"), EndTime: clock(t, "10:00")})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	_, err = svc.FindConflicts(context.Background(), models.ConflictQuery{ClassroomID: "room-7", Day: "FUNDAY", StartTime: clock(t, "08:00"), EndTime: clock(t, "10:00")})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestFindConflictsStoreFailure(t *testing.T) {
	f := newPlanningFixture(t)
	f.schedules.err = errors.New("connection reset")
	svc := NewConflictService(f.schedules, f.scope, nil)

	_, err := svc.FindConflicts(context.Background(), models.ConflictQuery{ClassroomID: "room-7", Day: models.Monday, StartTime: clock(t, "08:00"), EndTime: clock(t, "10:00")})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInternal.Code))
}

func TestHasConflict(t *testing.T) {
	f := newPlanningFixture(t)
	f.book(t, "sched-1", "class-1", "room-7", models.Monday, "08:00", "10:00")
	svc := NewConflictService(f.schedules, f.scope, nil).WithMetrics(NewMetricsService())

	hit, err := svc.HasConflict(context.Background(), models.ConflictQuery{ClassroomID: "room-7", Day: models.Monday, StartTime: clock(t, "09:00"), EndTime: clock(t, "09:30")})
	require.NoError(t, err)
	assert.True(t, hit)

	hit, err = svc.HasConflict(context.Background(), models.ConflictQuery{ClassroomID: "room-8", Day: models.Monday, StartTime: clock(t, "09:00"), EndTime: clock(t, "09:30")})
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestClassroomConflictsClustersAndScope(t *testing.T) {
	f := newPlanningFixture(t)
	f.book(t, "sched-1", "class-1", "room-7", models.Monday, "08:00", "10:00")
	f.book(t, "sched-2", "class-2", "room-7", models.Monday, "09:00", "11:00")
	f.book(t, "sched-3", "class-2", "room-7", models.Monday, "13:00", "14:00")
	f.book(t, "sched-4", "class-2", "room-9", models.Friday, "08:00", "09:00")
	f.book(t, "sched-5", "class-2", "room-9", models.Friday, "08:30", "09:30")
	f.book(t, "sched-6", "class-1", "", models.Friday, "08:00", "09:00")
	svc := NewConflictService(f.schedules, f.scope, nil)

	all, err := svc.ClassroomConflicts(context.Background(), models.AdminActor(), "sem-1")
	require.NoError(t, err)
	require.Len(t, all, 2)

	assert.Equal(t, "room-7", all[0].ClassroomID)
	assert.Equal(t, models.Monday, all[0].Day)
	assert.ElementsMatch(t, []string{"class-1", "class-2"}, all[0].ClassIDs)
	assert.Equal(t, "08:00", all[0].StartTime.String())
	assert.Equal(t, "11:00", all[0].EndTime.String())

	assert.Equal(t, "room-9", all[1].ClassroomID)
	assert.Equal(t, []string{"class-2"}, all[1].ClassIDs)
	assert.ElementsMatch(t, []string{"sched-4", "sched-5"}, all[1].ScheduleIDs)

	scoped, err := svc.ClassroomConflicts(context.Background(), models.SectionActor("sec-1"), "sem-1")
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "room-7", scoped[0].ClassroomID)
}

func TestTeacherConflictsClustersPerTeacherAndDay(t *testing.T) {
	f := newPlanningFixture(t)
	f.book(t, "sched-1", "class-1", "room-7", models.Monday, "08:00", "10:00")
	f.book(t, "sched-2", "class-2", "", models.Monday, "09:30", "11:00")
	f.book(t, "sched-3", "class-2", "room-9", models.Tuesday, "08:00", "10:00")
	f.schedules.taughtBy = map[string][]string{
		"class-1": {"teacher-5"},
		"class-2": {"teacher-5", "teacher-6"},
	}
	svc := NewConflictService(f.schedules, f.scope, nil).WithMetrics(NewMetricsService())

	all, err := svc.TeacherConflicts(context.Background(), models.AdminActor(), "sem-1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "teacher-5", all[0].TeacherID)
	assert.Equal(t, models.Monday, all[0].Day)
	assert.ElementsMatch(t, []string{"class-1", "class-2"}, all[0].ClassIDs)
	assert.ElementsMatch(t, []string{"sched-1", "sched-2"}, all[0].ScheduleIDs)
	assert.Equal(t, "08:00", all[0].StartTime.String())
	assert.Equal(t, "11:00", all[0].EndTime.String())

	scoped, err := svc.TeacherConflicts(context.Background(), models.SectionActor("sec-2"), "sem-1")
	require.NoError(t, err)
	require.Len(t, scoped, 1)

	outside, err := svc.TeacherConflicts(context.Background(), models.SectionActor("sec-3"), "sem-1")
	require.NoError(t, err)
	assert.Empty(t, outside)
}

func TestTeacherConflictsTouchingSlotsConflict(t *testing.T) {
	f := newPlanningFixture(t)
	f.book(t, "sched-1", "class-1", "room-7", models.Friday, "08:00", "10:00")
	f.book(t, "sched-2", "class-2", "room-9", models.Friday, "10:00", "12:00")
	f.schedules.taughtBy = map[string][]string{"class-1": {"teacher-5"}, "class-2": {"teacher-5"}}
	svc := NewConflictService(f.schedules, f.scope, nil)

	found, err := svc.TeacherConflicts(context.Background(), models.AdminActor(), "sem-1")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "08:00", found[0].StartTime.String())
	assert.Equal(t, "12:00", found[0].EndTime.String())
}

func TestTeacherConflictsStoreFailure(t *testing.T) {
	f := newPlanningFixture(t)
	f.schedules.err = errors.New("connection reset")
	svc := NewConflictService(f.schedules, f.scope, nil)

	_, err := svc.TeacherConflicts(context.Background(), models.AdminActor(), "sem-1")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInternal.Code))
}
