package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
	"github.com/ElCzar/secchub-backend-sub001/internal/repository"
	appErrors "github.com/ElCzar/secchub-backend-sub001/pkg/errors"
)

type txProviderMock struct {
	db   *sqlx.DB
	mock sqlmock.Sqlmock
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb, mock: mock}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

func strPtr(v string) *string { return &v }

func clock(t *testing.T, raw string) models.ClockTime {
	t.Helper()
	c, err := models.ParseClockTime(raw)
	require.NoError(t, err)
	return c
}

// courseStub maps courses to their owning section.
type courseStub struct {
	courses map[string]models.Course
}

func (s *courseStub) FindByID(ctx context.Context, id string) (*models.Course, error) {
	course, ok := s.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &course, nil
}

func (s *courseStub) SectionIDForCourse(ctx context.Context, courseID string) (string, error) {
	course, ok := s.courses[courseID]
	if !ok {
		return "", sql.ErrNoRows
	}
	return course.SectionID, nil
}

// classStoreStub keeps classes in memory and resolves their section through courses.
type classStoreStub struct {
	mu          sync.Mutex
	items       map[string]models.AcademicClass
	courses     *courseStub
	seq         int
	createErr   error
	withTeacher map[string]bool
	withRoom    map[string]bool
}

func newClassStoreStub(courses *courseStub, classes ...models.AcademicClass) *classStoreStub {
	s := &classStoreStub{items: make(map[string]models.AcademicClass), courses: courses, withTeacher: map[string]bool{}}
	for _, c := range classes {
		s.items[c.ID] = c
	}
	return s
}

func (s *classStoreStub) sorted(keep func(models.AcademicClass) bool) []models.AcademicClass {
	result := make([]models.AcademicClass, 0)
	for _, c := range s.items {
		if keep(c) {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (s *classStoreStub) FindByID(ctx context.Context, id string) (*models.AcademicClass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (s *classStoreStub) List(ctx context.Context, filter models.ClassFilter) ([]models.AcademicClass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(c models.AcademicClass) bool {
		return (filter.SemesterID == "" || c.SemesterID == filter.SemesterID) &&
			(filter.CourseID == "" || c.CourseID == filter.CourseID)
	}), nil
}

func (s *classStoreStub) ListByIDs(ctx context.Context, ids []string) ([]models.AcademicClass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	return s.sorted(func(c models.AcademicClass) bool { return wanted[c.ID] }), nil
}

func (s *classStoreStub) ListWithoutAcceptedTeacher(ctx context.Context, semesterID string) ([]models.AcademicClass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(c models.AcademicClass) bool {
		return c.SemesterID == semesterID && !s.withTeacher[c.ID]
	}), nil
}

func (s *classStoreStub) ListWithoutClassroom(ctx context.Context, semesterID string) ([]models.AcademicClass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(c models.AcademicClass) bool {
		return c.SemesterID == semesterID && !s.withRoom[c.ID]
	}), nil
}

func (s *classStoreStub) SectionIDForClass(ctx context.Context, classID string) (string, error) {
	s.mu.Lock()
	c, ok := s.items[classID]
	s.mu.Unlock()
	if !ok {
		return "", sql.ErrNoRows
	}
	return s.courses.SectionIDForCourse(ctx, c.CourseID)
}

func (s *classStoreStub) CreateWithTx(ctx context.Context, tx *sqlx.Tx, class *models.AcademicClass) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.seq++
	if class.ID == "" {
		class.ID = fmt.Sprintf("new-class-%d", s.seq)
	}
	s.items[class.ID] = *class
	return nil
}

func (s *classStoreStub) Update(ctx context.Context, class *models.AcademicClass) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[class.ID]; !ok {
		return sql.ErrNoRows
	}
	s.items[class.ID] = *class
	return nil
}

func (s *classStoreStub) DeleteWithTx(ctx context.Context, tx *sqlx.Tx, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.items, id)
	return nil
}

// scheduleStoreStub keeps schedules in memory. taughtBy lists the accepted teachers of each class.
type scheduleStoreStub struct {
	mu       sync.Mutex
	items    []models.ClassSchedule
	taughtBy map[string][]string
	seq      int
	lookups  int
	err      error
}

func (s *scheduleStoreStub) FindByID(ctx context.Context, id string) (*models.ClassSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sc := range s.items {
		if sc.ID == id {
			return &sc, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *scheduleStoreStub) filter(keep func(models.ClassSchedule) bool) []models.ClassSchedule {
	result := make([]models.ClassSchedule, 0)
	for _, sc := range s.items {
		if keep(sc) {
			result = append(result, sc)
		}
	}
	return result
}

func (s *scheduleStoreStub) ListByClass(ctx context.Context, classID string) ([]models.ClassSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(sc models.ClassSchedule) bool { return sc.ClassID == classID }), nil
}

func (s *scheduleStoreStub) ListByClassIDs(ctx context.Context, classIDs []string) ([]models.ClassSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := make(map[string]bool, len(classIDs))
	for _, id := range classIDs {
		wanted[id] = true
	}
	return s.filter(func(sc models.ClassSchedule) bool { return wanted[sc.ClassID] }), nil
}

func (s *scheduleStoreStub) ListByClassroomAndDay(ctx context.Context, classroomID string, day models.Weekday, semesterID string) ([]models.ClassSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	if s.err != nil {
		return nil, s.err
	}
	return s.filter(func(sc models.ClassSchedule) bool {
		return sc.ClassroomID != nil && *sc.ClassroomID == classroomID && sc.Day == day
	}), nil
}

func (s *scheduleStoreStub) ListRoomBookedBySemester(ctx context.Context, semesterID string) ([]models.ClassSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.filter(func(sc models.ClassSchedule) bool { return sc.ClassroomID != nil }), nil
}

func (s *scheduleStoreStub) ListTeacherBookedBySemester(ctx context.Context, semesterID string) ([]models.TeacherSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	result := make([]models.TeacherSchedule, 0)
	for _, sc := range s.items {
		for _, teacherID := range s.taughtBy[sc.ClassID] {
			result = append(result, models.TeacherSchedule{TeacherID: teacherID, ClassSchedule: sc})
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].TeacherID < result[j].TeacherID })
	return result, nil
}

func (s *scheduleStoreStub) insert(schedule *models.ClassSchedule) {
	s.seq++
	if schedule.ID == "" {
		schedule.ID = fmt.Sprintf("new-schedule-%d", s.seq)
	}
	s.items = append(s.items, *schedule)
}

func (s *scheduleStoreStub) Create(ctx context.Context, schedule *models.ClassSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insert(schedule)
	return nil
}

func (s *scheduleStoreStub) BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, schedules []models.ClassSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for i := range schedules {
		s.insert(&schedules[i])
	}
	return nil
}

func (s *scheduleStoreStub) Update(ctx context.Context, schedule *models.ClassSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == schedule.ID {
			s.items[i] = *schedule
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *scheduleStoreStub) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.items)
	s.items = s.filter(func(sc models.ClassSchedule) bool { return sc.ID != id })
	if len(s.items) == before {
		return sql.ErrNoRows
	}
	return nil
}

func (s *scheduleStoreStub) DeleteByClassWithTx(ctx context.Context, tx *sqlx.Tx, classID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = s.filter(func(sc models.ClassSchedule) bool { return sc.ClassID != classID })
	return nil
}

// semesterStub answers current-semester lookups.
type semesterStub struct {
	current   string
	semesters map[string]models.Semester
}

func (s *semesterStub) CurrentID(ctx context.Context) (string, error) {
	if s.current == "" {
		return "", appErrors.Clone(appErrors.ErrNotFound, "no current semester")
	}
	return s.current, nil
}

func (s *semesterStub) Get(ctx context.Context, id string) (*models.Semester, error) {
	semester, ok := s.semesters[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
	}
	return &semester, nil
}

// teacherStub serves teacher records. Loads are summed from hours when it is set.
type teacherStub struct {
	items map[string]models.Teacher
	hours *assignmentStoreStub
}

func (s *teacherStub) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &teacher, nil
}

func (s *teacherStub) FindByUserID(ctx context.Context, userID string) (*models.Teacher, error) {
	for _, teacher := range s.items {
		if teacher.UserID == userID {
			t := teacher
			return &t, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *teacherStub) ListByIDs(ctx context.Context, ids []string) ([]models.Teacher, error) {
	result := make([]models.Teacher, 0, len(ids))
	for _, id := range ids {
		if teacher, ok := s.items[id]; ok {
			result = append(result, teacher)
		}
	}
	return result, nil
}

func (s *teacherStub) ListLoads(ctx context.Context, semesterID string) ([]models.TeacherLoad, error) {
	loads := make([]models.TeacherLoad, 0, len(s.items))
	for _, teacher := range s.items {
		load := models.TeacherLoad{Teacher: teacher}
		if s.hours != nil {
			assigned, err := s.hours.SumAcceptedHours(ctx, teacher.ID, semesterID)
			if err != nil {
				return nil, err
			}
			load.AssignedHours = assigned
		}
		loads = append(loads, load)
	}
	sort.Slice(loads, func(i, j int) bool { return loads[i].ID < loads[j].ID })
	return loads, nil
}

// assignmentStoreStub emulates the teacher_assignments table including its unique index.
type assignmentStoreStub struct {
	mu        sync.Mutex
	items     map[string]models.TeacherAssignment
	seq       int
	skipCheck bool
}

func newAssignmentStoreStub(items ...models.TeacherAssignment) *assignmentStoreStub {
	s := &assignmentStoreStub{items: make(map[string]models.TeacherAssignment)}
	for _, a := range items {
		s.items[a.ID] = a
	}
	return s
}

func (s *assignmentStoreStub) FindByID(ctx context.Context, id string) (*models.TeacherAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &a, nil
}

func (s *assignmentStoreStub) FindByTeacherAndClass(ctx context.Context, teacherID, classID string) (*models.TeacherAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.items {
		if a.TeacherID == teacherID && a.ClassID == classID {
			return &a, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *assignmentStoreStub) Exists(ctx context.Context, teacherID, classID string) (bool, error) {
	if s.skipCheck {
		return false, nil
	}
	_, err := s.FindByTeacherAndClass(ctx, teacherID, classID)
	return err == nil, nil
}

func (s *assignmentStoreStub) List(ctx context.Context, filter models.AssignmentFilter) ([]models.TeacherAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]models.TeacherAssignment, 0)
	for _, a := range s.items {
		if filter.TeacherID != "" && a.TeacherID != filter.TeacherID {
			continue
		}
		if filter.ClassID != "" && a.ClassID != filter.ClassID {
			continue
		}
		if filter.SemesterID != "" && a.SemesterID != filter.SemesterID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *assignmentStoreStub) Create(ctx context.Context, assignment *models.TeacherAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.items {
		if a.TeacherID == assignment.TeacherID && a.ClassID == assignment.ClassID {
			return repository.ErrDuplicate
		}
	}
	s.seq++
	assignment.ID = fmt.Sprintf("assignment-%d", s.seq)
	s.items[assignment.ID] = *assignment
	return nil
}

func (s *assignmentStoreStub) Update(ctx context.Context, assignment *models.TeacherAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[assignment.ID]; !ok {
		return sql.ErrNoRows
	}
	s.items[assignment.ID] = *assignment
	return nil
}

func (s *assignmentStoreStub) UpdateDecision(ctx context.Context, id string, status models.AssignmentStatus, decision bool, observation *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	a.Status = status
	a.Decision = &decision
	if observation != nil {
		a.Observation = observation
	}
	s.items[id] = a
	return nil
}

func (s *assignmentStoreStub) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.items, id)
	return nil
}

func (s *assignmentStoreStub) DeleteByTeacherAndClass(ctx context.Context, teacherID, classID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range s.items {
		if a.TeacherID == teacherID && a.ClassID == classID {
			delete(s.items, id)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *assignmentStoreStub) SumAcceptedHours(ctx context.Context, teacherID, semesterID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, a := range s.items {
		if a.TeacherID == teacherID && a.SemesterID == semesterID && a.Status == models.AssignmentAccepted {
			total += a.TotalHours()
		}
	}
	return total, nil
}
