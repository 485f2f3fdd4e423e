package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
	appErrors "github.com/ElCzar/secchub-backend-sub001/pkg/errors"
)

type classRepository interface {
	FindByID(ctx context.Context, id string) (*models.AcademicClass, error)
	List(ctx context.Context, filter models.ClassFilter) ([]models.AcademicClass, error)
	ListWithoutAcceptedTeacher(ctx context.Context, semesterID string) ([]models.AcademicClass, error)
	ListWithoutClassroom(ctx context.Context, semesterID string) ([]models.AcademicClass, error)
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, class *models.AcademicClass) error
	Update(ctx context.Context, class *models.AcademicClass) error
	DeleteWithTx(ctx context.Context, tx *sqlx.Tx, id string) error
}

type classScheduleRepository interface {
	FindByID(ctx context.Context, id string) (*models.ClassSchedule, error)
	ListByClass(ctx context.Context, classID string) ([]models.ClassSchedule, error)
	Create(ctx context.Context, schedule *models.ClassSchedule) error
	BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, schedules []models.ClassSchedule) error
	Update(ctx context.Context, schedule *models.ClassSchedule) error
	Delete(ctx context.Context, id string) error
	DeleteByClassWithTx(ctx context.Context, tx *sqlx.Tx, classID string) error
}

type courseFinder interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type classScope interface {
	Visible(ctx context.Context, actor models.Actor, target ScopeTarget) (bool, error)
	CanAccessClass(ctx context.Context, actor models.Actor, classID string) (bool, error)
	FilterClasses(ctx context.Context, actor models.Actor, classes []models.AcademicClass) ([]models.AcademicClass, error)
}

type conflictFinder interface {
	FindConflicts(ctx context.Context, q models.ConflictQuery) ([]models.ClassSchedule, error)
}

// ClassService manages classes and their schedules within an actor's scope.
// Schedule writes report classroom overlaps without blocking.
type ClassService struct {
	classes   classRepository
	schedules classScheduleRepository
	courses   courseFinder
	semesters currentSemesterResolver
	scope     classScope
	conflicts conflictFinder
	tx        txProvider
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService builds a class service.
func NewClassService(
	classes classRepository,
	schedules classScheduleRepository,
	courses courseFinder,
	semesters currentSemesterResolver,
	scope classScope,
	conflicts conflictFinder,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{
		classes:   classes,
		schedules: schedules,
		courses:   courses,
		semesters: semesters,
		scope:     scope,
		conflicts: conflicts,
		tx:        tx,
		validator: validate,
		logger:    logger,
	}
}

// CreateClass creates a class with its schedules in the current semester.
func (s *ClassService) CreateClass(ctx context.Context, actor models.Actor, req models.CreateClassRequest) (*models.ClassResult, error) {
	if err := ensurePlanner(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	if err := validateClassDates(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	for _, sr := range req.Schedules {
		if err := validateWindow(sr.Day, sr.StartTime, sr.EndTime); err != nil {
			return nil, err
		}
	}

	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		return nil, notFoundOrInternal(err, "course not found", "failed to load course")
	}
	visible, err := s.scope.Visible(ctx, actor, ScopeTarget{CourseID: req.CourseID})
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	semesterID, err := s.semesters.CurrentID(ctx)
	if err != nil {
		return nil, err
	}

	class := models.AcademicClass{
		CourseID:    req.CourseID,
		SemesterID:  semesterID,
		SectionRef:  req.SectionRef,
		Capacity:    req.Capacity,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		StatusID:    req.StatusID,
		Observation: req.Observation,
	}
	schedules := make([]models.ClassSchedule, 0, len(req.Schedules))
	for _, sr := range req.Schedules {
		schedules = append(schedules, scheduleFromRequest(sr))
	}

	if err := s.insertClass(ctx, &class, schedules); err != nil {
		return nil, err
	}

	result := &models.ClassResult{Class: models.ClassWithSchedules{AcademicClass: class, Schedules: schedules}}
	for _, schedule := range schedules {
		found, err := s.conflictsFor(ctx, schedule, semesterID)
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			result.Conflicts = append(result.Conflicts, models.ScheduleWithConflicts{Schedule: schedule, Conflicts: found})
		}
	}
	return result, nil
}

func (s *ClassService) insertClass(ctx context.Context, class *models.AcademicClass, schedules []models.ClassSchedule) (err error) {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start class transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.classes.CreateWithTx(ctx, tx, class); err != nil {
		s.logger.Error("failed to create class", zap.String("course_id", class.CourseID), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	for i := range schedules {
		schedules[i].ClassID = class.ID
	}
	if err = s.schedules.BulkCreateWithTx(ctx, tx, schedules); err != nil {
		s.logger.Error("failed to create class schedules", zap.String("class_id", class.ID), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	if err = tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	return nil
}

// GetClass returns a class with its schedules.
func (s *ClassService) GetClass(ctx context.Context, actor models.Actor, id string) (*models.ClassWithSchedules, error) {
	class, err := s.loadClass(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	schedules, err := s.schedules.ListByClass(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class schedules")
	}
	return &models.ClassWithSchedules{AcademicClass: *class, Schedules: schedules}, nil
}

// UpdateClass replaces the mutable attributes of a class.
func (s *ClassService) UpdateClass(ctx context.Context, actor models.Actor, id string, req models.UpdateClassRequest) (*models.AcademicClass, error) {
	if err := ensurePlanner(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	if err := validateClassDates(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	class, err := s.loadClass(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	class.SectionRef = req.SectionRef
	class.Capacity = req.Capacity
	class.StartDate = req.StartDate
	class.EndDate = req.EndDate
	class.StatusID = req.StatusID
	class.Observation = req.Observation
	if err := s.classes.Update(ctx, class); err != nil {
		return nil, notFoundOrInternal(err, "class not found", "failed to update class")
	}
	return class, nil
}

// DeleteClass removes a class and its schedules.
func (s *ClassService) DeleteClass(ctx context.Context, actor models.Actor, id string) (err error) {
	if err = ensurePlanner(actor); err != nil {
		return err
	}
	if _, err = s.loadClass(ctx, actor, id); err != nil {
		return err
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start class transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.schedules.DeleteByClassWithTx(ctx, tx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}
	if err = s.classes.DeleteWithTx(ctx, tx, id); err != nil {
		return notFoundOrInternal(err, "class not found", "failed to delete class")
	}
	if err = tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}
	return nil
}

// ListClasses returns the classes matching filter that actor may see.
func (s *ClassService) ListClasses(ctx context.Context, actor models.Actor, filter models.ClassFilter) ([]models.AcademicClass, error) {
	classes, err := s.classes.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list classes", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return s.scope.FilterClasses(ctx, actor, classes)
}

// ListCurrentSemester returns the visible classes of the current semester.
func (s *ClassService) ListCurrentSemester(ctx context.Context, actor models.Actor) ([]models.AcademicClass, error) {
	semesterID, err := s.semesters.CurrentID(ctx)
	if err != nil {
		return nil, err
	}
	return s.ListClasses(ctx, actor, models.ClassFilter{SemesterID: semesterID})
}

// ListBySemester returns the visible classes of a semester.
func (s *ClassService) ListBySemester(ctx context.Context, actor models.Actor, semesterID string) ([]models.AcademicClass, error) {
	return s.ListClasses(ctx, actor, models.ClassFilter{SemesterID: semesterID})
}

// ListByCourse returns the visible classes of a course.
func (s *ClassService) ListByCourse(ctx context.Context, actor models.Actor, courseID string) ([]models.AcademicClass, error) {
	return s.ListClasses(ctx, actor, models.ClassFilter{CourseID: courseID})
}

// ListWithoutTeacher returns current-semester classes that have no accepted assignment.
func (s *ClassService) ListWithoutTeacher(ctx context.Context, actor models.Actor) ([]models.AcademicClass, error) {
	semesterID, err := s.semesters.CurrentID(ctx)
	if err != nil {
		return nil, err
	}
	classes, err := s.classes.ListWithoutAcceptedTeacher(ctx, semesterID)
	if err != nil {
		s.logger.Error("failed to list classes without teacher", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return s.scope.FilterClasses(ctx, actor, classes)
}

// ListWithoutClassroom returns current-semester classes none of whose schedules has a classroom.
func (s *ClassService) ListWithoutClassroom(ctx context.Context, actor models.Actor) ([]models.AcademicClass, error) {
	semesterID, err := s.semesters.CurrentID(ctx)
	if err != nil {
		return nil, err
	}
	classes, err := s.classes.ListWithoutClassroom(ctx, semesterID)
	if err != nil {
		s.logger.Error("failed to list classes without classroom", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return s.scope.FilterClasses(ctx, actor, classes)
}

// AddSchedule attaches a schedule to a class and reports the classroom overlaps it creates.
func (s *ClassService) AddSchedule(ctx context.Context, actor models.Actor, classID string, req models.ScheduleRequest) (*models.ScheduleWithConflicts, error) {
	if err := ensurePlanner(actor); err != nil {
		return nil, err
	}
	if err := s.validateSchedule(req); err != nil {
		return nil, err
	}
	class, err := s.loadClass(ctx, actor, classID)
	if err != nil {
		return nil, err
	}

	schedule := scheduleFromRequest(req)
	schedule.ClassID = class.ID
	if err := s.schedules.Create(ctx, &schedule); err != nil {
		s.logger.Error("failed to create schedule", zap.String("class_id", class.ID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
	}

	found, err := s.conflictsFor(ctx, schedule, class.SemesterID)
	if err != nil {
		return nil, err
	}
	return &models.ScheduleWithConflicts{Schedule: schedule, Conflicts: found}, nil
}

// UpdateSchedule replaces a schedule's slot. The owning class never conflicts with itself.
func (s *ClassService) UpdateSchedule(ctx context.Context, actor models.Actor, scheduleID string, req models.ScheduleRequest) (*models.ScheduleWithConflicts, error) {
	if err := ensurePlanner(actor); err != nil {
		return nil, err
	}
	if err := s.validateSchedule(req); err != nil {
		return nil, err
	}
	existing, class, err := s.loadSchedule(ctx, actor, scheduleID)
	if err != nil {
		return nil, err
	}

	updated := scheduleFromRequest(req)
	updated.ID = existing.ID
	updated.ClassID = existing.ClassID
	updated.CreatedAt = existing.CreatedAt
	if err := s.schedules.Update(ctx, &updated); err != nil {
		return nil, notFoundOrInternal(err, "schedule not found", "failed to update schedule")
	}

	found, err := s.conflictsFor(ctx, updated, class.SemesterID)
	if err != nil {
		return nil, err
	}
	return &models.ScheduleWithConflicts{Schedule: updated, Conflicts: found}, nil
}

// DeleteSchedule removes a schedule.
func (s *ClassService) DeleteSchedule(ctx context.Context, actor models.Actor, scheduleID string) error {
	if err := ensurePlanner(actor); err != nil {
		return err
	}
	if _, _, err := s.loadSchedule(ctx, actor, scheduleID); err != nil {
		return err
	}
	if err := s.schedules.Delete(ctx, scheduleID); err != nil {
		return notFoundOrInternal(err, "schedule not found", "failed to delete schedule")
	}
	return nil
}

// ListSchedules returns the schedules of a visible class.
func (s *ClassService) ListSchedules(ctx context.Context, actor models.Actor, classID string) ([]models.ClassSchedule, error) {
	if _, err := s.loadClass(ctx, actor, classID); err != nil {
		return nil, err
	}
	schedules, err := s.schedules.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	return schedules, nil
}

func (s *ClassService) loadClass(ctx context.Context, actor models.Actor, id string) (*models.AcademicClass, error) {
	class, err := s.classes.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err, "class not found", "failed to load class")
	}
	visible, err := s.scope.Visible(ctx, actor, ScopeTarget{CourseID: class.CourseID, ClassID: class.ID})
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	return class, nil
}

func (s *ClassService) loadSchedule(ctx context.Context, actor models.Actor, id string) (*models.ClassSchedule, *models.AcademicClass, error) {
	schedule, err := s.schedules.FindByID(ctx, id)
	if err != nil {
		return nil, nil, notFoundOrInternal(err, "schedule not found", "failed to load schedule")
	}
	class, err := s.loadClass(ctx, actor, schedule.ClassID)
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrNotFound.Code) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, nil, err
	}
	return schedule, class, nil
}

func (s *ClassService) conflictsFor(ctx context.Context, schedule models.ClassSchedule, semesterID string) ([]models.ClassSchedule, error) {
	if schedule.ClassroomID == nil || *schedule.ClassroomID == "" {
		return []models.ClassSchedule{}, nil
	}
	return s.conflicts.FindConflicts(ctx, models.ConflictQuery{
		ClassroomID:    *schedule.ClassroomID,
		Day:            schedule.Day,
		StartTime:      schedule.StartTime,
		EndTime:        schedule.EndTime,
		ExcludeClassID: schedule.ClassID,
		SemesterID:     semesterID,
	})
}

func (s *ClassService) validateSchedule(req models.ScheduleRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	return validateWindow(req.Day, req.StartTime, req.EndTime)
}

func scheduleFromRequest(req models.ScheduleRequest) models.ClassSchedule {
	return models.ClassSchedule{
		ClassroomID: req.ClassroomID,
		Day:         req.Day,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		ModalityID:  req.ModalityID,
		Disability:  req.Disability,
	}
}

func ensurePlanner(actor models.Actor) error {
	if actor.IsAdmin() || actor.IsSection() {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "only administrators and section owners can change planning")
}
