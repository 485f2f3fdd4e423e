package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
	appErrors "github.com/ElCzar/secchub-backend-sub001/pkg/errors"
)

type duplicationClassRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.AcademicClass, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.AcademicClass, error)
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, class *models.AcademicClass) error
}

type duplicationScheduleRepository interface {
	ListByClassIDs(ctx context.Context, classIDs []string) ([]models.ClassSchedule, error)
	BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, schedules []models.ClassSchedule) error
}

type semesterLookup interface {
	Get(ctx context.Context, id string) (*models.Semester, error)
	CurrentID(ctx context.Context) (string, error)
}

type duplicationScope interface {
	FilterClasses(ctx context.Context, actor models.Actor, classes []models.AcademicClass) ([]models.AcademicClass, error)
}

// DuplicationService copies a semester's planning into another semester.
// Every copy runs in a single transaction so a failure leaves the target untouched.
type DuplicationService struct {
	classes   duplicationClassRepository
	schedules duplicationScheduleRepository
	semesters semesterLookup
	scope     duplicationScope
	tx        txProvider
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewDuplicationService builds a DuplicationService.
func NewDuplicationService(
	classes duplicationClassRepository,
	schedules duplicationScheduleRepository,
	semesters semesterLookup,
	scope duplicationScope,
	tx txProvider,
	logger *zap.Logger,
) *DuplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DuplicationService{
		classes:   classes,
		schedules: schedules,
		semesters: semesters,
		scope:     scope,
		tx:        tx,
		logger:    logger,
	}
}

// Preview lists the classes of a semester, with schedules, that actor would copy.
func (s *DuplicationService) Preview(ctx context.Context, actor models.Actor, semesterID string) ([]models.ClassWithSchedules, error) {
	if _, err := s.semesters.Get(ctx, semesterID); err != nil {
		return nil, err
	}
	classes, err := s.classes.List(ctx, models.ClassFilter{SemesterID: semesterID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semester classes")
	}
	visible, err := s.scope.FilterClasses(ctx, actor, classes)
	if err != nil {
		return nil, err
	}
	return s.attachSchedules(ctx, visible)
}

// DuplicateAll copies every visible class of sourceID, with its schedules, into targetID.
func (s *DuplicationService) DuplicateAll(ctx context.Context, actor models.Actor, sourceID, targetID string) ([]models.ClassWithSchedules, error) {
	if err := ensurePlanner(actor); err != nil {
		return nil, err
	}
	if sourceID == "" || targetID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "source and target semesters are required")
	}
	if _, err := s.semesters.Get(ctx, targetID); err != nil {
		return nil, err
	}
	source, err := s.Preview(ctx, actor, sourceID)
	if err != nil {
		return nil, err
	}
	return s.copyInto(ctx, source, targetID)
}

// ApplyToCurrent copies every visible class of sourceID into the current semester.
func (s *DuplicationService) ApplyToCurrent(ctx context.Context, actor models.Actor, sourceID string) ([]models.ClassWithSchedules, error) {
	targetID, err := s.semesters.CurrentID(ctx)
	if err != nil {
		return nil, err
	}
	return s.DuplicateAll(ctx, actor, sourceID, targetID)
}

// DuplicateSelected copies the listed classes of sourceID into the current semester and
// returns how many were copied. Each id must exist, belong to sourceID and be visible to actor.
func (s *DuplicationService) DuplicateSelected(ctx context.Context, actor models.Actor, sourceID string, classIDs []string) (int, error) {
	if err := ensurePlanner(actor); err != nil {
		return 0, err
	}
	ids := uniqueStrings(classIDs)
	if len(ids) == 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "class_ids must not be empty")
	}
	if _, err := s.semesters.Get(ctx, sourceID); err != nil {
		return 0, err
	}
	targetID, err := s.semesters.CurrentID(ctx)
	if err != nil {
		return 0, err
	}

	classes, err := s.classes.ListByIDs(ctx, ids)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classes")
	}
	if len(classes) != len(ids) {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	for _, class := range classes {
		if class.SemesterID != sourceID {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "class not found in source semester")
		}
	}
	visible, err := s.scope.FilterClasses(ctx, actor, classes)
	if err != nil {
		return 0, err
	}
	if len(visible) != len(classes) {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	source, err := s.attachSchedules(ctx, visible)
	if err != nil {
		return 0, err
	}
	copied, err := s.copyInto(ctx, source, targetID)
	if err != nil {
		return 0, err
	}
	return len(copied), nil
}

func (s *DuplicationService) attachSchedules(ctx context.Context, classes []models.AcademicClass) ([]models.ClassWithSchedules, error) {
	result := make([]models.ClassWithSchedules, 0, len(classes))
	if len(classes) == 0 {
		return result, nil
	}
	ids := make([]string, 0, len(classes))
	for _, class := range classes {
		ids = append(ids, class.ID)
	}
	schedules, err := s.schedules.ListByClassIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class schedules")
	}
	byClass := make(map[string][]models.ClassSchedule, len(classes))
	for _, schedule := range schedules {
		byClass[schedule.ClassID] = append(byClass[schedule.ClassID], schedule)
	}
	for _, class := range classes {
		slots := byClass[class.ID]
		if slots == nil {
			slots = []models.ClassSchedule{}
		}
		result = append(result, models.ClassWithSchedules{AcademicClass: class, Schedules: slots})
	}
	return result, nil
}

func (s *DuplicationService) copyInto(ctx context.Context, source []models.ClassWithSchedules, targetSemesterID string) (copied []models.ClassWithSchedules, err error) {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start duplication transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	copied = make([]models.ClassWithSchedules, 0, len(source))
	for _, sourceClass := range source {
		class := sourceClass.AcademicClass
		class.ID = ""
		class.SemesterID = targetSemesterID
		class.CreatedAt, class.UpdatedAt = time.Time{}, time.Time{}
		if err = s.classes.CreateWithTx(ctx, tx, &class); err != nil {
			s.logger.Error("failed to duplicate class", zap.String("source_class_id", sourceClass.ID), zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to duplicate planning")
		}

		schedules := make([]models.ClassSchedule, 0, len(sourceClass.Schedules))
		for _, slot := range sourceClass.Schedules {
			slot.ID = ""
			slot.ClassID = class.ID
			slot.CreatedAt, slot.UpdatedAt = time.Time{}, time.Time{}
			schedules = append(schedules, slot)
		}
		if err = s.schedules.BulkCreateWithTx(ctx, tx, schedules); err != nil {
			s.logger.Error("failed to duplicate schedules", zap.String("source_class_id", sourceClass.ID), zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to duplicate planning")
		}
		copied = append(copied, models.ClassWithSchedules{AcademicClass: class, Schedules: schedules})
	}

	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to duplicate planning")
	}
	s.metrics.RecordDuplication(len(copied))
	s.logger.Info("planning duplicated", zap.String("target_semester_id", targetSemesterID), zap.Int("classes", len(copied)))
	return copied, nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

// WithMetrics attaches planning counters. A nil service disables them.
func (s *DuplicationService) WithMetrics(m *MetricsService) *DuplicationService {
	s.metrics = m
	return s
}
