package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
	appErrors "github.com/ElCzar/secchub-backend-sub001/pkg/errors"
)

const defaultScopeConcurrency = 8

type courseSectionLookup interface {
	SectionIDForCourse(ctx context.Context, courseID string) (string, error)
}

type classSectionLookup interface {
	SectionIDForClass(ctx context.Context, classID string) (string, error)
}

// ScopeTarget identifies what an actor wants to see. Empty fields are unknown.
type ScopeTarget struct {
	CourseID  string
	ClassID   string
	TeacherID string
}

// ScopeService decides which planning records an actor may see or mutate.
type ScopeService struct {
	courses     courseSectionLookup
	classes     classSectionLookup
	concurrency int
	logger      *zap.Logger
}

// NewScopeService constructs a ScopeService. concurrency bounds per-item lookups while filtering.
func NewScopeService(courses courseSectionLookup, classes classSectionLookup, concurrency int, logger *zap.Logger) *ScopeService {
	if concurrency <= 0 {
		concurrency = defaultScopeConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScopeService{courses: courses, classes: classes, concurrency: concurrency, logger: logger}
}

// Visible reports whether target is within actor's scope.
//
// Admins see everything. Section owners see what resolves to their section through the
// class's course. Teachers see records bound to their own teacher id and may browse classes.
func (s *ScopeService) Visible(ctx context.Context, actor models.Actor, target ScopeTarget) (bool, error) {
	switch actor.Kind {
	case models.ActorAdmin:
		return true, nil
	case models.ActorSection:
		if actor.SectionID == "" {
			return false, nil
		}
		sectionID, err := s.sectionFor(ctx, target)
		if err != nil {
			return false, err
		}
		return sectionID == actor.SectionID, nil
	case models.ActorTeacher:
		if target.TeacherID != "" {
			return actor.TeacherID != "" && target.TeacherID == actor.TeacherID, nil
		}
		return target.ClassID != "" || target.CourseID != "", nil
	default:
		return false, nil
	}
}

// CanAccessClass reports whether classID is within actor's scope.
func (s *ScopeService) CanAccessClass(ctx context.Context, actor models.Actor, classID string) (bool, error) {
	return s.Visible(ctx, actor, ScopeTarget{ClassID: classID})
}

func (s *ScopeService) sectionFor(ctx context.Context, target ScopeTarget) (string, error) {
	var (
		sectionID string
		err       error
	)
	switch {
	case target.CourseID != "":
		sectionID, err = s.courses.SectionIDForCourse(ctx, target.CourseID)
	case target.ClassID != "":
		sectionID, err = s.classes.SectionIDForClass(ctx, target.ClassID)
	default:
		return "", nil
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		s.logger.Error("failed to resolve section", zap.String("course_id", target.CourseID), zap.String("class_id", target.ClassID), zap.Error(err))
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve section scope")
	}
	return sectionID, nil
}

// FilterClasses keeps the classes visible to actor, preserving order.
func (s *ScopeService) FilterClasses(ctx context.Context, actor models.Actor, classes []models.AcademicClass) ([]models.AcademicClass, error) {
	return filterVisible(ctx, s, actor, classes, func(c models.AcademicClass) ScopeTarget {
		return ScopeTarget{CourseID: c.CourseID, ClassID: c.ID}
	})
}

// FilterClassesWithSchedules keeps the nested classes visible to actor, preserving order.
func (s *ScopeService) FilterClassesWithSchedules(ctx context.Context, actor models.Actor, classes []models.ClassWithSchedules) ([]models.ClassWithSchedules, error) {
	return filterVisible(ctx, s, actor, classes, func(c models.ClassWithSchedules) ScopeTarget {
		return ScopeTarget{CourseID: c.CourseID, ClassID: c.ID}
	})
}

// FilterAssignments keeps the assignments visible to actor, preserving order.
func (s *ScopeService) FilterAssignments(ctx context.Context, actor models.Actor, assignments []models.TeacherAssignment) ([]models.TeacherAssignment, error) {
	return filterVisible(ctx, s, actor, assignments, func(a models.TeacherAssignment) ScopeTarget {
		if actor.IsTeacher() {
			return ScopeTarget{TeacherID: a.TeacherID}
		}
		return ScopeTarget{ClassID: a.ClassID}
	})
}

// FilterSchedules keeps the schedules whose class is visible to actor, preserving order.
func (s *ScopeService) FilterSchedules(ctx context.Context, actor models.Actor, schedules []models.ClassSchedule) ([]models.ClassSchedule, error) {
	return filterVisible(ctx, s, actor, schedules, func(sc models.ClassSchedule) ScopeTarget {
		return ScopeTarget{ClassID: sc.ClassID}
	})
}

func filterVisible[T any](ctx context.Context, s *ScopeService, actor models.Actor, items []T, target func(T) ScopeTarget) ([]T, error) {
	if actor.IsAdmin() {
		return items, nil
	}
	keep := make([]bool, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range items {
		i := i
		g.Go(func() error {
			ok, err := s.Visible(gctx, actor, target(items[i]))
			if err != nil {
				return err
			}
			keep[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	filtered := make([]T, 0, len(items))
	for i, item := range items {
		if keep[i] {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}
