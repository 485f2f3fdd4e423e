package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
	appErrors "github.com/ElCzar/secchub-backend-sub001/pkg/errors"
)

type classroomScheduleReader interface {
	ListByClassroomAndDay(ctx context.Context, classroomID string, day models.Weekday, semesterID string) ([]models.ClassSchedule, error)
	ListRoomBookedBySemester(ctx context.Context, semesterID string) ([]models.ClassSchedule, error)
	ListTeacherBookedBySemester(ctx context.Context, semesterID string) ([]models.TeacherSchedule, error)
}

type classVisibility interface {
	CanAccessClass(ctx context.Context, actor models.Actor, classID string) (bool, error)
}

// ConflictService detects classroom and teacher double bookings. Overlaps are reported, never raised.
type ConflictService struct {
	schedules classroomScheduleReader
	scope     classVisibility
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewConflictService constructs a ConflictService.
func NewConflictService(schedules classroomScheduleReader, scope classVisibility, logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{schedules: schedules, scope: scope, logger: logger}
}

// FindConflicts returns every schedule in the query's classroom and day that overlaps the
// proposed window, skipping schedules of ExcludeClassID. Remote slots never conflict.
func (s *ConflictService) FindConflicts(ctx context.Context, q models.ConflictQuery) ([]models.ClassSchedule, error) {
	return s.collect(ctx, q, false)
}

// HasConflict reports whether FindConflicts would return at least one schedule.
func (s *ConflictService) HasConflict(ctx context.Context, q models.ConflictQuery) (bool, error) {
	found, err := s.collect(ctx, q, true)
	if err != nil {
		return false, err
	}
	return len(found) > 0, nil
}

func (s *ConflictService) collect(ctx context.Context, q models.ConflictQuery, firstOnly bool) ([]models.ClassSchedule, error) {
	if err := validateWindow(q.Day, q.StartTime, q.EndTime); err != nil {
		return nil, err
	}
	if q.ClassroomID == "" {
		return []models.ClassSchedule{}, nil
	}

	existing, err := s.schedules.ListByClassroomAndDay(ctx, q.ClassroomID, q.Day, q.SemesterID)
	if err != nil {
		s.logger.Error("failed to load classroom schedules", zap.String("classroom_id", q.ClassroomID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check schedule conflicts")
	}

	conflicts := make([]models.ClassSchedule, 0)
	for _, schedule := range existing {
		if q.ExcludeClassID != "" && schedule.ClassID == q.ExcludeClassID {
			continue
		}
		if Overlaps(q.StartTime, q.EndTime, schedule.StartTime, schedule.EndTime) {
			conflicts = append(conflicts, schedule)
			if firstOnly {
				break
			}
		}
	}
	if !firstOnly {
		s.metrics.RecordConflicts(len(conflicts))
	}
	return conflicts, nil
}

// ClassroomConflicts groups the in-person schedules of a semester into clusters whose
// members all overlap one another. Only clusters touching a class visible to actor are returned.
func (s *ConflictService) ClassroomConflicts(ctx context.Context, actor models.Actor, semesterID string) ([]models.ClassroomConflict, error) {
	schedules, err := s.schedules.ListRoomBookedBySemester(ctx, semesterID)
	if err != nil {
		s.logger.Error("failed to load semester schedules", zap.String("semester_id", semesterID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom conflicts")
	}

	type roomDay struct {
		room string
		day  models.Weekday
	}
	groups := make(map[roomDay][]models.ClassSchedule)
	var order []roomDay
	for _, schedule := range schedules {
		if schedule.ClassroomID == nil || *schedule.ClassroomID == "" {
			continue
		}
		key := roomDay{room: *schedule.ClassroomID, day: schedule.Day}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], schedule)
	}

	result := make([]models.ClassroomConflict, 0)
	for _, key := range order {
		for _, cluster := range overlapClusters(groups[key]) {
			visible, err := s.anyVisible(ctx, actor, cluster)
			if err != nil {
				return nil, err
			}
			if !visible {
				continue
			}
			result = append(result, summarizeCluster(key.room, key.day, cluster))
		}
	}
	return result, nil
}

// TeacherConflicts groups the schedules each teacher is committed to through accepted
// assignments into clusters of mutual overlaps. Only clusters touching a class visible to
// actor are returned.
func (s *ConflictService) TeacherConflicts(ctx context.Context, actor models.Actor, semesterID string) ([]models.TeacherConflict, error) {
	booked, err := s.schedules.ListTeacherBookedBySemester(ctx, semesterID)
	if err != nil {
		s.logger.Error("failed to load teacher schedules", zap.String("semester_id", semesterID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher conflicts")
	}

	type teacherDay struct {
		teacher string
		day     models.Weekday
	}
	groups := make(map[teacherDay][]models.ClassSchedule)
	var order []teacherDay
	for _, entry := range booked {
		key := teacherDay{teacher: entry.TeacherID, day: entry.Day}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], entry.ClassSchedule)
	}

	result := make([]models.TeacherConflict, 0)
	for _, key := range order {
		for _, cluster := range overlapClusters(groups[key]) {
			visible, err := s.anyVisible(ctx, actor, cluster)
			if err != nil {
				return nil, err
			}
			if !visible {
				continue
			}
			span := spanOf(cluster)
			result = append(result, models.TeacherConflict{
				TeacherID:   key.teacher,
				Day:         key.day,
				ClassIDs:    span.classIDs,
				ScheduleIDs: span.scheduleIDs,
				StartTime:   span.start,
				EndTime:     span.end,
			})
		}
	}
	s.metrics.RecordConflicts(len(result))
	return result, nil
}

func (s *ConflictService) anyVisible(ctx context.Context, actor models.Actor, cluster []models.ClassSchedule) (bool, error) {
	if actor.IsAdmin() || s.scope == nil {
		return true, nil
	}
	for _, schedule := range cluster {
		ok, err := s.scope.CanAccessClass(ctx, actor, schedule.ClassID)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// overlapClusters returns groups of at least two schedules in which every member overlaps
// every other member. Each overlapping pair seeds at most one cluster.
func overlapClusters(schedules []models.ClassSchedule) [][]models.ClassSchedule {
	sorted := make([]models.ClassSchedule, len(schedules))
	copy(sorted, schedules)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartTime < sorted[j].StartTime })

	covered := make(map[[2]int]bool)
	pair := func(a, b int) [2]int {
		if a > b {
			a, b = b, a
		}
		return [2]int{a, b}
	}

	var clusters [][]models.ClassSchedule
	for seed := range sorted {
		members := []int{seed}
		for j := range sorted {
			if j == seed || covered[pair(seed, j)] {
				continue
			}
			fits := true
			for _, m := range members {
				if !SchedulesOverlap(sorted[m], sorted[j]) {
					fits = false
					break
				}
			}
			if !fits {
				continue
			}
			for _, m := range members {
				covered[pair(m, j)] = true
			}
			members = append(members, j)
		}
		if len(members) < 2 {
			continue
		}
		cluster := make([]models.ClassSchedule, 0, len(members))
		for _, m := range members {
			cluster = append(cluster, sorted[m])
		}
		clusters = append(clusters, cluster)
	}
	return clusters
}

type clusterSpan struct {
	classIDs    []string
	scheduleIDs []string
	start       models.ClockTime
	end         models.ClockTime
}

// spanOf collects the distinct classes of a non-empty cluster and the window it covers.
func spanOf(cluster []models.ClassSchedule) clusterSpan {
	span := clusterSpan{start: cluster[0].StartTime, end: cluster[0].EndTime}
	seen := make(map[string]bool)
	for _, schedule := range cluster {
		span.scheduleIDs = append(span.scheduleIDs, schedule.ID)
		if !seen[schedule.ClassID] {
			seen[schedule.ClassID] = true
			span.classIDs = append(span.classIDs, schedule.ClassID)
		}
		if schedule.StartTime < span.start {
			span.start = schedule.StartTime
		}
		if schedule.EndTime > span.end {
			span.end = schedule.EndTime
		}
	}
	return span
}

func summarizeCluster(classroomID string, day models.Weekday, cluster []models.ClassSchedule) models.ClassroomConflict {
	span := spanOf(cluster)
	return models.ClassroomConflict{
		ClassroomID: classroomID,
		Day:         day,
		ClassIDs:    span.classIDs,
		ScheduleIDs: span.scheduleIDs,
		StartTime:   span.start,
		EndTime:     span.end,
	}
}

func validateWindow(day models.Weekday, start, end models.ClockTime) error {
	if !day.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "invalid day")
	}
	if !start.Valid() || !end.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "invalid time")
	}
	if start >= end {
		return appErrors.Clone(appErrors.ErrValidation, "start time must be before end time")
	}
	return nil
}

// WithMetrics attaches planning counters. A nil service disables them.
func (s *ConflictService) WithMetrics(m *MetricsService) *ConflictService {
	s.metrics = m
	return s
}
