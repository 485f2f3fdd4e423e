package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
	appErrors "github.com/ElCzar/secchub-backend-sub001/pkg/errors"
)

type acceptedHoursReader interface {
	SumAcceptedHours(ctx context.Context, teacherID, semesterID string) (int, error)
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.TeacherAssignment, error)
}

type teacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Teacher, error)
	ListLoads(ctx context.Context, semesterID string) ([]models.TeacherLoad, error)
}

type currentSemesterResolver interface {
	CurrentID(ctx context.Context) (string, error)
}

type assignmentScope interface {
	CanAccessClass(ctx context.Context, actor models.Actor, classID string) (bool, error)
	FilterAssignments(ctx context.Context, actor models.Actor, assignments []models.TeacherAssignment) ([]models.TeacherAssignment, error)
}

type workloadRenderer interface {
	RenderWorkload(reports []models.WorkloadReport, format models.ReportFormat, generatedAt time.Time) (*ExportedFile, error)
}

// WorkloadService compares accepted hours in the current semester with each teacher's ceiling.
// Totals are recomputed from storage on every call.
type WorkloadService struct {
	assignments acceptedHoursReader
	teachers    teacherReader
	classes     classFinder
	semesters   currentSemesterResolver
	scope       assignmentScope
	exporter    workloadRenderer
	logger      *zap.Logger
}

// NewWorkloadService constructs a WorkloadService.
func NewWorkloadService(assignments acceptedHoursReader, teachers teacherReader, classes classFinder, semesters currentSemesterResolver, scope assignmentScope, exporter workloadRenderer, logger *zap.Logger) *WorkloadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkloadService{
		assignments: assignments,
		teachers:    teachers,
		classes:     classes,
		semesters:   semesters,
		scope:       scope,
		exporter:    exporter,
		logger:      logger,
	}
}

// AssignedHours sums work and extra hours of the teacher's accepted assignments.
func (s *WorkloadService) AssignedHours(ctx context.Context, teacherID string) (int, error) {
	_, assigned, err := s.load(ctx, teacherID)
	return assigned, err
}

// ExceedsCapacity reports whether assigned hours reached the teacher's ceiling.
func (s *WorkloadService) ExceedsCapacity(ctx context.Context, teacherID string) (bool, error) {
	teacher, assigned, err := s.load(ctx, teacherID)
	if err != nil {
		return false, err
	}
	return assigned >= teacher.MaxHours, nil
}

// AvailableForExtraHours reports whether the teacher still has room below the ceiling.
func (s *WorkloadService) AvailableForExtraHours(ctx context.Context, teacherID string) (bool, error) {
	teacher, assigned, err := s.load(ctx, teacherID)
	if err != nil {
		return false, err
	}
	return teacher.MaxHours > assigned, nil
}

// ExtraHoursWarning describes what adding proposedHours would do to the teacher's load.
func (s *WorkloadService) ExtraHoursWarning(ctx context.Context, teacherID string, proposedHours int) (*models.ExtraHoursWarning, error) {
	if proposedHours < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "proposed hours must not be negative")
	}
	teacher, assigned, err := s.load(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return buildWarning(teacher, assigned, proposedHours), nil
}

// Report summarises a teacher's workload.
func (s *WorkloadService) Report(ctx context.Context, teacherID string) (*models.WorkloadReport, error) {
	teacher, assigned, err := s.load(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	report := buildReport(teacher, assigned)
	return &report, nil
}

// SemesterReport summarises every teacher holding a visible assignment in the current semester.
func (s *WorkloadService) SemesterReport(ctx context.Context, actor models.Actor) ([]models.WorkloadReport, error) {
	semesterID, err := s.semesters.CurrentID(ctx)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignments.List(ctx, models.AssignmentFilter{SemesterID: semesterID})
	if err != nil {
		s.logger.Error("failed to list semester assignments", zap.String("semester_id", semesterID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build workload report")
	}
	if s.scope != nil {
		if assignments, err = s.scope.FilterAssignments(ctx, actor, assignments); err != nil {
			return nil, err
		}
	}

	seen := make(map[string]bool)
	var teacherIDs []string
	for _, assignment := range assignments {
		if !seen[assignment.TeacherID] {
			seen[assignment.TeacherID] = true
			teacherIDs = append(teacherIDs, assignment.TeacherID)
		}
	}
	teachers, err := s.teachers.ListByIDs(ctx, teacherIDs)
	if err != nil {
		s.logger.Error("failed to load teachers for report", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build workload report")
	}

	reports := make([]models.WorkloadReport, 0, len(teachers))
	for i := range teachers {
		assigned, err := s.assignments.SumAcceptedHours(ctx, teachers[i].ID, semesterID)
		if err != nil {
			s.logger.Error("failed to sum accepted hours", zap.String("teacher_id", teachers[i].ID), zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build workload report")
		}
		reports = append(reports, buildReport(&teachers[i], assigned))
	}
	return reports, nil
}

// AvailableTeachers lists the teachers not yet assigned to classID whose free hours in the
// current semester cover requiredHours, with their workload.
func (s *WorkloadService) AvailableTeachers(ctx context.Context, actor models.Actor, classID string, requiredHours int) ([]models.WorkloadReport, error) {
	if requiredHours < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "required hours must not be negative")
	}
	if _, err := s.classes.FindByID(ctx, classID); err != nil {
		return nil, notFoundOrInternal(err, "class not found", "failed to load class")
	}
	if s.scope != nil {
		ok, err := s.scope.CanAccessClass(ctx, actor, classID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
	}
	semesterID, err := s.semesters.CurrentID(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.assignments.List(ctx, models.AssignmentFilter{ClassID: classID})
	if err != nil {
		s.logger.Error("failed to list class assignments", zap.String("class_id", classID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to find available teachers")
	}
	assigned := make(map[string]bool, len(existing))
	for _, assignment := range existing {
		assigned[assignment.TeacherID] = true
	}

	loads, err := s.teachers.ListLoads(ctx, semesterID)
	if err != nil {
		s.logger.Error("failed to load teacher workloads", zap.String("semester_id", semesterID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to find available teachers")
	}
	available := make([]models.WorkloadReport, 0)
	for i := range loads {
		load := loads[i]
		if assigned[load.ID] || load.MaxHours-load.AssignedHours < requiredHours {
			continue
		}
		available = append(available, buildReport(&load.Teacher, load.AssignedHours))
	}
	return available, nil
}

// Export renders the semester report as CSV or PDF.
func (s *WorkloadService) Export(ctx context.Context, actor models.Actor, format models.ReportFormat) (*ExportedFile, error) {
	if format != models.ReportFormatCSV && format != models.ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	reports, err := s.SemesterReport(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.exporter.RenderWorkload(reports, format, time.Now())
}

func (s *WorkloadService) load(ctx context.Context, teacherID string) (*models.Teacher, int, error) {
	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	semesterID, err := s.semesters.CurrentID(ctx)
	if err != nil {
		return nil, 0, err
	}
	assigned, err := s.assignments.SumAcceptedHours(ctx, teacherID, semesterID)
	if err != nil {
		s.logger.Error("failed to sum accepted hours", zap.String("teacher_id", teacherID), zap.Error(err))
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute workload")
	}
	return teacher, assigned, nil
}

func buildWarning(teacher *models.Teacher, assigned, proposed int) *models.ExtraHoursWarning {
	excess := assigned + proposed - teacher.MaxHours
	if excess < 0 {
		excess = 0
	}
	return &models.ExtraHoursWarning{
		TeacherID:       teacher.ID,
		CurrentAssigned: assigned,
		MaxHours:        teacher.MaxHours,
		ProposedHours:   proposed,
		ExcessHours:     excess,
	}
}

func buildReport(teacher *models.Teacher, assigned int) models.WorkloadReport {
	available := teacher.MaxHours - assigned
	if available < 0 {
		available = 0
	}
	return models.WorkloadReport{
		TeacherID:              teacher.ID,
		AssignedHours:          assigned,
		MaxHours:               teacher.MaxHours,
		AvailableHours:         available,
		ExceedsCapacity:        assigned >= teacher.MaxHours,
		AvailableForExtraHours: teacher.MaxHours > assigned,
	}
}
