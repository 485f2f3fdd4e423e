package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
	"github.com/ElCzar/secchub-backend-sub001/internal/repository"
	appErrors "github.com/ElCzar/secchub-backend-sub001/pkg/errors"
)

type teacherAssignmentRepo interface {
	FindByID(ctx context.Context, id string) (*models.TeacherAssignment, error)
	FindByTeacherAndClass(ctx context.Context, teacherID, classID string) (*models.TeacherAssignment, error)
	Exists(ctx context.Context, teacherID, classID string) (bool, error)
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.TeacherAssignment, error)
	Create(ctx context.Context, assignment *models.TeacherAssignment) error
	Update(ctx context.Context, assignment *models.TeacherAssignment) error
	UpdateDecision(ctx context.Context, id string, status models.AssignmentStatus, decision bool, observation *string) error
	Delete(ctx context.Context, id string) error
	DeleteByTeacherAndClass(ctx context.Context, teacherID, classID string) error
}

type classFinder interface {
	FindByID(ctx context.Context, id string) (*models.AcademicClass, error)
}

type teacherFinder interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type assignmentVisibility interface {
	Visible(ctx context.Context, actor models.Actor, target ScopeTarget) (bool, error)
	CanAccessClass(ctx context.Context, actor models.Actor, classID string) (bool, error)
	FilterAssignments(ctx context.Context, actor models.Actor, assignments []models.TeacherAssignment) ([]models.TeacherAssignment, error)
}

type extraHoursAdvisor interface {
	ExtraHoursWarning(ctx context.Context, teacherID string, proposedHours int) (*models.ExtraHoursWarning, error)
}

// TeacherAssignmentService owns the pending/accepted/rejected lifecycle of teacher-class assignments.
type TeacherAssignmentService struct {
	assignments teacherAssignmentRepo
	classes     classFinder
	teachers    teacherFinder
	semesters   currentSemesterResolver
	scope       assignmentVisibility
	workload    extraHoursAdvisor
	validator   *validator.Validate
	logger      *zap.Logger
	metrics     *MetricsService
}

// NewTeacherAssignmentService creates a service instance.
func NewTeacherAssignmentService(
	assignments teacherAssignmentRepo,
	classes classFinder,
	teachers teacherFinder,
	semesters currentSemesterResolver,
	scope assignmentVisibility,
	workload extraHoursAdvisor,
	validate *validator.Validate,
	logger *zap.Logger,
) *TeacherAssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherAssignmentService{
		assignments: assignments,
		classes:     classes,
		teachers:    teachers,
		semesters:   semesters,
		scope:       scope,
		workload:    workload,
		validator:   validate,
		logger:      logger,
	}
}

// Create inserts a pending assignment in the current semester. Going over the teacher's
// ceiling is reported through the result's warning and never blocks the insert.
func (s *TeacherAssignmentService) Create(ctx context.Context, actor models.Actor, req models.CreateAssignmentRequest) (*models.AssignmentResult, error) {
	if actor.IsTeacher() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "teachers cannot create assignments")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		return nil, notFoundOrInternal(err, "teacher not found", "failed to load teacher")
	}
	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		return nil, notFoundOrInternal(err, "class not found", "failed to load class")
	}
	visible, err := s.scope.CanAccessClass(ctx, actor, req.ClassID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	exists, err := s.assignments.Exists(ctx, req.TeacherID, req.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "teacher already assigned to class")
	}

	semesterID, err := s.semesters.CurrentID(ctx)
	if err != nil {
		return nil, err
	}

	assignment := &models.TeacherAssignment{
		TeacherID:          req.TeacherID,
		ClassID:            req.ClassID,
		SemesterID:         semesterID,
		WorkHours:          req.WorkHours,
		FullTimeExtraHours: req.FullTimeExtraHours,
		AdjunctExtraHours:  req.AdjunctExtraHours,
		Status:             models.AssignmentPending,
		Observation:        req.Observation,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "teacher already assigned to class")
		}
		s.logger.Error("failed to create assignment", zap.String("teacher_id", req.TeacherID), zap.String("class_id", req.ClassID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}

	result := &models.AssignmentResult{Assignment: *assignment}
	if s.workload != nil {
		warning, err := s.workload.ExtraHoursWarning(ctx, req.TeacherID, req.ProposedHours())
		if err != nil {
			s.logger.Warn("workload check skipped", zap.String("teacher_id", req.TeacherID), zap.Error(err))
		} else if warning.Exceeded() {
			result.Warning = warning
		}
	}
	return result, nil
}

// Update changes hours and observation. The status is left untouched.
func (s *TeacherAssignmentService) Update(ctx context.Context, actor models.Actor, id string, req models.UpdateAssignmentRequest) (*models.TeacherAssignment, error) {
	if actor.IsTeacher() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "teachers cannot edit assignments")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	assignment, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if req.WorkHours != nil {
		assignment.WorkHours = *req.WorkHours
	}
	if req.FullTimeExtraHours != nil {
		assignment.FullTimeExtraHours = *req.FullTimeExtraHours
	}
	if req.AdjunctExtraHours != nil {
		assignment.AdjunctExtraHours = *req.AdjunctExtraHours
	}
	if req.Observation != nil {
		assignment.Observation = req.Observation
	}
	if err := s.assignments.Update(ctx, assignment); err != nil {
		return nil, notFoundOrInternal(err, "assignment not found", "failed to update assignment")
	}
	return assignment, nil
}

// Decide accepts or rejects an assignment. Only the assigned teacher or an admin decides;
// decisions may be changed later.
func (s *TeacherAssignmentService) Decide(ctx context.Context, actor models.Actor, id string, accept bool, observation *string) (*models.TeacherAssignment, error) {
	if !actor.IsAdmin() && !actor.IsTeacher() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the assigned teacher or an admin can decide an assignment")
	}
	assignment, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	status := models.AssignmentRejected
	if accept {
		status = models.AssignmentAccepted
	}
	if err := s.assignments.UpdateDecision(ctx, id, status, accept, observation); err != nil {
		return nil, notFoundOrInternal(err, "assignment not found", "failed to record decision")
	}
	assignment.Status = status
	assignment.Decision = &accept
	if observation != nil {
		assignment.Observation = observation
	}
	s.metrics.RecordDecision(status)
	s.logger.Info("assignment decided", zap.String("assignment_id", id), zap.String("status", string(status)))
	return assignment, nil
}

// Accept marks an assignment as accepted.
func (s *TeacherAssignmentService) Accept(ctx context.Context, actor models.Actor, id string, observation *string) (*models.TeacherAssignment, error) {
	return s.Decide(ctx, actor, id, true, observation)
}

// Reject marks an assignment as rejected.
func (s *TeacherAssignmentService) Reject(ctx context.Context, actor models.Actor, id string, observation *string) (*models.TeacherAssignment, error) {
	return s.Decide(ctx, actor, id, false, observation)
}

// UpdateTeachingDates sets the window during which the teacher gives the class.
func (s *TeacherAssignmentService) UpdateTeachingDates(ctx context.Context, actor models.Actor, id string, req models.TeachingDatesRequest) (*models.TeacherAssignment, error) {
	if actor.IsTeacher() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "teachers cannot edit assignments")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "start and end dates are required")
	}
	if req.EndDate.Before(*req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date must not be before start date")
	}
	assignment, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	assignment.StartDate = req.StartDate
	assignment.EndDate = req.EndDate
	if err := s.assignments.Update(ctx, assignment); err != nil {
		return nil, notFoundOrInternal(err, "assignment not found", "failed to update teaching dates")
	}
	return assignment, nil
}

// Delete removes an assignment in any state.
func (s *TeacherAssignmentService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if actor.IsTeacher() {
		return appErrors.Clone(appErrors.ErrForbidden, "teachers cannot delete assignments")
	}
	if _, err := s.load(ctx, actor, id); err != nil {
		return err
	}
	if err := s.assignments.Delete(ctx, id); err != nil {
		return notFoundOrInternal(err, "assignment not found", "failed to delete assignment")
	}
	return nil
}

// DeleteByTeacherAndClass removes the assignment of a teacher-class pair.
func (s *TeacherAssignmentService) DeleteByTeacherAndClass(ctx context.Context, actor models.Actor, teacherID, classID string) error {
	if actor.IsTeacher() {
		return appErrors.Clone(appErrors.ErrForbidden, "teachers cannot delete assignments")
	}
	if _, err := s.GetByTeacherAndClass(ctx, actor, teacherID, classID); err != nil {
		return err
	}
	if err := s.assignments.DeleteByTeacherAndClass(ctx, teacherID, classID); err != nil {
		return notFoundOrInternal(err, "assignment not found", "failed to delete assignment")
	}
	return nil
}

// Get returns an assignment visible to actor.
func (s *TeacherAssignmentService) Get(ctx context.Context, actor models.Actor, id string) (*models.TeacherAssignment, error) {
	return s.load(ctx, actor, id)
}

// GetByTeacherAndClass returns the assignment of a teacher-class pair visible to actor.
func (s *TeacherAssignmentService) GetByTeacherAndClass(ctx context.Context, actor models.Actor, teacherID, classID string) (*models.TeacherAssignment, error) {
	assignment, err := s.assignments.FindByTeacherAndClass(ctx, teacherID, classID)
	if err != nil {
		return nil, notFoundOrInternal(err, "assignment not found", "failed to load assignment")
	}
	if err := s.ensureVisible(ctx, actor, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// ListForTeacher returns a teacher's assignments, optionally only in the current semester.
func (s *TeacherAssignmentService) ListForTeacher(ctx context.Context, actor models.Actor, teacherID string, currentOnly bool) ([]models.TeacherAssignment, error) {
	filter := models.AssignmentFilter{TeacherID: teacherID}
	if currentOnly {
		semesterID, err := s.semesters.CurrentID(ctx)
		if err != nil {
			return nil, err
		}
		filter.SemesterID = semesterID
	}
	return s.list(ctx, actor, filter)
}

// ListForClass returns the assignments of a class.
func (s *TeacherAssignmentService) ListForClass(ctx context.Context, actor models.Actor, classID string) ([]models.TeacherAssignment, error) {
	return s.list(ctx, actor, models.AssignmentFilter{ClassID: classID})
}

// ListByStatus returns a teacher's assignments in the given state.
func (s *TeacherAssignmentService) ListByStatus(ctx context.Context, actor models.Actor, teacherID string, status models.AssignmentStatus) ([]models.TeacherAssignment, error) {
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown assignment status")
	}
	return s.list(ctx, actor, models.AssignmentFilter{TeacherID: teacherID, Status: status})
}

// ListCurrentSemester returns every visible assignment in the current semester.
func (s *TeacherAssignmentService) ListCurrentSemester(ctx context.Context, actor models.Actor) ([]models.TeacherAssignment, error) {
	semesterID, err := s.semesters.CurrentID(ctx)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, actor, models.AssignmentFilter{SemesterID: semesterID})
}

// ListPending returns visible assignments of the current semester awaiting a decision.
func (s *TeacherAssignmentService) ListPending(ctx context.Context, actor models.Actor) ([]models.TeacherAssignment, error) {
	semesterID, err := s.semesters.CurrentID(ctx)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, actor, models.AssignmentFilter{SemesterID: semesterID, Status: models.AssignmentPending})
}

func (s *TeacherAssignmentService) list(ctx context.Context, actor models.Actor, filter models.AssignmentFilter) ([]models.TeacherAssignment, error) {
	if actor.IsTeacher() {
		if filter.TeacherID != "" && filter.TeacherID != actor.TeacherID {
			return []models.TeacherAssignment{}, nil
		}
		filter.TeacherID = actor.TeacherID
	}
	assignments, err := s.assignments.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list assignments", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return s.scope.FilterAssignments(ctx, actor, assignments)
}

func (s *TeacherAssignmentService) load(ctx context.Context, actor models.Actor, id string) (*models.TeacherAssignment, error) {
	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOrInternal(err, "assignment not found", "failed to load assignment")
	}
	if err := s.ensureVisible(ctx, actor, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *TeacherAssignmentService) ensureVisible(ctx context.Context, actor models.Actor, assignment *models.TeacherAssignment) error {
	target := ScopeTarget{ClassID: assignment.ClassID}
	if actor.IsTeacher() {
		target = ScopeTarget{TeacherID: assignment.TeacherID}
	}
	visible, err := s.scope.Visible(ctx, actor, target)
	if err != nil {
		return err
	}
	if !visible {
		return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	return nil
}

func notFoundOrInternal(err error, notFoundMsg, internalMsg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFoundMsg)
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internalMsg)
}

// WithMetrics attaches planning counters. A nil service disables them.
func (s *TeacherAssignmentService) WithMetrics(m *MetricsService) *TeacherAssignmentService {
	s.metrics = m
	return s
}
