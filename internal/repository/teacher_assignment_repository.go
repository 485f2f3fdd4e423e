package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
)

const assignmentColumns = "id, teacher_id, class_id, semester_id, work_hours, full_time_extra_hours, adjunct_extra_hours, status, decision, observation, start_date, end_date, created_at, updated_at"

// TeacherAssignmentRepository persists teacher-class assignments.
type TeacherAssignmentRepository struct {
	db *sqlx.DB
}

// NewTeacherAssignmentRepository constructs the repository.
func NewTeacherAssignmentRepository(db *sqlx.DB) *TeacherAssignmentRepository {
	return &TeacherAssignmentRepository{db: db}
}

// FindByID loads an assignment.
func (r *TeacherAssignmentRepository) FindByID(ctx context.Context, id string) (*models.TeacherAssignment, error) {
	query := fmt.Sprintf("SELECT %s FROM teacher_assignments WHERE id = $1", assignmentColumns)
	var assignment models.TeacherAssignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// FindByTeacherAndClass loads the assignment for a teacher-class pair.
func (r *TeacherAssignmentRepository) FindByTeacherAndClass(ctx context.Context, teacherID, classID string) (*models.TeacherAssignment, error) {
	query := fmt.Sprintf("SELECT %s FROM teacher_assignments WHERE teacher_id = $1 AND class_id = $2", assignmentColumns)
	var assignment models.TeacherAssignment
	if err := r.db.GetContext(ctx, &assignment, query, teacherID, classID); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Exists checks if the teacher-class pair already has an assignment.
func (r *TeacherAssignmentRepository) Exists(ctx context.Context, teacherID, classID string) (bool, error) {
	const query = `SELECT 1 FROM teacher_assignments WHERE teacher_id = $1 AND class_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, teacherID, classID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teacher assignment: %w", err)
	}
	return true, nil
}

// List returns assignments matching the filter.
func (r *TeacherAssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.TeacherAssignment, error) {
	base := "FROM teacher_assignments WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.SemesterID != "" {
		conditions = append(conditions, fmt.Sprintf("semester_id = $%d", len(args)+1))
		args = append(args, filter.SemesterID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at ASC, id ASC", assignmentColumns, base)
	var assignments []models.TeacherAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("list teacher assignments: %w", err)
	}
	return assignments, nil
}

// Create inserts a new assignment. A concurrent insert of the same pair yields ErrDuplicate.
func (r *TeacherAssignmentRepository) Create(ctx context.Context, assignment *models.TeacherAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = now
	}
	assignment.UpdatedAt = now

	const query = `INSERT INTO teacher_assignments (id, teacher_id, class_id, semester_id, work_hours, full_time_extra_hours, adjunct_extra_hours, status, decision, observation, start_date, end_date, created_at, updated_at)
		VALUES (:id, :teacher_id, :class_id, :semester_id, :work_hours, :full_time_extra_hours, :adjunct_extra_hours, :status, :decision, :observation, :start_date, :end_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create teacher assignment: %w", err)
	}
	return nil
}

// Update persists hours, observation and teaching dates of an assignment.
func (r *TeacherAssignmentRepository) Update(ctx context.Context, assignment *models.TeacherAssignment) error {
	assignment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teacher_assignments SET work_hours = :work_hours, full_time_extra_hours = :full_time_extra_hours, adjunct_extra_hours = :adjunct_extra_hours, observation = :observation, start_date = :start_date, end_date = :end_date, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, assignment)
	if err != nil {
		return fmt.Errorf("update teacher assignment: %w", err)
	}
	return expectAffected(result, "update teacher assignment")
}

// UpdateDecision records an accept or reject decision.
func (r *TeacherAssignmentRepository) UpdateDecision(ctx context.Context, id string, status models.AssignmentStatus, decision bool, observation *string) error {
	const query = `UPDATE teacher_assignments SET status = $2, decision = $3, observation = COALESCE($4, observation), updated_at = $5 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, decision, observation, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("decide teacher assignment: %w", err)
	}
	return expectAffected(result, "decide teacher assignment")
}

// Delete removes an assignment.
func (r *TeacherAssignmentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teacher_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete teacher assignment: %w", err)
	}
	return expectAffected(result, "delete teacher assignment")
}

// DeleteByTeacherAndClass removes the assignment of a teacher-class pair.
func (r *TeacherAssignmentRepository) DeleteByTeacherAndClass(ctx context.Context, teacherID, classID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teacher_assignments WHERE teacher_id = $1 AND class_id = $2`, teacherID, classID)
	if err != nil {
		return fmt.Errorf("delete teacher assignment: %w", err)
	}
	return expectAffected(result, "delete teacher assignment")
}

// SumAcceptedHours totals work and extra hours of a teacher's accepted assignments in a semester.
func (r *TeacherAssignmentRepository) SumAcceptedHours(ctx context.Context, teacherID, semesterID string) (int, error) {
	const query = `SELECT COALESCE(SUM(work_hours + full_time_extra_hours + adjunct_extra_hours), 0)
FROM teacher_assignments WHERE teacher_id = $1 AND semester_id = $2 AND status = $3`
	var total int
	if err := r.db.GetContext(ctx, &total, query, teacherID, semesterID, models.AssignmentAccepted); err != nil {
		return 0, fmt.Errorf("sum accepted hours: %w", err)
	}
	return total, nil
}
