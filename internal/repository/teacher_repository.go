package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
)

// TeacherRepository reads teachers and their hour ceilings.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// FindByID loads a teacher by identifier.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	const query = `SELECT id, user_id, employment_type_id, max_hours FROM teachers WHERE id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindByUserID loads the teacher profile attached to a user.
func (r *TeacherRepository) FindByUserID(ctx context.Context, userID string) (*models.Teacher, error) {
	const query = `SELECT id, user_id, employment_type_id, max_hours FROM teachers WHERE user_id = $1 LIMIT 1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, userID); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// ListByIDs returns the teachers matching ids.
func (r *TeacherRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Teacher, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT id, user_id, employment_type_id, max_hours FROM teachers WHERE id = ANY($1) ORDER BY id`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list teachers by ids: %w", err)
	}
	return teachers, nil
}

// ListLoads returns every teacher with the hours of their accepted assignments in semesterID.
func (r *TeacherRepository) ListLoads(ctx context.Context, semesterID string) ([]models.TeacherLoad, error) {
	const query = `SELECT t.id, t.user_id, t.employment_type_id, t.max_hours,
	COALESCE(SUM(ta.work_hours + ta.full_time_extra_hours + ta.adjunct_extra_hours), 0) AS assigned_hours
FROM teachers t
LEFT JOIN teacher_assignments ta ON ta.teacher_id = t.id AND ta.semester_id = $1 AND ta.status = $2
GROUP BY t.id, t.user_id, t.employment_type_id, t.max_hours
ORDER BY t.id`
	var loads []models.TeacherLoad
	if err := r.db.SelectContext(ctx, &loads, query, semesterID, models.AssignmentAccepted); err != nil {
		return nil, fmt.Errorf("list teacher loads: %w", err)
	}
	return loads, nil
}
