package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
)

const classColumns = "id, course_id, semester_id, section_ref, capacity, start_date, end_date, status_id, observation, created_at, updated_at"

// ClassRepository manages academic classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs the repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// FindByID loads a class by identifier.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.AcademicClass, error) {
	query := fmt.Sprintf("SELECT %s FROM classes WHERE id = $1", classColumns)
	var class models.AcademicClass
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// List returns classes matching the filter ordered by creation.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.AcademicClass, error) {
	base := "FROM classes WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.SemesterID != "" {
		conditions = append(conditions, fmt.Sprintf("semester_id = $%d", len(args)+1))
		args = append(args, filter.SemesterID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at ASC, id ASC", classColumns, base)
	var classes []models.AcademicClass
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// ListByIDs returns the classes matching ids.
func (r *ClassRepository) ListByIDs(ctx context.Context, ids []string) ([]models.AcademicClass, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT %s FROM classes WHERE id = ANY($1) ORDER BY created_at ASC, id ASC", classColumns)
	var classes []models.AcademicClass
	if err := r.db.SelectContext(ctx, &classes, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list classes by ids: %w", err)
	}
	return classes, nil
}

// ListWithoutAcceptedTeacher returns classes of a semester with no accepted assignment.
func (r *ClassRepository) ListWithoutAcceptedTeacher(ctx context.Context, semesterID string) ([]models.AcademicClass, error) {
	query := fmt.Sprintf(`SELECT %s FROM classes c WHERE c.semester_id = $1 AND NOT EXISTS (
	SELECT 1 FROM teacher_assignments ta WHERE ta.class_id = c.id AND ta.status = $2
) ORDER BY c.created_at ASC, c.id ASC`, prefixColumns("c", classColumns))
	var classes []models.AcademicClass
	if err := r.db.SelectContext(ctx, &classes, query, semesterID, models.AssignmentAccepted); err != nil {
		return nil, fmt.Errorf("list classes without teacher: %w", err)
	}
	return classes, nil
}

// ListWithoutClassroom returns classes of a semester none of whose schedules has a classroom.
func (r *ClassRepository) ListWithoutClassroom(ctx context.Context, semesterID string) ([]models.AcademicClass, error) {
	query := fmt.Sprintf(`SELECT %s FROM classes c WHERE c.semester_id = $1 AND NOT EXISTS (
	SELECT 1 FROM class_schedules cs WHERE cs.class_id = c.id AND cs.classroom_id IS NOT NULL
) ORDER BY c.created_at ASC, c.id ASC`, prefixColumns("c", classColumns))
	var classes []models.AcademicClass
	if err := r.db.SelectContext(ctx, &classes, query, semesterID); err != nil {
		return nil, fmt.Errorf("list classes without classroom: %w", err)
	}
	return classes, nil
}

// SectionIDForClass resolves the section owning the class's course.
func (r *ClassRepository) SectionIDForClass(ctx context.Context, classID string) (string, error) {
	const query = `SELECT co.section_id FROM classes c JOIN courses co ON co.id = c.course_id WHERE c.id = $1`
	var sectionID string
	if err := r.db.GetContext(ctx, &sectionID, query, classID); err != nil {
		return "", err
	}
	return sectionID, nil
}

// Create inserts a class.
func (r *ClassRepository) Create(ctx context.Context, class *models.AcademicClass) error {
	return r.create(ctx, r.db, class)
}

// CreateWithTx inserts a class using an existing transaction.
func (r *ClassRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, class *models.AcademicClass) error {
	return r.create(ctx, tx, class)
}

func (r *ClassRepository) create(ctx context.Context, exec sqlx.ExtContext, class *models.AcademicClass) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if class.CreatedAt.IsZero() {
		class.CreatedAt = now
	}
	class.UpdatedAt = now

	const query = `INSERT INTO classes (id, course_id, semester_id, section_ref, capacity, start_date, end_date, status_id, observation, created_at, updated_at) VALUES (:id, :course_id, :semester_id, :section_ref, :capacity, :start_date, :end_date, :status_id, :observation, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Update modifies the mutable attributes of a class.
func (r *ClassRepository) Update(ctx context.Context, class *models.AcademicClass) error {
	class.UpdatedAt = time.Now().UTC()
	const query = `UPDATE classes SET section_ref = :section_ref, capacity = :capacity, start_date = :start_date, end_date = :end_date, status_id = :status_id, observation = :observation, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, class)
	if err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return expectAffected(result, "update class")
}

// DeleteWithTx removes a class inside tx.
func (r *ClassRepository) DeleteWithTx(ctx context.Context, tx *sqlx.Tx, id string) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return expectAffected(result, "delete class")
}

func expectAffected(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}
