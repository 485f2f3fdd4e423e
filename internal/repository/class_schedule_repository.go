package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
)

const scheduleColumns = "id, class_id, classroom_id, day, start_time, end_time, modality_id, disability, created_at, updated_at"

// ClassScheduleRepository manages class schedules.
type ClassScheduleRepository struct {
	db *sqlx.DB
}

// NewClassScheduleRepository constructs the repository.
func NewClassScheduleRepository(db *sqlx.DB) *ClassScheduleRepository {
	return &ClassScheduleRepository{db: db}
}

// FindByID loads a schedule.
func (r *ClassScheduleRepository) FindByID(ctx context.Context, id string) (*models.ClassSchedule, error) {
	query := fmt.Sprintf("SELECT %s FROM class_schedules WHERE id = $1", scheduleColumns)
	var schedule models.ClassSchedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// ListByClass returns the schedules of a class.
func (r *ClassScheduleRepository) ListByClass(ctx context.Context, classID string) ([]models.ClassSchedule, error) {
	query := fmt.Sprintf("SELECT %s FROM class_schedules WHERE class_id = $1 ORDER BY day, start_time", scheduleColumns)
	var schedules []models.ClassSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, classID); err != nil {
		return nil, fmt.Errorf("list class schedules: %w", err)
	}
	return schedules, nil
}

// ListByClassIDs returns the schedules of several classes.
func (r *ClassScheduleRepository) ListByClassIDs(ctx context.Context, classIDs []string) ([]models.ClassSchedule, error) {
	if len(classIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT %s FROM class_schedules WHERE class_id = ANY($1) ORDER BY class_id, day, start_time", scheduleColumns)
	var schedules []models.ClassSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, pq.Array(classIDs)); err != nil {
		return nil, fmt.Errorf("list schedules by classes: %w", err)
	}
	return schedules, nil
}

// ListByClassroomAndDay returns the schedules booked in a classroom on a day,
// restricted to semesterID when it is not empty.
func (r *ClassScheduleRepository) ListByClassroomAndDay(ctx context.Context, classroomID string, day models.Weekday, semesterID string) ([]models.ClassSchedule, error) {
	if semesterID == "" {
		query := fmt.Sprintf("SELECT %s FROM class_schedules WHERE classroom_id = $1 AND day = $2 ORDER BY start_time", scheduleColumns)
		var schedules []models.ClassSchedule
		if err := r.db.SelectContext(ctx, &schedules, query, classroomID, day); err != nil {
			return nil, fmt.Errorf("list classroom schedules: %w", err)
		}
		return schedules, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM class_schedules cs JOIN classes c ON c.id = cs.class_id
WHERE cs.classroom_id = $1 AND cs.day = $2 AND c.semester_id = $3 ORDER BY cs.start_time`, prefixColumns("cs", scheduleColumns))
	var schedules []models.ClassSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, classroomID, day, semesterID); err != nil {
		return nil, fmt.Errorf("list classroom schedules: %w", err)
	}
	return schedules, nil
}

// ListRoomBookedBySemester returns every in-person schedule of a semester.
func (r *ClassScheduleRepository) ListRoomBookedBySemester(ctx context.Context, semesterID string) ([]models.ClassSchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM class_schedules cs JOIN classes c ON c.id = cs.class_id
WHERE c.semester_id = $1 AND cs.classroom_id IS NOT NULL ORDER BY cs.classroom_id, cs.day, cs.start_time`, prefixColumns("cs", scheduleColumns))
	var schedules []models.ClassSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, semesterID); err != nil {
		return nil, fmt.Errorf("list semester schedules: %w", err)
	}
	return schedules, nil
}

// ListTeacherBookedBySemester returns the schedules of a semester's classes paired with the
// teacher of each accepted assignment, ordered by teacher, day and start time.
func (r *ClassScheduleRepository) ListTeacherBookedBySemester(ctx context.Context, semesterID string) ([]models.TeacherSchedule, error) {
	query := fmt.Sprintf(`SELECT ta.teacher_id, %s FROM class_schedules cs
JOIN classes c ON c.id = cs.class_id
JOIN teacher_assignments ta ON ta.class_id = cs.class_id
WHERE c.semester_id = $1 AND ta.status = $2 ORDER BY ta.teacher_id, cs.day, cs.start_time`, prefixColumns("cs", scheduleColumns))
	var schedules []models.TeacherSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, semesterID, models.AssignmentAccepted); err != nil {
		return nil, fmt.Errorf("list teacher schedules: %w", err)
	}
	return schedules, nil
}

// Create inserts a single schedule.
func (r *ClassScheduleRepository) Create(ctx context.Context, schedule *models.ClassSchedule) error {
	return r.insert(ctx, r.db, schedule)
}

// BulkCreateWithTx inserts schedules using an existing transaction.
func (r *ClassScheduleRepository) BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, schedules []models.ClassSchedule) error {
	for i := range schedules {
		if err := r.insert(ctx, tx, &schedules[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *ClassScheduleRepository) insert(ctx context.Context, exec sqlx.ExtContext, schedule *models.ClassSchedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	const query = `INSERT INTO class_schedules (id, class_id, classroom_id, day, start_time, end_time, modality_id, disability, created_at, updated_at) VALUES (:id, :class_id, :classroom_id, :day, :start_time, :end_time, :modality_id, :disability, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, schedule); err != nil {
		return fmt.Errorf("create class schedule: %w", err)
	}
	return nil
}

// Update replaces a schedule's slot attributes.
func (r *ClassScheduleRepository) Update(ctx context.Context, schedule *models.ClassSchedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE class_schedules SET classroom_id = :classroom_id, day = :day, start_time = :start_time, end_time = :end_time, modality_id = :modality_id, disability = :disability, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, schedule)
	if err != nil {
		return fmt.Errorf("update class schedule: %w", err)
	}
	return expectAffected(result, "update class schedule")
}

// Delete removes a schedule.
func (r *ClassScheduleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM class_schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete class schedule: %w", err)
	}
	return expectAffected(result, "delete class schedule")
}

// DeleteByClassWithTx removes every schedule of a class inside tx.
func (r *ClassScheduleRepository) DeleteByClassWithTx(ctx context.Context, tx *sqlx.Tx, classID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM class_schedules WHERE class_id = $1`, classID); err != nil {
		return fmt.Errorf("delete class schedules: %w", err)
	}
	return nil
}
