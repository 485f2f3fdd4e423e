package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
)

const semesterColumns = "id, year, period, start_date, end_date, start_special_week, is_current, created_at, updated_at"

// SemesterRepository handles persistence for semesters.
type SemesterRepository struct {
	db *sqlx.DB
}

// NewSemesterRepository instantiates a semester repository.
func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

// FindByID loads a semester by identifier.
func (r *SemesterRepository) FindByID(ctx context.Context, id string) (*models.Semester, error) {
	query := fmt.Sprintf("SELECT %s FROM semesters WHERE id = $1", semesterColumns)
	var semester models.Semester
	if err := r.db.GetContext(ctx, &semester, query, id); err != nil {
		return nil, err
	}
	return &semester, nil
}

// FindCurrent returns the current semester.
func (r *SemesterRepository) FindCurrent(ctx context.Context) (*models.Semester, error) {
	query := fmt.Sprintf("SELECT %s FROM semesters WHERE is_current = TRUE LIMIT 1", semesterColumns)
	var semester models.Semester
	if err := r.db.GetContext(ctx, &semester, query); err != nil {
		return nil, err
	}
	return &semester, nil
}

// List returns all semesters, newest first.
func (r *SemesterRepository) List(ctx context.Context) ([]models.Semester, error) {
	query := fmt.Sprintf("SELECT %s FROM semesters ORDER BY year DESC, period DESC", semesterColumns)
	var semesters []models.Semester
	if err := r.db.SelectContext(ctx, &semesters, query); err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	return semesters, nil
}

// ListPast returns every semester except the current one, newest first.
func (r *SemesterRepository) ListPast(ctx context.Context) ([]models.Semester, error) {
	query := fmt.Sprintf("SELECT %s FROM semesters WHERE is_current = FALSE ORDER BY year DESC, period DESC", semesterColumns)
	var semesters []models.Semester
	if err := r.db.SelectContext(ctx, &semesters, query); err != nil {
		return nil, fmt.Errorf("list past semesters: %w", err)
	}
	return semesters, nil
}

// LockCurrentWithTx takes a row lock on the current semester inside tx.
func (r *SemesterRepository) LockCurrentWithTx(ctx context.Context, tx *sqlx.Tx) error {
	var ids []string
	if err := tx.SelectContext(ctx, &ids, `SELECT id FROM semesters WHERE is_current = TRUE FOR UPDATE`); err != nil {
		return fmt.Errorf("lock current semester: %w", err)
	}
	return nil
}

// ClearCurrentWithTx marks every current semester as no longer current.
func (r *SemesterRepository) ClearCurrentWithTx(ctx context.Context, tx *sqlx.Tx) error {
	if _, err := tx.ExecContext(ctx, `UPDATE semesters SET is_current = FALSE, updated_at = $1 WHERE is_current = TRUE`, time.Now().UTC()); err != nil {
		return fmt.Errorf("clear current semester: %w", err)
	}
	return nil
}

// CreateWithTx inserts a semester inside tx.
func (r *SemesterRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, semester *models.Semester) error {
	if semester.ID == "" {
		semester.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if semester.CreatedAt.IsZero() {
		semester.CreatedAt = now
	}
	semester.UpdatedAt = now

	const query = `INSERT INTO semesters (id, year, period, start_date, end_date, start_special_week, is_current, created_at, updated_at) VALUES (:id, :year, :period, :start_date, :end_date, :start_special_week, :is_current, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, tx, query, semester); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create semester: %w", err)
	}
	return nil
}
