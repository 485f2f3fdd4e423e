package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
)

// SectionRepository reads sections and toggles their planning flag.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs the repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// FindByID loads a section.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.Section, error) {
	const query = `SELECT id, name, owner_user_id, planning_closed FROM sections WHERE id = $1`
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}

// FindByOwner returns the section whose owner is userID.
func (r *SectionRepository) FindByOwner(ctx context.Context, userID string) (*models.Section, error) {
	const query = `SELECT id, name, owner_user_id, planning_closed FROM sections WHERE owner_user_id = $1 LIMIT 1`
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, userID); err != nil {
		return nil, err
	}
	return &section, nil
}

// ResetPlanningClosedWithTx reopens planning for every section.
func (r *SectionRepository) ResetPlanningClosedWithTx(ctx context.Context, tx *sqlx.Tx) error {
	if _, err := tx.ExecContext(ctx, `UPDATE sections SET planning_closed = FALSE WHERE planning_closed = TRUE`); err != nil {
		return fmt.Errorf("reset section planning flag: %w", err)
	}
	return nil
}
