package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
)

// CourseRepository resolves courses and their owning section.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID loads a course.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, name, section_id FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// SectionIDForCourse returns the section owning courseID.
func (r *CourseRepository) SectionIDForCourse(ctx context.Context, courseID string) (string, error) {
	var sectionID string
	if err := r.db.GetContext(ctx, &sectionID, `SELECT section_id FROM courses WHERE id = $1`, courseID); err != nil {
		return "", err
	}
	return sectionID, nil
}
