package models

import "time"

// Semester is an academic term. At most one semester is current.
type Semester struct {
	ID               string     `db:"id" json:"id"`
	Year             int        `db:"year" json:"year"`
	Period           int        `db:"period" json:"period"`
	StartDate        time.Time  `db:"start_date" json:"start_date"`
	EndDate          time.Time  `db:"end_date" json:"end_date"`
	StartSpecialWeek *time.Time `db:"start_special_week" json:"start_special_week,omitempty"`
	IsCurrent        bool       `db:"is_current" json:"is_current"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// CreateSemesterRequest opens a new current semester.
type CreateSemesterRequest struct {
	Year             *int       `json:"year" validate:"required,gte=1900"`
	Period           *int       `json:"period" validate:"required,gte=1"`
	StartDate        *time.Time `json:"start_date" validate:"required"`
	EndDate          *time.Time `json:"end_date" validate:"required"`
	StartSpecialWeek *time.Time `json:"start_special_week"`
}
