package models

import "time"

// AcademicClass is an offering of a course within one semester.
type AcademicClass struct {
	ID          string     `db:"id" json:"id"`
	CourseID    string     `db:"course_id" json:"course_id"`
	SemesterID  string     `db:"semester_id" json:"semester_id"`
	SectionRef  *string    `db:"section_ref" json:"section_ref,omitempty"`
	Capacity    int        `db:"capacity" json:"capacity"`
	StartDate   *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate     *time.Time `db:"end_date" json:"end_date,omitempty"`
	StatusID    string     `db:"status_id" json:"status_id"`
	Observation *string    `db:"observation" json:"observation,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// ClassWithSchedules nests a class with its schedules.
type ClassWithSchedules struct {
	AcademicClass
	Schedules []ClassSchedule `json:"schedules"`
}

// ClassFilter narrows class listings.
type ClassFilter struct {
	SemesterID string
	CourseID   string
}

// CreateClassRequest creates a class in the current semester.
type CreateClassRequest struct {
	CourseID    string            `json:"course_id" validate:"required"`
	SectionRef  *string           `json:"section_ref"`
	Capacity    int               `json:"capacity" validate:"gte=0"`
	StartDate   *time.Time        `json:"start_date"`
	EndDate     *time.Time        `json:"end_date"`
	StatusID    string            `json:"status_id" validate:"required"`
	Observation *string           `json:"observation"`
	Schedules   []ScheduleRequest `json:"schedules" validate:"dive"`
}

// UpdateClassRequest replaces the mutable attributes of a class.
type UpdateClassRequest struct {
	SectionRef  *string    `json:"section_ref"`
	Capacity    int        `json:"capacity" validate:"gte=0"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	StatusID    string     `json:"status_id" validate:"required"`
	Observation *string    `json:"observation"`
}

// ClassResult is returned by class creation with the conflicts each schedule raised.
type ClassResult struct {
	Class     ClassWithSchedules      `json:"class"`
	Conflicts []ScheduleWithConflicts `json:"conflicts,omitempty"`
}
