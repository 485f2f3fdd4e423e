package models

import "time"

// AssignmentStatus tracks the decision lifecycle of an assignment.
type AssignmentStatus string

const (
	AssignmentPending  AssignmentStatus = "PENDING"
	AssignmentAccepted AssignmentStatus = "ACCEPTED"
	AssignmentRejected AssignmentStatus = "REJECTED"
)

// Valid reports whether s is a known status.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentPending, AssignmentAccepted, AssignmentRejected:
		return true
	}
	return false
}

// TeacherAssignment pairs a teacher with a class. (TeacherID, ClassID) is unique.
type TeacherAssignment struct {
	ID                 string           `db:"id" json:"id"`
	TeacherID          string           `db:"teacher_id" json:"teacher_id"`
	ClassID            string           `db:"class_id" json:"class_id"`
	SemesterID         string           `db:"semester_id" json:"semester_id"`
	WorkHours          int              `db:"work_hours" json:"work_hours"`
	FullTimeExtraHours int              `db:"full_time_extra_hours" json:"full_time_extra_hours"`
	AdjunctExtraHours  int              `db:"adjunct_extra_hours" json:"adjunct_extra_hours"`
	Status             AssignmentStatus `db:"status" json:"status"`
	Decision           *bool            `db:"decision" json:"decision,omitempty"`
	Observation        *string          `db:"observation" json:"observation,omitempty"`
	StartDate          *time.Time       `db:"start_date" json:"start_date,omitempty"`
	EndDate            *time.Time       `db:"end_date" json:"end_date,omitempty"`
	CreatedAt          time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at" json:"updated_at"`
}

// TotalHours returns work hours plus both extra-hour allowances.
func (a TeacherAssignment) TotalHours() int {
	return a.WorkHours + a.FullTimeExtraHours + a.AdjunctExtraHours
}

// CreateAssignmentRequest creates a pending assignment.
type CreateAssignmentRequest struct {
	TeacherID          string  `json:"teacher_id" validate:"required"`
	ClassID            string  `json:"class_id" validate:"required"`
	WorkHours          int     `json:"work_hours" validate:"gte=0"`
	FullTimeExtraHours int     `json:"full_time_extra_hours" validate:"gte=0"`
	AdjunctExtraHours  int     `json:"adjunct_extra_hours" validate:"gte=0"`
	Observation        *string `json:"observation"`
}

// ProposedHours returns the hours the assignment would add once accepted.
func (r CreateAssignmentRequest) ProposedHours() int {
	return r.WorkHours + r.FullTimeExtraHours + r.AdjunctExtraHours
}

// UpdateAssignmentRequest patches hours and observation. Nil fields are left unchanged.
type UpdateAssignmentRequest struct {
	WorkHours          *int    `json:"work_hours" validate:"omitempty,gte=0"`
	FullTimeExtraHours *int    `json:"full_time_extra_hours" validate:"omitempty,gte=0"`
	AdjunctExtraHours  *int    `json:"adjunct_extra_hours" validate:"omitempty,gte=0"`
	Observation        *string `json:"observation"`
}

// DecisionRequest carries the optional observation attached to accept or reject.
type DecisionRequest struct {
	Observation *string `json:"observation"`
}

// TeachingDatesRequest sets the teaching window of an assignment.
type TeachingDatesRequest struct {
	StartDate *time.Time `json:"start_date" validate:"required"`
	EndDate   *time.Time `json:"end_date" validate:"required"`
}

// AssignmentFilter narrows assignment queries. Empty fields are ignored.
type AssignmentFilter struct {
	TeacherID  string
	ClassID    string
	SemesterID string
	Status     AssignmentStatus
}

// AssignmentResult is returned on creation with an optional overbooking warning.
type AssignmentResult struct {
	Assignment TeacherAssignment  `json:"assignment"`
	Warning    *ExtraHoursWarning `json:"warning,omitempty"`
}
