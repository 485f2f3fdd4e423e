package models

// Teacher carries the hour ceiling used for workload checks.
type Teacher struct {
	ID               string `db:"id" json:"id"`
	UserID           string `db:"user_id" json:"user_id"`
	EmploymentTypeID string `db:"employment_type_id" json:"employment_type_id"`
	MaxHours         int    `db:"max_hours" json:"max_hours"`
}

// TeacherLoad pairs a teacher with the hours accepted in one semester.
type TeacherLoad struct {
	Teacher
	AssignedHours int `db:"assigned_hours" json:"assigned_hours"`
}
