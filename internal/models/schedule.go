package models

import "time"

// ClassSchedule is a weekly slot of a class. ClassroomID is nil for remote modality.
type ClassSchedule struct {
	ID          string    `db:"id" json:"id"`
	ClassID     string    `db:"class_id" json:"class_id"`
	ClassroomID *string   `db:"classroom_id" json:"classroom_id,omitempty"`
	Day         Weekday   `db:"day" json:"day"`
	StartTime   ClockTime `db:"start_time" json:"start_time"`
	EndTime     ClockTime `db:"end_time" json:"end_time"`
	ModalityID  string    `db:"modality_id" json:"modality_id"`
	Disability  bool      `db:"disability" json:"disability"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleRequest is the payload for adding or replacing a schedule.
type ScheduleRequest struct {
	ClassroomID *string   `json:"classroom_id"`
	Day         Weekday   `json:"day" validate:"required"`
	StartTime   ClockTime `json:"start_time"`
	EndTime     ClockTime `json:"end_time"`
	ModalityID  string    `json:"modality_id" validate:"required"`
	Disability  bool      `json:"disability"`
}

// ScheduleWithConflicts pairs a persisted schedule with the schedules it overlaps.
type ScheduleWithConflicts struct {
	Schedule  ClassSchedule   `json:"schedule"`
	Conflicts []ClassSchedule `json:"conflicts"`
}

// ConflictQuery describes a proposed slot to test against a classroom's timetable.
type ConflictQuery struct {
	ClassroomID    string
	Day            Weekday
	StartTime      ClockTime
	EndTime        ClockTime
	ExcludeClassID string
	SemesterID     string
}

// ClassroomConflict is a group of mutually overlapping schedules in one classroom and day.
type ClassroomConflict struct {
	ClassroomID string    `json:"classroom_id"`
	Day         Weekday   `json:"day"`
	ClassIDs    []string  `json:"class_ids"`
	ScheduleIDs []string  `json:"schedule_ids"`
	StartTime   ClockTime `json:"start_time"`
	EndTime     ClockTime `json:"end_time"`
}

// TeacherSchedule is a schedule of a class taught by TeacherID under an accepted assignment.
type TeacherSchedule struct {
	TeacherID string `db:"teacher_id" json:"teacher_id"`
	ClassSchedule
}

// TeacherConflict is a group of mutually overlapping schedules one teacher is committed to on one day.
type TeacherConflict struct {
	TeacherID   string    `json:"teacher_id"`
	Day         Weekday   `json:"day"`
	ClassIDs    []string  `json:"class_ids"`
	ScheduleIDs []string  `json:"schedule_ids"`
	StartTime   ClockTime `json:"start_time"`
	EndTime     ClockTime `json:"end_time"`
}
