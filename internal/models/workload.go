package models

// ExtraHoursWarning reports how far a proposed assignment would push a teacher past capacity.
type ExtraHoursWarning struct {
	TeacherID       string `json:"teacher_id"`
	CurrentAssigned int    `json:"current_assigned"`
	MaxHours        int    `json:"max_hours"`
	ProposedHours   int    `json:"proposed_hours"`
	ExcessHours     int    `json:"excess_hours"`
}

// Exceeded reports whether the proposal goes over capacity.
func (w ExtraHoursWarning) Exceeded() bool { return w.ExcessHours > 0 }

// WorkloadReport summarises a teacher's accepted hours against capacity.
type WorkloadReport struct {
	TeacherID              string `json:"teacher_id" db:"teacher_id"`
	AssignedHours          int    `json:"assigned_hours" db:"assigned_hours"`
	MaxHours               int    `json:"max_hours" db:"max_hours"`
	AvailableHours         int    `json:"available_hours"`
	ExceedsCapacity        bool   `json:"exceeds_capacity"`
	AvailableForExtraHours bool   `json:"available_for_extra_hours"`
}

// ExtraHoursRequest asks for a warning on a prospective addition.
type ExtraHoursRequest struct {
	ProposedHours int `json:"proposed_hours" validate:"gte=0"`
}

// ReportFormat selects the rendering of a workload report.
type ReportFormat string

const (
	ReportFormatJSON ReportFormat = "json"
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatPDF  ReportFormat = "pdf"
)
