package models

// DuplicateRequest copies every class of SourceSemesterID into TargetSemesterID.
type DuplicateRequest struct {
	SourceSemesterID string `json:"source_semester_id" validate:"required"`
	TargetSemesterID string `json:"target_semester_id" validate:"required"`
}

// DuplicateSelectedRequest copies the listed classes into the current semester.
type DuplicateSelectedRequest struct {
	SourceSemesterID string   `json:"source_semester_id" validate:"required"`
	ClassIDs         []string `json:"class_ids" validate:"required,min=1,dive,required"`
}

// DuplicateSelectedResult reports how many classes were copied.
type DuplicateSelectedResult struct {
	Applied int `json:"applied"`
}
