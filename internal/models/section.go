package models

// Section owns courses and scopes what its owner may see.
type Section struct {
	ID             string `db:"id" json:"id"`
	Name           string `db:"name" json:"name"`
	OwnerUserID    string `db:"owner_user_id" json:"owner_user_id"`
	PlanningClosed bool   `db:"planning_closed" json:"planning_closed"`
}

// Course belongs to exactly one section.
type Course struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	SectionID string `db:"section_id" json:"section_id"`
}
