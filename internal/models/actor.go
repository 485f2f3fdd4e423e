package models

// ActorKind tags the variant carried by an Actor.
type ActorKind string

const (
	ActorAdmin   ActorKind = "ADMIN"
	ActorSection ActorKind = "SECTION"
	ActorTeacher ActorKind = "TEACHER"
)

// Actor is the caller on whose behalf a planning query or mutation runs.
// SectionID is set only for ActorSection and TeacherID only for ActorTeacher.
type Actor struct {
	Kind      ActorKind `json:"kind"`
	UserID    string    `json:"user_id,omitempty"`
	SectionID string    `json:"section_id,omitempty"`
	TeacherID string    `json:"teacher_id,omitempty"`
}

// AdminActor returns an unrestricted actor.
func AdminActor() Actor {
	return Actor{Kind: ActorAdmin}
}

// SectionActor returns an actor restricted to the courses of sectionID.
func SectionActor(sectionID string) Actor {
	return Actor{Kind: ActorSection, SectionID: sectionID}
}

// TeacherActor returns an actor restricted to teacherID's own assignments.
func TeacherActor(teacherID string) Actor {
	return Actor{Kind: ActorTeacher, TeacherID: teacherID}
}

// IsAdmin reports whether the actor is unrestricted.
func (a Actor) IsAdmin() bool { return a.Kind == ActorAdmin }

// IsSection reports whether the actor is a section owner.
func (a Actor) IsSection() bool { return a.Kind == ActorSection }

// IsTeacher reports whether the actor is a teacher.
func (a Actor) IsTeacher() bool { return a.Kind == ActorTeacher }
