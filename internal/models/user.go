package models

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleSection UserRole = "SECTION"
	RoleTeacher UserRole = "TEACHER"
	RoleStudent UserRole = "STUDENT"
)
