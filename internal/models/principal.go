package models

import "time"

// Role discriminates the four kinds of authenticated actors.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleHOD     Role = "HOD"
	RoleFaculty Role = "FACULTY"
	RoleStudent Role = "STUDENT"
)

// Valid reports whether the role is one of the known variants.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHOD, RoleFaculty, RoleStudent:
		return true
	}
	return false
}

// Principal is a login identity. Exactly one of FacultyID/StudentID is set
// for non-admin roles: FACULTY and HOD principals link a faculty record,
// STUDENT principals link a student record.
type Principal struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         Role       `db:"role" json:"role"`
	FacultyID    *string    `db:"faculty_id" json:"faculty_id,omitempty"`
	StudentID    *string    `db:"student_id" json:"student_id,omitempty"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
