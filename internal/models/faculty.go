package models

import "time"

// Faculty represents a teaching staff member who may mentor students and
// may additionally hold an HOD appointment.
type Faculty struct {
	ID            string    `db:"id" json:"id"`
	EmployeeID    string    `db:"employee_id" json:"employee_id"`
	Name          string    `db:"name" json:"name"`
	Department    string    `db:"department" json:"department"`
	CollegeEmail  string    `db:"college_email" json:"college_email"`
	PersonalEmail string    `db:"personal_email" json:"personal_email"`
	Phone1        string    `db:"phone1" json:"phone1"`
	Phone2        string    `db:"phone2" json:"phone2,omitempty"`
	Office        string    `db:"office" json:"office"`
	OfficeHours   string    `db:"office_hours" json:"office_hours"`
	MTech         string    `db:"mtech" json:"mtech,omitempty"`
	PhD           string    `db:"phd" json:"phd,omitempty"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// CreateFacultyRequest is the payload for onboarding a faculty member.
type CreateFacultyRequest struct {
	EmployeeID    string `json:"employee_id" validate:"required,max=40"`
	Name          string `json:"name" validate:"required,max=120"`
	Department    string `json:"department" validate:"required"`
	CollegeEmail  string `json:"college_email" validate:"required,email"`
	PersonalEmail string `json:"personal_email" validate:"omitempty,email"`
	Phone1        string `json:"phone1" validate:"omitempty,max=20"`
	Phone2        string `json:"phone2" validate:"omitempty,max=20"`
	Office        string `json:"office"`
	OfficeHours   string `json:"office_hours"`
	MTech         string `json:"mtech"`
	PhD           string `json:"phd"`
	Password      string `json:"password" validate:"required,min=8"`
}

// UpdateFacultyRequest is the payload for editing a faculty record.
type UpdateFacultyRequest struct {
	Name          *string `json:"name" validate:"omitempty,max=120"`
	PersonalEmail *string `json:"personal_email" validate:"omitempty,email"`
	Phone1        *string `json:"phone1" validate:"omitempty,max=20"`
	Phone2        *string `json:"phone2" validate:"omitempty,max=20"`
	Office        *string `json:"office"`
	OfficeHours   *string `json:"office_hours"`
	MTech         *string `json:"mtech"`
	PhD           *string `json:"phd"`
	Active        *bool   `json:"active"`
}

// AssignMentorRequest binds a student to a mentor, replacing any previous
// mentorship.
type AssignMentorRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
	FacultyID string `json:"faculty_id" validate:"required,uuid"`
}

// AppointHODRequest opens a new HOD appointment for a department.
type AppointHODRequest struct {
	FacultyID  string `json:"faculty_id" validate:"required,uuid"`
	Department string `json:"department" validate:"required"`
}

// FacultyFilter captures query parameters for listing faculty. Department
// is set by the access policy for HOD callers.
type FacultyFilter struct {
	Search     string
	Department string
	Active     *bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// Mentorship binds a student to their single active mentor. The table is
// the source of truth; students.mentor_id is rebuilt from it.
type Mentorship struct {
	FacultyID  string    `db:"faculty_id" json:"faculty_id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	AssignedAt time.Time `db:"assigned_at" json:"assigned_at"`
}

// MentorProfile is the public subset of a mentor's faculty record that a
// mentee may read.
type MentorProfile struct {
	ID           string `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Department   string `db:"department" json:"department"`
	CollegeEmail string `db:"college_email" json:"college_email"`
	Office       string `db:"office" json:"office"`
	OfficeHours  string `db:"office_hours" json:"office_hours"`
}
