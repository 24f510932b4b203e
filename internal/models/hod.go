package models

import "time"

// HODAppointment records a faculty member's term as head of department.
// An open-ended row (EndDate nil) is the current appointment; at most one
// open row exists per department. The appointment's department governs HOD
// scoping even if it diverges from the faculty record's department.
type HODAppointment struct {
	ID         string     `db:"id" json:"id"`
	FacultyID  string     `db:"faculty_id" json:"faculty_id"`
	Department string     `db:"department" json:"department"`
	StartDate  time.Time  `db:"start_date" json:"start_date"`
	EndDate    *time.Time `db:"end_date" json:"end_date,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// Current reports whether the appointment is still open.
func (a HODAppointment) Current() bool {
	return a.EndDate == nil
}
