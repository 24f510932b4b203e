package models

// Semester is a per-semester academic summary owning an ordered list of
// subject results.
type Semester struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Number    int       `db:"number" json:"number"`
	SGPA      float64   `db:"sgpa" json:"sgpa"`
	CGPA      float64   `db:"cgpa" json:"cgpa"`
	Subjects  []Subject `db:"-" json:"subjects,omitempty"`
}

// Subject is one course result within a semester.
type Subject struct {
	ID             string  `db:"id" json:"id"`
	SemesterID     string  `db:"semester_id" json:"semester_id"`
	Name           string  `db:"name" json:"name"`
	Code           string  `db:"code" json:"code"`
	Minor1         float64 `db:"minor1" json:"minor1"`
	MidExam        float64 `db:"mid_exam" json:"mid_exam"`
	Minor2         float64 `db:"minor2" json:"minor2"`
	EndExam        float64 `db:"end_exam" json:"end_exam"`
	Total          float64 `db:"total" json:"total"`
	ConductedHours int     `db:"conducted_hours" json:"conducted_hours"`
	AttendedHours  int     `db:"attended_hours" json:"attended_hours"`
	AttendancePct  float64 `db:"attendance_pct" json:"attendance_pct"`
	Remarks        string  `db:"remarks" json:"remarks"`
}
