package models

import (
	"time"

	"github.com/lib/pq"
)

// Internship is a student-reported internship entry.
type Internship struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	Semester     int       `db:"semester" json:"semester"`
	Type         string    `db:"type" json:"type"`
	Organisation string    `db:"organisation" json:"organisation"`
	Stipend      float64   `db:"stipend" json:"stipend"`
	Duration     string    `db:"duration" json:"duration"`
	Location     string    `db:"location" json:"location"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Project is a student-reported project entry.
type Project struct {
	ID           string         `db:"id" json:"id"`
	StudentID    string         `db:"student_id" json:"student_id"`
	Semester     int            `db:"semester" json:"semester"`
	Title        string         `db:"title" json:"title"`
	Description  string         `db:"description" json:"description"`
	Technologies pq.StringArray `db:"technologies" json:"technologies"`
	Mentor       string         `db:"mentor" json:"mentor"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// CoCurricular is an extracurricular achievement entry.
type CoCurricular struct {
	ID          string    `db:"id" json:"id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	Semester    int       `db:"semester" json:"semester"`
	EventName   string    `db:"event_name" json:"event_name"`
	EventType   string    `db:"event_type" json:"event_type"`
	Position    string    `db:"position" json:"position"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CareerDetails is the one-per-student career survey.
type CareerDetails struct {
	ID             string         `db:"id" json:"id"`
	StudentID      string         `db:"student_id" json:"student_id"`
	Hobbies        pq.StringArray `db:"hobbies" json:"hobbies"`
	Strengths      pq.StringArray `db:"strengths" json:"strengths"`
	AreasToImprove pq.StringArray `db:"areas_to_improve" json:"areas_to_improve"`
	Core           pq.StringArray `db:"core" json:"core"`
	IT             pq.StringArray `db:"it" json:"it"`
	HigherEd       pq.StringArray `db:"higher_education" json:"higher_education"`
	Startup        pq.StringArray `db:"startup" json:"startup"`
	FamilyBusiness pq.StringArray `db:"family_business" json:"family_business"`
	OtherInterests pq.StringArray `db:"other_interests" json:"other_interests"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// InternshipRequest is the payload for creating or updating an internship
// entry.
type InternshipRequest struct {
	Semester     int     `json:"semester" validate:"required,min=1,max=10"`
	Type         string  `json:"type" validate:"required,max=60"`
	Organisation string  `json:"organisation" validate:"required,max=200"`
	Stipend      float64 `json:"stipend" validate:"gte=0"`
	Duration     string  `json:"duration" validate:"required,max=60"`
	Location     string  `json:"location" validate:"max=120"`
}

// ProjectRequest is the payload for creating or updating a project entry.
type ProjectRequest struct {
	Semester     int      `json:"semester" validate:"required,min=1,max=10"`
	Title        string   `json:"title" validate:"required,max=200"`
	Description  string   `json:"description" validate:"max=2000"`
	Technologies []string `json:"technologies" validate:"max=20"`
	Mentor       string   `json:"mentor" validate:"max=120"`
}

// CoCurricularRequest is the payload for recording an achievement.
type CoCurricularRequest struct {
	Semester    int    `json:"semester" validate:"required,min=1,max=10"`
	EventName   string `json:"event_name" validate:"required,max=200"`
	EventType   string `json:"event_type" validate:"required,max=60"`
	Position    string `json:"position" validate:"max=60"`
	Description string `json:"description" validate:"max=2000"`
}

// CareerDetailsRequest is the payload for the career survey.
type CareerDetailsRequest struct {
	Hobbies        []string `json:"hobbies"`
	Strengths      []string `json:"strengths"`
	AreasToImprove []string `json:"areas_to_improve"`
	Core           []string `json:"core"`
	IT             []string `json:"it"`
	HigherEd       []string `json:"higher_education"`
	Startup        []string `json:"startup"`
	FamilyBusiness []string `json:"family_business"`
	OtherInterests []string `json:"other_interests"`
}

// PersonalProblemRequest is the payload for the personal-problem survey.
type PersonalProblemRequest struct {
	Description string `json:"description" validate:"required,max=4000"`
	Counselling bool   `json:"counselling"`
}

// SemesterRequest is the payload for recording one semester's results.
type SemesterRequest struct {
	Number   int              `json:"number" validate:"required,min=1,max=10"`
	SGPA     float64          `json:"sgpa" validate:"gte=0,lte=10"`
	CGPA     float64          `json:"cgpa" validate:"gte=0,lte=10"`
	Subjects []SubjectRequest `json:"subjects" validate:"dive"`
}

// SubjectRequest is one course result inside a SemesterRequest.
type SubjectRequest struct {
	Name           string  `json:"name" validate:"required,max=120"`
	Code           string  `json:"code" validate:"required,max=20"`
	Minor1         float64 `json:"minor1" validate:"gte=0"`
	MidExam        float64 `json:"mid_exam" validate:"gte=0"`
	Minor2         float64 `json:"minor2" validate:"gte=0"`
	EndExam        float64 `json:"end_exam" validate:"gte=0"`
	Total          float64 `json:"total" validate:"gte=0"`
	ConductedHours int     `json:"conducted_hours" validate:"gte=0"`
	AttendedHours  int     `json:"attended_hours" validate:"gte=0"`
	Remarks        string  `json:"remarks" validate:"max=500"`
}

// PersonalProblem is the one-per-student personal-problem survey shared
// only with the mentor and HOD.
type PersonalProblem struct {
	ID          string    `db:"id" json:"id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	Description string    `db:"description" json:"description"`
	Counselling bool      `db:"counselling" json:"counselling"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
