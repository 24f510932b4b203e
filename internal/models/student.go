package models

import "time"

// StudentStatus is the academic lifecycle state. Students are never hard
// deleted; graduation and account deactivation are represented here.
type StudentStatus string

const (
	StudentPursuing  StudentStatus = "PURSUING"
	StudentGraduated StudentStatus = "GRADUATED"
)

// AccountStatus is the portal account state.
type AccountStatus string

const (
	AccountActive   AccountStatus = "ACTIVE"
	AccountInactive AccountStatus = "INACTIVE"
)

// Student represents an enrolled student and the administrative fields
// maintained by faculty and HOD. MentorID is a derived read-only index over
// the mentorships table, never written directly by callers.
type Student struct {
	ID                 string        `db:"id" json:"id"`
	RollNumber         int64         `db:"roll_number" json:"roll_number"`
	RegistrationNumber int64         `db:"registration_number" json:"registration_number"`
	Name               string        `db:"name" json:"name"`
	CollegeEmail       string        `db:"college_email" json:"college_email"`
	PersonalEmail      string        `db:"personal_email" json:"personal_email"`
	Phone              string        `db:"phone" json:"phone"`
	DOB                time.Time     `db:"dob" json:"dob"`
	Gender             string        `db:"gender" json:"gender"`
	Community          string        `db:"community" json:"community"`
	Address            string        `db:"address" json:"address"`
	Program            string        `db:"program" json:"program"`
	Branch             string        `db:"branch" json:"branch"`
	Department         string        `db:"department" json:"department"`
	BloodGroup         string        `db:"blood_group" json:"blood_group"`
	DayScholar         bool          `db:"day_scholar" json:"day_scholar"`
	FatherName         string        `db:"father_name" json:"father_name"`
	FatherOccupation   string        `db:"father_occupation" json:"father_occupation,omitempty"`
	MotherName         string        `db:"mother_name" json:"mother_name"`
	MotherOccupation   string        `db:"mother_occupation" json:"mother_occupation,omitempty"`
	EmergencyContact   string        `db:"emergency_contact" json:"emergency_contact"`
	XMarks             float64       `db:"x_marks" json:"x_marks"`
	XIIMarks           float64       `db:"xii_marks" json:"xii_marks"`
	JEEMains           float64       `db:"jee_mains" json:"jee_mains"`
	JEEAdvanced        *float64      `db:"jee_advanced" json:"jee_advanced,omitempty"`
	Status             StudentStatus `db:"status" json:"status"`
	AccountStatus      AccountStatus `db:"account_status" json:"account_status"`
	MentorID           *string       `db:"mentor_id" json:"mentor_id,omitempty"`
	CreatedAt          time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at" json:"updated_at"`
}

// CreateStudentRequest is the payload for enrolling a student.
type CreateStudentRequest struct {
	RollNumber         int64    `json:"roll_number" validate:"required,gt=0"`
	RegistrationNumber int64    `json:"registration_number" validate:"required,gt=0"`
	Name               string   `json:"name" validate:"required,max=120"`
	CollegeEmail       string   `json:"college_email" validate:"required,email"`
	PersonalEmail      string   `json:"personal_email" validate:"omitempty,email"`
	Phone              string   `json:"phone" validate:"omitempty,max=20"`
	DOB                string   `json:"dob" validate:"required"`
	Gender             string   `json:"gender" validate:"required"`
	Community          string   `json:"community"`
	Address            string   `json:"address"`
	Program            string   `json:"program" validate:"required"`
	Branch             string   `json:"branch" validate:"required"`
	Department         string   `json:"department" validate:"required"`
	BloodGroup         string   `json:"blood_group"`
	DayScholar         bool     `json:"day_scholar"`
	FatherName         string   `json:"father_name"`
	FatherOccupation   string   `json:"father_occupation"`
	MotherName         string   `json:"mother_name"`
	MotherOccupation   string   `json:"mother_occupation"`
	EmergencyContact   string   `json:"emergency_contact"`
	XMarks             float64  `json:"x_marks" validate:"gte=0,lte=100"`
	XIIMarks           float64  `json:"xii_marks" validate:"gte=0,lte=100"`
	JEEMains           float64  `json:"jee_mains" validate:"gte=0"`
	JEEAdvanced        *float64 `json:"jee_advanced"`
	Password           string   `json:"password" validate:"required,min=8"`
}

// UpdateStudentRequest is the payload for editing a student record. All
// fields are optional; the student service drops fields the caller's role
// may not touch instead of rejecting the request.
type UpdateStudentRequest struct {
	Name             *string        `json:"name" validate:"omitempty,max=120"`
	PersonalEmail    *string        `json:"personal_email" validate:"omitempty,email"`
	Phone            *string        `json:"phone" validate:"omitempty,max=20"`
	Gender           *string        `json:"gender"`
	Community        *string        `json:"community"`
	Address          *string        `json:"address"`
	Program          *string        `json:"program"`
	Branch           *string        `json:"branch"`
	Department       *string        `json:"department"`
	BloodGroup       *string        `json:"blood_group"`
	DayScholar       *bool          `json:"day_scholar"`
	FatherName       *string        `json:"father_name"`
	FatherOccupation *string        `json:"father_occupation"`
	MotherName       *string        `json:"mother_name"`
	MotherOccupation *string        `json:"mother_occupation"`
	EmergencyContact *string        `json:"emergency_contact"`
	XMarks           *float64       `json:"x_marks" validate:"omitempty,gte=0,lte=100"`
	XIIMarks         *float64       `json:"xii_marks" validate:"omitempty,gte=0,lte=100"`
	JEEMains         *float64       `json:"jee_mains" validate:"omitempty,gte=0"`
	JEEAdvanced      *float64       `json:"jee_advanced"`
	Status           *StudentStatus `json:"status" validate:"omitempty,oneof=PURSUING GRADUATED"`
	AccountStatus    *AccountStatus `json:"account_status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

// StudentFilter captures query parameters for listing students. Department
// and MentorIDs are set by the access policy, not by callers.
type StudentFilter struct {
	Search     string
	Department string
	MentorID   string
	IDs        []string
	Status     *StudentStatus
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
