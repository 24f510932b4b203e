package models

import "time"

// MeetingStatus is the meeting lifecycle state. COMPLETED and CANCELLED
// are terminal.
type MeetingStatus string

const (
	MeetingScheduled MeetingStatus = "SCHEDULED"
	MeetingCompleted MeetingStatus = "COMPLETED"
	MeetingCancelled MeetingStatus = "CANCELLED"
)

// Terminal reports whether no further transitions are allowed.
func (s MeetingStatus) Terminal() bool {
	return s == MeetingCompleted || s == MeetingCancelled
}

// Meeting is a mentor meeting binding a creator to a fixed set of student
// participants. The participant set is immutable after creation; only the
// status and review fields change.
type Meeting struct {
	ID                 string        `db:"id" json:"id"`
	CreatorPrincipalID string        `db:"creator_principal_id" json:"creator_principal_id"`
	CreatorRole        Role          `db:"creator_role" json:"creator_role"`
	FacultyID          *string       `db:"faculty_id" json:"faculty_id,omitempty"`
	HODID              *string       `db:"hod_id" json:"hod_id,omitempty"`
	Department         string        `db:"department" json:"department"`
	Date               time.Time     `db:"date" json:"date"`
	Time               string        `db:"time" json:"time"`
	Description        string        `db:"description" json:"description,omitempty"`
	Status             MeetingStatus `db:"status" json:"status"`
	CancelReason       string        `db:"cancel_reason" json:"cancel_reason,omitempty"`
	Review             string        `db:"review" json:"review,omitempty"`
	StudentIDs         []string      `db:"-" json:"student_ids"`
	CreatedAt          time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at" json:"updated_at"`
}

// CreateMeetingRequest is the payload for scheduling a meeting.
type CreateMeetingRequest struct {
	Date        string   `json:"date" validate:"required"`
	Time        string   `json:"time" validate:"required"`
	Description string   `json:"description" validate:"max=2000"`
	StudentIDs  []string `json:"student_ids" validate:"required,min=1,dive,uuid"`
}

// CancelMeetingRequest is the payload for cancelling a meeting.
type CancelMeetingRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// MeetingReviewRequest is the payload for attaching a review.
type MeetingReviewRequest struct {
	Review string `json:"review" validate:"required,max=2000"`
}

// MeetingFilter captures query parameters for listing meetings. All fields
// besides paging are set by the access policy.
type MeetingFilter struct {
	CreatorPrincipalID string
	ParticipantID      string
	Department         string
	Page               int
	PageSize           int
}
