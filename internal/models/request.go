package models

import "time"

// RequestStatus is the approval workflow state. APPROVED and REJECTED are
// terminal; a decided request is immutable apart from audit notes.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// Decided reports whether the request has reached a terminal state.
func (s RequestStatus) Decided() bool {
	return s == RequestApproved || s == RequestRejected
}

// Request is a generic approval record raised by a student or faculty
// member and decided by an admin, the department HOD, or the targeted
// faculty member.
type Request struct {
	ID                   string        `db:"id" json:"id"`
	RequesterPrincipalID string        `db:"requester_principal_id" json:"requester_principal_id"`
	TargetPrincipalID    *string       `db:"target_principal_id" json:"target_principal_id,omitempty"`
	Type                 string        `db:"type" json:"type"`
	Description          string        `db:"description" json:"description"`
	Department           string        `db:"department" json:"department"`
	Status               RequestStatus `db:"status" json:"status"`
	ReviewNotes          string        `db:"review_notes" json:"review_notes,omitempty"`
	ReviewedBy           *string       `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt           *time.Time    `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt            time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time     `db:"updated_at" json:"updated_at"`
}

// CreateRequestRequest is the payload for raising an approval request.
type CreateRequestRequest struct {
	Type              string  `json:"type" validate:"required,max=60"`
	Description       string  `json:"description" validate:"required,max=2000"`
	TargetPrincipalID *string `json:"target_principal_id" validate:"omitempty,uuid"`
}

// DecideRequestRequest is the payload for approving or rejecting a
// pending request.
type DecideRequestRequest struct {
	Status RequestStatus `json:"status" validate:"required,oneof=APPROVED REJECTED"`
	Notes  string        `json:"notes" validate:"max=1000"`
}

// RequestFilter captures query parameters for listing requests. Scope
// fields are set by the access policy.
type RequestFilter struct {
	RequesterPrincipalID string
	TargetPrincipalID    string
	Department           string
	Status               *RequestStatus
	Page                 int
	PageSize             int
}
