package models

import "time"

// SendMessageRequest is the payload for sending a message.
type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required,uuid"`
	Body       string `json:"body" validate:"required,max=4000"`
}

// Message is a directed note between two principals. Append-only: there is
// no edit or delete operation.
type Message struct {
	ID         string    `db:"id" json:"id"`
	SenderID   string    `db:"sender_id" json:"sender_id"`
	SenderName string    `db:"sender_name" json:"sender_name"`
	ReceiverID string    `db:"receiver_id" json:"receiver_id"`
	Body       string    `db:"body" json:"body"`
	SentAt     time.Time `db:"sent_at" json:"sent_at"`
}
