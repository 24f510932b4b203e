package mailer

import "context"

// Address identifies one recipient.
type Address struct {
	Name  string
	Email string
}

// Message is a single outbound email.
type Message struct {
	To       []Address
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer delivers messages through an external email provider.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
