// Package mail implements the email dispatch collaborator. The core
// never retries a failed dispatch; callers decide whether a failure is
// fatal (credential recovery), soft (OTP issuance), or merely logged
// (signup welcome).
package mail

import "context"

// Attachment is an in-memory file attached to a message.
type Attachment struct {
	Filename string
	MIMEType string
	Content  []byte
}

// Message is one outbound email.
type Message struct {
	To          string
	Subject     string
	TextBody    string
	HTMLBody    string
	Attachments []Attachment
}

// Dispatcher sends messages to an external mail relay.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) error
}

// Noop is a Dispatcher that silently accepts every message. It backs
// tests and mail-disabled deployments.
type Noop struct{}

// Send discards the message.
func (Noop) Send(context.Context, Message) error { return nil }
