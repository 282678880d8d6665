package mailer

import "context"

// Sender is the minimal interface email providers implement.
// It accepts a fully-prepared Email and handles the actual delivery.
type Sender interface {
	// Send delivers the message and returns the provider-issued message id.
	Send(ctx context.Context, email *Email) (string, error)
}
