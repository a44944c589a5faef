package notify

import "context"

// Notifier delivers a message to a user's address. Callers treat delivery
// failures as non-fatal: they are logged and never abort the triggering
// operation.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}
