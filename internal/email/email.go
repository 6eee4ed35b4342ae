// Package email dispatches transactional mail.
package email

import (
	"context"
	"errors"
	"net/mail"
)

// ErrNoRecipients is returned when a message has nobody to go to.
var ErrNoRecipients = errors.New("email has no recipients")

// Message is one outbound email.
type Message struct {
	From    mail.Address
	To      []mail.Address
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}
