package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Black-And-White-Club/clubhouse/internal/observability/attr"
	"github.com/google/uuid"
)

// ConsoleSender logs messages instead of delivering them.
type ConsoleSender struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []Message
}

// NewConsoleSender creates a ConsoleSender.
func NewConsoleSender(logger *slog.Logger) *ConsoleSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsoleSender{logger: logger}
}

func (c *ConsoleSender) Send(ctx context.Context, msg Message) (string, error) {
	if len(msg.To) == 0 {
		return "", ErrNoRecipients
	}

	to := make([]string, 0, len(msg.To))
	for _, a := range msg.To {
		to = append(to, a.String())
	}
	id := uuid.NewString()

	c.logger.InfoContext(ctx, "Email sent to console",
		attr.String("message_id", id),
		attr.String("from", msg.From.String()),
		attr.String("to", strings.Join(to, ", ")),
		attr.String("subject", msg.Subject),
		attr.String("text", msg.Text),
	)

	c.mu.Lock()
	c.sent = append(c.sent, msg)
	c.mu.Unlock()

	return fmt.Sprintf("console-%s", id), nil
}

// Sent returns every message passed to Send.
func (c *ConsoleSender) Sent() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.sent))
	copy(out, c.sent)
	return out
}

var _ Sender = (*ConsoleSender)(nil)
