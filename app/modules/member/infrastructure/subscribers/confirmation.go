// Package membersubscribers reacts to member track events.
package membersubscribers

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/mail"
	"strings"

	memberservice "github.com/Black-And-White-Club/clubhouse/app/modules/member/application"
	"github.com/Black-And-White-Club/clubhouse/internal/email"
	"github.com/Black-And-White-Club/clubhouse/internal/eventbus"
	"github.com/Black-And-White-Club/clubhouse/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

const confirmationHandlerName = "member-checkin-confirmation"

// Subscriber registers handlers on the event bus.
type Subscriber interface {
	Subscribe(handlerName, topic string, h eventbus.HandlerFunc)
}

// ConfirmationNotifier emails a member after each check-in.
type ConfirmationNotifier struct {
	sender email.Sender
	from   mail.Address
	logger *slog.Logger
	tracer trace.Tracer
}

// NewConfirmationNotifier creates a ConfirmationNotifier sending from from.
func NewConfirmationNotifier(sender email.Sender, from mail.Address, logger *slog.Logger, tracer trace.Tracer) *ConfirmationNotifier {
	return &ConfirmationNotifier{sender: sender, from: from, logger: logger, tracer: tracer}
}

// Register subscribes the notifier to recorded check-ins.
func (n *ConfirmationNotifier) Register(bus Subscriber) {
	bus.Subscribe(confirmationHandlerName, memberservice.TopicCheckinRecorded, n.HandleCheckinRecorded)
}

// HandleCheckinRecorded sends the confirmation. An undecodable payload or a
// member without an email is dropped; a send failure is returned for retry.
func (n *ConfirmationNotifier) HandleCheckinRecorded(ctx context.Context, msg *message.Message) error {
	ctx, span := n.tracer.Start(ctx, "ConfirmationNotifier.HandleCheckinRecorded")
	defer span.End()

	evt, err := eventbus.Decode[memberservice.CheckinRecorded](msg)
	if err != nil {
		n.logger.ErrorContext(ctx, "Discarding malformed check-in event",
			attr.ExtractCorrelationID(ctx),
			attr.String("message_uuid", msg.UUID),
			attr.Error(err),
		)
		return nil
	}
	if strings.TrimSpace(evt.MemberEmail) == "" {
		n.logger.WarnContext(ctx, "Member has no email, skipping confirmation",
			attr.ExtractCorrelationID(ctx),
			attr.String("member_id", evt.MemberID),
		)
		return nil
	}

	id, err := n.sender.Send(ctx, confirmationMessage(n.from, evt))
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to send check-in confirmation: %w", err)
	}

	n.logger.InfoContext(ctx, "Check-in confirmation sent",
		attr.ExtractCorrelationID(ctx),
		attr.String("member_id", evt.MemberID),
		attr.String("event_id", evt.EventID),
		attr.String("message_id", id),
	)
	return nil
}

func confirmationMessage(from mail.Address, evt *memberservice.CheckinRecorded) email.Message {
	when := evt.CheckinTime.Format("Mon Jan 2, 3:04 PM MST")
	greeting := "Hi"
	if evt.MemberName != "" {
		greeting = "Hi " + evt.MemberName
	}
	return email.Message{
		From:    from,
		To:      []mail.Address{{Name: evt.MemberName, Address: evt.MemberEmail}},
		Subject: fmt.Sprintf("You're checked in: %s", evt.EventName),
		Text:    fmt.Sprintf("%s,\n\nYour check-in to %s was recorded at %s.\n", greeting, evt.EventName, when),
		HTML: fmt.Sprintf("<p>%s,</p><p>Your check-in to <strong>%s</strong> was recorded at %s.</p>",
			html.EscapeString(greeting), html.EscapeString(evt.EventName), html.EscapeString(when)),
	}
}
