// Package eventbus carries domain events between modules inside the process.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/clubhouse/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const correlationIDKey = "correlation_id"

// Publisher emits a JSON encoded event on topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// HandlerFunc consumes one event.
type HandlerFunc func(ctx context.Context, msg *message.Message) error

// Bus is a gochannel pub/sub with a watermill router in front of its subscribers.
type Bus struct {
	pubsub *gochannel.GoChannel
	router *message.Router
	logger *slog.Logger
}

// Config tunes handler retries.
type Config struct {
	MaxRetries      int
	InitialInterval time.Duration
}

// New creates a Bus. Handlers are registered with Subscribe before Run.
func New(cfg Config, logger *slog.Logger) (*Bus, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 200 * time.Millisecond
	}

	wmLogger := watermill.NewSlogLogger(logger)
	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 5 * time.Second}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create watermill router: %w", err)
	}

	b := &Bus{pubsub: pubsub, router: router, logger: logger}
	router.AddMiddleware(
		b.dropFailed,
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      cfg.MaxRetries,
			InitialInterval: cfg.InitialInterval,
			Multiplier:      2,
			Logger:          wmLogger,
		}.Middleware,
	)
	return b, nil
}

// Publish marshals payload and publishes it, carrying the request correlation id.
func (b *Bus) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("topic", topic)
	if id := chimiddleware.GetReqID(ctx); id != "" {
		msg.Metadata.Set(correlationIDKey, id)
	}

	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe registers h for topic under a unique handler name.
func (b *Bus) Subscribe(handlerName, topic string, h HandlerFunc) {
	b.router.AddNoPublisherHandler(handlerName, topic, b.pubsub, func(msg *message.Message) error {
		ctx := msg.Context()
		if id := msg.Metadata.Get(correlationIDKey); id != "" {
			ctx = context.WithValue(ctx, chimiddleware.RequestIDKey, id)
		}
		return h(ctx, msg)
	})
}

// Run blocks until ctx is cancelled or the router stops.
func (b *Bus) Run(ctx context.Context) error {
	return b.router.Run(ctx)
}

// Running is closed once every handler is subscribed.
func (b *Bus) Running() chan struct{} {
	return b.router.Running()
}

// Close stops the router and the pub/sub.
func (b *Bus) Close() error {
	if err := b.router.Close(); err != nil {
		return fmt.Errorf("failed to close router: %w", err)
	}
	return b.pubsub.Close()
}

// dropFailed acks messages whose handler still fails after retries. Events are
// fire-and-forget, so a poison message must not be redelivered forever.
func (b *Bus) dropFailed(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		out, err := h(msg)
		if err != nil {
			b.logger.ErrorContext(msg.Context(), "Dropping event after handler failure",
				attr.String("message_uuid", msg.UUID),
				attr.String("topic", msg.Metadata.Get("topic")),
				attr.String(correlationIDKey, msg.Metadata.Get(correlationIDKey)),
				attr.Error(err),
			)
			return nil, nil
		}
		return out, nil
	}
}

// Decode unmarshals an event payload.
func Decode[T any](msg *message.Message) (*T, error) {
	var v T
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return nil, fmt.Errorf("failed to decode event payload: %w", err)
	}
	return &v, nil
}

var _ Publisher = (*Bus)(nil)
