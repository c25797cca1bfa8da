// Package events carries item events over Watermill.
//
// With EVENTS_DATABASE_URL set, events are stored in PostgreSQL by the
// Watermill SQL transport and consumed by the <service>-consumer group, so
// each event reaches one worker and survives restarts. Without it an
// in-process GoChannel is used and every local subscriber sees every event.
//
// Handlers must be idempotent: a failing handler is retried with exponential
// backoff and the message is then nacked.
package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/ghuser/lostfound/pkg/config"
	"github.com/ghuser/lostfound/pkg/logger"
)

// Metadata keys set on every published event.
const (
	MetaEventID      = "event_id"
	MetaEventVersion = "event_version"
	MetaContentType  = "content_type"
)

const (
	maxRetries      = 3
	retryBaseDelay  = time.Second
	shutdownTimeout = 30 * time.Second
	channelBuffer   = 100
	errBuffer       = 100
)

// ErrUnsupportedVersion is returned by Decode for events newer than the
// consumer understands.
var ErrUnsupportedVersion = errors.New("events: unsupported event version")

// Handler processes one message. Returning an error triggers a retry.
type Handler = func(context.Context, *message.Message) error

// EventBus publishes and consumes item events.
type EventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	db         *sql.DB // nil for the in-process transport
	log        logger.Logger
	inflight   sync.WaitGroup
}

// NewEventBus returns the SQL-backed bus when cfg.EventsDatabaseURL is set
// and the in-process bus otherwise. The SQL schema is created on first use.
func NewEventBus(cfg *config.Config, log logger.Logger) (*EventBus, error) {
	if cfg.EventsDatabaseURL == "" {
		return NewInProcessEventBus(log), nil
	}
	db, err := sql.Open("pgx", cfg.EventsDatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("events: open db: %w", err)
	}
	pub, sub, err := newSQLTransport(db, cfg.ServiceName+"-consumer", &slogAdapter{log: log})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &EventBus{publisher: pub, subscriber: sub, db: db, log: log}, nil
}

func newSQLTransport(db *sql.DB, consumerGroup string, wlog watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error) {
	pub, err := watermillsql.NewPublisher(db, watermillsql.PublisherConfig{
		SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
		AutoInitializeSchema: true,
	}, wlog)
	if err != nil {
		return nil, nil, fmt.Errorf("events: new publisher: %w", err)
	}
	sub, err := watermillsql.NewSubscriber(db, watermillsql.SubscriberConfig{
		SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
		OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
		ConsumerGroup:    consumerGroup,
	}, wlog)
	if err != nil {
		_ = pub.Close()
		return nil, nil, fmt.Errorf("events: new subscriber: %w", err)
	}
	return pub, sub, nil
}

// NewInProcessEventBus returns a bus backed by a Watermill GoChannel.
func NewInProcessEventBus(log logger.Logger) *EventBus {
	ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: channelBuffer}, &slogAdapter{log: log})
	return &EventBus{publisher: ch, subscriber: ch, log: log}
}

// PublishJSON publishes payload as JSON on topic. The event id doubles as
// the message UUID so redeliveries of one event share an identity.
func (b *EventBus) PublishJSON(ctx context.Context, topic, eventID string, version int, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("events: marshal %s: %w", topic, err)
	}
	if eventID == "" {
		eventID = watermill.NewUUID()
	}
	msg := message.NewMessage(eventID, data)
	msg.Metadata.Set(MetaEventID, eventID)
	msg.Metadata.Set(MetaEventVersion, strconv.Itoa(version))
	msg.Metadata.Set(MetaContentType, "application/json")
	return b.Publish(ctx, topic, msg)
}

// Publish sends msgs to topic with the caller's trace context injected into
// their metadata.
func (b *EventBus) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for _, msg := range msgs {
		for k, v := range carrier {
			msg.Metadata.Set(k, v)
		}
	}
	if err := b.publisher.Publish(topic, msgs...); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe runs handler for every message on topic until ctx is done or the
// bus is closed. The handler context carries the publisher's trace.
//
// A message is acked when the handler succeeds and nacked after maxRetries
// failures; the final error is sent on the returned channel, which callers
// must drain. Close waits for in-flight handlers.
func (b *EventBus) Subscribe(ctx context.Context, topic string, handler Handler) (<-chan error, error) {
	msgs, err := b.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe to %s: %w", topic, err)
	}

	errCh := make(chan error, errBuffer)
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		defer close(errCh)
		for msg := range msgs {
			b.dispatch(ctx, topic, msg, handler, errCh)
		}
	}()
	return errCh, nil
}

func (b *EventBus) dispatch(ctx context.Context, topic string, msg *message.Message, handler Handler, errCh chan<- error) {
	msgCtx := otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(msg.Metadata))

	err := retryWithBackoff(msgCtx, msg, handler, maxRetries, retryBaseDelay, b.log)
	if err == nil {
		msg.Ack()
		return
	}
	msg.Nack()
	select {
	case errCh <- fmt.Errorf("%s %s: %w", topic, msg.Metadata.Get(MetaEventID), err):
	default:
		b.log.ErrorContext(msgCtx, "events: error channel full, dropping error", "error", err, "topic", topic)
	}
}

// retryWithBackoff calls handler up to attempts times, doubling the delay
// between tries, and returns the last error.
func retryWithBackoff(
	ctx context.Context,
	msg *message.Message,
	handler Handler,
	attempts int,
	baseDelay time.Duration,
	log logger.Logger,
) error {
	delay := baseDelay
	var err error
	for attempt := 1; ; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		if attempt >= attempts {
			return fmt.Errorf("events: handler failed after %d attempts: %w", attempts, err)
		}
		log.WarnContext(ctx, "events: handler failed, retrying",
			"attempt", attempt,
			"max_attempts", attempts,
			"next_delay", delay,
			"event_id", msg.Metadata.Get(MetaEventID),
			"error", err,
		)
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}

// Decode unmarshals the JSON payload of msg into v. Events stamped with a
// version above maxVersion are rejected with ErrUnsupportedVersion; events
// without a version are accepted.
func Decode(msg *message.Message, v any, maxVersion int) error {
	if raw := msg.Metadata.Get(MetaEventVersion); raw != "" {
		version, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("events: bad %s %q: %w", MetaEventVersion, raw, err)
		}
		if version > maxVersion {
			return fmt.Errorf("%w: %d > %d", ErrUnsupportedVersion, version, maxVersion)
		}
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("events: decode payload: %w", err)
	}
	return nil
}

// Ping implements httpx.HealthChecker. The in-process transport is always healthy.
func (b *EventBus) Ping(ctx context.Context) error {
	if b.db == nil {
		return nil
	}
	if err := b.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close stops the subscriber, waits up to shutdownTimeout for in-flight
// handlers, then closes the publisher and the database.
func (b *EventBus) Close() error {
	if err := b.subscriber.Close(); err != nil {
		return fmt.Errorf("events: close subscriber: %w", err)
	}

	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		b.log.Error("events: timed out waiting for in-flight handlers")
	}

	if err := b.publisher.Close(); err != nil {
		return fmt.Errorf("events: close publisher: %w", err)
	}
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// slogAdapter routes Watermill's own logging through logger.Logger.
type slogAdapter struct{ log logger.Logger }

func (a *slogAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(fieldsToArgs(fields), "error", err)...)
}

func (a *slogAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Info(msg, fieldsToArgs(fields)...)
}

func (a *slogAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}

func (a *slogAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}

func (a *slogAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &slogAdapter{log: a.log.With(fieldsToArgs(fields)...)}
}

func fieldsToArgs(fields watermill.LogFields) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
