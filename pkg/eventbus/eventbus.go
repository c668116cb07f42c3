package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/richxcame/logistics-pricing/pkg/logger"
	"go.uber.org/zap"
)

// Subjects for pricing and ride lifecycle events.
const (
	SubjectPricingConfigUpdated = "pricing.config.updated"
	SubjectCityUpdated          = "pricing.city.updated"

	SubjectFareLocked          = "rides.fare_locked"
	SubjectCancellationCharged = "rides.cancellation_charged"
	SubjectRevenueSplit        = "rides.revenue_split"
)

// Event is the envelope for all events published through the bus.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent creates a new event with a unique ID and current timestamp.
func NewEvent(eventType, source string, data interface{}) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal event data: %w", err)
	}
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}, nil
}

// NewKeyedEvent builds an event whose ID is derived from key, so retried
// lifecycle events collapse into one message under JetStream dedup.
func NewKeyedEvent(eventType, source, key string, data interface{}) (*Event, error) {
	event, err := NewEvent(eventType, source, data)
	if err != nil {
		return nil, err
	}
	event.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(eventType+"/"+key)).String()
	return event, nil
}

// Publisher sends events to a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, event *Event) error
}

// Config holds NATS connection settings.
type Config struct {
	URL        string
	Name       string
	StreamName string
}

// Bus wraps a NATS JetStream connection for publishing.
type Bus struct {
	conn *nats.Conn
	js   jetstream.JetStream
	cfg  Config
}

var _ Publisher = (*Bus)(nil)

// New connects to NATS and ensures the JetStream stream exists.
func New(ctx context.Context, cfg Config) (*Bus, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       cfg.StreamName,
		Subjects:   []string{"pricing.>", "rides.>"},
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.LimitsPolicy,
		MaxAge:     7 * 24 * time.Hour,
		Duplicates: 10 * time.Minute,
		Replicas:   1,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create stream: %w", err)
	}

	logger.Info("NATS event bus connected",
		zap.String("url", cfg.URL),
		zap.String("stream", cfg.StreamName),
	)

	return &Bus{conn: nc, js: js, cfg: cfg}, nil
}

// Publish sends an event to the given subject with JetStream guarantees.
func (b *Bus) Publish(ctx context.Context, subject string, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = b.js.Publish(ctx, subject, data,
		jetstream.WithMsgID(event.ID),
	)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}

	logger.WithContext(ctx).Debug("event published",
		zap.String("subject", subject),
		zap.String("event_id", event.ID),
		zap.String("type", event.Type),
	)
	return nil
}

// Close drains the NATS connection.
func (b *Bus) Close() {
	if b.conn != nil {
		_ = b.conn.Drain()
	}
	logger.Info("NATS event bus closed")
}

// Connected returns true if the NATS connection is active.
func (b *Bus) Connected() bool {
	return b.conn != nil && b.conn.IsConnected()
}

// Discard drops every event; used when NATS is disabled.
type Discard struct{}

// Publish implements Publisher.
func (Discard) Publish(ctx context.Context, subject string, event *Event) error {
	logger.WithContext(ctx).Debug("event bus disabled, dropping event",
		zap.String("subject", subject),
		zap.String("type", event.Type),
	)
	return nil
}
