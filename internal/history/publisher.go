package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// EventType is the message attribute identifying history events.
const EventType = "route_recommended"

// Event is the Pub/Sub payload for a recommended route.
type Event struct {
	Type   string  `json:"type"`
	Record *Record `json:"record"`
}

// PublishFunc sends one message and waits for the server to accept it.
type PublishFunc func(ctx context.Context, data []byte, attrs map[string]string) error

// PubSubPublisher forwards records to a topic instead of writing them to the
// database directly; the worker consumes them into a Repository.
type PubSubPublisher struct {
	publish PublishFunc
	now     func() time.Time
	logger  zerolog.Logger
	close   func() error
}

// PublisherConfig holds configuration for the Pub/Sub publisher.
type PublisherConfig struct {
	ProjectID string
	TopicName string
	Logger    zerolog.Logger
}

// NewPubSubPublisher connects to Pub/Sub and publishes to cfg.TopicName.
func NewPubSubPublisher(ctx context.Context, cfg PublisherConfig) (*PubSubPublisher, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	topic := client.Publisher(cfg.TopicName)

	p := NewPublisher(func(ctx context.Context, data []byte, attrs map[string]string) error {
		_, err := topic.Publish(ctx, &pubsub.Message{Data: data, Attributes: attrs}).Get(ctx)
		return err
	}, cfg.Logger)
	p.close = func() error {
		topic.Stop()
		return client.Close()
	}
	return p, nil
}

// NewPublisher builds a publisher around an arbitrary PublishFunc.
func NewPublisher(publish PublishFunc, logger zerolog.Logger) *PubSubPublisher {
	return &PubSubPublisher{
		publish: publish,
		now:     time.Now,
		logger:  logger,
		close:   func() error { return nil },
	}
}

// Save publishes rec as an Event. The record gets its ID here so the
// consumer can deduplicate redeliveries.
func (p *PubSubPublisher) Save(ctx context.Context, rec *Record) error {
	if err := rec.Prepare(p.now()); err != nil {
		return err
	}

	data, err := json.Marshal(Event{Type: EventType, Record: rec})
	if err != nil {
		return fmt.Errorf("encoding history event: %w", err)
	}

	if err := p.publish(ctx, data, map[string]string{"type": EventType}); err != nil {
		return fmt.Errorf("publishing history event: %w", err)
	}

	p.logger.Debug().
		Str("record_id", rec.ID).
		Msg("published history event")
	return nil
}

// Close flushes pending messages and closes the client.
func (p *PubSubPublisher) Close() error {
	return p.close()
}

// DecodeEvent parses a Pub/Sub payload produced by Save.
func DecodeEvent(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if ev.Type != EventType || ev.Record == nil {
		return nil, fmt.Errorf("%w: unexpected event %q", ErrInvalidRecord, ev.Type)
	}
	return &ev, nil
}
