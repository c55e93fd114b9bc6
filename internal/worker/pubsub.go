// Package worker consumes route history events published by the API.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/greenpath/greenpath/internal/history"
)

// HistoryConsumer moves history events from a Pub/Sub subscription into a
// history.Repository.
type HistoryConsumer struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	repo             history.Repository
	saveTimeout      time.Duration
	logger           zerolog.Logger
}

// ConsumerConfig holds configuration for the history consumer.
type ConsumerConfig struct {
	ProjectID        string
	SubscriptionName string
	Repository       history.Repository

	// SaveTimeout bounds one repository write. Default: 10 seconds
	SaveTimeout time.Duration

	// MaxOutstanding bounds unacknowledged messages. Default: 10
	MaxOutstanding int

	Logger zerolog.Logger
}

// NewHistoryConsumer connects to Pub/Sub. Use NewConsumer for a consumer
// without a subscription.
func NewHistoryConsumer(ctx context.Context, cfg ConsumerConfig) (*HistoryConsumer, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	maxOutstanding := cfg.MaxOutstanding
	if maxOutstanding <= 0 {
		maxOutstanding = 10
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)
	subscriber.ReceiveSettings.MaxOutstandingMessages = maxOutstanding
	subscriber.ReceiveSettings.MaxExtension = time.Minute

	c := NewConsumer(cfg)
	c.client = client
	c.subscriber = subscriber
	return c, nil
}

// NewConsumer builds a consumer that only processes payloads handed to
// Process.
func NewConsumer(cfg ConsumerConfig) *HistoryConsumer {
	saveTimeout := cfg.SaveTimeout
	if saveTimeout <= 0 {
		saveTimeout = 10 * time.Second
	}
	return &HistoryConsumer{
		subscriptionName: cfg.SubscriptionName,
		repo:             cfg.Repository,
		saveTimeout:      saveTimeout,
		logger:           cfg.Logger,
	}
}

// Start receives messages until ctx is cancelled.
func (c *HistoryConsumer) Start(ctx context.Context) error {
	if c.subscriber == nil {
		return errors.New("history consumer has no subscription")
	}

	c.logger.Info().
		Str("subscription", c.subscriptionName).
		Msg("starting history consumer")

	return c.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		c.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (c *HistoryConsumer) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *HistoryConsumer) handleMessage(ctx context.Context, msg *pubsub.Message) {
	logger := c.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	err := c.Process(ctx, msg.Data)
	switch {
	case err == nil:
		msg.Ack()
	case errors.Is(err, history.ErrInvalidRecord):
		// Redelivery cannot fix a malformed event.
		logger.Warn().Err(err).Msg("dropping invalid history event")
		msg.Ack()
	default:
		logger.Error().Err(err).Msg("saving history event failed")
		msg.Nack()
	}
}

// Process decodes one event and saves its record. Errors wrapping
// history.ErrInvalidRecord are permanent; anything else is worth a retry.
func (c *HistoryConsumer) Process(ctx context.Context, data []byte) error {
	start := time.Now()

	ev, err := history.DecodeEvent(data)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.saveTimeout)
	defer cancel()

	if err := c.repo.Save(ctx, ev.Record); err != nil {
		return fmt.Errorf("saving record %s: %w", ev.Record.ID, err)
	}

	c.logger.Debug().
		Str("record_id", ev.Record.ID).
		Dur("duration", time.Since(start)).
		Msg("history event stored")
	return nil
}
