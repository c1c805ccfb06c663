package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/eventfootprint/eventfootprint/internal/intake"
)

// PublisherConfig holds configuration for the Pub/Sub publisher.
type PublisherConfig struct {
	ProjectID string
	TopicID   string
	Logger    zerolog.Logger
}

// PubSubPublisher publishes submission messages to a Pub/Sub topic.
type PubSubPublisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	logger    zerolog.Logger
}

var _ intake.Notifier = (*PubSubPublisher)(nil)

// NewPubSubPublisher connects to Pub/Sub.
func NewPubSubPublisher(ctx context.Context, cfg PublisherConfig) (*PubSubPublisher, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &PubSubPublisher{
		client:    client,
		publisher: client.Publisher(cfg.TopicID),
		logger:    cfg.Logger,
	}, nil
}

// SubmissionCompleted publishes a submission_completed message and waits for
// the server to acknowledge it.
func (p *PubSubPublisher) SubmissionCompleted(ctx context.Context, r *intake.Receipt) error {
	return p.Publish(ctx, FromReceipt(r, time.Now()))
}

// Publish sends one message.
func (p *PubSubPublisher) Publish(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"type":  msg.Type,
			"event": msg.EventSlug,
		},
	})

	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("publishing %s: %w", msg.Type, err)
	}

	p.logger.Debug().Str("message_id", id).Str("type", msg.Type).Msg("message published")
	return nil
}

// Close flushes pending messages and closes the client.
func (p *PubSubPublisher) Close() error {
	p.publisher.Stop()
	return p.client.Close()
}

// LogNotifier logs submissions instead of publishing them. It is used when
// Pub/Sub is not configured.
type LogNotifier struct {
	Logger zerolog.Logger
}

var _ intake.Notifier = LogNotifier{}

// SubmissionCompleted logs the message that would have been published.
func (n LogNotifier) SubmissionCompleted(_ context.Context, r *intake.Receipt) error {
	msg := FromReceipt(r, time.Now())
	n.Logger.Debug().
		Str("type", msg.Type).
		Str("event", msg.EventSlug).
		Str("submission_id", msg.SubmissionID).
		Float64("footprint_kg", msg.FootprintKg).
		Msg("pubsub disabled, notification not published")
	return nil
}
