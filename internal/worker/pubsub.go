package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/eventfootprint/eventfootprint/internal/notify"
	"github.com/eventfootprint/eventfootprint/internal/submission"
)

// Outcome tells the subscriber what to do with a delivered message.
type Outcome int

// Message outcomes.
const (
	Ack Outcome = iota
	Nack
)

// Dispatcher routes decoded messages to the report job.
type Dispatcher struct {
	job    *ReportJob
	logger zerolog.Logger
}

// NewDispatcher creates a dispatcher over job.
func NewDispatcher(job *ReportJob, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{job: job, logger: logger}
}

// Dispatch handles one raw message. Malformed payloads and transient store
// failures are nacked for redelivery; unknown types and deleted events are
// acked.
func (d *Dispatcher) Dispatch(ctx context.Context, data []byte, logger zerolog.Logger) Outcome {
	startTime := time.Now()

	var msg notify.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		return Nack
	}

	var err error
	switch msg.Type {
	case notify.TypeSubmissionCompleted:
		err = d.handleSubmission(ctx, msg)
	case notify.TypeReportRequested:
		err = d.handleReportRequest(ctx, msg)
	default:
		logger.Warn().Str("type", msg.Type).Msg("unknown message type")
		return Ack
	}

	if errors.Is(err, submission.ErrEventNotFound) {
		logger.Warn().Str("event", msg.EventSlug).Msg("event no longer exists")
		d.job.Forget(msg.EventSlug)
		return Ack
	}
	if err != nil {
		logger.Error().Err(err).Msg("job failed")
		return Nack
	}

	logger.Info().
		Str("type", msg.Type).
		Dur("duration", time.Since(startTime)).
		Msg("job completed successfully")

	return Ack
}

func (d *Dispatcher) handleSubmission(ctx context.Context, msg notify.Message) error {
	if msg.EventSlug == "" {
		return nil
	}

	d.logger.Debug().
		Str("event", msg.EventSlug).
		Str("submission_id", msg.SubmissionID).
		Float64("footprint_kg", msg.FootprintKg).
		Msg("submission received")

	_, err := d.job.Recompute(ctx, msg.EventSlug)
	return err
}

func (d *Dispatcher) handleReportRequest(ctx context.Context, msg notify.Message) error {
	var slugs []string
	if msg.EventSlug != "" {
		slugs = []string{msg.EventSlug}
	}

	result, err := d.job.Run(ctx, slugs)
	if err != nil {
		return err
	}

	if result.Failed > result.Successful {
		return fmt.Errorf("too many report failures: %d/%d", result.Failed, result.Total)
	}
	return nil
}

// PubSubHandler consumes the submissions subscription.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	dispatcher       *Dispatcher
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	Dispatcher       *Dispatcher
	Logger           zerolog.Logger
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)
	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		dispatcher:       cfg.Dispatcher,
		logger:           cfg.Logger,
	}, nil
}

// Start receives messages until ctx is cancelled.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		logger := h.logger.With().
			Str("message_id", msg.ID).
			Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
			Logger()

		logger.Debug().Msg("received pubsub message")

		if h.dispatcher.Dispatch(ctx, msg.Data, logger) == Nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}
