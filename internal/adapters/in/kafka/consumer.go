// Package kafka consumes carrier tracking events from the event queue.
// Carriers that cannot call the webhook endpoint push scans through the
// integration service onto a Kafka topic; this consumer feeds them into the
// same command handler the webhook uses.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"
)

// messageReader abstracts the kafka-go reader for testing.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// TrackingEventProcessor is the slice of the tracking command handler the
// consumer needs.
type TrackingEventProcessor interface {
	Handle(ctx context.Context, cmd commands.ProcessTrackingEventCommand) (commands.TrackingResult, error)
}

// trackingEventMessage is the wire form of one queued carrier scan.
type trackingEventMessage struct {
	Carrier        string    `json:"carrier"`
	TrackingNumber string    `json:"tracking_number"`
	Status         string    `json:"status"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// TrackingConsumer reads tracking events and applies them through the command
// handler with a bounded worker pool. Events for different shipments process
// concurrently; per-shipment ordering is preserved by the topic partitioning
// on tracking number upstream.
type TrackingConsumer struct {
	reader  messageReader
	handler TrackingEventProcessor
	workers int
	logger  *slog.Logger
}

// NewTrackingConsumer creates a consumer in the given consumer group.
func NewTrackingConsumer(
	brokers []string,
	topic, groupID string,
	handler TrackingEventProcessor,
	workers int,
	logger *slog.Logger,
) (*TrackingConsumer, error) {
	if len(brokers) == 0 {
		return nil, errs.NewValueIsRequiredError("brokers")
	}
	if topic == "" {
		return nil, errs.NewValueIsRequiredError("topic")
	}
	if groupID == "" {
		return nil, errs.NewValueIsRequiredError("groupID")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	return newTrackingConsumerWithReader(reader, handler, workers, logger)
}

// newTrackingConsumerWithReader wires a custom reader, used by tests.
func newTrackingConsumerWithReader(
	reader messageReader,
	handler TrackingEventProcessor,
	workers int,
	logger *slog.Logger,
) (*TrackingConsumer, error) {
	if handler == nil {
		return nil, errs.NewValueIsRequiredError("handler")
	}
	if workers <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("workers",
			errors.New("worker count must be greater than 0"))
	}
	if logger == nil {
		return nil, errs.NewValueIsRequiredError("logger")
	}

	return &TrackingConsumer{
		reader:  reader,
		handler: handler,
		workers: workers,
		logger:  logger.With("component", "tracking_consumer"),
	}, nil
}

// Run fetches and processes messages until the context is cancelled or the
// reader is closed. It always drains in-flight workers before returning.
func (c *TrackingConsumer) Run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.workers)

loop:
	for {
		msg, err := c.reader.FetchMessage(groupCtx)
		if err != nil {
			if groupCtx.Err() != nil || errors.Is(err, io.EOF) {
				break
			}
			c.logger.Error("Failed to fetch message", "error", err)
			select {
			case <-groupCtx.Done():
				break loop
			case <-time.After(time.Second):
			}
			continue
		}

		group.Go(func() error {
			c.process(groupCtx, msg)
			return nil
		})
	}

	return group.Wait()
}

// Close stops the underlying reader, which unblocks Run.
func (c *TrackingConsumer) Close() error {
	return c.reader.Close()
}

// process applies one queued scan. Malformed and incomplete messages are
// committed without processing; only infrastructure failures leave the
// message uncommitted for redelivery.
func (c *TrackingConsumer) process(ctx context.Context, msg kafka.Message) {
	var event trackingEventMessage
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Warn("Malformed tracking message dropped",
			"topic", msg.Topic, "offset", msg.Offset, "error", err)
		c.commit(ctx, msg)
		return
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	cmd, err := commands.NewProcessTrackingEventCommand(
		event.Carrier, event.TrackingNumber, event.Status, occurredAt, msg.Value)
	if err != nil {
		c.logger.Warn("Incomplete tracking message dropped",
			"topic", msg.Topic, "offset", msg.Offset, "error", err)
		c.commit(ctx, msg)
		return
	}

	result, err := c.handler.Handle(ctx, cmd)
	if err != nil {
		c.logger.Error("Tracking event processing failed, message left for redelivery",
			"tracking_number", event.TrackingNumber, "offset", msg.Offset, "error", err)
		return
	}

	c.logger.Debug("Tracking event consumed",
		"tracking_number", event.TrackingNumber,
		"processed", result.Processed, "status", result.Status.String())
	c.commit(ctx, msg)
}

func (c *TrackingConsumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Failed to commit offset", "offset", msg.Offset, "error", err)
	}
}
