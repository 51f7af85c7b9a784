// Package kafka publishes fulfillment domain events to Kafka topics.
// Events are emitted after the producing transaction commits; consumers on
// the warehouse side (notifications, analytics, the order directory) treat
// them as facts, so the payloads carry identifiers and denormalized context
// rather than full aggregates.
package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
)

// Topic names, one per event family.
const (
	TopicShipments     = "fulfillment.shipments"
	TopicPickups       = "fulfillment.pickups"
	TopicStaleEscalate = "fulfillment.pickups.stale"
)

// messageWriter abstracts the kafka-go writer for testing.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventPublisher implements ports.EventPublisher on top of kafka-go.
// One writer serves all topics; the topic is set per message.
type EventPublisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewEventPublisher creates a publisher writing to the given brokers.
func NewEventPublisher(brokers []string, logger *slog.Logger) (*EventPublisher, error) {
	if len(brokers) == 0 {
		return nil, errs.NewValueIsRequiredError("brokers")
	}
	if logger == nil {
		return nil, errs.NewValueIsRequiredError("logger")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}

	return &EventPublisher{
		writer: writer,
		logger: logger.With("component", "kafka_publisher"),
	}, nil
}

// newEventPublisherWithWriter wires a custom writer, used by tests.
func newEventPublisherWithWriter(writer messageWriter, logger *slog.Logger) *EventPublisher {
	return &EventPublisher{writer: writer, logger: logger.With("component", "kafka_publisher")}
}

// Close flushes and closes the underlying writer.
func (p *EventPublisher) Close() error {
	return p.writer.Close()
}

// shipmentCreatedMessage is the wire form of a shipment creation event.
type shipmentCreatedMessage struct {
	EventType      string    `json:"event_type"`
	ShipmentID     string    `json:"shipment_id"`
	OrderIDs       []string  `json:"order_ids"`
	Carrier        string    `json:"carrier"`
	Service        string    `json:"service"`
	TrackingNumber string    `json:"tracking_number"`
	CostCents      int64     `json:"cost_cents"`
	Forced         bool      `json:"forced"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// PublishShipmentCreated emits a shipment creation fact, keyed by shipment ID.
func (p *EventPublisher) PublishShipmentCreated(ctx context.Context, event ports.ShipmentCreatedEvent) error {
	orderIDs := make([]string, 0, len(event.OrderIDs))
	for _, id := range event.OrderIDs {
		orderIDs = append(orderIDs, id.String())
	}

	return p.publish(ctx, TopicShipments, event.ShipmentID.String(), shipmentCreatedMessage{
		EventType:      "shipment_created",
		ShipmentID:     event.ShipmentID.String(),
		OrderIDs:       orderIDs,
		Carrier:        event.Carrier,
		Service:        event.Service,
		TrackingNumber: event.TrackingNumber,
		CostCents:      event.CostCents,
		Forced:         event.Forced,
		OccurredAt:     event.OccurredAt,
	})
}

// shipmentStatusChangedMessage is the wire form of a status change event.
type shipmentStatusChangedMessage struct {
	EventType  string    `json:"event_type"`
	ShipmentID string    `json:"shipment_id"`
	Previous   string    `json:"previous"`
	Current    string    `json:"current"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PublishShipmentStatusChanged emits a status transition fact, keyed by shipment ID.
func (p *EventPublisher) PublishShipmentStatusChanged(
	ctx context.Context,
	event ports.ShipmentStatusChangedEvent,
) error {
	return p.publish(ctx, TopicShipments, event.ShipmentID.String(), shipmentStatusChangedMessage{
		EventType:  "shipment_status_changed",
		ShipmentID: event.ShipmentID.String(),
		Previous:   event.Previous.String(),
		Current:    event.Current.String(),
		OccurredAt: event.OccurredAt,
	})
}

// pickupAssignedMessage is the wire form of a pickup assignment event.
type pickupAssignedMessage struct {
	EventType    string    `json:"event_type"`
	AssignmentID string    `json:"assignment_id"`
	ShelfID      string    `json:"shelf_id"`
	OrderID      string    `json:"order_id"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// PublishPickupAssigned emits a pickup assignment fact, keyed by order ID so
// all pickup events of one order land in the same partition.
func (p *EventPublisher) PublishPickupAssigned(ctx context.Context, event ports.PickupAssignedEvent) error {
	return p.publish(ctx, TopicPickups, event.OrderID.String(), pickupAssignedMessage{
		EventType:    "pickup_assigned",
		AssignmentID: event.AssignmentID.String(),
		ShelfID:      event.ShelfID.String(),
		OrderID:      event.OrderID.String(),
		OccurredAt:   event.OccurredAt,
	})
}

// stalePickupEscalatedMessage is the wire form of a stale pickup escalation.
type stalePickupEscalatedMessage struct {
	EventType    string    `json:"event_type"`
	AssignmentID string    `json:"assignment_id"`
	ShelfID      string    `json:"shelf_id"`
	OrderID      string    `json:"order_id"`
	AssignedAt   time.Time `json:"assigned_at"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// PublishStalePickupEscalated emits an escalation alert, keyed by order ID.
func (p *EventPublisher) PublishStalePickupEscalated(
	ctx context.Context,
	event ports.StalePickupEscalatedEvent,
) error {
	return p.publish(ctx, TopicStaleEscalate, event.OrderID.String(), stalePickupEscalatedMessage{
		EventType:    "stale_pickup_escalated",
		AssignmentID: event.AssignmentID.String(),
		ShelfID:      event.ShelfID.String(),
		OrderID:      event.OrderID.String(),
		AssignedAt:   event.AssignedAt,
		OccurredAt:   event.OccurredAt,
	})
}

func (p *EventPublisher) publish(ctx context.Context, topic, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		p.logger.Error("Failed to publish event", "topic", topic, "key", key, "error", err)
		return err
	}

	p.logger.Debug("Published event", "topic", topic, "key", key)
	return nil
}
