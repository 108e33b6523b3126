/**
 * @description
 * This package provides a producer for publishing beneficiary lifecycle
 * events to RabbitMQ. Downstream consumers (notification, compliance
 * reporting) subscribe to the topic exchange; the primary audit record
 * always lives in the database, so publishing here is best-effort.
 *
 * @dependencies
 * - context, encoding/json, time: Standard Go libraries.
 * - github.com/rabbitmq/amqp091-go: The RabbitMQ client library.
 * - github.com/google/uuid: For event identifiers.
 */

package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

// ExchangeBeneficiaryEvents is the topic exchange lifecycle events go to.
const ExchangeBeneficiaryEvents = "beneficiary_events"

// AuditEvent is the payload published after a beneficiary mutation has been
// committed and audited.
type AuditEvent struct {
	EventID       uuid.UUID `json:"event_id"`
	BeneficiaryID int64     `json:"beneficiary_id"`
	CustomerID    string    `json:"customer_id"`
	Operation     string    `json:"operation"`
	PerformedBy   string    `json:"performed_by"`
	PerformedAt   time.Time `json:"performed_at"`
}

// Publisher is the interface implemented by types that can publish events.
type Publisher interface {
	PublishAuditEvent(ctx context.Context, event AuditEvent) error
	Close()
}

// EventProducer holds the RabbitMQ connection and channel for publishing.
type EventProducer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// NoopProducer is a minimal no-op publisher used when RabbitMQ is
// unavailable at startup.
type NoopProducer struct{}

func (p *NoopProducer) PublishAuditEvent(ctx context.Context, event AuditEvent) error {
	log.Printf("level=warn component=rabbitmq_producer mode=fallback msg=\"audit event publish skipped\" beneficiary_id=%d operation=%s",
		event.BeneficiaryID, event.Operation)
	return nil
}

func (p *NoopProducer) Close() {}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "\"'")
	// If any stray characters precede the scheme, slice from first occurrence of amqp
	idx := strings.Index(strings.ToLower(clean), "amqp")
	if idx > 0 {
		clean = clean[idx:]
	}
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewEventProducer creates and returns a new EventProducer.
func NewEventProducer(amqpURL string) (*EventProducer, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	// Use a bounded dial timeout so startup does not hang indefinitely
	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &EventProducer{conn: conn, channel: ch}, nil
}

// PublishAuditEvent sends a lifecycle event to the beneficiary events
// exchange, routed as "beneficiary.<operation>".
func (p *EventProducer) PublishAuditEvent(ctx context.Context, event AuditEvent) error {
	if event.EventID == uuid.Nil {
		event.EventID = uuid.New()
	}
	routingKey := "beneficiary." + strings.ToLower(event.Operation)
	return p.publish(ctx, ExchangeBeneficiaryEvents, routingKey, event)
}

// publish sends a message to a specific exchange with a routing key.
func (p *EventProducer) publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	// Ensure the exchange exists (durable topic)
	if err := p.channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // noWait
		nil,      // args
	); err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.channel.PublishWithContext(publishCtx,
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         payload,
		},
	)
}

// Close shuts down the channel and connection.
func (p *EventProducer) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
