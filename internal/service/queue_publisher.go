// Package queue_publisher publishes domain events to RabbitMQ.  Errors
// are logged and returned so callers can ignore broker failures without
// interrupting the request flow that produced the event.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/matchday/ticket-office/internal/queue"
)

// PublishTicketsIssued publishes a TicketsIssuedEvent to the
// ticket.issued queue. Messages are marked persistent.
func PublishTicketsIssued(ctx context.Context, event q.TicketsIssuedEvent) error {
	return publish(ctx, q.TicketsIssuedQueue, event)
}

// PublishMatchSimulated publishes a MatchSimulatedEvent to the
// match.simulated queue.
func PublishMatchSimulated(ctx context.Context, event q.MatchSimulatedEvent) error {
	return publish(ctx, q.MatchSimulatedQueue, event)
}

// publish dials the broker per call. Event volume is low (one message
// per purchase or simulation) so a short-lived connection keeps the
// publisher free of channel state and reconnect bookkeeping.
func publish(ctx context.Context, queueName string, event any) error {
	conn, err := amqp.Dial(q.BrokerURL())
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
