// Package notify is the outbound notification layer. Send publishes a
// single delivery request to the message broker; there is no retry logic
// and callers decide whether a failed dispatch fails their request. The
// system keeps a persisted access code valid even when its notification
// could not be sent, so the user can ask for a resend without the code
// they may already have received being invalidated.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/employee-task-hub/internal/queue"
)

// Channel selects the transport for a notification.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// ErrProviderUnavailable means no broker is configured or reachable, so
// the notification cannot even be handed off.
var ErrProviderUnavailable = errors.New("notification provider unavailable")

// ErrDeliveryRejected means the broker accepted the connection but
// refused the publication.
var ErrDeliveryRejected = errors.New("notification delivery rejected")

// Dispatcher delivers one access code to one destination. Implementations
// make a single synchronous attempt.
type Dispatcher interface {
	Send(ctx context.Context, ch Channel, destination, code, purpose string) error
}

// QueueDispatcher hands notifications to RabbitMQ. Each Send dials the
// broker, publishes one persistent message to the notify.dispatch queue
// and closes the connection; the delivery worker on the other side owns
// the real email/SMS transport.
type QueueDispatcher struct {
	url string
}

// NewQueueDispatcher reads the broker URL from RABBITMQ_URL or AMQP_URL.
// An empty URL is allowed; Send will then report ErrProviderUnavailable.
func NewQueueDispatcher() *QueueDispatcher {
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		url = os.Getenv("AMQP_URL")
	}
	return &QueueDispatcher{url: url}
}

// Send publishes a NotificationEvent. Errors are logged here and returned
// so the caller can choose to ignore them.
func (d *QueueDispatcher) Send(ctx context.Context, ch Channel, destination, code, purpose string) error {
	if d.url == "" {
		return ErrProviderUnavailable
	}
	conn, err := amqp.Dial(d.url)
	if err != nil {
		log.Printf("notify: dial broker failed: %v", err)
		return ErrProviderUnavailable
	}
	defer func() { _ = conn.Close() }()

	channel, err := conn.Channel()
	if err != nil {
		log.Printf("notify: channel open failed: %v", err)
		return ErrProviderUnavailable
	}
	defer func() { _ = channel.Close() }()

	// Ensure the queue exists (idempotent). Durable so pending deliveries
	// survive broker restarts.
	if _, err := channel.QueueDeclare(q.NotifyQueueName, true, false, false, false, nil); err != nil {
		log.Printf("notify: queue declare failed: %v", err)
		return ErrDeliveryRejected
	}

	ev := q.NotificationEvent{
		Channel:     string(ch),
		Destination: destination,
		Code:        code,
		Purpose:     purpose,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("notify: marshal event failed: %v", err)
		return ErrDeliveryRejected
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := channel.PublishWithContext(ctx, "", q.NotifyQueueName, false, false, pub); err != nil {
		log.Printf("notify: publish failed: %v", err)
		return ErrDeliveryRejected
	}
	return nil
}
