package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// DefaultQueue is the durable queue reservation events are routed to.
const DefaultQueue = "reservation.events"

// DefaultDialTimeout bounds how long a write request waits on an
// unreachable broker before the event is dropped.
const DefaultDialTimeout = 2 * time.Second

// Publisher sends reservation events to a RabbitMQ queue through the
// default exchange.  Each Publish dials its own connection so that a
// broker outage never leaves the HTTP layer holding a dead channel.
type Publisher struct {
	url         string
	queue       string
	dialTimeout time.Duration
	logger      *logrus.Entry
}

func NewPublisher(url, queue string, logger *logrus.Entry) *Publisher {
	if queue == "" {
		queue = DefaultQueue
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Publisher{
		url:         url,
		queue:       queue,
		dialTimeout: DefaultDialTimeout,
		logger:      logger.WithField("component", "publisher"),
	}
}

// Publish marshals ev and delivers it as a persistent message.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(p.dialTimeout),
	})
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := declare(ch, p.queue); err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	p.logger.WithFields(logrus.Fields{
		"event":          ev.Type,
		"event_id":       ev.ID,
		"reservation_id": ev.ReservationID,
	}).Debug("event published")
	return nil
}

func declare(ch *amqp.Channel, queue string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return q, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return q, nil
}
