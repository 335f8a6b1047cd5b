package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "ex.notifications"
	QueueName    = "q.lead_created"
	DLQName      = "q.lead_created.dlq"
	DLXName      = "ex.notifications.dlx"
	RoutingKey   = "k.lead_created"
)

// RabbitMQ is a durable broker-backed Queue and Worker. Failed jobs are
// dead-lettered instead of requeued.
type RabbitMQ struct {
	Conn   *amqp.Connection
	Ch     *amqp.Channel
	logger *slog.Logger
}

func NewRabbitMQ(uri string, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("[RabbitMQ] dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("[RabbitMQ] open channel: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("[RabbitMQ] topology: %w", err)
	}

	return &RabbitMQ{Conn: conn, Ch: ch, logger: logger}, nil
}

func setupTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(DLXName, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(DLQName, true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.QueueBind(DLQName, RoutingKey, DLXName, false, nil); err != nil {
		return err
	}

	args := amqp.Table{
		"x-dead-letter-exchange":    DLXName,
		"x-dead-letter-routing-key": RoutingKey,
	}
	if err := ch.ExchangeDeclare(ExchangeName, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, args); err != nil {
		return err
	}
	return ch.QueueBind(QueueName, RoutingKey, ExchangeName, false, nil)
}

func (r *RabbitMQ) Enqueue(ctx context.Context, job LeadCreated) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("[RabbitMQ] encode job: %w", err)
	}

	err = r.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("[RabbitMQ] publish: %w", err)
	}
	return nil
}

func (r *RabbitMQ) Run(ctx context.Context, handle HandlerFunc) error {
	msgs, err := r.Ch.ConsumeWithContext(ctx, QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("[RabbitMQ] consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("[RabbitMQ] delivery channel closed")
			}
			r.deliver(ctx, d, handle)
		}
	}
}

func (r *RabbitMQ) deliver(ctx context.Context, d amqp.Delivery, handle HandlerFunc) {
	var job LeadCreated
	if err := json.Unmarshal(d.Body, &job); err != nil {
		r.logger.Error("discarding malformed notification", "error", err)
		d.Nack(false, false)
		return
	}

	if err := handle(ctx, job); err != nil {
		r.logger.Error("notification job failed", "lead_id", job.LeadID, "error", err)
		d.Nack(false, false)
		return
	}
	d.Ack(false)
}

func (r *RabbitMQ) Close() {
	r.Ch.Close()
	r.Conn.Close()
}
