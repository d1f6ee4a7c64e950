package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/offerlookup/offer-backend/models"
)

const amqpPublishTimeout = 10 * time.Second

type ProgressEventPublisher interface {
	PublishProgressEvent(ctx context.Context, event models.ProgressEvent) error
	Close() error
}

type amqpProgressPublisher struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	exchange   string
}

type progressEventMessage struct {
	JobId          string  `json:"job_id"`
	Status         string  `json:"status"`
	Progress       float64 `json:"progress"`
	TotalRecords   int     `json:"total_records"`
	NewRecords     int     `json:"new_records"`
	UpdatedRecords int     `json:"updated_records"`
	ErrorRecords   int     `json:"error_records"`
	CoercedRecords int     `json:"coerced_records"`
	Final          bool    `json:"final"`
}

// NewAmqpProgressPublisher connects to the broker and declares a durable topic exchange. Events are
// published with the routing key "ingestion.<status>".
func NewAmqpProgressPublisher(url, exchange string) (ProgressEventPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial RabbitMQ")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "failed to open a channel")
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.Wrapf(err, "failed to declare exchange '%s'", exchange)
	}

	return &amqpProgressPublisher{
		connection: conn,
		channel:    ch,
		exchange:   exchange,
	}, nil
}

func (p *amqpProgressPublisher) PublishProgressEvent(ctx context.Context, event models.ProgressEvent) error {
	if p.connection.IsClosed() {
		return errors.New("amqp connection is closed")
	}

	body, err := json.Marshal(progressEventMessage{
		JobId:          event.JobId,
		Status:         string(event.Status),
		Progress:       event.ProgressPercentage(),
		TotalRecords:   event.Progress.Total,
		NewRecords:     event.Progress.New,
		UpdatedRecords: event.Progress.Updated,
		ErrorRecords:   event.Progress.Error,
		CoercedRecords: event.Progress.Coerced,
		Final:          event.Final,
	})
	if err != nil {
		return errors.Wrap(err, "failed to marshal progress event")
	}

	ctx, cancel := context.WithTimeout(ctx, amqpPublishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, p.exchange, "ingestion."+string(event.Status), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		MessageId:    event.JobId,
		Body:         body,
	})
	return errors.Wrap(err, "failed to publish progress event")
}

func (p *amqpProgressPublisher) Close() error {
	var firstErr error
	if err := p.channel.Close(); err != nil {
		firstErr = err
	}
	if err := p.connection.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
