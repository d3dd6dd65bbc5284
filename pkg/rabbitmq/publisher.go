package rabbitmq

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"academy-scheduler/config"
	"academy-scheduler/dto"
)

// Publisher hands notification batches to the queue. Database mutations
// commit before anything is published, so a publish failure can only cost a
// notification, never the primary write.
type Publisher interface {
	PublishNotification(ctx context.Context, msg dto.NotificationMessage) error
}

type publisher struct {
	conn *amqp.Connection
	cfg  *config.RabbitMQ
}

func NewPublisher(ctx context.Context, conn *amqp.Connection, cfg *config.RabbitMQ) (Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(ExchangeName, cfg.Kind, true, false, false, false, nil); err != nil {
		zerolog.Ctx(ctx).Error().Str("exchange", ExchangeName).Msg("failed to declare exchange")
		return nil, err
	}

	return &publisher{conn: conn, cfg: cfg}, nil
}

func (p *publisher) PublishNotification(ctx context.Context, msg dto.NotificationMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	err = ch.PublishWithContext(ctx, ExchangeName, RoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Debug().
		Str("kind", string(msg.Kind)).
		Str("session_id", msg.Session.SessionId.String()).
		Int("recipients", len(msg.UserIds)).
		Msg("notification published")

	return nil
}
