package handler

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"academy-scheduler/dto"
	"academy-scheduler/service"
)

type ServiceDependencies struct {
	NotifierService service.NotifierService
}

// NotificationHandler consumes one queued audience batch and fans it out.
// Partial delivery failures are already absorbed by the dispatcher; an error
// here means the message itself was unusable or the subsystem is down.
func NotificationHandler(ctx context.Context, msg amqp.Delivery, deps ServiceDependencies) error {
	var notification dto.NotificationMessage
	if err := json.Unmarshal(msg.Body, &notification); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal notification message")
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("kind", string(notification.Kind)).
		Str("session_id", notification.Session.SessionId.String()).
		Int("recipients", len(notification.UserIds)).
		Msg("received notification message")

	_, err := deps.NotifierService.Dispatch(ctx, notification)
	if err != nil {
		return err
	}

	return nil
}
