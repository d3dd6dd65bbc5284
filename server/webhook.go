package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"academy-scheduler/dto"
	"academy-scheduler/entities"
	"academy-scheduler/service"
)

type sessionStore interface {
	FindSessionByRoomName(ctx context.Context, roomName string) (*entities.Session, error)
	MarkSessionLive(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkSessionEnded(ctx context.Context, id uuid.UUID, at time.Time) error
}

type webhookHandler struct {
	repo     sessionStore
	rollover service.RolloverService
}

// handleRoomEvent receives the video provider's lifecycle events. The
// provider retries on non-2xx, so unknown rooms are acknowledged and ignored
// rather than rejected.
func (h *webhookHandler) handleRoomEvent(c *gin.Context) {
	ctx := c.Request.Context()

	var event dto.RoomEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	session, err := h.repo.FindSessionByRoomName(ctx, event.Room)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("room", event.Room).Msg("failed to look up session for room event")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if session == nil {
		zerolog.Ctx(ctx).Debug().Str("room", event.Room).Str("type", event.Type).Msg("room event for unknown room")
		c.JSON(http.StatusOK, gin.H{"ignored": true})
		return
	}

	at := time.Now().UTC()
	if event.Timestamp > 0 {
		at = time.Unix(event.Timestamp, 0).UTC()
	}

	switch event.Type {
	case dto.RoomEventSessionStarted:
		if err := h.repo.MarkSessionLive(ctx, session.ID, at); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("session_id", session.ID.String()).Msg("failed to mark session live")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "live"})

	case dto.RoomEventSessionEnded:
		if err := h.repo.MarkSessionEnded(ctx, session.ID, at); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("session_id", session.ID.String()).Msg("failed to mark session ended")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			return
		}

		result, err := h.rollover.Rollover(ctx, session.ID)
		if err != nil {
			// The status transition is committed; the provider's retry will
			// reach the rollover's idempotency guard, not duplicate it.
			zerolog.Ctx(ctx).Error().Err(err).Str("session_id", session.ID.String()).Msg("rollover failed")
			c.JSON(http.StatusOK, gin.H{"status": "ended", "rollover": "failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ended", "rollover": result})

	default:
		c.JSON(http.StatusOK, gin.H{"ignored": true})
	}
}
