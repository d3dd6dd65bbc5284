package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"academy-scheduler/constant"
	"academy-scheduler/dto"
	"academy-scheduler/entities"
	"academy-scheduler/pkg/rabbitmq"
	"academy-scheduler/pkg/video"
	"academy-scheduler/recurrence"
	"academy-scheduler/repository"
)

// Room bookings outlive the class start by this much before the provider
// reclaims them.
const roomExpiryGrace = 4 * time.Hour

type RolloverService interface {
	Rollover(ctx context.Context, endedSessionId uuid.UUID) (*dto.RolloverResult, error)
}

type rolloverService struct {
	repo      repository.SessionRepository
	rooms     video.Provider
	publisher rabbitmq.Publisher
	now       func() time.Time
}

func NewRolloverService(repo repository.SessionRepository, rooms video.Provider, publisher rabbitmq.Publisher) RolloverService {
	return &rolloverService{
		repo:      repo,
		rooms:     rooms,
		publisher: publisher,
		now:       time.Now,
	}
}

// Rollover creates the next occurrence of an ended recurring session. It is
// safe to call repeatedly for the same session: the successor's
// preceding_session_id uniqueness guarantees a single occurrence per lineage.
func (s *rolloverService) Rollover(ctx context.Context, endedSessionId uuid.UUID) (*dto.RolloverResult, error) {
	ended, err := s.repo.FindSessionById(ctx, endedSessionId)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("session_id", endedSessionId.String()).Msg("failed to load ended session")
		return nil, err
	}

	if !ended.HasRecurrenceRule() {
		zerolog.Ctx(ctx).Debug().Str("session_id", endedSessionId.String()).Msg("session is not recurring, skipping rollover")
		return &dto.RolloverResult{Created: false, Reason: "not recurring"}, nil
	}

	if existing, err := s.repo.FindSuccessor(ctx, ended.ID); err != nil {
		return nil, err
	} else if existing != nil {
		zerolog.Ctx(ctx).Info().
			Str("session_id", endedSessionId.String()).
			Str("successor_id", existing.ID.String()).
			Msg("successor already exists")
		return &dto.RolloverResult{
			Created:     false,
			Reason:      "successor exists",
			SessionId:   existing.ID,
			ScheduledAt: existing.ScheduledAt,
		}, nil
	}

	next, err := recurrence.NextOccurrence(*ended.RecurrenceDay, *ended.RecurrenceTime, s.now())
	if err != nil {
		// Bad rule data on one session must not poison the webhook batch.
		zerolog.Ctx(ctx).Error().Err(err).Str("session_id", endedSessionId.String()).Msg("invalid recurrence rule")
		return &dto.RolloverResult{Created: false, Reason: "invalid recurrence rule"}, nil
	}

	roomName, roomUrl := s.provisionRoom(ctx, next)

	successor := cloneForNextOccurrence(ended, next, roomName, roomUrl)
	created, err := s.repo.CreateSuccessor(ctx, successor)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("session_id", endedSessionId.String()).Msg("failed to persist successor")
		return nil, err
	}
	if !created {
		existing, err := s.repo.FindSuccessor(ctx, ended.ID)
		if err != nil || existing == nil {
			return &dto.RolloverResult{Created: false, Reason: "successor exists"}, err
		}
		return &dto.RolloverResult{
			Created:     false,
			Reason:      "successor exists",
			SessionId:   existing.ID,
			ScheduledAt: existing.ScheduledAt,
		}, nil
	}

	zerolog.Ctx(ctx).Info().
		Str("session_id", endedSessionId.String()).
		Str("successor_id", successor.ID.String()).
		Time("scheduled_at", next).
		Msg("recurring session rolled over")

	s.announceSuccessor(ctx, successor)

	return &dto.RolloverResult{
		Created:     true,
		SessionId:   successor.ID,
		ScheduledAt: successor.ScheduledAt,
	}, nil
}

// provisionRoom asks the video provider for a fresh room. A provider outage
// falls back to a synthesized name so the successor still gets created; the
// room becomes usable once someone recreates it manually.
func (s *rolloverService) provisionRoom(ctx context.Context, occurrence time.Time) (string, string) {
	name := fmt.Sprintf("academy-%s", uuid.New().String()[:8])
	room, err := s.rooms.CreateRoom(ctx, name, occurrence.Add(roomExpiryGrace))
	if err != nil {
		fallback := fmt.Sprintf("academy-%d", s.now().Unix())
		zerolog.Ctx(ctx).Warn().Err(err).Str("fallback_room", fallback).Msg("room provisioning failed, using fallback name")
		return fallback, ""
	}
	return room.Name, room.Url
}

func cloneForNextOccurrence(ended *entities.Session, next time.Time, roomName, roomUrl string) *entities.Session {
	scheduledAt := next
	return &entities.Session{
		ID:                    uuid.New(),
		Title:                 ended.Title,
		Description:           ended.Description,
		CourseId:              ended.CourseId,
		HostId:                ended.HostId,
		Status:                constant.SessionStatusScheduled,
		ScheduledAt:           &scheduledAt,
		IsRecurring:           true,
		RecurrenceDay:         ended.RecurrenceDay,
		RecurrenceTime:        ended.RecurrenceTime,
		RecurrenceDescription: ended.RecurrenceDescription,
		PrecedingSessionId:    &ended.ID,
		MeetingRoomName:       roomName,
		MeetingRoomUrl:        roomUrl,
		PriceAmount:           ended.PriceAmount,
		PriceCurrency:         ended.PriceCurrency,
		IsPurchasable:         ended.IsPurchasable,
	}
}

// announceSuccessor is best effort: the successor row is already committed and
// a publish failure only costs the announcement.
func (s *rolloverService) announceSuccessor(ctx context.Context, successor *entities.Session) {
	if successor.CourseId == nil {
		return
	}

	enrollments, err := s.repo.ListActiveEnrollments(ctx, *successor.CourseId)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("course_id", successor.CourseId.String()).Msg("failed to list enrollments for announcement")
		return
	}
	if len(enrollments) == 0 {
		return
	}

	userIds := make([]uuid.UUID, 0, len(enrollments))
	for _, e := range enrollments {
		userIds = append(userIds, e.UserId)
	}

	msg := dto.NotificationMessage{
		Kind: constant.NotificationClassScheduled,
		Session: dto.SessionSnapshot{
			SessionId:   successor.ID,
			Title:       successor.Title,
			ScheduledAt: successor.ScheduledAt,
			JoinUrl:     successor.MeetingRoomUrl,
		},
		UserIds: userIds,
	}
	if err := s.publisher.PublishNotification(ctx, msg); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("session_id", successor.ID.String()).Msg("failed to publish schedule announcement")
	}
}
