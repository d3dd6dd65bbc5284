package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"academy-scheduler/constant"
	"academy-scheduler/dto"
	"academy-scheduler/entities"
	"academy-scheduler/pkg/rabbitmq"
	"academy-scheduler/repository"
)

// The scan tolerance absorbs poll jitter: a session is reminded when its
// start falls within lead±tolerance of the scan instant.
const windowTolerance = 2 * time.Minute

var reminderWindows = []constant.WindowKind{
	constant.WindowThirtyMinute,
	constant.WindowFiveMinute,
}

type ReminderService interface {
	ScanOnce(ctx context.Context) error
}

type reminderService struct {
	repo      repository.SessionRepository
	publisher rabbitmq.Publisher
	now       func() time.Time
}

func NewReminderService(repo repository.SessionRepository, publisher rabbitmq.Publisher) ReminderService {
	return &reminderService{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
}

// ScanOnce walks both reminder windows and queues one reminder batch per
// session that has not yet been claimed for that window. Per-session failures
// are logged and skipped so one bad row cannot stall the rest of the scan.
func (s *reminderService) ScanOnce(ctx context.Context) error {
	now := s.now().UTC()

	for _, window := range reminderWindows {
		lead := time.Duration(window.Minutes()) * time.Minute
		from := now.Add(lead - windowTolerance)
		to := now.Add(lead + windowTolerance)

		sessions, err := s.repo.FindScheduledBetween(ctx, from, to)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("window", window.String()).Msg("failed to query reminder window")
			return err
		}

		for _, session := range sessions {
			if err := s.remind(ctx, session, window); err != nil {
				zerolog.Ctx(ctx).Error().Err(err).
					Str("session_id", session.ID.String()).
					Str("window", window.String()).
					Msg("failed to dispatch reminder")
			}
		}
	}

	return nil
}

func (s *reminderService) remind(ctx context.Context, session *entities.Session, window constant.WindowKind) error {
	if session.CourseId == nil {
		return nil
	}

	// Claim the window before queuing anything; losing the claim means a
	// concurrent scan already owns it.
	claimed, err := s.repo.MarkReminderDispatched(ctx, session.ID, window)
	if err != nil {
		return err
	}
	if !claimed {
		zerolog.Ctx(ctx).Debug().
			Str("session_id", session.ID.String()).
			Str("window", window.String()).
			Msg("reminder window already dispatched")
		return nil
	}

	enrollments, err := s.repo.ListActiveEnrollments(ctx, *session.CourseId)
	if err != nil {
		return err
	}
	if len(enrollments) == 0 {
		return nil
	}

	userIds := make([]uuid.UUID, 0, len(enrollments))
	for _, e := range enrollments {
		userIds = append(userIds, e.UserId)
	}

	msg := dto.NotificationMessage{
		Kind: constant.NotificationClassReminder,
		Session: dto.SessionSnapshot{
			SessionId:   session.ID,
			Title:       session.Title,
			ScheduledAt: session.ScheduledAt,
			JoinUrl:     session.MeetingRoomUrl,
		},
		UserIds:      userIds,
		MinutesUntil: window.Minutes(),
	}
	if err := s.publisher.PublishNotification(ctx, msg); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("session_id", session.ID.String()).
		Str("window", window.String()).
		Int("recipients", len(userIds)).
		Msg("reminder dispatched")

	return nil
}
