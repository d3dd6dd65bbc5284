package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"academy-scheduler/constant"
	"academy-scheduler/dto"
	"academy-scheduler/entities"
	"academy-scheduler/pkg/llm"
	"academy-scheduler/pkg/rabbitmq"
	"academy-scheduler/pkg/video"
	"academy-scheduler/repository"
)

const recordingSyncBatchSize = 50

type RecordingService interface {
	SyncOnce(ctx context.Context) error
}

type recordingService struct {
	repo      repository.SessionRepository
	rooms     video.Provider
	archiver  Archiver
	llm       llm.Gateway
	publisher rabbitmq.Publisher
}

// NewRecordingService wires the recording reconciler. llmGateway may be nil;
// summaries are then skipped.
func NewRecordingService(
	repo repository.SessionRepository,
	rooms video.Provider,
	archiver Archiver,
	llmGateway llm.Gateway,
	publisher rabbitmq.Publisher,
) RecordingService {
	return &recordingService{
		repo:      repo,
		rooms:     rooms,
		archiver:  archiver,
		llm:       llmGateway,
		publisher: publisher,
	}
}

// SyncOnce reconciles ended sessions that still lack a recording against the
// provider's recording index. "Still processing" and "nothing yet" are both
// normal; only acceptance mutates the session, and only once.
func (s *recordingService) SyncOnce(ctx context.Context) error {
	sessions, err := s.repo.FindEndedWithoutRecording(ctx, recordingSyncBatchSize)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to query sessions awaiting recordings")
		return err
	}
	if len(sessions) == 0 {
		return nil
	}

	var accepted, pending, missing int
	for _, session := range sessions {
		switch outcome := s.syncSession(ctx, session); outcome {
		case syncAccepted:
			accepted++
		case syncPending:
			pending++
		default:
			missing++
		}
	}

	zerolog.Ctx(ctx).Info().
		Int("checked", len(sessions)).
		Int("accepted", accepted).
		Int("pending", pending).
		Int("missing", missing).
		Msg("recording sync pass finished")

	return nil
}

type syncOutcome int

const (
	syncMissing syncOutcome = iota
	syncPending
	syncAccepted
)

func (s *recordingService) syncSession(ctx context.Context, session *entities.Session) syncOutcome {
	recordings, err := s.rooms.ListRecordings(ctx, session.MeetingRoomName)
	if err != nil {
		// Transient provider trouble: the next pass retries.
		zerolog.Ctx(ctx).Warn().Err(err).Str("session_id", session.ID.String()).Msg("failed to list recordings")
		return syncPending
	}

	var finished *video.Recording
	sawProcessing := false
	for i := range recordings {
		rec := &recordings[i]
		if rec.Status == video.RecordingStatusFinished && rec.DownloadLink != "" {
			finished = rec
			break
		}
		if rec.Status == video.RecordingStatusInProgress {
			sawProcessing = true
		}
	}

	if finished == nil {
		if sawProcessing {
			return syncPending
		}
		return syncMissing
	}

	url := finished.DownloadLink
	objectName, err := s.archiver.Archive(ctx, session.ID, finished.DownloadLink)
	if err != nil {
		// Archive failure downgrades to the provider link; the session must
		// not stay stuck behind a storage outage.
		zerolog.Ctx(ctx).Warn().Err(err).Str("session_id", session.ID.String()).Msg("failed to archive recording, keeping provider link")
		objectName = ""
	}

	if err := s.repo.UpdateSessionRecording(ctx, session.ID, url, finished.Duration, objectName); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("session_id", session.ID.String()).Msg("failed to persist recording")
		return syncPending
	}

	zerolog.Ctx(ctx).Info().
		Str("session_id", session.ID.String()).
		Str("recording_id", finished.Id).
		Int("duration_seconds", finished.Duration).
		Msg("recording accepted")

	s.summarize(ctx, session, finished.Id)
	s.announceRecording(ctx, session, url)

	return syncAccepted
}

// summarize is best effort end to end: no transcript, no gateway, or a
// garbled completion all leave the session without a summary.
func (s *recordingService) summarize(ctx context.Context, session *entities.Session, recordingId string) {
	if s.llm == nil {
		return
	}

	transcript, err := s.rooms.GetTranscript(ctx, recordingId)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("session_id", session.ID.String()).Msg("transcript not available")
		return
	}
	if transcript == "" {
		return
	}

	summary, err := BuildSummary(ctx, s.llm, session.Title, transcript)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("session_id", session.ID.String()).Msg("summary generation failed")
		return
	}

	keyPoints, topics := encodeStringList(summary.KeyPoints), encodeStringList(summary.TopicsCovered)
	if err := s.repo.UpdateSessionSummary(ctx, session.ID, summary.Summary, keyPoints, topics); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("session_id", session.ID.String()).Msg("failed to persist summary")
	}
}

func (s *recordingService) announceRecording(ctx context.Context, session *entities.Session, url string) {
	if session.CourseId == nil {
		return
	}

	enrollments, err := s.repo.ListActiveEnrollments(ctx, *session.CourseId)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("course_id", session.CourseId.String()).Msg("failed to list enrollments for recording announcement")
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
		Kind: constant.NotificationRecordingReady,
		Session: dto.SessionSnapshot{
			SessionId: session.ID,
			Title:     session.Title,
		},
		UserIds:      userIds,
		RecordingUrl: url,
	}
	if err := s.publisher.PublishNotification(ctx, msg); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("session_id", session.ID.String()).Msg("failed to publish recording announcement")
	}
}
