package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"academy-scheduler/constant"
	"academy-scheduler/dto"
	"academy-scheduler/pkg/email"
	"academy-scheduler/pkg/push"
	"academy-scheduler/recurrence"
	"academy-scheduler/repository"
)

const fallbackRecipientName = "Student"

type NotifierService interface {
	Dispatch(ctx context.Context, msg dto.NotificationMessage) (*dto.DispatchSummary, error)
}

type notifierService struct {
	repo  repository.SessionRepository
	push  push.Sender
	email email.Sender
}

func NewNotifierService(repo repository.SessionRepository, pushSender push.Sender, emailSender email.Sender) NotifierService {
	return &notifierService{
		repo:  repo,
		push:  pushSender,
		email: emailSender,
	}
}

// Dispatch fans one audience batch out over push and email. The channels are
// independent and so are the recipients: every failure is counted, none
// aborts the rest of the batch.
func (s *notifierService) Dispatch(ctx context.Context, msg dto.NotificationMessage) (*dto.DispatchSummary, error) {
	summary := &dto.DispatchSummary{Attempted: len(msg.UserIds)}
	if len(msg.UserIds) == 0 {
		return summary, nil
	}

	title, body := renderTexts(msg)

	s.dispatchPush(ctx, msg, title, body, summary)
	s.dispatchEmail(ctx, msg, title, summary)

	zerolog.Ctx(ctx).Info().
		Str("kind", string(msg.Kind)).
		Str("session_id", msg.Session.SessionId.String()).
		Int("attempted", summary.Attempted).
		Int("push_sent", summary.PushSent).
		Int("push_failed", summary.PushFailed).
		Int("email_sent", summary.EmailSent).
		Int("email_failed", summary.EmailFailed).
		Msg("notification batch dispatched")

	return summary, nil
}

func (s *notifierService) dispatchPush(ctx context.Context, msg dto.NotificationMessage, title, body string, summary *dto.DispatchSummary) {
	results, err := s.push.Send(ctx, msg.UserIds, push.Notification{
		Title: title,
		Body:  body,
		Data: map[string]string{
			"sessionId": msg.Session.SessionId.String(),
			"joinUrl":   msg.Session.JoinUrl,
		},
	})
	if err != nil {
		// Gateway outage: every push in the batch failed, email proceeds.
		zerolog.Ctx(ctx).Warn().Err(err).Msg("push gateway unavailable")
		summary.PushFailed = len(msg.UserIds)
		return
	}

	for _, r := range results {
		if r.Err != nil {
			zerolog.Ctx(ctx).Debug().Err(r.Err).Str("user_id", r.UserId.String()).Msg("push delivery failed")
			summary.PushFailed++
			continue
		}
		summary.PushSent++
	}
}

func (s *notifierService) dispatchEmail(ctx context.Context, msg dto.NotificationMessage, subject string, summary *dto.DispatchSummary) {
	for _, userId := range msg.UserIds {
		name := fallbackRecipientName
		address := ""
		user, err := s.repo.FindUserById(ctx, userId)
		if err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Str("user_id", userId.String()).Msg("failed to resolve recipient profile")
		} else {
			if user.DisplayName != nil && *user.DisplayName != "" {
				name = *user.DisplayName
			}
			if user.Email != nil {
				address = *user.Email
			}
		}

		if address == "" {
			summary.EmailFailed++
			continue
		}

		html := renderEmailBody(name, msg)
		if err := s.email.Send(ctx, address, name, subject, html); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("user_id", userId.String()).Msg("email delivery failed")
			summary.EmailFailed++
			continue
		}
		summary.EmailSent++
	}
}

func renderTexts(msg dto.NotificationMessage) (title, body string) {
	switch msg.Kind {
	case constant.NotificationClassReminder:
		title = fmt.Sprintf("%s starts in %d minutes", msg.Session.Title, msg.MinutesUntil)
		body = "Tap to join your live class."
	case constant.NotificationClassScheduled:
		title = fmt.Sprintf("New class scheduled: %s", msg.Session.Title)
		body = "Your next session has been added to the calendar."
		if msg.Session.ScheduledAt != nil {
			body = fmt.Sprintf("Next session on %s.", recurrence.FormatRegional(*msg.Session.ScheduledAt))
		}
	case constant.NotificationRecordingReady:
		title = fmt.Sprintf("Recording available: %s", msg.Session.Title)
		body = "The class recording is ready to watch."
	default:
		title = msg.Session.Title
		body = "You have a new update from LMV Academy."
	}
	return title, body
}

func renderEmailBody(name string, msg dto.NotificationMessage) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	if name != "" {
		fmt.Fprintf(&b, "<p>Hi %s,</p>", name)
	}

	switch msg.Kind {
	case constant.NotificationClassReminder:
		fmt.Fprintf(&b, "<p><strong>%s</strong> starts in %d minutes.</p>", msg.Session.Title, msg.MinutesUntil)
	case constant.NotificationClassScheduled:
		fmt.Fprintf(&b, "<p>A new session of <strong>%s</strong> has been scheduled.</p>", msg.Session.Title)
	case constant.NotificationRecordingReady:
		fmt.Fprintf(&b, "<p>The recording of <strong>%s</strong> is now available.</p>", msg.Session.Title)
	default:
		fmt.Fprintf(&b, "<p>Update on <strong>%s</strong>.</p>", msg.Session.Title)
	}

	if msg.Session.ScheduledAt != nil {
		fmt.Fprintf(&b, "<p>Starts %s.</p>", recurrence.FormatRegional(*msg.Session.ScheduledAt))
	}
	if msg.Kind == constant.NotificationRecordingReady && msg.RecordingUrl != "" {
		fmt.Fprintf(&b, `<p><a href="%s">Watch the recording</a></p>`, msg.RecordingUrl)
	} else if msg.Session.JoinUrl != "" {
		fmt.Fprintf(&b, `<p><a href="%s">Join the class</a></p>`, msg.Session.JoinUrl)
	}

	b.WriteString("<p>LMV Academy</p></body></html>")
	return b.String()
}
