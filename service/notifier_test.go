package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academy-scheduler/constant"
	"academy-scheduler/dto"
	"academy-scheduler/entities"
)

func addUser(repo *fakeRepo, name, address string) uuid.UUID {
	id := uuid.New()
	user := &entities.User{ID: id, PushEnabled: true}
	if name != "" {
		user.DisplayName = &name
	}
	if address != "" {
		user.Email = &address
	}
	repo.users[id] = user
	return id
}

func reminderMessage(userIds ...uuid.UUID) dto.NotificationMessage {
	at := time.Date(2026, time.September, 7, 16, 0, 0, 0, time.UTC)
	return dto.NotificationMessage{
		Kind: constant.NotificationClassReminder,
		Session: dto.SessionSnapshot{
			SessionId:   uuid.New(),
			Title:       "Business Ethics",
			ScheduledAt: &at,
			JoinUrl:     "https://rooms.example/ethics",
		},
		UserIds:      userIds,
		MinutesUntil: 30,
	}
}

func TestDispatch_FanOutIsolation(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	u1 := addUser(repo, "Amina", "amina@example.com")
	u2 := addUser(repo, "Brian", "brian@example.com")
	u3 := addUser(repo, "Chipo", "chipo@example.com")

	pushSender := &fakePush{}
	emailSender := &fakeEmail{failFor: map[string]bool{"brian@example.com": true}}
	svc := NewNotifierService(repo, pushSender, emailSender)

	summary, err := svc.Dispatch(context.Background(), reminderMessage(u1, u2, u3))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Attempted)
	assert.Equal(t, 3, summary.PushSent)
	assert.Equal(t, 0, summary.PushFailed)
	assert.Equal(t, 2, summary.EmailSent)
	assert.Equal(t, 1, summary.EmailFailed)

	// Recipients 1 and 3 still got their email.
	require.Len(t, emailSender.sent, 2)
	assert.Equal(t, "amina@example.com", emailSender.sent[0].to)
	assert.Equal(t, "chipo@example.com", emailSender.sent[1].to)
}

func TestDispatch_PushGatewayOutageDoesNotBlockEmail(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	u1 := addUser(repo, "Amina", "amina@example.com")
	u2 := addUser(repo, "Brian", "brian@example.com")

	pushSender := &fakePush{err: errors.New("gateway unreachable")}
	emailSender := &fakeEmail{}
	svc := NewNotifierService(repo, pushSender, emailSender)

	summary, err := svc.Dispatch(context.Background(), reminderMessage(u1, u2))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.PushFailed)
	assert.Equal(t, 0, summary.PushSent)
	assert.Equal(t, 2, summary.EmailSent)
}

func TestDispatch_PerRecipientPushFailureIsCounted(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	u1 := addUser(repo, "Amina", "amina@example.com")
	u2 := addUser(repo, "Brian", "brian@example.com")

	pushSender := &fakePush{failFor: map[uuid.UUID]bool{u2: true}}
	emailSender := &fakeEmail{}
	svc := NewNotifierService(repo, pushSender, emailSender)

	summary, err := svc.Dispatch(context.Background(), reminderMessage(u1, u2))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.PushSent)
	assert.Equal(t, 1, summary.PushFailed)
	assert.Equal(t, 2, summary.EmailSent)
}

func TestDispatch_NameFallsBackToStudent(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	anonymous := addUser(repo, "", "anon@example.com")

	pushSender := &fakePush{}
	emailSender := &fakeEmail{}
	svc := NewNotifierService(repo, pushSender, emailSender)

	_, err := svc.Dispatch(context.Background(), reminderMessage(anonymous))
	require.NoError(t, err)

	require.Len(t, emailSender.sent, 1)
	assert.Equal(t, "Student", emailSender.sent[0].toName)
	assert.Contains(t, emailSender.sent[0].html, "Hi Student")
}

func TestDispatch_MissingEmailAddressIsCountedNotFatal(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	noEmail := addUser(repo, "Amina", "")
	withEmail := addUser(repo, "Brian", "brian@example.com")

	pushSender := &fakePush{}
	emailSender := &fakeEmail{}
	svc := NewNotifierService(repo, pushSender, emailSender)

	summary, err := svc.Dispatch(context.Background(), reminderMessage(noEmail, withEmail))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.EmailSent)
	assert.Equal(t, 1, summary.EmailFailed)
	assert.Equal(t, 2, summary.PushSent)
}

func TestDispatch_EmptyBatch(t *testing.T) {
	t.Parallel()

	svc := NewNotifierService(newFakeRepo(), &fakePush{}, &fakeEmail{})

	summary, err := svc.Dispatch(context.Background(), reminderMessage())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Attempted)
}

func TestRenderEmailBody_ReminderContent(t *testing.T) {
	t.Parallel()

	msg := reminderMessage(uuid.New())
	html := renderEmailBody("Amina", msg)

	assert.Contains(t, html, "Business Ethics")
	assert.Contains(t, html, "starts in 30 minutes")
	// Start time is rendered on the regional clock (16:00 UTC = 18:00).
	assert.Contains(t, html, "18:00")
	assert.Contains(t, html, "https://rooms.example/ethics")
}
