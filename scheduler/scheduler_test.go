package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"academy-scheduler/config"
)

type nopReminder struct{}

func (nopReminder) ScanOnce(ctx context.Context) error { return nil }

type nopRecording struct{}

func (nopRecording) SyncOnce(ctx context.Context) error { return nil }

func TestScheduler_RegistersBothJobs(t *testing.T) {
	s := New(config.Schedules{
		ReminderScan:  "*/2 * * * *",
		RecordingSync: "*/10 * * * *",
	}, nopReminder{}, nopRecording{})

	s.Start(context.Background())
	defer s.Stop()

	assert.Len(t, s.cron.Entries(), 2)
}

func TestScheduler_BadExpressionDoesNotPanic(t *testing.T) {
	s := New(config.Schedules{
		ReminderScan:  "not a cron expression",
		RecordingSync: "*/10 * * * *",
	}, nopReminder{}, nopRecording{})

	s.Start(context.Background())
	defer s.Stop()

	// The valid job still runs; the bad one is logged and dropped.
	assert.Len(t, s.cron.Entries(), 1)
}
