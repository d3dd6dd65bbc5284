package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"academy-scheduler/config"
	"academy-scheduler/service"
)

// Scheduler drives the periodic jobs: the reminder window scan and the
// recording sync pass.
type Scheduler struct {
	cron      *cron.Cron
	reminders service.ReminderService
	recording service.RecordingService
	schedules config.Schedules
}

func New(schedules config.Schedules, reminders service.ReminderService, recording service.RecordingService) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		reminders: reminders,
		recording: recording,
		schedules: schedules,
	}
}

// Start registers the jobs and runs the cron loop in the background. The jobs
// inherit ctx so in-flight passes observe shutdown.
func (s *Scheduler) Start(ctx context.Context) {
	logger := zerolog.Ctx(ctx)

	if _, err := s.cron.AddFunc(s.schedules.ReminderScan, func() {
		if err := s.reminders.ScanOnce(ctx); err != nil {
			logger.Error().Err(err).Msg("reminder scan failed")
		}
	}); err != nil {
		logger.Error().Err(err).Str("schedule", s.schedules.ReminderScan).Msg("failed to schedule reminder scan")
	} else {
		logger.Info().Str("schedule", s.schedules.ReminderScan).Msg("scheduled reminder scan")
	}

	if _, err := s.cron.AddFunc(s.schedules.RecordingSync, func() {
		if err := s.recording.SyncOnce(ctx); err != nil {
			logger.Error().Err(err).Msg("recording sync failed")
		}
	}); err != nil {
		logger.Error().Err(err).Str("schedule", s.schedules.RecordingSync).Msg("failed to schedule recording sync")
	} else {
		logger.Info().Str("schedule", s.schedules.RecordingSync).Msg("scheduled recording sync")
	}

	s.cron.Start()
}

// Stop halts scheduling and returns once running jobs complete.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
