package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"academy-scheduler/config"
	"academy-scheduler/constant"
	jobHandler "academy-scheduler/handler"
	"academy-scheduler/pkg/email"
	"academy-scheduler/pkg/llm"
	"academy-scheduler/pkg/push"
	"academy-scheduler/pkg/rabbitmq"
	"academy-scheduler/pkg/video"
	"academy-scheduler/repository"
	"academy-scheduler/scheduler"
	"academy-scheduler/service"
)

func RunHttp(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Bool("isProduction", cfg.App.Environment == constant.EnvironmentProduction.String()).Send()
	if cfg.App.Environment == constant.EnvironmentProduction.String() {
		gin.SetMode(gin.ReleaseMode)
	}

	conn, err := config.NewRabbitMQConn(ctx, cfg.Queue)
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("NewRabbitMQConn")
	}

	rooms, err := video.NewClient(cfg.Video)
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("video provider configuration")
	}
	pushSender, err := push.NewClient(cfg.Push)
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("push gateway configuration")
	}
	emailSender, err := email.NewSender(cfg.Email)
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("email configuration")
	}

	// Summaries are optional: without a gateway the recording sync simply
	// skips them.
	llmGateway, err := llm.NewClient(cfg.LLM)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("llm gateway not configured, summaries disabled")
		llmGateway = nil
	}

	publisher, err := rabbitmq.NewPublisher(ctx, conn, cfg.Queue)
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("NewPublisher")
	}

	repo := repository.NewRepo(cfg.DB)
	archiver := service.NewArchiver(cfg.Storage, cfg.MinIOBucket)

	rolloverService := service.NewRolloverService(repo, rooms, publisher)
	reminderService := service.NewReminderService(repo, publisher)
	recordingService := service.NewRecordingService(repo, rooms, archiver, llmGateway, publisher)
	notifierService := service.NewNotifierService(repo, pushSender, emailSender)

	serviceDeps := jobHandler.ServiceDependencies{
		NotifierService: notifierService,
	}

	notificationConsumer := rabbitmq.NewConsumer(conn, cfg.Queue, cfg.Server.Workers, jobHandler.NotificationHandler)
	go func() {
		err := notificationConsumer.Consume(ctx, serviceDeps)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("Notification consumer error")
		}
	}()

	jobs := scheduler.New(cfg.Schedules, reminderService, recordingService)
	jobs.Start(ctx)
	defer jobs.Stop()

	webhooks := &webhookHandler{repo: repo, rollover: rolloverService}

	r := gin.Default()
	addHealth(r)
	r.POST("/webhooks/rooms", webhooks.handleRoomEvent)

	handler := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("start http server")
		if err := handler.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
		}
	}()

	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("shutting down server")
	if err := handler.Shutdown(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
	}

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("server shutdown")
}

func addHealth(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})
}

func setupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.Environment == constant.EnvironmentDevelop.String() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Log to standard output
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	return ctx
}
