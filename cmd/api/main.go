package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	_ "github.com/lib/pq"

	"github.com/mypts/profile-api/internal/channel/email"
	"github.com/mypts/profile-api/internal/channel/push"
	"github.com/mypts/profile-api/internal/channel/telegram"
	"github.com/mypts/profile-api/internal/config"
	"github.com/mypts/profile-api/internal/handler"
	eventHandler "github.com/mypts/profile-api/internal/handler/event"
	notificationHandler "github.com/mypts/profile-api/internal/handler/notification"
	userHandler "github.com/mypts/profile-api/internal/handler/user"
	"github.com/mypts/profile-api/internal/middleware"
	"github.com/mypts/profile-api/internal/repository/postgres"
	"github.com/mypts/profile-api/internal/router"
	notificationService "github.com/mypts/profile-api/internal/service/notification"
	userService "github.com/mypts/profile-api/internal/service/user"
	"github.com/mypts/profile-api/pkg/logger"
	"github.com/mypts/profile-api/pkg/messaging/redis"
	"github.com/mypts/profile-api/pkg/metrics"
	"github.com/mypts/profile-api/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	appLogger := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Pretty:     cfg.Logger.Pretty,
	})
	log.Logger = appLogger.ZL

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	baseRepo := postgres.NewBaseRepository(db)
	notificationRepo := postgres.NewNotificationRepository(baseRepo)
	userRepo := postgres.NewUserRepository(baseRepo)
	profileRepo := postgres.NewProfileRepository(baseRepo)

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: time.Duration(cfg.Redis.RetryBackoffMS) * time.Millisecond,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &appLogger.ZL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	emailSender, err := email.NewSMTPSender(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.Notifications.AppName,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize email sender")
	}

	pushSender := push.NewFCMSender(push.Config{
		ServerKey: cfg.Push.ServerKey,
		Endpoint:  cfg.Push.Endpoint,
	}, appLogger.ZL)

	chatNotifier := telegram.NewNotifier(telegram.Config{
		BotToken: cfg.Chat.BotToken,
		APIBase:  cfg.Chat.APIBase,
	}, appLogger.ZL)

	m := metrics.NewMetrics("profile_api")

	notificationSvc := notificationService.NewService(notificationRepo, broker, appLogger.ZL)
	userSvc := userService.NewService(userRepo, validator.New(), appLogger.ZL)

	guard := notificationService.NewDedupGuard(time.Duration(cfg.Notifications.DedupTTLMinutes) * time.Minute)
	dispatcher := notificationService.NewDispatcher(
		userRepo,
		pushSender,
		emailSender,
		chatNotifier,
		guard,
		notificationService.DispatcherConfig{
			AppName:   cfg.Notifications.AppName,
			ClientURL: cfg.Notifications.ClientURL,
		},
		m,
		appLogger.ZL,
	)
	dispatcher.SetRealtimeSink(notificationService.NewBrokerRealtimeSink(broker))

	factory := notificationService.NewFactory(notificationSvc, profileRepo, userRepo, cfg.Notifications.ClientURL, appLogger.ZL)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	h := handler.NewHandler()
	notificationH := notificationHandler.NewHandler(notificationSvc)
	userH := userHandler.NewHandler(userSvc)
	eventH := eventHandler.NewHandler(factory)

	r := router.NewRouter(authMiddleware, notificationH, userH, eventH, h, router.Config{
		RateLimit:     rate.Limit(cfg.Server.RateLimitRPS),
		RateBurst:     cfg.Server.RateLimitBurst,
		MetricsPrefix: "profile_api_http",
	})
	r.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := dispatcher.Run(ctx, broker); err != nil {
			log.Error().Err(err).Msg("notification dispatcher exited")
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
