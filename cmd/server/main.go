package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/taskhive/taskhive/config"
	"github.com/taskhive/taskhive/internal/email"
	"github.com/taskhive/taskhive/internal/emailhash"
	"github.com/taskhive/taskhive/internal/health"
	"github.com/taskhive/taskhive/internal/infrastructure/postgres"
	ctxlog "github.com/taskhive/taskhive/internal/log"
	"github.com/taskhive/taskhive/internal/metrics"
	"github.com/taskhive/taskhive/internal/oauth"
	"github.com/taskhive/taskhive/internal/password"
	"github.com/taskhive/taskhive/internal/token"
	httptransport "github.com/taskhive/taskhive/internal/transport/http"
	"github.com/taskhive/taskhive/internal/transport/http/handler"
	"github.com/taskhive/taskhive/internal/usecase"
	"github.com/taskhive/taskhive/internal/verification"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	refreshStore := postgres.NewRefreshTokenStore(pool)
	verificationStore := postgres.NewVerificationTokenStore(pool)

	tokenSvc := token.NewService([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTAudience, refreshStore)
	verificationSvc := verification.NewService([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTAudience, verificationStore)

	breachChecker := password.NewCompositeChecker(
		password.NewListChecker(),
		password.NewRangeAPIChecker(cfg.BreachAPITimeout()),
		logger,
	)

	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)

	authUsecase := usecase.NewAuthUsecase(
		userRepo,
		tokenSvc,
		verificationSvc,
		password.NewHasher(),
		emailhash.NewHasher([]byte(cfg.EmailHashKey)),
		breachChecker,
		sender,
		oauthProviders(cfg),
		cfg.ConfirmBase,
		logger,
	)
	taskUsecase := usecase.NewTaskUsecase(taskRepo, logger)

	authHandler := handler.NewAuthHandler(authUsecase, logger)
	taskHandler := handler.NewTaskHandler(taskUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	sweeper := token.NewSweeper(refreshStore, verificationStore, cfg.TokenSweepInterval(), logger)
	go sweeper.Start(ctx)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, authHandler, taskHandler, tokenSvc),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

// oauthProviders builds the configured providers; unconfigured ones are
// simply absent from the map.
func oauthProviders(cfg *config.Config) map[string]oauth.Provider {
	providers := map[string]oauth.Provider{}
	client := &http.Client{Timeout: 10 * time.Second}

	if cfg.GoogleClientID != "" {
		providers["google"] = oauth.NewGoogleProvider(oauth.GoogleEndpoints, oauth.Credentials{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
		}, client)
	}
	if cfg.MicrosoftClientID != "" {
		providers["microsoft"] = oauth.NewMicrosoftProvider(oauth.MicrosoftEndpoints, oauth.Credentials{
			ClientID:     cfg.MicrosoftClientID,
			ClientSecret: cfg.MicrosoftClientSecret,
		}, client)
	}
	return providers
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
