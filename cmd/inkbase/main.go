package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/inkbase/inkbase/internal/audit"
	"github.com/inkbase/inkbase/internal/config"
	"github.com/inkbase/inkbase/internal/dispatch"
	"github.com/inkbase/inkbase/internal/kv"
	"github.com/inkbase/inkbase/internal/models"
	"github.com/inkbase/inkbase/internal/ratelimit"
	"github.com/inkbase/inkbase/internal/repository"
	"github.com/inkbase/inkbase/internal/server"
	"github.com/inkbase/inkbase/internal/service"
	apperrors "github.com/inkbase/inkbase/pkg/errors"
)

type Application struct {
	config      *config.Config
	store       *redis.Client
	authService *service.AuthService
	flags       *repository.FlagRepository
	srv         *server.Server
	rateLimiter *ratelimit.RateLimiter
	log         zerolog.Logger
}

func main() {
	seed := flag.Bool("seed", false, "seed default feature flags and exit")
	resetFlags := flag.Bool("reset-flags", false, "rewrite feature flags to defaults and exit")
	flag.Parse()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := initializeApplication(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer app.store.Close()

	switch {
	case *seed:
		if err := app.flags.Initialize(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to seed feature flags")
		}
		if err := seedAdmin(ctx, app, log); err != nil {
			log.Fatal().Err(err).Msg("failed to seed admin user")
		}
		log.Info().Msg("seed complete")
		return
	case *resetFlags:
		if err := app.flags.Reset(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to reset feature flags")
		}
		log.Info().Msg("feature flags reset to defaults")
		return
	}

	// First-run flag seeding is idempotent
	if err := app.flags.Initialize(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize feature flags")
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("received shutdown signal")
		cancel()
	}()

	// Start rate limiter cleanup worker
	go app.rateLimiter.StartCleanupWorker(ctx, 1*time.Hour)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// seedAdmin registers an initial admin account when SEED_ADMIN_* is set.
// The email must also appear in ADMIN_EMAILS to receive the admin role.
func seedAdmin(ctx context.Context, app *Application, log zerolog.Logger) error {
	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	username := os.Getenv("SEED_ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}

	user, err := app.authService.Register(ctx, &models.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			log.Info().Str("email", email).Msg("admin user already present")
			return nil
		}
		return err
	}

	log.Info().Str("email", email).Str("role", user.Role).Msg("admin user seeded")
	return nil
}

// initializeApplication sets up all application components
func initializeApplication(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Application, error) {
	store, err := kv.Connect(ctx, kv.Config{URL: cfg.RedisURL})
	if err != nil {
		return nil, err
	}

	auditLogger := audit.NewLogger(log)
	rateLimiter := ratelimit.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	userRepo := repository.NewUserRepository(store)
	noteRepo := repository.NewNoteRepository(store, log)
	noteTypeRepo := repository.NewNoteTypeRepository(store, noteRepo)
	blogRepo := repository.NewBlogRepository(store, log)
	flagRepo := repository.NewFlagRepository(store)
	taskRepo := repository.NewTaskRepository(store)
	guestbookRepo := repository.NewGuestbookRepository(store)

	authService := service.NewAuthService(cfg, userRepo, rateLimiter, auditLogger)

	processors := dispatch.DefaultProcessors(blogRepo, log)
	dispatcher := dispatch.NewDispatcher(cfg, taskRepo, processors, log)

	srv := server.New(server.Deps{
		Config:      cfg,
		AuthService: authService,
		Notes:       noteRepo,
		NoteTypes:   noteTypeRepo,
		Blog:        blogRepo,
		Flags:       flagRepo,
		Tasks:       taskRepo,
		Guestbook:   guestbookRepo,
		Dispatcher:  dispatcher,
		Limiter:     rateLimiter,
		AuditLogger: auditLogger,
		Log:         log,
	})

	return &Application{
		config:      cfg,
		store:       store,
		authService: authService,
		flags:       flagRepo,
		srv:         srv,
		rateLimiter: rateLimiter,
		log:         log,
	}, nil
}
