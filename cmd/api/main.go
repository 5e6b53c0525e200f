package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio_backend/internal/admin"
	"portfolio_backend/internal/admin/session"
	"portfolio_backend/internal/appointment"
	"portfolio_backend/internal/contact"
	"portfolio_backend/internal/email"
	"portfolio_backend/internal/events"
	apphttp "portfolio_backend/internal/http"
	"portfolio_backend/internal/http/router"
	"portfolio_backend/internal/notification"
	"portfolio_backend/internal/order"
	"portfolio_backend/internal/plans"
	"portfolio_backend/internal/relay"
	"portfolio_backend/internal/scheduler"
	"portfolio_backend/internal/signals"
	"portfolio_backend/internal/store"
	"portfolio_backend/migrations"
	"portfolio_backend/platform/config"
	"portfolio_backend/platform/db"
	"portfolio_backend/platform/httpkit"
	"portfolio_backend/platform/logger"
	"portfolio_backend/platform/validator"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	recordStore, health, closeStore := initRecordStore(ctx, cfg, log)
	if closeStore != nil {
		defer closeStore()
	}

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Process-wide UI signal bus and the pricing-card selection relay
	signalBus := signals.NewBus()
	relayCell := relay.NewCell()

	reminderScheduler, closeScheduler := initReminderScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	sessionStore := initSessionStore(cfg, log)

	sender := initSender(cfg, log)

	catalog, err := plans.LoadCatalog()
	if err != nil {
		log.Error("failed to load plan catalog", "error", err)
		panic("failed to load plan catalog: " + err.Error())
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.NewModule(sender, cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	signalsModule := signals.NewModule(signalBus)
	plansModule := plans.NewModule(catalog, relayCell, log)
	contactModule := contact.NewModule(recordStore, signalBus, relayCell, eventBus, val, log)
	appointmentModule := appointment.NewModule(recordStore, signalBus, eventBus, reminderScheduler, cfg.ReminderLeadTime, val, log)
	orderModule := order.NewModule(recordStore, signalBus, eventBus, catalog, val, log)
	adminModule := admin.NewModule(cfg, sessionStore, recordStore, signalBus, httpkit.NewGateRateLimiter(log), log)

	contactModule.Start(ctx)
	appointmentModule.Start(ctx)
	orderModule.Start(ctx)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:          cfg,
		Logger:          log,
		Health:          health,
		AdminMiddleware: adminModule.Middleware(),
		FormRateLimiter: httpkit.NewFormRateLimiter(log),
		Modules: []apphttp.Module{
			signalsModule,
			plansModule,
			contactModule,
			appointmentModule,
			orderModule,
			adminModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initRecordStore connects Postgres when DATABASE_URL is set, running the
// migrations first, and falls back to the in-memory store otherwise.
func initRecordStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (store.RecordStore, apphttp.HealthChecker, func()) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not configured; using in-memory record store")
		return store.NewMemoryStore(), nil, nil
	}

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	log.Info("database connection established")

	return store.NewPostgresStore(pool), db.NewPoolAdapter(pool), pool.Close
}

func initReminderScheduler(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.ReminderScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; appointment reminders disabled")
		return nil, nil
	}

	reminderClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize reminder scheduler client", "error", err)
		return nil, nil
	}

	return reminderClient, func() {
		_ = reminderClient.Close()
	}
}

// initSessionStore backs admin sessions with Redis when available so they
// survive restarts, and with process memory otherwise.
func initSessionStore(cfg config.SessionConfig, log *logger.Logger) session.Store {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; admin sessions are in-memory")
		return session.NewMemoryStore()
	}

	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("invalid REDIS_URL; admin sessions are in-memory", "error", err)
		return session.NewMemoryStore()
	}
	if opt.TLSConfig != nil && cfg.GetRedisTLSInsecure() {
		opt.TLSConfig.InsecureSkipVerify = true
	}

	return session.NewRedisStore(redis.NewClient(opt))
}

func initSender(cfg config.EmailConfig, log *logger.Logger) email.Sender {
	if !cfg.GetEmailEnabled() {
		log.Warn("email disabled; notifications will be dropped")
		return email.NoopSender{}
	}
	return email.NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
