package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"meeting-room-client/config"
	"meeting-room-client/internal/api"
	"meeting-room-client/internal/booking"
	"meeting-room-client/internal/db"
	"meeting-room-client/internal/directory"
	"meeting-room-client/internal/model"
	"meeting-room-client/internal/notification"
	"meeting-room-client/internal/reminder"
	"meeting-room-client/internal/remote"
	"meeting-room-client/internal/session"
	"meeting-room-client/internal/store"
)

func main() {
	// A missing .env is fine; the variables may come from the environment.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	logger, err := newLogger(cfg.Logs)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("configuration loaded", zap.String("path", configPath), zap.String("remote", cfg.Remote.BaseURL))

	var webpushOptions *webpush.Options
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	} else {
		logger.Warn("VAPID keys are not configured, booking reminders are disabled")
	}

	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	appStore := store.NewGormStore(gormDB)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	client := remote.NewClient(cfg.Remote, logger.Named("remote"), remote.NewMetrics(registry))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions := session.NewManager(client, appStore, logger.Named("session"))
	if _, err := sessions.Restore(ctx); err != nil {
		logger.Warn("starting logged out", zap.Error(err))
	}

	rooms := directory.New(client, cfg.Location, logger.Named("directory"))
	form := booking.NewForm(client, rooms, sessions, cfg.Location, logger.Named("form"))
	list := booking.NewList(client, form, logger.Named("bookings"))

	form.OnCreated(func(ctx context.Context, _ model.Booking) {
		if _, err := rooms.LoadAll(ctx); err != nil && !errors.Is(err, directory.ErrSuperseded) {
			logger.Warn("failed to refresh rooms after booking", zap.Error(err))
		}
	})
	form.OnUpdated(func(ctx context.Context, _ model.Booking) {
		if _, err := list.Reload(ctx); err != nil && !errors.Is(err, booking.ErrSuperseded) {
			logger.Warn("failed to refresh bookings after edit", zap.Error(err))
		}
	})

	identities, unsubscribe := sessions.Subscribe()
	defer unsubscribe()
	go followIdentity(ctx, identities, list, logger)
	if current := sessions.Current(); current.LoggedIn() {
		if _, err := list.Load(ctx, current.UserID); err != nil {
			logger.Warn("failed to load bookings", zap.Error(err))
		}
	}

	if _, err := rooms.LoadAll(ctx); err != nil {
		logger.Warn("failed to load rooms", zap.Error(err))
	}

	if webpushOptions != nil {
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions, cfg.Location, logger.Named("push"))
		pool.Start(ctx)
		go reminder.NewService(cfg.Reminder, list, appStore, pool, logger.Named("reminder")).Run(ctx)
	}

	handler := api.NewHandler(api.Deps{
		Store:     appStore,
		WebPush:   webpushOptions,
		Sessions:  sessions,
		Directory: rooms,
		Form:      form,
		List:      list,
		Log:       logger.Named("api"),
	})
	var metrics http.Handler
	if cfg.Metrics.Enabled {
		metrics = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}
	router := api.NewRouter(handler, cfg.Server, logger.Named("http"), cfg.Metrics.Path, metrics)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server ListenAndServe", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received, stopping services")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("HTTP server Shutdown", zap.Error(err))
	}

	logger.Info("server gracefully stopped")
}

// followIdentity keeps the booking list on whoever is logged in.
func followIdentity(ctx context.Context, identities <-chan session.Identity, list *booking.List, logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case id, ok := <-identities:
			if !ok {
				return
			}
			if _, err := list.Load(ctx, id.UserID); err != nil && !errors.Is(err, booking.ErrSuperseded) {
				logger.Warn("failed to load bookings", zap.Int64("user_id", id.UserID), zap.Error(err))
			}
		}
	}
}
