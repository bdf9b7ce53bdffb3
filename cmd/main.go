package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sign-meet/session-service/config"
	"github.com/sign-meet/session-service/internal/classifier"
	"github.com/sign-meet/session-service/internal/postgres"
	"github.com/sign-meet/session-service/internal/registry"
	"github.com/sign-meet/session-service/internal/service"
	"github.com/sign-meet/session-service/internal/session"
	httpx "github.com/sign-meet/session-service/internal/transport/http"
	"github.com/sign-meet/session-service/internal/transport/ws"
	"github.com/sign-meet/session-service/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting session-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- postgres ---
	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer db.Close()

	// --- repos ---
	roomRepo := postgres.NewRoomRepository(db.Pool)
	partRepo := postgres.NewParticipantRepository(db.Pool)
	captionRepo := postgres.NewCaptionRepository(db.Pool)

	// --- classifier ---
	clf, err := classifier.NewClient(classifier.Options{
		Endpoint: cfg.Classifier.Endpoint,
		Timeout:  cfg.ClassifierTimeout(),
	})
	if err != nil {
		log.Fatalf("classifier: %v", err)
	}

	// --- core state ---
	reg := registry.New()
	sessions := session.NewTable()

	// --- WS hub, presence, signaling relay ---
	hub := ws.NewHub()
	presence := ws.NewPresence(hub)
	relay := ws.NewRouter(hub)

	// --- services ---
	roomSvc := service.NewRoomService(reg, roomRepo, partRepo)
	captionSvc := service.NewCaptionService(clf, reg, partRepo, captionRepo, ws.NewCaptionNotifier(hub))

	wsServer := ws.NewServer(hub, sessions, roomSvc, presence, relay)

	// --- HTTP ---
	handler := httpx.NewHandler(roomSvc, captionSvc, presence)
	router := httpx.NewRouter(handler, wsServer)
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
