package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Billy-Davies-2/scorebored/internal/auth"
	"github.com/Billy-Davies-2/scorebored/internal/cache"
	"github.com/Billy-Davies-2/scorebored/internal/config"
	"github.com/Billy-Davies-2/scorebored/internal/dal"
	grpcserver "github.com/Billy-Davies-2/scorebored/internal/grpc"
	"github.com/Billy-Davies-2/scorebored/internal/handlers"
	"github.com/Billy-Davies-2/scorebored/internal/logger"
	"github.com/Billy-Davies-2/scorebored/internal/match"
	"github.com/Billy-Davies-2/scorebored/internal/pubsub"
	"github.com/Billy-Davies-2/scorebored/internal/scoreboard"
	"github.com/Billy-Davies-2/scorebored/internal/talker"
)

func openRoster(cfg config.Config) (dal.RosterDAL, error) {
	switch cfg.DBDriver {
	case "sqlite":
		roster, err := dal.NewSQLiteDAL(cfg.SQLiteFile)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite: %w", err)
		}
		logger.Info("Connected to SQLite database", "file", cfg.SQLiteFile)
		return roster, nil
	case "postgres":
		roster, err := dal.NewPostgresDAL(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		logger.Info("Connected to Postgres database")
		return roster, nil
	}
	logger.Info("Using in-memory roster")
	return dal.NewMemoryDAL(), nil
}

// openBroker starts an embedded NATS server in development and connects to
// NATS_URL otherwise.
func openBroker(cfg config.Config) (pubsub.Broker, func(), error) {
	if cfg.IsDevelopment() {
		logger.Info("Starting embedded NATS server for local development")
		opts := pubsub.DefaultEmbeddedNATSOptions()
		opts.Subject = cfg.NATSSubject
		embedded, err := pubsub.NewEmbeddedNATSPubSub(opts)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize embedded NATS: %w", err)
		}
		logger.Info("Embedded NATS server ready", "url", embedded.GetServerURL())
		return embedded, embedded.Close, nil
	}

	nc, err := pubsub.NewNATSPubSub(cfg.NATSURL, cfg.NATSSubject, pubsub.DefaultStreamName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize NATS: %w", err)
	}
	logger.Info("Connected to NATS", "url", cfg.NATSURL)
	return nc, nc.Close, nil
}

func openCache(cfg config.Config) (cache.SnapshotCache, error) {
	if cfg.RedisAddr == "" {
		logger.Info("Using in-memory snapshot cache")
		return cache.NewMemoryCache(), nil
	}
	rc, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to Redis", "address", cfg.RedisAddr)
	return rc, nil
}

func openAuth(cfg config.Config) (auth.AuthProvider, error) {
	if cfg.IsDevelopment() {
		logger.Info("Using mock authentication for local development (no Authentik server required)")
		return auth.NewMockAuth(), nil
	}
	if !cfg.Authentik.Complete() {
		return nil, errors.New("AUTHENTIK_BASE_URL, AUTHENTIK_CLIENT_ID, and AUTHENTIK_CLIENT_SECRET are required outside development")
	}
	logger.Info("Using Authentik", "url", cfg.Authentik.BaseURL)
	return auth.NewAuthentikAuth(&auth.AuthentikConfig{
		BaseURL:      cfg.Authentik.BaseURL,
		ClientID:     cfg.Authentik.ClientID,
		ClientSecret: cfg.Authentik.ClientSecret,
		RedirectURL:  cfg.Authentik.RedirectURL,
	}), nil
}

func serve(cCtx *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel)
	logger.Info("Starting scorebored", "version", semanticVersion, "environment", cfg.Environment)

	ctx, stop := signal.NotifyContext(cCtx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	roster, err := openRoster(cfg)
	if err != nil {
		return err
	}
	defer roster.Close()

	upstream, closeBroker, err := openBroker(cfg)
	if err != nil {
		return err
	}
	defer closeBroker()
	events := pubsub.NewWithUpstream(upstream)

	snapshots, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer snapshots.Close()

	talkers := []match.Talker{talker.LogTalker{}, talker.NewPubSubTalker(events)}
	if cfg.TelegramEnabled() {
		tg, err := talker.NewTelegramTalker(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			// Subtitles are optional; the scoreboard still runs without them.
			logger.Warn("Telegram talker disabled", "error", err)
		} else {
			defer tg.Close()
			talkers = append(talkers, tg)
		}
	}

	svc, err := scoreboard.New(scoreboard.Options{
		Talker:   talker.Multi(talkers...),
		Broker:   events,
		Cache:    snapshots,
		Roster:   roster,
		HomeTeam: cfg.HomeTeam,
		AwayTeam: cfg.AwayTeam,
	})
	if err != nil {
		return err
	}
	restored, err := svc.Restore(ctx)
	if err != nil {
		logger.Warn("Ignoring cached scoreboard", "error", err)
	}
	if !restored {
		if err := applyStartupSettings(ctx, svc, cfg); err != nil {
			return err
		}
	}

	authProvider, err := openAuth(cfg)
	if err != nil {
		return err
	}

	api := handlers.NewAPIHandlers(svc, events)
	api.AddCheck("database", func(context.Context) error {
		_, err := roster.GetSettings()
		return err
	})
	api.AddCheck("cache", func(ctx context.Context) error {
		_, _, err := snapshots.Get(ctx)
		return err
	})

	mux := api.Routes(authProvider.Middleware)
	mux.HandleFunc("/auth/login", authProvider.LoginHandler)
	mux.HandleFunc("/auth/callback", authProvider.CallbackHandler)
	mux.HandleFunc("/auth/logout", authProvider.LogoutHandler)

	lis, err := net.Listen("tcp", "0.0.0.0:"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC: %w", err)
	}
	grpcServer, healthServer := grpcserver.NewGRPCServer(grpcserver.NewServer(svc, events))
	go func() {
		logger.Info("gRPC server starting", "address", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("Failed to serve gRPC", "error", err)
		}
	}()

	httpServer := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		// Request contexts end on shutdown so SSE streams let go.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err = <-errCh:
		logger.Error("Server failed", "error", err)
	}
	stop()

	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Warn("HTTP shutdown incomplete", "error", shutdownErr)
	}
	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		grpcServer.Stop()
	}
	return err
}
