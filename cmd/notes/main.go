package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/notes/internal/cache"
	"github.com/Skotchmaster/notes/internal/config"
	"github.com/Skotchmaster/notes/internal/httpserver"
	"github.com/Skotchmaster/notes/internal/logging"
	"github.com/Skotchmaster/notes/internal/models"
	"github.com/Skotchmaster/notes/internal/mykafka"
	"github.com/Skotchmaster/notes/internal/repo"
	"github.com/Skotchmaster/notes/internal/search"
	"github.com/Skotchmaster/notes/internal/service"
	"github.com/Skotchmaster/notes/internal/tokens"
	"github.com/Skotchmaster/notes/pkg/db"
	loggingmw "github.com/Skotchmaster/notes/pkg/middleware/logging"
)

type publisher interface {
	service.EventPublisher
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	if err := config.RequireSecret(cfg.JWT.Secret, "JWT_SECRET"); err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	ctx := logging.IntoContext(context.Background(), logger)

	gdb, err := openDatabase(ctx, cfg)
	if err != nil {
		logger.Error("database init failed", "error", err)
		os.Exit(1)
	}
	if err := gdb.AutoMigrate(models.All()...); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	r := repo.New(gdb)
	checks := []httpserver.Check{
		{Component: "database", Probe: func(ctx context.Context) error { return db.Ping(ctx, gdb) }},
	}

	var store cache.Store
	var redisStore *cache.RedisStore
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Error("redis init failed", "error", err)
			os.Exit(1)
		}
		redisStore = cache.NewRedisStore(client)
		store = redisStore
		checks = append(checks, httpserver.Check{Component: "redis", Probe: redisStore.Health})
		logger.Info("response cache enabled", "ttl", cfg.Redis.CacheTTL)
	}

	var events publisher = mykafka.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		events = mykafka.NewProducer(cfg.KafkaBrokers)
		logger.Info("publishing events", "brokers", cfg.KafkaBrokers)
	}

	notes := &service.NoteService{Notes: r, Events: events}
	if cfg.Elastic.URL != "" {
		es, err := search.NewClient(ctx, cfg.Elastic)
		if err != nil {
			logger.Warn("search index unavailable, using database search", "error", err)
		} else {
			idx := search.NewIndex(es, cfg.Elastic.Index)
			if err := idx.EnsureIndex(ctx); err != nil {
				logger.Warn("ensure search index failed", "index", idx.Name, "error", err)
			}
			notes.Index = idx
		}
	}

	issuer := tokens.NewIssuer(cfg.JWT.Secret, cfg.JWT.TokenLifetime, r, r, logger)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.HTTPErrorHandler
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:   &httpserver.AuthHandler{Auth: &service.AuthService{Users: r, RefreshTokens: r, Issuer: issuer, Events: events}},
		NoteHandler:   &httpserver.NoteHandler{Notes: notes},
		HealthHandler: &httpserver.HealthHandler{Checks: checks},
		Tokens:        issuer,
		Cache:         store,
		CacheTTL:      cfg.Redis.CacheTTL,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	go func() {
		<-quit
		logger.Warn("force exit")
		os.Exit(1)
	}()

	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}
	if err := events.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}
	if redisStore != nil {
		if err := redisStore.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// openDatabase uses Postgres when DATABASE_URL is set and a local SQLite file otherwise.
func openDatabase(ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	if cfg.DatabaseURL != "" {
		return db.Open(ctx, cfg.DatabaseURL)
	}
	slog.Warn("DATABASE_URL not set, using sqlite", "path", cfg.SQLitePath)
	return db.OpenSQLite(ctx, cfg.SQLitePath)
}
