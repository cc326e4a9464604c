package main // Entry point package

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/cinema-booking/internal/auth"
	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/repository"
	"github.com/iliyamo/cinema-booking/internal/router"
	"github.com/iliyamo/cinema-booking/internal/service"
)

func main() {
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info("schema applied")
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Warn("redis unavailable; rate limiting and caching disabled")
	} else {
		defer rdb.Close()
	}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.AccessTTLMin)*time.Minute)

	var events handler.OrderEvents
	if cfg.Events.Enabled {
		events = service.NewPublisher(cfg.Events.URL, log)
		go func() {
			err := queue.StartOrderConsumer(ctx, cfg.Events.URL, cfg.Events.OrderLogPath, log)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error("order consumer stopped", slog.Any("err", err))
			}
		}()
	}

	movies := repository.NewMovieRepo(db)
	h := router.Handlers{
		Genres:   handler.NewGenreHandler(repository.NewGenreRepo(db), log),
		Actors:   handler.NewActorHandler(repository.NewActorRepo(db), log),
		Halls:    handler.NewHallHandler(repository.NewHallRepo(db), log),
		Movies:   handler.NewMovieHandler(movies, log),
		Sessions: handler.NewSessionHandler(repository.NewSessionRepo(db), movies, log),
		Orders:   handler.NewOrderHandler(repository.NewOrderRepo(db), events, log),
		Auth:     handler.NewAuthHandler(repository.NewUserRepo(db), tokens, cfg.BcryptCost, log),
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())
	e.Use(middleware.Identify(tokens))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log))

	router.RegisterAll(e, router.Deps{
		Tokens: tokens,
		Cache:  config.LoadCacheConfig(),
		Redis:  rdb,
		Log:    log,
	}, h, db)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", addr), slog.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	err = e.Shutdown(shutdownCtx)
	if werr := h.Orders.WaitPublished(shutdownCtx); werr != nil {
		log.Warn("order events still in flight at shutdown", slog.Any("err", werr))
	}
	return err
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
