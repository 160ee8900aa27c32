package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tuneroom/client/internal/controller"
	roomRedis "github.com/tuneroom/client/internal/repository/room/redis"
	"github.com/tuneroom/client/internal/service/session"
	"github.com/tuneroom/client/internal/transport/inmemory"
	"github.com/tuneroom/client/pkg/ctxlogger"
	"github.com/tuneroom/client/pkg/redisclient"
)

type AppConfig struct {
	UserId         string `json:"user_id"`
	Email          string `json:"email"`
	Host           string `json:"host"`
	Port           int    `json:"port"`
	LogLevel       string `json:"log_level"`
	SeekDebounceMs int    `json:"seek_debounce_ms"`
	PollIntervalMs int    `json:"poll_interval_ms"`
	RedisPort      int    `json:"redis_port"`
	RedisHost      string `json:"redis_host"`
	RedisPassword  string `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.UserId == "" {
		return fmt.Errorf("user id must not be empty")
	}
	if cfg.SeekDebounceMs < 0 {
		return fmt.Errorf("seek debounce must not be negative")
	}
	if cfg.PollIntervalMs < 0 {
		return fmt.Errorf("poll interval must not be negative")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		log.Fatal(err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)

	rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	roomRepo := roomRedis.NewRepo(rc, logger)
	player := inmemory.NewPlayer(nil)
	sessionService := session.NewService(roomRepo, player, &session.Config{
		UserId:       cfg.UserId,
		Email:        cfg.Email,
		SeekDebounce: time.Duration(cfg.SeekDebounceMs) * time.Millisecond,
		PollInterval: time.Duration(cfg.PollIntervalMs) * time.Millisecond,
	}, logger)

	controller := controller.NewController(sessionService, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := sessionService.Leave(shutdownCtx); err != nil && err != session.ErrNotInRoom {
			logger.Warn("failed to leave room on shutdown", "error", err)
		}
		sessionService.Close()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting control api", "address", server.Addr, "user_id", cfg.UserId)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
