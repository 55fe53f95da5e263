package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"remindd/internal/config"
	"remindd/internal/db"
	"remindd/internal/event"
	httpx "remindd/internal/http"
	"remindd/internal/scheduler"
)

func main() {
	cfg, _ := config.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connect failed")
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	eng := &scheduler.Engine{
		Store:              &event.Repo{DB: gdb},
		Sink:               &scheduler.LogSink{Log: &logger},
		Log:                &logger,
		GracePeriod:        cfg.GracePeriod,
		IntraReminderDelay: cfg.IntraReminderDelay,
	}

	r := httpx.NewRouter(cfg, gdb, eng)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := eng.Run(ctx, cfg.TickInterval, cfg.WatchdogInterval); err != nil {
			logger.Fatal().Err(err).Msg("engine start failed")
		}
	}()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
