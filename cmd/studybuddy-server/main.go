package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	httpadapter "github.com/PabloGalante/studybuddy/internal/adapters/http"
	"github.com/PabloGalante/studybuddy/internal/config"
	"github.com/PabloGalante/studybuddy/internal/logstore"
	"github.com/PabloGalante/studybuddy/internal/observability"
)

func main() {
	if err := run(); err != nil {
		observability.Logger().Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	observability.Init(os.Stdout, cfg.LogLevel)
	log := observability.Logger()

	logs, err := logstore.OpenWriter(cfg.LogPath())
	if err != nil {
		return err
	}
	defer logs.Close()

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: httpadapter.NewServer(logs, httpadapter.Options{
			RateLimit: cfg.RateLimit,
			Burst:     cfg.RateBurst,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("StudyBuddy log server listening", "addr", "http://localhost:"+cfg.Port, "log_file", logs.Path())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
