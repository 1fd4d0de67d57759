package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/you/rakshasetu/domain"
	"github.com/you/rakshasetu/internal/config"
)

// Run starts the HTTP server and the challenge sweeper, and blocks until
// SIGINT or SIGTERM.
func Run(cfg *config.Config) error {
	gin.SetMode(cfg.GinMode)

	container, err := NewContainer(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, container)
}

func serve(ctx context.Context, cfg *config.Config, container *Container) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		sweepChallenges(ctx, container.ChallengeStore, cfg.SweepInterval)
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	cancel()
	<-sweepDone

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	return serveErr
}

// sweepChallenges removes expired challenges every interval until ctx ends
func sweepChallenges(ctx context.Context, store domain.ChallengeStore, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.DeleteExpired(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("CHALLENGE_SWEEP_FAILED: error=%v", err)
			}
		}
	}
}
