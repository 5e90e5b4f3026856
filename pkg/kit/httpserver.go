package kit

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
	// OnShutdown runs after the listener is drained, e.g. to flush log sinks.
	OnShutdown []func(ctx context.Context) error
}

// RunHTTPServer serves until ctx is cancelled or SIGINT/SIGTERM arrives, then
// shuts down gracefully.
func RunHTTPServer(ctx context.Context, cfg ServerConfig, h http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server starting", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("http server stopping", zap.NamedError("cause", context.Cause(gctx)))

		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		errs := []error{srv.Shutdown(sctx)}
		for _, fn := range cfg.OnShutdown {
			errs = append(errs, fn(sctx))
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
