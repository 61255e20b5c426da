package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vigneswari-developer/isstracker/internal/api"
	"github.com/vigneswari-developer/isstracker/internal/stream"
	"github.com/vigneswari-developer/isstracker/web"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			return serve(cmd.Context(), a)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr)")
	return cmd
}

func serve(parent context.Context, a *app) error {
	res, err := a.resolver(false)
	if err != nil {
		return err
	}
	est, err := a.estimator()
	if err != nil {
		return err
	}
	geo := a.geocoder()
	pos := a.position()

	var streamHandler http.HandlerFunc
	if sc := a.cfg.Stream; sc.Enabled {
		streamHandler = stream.NewHandler(pos, geo, stream.Config{
			Interval:           sc.Interval,
			KeepaliveInterval:  sc.Keepalive,
			MaxConcurrentPerIP: sc.MaxPerIP,
			MaxConcurrent:      sc.MaxTotal,
			TrustProxy:         a.cfg.Server.TrustProxy,
		}, a.logger).HandlePosition
	}

	s := a.cfg.Server
	srv, err := api.NewServer(api.Config{
		Addr:         s.Addr,
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
		TrustProxy:   s.TrustProxy,
		CORSOrigins:  s.CORSOrigins,

		MaxLookupsPerIP: s.MaxLookupsPerIP,
		MaxLookups:      s.MaxLookups,

		PassCount:  a.cfg.Passes.Count,
		WindowDays: a.cfg.Collision.WindowDays,
		Seed:       a.cfg.Passes.Seed,
	}, api.Deps{
		Tracker:   a.trackerService(res, est),
		Resolver:  res,
		Risks:     est,
		Position:  pos,
		Describer: geo,
		Stream:    streamHandler,
	}, web.Content, a.logger)
	if err != nil {
		return err
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting server",
			"addr", s.Addr,
			"live_passes", res.LiveEnabled(),
			"quota_enabled", a.cfg.Quota.Enabled,
			"stream_enabled", a.cfg.Stream.Enabled,
			"time_zone", a.clock.Location().String(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.logger.Error("server listen error", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", "error", err)
		return err
	}

	a.logger.Info("server stopped")
	return nil
}
