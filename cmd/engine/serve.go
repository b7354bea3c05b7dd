package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"fintechjobs-engine/internal/config"
	"fintechjobs-engine/internal/events"
	"fintechjobs-engine/internal/httpapi"
	"fintechjobs-engine/internal/poll"
	"fintechjobs-engine/internal/scrape"
	"fintechjobs-engine/internal/scrape/types"
	"fintechjobs-engine/internal/store"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve [--addr host:port]",
		Short: "Serve positions over HTTP, run on POST /run and every server.interval_minutes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			if err := config.Validate(e.Cfg); err != nil {
				return err
			}
			if addr == "" {
				addr = e.Cfg.Server.Addr
			}
			return serve(cmd.Context(), e, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr)")
	return cmd
}

func serve(ctx context.Context, e env, addr string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	db, err := store.Open(ctx, e.dbPath())
	if err != nil {
		return err
	}
	defer db.Close()

	var cfgVal atomic.Value // stores config.Config
	cfgVal.Store(e.Cfg)

	hub := events.NewHub()
	runner := poll.NewRunner(func(ctx context.Context, cfg config.Config) (types.RunSummary, error) {
		return runLocked(ctx, env{DataDir: e.DataDir, CfgPath: e.CfgPath, Cfg: cfg}, db, scrape.RunOptions{})
	}, hub)

	pollerDone := make(chan struct{})
	if n := e.Cfg.Server.IntervalMinutes; n > 0 {
		go func() {
			defer close(pollerDone)
			poll.StartPoller(ctx, time.Duration(n)*time.Minute, &cfgVal, runner)
		}()
		log.Printf("[serve] polling every %dm", n)
	} else {
		close(pollerDone)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	log.Printf("[serve] listening on http://%s (db=%s)", ln.Addr(), e.dbPath())

	srv := &http.Server{
		Handler: httpapi.Handler(httpapi.Deps{
			DB:      db.Pool,
			Hub:     hub,
			Runner:  runner,
			CfgVal:  &cfgVal,
			BaseCtx: ctx,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		// SSE streams end with ctx
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	var serveErr error
	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
		log.Printf("[serve] shutting down")
		sctx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		if err := srv.Shutdown(sctx); err != nil {
			log.Printf("[serve] shutdown: %v", err)
		}
	}

	// runs still in flight must finish before the db closes
	cancel()
	<-pollerDone
	runner.Wait()
	return serveErr
}
