package cli

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/topoforge/topoforge/internal/server"
	"github.com/topoforge/topoforge/pkg/cache"
	"github.com/topoforge/topoforge/pkg/pipeline"
)

// serveCommand starts the HTTP API server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		redisAddr string
		redisDB   int
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the assembly API over HTTP",
		Long: `Start an HTTP server exposing the assembly pipeline.

Endpoints:
  POST /api/assemble    assemble a framework from a JSON request
  GET  /api/topologies  list available topologies
  GET  /api/units       list available building units
  GET  /healthz         health check

Frameworks are cached on disk by default; pass --redis to share a
cache between instances, or --no-cache to disable caching.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, redisAddr, redisDB, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for the framework cache (e.g. localhost:6379)")
	cmd.Flags().IntVar(&redisDB, "redis-db", 0, "redis database number")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the framework cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, redisAddr string, redisDB int, noCache bool) error {
	store, err := c.serveCache(redisAddr, redisDB, noCache)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(store, nil, c.Logger)
	defer runner.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(runner, c.Logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// serveCache picks the cache backend for the server.
func (c *CLI) serveCache(redisAddr string, redisDB int, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisAddr != "" {
		store, err := cache.NewRedisCache(redisAddr, "", redisDB)
		if err != nil {
			return nil, fmt.Errorf("connect to redis at %s: %w", redisAddr, err)
		}
		c.Logger.Info("using redis cache", "addr", redisAddr)
		return store, nil
	}
	return newCache(false)
}
