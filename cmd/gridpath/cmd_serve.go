package main

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/gridpath/config"
	"github.com/katalvlaran/gridpath/server"
	"github.com/katalvlaran/gridpath/session"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		f       boardFlags
		addr    string
		origins []string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over HTTP and websocket",
		Long: `serve exposes one shared board. Browsers connect to /ws, receive
every search event and send actions; /api/board, /healthz and, when
metrics.enabled is set, /metrics are plain HTTP.

With --config, edits to the file are picked up live: animation delays apply
to the next run and log.level takes effect at once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			srv, ctrl, err := a.newServer(f, origins)
			if err != nil {
				return err
			}
			defer ctrl.Close()
			return a.serve(cmd.Context(), srv, ctrl)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr)")
	cmd.Flags().StringSliceVar(&origins, "origin", nil, "allowed websocket Origin; repeatable (default any)")
	return cmd
}

// newServer wires board, hub, controller and routes.
func (a *app) newServer(f boardFlags, origins []string) (*server.Server, *session.Controller, error) {
	b, err := a.board(f)
	if err != nil {
		return nil, nil, err
	}
	alg, err := a.cfg.ParsedAlgorithm()
	if err != nil {
		return nil, nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	hub := server.NewHub(a.logger, server.NewMetrics(reg))
	ctrl, err := session.New(b, hub,
		session.WithAlgorithm(alg),
		session.WithDelays(a.cfg.Animation.VisitDelay, a.cfg.Animation.PathDelay),
		session.WithMaze(a.cfg.Maze.MazeDensity(), a.cfg.Maze.Seed),
		session.WithLogger(a.logger),
		session.WithRegisterer(reg))
	if err != nil {
		return nil, nil, err
	}

	opts := []server.Option{server.WithLogger(a.logger), server.WithAllowedOrigins(origins...)}
	if a.cfg.Metrics.Enabled {
		opts = append(opts, server.WithGatherer(reg))
	}
	gin.SetMode(gin.ReleaseMode)
	return server.New(ctrl, hub, opts...), ctrl, nil
}

// serve runs the HTTP server and, with a config file, the reload watcher.
func (a *app) serve(ctx context.Context, srv *server.Server, ctrl *session.Controller) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx, a.cfg.Server.Addr) })
	if a.cfgPath != "" {
		g.Go(func() error {
			return config.Watch(gctx, a.cfgPath, a.logger, func(c config.Config) { a.reload(ctrl, c) })
		})
	}
	return g.Wait()
}

// reload applies the live-tunable parts of c.
func (a *app) reload(ctrl *session.Controller, c config.Config) {
	if err := ctrl.SetDelays(c.Animation.VisitDelay, c.Animation.PathDelay); err != nil {
		a.logger.Warn("reload delays", slog.Any("error", err))
	}
	if lvl, err := config.ParseLevel(c.Log.Level); err == nil && a.logLevel == "" {
		a.level.Set(lvl)
	}
	a.logger.Info("settings reloaded",
		slog.Duration("visit_delay", c.Animation.VisitDelay),
		slog.Duration("path_delay", c.Animation.PathDelay),
		slog.String("log_level", c.Log.Level))
}
