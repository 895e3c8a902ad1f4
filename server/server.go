// Package server exposes a session.Controller over HTTP: a websocket that
// streams search events and accepts actions, a small JSON API, a health probe
// and the Prometheus endpoint.
//
// Routes:
//
//	GET  /ws              websocket; pushes Event, accepts Action
//	GET  /api/board       BoardView
//	GET  /api/algorithms  canonical algorithm names
//	POST /api/actions     Action → BoardView
//	GET  /healthz         liveness
//	GET  /metrics         Prometheus exposition (when a Gatherer is set)
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/katalvlaran/gridpath/builder"
	"github.com/katalvlaran/gridpath/gridgraph"
	"github.com/katalvlaran/gridpath/pathfind"
	"github.com/katalvlaran/gridpath/session"
)

// ErrInvalidAction wraps malformed or incomplete actions.
var ErrInvalidAction = errors.New("server: invalid action")

// Defaults for the per-client action limiter.
const (
	DefaultActionRate  = rate.Limit(20)
	DefaultActionBurst = 40
)

const shutdownTimeout = 5 * time.Second

// Options configure a Server.
type Options struct {
	Logger         *slog.Logger
	Gatherer       prometheus.Gatherer // nil disables /metrics
	ActionRate     rate.Limit
	ActionBurst    int
	AllowedOrigins []string // empty accepts any origin
}

// Option mutates Options.
type Option func(*Options)

// WithLogger sets the logger; nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithGatherer serves g on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(o *Options) { o.Gatherer = g }
}

// WithActionRate bounds websocket actions per client.
func WithActionRate(r rate.Limit, burst int) Option {
	return func(o *Options) { o.ActionRate, o.ActionBurst = r, burst }
}

// WithAllowedOrigins restricts websocket upgrades to the given Origin values.
func WithAllowedOrigins(origins ...string) Option {
	return func(o *Options) { o.AllowedOrigins = origins }
}

// Server binds a controller to its hub.
type Server struct {
	ctrl     *session.Controller
	hub      *Hub
	opts     Options
	log      *slog.Logger
	validate *validator.Validate
	upgrader websocket.Upgrader
	engine   *gin.Engine
}

// New builds the routes. hub must be the renderer ctrl was created with.
func New(ctrl *session.Controller, hub *Hub, opts ...Option) *Server {
	o := Options{
		Logger:      slog.New(slog.DiscardHandler),
		ActionRate:  DefaultActionRate,
		ActionBurst: DefaultActionBurst,
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		ctrl:     ctrl,
		hub:      hub,
		opts:     o,
		log:      o.Logger.With(slog.String("component", "server")),
		validate: validator.New(),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws", s.handleWS)

	api := r.Group("/api")
	api.GET("/board", func(c *gin.Context) {
		c.JSON(http.StatusOK, boardView(s.ctrl.Snapshot()))
	})
	api.GET("/algorithms", func(c *gin.Context) {
		names := make([]string, 0, len(pathfind.Algorithms()))
		for _, a := range pathfind.Algorithms() {
			names = append(names, a.String())
		}
		c.JSON(http.StatusOK, gin.H{"algorithms": names, "selected": s.ctrl.Algorithm().String()})
	})
	api.POST("/actions", s.handleAction)

	if s.opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})))
	}
	return r
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		began := time.Now()
		c.Next()
		s.log.Debug("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(began)))
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.opts.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(s.opts.AllowedOrigins, r.Header.Get("Origin"))
}

func (s *Server) handleWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}
	cl := s.newClient(conn)
	if !s.hub.add(cl) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		_ = conn.Close()
		return
	}
	cl.log.Info("client connected")
	go cl.writePump()
	s.hub.send(cl, Event{Type: EventBoard, Board: boardView(s.ctrl.Snapshot())})

	s.readPump(c.Request.Context(), cl)
	cl.log.Info("client disconnected")
}

func (s *Server) handleAction(c *gin.Context) {
	var a Action
	if err := c.ShouldBindJSON(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%v: %v", ErrInvalidAction, err)})
		return
	}
	h, err := s.apply(c.Request.Context(), a)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	resp := gin.H{"board": boardView(s.ctrl.Snapshot())}
	if h != nil {
		resp["runId"] = h.ID.String()
	}
	c.JSON(http.StatusOK, resp)
}

// statusFor maps controller errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidAction):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrBusy), errors.Is(err, pathfind.ErrMissingEndpoints):
		return http.StatusConflict
	case errors.Is(err, session.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, gridgraph.ErrInvalidPosition),
		errors.Is(err, gridgraph.ErrObstacleCell),
		errors.Is(err, pathfind.ErrUnknownAlgorithm),
		errors.Is(err, builder.ErrInvalidProbability):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// apply validates and executes a, then broadcasts the new board. Started runs
// report their result to every client when they finish.
func (s *Server) apply(ctx context.Context, a Action) (*session.RunHandle, error) {
	if err := s.validate.Struct(a); err != nil {
		s.hub.metrics.Actions.WithLabelValues(a.Action, "invalid").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	if needsCell[a.Action] && a.Cell == nil {
		s.hub.metrics.Actions.WithLabelValues(a.Action, "invalid").Inc()
		return nil, fmt.Errorf("%w: %s needs a cell", ErrInvalidAction, a.Action)
	}

	h, err := s.dispatch(ctx, a)
	if err != nil {
		s.hub.metrics.Actions.WithLabelValues(a.Action, "error").Inc()
		s.log.Debug("action rejected", slog.String("action", a.Action), slog.Any("error", err))
		return nil, err
	}
	s.hub.metrics.Actions.WithLabelValues(a.Action, "ok").Inc()
	s.hub.Broadcast(Event{Type: EventBoard, Board: boardView(s.ctrl.Snapshot())})
	if h != nil {
		go s.report(h)
	}
	return h, nil
}

func (s *Server) dispatch(ctx context.Context, a Action) (*session.RunHandle, error) {
	switch a.Action {
	case "select":
		return nil, s.ctrl.SelectAlgorithm(a.Algorithm)
	case "start":
		return s.ctrl.Start(ctx)
	case "stop":
		s.ctrl.Stop()
		return nil, nil
	case "moveEnd":
		return s.ctrl.MoveEndpoint(ctx, a.Cell.Position())
	case "setStart":
		return nil, s.ctrl.SetStart(a.Cell.Position())
	case "setEnd":
		return nil, s.ctrl.SetEnd(a.Cell.Position())
	case "toggle":
		_, err := s.ctrl.ToggleObstacle(a.Cell.Position())
		return nil, err
	case "clearObstacles":
		s.ctrl.ClearObstacles()
		return nil, nil
	case "reset":
		s.ctrl.Reset()
		return nil, nil
	case "maze":
		var opts []builder.BuilderOption
		if a.Density != nil {
			opts = append(opts, builder.WithDensity(*a.Density))
		}
		if a.Seed != 0 {
			opts = append(opts, builder.WithSeed(a.Seed))
		}
		return nil, s.ctrl.GenerateMaze(opts...)
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidAction, a.Action)
}

// report waits for h and broadcasts its result with the settled board.
func (s *Server) report(h *session.RunHandle) {
	<-h.Done()
	s.hub.Broadcast(Event{
		Type:   EventResult,
		RunID:  h.ID.String(),
		Result: resultView(h.Result()),
		Board:  boardView(s.ctrl.Snapshot()),
	})
}

// Run serves on addr until ctx is done, then disconnects websocket clients
// and drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: listen %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.hub.Close()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
