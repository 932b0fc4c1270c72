package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/codex-k8s/autoinstall-validator/internal/config"
	"github.com/codex-k8s/autoinstall-validator/internal/http/health"
)

const (
	defaultPath            = "/mcp"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// Options configures an App.
type Options struct {
	// HTTP holds listen address, endpoint path and timeouts.
	HTTP config.HTTPConfig
	// Handler serves the MCP endpoint.
	Handler http.Handler
	// Ready is the readiness self-check, nil means always ready once serving.
	Ready func() error
	// Logger receives lifecycle and request logs, nil disables logging.
	Logger *slog.Logger
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// App controls the HTTP server lifecycle.
type App struct {
	baseCtx         context.Context
	server          *http.Server
	health          *health.Handler
	logger          *slog.Logger
	shutdownTimeout time.Duration
	listener        net.Listener
}

// New builds the server. Nothing is bound until Listen or Run.
func New(baseCtx context.Context, opts Options) (*App, error) {
	if baseCtx == nil {
		return nil, fmt.Errorf("base context is nil")
	}
	if opts.Handler == nil {
		return nil, fmt.Errorf("handler is nil")
	}
	path := strings.TrimSpace(opts.HTTP.Path)
	if path == "" {
		path = defaultPath
	}
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("http path must start with /: %q", path)
	}

	probes := health.New(opts.Ready)
	mux := http.NewServeMux()
	mux.Handle(path, opts.Handler)
	probes.Register(mux)

	return &App{
		baseCtx: baseCtx,
		server: &http.Server{
			Addr:         opts.HTTP.Listen,
			Handler:      logRequests(opts.Logger, mux),
			ReadTimeout:  orDefault(opts.HTTP.ReadTimeout, defaultReadTimeout),
			WriteTimeout: orDefault(opts.HTTP.WriteTimeout, defaultWriteTimeout),
			IdleTimeout:  orDefault(opts.HTTP.IdleTimeout, defaultIdleTimeout),
			BaseContext:  func(net.Listener) context.Context { return baseCtx },
		},
		health:          probes,
		logger:          opts.Logger,
		shutdownTimeout: orDefault(opts.ShutdownTimeout, defaultShutdownTimeout),
	}, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Listen binds the listen address. It is called by Run when needed.
func (a *App) Listen() error {
	if a.listener != nil {
		return nil
	}
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.server.Addr, err)
	}
	a.listener = ln
	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (a *App) Addr() string {
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return a.server.Addr
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	if err := a.Listen(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.health.SetReady()
		a.log(slog.LevelInfo, "http server started", "addr", a.Addr())
		errCh <- a.server.Serve(a.listener)
	}()

	select {
	case <-ctx.Done():
		a.log(slog.LevelInfo, "shutdown requested")
		return a.shutdown()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		a.log(slog.LevelError, "http server error", "error", err)
		return err
	}
}

func (a *App) shutdown() error {
	a.health.SetNotReady()
	// baseCtx is usually cancelled already, the timeout must not inherit it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(a.baseCtx), a.shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *App) log(level slog.Level, msg string, args ...any) {
	if a.logger != nil {
		a.logger.Log(a.baseCtx, level, msg, args...)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func logRequests(logger *slog.Logger, next http.Handler) http.Handler {
	if logger == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.DebugContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func orDefault(value, def time.Duration) time.Duration {
	if value <= 0 {
		return def
	}
	return value
}
