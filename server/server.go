package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/voicemap/logger"
	"github.com/kbukum/voicemap/server/endpoint"
	"github.com/kbukum/voicemap/server/middleware"
)

const (
	shutdownGrace = 5 * time.Second
	// multipartMemory keeps typical uploads off disk while parsing.
	multipartMemory = 32 << 20
)

// Server serves the Gin engine and any extra handlers from one port, with
// h2c so HTTP/2 clients work without TLS.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	mux        *http.ServeMux
	h2s        *http2.Server
	config     Config
	log        *logger.Logger
}

// New builds an unstarted Server. Middleware is applied by ApplyMiddleware
// or ApplyDefaults.
func New(cfg Config, log *logger.Logger) *Server {
	mode := gin.ReleaseMode
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		mode = gin.DebugMode
	}
	gin.SetMode(mode)

	engine := gin.New()
	engine.MaxMultipartMemory = multipartMemory
	mux := http.NewServeMux()
	mux.Handle("/", engine)

	s := &Server{
		engine: engine,
		mux:    mux,
		h2s:    &http2.Server{MaxConcurrentStreams: 250, IdleTimeout: 2 * time.Minute},
		config: cfg,
		log:    log.WithComponent("server"),
		httpServer: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       seconds(cfg.ReadTimeout),
			WriteTimeout:      seconds(cfg.WriteTimeout),
			IdleTimeout:       seconds(cfg.IdleTimeout),
		},
	}
	s.wrap(mux)
	return s
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func (s *Server) wrap(h http.Handler) {
	s.httpServer.Handler = h2c.NewHandler(h, s.h2s)
}

// GinEngine exposes the engine for route registration.
func (s *Server) GinEngine() *gin.Engine { return s.engine }

// Handler is the complete handler, middleware included.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Addr is the configured listen address.
func (s *Server) Addr() string { return s.httpServer.Addr }

// Handle mounts h on the root mux beside the Gin engine.
func (s *Server) Handle(pattern string, h http.Handler) {
	s.mux.Handle(pattern, h)
	s.log.Debug("Handler mounted", logger.Fields("pattern", pattern))
}

// Start binds the listener synchronously so port conflicts fail startup,
// then serves in the background.
func (s *Server) Start(ctx context.Context) error {
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server stopped", logger.Fields(logger.FieldError, err.Error()))
		}
	}()
	s.log.Info("HTTP server listening", logger.Fields("addr", ln.Addr().String()))
	return nil
}

// Stop drains in-flight requests for at most shutdownGrace.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownGrace)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.log.Error("HTTP server shutdown failed", logger.Fields(logger.FieldError, err.Error()))
		return err
	}
	s.log.Info("HTTP server stopped")
	return nil
}

// ApplyMiddleware wraps the root mux, outermost first: recovery, request id,
// CORS, the optional rate limit, the body cap and request logging.
func (s *Server) ApplyMiddleware() {
	mws := []middleware.Middleware{
		middleware.Recovery(s.log),
		middleware.RequestID(),
		middleware.CORS(&s.config.CORS),
	}
	if s.config.RateLimit.RequestsPerMinute > 0 {
		mws = append(mws, middleware.RateLimit(s.config.RateLimit))
	}
	if s.config.MaxBodySize != "" {
		mws = append(mws, middleware.BodySizeLimit(s.config.MaxBodySize))
	}
	mws = append(mws, middleware.RequestLogger(s.log))
	s.wrap(middleware.Chain(mws...)(s.mux))
}

// RegisterDefaultEndpoints adds /health, /info, /version and /metrics.
func (s *Server) RegisterDefaultEndpoints(service string, checker endpoint.HealthChecker, gauges endpoint.Gauges) {
	s.engine.GET("/health", endpoint.Health(service, checker))
	s.engine.GET("/info", endpoint.Info(service))
	s.engine.GET("/version", endpoint.Version())
	s.engine.GET("/metrics", endpoint.Metrics(gauges))
}

// ApplyDefaults is ApplyMiddleware followed by RegisterDefaultEndpoints.
func (s *Server) ApplyDefaults(service string, checker endpoint.HealthChecker, gauges endpoint.Gauges) {
	s.ApplyMiddleware()
	s.RegisterDefaultEndpoints(service, checker, gauges)
}
