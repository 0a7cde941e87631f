package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/saudadez21/novel-downloader-sub001/internal/api/http"
	"github.com/saudadez21/novel-downloader-sub001/internal/api/middleware"
	"github.com/saudadez21/novel-downloader-sub001/internal/api/ws"
	"github.com/saudadez21/novel-downloader-sub001/internal/config"
	"github.com/saudadez21/novel-downloader-sub001/internal/decrypt"
	"github.com/saudadez21/novel-downloader-sub001/internal/fetch"
	"github.com/saudadez21/novel-downloader-sub001/internal/logging"
	"github.com/saudadez21/novel-downloader-sub001/internal/monitoring"
	"github.com/saudadez21/novel-downloader-sub001/internal/shared/utils"
	"github.com/saudadez21/novel-downloader-sub001/internal/sites"
	"github.com/saudadez21/novel-downloader-sub001/internal/sources"
	"github.com/saudadez21/novel-downloader-sub001/internal/tracing"
)

// Version is reported by the banner endpoint and the -version flag.
const Version = "0.3.0"

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	httpSrv *http.Server
	logger  *logging.Logger
	metrics *monitoring.Metrics
	caps    *sites.Registry
	jobs    *fetch.Jobs
}

// New creates a fully wired server from configuration.
func New(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	// Capability registry: builtin table plus the optional overlay
	// directory.
	caps, err := sites.NewSeeder(cfg.Sites.OverlayDir, logger).Seed(sites.Defaults())
	if err != nil {
		return nil, fmt.Errorf("build site registry: %w", err)
	}

	srcReg := sources.NewRegistry()
	if err := sources.RegisterBuiltins(srcReg); err != nil {
		return nil, fmt.Errorf("register sources: %w", err)
	}

	// Encrypted sites stay unregistered unless a vendor module is
	// configured; their fetches then fail as site errors, never as
	// silent plaintext passthrough.
	if cfg.Decrypt.ModulePath != "" {
		qd, err := sources.NewQidian(cfg.Decrypt.ModulePath)
		if err != nil {
			return nil, fmt.Errorf("load vendor module: %w", err)
		}
		if err := srcReg.Register(qd); err != nil {
			return nil, err
		}
		logger.Info("vendor unlocking module loaded",
			zap.String("path", cfg.Decrypt.ModulePath))
	}

	metrics := monitoring.NewMetrics()
	metrics.SetSitesRegistered(caps.Len())

	bridge := decrypt.New(
		decrypt.WithDeadline(cfg.Decrypt.Deadline),
		decrypt.WithMaxStackSize(cfg.Decrypt.MaxStackSize),
		decrypt.WithLogger(logger),
		decrypt.WithMetrics(metrics),
	)

	client := fetch.NewClient(cfg.Fetch, logger)
	orch := fetch.NewOrchestrator(caps, srcReg, bridge, client, logger, metrics)
	hub := fetch.NewHub()
	jobs := fetch.NewJobs(orch, hub, cfg.Jobs, logger, metrics)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracing.New("novel-downloader", logger.Logger)))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS())
	router.Use(middleware.BodyLimit(utils.MaxJSONSize))
	router.Use(middleware.GlobalRateLimit(cfg.RateLimit))
	router.Use(middleware.RateLimit(cfg.RateLimit))

	handlers := apihttp.NewHandlers(caps, orch, jobs, metrics, Version)
	wsHandler := ws.NewHandler(hub, logger, metrics)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Capability registry
	router.GET("/sites", handlers.ListSites)
	router.GET("/sites/:id", handlers.GetSite)

	// Content operations
	router.POST("/chapters/fetch", handlers.FetchChapter)
	router.POST("/decrypt", handlers.Decrypt)
	router.POST("/search", handlers.Search)

	// Book jobs
	router.POST("/books/fetch", handlers.FetchBook)
	router.GET("/jobs", handlers.ListJobs)
	router.GET("/jobs/:id", handlers.GetJob)
	router.DELETE("/jobs/:id", handlers.CancelJob)

	// Observability
	router.GET("/stats", handlers.Stats)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// WebSocket job progress
	router.GET("/stream", wsHandler.HandleConnection)

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	return &Server{
		router: router,
		httpSrv: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:  logger,
		metrics: metrics,
		caps:    caps,
		jobs:    jobs,
	}, nil
}

// Router exposes the engine for in-process tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Sites exposes the capability registry.
func (s *Server) Sites() *sites.Registry {
	return s.caps
}

// Jobs exposes the job manager.
func (s *Server) Jobs() *fetch.Jobs {
	return s.jobs
}

// Run starts the listener and blocks until Shutdown or failure.
func (s *Server) Run() error {
	s.logger.Info("server listening",
		zap.String("addr", s.httpSrv.Addr),
		zap.Int("sites", s.caps.Len()),
		zap.String("version", Version),
	)
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests, bounded by the context.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.httpSrv.Shutdown(ctx)
}
