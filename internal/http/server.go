package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NorousS/anime-reviews/internal/catalog"
	"github.com/NorousS/anime-reviews/internal/config"
)

// HealthChecker reports whether storage is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type poolStatter interface {
	Stats() *pgxpool.Stat
}

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg     config.Config
	health  HealthChecker
	catalog *catalog.Service
	logger  *slog.Logger
	router  chi.Router
	httpSrv *http.Server
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, health HealthChecker, svc *catalog.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Location", middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	s := &Server{
		cfg:     cfg,
		health:  health,
		catalog: svc,
		logger:  logger,
		router:  r,
	}
	if cfg.RateLimitRPS > 0 {
		r.Use(s.rateLimit(newIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)))
	}
	s.registerRoutes()
	return s
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.Get("/", s.handleRoot)
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Route("/api", func(r chi.Router) {
		r.Route("/anime", func(r chi.Router) {
			r.Get("/", s.handleListAnime)
			r.Post("/", s.handleCreateAnime)
			r.Get("/{id}", s.handleGetAnime)
			r.Delete("/{id}", s.handleDeleteAnime)
		})
		r.Route("/reviews", func(r chi.Router) {
			r.Post("/", s.handleCreateReview)
			r.Get("/{id}", s.handleGetReview)
			r.Patch("/{id}", s.handleUpdateReview)
			r.Delete("/{id}", s.handleDeleteReview)
		})
		r.Get("/stats", s.handleStats)
	})

	if dir := s.cfg.StaticDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(dir))))
		} else {
			s.logger.Info("static_dir_skipped", slog.String("dir", dir))
		}
	}
}

// Start boots the HTTP server asynchronously.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http_server_listening", slog.String("addr", s.httpSrv.Addr))
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

type healthResponse struct {
	Status        string `json:"status"`
	TotalConns    *int32 `json:"total_conns,omitempty"`
	IdleConns     *int32 `json:"idle_conns,omitempty"`
	AcquiredConns *int32 `json:"acquired_conns,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Anime Review Site API"})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.health == nil {
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Storage not configured")
		return
	}
	if err := s.health.HealthCheck(ctx); err != nil {
		loggerFrom(r, s.logger).Warn("healthcheck_failed", slog.Any("error", err))
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", http.StatusText(http.StatusServiceUnavailable))
		return
	}

	resp := healthResponse{Status: "ok"}
	if st, ok := s.health.(poolStatter); ok {
		if stat := st.Stats(); stat != nil {
			total, idle, acquired := stat.TotalConns(), stat.IdleConns(), stat.AcquiredConns()
			resp.TotalConns, resp.IdleConns, resp.AcquiredConns = &total, &idle, &acquired
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}
