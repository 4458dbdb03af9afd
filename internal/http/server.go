package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kicklab/challenge-api/internal/auth"
	"github.com/kicklab/challenge-api/internal/cache"
	"github.com/kicklab/challenge-api/internal/config"
	"github.com/kicklab/challenge-api/internal/mediastore"
	"github.com/kicklab/challenge-api/internal/metrics"
	"github.com/kicklab/challenge-api/internal/rating"
	"github.com/kicklab/challenge-api/internal/repository"
	"github.com/kicklab/challenge-api/internal/store"
)

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg      config.Config
	store    *store.Store
	repo     *repository.Repository
	ledger   *rating.Ledger
	verifier *auth.Verifier
	media    mediastore.Client
	users    *cache.UserInfo
	board    *cache.Leaderboard
	metrics  *metrics.Metrics
	logger   *zap.SugaredLogger
	router   chi.Router
	httpSrv  *http.Server
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, st *store.Store, repo *repository.Repository, ledger *rating.Ledger, verifier *auth.Verifier, media mediastore.Client, users *cache.UserInfo, board *cache.Leaderboard, m *metrics.Metrics, logger *zap.SugaredLogger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	s := &Server{
		cfg:      cfg,
		store:    st,
		repo:     repo,
		ledger:   ledger,
		verifier: verifier,
		media:    media,
		users:    users,
		board:    board,
		metrics:  m,
		logger:   logger,
		router:   r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	s.router.Route("/challenges", func(r chi.Router) {
		r.Get("/", s.handleListChallenges)
		r.Post("/", s.handleCreateChallenge)
		r.Route("/{challengeID}", func(r chi.Router) {
			r.Get("/", s.handleGetChallenge)
			r.Get("/submissions", s.handleListSubmissions)
			r.Post("/submissions", s.handleCreateSubmission)
			r.Get("/leaderboard", s.handleLeaderboard)
		})
	})
	s.router.Route("/submissions/{submissionID}", func(r chi.Router) {
		r.Delete("/", s.handleDeleteSubmission)
		r.Post("/ratings", s.handleSubmitRating)
		r.Get("/ratings/me", s.handleMyRatingState)
	})
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

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.HealthCheck(ctx); err != nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
