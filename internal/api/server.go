// Package api serves EduGenie over HTTP: tutor chat, summaries, adaptive
// quiz sessions, history, learning plans and the leaderboard.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/abhisek/edugenie/internal/difficulty"
	"github.com/abhisek/edugenie/internal/gateway"
	"github.com/abhisek/edugenie/internal/learningpath"
	"github.com/abhisek/edugenie/internal/metrics"
	"github.com/abhisek/edugenie/internal/quizgen"
	"github.com/abhisek/edugenie/internal/rewards"
	"github.com/abhisek/edugenie/internal/store"
	"github.com/abhisek/edugenie/internal/tutor"
)

// Config holds HTTP server settings.
type Config struct {
	CORSOrigins      []string
	SessionTTL       time.Duration
	DefaultQuestions int
}

// Deps are the services the API exposes.
type Deps struct {
	Records   store.QuizRecordRepo
	Gateway   *gateway.Gateway
	Generator quizgen.Generator
	Grader    quizgen.AnswerGrader
	Adapter   difficulty.Adapter
	Rewards   *rewards.Service
	Plans     *learningpath.Service
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// Server is the HTTP API.
type Server struct {
	deps     Deps
	cfg      Config
	sessions *registry
	tutors   *tutors
	router   chi.Router
	logger   *zap.Logger
	now      func() time.Time
}

// New builds the router.
func New(deps Deps, cfg Config) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if cfg.DefaultQuestions < 1 {
		cfg.DefaultQuestions = 5
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	s := &Server{
		deps:     deps,
		cfg:      cfg,
		sessions: newRegistry(cfg.SessionTTL),
		logger:   deps.Logger,
		now:      time.Now,
	}
	s.tutors = newTutors(cfg.SessionTTL, func() *tutor.Agent {
		return tutor.NewAgent(deps.Gateway, "", deps.Logger)
	})
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(s.observe)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/ask", s.handleAsk)
		r.Post("/summarize", s.handleSummarize)

		r.Post("/quizzes", s.handleStartQuiz)
		r.Get("/quizzes/{id}", s.handleGetQuiz)
		r.Post("/quizzes/{id}/answers", s.handleSubmitAnswer)

		r.Get("/users/{user}/history", s.handleHistory)
		r.Get("/users/{user}/plan", s.handlePlan)
		r.Get("/users/{user}/xp", s.handleXP)
		r.Get("/leaderboard", s.handleLeaderboard)
	})
	return r
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// observe logs each request and records it in metrics.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		s.deps.Metrics.ObserveHTTP(r.Method, route, status, d)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", d),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// ListenAndServe serves on addr until ctx is cancelled, sweeping idle
// sessions in the background.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweepLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) sweepLoop(ctx context.Context) {
	if s.cfg.SessionTTL <= 0 {
		return
	}
	interval := s.cfg.SessionTTL / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := s.now()
			if n := s.sessions.sweep(now); n > 0 {
				s.logger.Debug("expired idle quiz sessions", zap.Int("count", n))
			}
			if n := s.tutors.sweep(now); n > 0 {
				s.logger.Debug("expired idle tutor conversations", zap.Int("count", n))
			}
		}
	}
}
