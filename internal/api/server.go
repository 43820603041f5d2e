// Package api exposes pipeline reports as flat JSON over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/odds-edge/internal/models"
	"github.com/yourusername/odds-edge/internal/repository"
	"github.com/yourusername/odds-edge/internal/service"
)

// OddsProvider is the part of the odds service the API reads from
type OddsProvider interface {
	Latest(sportKey string) (*service.Report, bool)
	RunSport(ctx context.Context, sportKey string) (*service.Report, error)
	Sports() []string
	Metrics() service.IngestionStats
}

// HistoryReader reads stored line history
type HistoryReader interface {
	LatestForMarket(ctx context.Context, marketID string) ([]models.Quote, error)
	History(ctx context.Context, marketID, outcomeID, bookmaker string, start, end time.Time) ([]models.Quote, error)
}

var _ HistoryReader = (repository.QuoteRepository)(nil)

// Options configures the API server
type Options struct {
	Port           int
	AllowedOrigins []string
	DefaultSport   string
	RefreshTimeout time.Duration
}

// Server serves the JSON API
type Server struct {
	odds    OddsProvider
	history HistoryReader
	opts    Options
	logger  *logrus.Entry
	server  *http.Server
}

// NewServer creates a new API server. history may be nil when line history is disabled.
func NewServer(odds OddsProvider, history HistoryReader, opts Options, logger *logrus.Logger) *Server {
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = time.Minute
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{
		odds:    odds,
		history: history,
		opts:    opts,
		logger:  logger.WithField("component", "api"),
	}
}

// Router builds the route table
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/sports", s.handleSports)
		r.Get("/stats", s.handleStats)

		r.Get("/opportunities", s.handleOpportunities)
		r.Get("/arbitrage", s.handleArbitrage)
		r.Get("/comparisons", s.handleComparisons)
		r.Get("/skips", s.handleSkips)
		r.Post("/refresh", s.handleRefresh)

		r.Get("/convert", s.handleConvert)
		r.Get("/devig", s.handleDevig)

		r.Get("/markets/{marketID}/latest", s.handleMarketLatest)
		r.Get("/history", s.handleHistory)
	})

	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.opts.Port),
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: s.opts.RefreshTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("port", s.opts.Port).Info("API server starting")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("API server shutting down")
	return s.server.Shutdown(shutdownCtx)
}

// requestLogger logs each request through logrus
func requestLogger(logger *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
				"request_id":  chimiddleware.GetReqID(r.Context()),
			}).Debug("HTTP request")
		})
	}
}
