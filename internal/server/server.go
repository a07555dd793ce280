// Package server exposes the resolution engine over HTTP. Every lookup
// parameter that names an entity goes through the fuzzy resolver first, so
// callers can pass either exact ids or loosely phrased names.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tranvh/hiregate/internal/basehiring"
	"github.com/tranvh/hiregate/internal/cache"
	"github.com/tranvh/hiregate/internal/catalog"
	"github.com/tranvh/hiregate/internal/enrich"
	"github.com/tranvh/hiregate/internal/filtering"
	"github.com/tranvh/hiregate/internal/match"
	"github.com/tranvh/hiregate/internal/offerletter"
	"github.com/tranvh/hiregate/internal/resolve"
	"github.com/tranvh/hiregate/internal/sheets"
)

// Stages that an offer-letter lookup is restricted to. A candidate anywhere
// else in the pipeline has no letter to recover.
var offerStages = []string{"Offered", "Hired"}

type resolverService interface {
	Opening(ctx context.Context, query string) (match.Result, error)
	CandidateInOpening(ctx context.Context, openingID, name string, stageAllowList []string) (match.Result, error)
	Stage(candidates *basehiring.Candidates, query string) resolve.StageMatch
	SheetPosition(records []*sheets.TestRecord, query string) match.Result
}

type catalogService interface {
	Openings(ctx context.Context, bypass bool) ([]*catalog.OpeningSummary, error)
	FindJobDescription(ctx context.Context, openingID string) (*catalog.JobDescription, error)
	Users(ctx context.Context) map[string]catalog.UserInfo
}

type hiringClient interface {
	ListCandidates(token, openingID string, startDate, endDate *time.Time) (*basehiring.Candidates, error)
	GetCandidate(token, id string) (*basehiring.Candidate, error)
	GetOpening(token, id string) (*basehiring.OpeningDetail, error)
	ListInterviews(token string) (*basehiring.Interviews, error)
}

type candidateEnricher interface {
	Candidate(ctx context.Context, c *basehiring.Candidate, users map[string]catalog.UserInfo, openingID string) *enrich.View
}

type letterFinder interface {
	Find(ctx context.Context, candidateID string) (*offerletter.Letter, error)
}

type sheetReader interface {
	Configured() bool
	ReadAll(ctx context.Context) ([]*sheets.TestRecord, error)
}

type cacheStatus interface {
	Age(kind cache.Kind) (time.Duration, bool)
	TTL() time.Duration
}

// Config carries the HTTP listener settings and the pool-trim heuristic.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Recent          filtering.RecentActivityConfig
}

type Server struct {
	cfg      Config
	logger   *zap.Logger
	resolver resolverService
	catalog  catalogService
	api      hiringClient
	enricher candidateEnricher
	letters  letterFinder
	sheet    sheetReader
	store    cacheStatus
	token    string
}

func New(
	cfg Config,
	logger *zap.Logger,
	resolver resolverService,
	cat catalogService,
	api hiringClient,
	enricher candidateEnricher,
	letters letterFinder,
	sheet sheetReader,
	store cacheStatus,
	hiringToken string,
) *Server {
	return &Server{
		cfg:      cfg,
		logger:   logger,
		resolver: resolver,
		catalog:  cat,
		api:      api,
		enricher: enricher,
		letters:  letters,
		sheet:    sheet,
		store:    store,
		token:    hiringToken,
	}
}

// Router assembles the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware())

	r.Get("/", s.handleRoot)
	r.Get("/api/openings", s.handleOpenings)
	r.Get("/api/opening/job-description", s.handleJobDescription)
	r.Get("/api/opening/{opening}/candidates", s.handleCandidatesByOpening)
	r.Get("/api/interviews", s.handleInterviews)
	r.Get("/api/candidate", s.handleCandidate)
	r.Get("/api/offer-letter", s.handleOfferLetter)
	r.Get("/api/feedback", s.handleFeedback)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// Serve runs the HTTP server until ctx is canceled, then drains in-flight
// requests within the shutdown timeout.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return <-errCh
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the uniform failure shape. BestScore is set on resolution
// misses so callers can see how close the nearest entity was.
type errorBody struct {
	Success   bool     `json:"success"`
	Error     string   `json:"error"`
	BestScore *float64 `json:"best_score,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

func writeResolutionMiss(w http.ResponseWriter, message string, score float64) {
	writeJSON(w, http.StatusNotFound, errorBody{Error: message, BestScore: &score})
}

func (s *Server) writeInternal(w http.ResponseWriter, err error, msg string) {
	s.logger.Error(msg, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
