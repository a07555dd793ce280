// Package resolve specializes the generic matcher per entity kind. The
// algorithm never changes between kinds; only the pool construction and the
// acceptance threshold do.
package resolve

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tranvh/hiregate/internal/basehiring"
	"github.com/tranvh/hiregate/internal/catalog"
	"github.com/tranvh/hiregate/internal/logger"
	"github.com/tranvh/hiregate/internal/match"
	"github.com/tranvh/hiregate/internal/sheets"
)

// Acceptance thresholds per entity kind. Stage matching is deliberately more
// permissive: callers phrase stage names loosely ("offer" for "Offered") and
// over-filtering loses candidates silently.
const (
	OpeningThreshold   = 0.5
	CandidateThreshold = 0.5
	StageThreshold     = 0.3
	TestThreshold      = 0.5
	SheetThreshold     = 0.5
)

type candidateAPI interface {
	ListCandidates(token, openingID string, startDate, endDate *time.Time) (*basehiring.Candidates, error)
}

type Service struct {
	resolver *match.Resolver
	catalog  *catalog.Catalog
	api      candidateAPI
	logger   *zap.Logger
	token    string
}

func NewService(cat *catalog.Catalog, api candidateAPI, logger *zap.Logger, hiringToken string) *Service {
	return &Service{
		resolver: match.NewResolver(logger),
		catalog:  cat,
		api:      api,
		logger:   logger,
		token:    hiringToken,
	}
}

// Opening resolves a human-typed opening name or a verbatim id against the
// cached active openings. The returned error is a fetch failure, never a
// resolution miss.
func (s *Service) Opening(ctx context.Context, query string) (match.Result, error) {
	openings, err := s.catalog.Openings(ctx, false)
	if err != nil {
		return match.Result{}, fmt.Errorf("loading openings pool: %w", err)
	}

	pool := make([]match.Entry, len(openings))
	for i, opening := range openings {
		pool[i] = match.Entry{ID: opening.ID, Name: opening.Name}
	}

	result := s.resolver.Resolve(query, pool, OpeningThreshold)
	s.logResolution("opening", query, result)

	return result, nil
}

// CandidateInOpening resolves a candidate name inside one opening. The
// candidate list is fetched live: it is large, mutable and never cached.
// stageAllowList, when non-empty, narrows the pool before matching (offer
// letters only look at Offered/Hired candidates).
func (s *Service) CandidateInOpening(ctx context.Context, openingID, name string, stageAllowList []string) (match.Result, error) {
	candidates, err := s.api.ListCandidates(s.token, openingID, nil, nil)
	if err != nil {
		return match.Result{}, fmt.Errorf("loading candidates of opening %s: %w", openingID, err)
	}

	filtered := candidates.FilterByStages(stageAllowList)

	pool := make([]match.Entry, 0, filtered.Len())
	for _, candidate := range filtered.Items {
		if candidate.Name == "" {
			continue
		}
		pool = append(pool, match.Entry{ID: candidate.ID, Name: candidate.Name})
	}

	result := s.resolver.Resolve(name, pool, CandidateThreshold)
	s.logResolution("candidate", name, result)

	return result, nil
}

// StageMatch is the outcome of resolving a loose stage phrase against the
// stages observed in a candidate pool. Degraded means no stage cleared the
// threshold and the caller should apply no stage filter at all; the warning
// is surfaced so consumers can tell the caller filtering did not happen.
type StageMatch struct {
	Stages   []string
	Result   match.Result
	Degraded bool
}

// Stage resolves a stage phrase against the distinct stage names present in
// the candidate pool.
func (s *Service) Stage(candidates *basehiring.Candidates, query string) StageMatch {
	names := candidates.StageNames()

	pool := make([]match.Entry, len(names))
	for i, name := range names {
		pool[i] = match.Entry{ID: name, Name: name}
	}

	result := s.resolver.Resolve(query, pool, StageThreshold)
	if !result.Matched() {
		s.logger.Warn("stage phrase matched nothing, leaving pool unfiltered",
			zap.String("query", query),
			zap.Float64("best_score", result.Score),
			zap.Strings("observed_stages", names),
		)
		return StageMatch{Result: result, Degraded: true}
	}

	s.logResolution("stage", query, result)

	return StageMatch{Stages: []string{result.MatchedName}, Result: result}
}

// Test resolves an assessment test by name within one candidate's records.
func (s *Service) Test(records []*sheets.TestRecord, query string) (*sheets.TestRecord, match.Result) {
	pool := make([]match.Entry, 0, len(records))
	byName := make(map[string]*sheets.TestRecord, len(records))
	for _, record := range records {
		if record.TestName == "" {
			continue
		}
		if _, ok := byName[record.TestName]; !ok {
			byName[record.TestName] = record
		}
		pool = append(pool, match.Entry{ID: record.TestName, Name: record.TestName})
	}

	result := s.resolver.Resolve(query, pool, TestThreshold)
	s.logResolution("test", query, result)

	if !result.Matched() {
		return nil, result
	}

	return byName[result.ID], result
}

// SheetPosition resolves a job phrase against the distinct applied-for
// positions present in the sheet records. A miss means the caller should not
// filter by position at all.
func (s *Service) SheetPosition(records []*sheets.TestRecord, query string) match.Result {
	seen := make(map[string]bool, len(records))
	pool := make([]match.Entry, 0, len(records))
	for _, record := range records {
		if record.Position == "" || seen[record.Position] {
			continue
		}
		seen[record.Position] = true
		pool = append(pool, match.Entry{ID: record.Position, Name: record.Position})
	}

	result := s.resolver.Resolve(query, pool, SheetThreshold)
	s.logResolution("sheet_position", query, result)

	return result
}

// SheetCandidate resolves a spreadsheet candidate record by name and
// applied-for position simultaneously: both sides are concatenated into one
// composite string and matched with the usual algorithm.
func (s *Service) SheetCandidate(records []*sheets.TestRecord, name, position string) match.Result {
	seen := make(map[string]bool, len(records))
	pool := make([]match.Entry, 0, len(records))
	for _, record := range records {
		if record.CandidateID == "" || seen[record.CandidateID] {
			continue
		}
		seen[record.CandidateID] = true
		pool = append(pool, match.Entry{
			ID:   record.CandidateID,
			Name: strings.TrimSpace(record.CandidateName + " " + record.Position),
		})
	}

	query := strings.TrimSpace(name + " " + position)
	result := s.resolver.Resolve(query, pool, SheetThreshold)
	s.logResolution("sheet_candidate", query, result)

	return result
}

// Queries can be whole free-text job descriptions; keep log lines bounded.
const maxLoggedQuery = 120

func (s *Service) logResolution(kind, query string, result match.Result) {
	query = logger.TruncateForLog(query, maxLoggedQuery)

	if !result.Matched() {
		s.logger.Debug("resolution miss",
			zap.String("kind", kind),
			zap.String("query", query),
			zap.Float64("best_score", result.Score),
		)
		return
	}

	s.logger.Debug("resolved entity",
		zap.String("kind", kind),
		zap.String("query", query),
		zap.String("id", result.ID),
		zap.String("matched_name", result.MatchedName),
		zap.Float64("score", result.Score),
	)
}
