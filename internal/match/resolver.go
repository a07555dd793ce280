package match

import (
	"go.uber.org/zap"
)

// Entry is the shape every resolvable thing reduces to before matching: an
// opaque upstream id and the display name a human would type.
type Entry struct {
	ID   string
	Name string
}

// Result is the outcome of one resolution attempt. ID and MatchedName are
// empty when the best score stayed below the threshold; Score always carries
// the best similarity achieved so callers can report how close the miss was.
type Result struct {
	ID          string
	MatchedName string
	Score       float64
}

// Matched reports whether the resolution produced an accepted entity.
func (r Result) Matched() bool {
	return r.ID != ""
}

// Resolver runs the exact-match-then-fuzzy algorithm shared by every entity
// kind. Specializations differ only in pool construction and threshold.
type Resolver struct {
	scorer *Scorer
	logger *zap.Logger
}

func NewResolver(logger *zap.Logger) *Resolver {
	return &Resolver{
		scorer: NewScorer(),
		logger: logger,
	}
}

// Resolve matches query against the pool. An entry whose id or name equals
// the query verbatim wins immediately with score 1.0; pool order breaks ties.
// Otherwise the similarity scorer picks the best fuzzy candidate, and the
// threshold decides acceptance. Scorer failures are downgraded to a
// zero-confidence miss: a match failure must never block the surrounding
// request.
func (r *Resolver) Resolve(query string, pool []Entry, threshold float64) Result {
	if query == "" || len(pool) == 0 {
		return Result{}
	}

	for _, e := range pool {
		if e.ID == query || e.Name == query {
			return Result{ID: e.ID, MatchedName: e.Name, Score: 1.0}
		}
	}

	names := make([]string, len(pool))
	for i, e := range pool {
		names[i] = e.Name
	}

	scores, err := r.scorer.ScoreAll(query, names)
	if err != nil {
		r.logger.Debug("similarity scoring degraded to zero confidence",
			zap.String("query", query),
			zap.Int("pool_size", len(pool)),
			zap.Error(err),
		)
		return Result{}
	}

	bestIdx := 0
	for i, score := range scores {
		if score > scores[bestIdx] {
			bestIdx = i
		}
	}
	best := scores[bestIdx]

	if best < threshold {
		r.logger.Debug("no candidate above threshold",
			zap.String("query", query),
			zap.Float64("best_score", best),
			zap.Float64("threshold", threshold),
		)
		return Result{Score: best}
	}

	return Result{
		ID:          pool[bestIdx].ID,
		MatchedName: pool[bestIdx].Name,
		Score:       best,
	}
}
