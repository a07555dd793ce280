package filtering

import (
	"github.com/tranvh/hiregate/internal/basehiring"
	"github.com/tranvh/hiregate/internal/resolve"
)

// StageMatcher is the part of the resolver the stage filter needs.
type StageMatcher interface {
	Stage(candidates *basehiring.Candidates, query string) resolve.StageMatch
}

type stageFilter struct {
	matcher StageMatcher
	query   string

	match resolve.StageMatch
}

// NewStage creates a filter that keeps candidates whose pipeline stage
// fuzzy-matches the query. When nothing clears the threshold the pool passes
// through unfiltered and Match().Degraded reports the downgrade.
func NewStage(matcher StageMatcher, query string) *stageFilter {
	return &stageFilter{matcher: matcher, query: query}
}

func (f *stageFilter) Name() string { return "stage" }

// Match returns the stage resolution behind the last Apply call.
func (f *stageFilter) Match() resolve.StageMatch { return f.match }

func (f *stageFilter) Apply(candidates *basehiring.Candidates) (*basehiring.Candidates, Step, error) {
	initial := candidates.Len()
	if f.query == "" {
		return candidates, Step{Initial: initial, Left: initial}, nil
	}

	f.match = f.matcher.Stage(candidates, f.query)
	if f.match.Degraded {
		return candidates, Step{Initial: initial, Left: initial}, nil
	}

	kept := candidates.FilterByStages(f.match.Stages)
	return kept, Step{Initial: initial, Dropped: initial - kept.Len(), Left: kept.Len()}, nil
}
