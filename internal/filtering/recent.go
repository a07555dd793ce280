package filtering

import (
	"time"

	"github.com/tranvh/hiregate/internal/basehiring"
)

// RecentActivityConfig controls the large-pool trim. When a filtered pool
// still exceeds MaxPool candidates, only those updated within Window are
// kept. Zero values disable the trim.
type RecentActivityConfig struct {
	MaxPool int
	Window  time.Duration
}

type recentActivityFilter struct {
	cfg RecentActivityConfig
	now func() time.Time
}

// NewRecentActivity creates a filter that trims oversized pools down to
// recently active candidates.
func NewRecentActivity(cfg RecentActivityConfig) *recentActivityFilter {
	return &recentActivityFilter{cfg: cfg, now: time.Now}
}

func (f *recentActivityFilter) Name() string { return "recent_activity" }

func (f *recentActivityFilter) Apply(candidates *basehiring.Candidates) (*basehiring.Candidates, Step, error) {
	initial := candidates.Len()
	if f.cfg.MaxPool <= 0 || f.cfg.Window <= 0 || initial <= f.cfg.MaxPool {
		return candidates, Step{Initial: initial, Left: initial}, nil
	}

	kept := candidates.UpdatedSince(f.now().Add(-f.cfg.Window))
	return kept, Step{Initial: initial, Dropped: initial - kept.Len(), Left: kept.Len()}, nil
}
