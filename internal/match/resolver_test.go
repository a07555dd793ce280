package match

import (
	"testing"

	"go.uber.org/zap"
)

func testPool() []Entry {
	return []Entry{
		{ID: "101", Name: "Backend Engineer"},
		{ID: "102", Name: "Senior Backend Engineer"},
		{ID: "103", Name: "Data Analyst"},
	}
}

func TestResolveExactNameShortCircuits(t *testing.T) {
	t.Parallel()

	r := NewResolver(zap.NewNop())
	// A threshold of 2.0 would reject any fuzzy result; the exact match must
	// never consult the scorer at all.
	got := r.Resolve("Backend Engineer", testPool(), 2.0)

	if got.ID != "101" || got.MatchedName != "Backend Engineer" || got.Score != 1.0 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestResolveExactIDShortCircuits(t *testing.T) {
	t.Parallel()

	got := NewResolver(zap.NewNop()).Resolve("103", testPool(), 0.5)
	if got.ID != "103" || got.MatchedName != "Data Analyst" || got.Score != 1.0 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestResolveExactTieBreaksByPoolOrder(t *testing.T) {
	t.Parallel()

	pool := []Entry{
		{ID: "1", Name: "Recruiter"},
		{ID: "2", Name: "Recruiter"},
	}

	got := NewResolver(zap.NewNop()).Resolve("Recruiter", pool, 0.5)
	if got.ID != "1" {
		t.Fatalf("expected first pool entry to win the tie, got id %q", got.ID)
	}
}

func TestResolveFuzzyAcceptAndReject(t *testing.T) {
	t.Parallel()

	r := NewResolver(zap.NewNop())

	accepted := r.Resolve("Backend Eng", testPool(), 0.5)
	if !accepted.Matched() {
		t.Fatalf("expected fuzzy acceptance, got %+v", accepted)
	}
	if accepted.ID != "101" && accepted.ID != "102" {
		t.Fatalf("expected a backend opening, got id %q", accepted.ID)
	}
	if accepted.Score <= 0 || accepted.Score >= 1 {
		t.Fatalf("expected fuzzy score strictly between 0 and 1, got %f", accepted.Score)
	}

	rejected := r.Resolve("Backend Eng", testPool(), 0.95)
	if rejected.Matched() {
		t.Fatalf("expected rejection at threshold 0.95, got %+v", rejected)
	}
	if rejected.Score != accepted.Score {
		t.Fatalf("rejection must still report the best score: got %f, want %f", rejected.Score, accepted.Score)
	}
}

func TestResolveThresholdMonotonicity(t *testing.T) {
	t.Parallel()

	r := NewResolver(zap.NewNop())
	pool := testPool()
	query := "Senior Backend"

	prevMatched := true
	for _, threshold := range []float64{0.1, 0.3, 0.5, 0.7, 0.9, 0.99} {
		matched := r.Resolve(query, pool, threshold).Matched()
		if matched && !prevMatched {
			t.Fatalf("raising the threshold to %f turned a rejection into a match", threshold)
		}
		prevMatched = matched
	}
}

func TestResolveEmptyAndDegeneratePools(t *testing.T) {
	t.Parallel()

	r := NewResolver(zap.NewNop())

	tests := []struct {
		name string
		pool []Entry
	}{
		{name: "empty pool", pool: nil},
		{name: "nameless entries", pool: []Entry{{ID: "1"}, {ID: "2"}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := r.Resolve("anyone", tt.pool, 0.5)
			if got.Matched() || got.Score != 0 {
				t.Fatalf("expected zero-confidence miss, got %+v", got)
			}
		})
	}
}

func TestResolveEmptyQuery(t *testing.T) {
	t.Parallel()

	got := NewResolver(zap.NewNop()).Resolve("", testPool(), 0.5)
	if got.Matched() || got.Score != 0 {
		t.Fatalf("expected zero-confidence miss for empty query, got %+v", got)
	}
}
