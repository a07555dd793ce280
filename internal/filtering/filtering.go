// Package filtering narrows a candidate pool through an ordered list of
// steps before the expensive per-candidate enrichment runs. Each step reports
// how much of the pool it dropped, so the log tells the whole story of why a
// response contains the candidates it does.
package filtering

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tranvh/hiregate/internal/basehiring"
)

// Filter is a single narrowing step applied to a candidate pool.
type Filter interface {
	Name() string
	Apply(candidates *basehiring.Candidates) (*basehiring.Candidates, Step, error)
}

// Step describes the result of executing one filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Run executes the filters sequentially and returns the remaining pool.
func Run(logger *zap.Logger, steps []Filter, candidates *basehiring.Candidates) (*basehiring.Candidates, error) {
	for _, step := range steps {
		next, info, err := step.Apply(candidates)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		logger.Debug("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		candidates = next
	}

	return candidates, nil
}
