package dynamo

import (
	"context"
	"sync"
)

// RunFunc executes one complete, self-contained simulation run for the
// given seed: sample parameters, build the system, integrate. It must not
// share mutable state with other runs.
type RunFunc func(ctx context.Context, seed int64) (*Result, error)

// Ensemble fans independent runs out across goroutines. Run i is seeded
// with seedStart+i so draws stay reproducible and uncorrelated.
type Ensemble struct {
	runs      int
	seedStart int64
	fn        RunFunc
}

func NewEnsemble(runs int, seedStart int64, fn RunFunc) *Ensemble {
	return &Ensemble{runs: runs, seedStart: seedStart, fn: fn}
}

// Run executes all runs and returns their results in run order. The first
// failing run's error is returned; completed results are kept.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, e.runs)
	errs := make([]error, e.runs)

	var wg sync.WaitGroup
	for i := 0; i < e.runs; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = e.fn(ctx, e.seedStart+int64(idx))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
