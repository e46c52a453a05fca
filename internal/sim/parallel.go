package sim

import (
	"context"
	"sync"
)

// Ensemble runs independent engines that differ only in their seed.
type Ensemble struct {
	build     func(seed int64) (*Engine, error)
	numRuns   int
	seedStart int64
}

// NewEnsemble prepares numRuns engines; build must return a fresh engine
// seeded with seed, already primed with whatever bursts the run needs.
func NewEnsemble(build func(seed int64) (*Engine, error), numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, cfg RunConfig) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			eng, err := e.build(e.seedStart + int64(idx))
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = eng.Run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
