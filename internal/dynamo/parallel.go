package dynamo

import (
	"context"
	"sync"
)

// Ensemble runs the same scenario across a set of independently-owned
// systems, one goroutine each. Factories are invoked once per run so no
// system or integrator state is ever shared between goroutines.
type Ensemble struct {
	newSystem     func(run int) System
	newIntegrator func(run int) Integrator
	force         ForceFunc
	numRuns       int
}

func NewEnsemble(newSystem func(run int) System, newIntegrator func(run int) Integrator, force ForceFunc, numRuns int) *Ensemble {
	return &Ensemble{
		newSystem:     newSystem,
		newIntegrator: newIntegrator,
		force:         force,
		numRuns:       numRuns,
	}
}

func (e *Ensemble) Run(ctx context.Context, x0 State, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := cfg
			cfgCopy.Seed = cfg.Seed + int64(idx)

			s := New(e.newSystem(idx), e.newIntegrator(idx), e.force)
			results[idx], errs[idx] = s.Run(ctx, x0.Clone(), cfgCopy)
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
