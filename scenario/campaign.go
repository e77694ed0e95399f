package scenario

import (
	"context"
	"sync"
)

// RunCampaign runs every occurrence of one scenario as an independent
// replication, fanned out over a bounded worker pool (SPEC_FULL §5's
// campaign-level concurrency: replications are embarrassingly parallel
// since each owns its own flow.Network and flow.FlowWriter; only the
// result slice is shared, and that's written by index, not by a
// guarded append, so workers never contend). ctx is passed to every
// occurrence's RunnerOptions.Ctx; cancelling it (or letting its deadline
// expire) stops in-flight occurrences at their next event instant and
// prevents queued ones from ever starting their scheduler loop. A nil
// ctx means no deadline, matching flow.Scheduler.RunUntil.
func RunCampaign(ctx context.Context, input *Input, sc Scenario, workers int) []Results {
	n := sc.MaxOccurrences
	if n <= 0 {
		n = 1
	}
	if workers <= 0 {
		workers = 1
	}

	out := make([]Results, n)
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			res := RunInstance(input, sc, RunnerOptions{Occurrence: i, Ctx: ctx})
			out[i] = *res
		}(i)
	}
	wg.Wait()
	return out
}

// RunAll runs every scenario in input's campaign, returning an AllResults
// keyed by scenario id (spec §6's AllResults).
func RunAll(ctx context.Context, input *Input, workers int) AllResults {
	all := AllResults{IsGood: true, Results: make(map[string][]Results, len(input.Scenarios))}
	for id, sc := range input.Scenarios {
		occurrences := RunCampaign(ctx, input, sc, workers)
		all.Results[id] = occurrences
		for _, r := range occurrences {
			if !r.IsGood {
				all.IsGood = false
			}
		}
	}
	return all
}
