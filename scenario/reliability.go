package scenario

import (
	"github.com/rfielding/flowsim/dist"
	"github.com/rfielding/flowsim/flow"
	"github.com/rfielding/flowsim/reliability"
)

// BuildSchedules samples one occurrence's component availability
// schedules from input's failure/fragility catalog. Each occurrence gets
// its own seed derived from the campaign's random_seed and its index, so
// occurrences of the same scenario draw independent outage histories
// while the whole run stays reproducible given the same seed (spec §6, §9).
func BuildSchedules(input *Input, sc Scenario, occurrence int) map[ScheduleKey][]flow.TimeState {
	out := make(map[ScheduleKey][]flow.TimeState)
	if len(input.FailureModes) == 0 && len(input.FragilityModes) == 0 {
		return out
	}

	seed := int64(occurrence)*1000003 + 1
	if input.SimulationInfo.RandomSeed != nil {
		seed = *input.SimulationInfo.RandomSeed*1000003 + int64(occurrence)
	}
	specs := make([]dist.Spec, 0, len(input.Distributions))
	for _, d := range input.Distributions {
		specs = append(specs, d)
	}
	rng := dist.New(seed, specs)

	for id, cs := range input.Components {
		var fragility, failure []flow.TimeState
		for _, modeID := range cs.FragilityModes {
			mode, ok := input.FragilityModes[modeID]
			if !ok {
				continue
			}
			fragility = append(fragility, reliability.BuildFragilitySchedule(mode, sc.Intensities, sc.Duration, rng)...)
		}
		for _, modeID := range cs.FailureModes {
			mode, ok := input.FailureModes[modeID]
			if !ok {
				continue
			}
			failure = append(failure, reliability.BuildFailureSchedule(mode, sc.Duration, rng)...)
		}
		if len(fragility) == 0 && len(failure) == 0 {
			continue
		}
		out[ScheduleKey{ScenarioID: sc.ID, ComponentID: id}] = reliability.Combine(fragility, failure)
	}
	return out
}
