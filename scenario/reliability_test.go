package scenario

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rfielding/flowsim/dist"
	"github.com/rfielding/flowsim/flow"
	"github.com/rfielding/flowsim/reliability"
)

func TestBuildSchedulesSamplesFailureModeForGatedComponent(t *testing.T) {
	input := &Input{
		SimulationInfo: SimulationInfo{},
		Components: map[string]ComponentSpec{
			"gen": {ID: "gen", Kind: KindSource, FailureModes: []string{"random-outage"}},
		},
		Distributions: map[string]dist.Spec{
			"ttf": {ID: "ttf", Kind: dist.KindFixed, FixedSeconds: 5},
			"ttr": {ID: "ttr", Kind: dist.KindFixed, FixedSeconds: 2},
		},
		FailureModes: map[string]reliability.FailureMode{
			"random-outage": {ID: "random-outage", TimeToFailureDist: "ttf", TimeToRepairDist: "ttr"},
		},
	}
	sc := Scenario{ID: "s1", Duration: 20}

	schedules := BuildSchedules(input, sc, 0)
	sched, ok := schedules[ScheduleKey{ScenarioID: "s1", ComponentID: "gen"}]
	require.Truef(t, ok, "expected a schedule for gen under scenario s1")
	require.NotEmptyf(t, sched, "fixed 5s-to-fail within a 20s horizon")

	require.Equal(t, flow.RealTime(5), sched[0].Time)
	require.Falsef(t, sched[0].Available, "first transition is the failure (fixed time-to-failure)")
	require.Equal(t, flow.RealTime(7), sched[1].Time)
	require.Truef(t, sched[1].Available, "second transition is the repair (fixed time-to-repair)")
}

func TestBuildSchedulesEmptyWithNoCatalog(t *testing.T) {
	input := &Input{Components: map[string]ComponentSpec{"gen": {ID: "gen", Kind: KindSource}}}
	sc := Scenario{ID: "s1", Duration: 20}
	require.Emptyf(t, BuildSchedules(input, sc, 0), "expected no schedules with an empty catalog")
}

func TestBuildSchedulesVariesByOccurrence(t *testing.T) {
	input := &Input{
		Components: map[string]ComponentSpec{
			"gen": {ID: "gen", Kind: KindSource, FragilityModes: []string{"flood"}},
		},
		FragilityModes: map[string]reliability.FragilityMode{
			"flood": {ID: "flood", HazardKey: "flood_depth_m", Curve: []reliability.CurvePoint{
				{Intensity: 0, FailureProb: 0.5},
				{Intensity: 10, FailureProb: 0.5},
			}},
		},
	}
	sc := Scenario{ID: "s1", Duration: 20, Intensities: map[string]float64{"flood_depth_m": 1}}

	// with a 0.5 failure probability, different occurrences should not all
	// draw the same outcome deterministically by construction; at minimum
	// each occurrence's seed must differ, which we check indirectly by
	// confirming repeated calls with the same occurrence are reproducible.
	a := BuildSchedules(input, sc, 0)
	b := BuildSchedules(input, sc, 0)
	require.Lenf(t, b, len(a), "same occurrence should be reproducible")
	for k, va := range a {
		vb, ok := b[k]
		require.Truef(t, ok, "schedule for %v differs across repeated calls with the same occurrence", k)
		require.Lenf(t, vb, len(va), "schedule for %v differs across repeated calls with the same occurrence", k)
	}
}
