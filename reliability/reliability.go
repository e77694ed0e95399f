// Package reliability precomputes component availability schedules from
// failure and fragility modes, turning a scenario's hazard intensities
// into the []flow.TimeState sequences the flow kernel's OnOffSwitch
// consumes (spec §6, §9).
package reliability

import "github.com/rfielding/flowsim/flow"

// FailureMode is a recurring random outage: time-to-failure and
// time-to-repair are each drawn from a named distribution (spec §6).
type FailureMode struct {
	ID               string
	TimeToFailureDist string
	TimeToRepairDist  string
}

// FragilityMode ties a component's availability to a scenario intensity
// (e.g. flood depth, wind speed): draw a uniform(0,1) and compare against
// the fragility curve's failure probability at the scenario's intensity
// (spec §6). A component that fails this draw takes one-shot damage at
// t=0; RepairDist, if set, draws a single repair time for that damage
// (spec §8 S4's "fragility with repair"). With RepairDist unset, the
// failure is permanent for the rest of the scenario.
type FragilityMode struct {
	ID         string
	HazardKey  string       // key into Scenario.Intensities
	Curve      []CurvePoint // sorted by Intensity ascending
	RepairDist string       // optional; "" = permanent failure
}

// CurvePoint is one (hazard intensity, failure probability) pair of a
// fragility curve.
type CurvePoint struct {
	Intensity   float64
	FailureProb float64
}

func (c FragilityMode) failureProbAt(intensity float64) float64 {
	if len(c.Curve) == 0 {
		return 0
	}
	if intensity <= c.Curve[0].Intensity {
		return c.Curve[0].FailureProb
	}
	last := c.Curve[len(c.Curve)-1]
	if intensity >= last.Intensity {
		return last.FailureProb
	}
	for i := 1; i < len(c.Curve); i++ {
		if intensity <= c.Curve[i].Intensity {
			lo, hi := c.Curve[i-1], c.Curve[i]
			if hi.Intensity == lo.Intensity {
				return lo.FailureProb
			}
			frac := (intensity - lo.Intensity) / (hi.Intensity - lo.Intensity)
			return lo.FailureProb + frac*(hi.FailureProb-lo.FailureProb)
		}
	}
	return last.FailureProb
}

// dist is the minimal sampling surface reliability needs from a
// flow.DistributionSystem, named here to keep this package independent
// of the dist package's distribution catalog.
type dist interface {
	NextTimeAdvance(distID string, u01 float64) flow.RealTime
	RandFn() float64
}

// BuildFailureSchedule samples a FailureMode's fail/repair cycle out to
// horizon, producing the TimeState sequence OnOffSwitch expects: starts
// available, alternating down/up until the horizon is covered.
func BuildFailureSchedule(mode FailureMode, horizon flow.RealTime, d dist) []flow.TimeState {
	var out []flow.TimeState
	t := flow.RealTime(0)
	for t < horizon {
		ttf := d.NextTimeAdvance(mode.TimeToFailureDist, d.RandFn())
		failAt := t + ttf
		if failAt >= horizon {
			break
		}
		out = append(out, flow.TimeState{Time: failAt, Available: false})
		ttr := d.NextTimeAdvance(mode.TimeToRepairDist, d.RandFn())
		repairAt := failAt + ttr
		if repairAt >= horizon {
			break
		}
		out = append(out, flow.TimeState{Time: repairAt, Available: true})
		t = repairAt
	}
	return out
}

// BuildFragilitySchedule draws one fail/survive outcome for mode at the
// scenario's hazard intensity. A failed draw returns a transition to
// unavailable at t=0, plus a single repair transition sampled from
// RepairDist if one is configured and it falls within horizon; with no
// RepairDist (or a repair time past horizon) the damage is permanent for
// the scenario. Survival returns no transitions at all.
func BuildFragilitySchedule(mode FragilityMode, intensities map[string]float64, horizon flow.RealTime, d dist) []flow.TimeState {
	p := mode.failureProbAt(intensities[mode.HazardKey])
	if d.RandFn() >= p {
		return nil
	}
	out := []flow.TimeState{{Time: 0, Available: false}}
	if mode.RepairDist == "" {
		return out
	}
	repairAt := d.NextTimeAdvance(mode.RepairDist, d.RandFn())
	if repairAt > 0 && repairAt < horizon {
		out = append(out, flow.TimeState{Time: repairAt, Available: true})
	}
	return out
}

// Combine merges a component's failure-mode and fragility-mode schedules
// into one chronological TimeState sequence. Fragility is evaluated
// first since a fragility failure at t=0 pre-empts any later failure-mode
// transition the recurring-outage schedule would have produced.
func Combine(fragility, failure []flow.TimeState) []flow.TimeState {
	if len(fragility) > 0 && !fragility[0].Available {
		return fragility
	}
	out := append([]flow.TimeState(nil), fragility...)
	out = append(out, failure...)
	return out
}
