// Package invariant checks trace-level properties (spec §8) against a
// completed scenario.Results, in the style of a CTL model checker
// restricted to a single linear trace: AG collapses to "holds at every
// recorded instant," EF to "holds at some recorded instant."
package invariant

import (
	"fmt"

	"github.com/rfielding/flowsim/flow"
	"github.com/rfielding/flowsim/scenario"
)

// State is one recorded instant across every tag in a trace.
type State struct {
	TimeS  flow.RealTime
	Values map[string]scenario.Datum // tag -> sample active at this instant
}

// Trace is the sequence of States derived from a Results, a sampling of
// every component sub-port's value at each time any of them changed.
type Trace []State

// BuildTrace merges every tag's series in res into one chronological
// Trace, carrying each tag's last-known value forward between its own
// sample points (spec §3's right-continuous, piecewise-constant rule).
func BuildTrace(res *scenario.Results) Trace {
	times := make(map[flow.RealTime]bool)
	for _, series := range res.Results {
		for _, d := range series {
			times[d.TimeS] = true
		}
	}
	ordered := make([]flow.RealTime, 0, len(times))
	for t := range times {
		ordered = append(ordered, t)
	}
	sortTimes(ordered)

	last := make(map[string]scenario.Datum, len(res.Results))
	idx := make(map[string]int, len(res.Results))
	trace := make(Trace, 0, len(ordered))
	for _, t := range ordered {
		values := make(map[string]scenario.Datum, len(res.Results))
		for tag, series := range res.Results {
			i := idx[tag]
			for i < len(series) && series[i].TimeS <= t {
				last[tag] = series[i]
				i++
			}
			idx[tag] = i
			values[tag] = last[tag]
		}
		trace = append(trace, State{TimeS: t, Values: values})
	}
	return trace
}

func sortTimes(ts []flow.RealTime) {
	for i := 1; i < len(ts); i++ {
		for j := i; j > 0 && ts[j] < ts[j-1]; j-- {
			ts[j], ts[j-1] = ts[j-1], ts[j]
		}
	}
}

// Predicate evaluates a boolean condition over one trace State.
type Predicate func(s State) bool

// Violation describes one predicate failure, pointing at the offending
// instant.
type Violation struct {
	TimeS flow.RealTime
	Desc  string
}

func (v Violation) String() string {
	return fmt.Sprintf("t=%d: %s", v.TimeS, v.Desc)
}

// CheckAG verifies p holds at every State in trace ("on all paths,
// always" — trivial on a linear trace). Returns every violation found,
// not just the first, so a report can show the whole failing window.
func CheckAG(trace Trace, desc string, p Predicate) []Violation {
	var out []Violation
	for _, s := range trace {
		if !p(s) {
			out = append(out, Violation{TimeS: s.TimeS, Desc: desc})
		}
	}
	return out
}

// CheckEF verifies p holds at some State in trace ("there exists a path
// where eventually"). Returns nil (no violation) if found at least once,
// otherwise one Violation at the trace's last instant.
func CheckEF(trace Trace, desc string, p Predicate) []Violation {
	for _, s := range trace {
		if p(s) {
			return nil
		}
	}
	if len(trace) == 0 {
		return nil
	}
	return []Violation{{TimeS: trace[len(trace)-1].TimeS, Desc: "never: " + desc}}
}

// AchievedNeverExceedsRequested is spec §8 property 1: for every
// recorded tag, achieved <= requested + tolerance at every instant.
func AchievedNeverExceedsRequested(trace Trace) []Violation {
	return CheckAG(trace, "achieved exceeds requested", func(s State) bool {
		for _, d := range s.Values {
			if d.Achieved > d.Requested+flow.Tolerance {
				return false
			}
		}
		return true
	})
}

// SOCWithinBounds is spec §8 property 7: every storage component's
// state of charge stays in [0, 1]. soc reads the live SOC for a storage
// tag's component id, e.g. from a parallel map the runner snapshots
// alongside Results (Results itself only carries flow, not SOC).
func SOCWithinBounds(socByTime map[flow.RealTime]map[string]float64) []Violation {
	var out []Violation
	for t, socs := range socByTime {
		for id, soc := range socs {
			if soc < -flow.Tolerance || soc > 1+flow.Tolerance {
				out = append(out, Violation{TimeS: t, Desc: fmt.Sprintf("storage %q soc=%.6f out of bounds", id, soc)})
			}
		}
	}
	return out
}
