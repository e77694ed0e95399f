package flow

import "math"

// RealTime is simulation time in whole seconds.
type RealTime int64

// Infinity is a distinguished RealTime ordered above every representable
// instant. It marks an atomic model as idle (ta == Infinity).
const Infinity RealTime = math.MaxInt64

// Tick orders events that share a RealTime.
type Tick uint64

// LogicalTime pairs a RealTime with a Tick into a total order over event
// instants. The Scheduler does not use it: it tracks RealTime only and
// runs the zero-delay passes at one RealTime one after another.
type LogicalTime struct {
	Real RealTime
	Tick Tick
}

// Before reports whether t precedes other in LogicalTime order.
func (t LogicalTime) Before(other LogicalTime) bool {
	if t.Real != other.Real {
		return t.Real < other.Real
	}
	return t.Tick < other.Tick
}

// Flow is a rate (stream-specific units, conventionally kW). Energy over
// an interval of d seconds is rate * float64(d).
type Flow float64

// Tolerance is the comparison epsilon used throughout the kernel for
// port values, flow conservation, and stats composition (spec §3, §7, §8).
const Tolerance = 1e-6

// almostEqual reports whether a and b differ by no more than Tolerance.
func almostEqual(a, b Flow) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= Tolerance
}

// lessOrEqual reports a <= b within Tolerance.
func lessOrEqual(a, b Flow) bool {
	return a <= b+Tolerance
}

func maxFlow(a, b Flow) Flow {
	if a > b {
		return a
	}
	return b
}

func minFlow(a, b Flow) Flow {
	if a < b {
		return a
	}
	return b
}

func clampFlow(v, lo, hi Flow) Flow {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
