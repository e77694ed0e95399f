package flow

import "math"

// NewFlowMeter builds a pure identity recording node: copies outflow
// request to inflow and inflow achieved to outflow with no bounds
// (spec §4.3.9, SPEC_FULL §4.11). It is a FlowLimits with the widest
// possible bounds so there is exactly one port-arithmetic implementation
// behind both FlowMeter and PassThrough.
func NewFlowMeter(id ID, t0 RealTime) *FlowLimits {
	return NewFlowLimits(id, 0, Flow(math.Inf(1)), t0)
}

// NewPassThrough builds a bounded identity/recording node. A zero upper
// bound means unbounded (matches ComponentSpec's optional max_outflow).
func NewPassThrough(id ID, minOutflow, maxOutflow Flow, t0 RealTime) *FlowLimits {
	if maxOutflow <= 0 {
		maxOutflow = Flow(math.Inf(1))
	}
	return NewFlowLimits(id, minOutflow, maxOutflow, t0)
}
