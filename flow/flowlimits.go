package flow

// FlowLimits clamps a requested outflow to [lower, upper] before passing
// it upstream as an inflow request, and reconciles the achieved inflow
// back to the clamped request on the way down (spec §4.3.4).
type FlowLimits struct {
	id      ID
	now     RealTime
	inflow  Port
	outflow Port
	lower   Flow
	upper   Flow
	flags   reportFlags
}

// NewFlowLimits constructs a FlowLimits model. A FlowMeter/bare PassThrough
// with no bounds is NewFlowLimits(id, 0, +Inf, t0) (SPEC_FULL §4.11).
func NewFlowLimits(id ID, lower, upper Flow, t0 RealTime) *FlowLimits {
	return &FlowLimits{id: id, now: t0, lower: lower, upper: upper}
}

func (f *FlowLimits) ID() ID { return f.id }

func (f *FlowLimits) clampedRequest() Flow {
	return clampFlow(f.outflow.Requested, f.lower, f.upper)
}

func (f *FlowLimits) TimeAdvance() RealTime {
	if f.flags.any() {
		return 0
	}
	return Infinity
}

func (f *FlowLimits) Output() []PortValue {
	var out []PortValue
	if f.flags.reportInflowRequest {
		out = append(out, PortValue{Port: PortInflowRequest, Value: f.inflow.Requested})
	}
	if f.flags.reportOutflowAchieved {
		out = append(out, PortValue{Port: PortOutflowAchieved, Value: f.outflow.Achieved})
	}
	return out
}

func (f *FlowLimits) DeltaInternal() AtomicModel {
	next := *f
	next.flags.clear()
	return &next
}

func (f *FlowLimits) DeltaExternal(e RealTime, xs []PortValue) (AtomicModel, error) {
	next := *f
	next.now += e
	sums := sumByPort(xs)

	_, hasReq := sums[PortOutflowRequest]
	_, hasAch := sums[PortInflowAchieved]

	if hasReq {
		r := sums[PortOutflowRequest]
		op, _, sendOutAch := next.outflow.WithRequested(r, next.now)
		next.outflow = op
		clamped := next.clampedRequest()
		ip, sendInReq, _ := next.inflow.WithRequested(clamped, next.now)
		next.inflow = ip
		// inflow achieved tracks whatever was last reported; re-settle
		// outflow achieved against it below.
		next.flags.reportInflowRequest = sendInReq
		if clamped != r {
			sendOutAch = true
		}
		next.flags.reportOutflowAchieved = sendOutAch
	}
	if hasAch {
		a := sums[PortInflowAchieved]
		ip, _, _ := next.inflow.WithAchieved(a, next.now)
		next.inflow = ip
		clamped := next.clampedRequest()
		outAchieved := minFlow(a, clamped)
		op, _, sendOutAch := next.outflow.WithAchieved(outAchieved, next.now)
		next.outflow = op
		next.flags.reportOutflowAchieved = next.flags.reportOutflowAchieved || sendOutAch
		if a > clamped+Tolerance {
			// over-deliver: lower the inflow request we're asking for
			ip2, sendInReq, _ := next.inflow.WithRequested(clamped, next.now)
			next.inflow = ip2
			next.flags.reportInflowRequest = next.flags.reportInflowRequest || sendInReq
		}
	}
	return &next, nil
}

// DeltaConfluent resolves simultaneous outflow-request and inflow-achieved
// deterministically: clamp the new request first, then reconcile the
// achieved inflow against the (possibly new) clamp (spec §4.3.4).
func (f *FlowLimits) DeltaConfluent(xs []PortValue) (AtomicModel, error) {
	sums := sumByPort(xs)
	next := *f
	if r, ok := sums[PortOutflowRequest]; ok {
		op, _, _ := next.outflow.WithRequested(r, next.now)
		next.outflow = op
	}
	clamped := next.clampedRequest()
	ip, sendInReq, _ := next.inflow.WithRequested(clamped, next.now)
	next.inflow = ip
	next.flags.reportInflowRequest = sendInReq

	if a, ok := sums[PortInflowAchieved]; ok {
		ip2, _, _ := next.inflow.WithAchieved(a, next.now)
		next.inflow = ip2
		outAchieved := minFlow(a, clamped)
		op2, _, sendOutAch := next.outflow.WithAchieved(outAchieved, next.now)
		next.outflow = op2
		next.flags.reportOutflowAchieved = sendOutAch
		if a > clamped+Tolerance {
			ip3, sendInReq2, _ := next.inflow.WithRequested(clamped, next.now)
			next.inflow = ip3
			next.flags.reportInflowRequest = next.flags.reportInflowRequest || sendInReq2
		}
	} else {
		outAchieved := minFlow(next.inflow.Achieved, clamped)
		op2, _, sendOutAch := next.outflow.WithAchieved(outAchieved, next.now)
		next.outflow = op2
		next.flags.reportOutflowAchieved = sendOutAch
	}
	return &next, nil
}

func (f *FlowLimits) CheckConservation() error {
	return checkBalance(string(f.id), f.now, f.inflow.Achieved, f.outflow.Achieved, 0, 0, 0)
}

func (f *FlowLimits) OutflowAchieved() Flow  { return f.outflow.Achieved }
func (f *FlowLimits) OutflowRequested() Flow { return f.outflow.Requested }
func (f *FlowLimits) InflowRequested() Flow  { return f.inflow.Requested }
func (f *FlowLimits) InflowAchieved() Flow   { return f.inflow.Achieved }
