package flow

// OnOffSwitch forces its wrapped element's ports to zero while off, per
// a schedule of TimeStates (spec §4.3.8). The scenario runner wraps any
// component with a failure/fragility schedule in one of these.
type OnOffSwitch struct {
	id         ID
	now        RealTime
	schedule   []TimeState
	nextIndex  int
	isOn       bool
	inflow     Port
	outflow    Port
	flags      reportFlags
}

// TimeState is a scheduled (time, available?) transition (spec §3).
type TimeState struct {
	Time      RealTime
	Available bool
}

func NewOnOffSwitch(id ID, schedule []TimeState, t0 RealTime) *OnOffSwitch {
	s := &OnOffSwitch{id: id, now: t0, schedule: schedule, isOn: true}
	if len(schedule) > 0 && schedule[0].Time == t0 {
		s.isOn = schedule[0].Available
		s.nextIndex = 1
	}
	return s
}

func (s *OnOffSwitch) ID() ID { return s.id }

func (s *OnOffSwitch) TimeAdvance() RealTime {
	if s.flags.any() {
		return 0
	}
	if s.nextIndex >= len(s.schedule) {
		return Infinity
	}
	return s.schedule[s.nextIndex].Time - s.now
}

func (s *OnOffSwitch) Output() []PortValue {
	var out []PortValue
	if s.flags.reportInflowRequest {
		out = append(out, PortValue{Port: PortInflowRequest, Value: s.inflow.Requested})
	}
	if s.flags.reportOutflowAchieved {
		out = append(out, PortValue{Port: PortOutflowAchieved, Value: s.outflow.Achieved})
	}
	return out
}

func (s *OnOffSwitch) settle() {
	if s.isOn {
		s.inflow.Requested = s.outflow.Requested
		s.inflow.Achieved = minFlow(s.inflow.Achieved, s.inflow.Requested)
		s.outflow.Achieved = minFlow(s.inflow.Achieved, s.outflow.Requested)
	} else {
		s.inflow.Requested = 0
		s.inflow.Achieved = 0
		s.outflow.Achieved = 0
	}
}

func (s *OnOffSwitch) DeltaInternal() AtomicModel {
	next := *s
	if next.flags.any() {
		next.flags.clear()
		return &next
	}
	step := next.schedule[next.nextIndex]
	next.now = step.Time
	next.isOn = step.Available
	next.nextIndex++
	next.settle()
	// A scheduled on/off transition always emits both ports, even if the
	// numeric value happens to repeat (spec §4.3.8).
	next.flags.reportInflowRequest = true
	next.flags.reportOutflowAchieved = true
	return &next
}

func (s *OnOffSwitch) DeltaExternal(e RealTime, xs []PortValue) (AtomicModel, error) {
	next := *s
	next.now += e
	sums := sumByPort(xs)
	beforeInReq := next.inflow.Requested
	beforeOutAch := next.outflow.Achieved
	r, hasReq := sums[PortOutflowRequest]
	if hasReq {
		next.outflow.Requested = r
	}
	if a, ok := sums[PortInflowAchieved]; ok {
		next.inflow.Achieved = a
	}
	next.settle()
	next.flags.reportInflowRequest = !almostEqual(beforeInReq, next.inflow.Requested)
	// A fresh request that is not met in full is always answered, so the
	// requester's optimistic achieved value gets corrected.
	next.flags.reportOutflowAchieved = !almostEqual(beforeOutAch, next.outflow.Achieved) ||
		(hasReq && !almostEqual(next.outflow.Achieved, next.outflow.Requested))
	return &next, nil
}

func (s *OnOffSwitch) DeltaConfluent(xs []PortValue) (AtomicModel, error) {
	afterInt := s.DeltaInternal().(*OnOffSwitch)
	next, err := afterInt.DeltaExternal(0, xs)
	if err != nil {
		return next, err
	}
	merged := next.(*OnOffSwitch)
	merged.flags.merge(afterInt.flags)
	return merged, nil
}

func (s *OnOffSwitch) CheckConservation() error {
	return checkBalance(string(s.id), s.now, s.inflow.Achieved, s.outflow.Achieved, 0, 0, 0)
}

func (s *OnOffSwitch) IsOn() bool          { return s.isOn }
func (s *OnOffSwitch) OutflowAchieved() Flow { return s.outflow.Achieved }
func (s *OnOffSwitch) InflowRequested() Flow { return s.inflow.Requested }
