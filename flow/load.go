package flow

// LoadItem is one breakpoint of a piecewise-constant, right-continuous
// load or supply profile (spec §3). The final item of a profile is an
// end-marker: its Rate is ignored, it only carries the closing time.
type LoadItem struct {
	Time    RealTime
	Rate    Flow
	EndMark bool
}

// Load is the atomic model for a consumer driven by a fixed profile
// (spec §4.3.1). It requests Profile[index].Rate and optimistically
// sets Achieved equal to Requested pending the upstream reply.
type Load struct {
	id      ID
	now     RealTime
	index   int
	profile []LoadItem
	inflow  Port
	flags   reportFlags
}

// NewLoad constructs a Load model over profile, starting at t0. profile
// must be strictly time-increasing and end with an end-marker at or
// after the scenario duration (validated by the caller, spec §3).
func NewLoad(id ID, profile []LoadItem, t0 RealTime) *Load {
	l := &Load{id: id, now: t0, profile: profile}
	if len(profile) > 0 {
		l.inflow.Requested = profile[0].Rate
		l.inflow.Achieved = profile[0].Rate
	}
	l.flags.reportInflowRequest = true
	return l
}

func (l *Load) ID() ID { return l.id }

func (l *Load) TimeAdvance() RealTime {
	if l.flags.any() {
		return 0
	}
	if l.index+1 >= len(l.profile) {
		return Infinity
	}
	return l.profile[l.index+1].Time - l.now
}

func (l *Load) Output() []PortValue {
	if l.flags.reportInflowRequest {
		return []PortValue{{Port: PortInflowRequest, Value: l.inflow.Requested}}
	}
	return nil
}

func (l *Load) DeltaInternal() AtomicModel {
	next := *l
	if next.flags.any() {
		// Pure report step: just clear flags, clock already advanced by
		// the scheduler-observed elapsed time via DeltaExternal below.
		next.flags.clear()
		return &next
	}
	next.index++
	item := next.profile[next.index]
	next.now = item.Time
	r, _, _ := next.inflow.WithRequested(item.Rate, next.now)
	next.inflow = r
	next.inflow.Achieved = item.Rate // optimistic, corrected on reply
	next.flags.clear()
	next.flags.reportInflowRequest = true
	return &next
}

func (l *Load) DeltaExternal(e RealTime, xs []PortValue) (AtomicModel, error) {
	next := *l
	next.now += e
	sums := sumByPort(xs)
	if a, ok := sums[PortInflowAchieved]; ok {
		p, _, sendAchieved := next.inflow.WithAchieved(a, next.now)
		next.inflow = p
		if sendAchieved {
			// Achieved changing doesn't need a fresh request report on
			// its own; Load only speaks on PortInflowRequest.
		}
	}
	return &next, nil
}

func (l *Load) DeltaConfluent(xs []PortValue) (AtomicModel, error) {
	afterInt := l.DeltaInternal().(*Load)
	return afterInt.DeltaExternal(0, xs)
}

func (l *Load) CheckConservation() error {
	// A Load has only an inflow; nothing downstream to balance against.
	return nil
}

// Requested exposes the current requested rate, used by stats (C9).
func (l *Load) Requested() Flow { return l.inflow.Requested }

// Achieved exposes the current achieved rate.
func (l *Load) Achieved() Flow { return l.inflow.Achieved }
