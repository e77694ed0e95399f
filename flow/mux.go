package flow

// DispatchStrategy selects how a Mux divides requests among inflows and
// achieved flow among outflows (spec §4.3.6).
type DispatchStrategy int

const (
	InOrder DispatchStrategy = iota
	Distribute
)

// Mux fans N inflows into M outflows (or vice versa), matching total
// requested outflow against total available inflow each settle (spec §4.3.6).
// Extra ports: inflow i is PortLossflowOrExtra+i, outflow j follows the
// inflows at PortLossflowOrExtra+NumInflows+j.
type Mux struct {
	id       ID
	now      RealTime
	inflows  []Port
	outflows []Port
	strategy DispatchStrategy
	flags    reportFlags
}

func NewMux(id ID, numInflows, numOutflows int, strategy DispatchStrategy, t0 RealTime) *Mux {
	return &Mux{
		id:       id,
		now:      t0,
		inflows:  make([]Port, numInflows),
		outflows: make([]Port, numOutflows),
		strategy: strategy,
	}
}

func (m *Mux) ID() ID { return m.id }

func (m *Mux) inflowPort(i int) int  { return PortLossflowOrExtra + i }
func (m *Mux) outflowPort(j int) int { return PortLossflowOrExtra + len(m.inflows) + j }

func (m *Mux) TimeAdvance() RealTime {
	if m.flags.any() {
		return 0
	}
	return Infinity
}

func (m *Mux) Output() []PortValue {
	var out []PortValue
	if m.flags.reportInflowRequest {
		for i, p := range m.inflows {
			out = append(out, PortValue{Port: m.inflowPort(i), Value: p.Requested})
		}
	}
	if m.flags.reportOutflowAchieved {
		for j, p := range m.outflows {
			out = append(out, PortValue{Port: m.outflowPort(j), Value: p.Achieved})
		}
	}
	return out
}

func (m *Mux) DeltaInternal() AtomicModel {
	next := *m
	next.inflows = append([]Port(nil), m.inflows...)
	next.outflows = append([]Port(nil), m.outflows...)
	next.flags.clear()
	return &next
}

// distributeRequest returns each inflow's request per strategy given the
// total outflow request (spec §4.3.6).
func (m *Mux) distributeRequest(total Flow) []Flow {
	n := len(m.inflows)
	reqs := make([]Flow, n)
	switch m.strategy {
	case Distribute:
		if n == 0 {
			return reqs
		}
		share := total / Flow(n)
		for i := range reqs {
			reqs[i] = share
		}
	default: // InOrder
		remaining := total
		for i := range reqs {
			reqs[i] = remaining
			remaining = 0 // first inflow asks for everything; settleRequest
			// handles InOrder itself and asks each later inflow for what
			// the earlier inflows have not achieved so far.
		}
	}
	return reqs
}

// settleRequest recomputes every inflow's Requested from the current
// outflow requests and each inflow's already-known Achieved shortfall,
// so InOrder re-requests the unmet remainder from the next inflow
// (spec §9's port-object-based re-request behavior).
func (m *Mux) settleRequest(next *Mux) {
	var total Flow
	for _, p := range next.outflows {
		total += p.Requested
	}
	switch next.strategy {
	case Distribute:
		reqs := next.distributeRequest(total)
		for i := range next.inflows {
			next.inflows[i].Requested = reqs[i]
		}
	default: // InOrder
		remaining := total
		for i := range next.inflows {
			next.inflows[i].Requested = remaining
			remaining -= next.inflows[i].Achieved
			if remaining < 0 {
				remaining = 0
			}
		}
	}
}

// settleAchieved distributes the sum of achieved inflow across outflow
// requests per strategy (spec §4.3.6).
func (m *Mux) settleAchieved(next *Mux) {
	var totalIn Flow
	for _, p := range next.inflows {
		totalIn += p.Achieved
	}
	switch next.strategy {
	case Distribute:
		remaining := totalIn
		var totalReq Flow
		for _, p := range next.outflows {
			totalReq += p.Requested
		}
		for j := range next.outflows {
			req := next.outflows[j].Requested
			var share Flow
			if totalReq > 0 {
				share = minFlow(req, totalIn*(req/totalReq))
			}
			next.outflows[j].Achieved = minFlow(share, remaining)
		}
	default: // InOrder
		remaining := totalIn
		for j := range next.outflows {
			got := minFlow(next.outflows[j].Requested, remaining)
			next.outflows[j].Achieved = got
			remaining -= got
		}
	}
}

func (m *Mux) DeltaExternal(e RealTime, xs []PortValue) (AtomicModel, error) {
	return m.step(e, xs)
}

func (m *Mux) DeltaConfluent(xs []PortValue) (AtomicModel, error) {
	return m.step(0, xs)
}

func (m *Mux) step(e RealTime, xs []PortValue) (*Mux, error) {
	next := *m
	next.inflows = append([]Port(nil), m.inflows...)
	next.outflows = append([]Port(nil), m.outflows...)
	next.now += e
	sums := sumByPort(xs)

	beforeInReq := make([]Flow, len(next.inflows))
	for i, p := range next.inflows {
		beforeInReq[i] = p.Requested
	}
	beforeOutAch := make([]Flow, len(next.outflows))
	for j, p := range next.outflows {
		beforeOutAch[j] = p.Achieved
	}

	changedReq := false
	for j := range next.outflows {
		if v, ok := sums[next.outflowPort(j)]; ok {
			next.outflows[j].Requested = v
			changedReq = true
		}
	}
	if changedReq {
		next.settleRequest(&next)
	}

	changedAch := false
	for i := range next.inflows {
		if v, ok := sums[next.inflowPort(i)]; ok {
			next.inflows[i].Achieved = minFlow(v, next.inflows[i].Requested)
			changedAch = true
		}
	}
	if changedAch {
		next.settleAchieved(&next)
		next.settleRequest(&next) // re-request any shortfall (InOrder)
	}

	next.flags.reportInflowRequest = false
	for i, p := range next.inflows {
		if !almostEqual(beforeInReq[i], p.Requested) {
			next.flags.reportInflowRequest = true
		}
	}
	next.flags.reportOutflowAchieved = false
	for j, p := range next.outflows {
		if !almostEqual(beforeOutAch[j], p.Achieved) {
			next.flags.reportOutflowAchieved = true
		}
	}
	return &next, nil
}

func (m *Mux) CheckConservation() error {
	var totalIn, totalOut Flow
	for _, p := range m.inflows {
		totalIn += p.Achieved
	}
	for _, p := range m.outflows {
		totalOut += p.Achieved
	}
	return checkBalance(string(m.id), m.now, totalIn, totalOut, 0, 0, 0)
}

func (m *Mux) InflowAchieved(i int) Flow   { return m.inflows[i].Achieved }
func (m *Mux) InflowRequested(i int) Flow  { return m.inflows[i].Requested }
func (m *Mux) OutflowAchieved(j int) Flow  { return m.outflows[j].Achieved }
func (m *Mux) OutflowRequested(j int) Flow { return m.outflows[j].Requested }
func (m *Mux) NumInflows() int             { return len(m.inflows) }
func (m *Mux) NumOutflows() int            { return len(m.outflows) }
