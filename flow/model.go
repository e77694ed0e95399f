package flow

// Port identities shared by every atomic model (spec §4.3). Kinds that
// need extra ports (Converter's lossflow, Mux/Mover's extra in/outflows)
// continue numbering sequentially from PortLossflowOrExtra.
const (
	PortOutflowRequest  = 0 // downstream asks for more
	PortInflowAchieved  = 1 // upstream reports delivery
	PortInflowRequest   = 2 // request passed upstream (output)
	PortOutflowAchieved = 3 // delivery passed downstream (output)
	PortLossflowOrExtra = 4 // first kind-specific extra port
)

// PortValue is the kernel's message: a value destined for one port id.
type PortValue struct {
	Port  int
	Value Flow
}

// ID identifies an atomic model instance within a Network.
type ID string

// AtomicModel is the DEVS protocol every element kind implements (spec §4.3).
// Implementations are value-typed state records; the scheduler never
// downcasts, it dispatches through this interface (spec §9).
type AtomicModel interface {
	// ID returns this model's identity in the owning Network.
	ID() ID

	// TimeAdvance returns the delay until this model's next internal
	// event. 0 means "emit pending reports now"; Infinity means idle.
	TimeAdvance() RealTime

	// Output returns the PortValues this model emits just before
	// DeltaInternal runs (called only when TimeAdvance() == 0, i.e. the
	// model is imminent).
	Output() []PortValue

	// DeltaInternal advances past an internal event, clearing the
	// "output pending" flags that made this model imminent.
	DeltaInternal() AtomicModel

	// DeltaExternal advances past elapsed e with external inputs xs
	// (all messages routed to this model in the current event instant,
	// unsummed; implementations sum same-port values with sumByPort).
	DeltaExternal(e RealTime, xs []PortValue) (AtomicModel, error)

	// DeltaConfluent handles simultaneous internal + external input.
	// Most kinds apply DeltaExternal(DeltaInternal(s), 0, xs) and keep
	// every report flag either step raised; Converter, Mux and FlowLimits
	// apply their own combined rule instead.
	DeltaConfluent(xs []PortValue) (AtomicModel, error)

	// CheckConservation validates spec §2's invariant for this model's
	// current state, returning a *Error (FlowInvariant) on violation.
	CheckConservation() error
}

// reportFlags are the three "output pending" booleans shared by every
// atomic model's state (spec §3): whether the model has something new
// to say on its inflow-request, outflow-achieved, or lossflow-achieved
// ports since the last DeltaInternal.
type reportFlags struct {
	reportInflowRequest   bool
	reportOutflowAchieved bool
	reportLossflowAchieved bool
}

func (f reportFlags) any() bool {
	return f.reportInflowRequest || f.reportOutflowAchieved || f.reportLossflowAchieved
}

func (f *reportFlags) clear() {
	*f = reportFlags{}
}

func (f *reportFlags) merge(other reportFlags) {
	f.reportInflowRequest = f.reportInflowRequest || other.reportInflowRequest
	f.reportOutflowAchieved = f.reportOutflowAchieved || other.reportOutflowAchieved
	f.reportLossflowAchieved = f.reportLossflowAchieved || other.reportLossflowAchieved
}

// sumByPort collapses a multiset of external inputs into one value per
// port id, matching spec §5's "order of messages within one destination
// is insignificant (delta_ext sums same-port values and switches on port)".
func sumByPort(xs []PortValue) map[int]Flow {
	out := make(map[int]Flow, len(xs))
	for _, x := range xs {
		out[x.Port] += x.Value
	}
	return out
}

// checkBalance is the shared C2 conservation check: inflow_achieved must
// equal the sum of outflow+storeflow+lossflow+wasteflow achieved, each
// term defaulting to zero when unused by the model kind.
func checkBalance(component string, t RealTime, inflow, outflow, storeflow, lossflow, wasteflow Flow) error {
	sum := outflow + storeflow + lossflow + wasteflow
	if !almostEqual(inflow, sum) {
		return NewFlowInvariantError(component, t, inflow, outflow, storeflow, lossflow, wasteflow)
	}
	return nil
}
