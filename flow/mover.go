package flow

import "math"

// Mover combines a "moved" inflow (e.g. heat drawn from the environment)
// and a "powered" inflow (e.g. electricity) into one outflow, per a
// coefficient of performance: outflow = moved + powered, and
// powered = outflow / (COP + 1) (spec §4.3.10).
type Mover struct {
	id           ID
	now          RealTime
	movedInflow  Port
	poweredInflow Port
	outflow      Port
	cop          float64
	flags        reportFlags
}

// Port ids: moved inflow is PortInflowAchieved/PortInflowRequest's usual
// slot (index 0 of the "extra inflows" convention), powered inflow is
// the next extra port.
const (
	PortMovedInflowRequest   = PortInflowRequest
	PortMovedInflowAchieved  = PortInflowAchieved
	PortPoweredInflowRequest = PortLossflowOrExtra
	PortPoweredInflowAchieved = PortLossflowOrExtra + 1
)

func NewMover(id ID, cop float64, t0 RealTime) *Mover {
	return &Mover{id: id, now: t0, cop: cop}
}

func (mv *Mover) ID() ID { return mv.id }

func (mv *Mover) poweredFraction() Flow { return 1 / Flow(mv.cop+1) }
func (mv *Mover) movedFraction() Flow   { return Flow(mv.cop) / Flow(mv.cop+1) }

func (mv *Mover) TimeAdvance() RealTime {
	if mv.flags.any() {
		return 0
	}
	return Infinity
}

func (mv *Mover) Output() []PortValue {
	var out []PortValue
	if mv.flags.reportInflowRequest {
		out = append(out,
			PortValue{Port: PortMovedInflowRequest, Value: mv.movedInflow.Requested},
			PortValue{Port: PortPoweredInflowRequest, Value: mv.poweredInflow.Requested},
		)
	}
	if mv.flags.reportOutflowAchieved {
		out = append(out, PortValue{Port: PortOutflowAchieved, Value: mv.outflow.Achieved})
	}
	return out
}

func (mv *Mover) DeltaInternal() AtomicModel {
	next := *mv
	next.flags.clear()
	return &next
}

func (mv *Mover) requestSplit(outReq Flow) (moved, powered Flow) {
	return outReq * mv.movedFraction(), outReq * mv.poweredFraction()
}

func (mv *Mover) DeltaExternal(e RealTime, xs []PortValue) (AtomicModel, error) {
	return mv.step(e, xs)
}

func (mv *Mover) DeltaConfluent(xs []PortValue) (AtomicModel, error) {
	return mv.step(0, xs)
}

func (mv *Mover) step(e RealTime, xs []PortValue) (*Mover, error) {
	next := *mv
	next.now += e
	sums := sumByPort(xs)

	beforeReq := next.outflow.Requested
	beforeOutAch := next.outflow.Achieved

	if r, ok := sums[PortOutflowRequest]; ok {
		op, _, _ := next.outflow.WithRequested(r, next.now)
		next.outflow = op
		moved, powered := next.requestSplit(next.outflow.Requested)
		mp, _, _ := next.movedInflow.WithRequested(moved, next.now)
		next.movedInflow = mp
		pp, _, _ := next.poweredInflow.WithRequested(powered, next.now)
		next.poweredInflow = pp
	}

	_, hasMoved := sums[PortMovedInflowAchieved]
	_, hasPowered := sums[PortPoweredInflowAchieved]
	if hasMoved {
		mp, _, _ := next.movedInflow.WithAchieved(sums[PortMovedInflowAchieved], next.now)
		next.movedInflow = mp
	}
	if hasPowered {
		pp, _, _ := next.poweredInflow.WithAchieved(sums[PortPoweredInflowAchieved], next.now)
		next.poweredInflow = pp
	}
	if hasMoved || hasPowered {
		// outflow is limited proportionally by whichever inflow fell
		// short, so outflow = moved + powered always holds (energy
		// balance invariant, spec §4.3.10).
		limitByMoved := Flow(math.Inf(1))
		if next.movedFraction() > 0 {
			limitByMoved = next.movedInflow.Achieved / next.movedFraction()
		}
		limitByPowered := Flow(math.Inf(1))
		if next.poweredFraction() > 0 {
			limitByPowered = next.poweredInflow.Achieved / next.poweredFraction()
		}
		achievable := minFlow(minFlow(limitByMoved, limitByPowered), next.outflow.Requested)
		op, _, _ := next.outflow.WithAchieved(achievable, next.now)
		next.outflow = op
		// re-derive the inflow achieved actually consumed at this
		// outflow level, so neither inflow shows an achieved above what
		// the outflow level needs (keeps moved+powered == outflow exact).
		moved, powered := next.requestSplit(next.outflow.Achieved)
		next.movedInflow.Achieved = minFlow(next.movedInflow.Achieved, moved)
		next.poweredInflow.Achieved = minFlow(next.poweredInflow.Achieved, powered)
	}

	next.flags.reportInflowRequest = !almostEqual(beforeReq, next.outflow.Requested)
	next.flags.reportOutflowAchieved = !almostEqual(beforeOutAch, next.outflow.Achieved)
	return &next, nil
}

func (mv *Mover) CheckConservation() error {
	inflow := mv.movedInflow.Achieved + mv.poweredInflow.Achieved
	return checkBalance(string(mv.id), mv.now, inflow, mv.outflow.Achieved, 0, 0, 0)
}

func (mv *Mover) OutflowAchieved() Flow        { return mv.outflow.Achieved }
func (mv *Mover) MovedInflowAchieved() Flow    { return mv.movedInflow.Achieved }
func (mv *Mover) PoweredInflowAchieved() Flow  { return mv.poweredInflow.Achieved }

