package flow

// Converter turns inflow into outflow via Conversion, optionally
// recovering part of the difference as a requested lossflow (e.g. waste
// heat); whatever isn't recovered is wasteflow (spec §4.3.5, §4.12).
type Converter struct {
	id         ID
	now        RealTime
	inflow     Port
	outflow    Port
	lossflow   Port // always zero-requested if the component has no lossflow_stream
	wasteflow  Port // derived, not a real port; Achieved only
	conversion ConversionFunc
	hasLoss    bool
	flags      reportFlags
}

func NewConverter(id ID, conv ConversionFunc, hasLossflow bool, t0 RealTime) *Converter {
	return &Converter{id: id, now: t0, conversion: conv, hasLoss: hasLossflow}
}

func (c *Converter) ID() ID { return c.id }

func (c *Converter) TimeAdvance() RealTime {
	if c.flags.any() {
		return 0
	}
	return Infinity
}

func (c *Converter) Output() []PortValue {
	var out []PortValue
	if c.flags.reportInflowRequest {
		out = append(out, PortValue{Port: PortInflowRequest, Value: c.inflow.Requested})
	}
	if c.flags.reportOutflowAchieved {
		out = append(out, PortValue{Port: PortOutflowAchieved, Value: c.outflow.Achieved})
	}
	if c.flags.reportLossflowAchieved && c.hasLoss {
		out = append(out, PortValue{Port: PortLossflowOrExtra, Value: c.lossflow.Achieved})
	}
	return out
}

func (c *Converter) DeltaInternal() AtomicModel {
	next := *c
	next.flags.clear()
	return &next
}

// settle re-derives lossflow/wasteflow achieved from the current inflow
// and outflow achieved, per spec §4.3.5 step 4.
func (c *Converter) settle(next *Converter) {
	diff := next.inflow.Achieved - next.outflow.Achieved
	loss := minFlow(next.lossflow.Requested, diff)
	if loss < 0 {
		loss = 0
	}
	next.lossflow.Achieved = loss
	next.wasteflow.Achieved = diff - loss
}

func (c *Converter) DeltaExternal(e RealTime, xs []PortValue) (AtomicModel, error) {
	next, err := c.step(e, xs)
	return next, err
}

func (c *Converter) DeltaConfluent(xs []PortValue) (AtomicModel, error) {
	return c.step(0, xs)
}

// step implements spec §4.3.5's four numbered rules in order, applying
// to whichever subset of {outflow_request, lossflow_request,
// inflow_achieved} is present in xs. It is shared by DeltaExternal (e>0)
// and DeltaConfluent (e==0) since the converter's confluent behavior is
// simply "apply the rules in order" with no special tie-break needed.
func (c *Converter) step(e RealTime, xs []PortValue) (*Converter, error) {
	next := *c
	next.now += e
	sums := sumByPort(xs)

	beforeInflowReq := next.inflow.Requested
	beforeOutAch := next.outflow.Achieved
	beforeLossAch := next.lossflow.Achieved

	if rOut, ok := sums[PortOutflowRequest]; ok {
		op, _, _ := next.outflow.WithRequested(rOut, next.now)
		next.outflow = op
		desiredIn := next.conversion.InFromOut(next.outflow.Requested)
		ip, _, _ := next.inflow.WithRequested(desiredIn, next.now)
		next.inflow = ip
	}
	if next.hasLoss {
		if rLoss, ok := sums[PortLossflowOrExtra]; ok {
			next.lossflow.Requested = rLoss
		}
	}
	if aIn, ok := sums[PortInflowAchieved]; ok {
		if aIn > next.inflow.Requested+Tolerance {
			// over-deliver: lower the inflow request back to what the
			// current outflow request actually needs.
			desiredIn := next.conversion.InFromOut(next.outflow.Requested)
			ip, _, _ := next.inflow.WithRequested(desiredIn, next.now)
			next.inflow = ip
			next.inflow.Achieved = minFlow(aIn, next.inflow.Requested)
		} else {
			ip, _, _ := next.inflow.WithAchieved(aIn, next.now)
			next.inflow = ip
			outAchieved := next.conversion.OutFromIn(next.inflow.Achieved)
			op, _, _ := next.outflow.WithAchieved(outAchieved, next.now)
			next.outflow = op
		}
	}
	next.settle(&next)

	next.flags.reportInflowRequest = !almostEqual(beforeInflowReq, next.inflow.Requested)
	next.flags.reportOutflowAchieved = !almostEqual(beforeOutAch, next.outflow.Achieved)
	next.flags.reportLossflowAchieved = next.hasLoss && !almostEqual(beforeLossAch, next.lossflow.Achieved)

	return &next, nil
}

func (c *Converter) CheckConservation() error {
	return checkBalance(string(c.id), c.now, c.inflow.Achieved, c.outflow.Achieved, 0, c.lossflow.Achieved, c.wasteflow.Achieved)
}

func (c *Converter) InflowAchieved() Flow   { return c.inflow.Achieved }
func (c *Converter) InflowRequested() Flow  { return c.inflow.Requested }
func (c *Converter) OutflowAchieved() Flow  { return c.outflow.Achieved }
func (c *Converter) OutflowRequested() Flow { return c.outflow.Requested }
func (c *Converter) LossflowAchieved() Flow { return c.lossflow.Achieved }
func (c *Converter) WasteflowAchieved() Flow { return c.wasteflow.Achieved }
