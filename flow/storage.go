package flow

// Storage presents an outflow downstream and an inflow upstream
// simultaneously. It always requests MaxChargeRate from upstream while
// capacity remains; downstream outflow is met first from achieved
// inflow, shortfall is discharged from SOC, excess charges SOC
// (spec §4.3.7).
type Storage struct {
	id             ID
	now            RealTime
	capacity       Flow // kJ
	maxChargeRate  Flow // kW
	soc            float64
	inflow         Port
	outflow        Port
	storeflow      Port // charging, Achieved only
	discharge      Port // discharging, Achieved only
	flags          reportFlags
}

func NewStorage(id ID, capacity, maxChargeRate Flow, initialSOC float64, t0 RealTime) *Storage {
	s := &Storage{id: id, now: t0, capacity: capacity, maxChargeRate: maxChargeRate, soc: initialSOC}
	s.inflow.Requested = maxChargeRate
	s.flags.reportInflowRequest = true
	return s
}

func (s *Storage) ID() ID { return s.id }

// netRate returns the current charge rate (positive = charging from
// excess inflow, negative = discharging to meet outflow shortfall).
func (s *Storage) netRate() Flow {
	return s.storeflow.Achieved - s.discharge.Achieved
}

func (s *Storage) TimeAdvance() RealTime {
	if s.flags.any() {
		return 0
	}
	net := s.netRate()
	if almostEqual(net, 0) {
		return Infinity
	}
	var secondsToBound float64
	if net > 0 {
		secondsToBound = (1 - s.soc) * float64(s.capacity) / float64(net)
	} else {
		secondsToBound = s.soc * float64(s.capacity) / float64(-net)
	}
	if secondsToBound < 0 {
		return 0
	}
	return RealTime(secondsToBound)
}

func (s *Storage) Output() []PortValue {
	var out []PortValue
	if s.flags.reportInflowRequest {
		out = append(out, PortValue{Port: PortInflowRequest, Value: s.inflow.Requested})
	}
	if s.flags.reportOutflowAchieved {
		out = append(out, PortValue{Port: PortOutflowAchieved, Value: s.outflow.Achieved})
	}
	return out
}

// advanceSOC integrates SOC linearly over elapsed seconds at the current
// net rate, clamping to [0, 1] (spec §8 property 7).
func (s *Storage) advanceSOC(elapsed RealTime) {
	if elapsed <= 0 || s.capacity <= 0 {
		return
	}
	net := s.netRate()
	deltaSOC := float64(net) * float64(elapsed) / float64(s.capacity)
	s.soc += deltaSOC
	if s.soc > 1 {
		s.soc = 1
	}
	if s.soc < 0 {
		s.soc = 0
	}
}

// settle recomputes storeflow/discharge achieved from the current inflow
// achieved, outflow request, and whether capacity/charge remain.
func (s *Storage) settle() {
	canCharge := s.soc < 1-Tolerance
	canDischarge := s.soc > Tolerance

	if canCharge {
		s.inflow.Requested = s.maxChargeRate
	} else {
		s.inflow.Requested = 0
	}
	s.inflow.Achieved = minFlow(s.inflow.Achieved, s.inflow.Requested)

	outReq := s.outflow.Requested
	fromInflow := minFlow(s.inflow.Achieved, outReq)
	shortfall := outReq - fromInflow
	var discharge Flow
	if canDischarge {
		discharge = shortfall
	}
	s.outflow.Achieved = fromInflow + discharge
	s.discharge.Achieved = discharge

	excess := s.inflow.Achieved - fromInflow
	if !canCharge {
		excess = 0
	}
	s.storeflow.Achieved = excess
}

func (s *Storage) DeltaInternal() AtomicModel {
	next := *s
	if next.flags.any() {
		next.flags.clear()
		return &next
	}
	elapsed := next.TimeAdvance()
	next.advanceSOC(elapsed)
	next.now += elapsed
	beforeInReq := next.inflow.Requested
	beforeOutAch := next.outflow.Achieved
	next.settle()
	next.flags.reportInflowRequest = !almostEqual(beforeInReq, next.inflow.Requested)
	next.flags.reportOutflowAchieved = !almostEqual(beforeOutAch, next.outflow.Achieved)
	return &next
}

func (s *Storage) DeltaExternal(e RealTime, xs []PortValue) (AtomicModel, error) {
	next := *s
	next.advanceSOC(e)
	next.now += e
	sums := sumByPort(xs)
	beforeInReq := next.inflow.Requested
	beforeOutAch := next.outflow.Achieved
	if r, ok := sums[PortOutflowRequest]; ok {
		next.outflow.Requested = r
	}
	if a, ok := sums[PortInflowAchieved]; ok {
		next.inflow.Achieved = minFlow(a, next.inflow.Requested)
	}
	next.settle()
	next.flags.reportInflowRequest = !almostEqual(beforeInReq, next.inflow.Requested)
	next.flags.reportOutflowAchieved = !almostEqual(beforeOutAch, next.outflow.Achieved)
	return &next, nil
}

func (s *Storage) DeltaConfluent(xs []PortValue) (AtomicModel, error) {
	afterInt := s.DeltaInternal().(*Storage)
	next, err := afterInt.DeltaExternal(0, xs)
	if err != nil {
		return next, err
	}
	merged := next.(*Storage)
	merged.flags.merge(afterInt.flags)
	return merged, nil
}

func (s *Storage) CheckConservation() error {
	return checkBalance(string(s.id), s.now, s.inflow.Achieved, s.outflow.Achieved, s.storeflow.Achieved-s.discharge.Achieved, 0, 0)
}

func (s *Storage) SOC() float64           { return s.soc }
func (s *Storage) InflowAchieved() Flow   { return s.inflow.Achieved }
func (s *Storage) InflowRequested() Flow  { return s.inflow.Requested }
func (s *Storage) OutflowAchieved() Flow  { return s.outflow.Achieved }
func (s *Storage) OutflowRequested() Flow { return s.outflow.Requested }
func (s *Storage) StoreflowAchieved() Flow { return s.storeflow.Achieved }
func (s *Storage) DischargeAchieved() Flow { return s.discharge.Achieved }
