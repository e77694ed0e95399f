package scenario

import (
	"fmt"

	"github.com/rfielding/flowsim/flow"
)

// readFn pulls the current (requested, achieved) pair off a live model.
type readFn func(m flow.AtomicModel) (requested, achieved flow.Flow)

type tagEntry struct {
	tag    string
	role   flow.PortRole
	handle int
	id     flow.ID
	read   readFn
}

// BuildNetwork constructs the flow.Network for one (scenario, occurrence)
// without driving it, for callers that only need topology (e.g. the
// diagram package's Graphviz rendering). It shares construction logic
// with RunInstance but skips the FlowWriter/tag bookkeeping.
func BuildNetwork(input *Input, sc Scenario) (*flow.Network, error) {
	conns, ok := input.Networks[sc.NetworkID]
	if !ok {
		return nil, fmt.Errorf("unknown network %q", sc.NetworkID)
	}

	gated := make(map[string]ComponentSpec)
	for key, sched := range input.Schedules {
		if key.ScenarioID != sc.ID || len(sched) == 0 {
			continue
		}
		if cs, ok := input.Components[key.ComponentID]; ok {
			gated[key.ComponentID] = cs
		}
	}

	conns, switchStreams, err := spliceSwitches(conns, gated)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]bool)
	for _, c := range conns {
		ids[c.SrcID] = true
		ids[c.DstID] = true
	}

	const t0 = flow.RealTime(0)
	net := flow.NewNetwork()
	for id := range ids {
		if stream, isSwitch := switchStreams[id]; isSwitch {
			sw := flow.NewOnOffSwitch(flow.ID(id), nil, t0)
			net.AddModel(sw, map[int]string{
				flow.PortOutflowRequest:  stream,
				flow.PortInflowAchieved:  stream,
				flow.PortInflowRequest:   stream,
				flow.PortOutflowAchieved: stream,
			})
			continue
		}
		cs, ok := input.Components[id]
		if !ok {
			return nil, fmt.Errorf("network %q references unknown component %q", sc.NetworkID, id)
		}
		m, portStreams, err := newModel(cs, input.Loads, sc.ID, t0)
		if err != nil {
			return nil, err
		}
		net.AddModel(m, portStreams)
	}

	for _, c := range conns {
		src, ok := componentSpecOrSwitch(input, switchStreams, c.SrcID)
		if !ok {
			return nil, fmt.Errorf("connection references unknown component %q", c.SrcID)
		}
		dst, ok := componentSpecOrSwitch(input, switchStreams, c.DstID)
		if !ok {
			return nil, fmt.Errorf("connection references unknown component %q", c.DstID)
		}
		for _, coupling := range couplingsForConnection(c, src, dst) {
			if err := net.Connect(coupling); err != nil {
				return nil, err
			}
		}
	}
	return net, nil
}

// newModel instantiates the atomic model for one ComponentSpec and
// returns the port-to-stream declarations AddModel needs (spec §6, §4.3).
func newModel(cs ComponentSpec, loads map[string][]flow.LoadItem, scenarioID string, t0 flow.RealTime) (flow.AtomicModel, map[int]string, error) {
	id := flow.ID(cs.ID)
	switch cs.Kind {
	case KindSource:
		m := flow.NewSource(id, cs.MaxOutflow, t0)
		return m, map[int]string{
			flow.PortOutflowRequest:  cs.OutputStream,
			flow.PortOutflowAchieved: cs.OutputStream,
		}, nil

	case KindUncontrolledSource:
		profile, err := lookupProfile(loads, cs.SupplyByScenario, scenarioID)
		if err != nil {
			return nil, nil, fmt.Errorf("component %s: %w", cs.ID, err)
		}
		m := flow.NewUncontrolledSource(id, profile, t0)
		lossStream := cs.LossflowStream
		if lossStream == "" {
			lossStream = cs.OutputStream
		}
		return m, map[int]string{
			flow.PortOutflowRequest:  cs.OutputStream,
			flow.PortOutflowAchieved: cs.OutputStream,
			flow.PortLossflowOrExtra: lossStream,
		}, nil

	case KindLoad:
		profile, err := lookupProfile(loads, cs.LoadsByScenario, scenarioID)
		if err != nil {
			return nil, nil, fmt.Errorf("component %s: %w", cs.ID, err)
		}
		m := flow.NewLoad(id, profile, t0)
		return m, map[int]string{
			flow.PortInflowAchieved: cs.InputStream,
			flow.PortInflowRequest:  cs.InputStream,
		}, nil

	case KindConverter:
		conv := buildConversion(cs.Conversion)
		hasLoss := cs.LossflowStream != ""
		m := flow.NewConverter(id, conv, hasLoss, t0)
		ports := map[int]string{
			flow.PortInflowAchieved:  cs.InputStream,
			flow.PortInflowRequest:   cs.InputStream,
			flow.PortOutflowRequest:  cs.OutputStream,
			flow.PortOutflowAchieved: cs.OutputStream,
		}
		if hasLoss {
			ports[flow.PortLossflowOrExtra] = cs.LossflowStream
		}
		return m, ports, nil

	case KindMuxer:
		m := flow.NewMux(id, cs.NumInflows, cs.NumOutflows, cs.DispatchStrategy, t0)
		ports := make(map[int]string, cs.NumInflows+cs.NumOutflows)
		for i := 0; i < cs.NumInflows; i++ {
			ports[flow.PortLossflowOrExtra+i] = cs.Stream
		}
		for j := 0; j < cs.NumOutflows; j++ {
			ports[flow.PortLossflowOrExtra+cs.NumInflows+j] = cs.Stream
		}
		return m, ports, nil

	case KindStorage:
		m := flow.NewStorage(id, cs.Capacity, cs.MaxInflow, cs.InitialSOC, t0)
		outStream := cs.OutputStream
		if outStream == "" {
			outStream = cs.InputStream
		}
		return m, map[int]string{
			flow.PortInflowAchieved:  cs.InputStream,
			flow.PortInflowRequest:   cs.InputStream,
			flow.PortOutflowRequest:  outStream,
			flow.PortOutflowAchieved: outStream,
		}, nil

	case KindPassThrough:
		m := flow.NewPassThrough(id, cs.MinOutflow, cs.MaxOutflow, t0)
		outStream := cs.OutputStream
		if outStream == "" {
			outStream = cs.InputStream
		}
		return m, map[int]string{
			flow.PortInflowAchieved:  cs.InputStream,
			flow.PortInflowRequest:   cs.InputStream,
			flow.PortOutflowRequest:  outStream,
			flow.PortOutflowAchieved: outStream,
		}, nil

	case KindMover:
		m := flow.NewMover(id, cs.COP, t0)
		return m, map[int]string{
			flow.PortMovedInflowRequest:    cs.Inflow0Stream,
			flow.PortMovedInflowAchieved:   cs.Inflow0Stream,
			flow.PortPoweredInflowRequest:  cs.Inflow1Stream,
			flow.PortPoweredInflowAchieved: cs.Inflow1Stream,
			flow.PortOutflowRequest:        cs.OutputStream,
			flow.PortOutflowAchieved:       cs.OutputStream,
		}, nil

	default:
		return nil, nil, fmt.Errorf("component %s: unknown kind %d", cs.ID, cs.Kind)
	}
}

func lookupProfile(loads map[string][]flow.LoadItem, byScenario map[string]string, scenarioID string) ([]flow.LoadItem, error) {
	loadID, ok := byScenario[scenarioID]
	if !ok {
		return nil, fmt.Errorf("no load profile bound for scenario %q", scenarioID)
	}
	p, ok := loads[loadID]
	if !ok {
		return nil, fmt.Errorf("unknown load profile %q", loadID)
	}
	return p, nil
}

func buildConversion(spec ConversionSpec) flow.ConversionFunc {
	if spec.Table != nil {
		return flow.NewTabulated(spec.Table)
	}
	eta := spec.ConstantEfficiency
	if eta <= 0 {
		eta = 1
	}
	return flow.ConstantEfficiency{Eta: eta}
}

// registerTags reserves FlowWriter columns for one component's recorded
// sub-ports, following spec §6's tag-naming convention.
func registerTags(w *flow.FlowWriter, cs ComponentSpec) []tagEntry {
	id := flow.ID(cs.ID)
	var entries []tagEntry
	reg := func(tag string, role flow.PortRole, read readFn) {
		entries = append(entries, tagEntry{tag: tag, role: role, handle: w.RegisterID(tag), id: id, read: read})
	}

	switch cs.Kind {
	case KindSource:
		reg(cs.ID+"-outflow", flow.RoleSourceOutflow, func(m flow.AtomicModel) (flow.Flow, flow.Flow) {
			s := m.(*flow.Source)
			return s.Requested(), s.Achieved()
		})

	case KindUncontrolledSource:
		reg(cs.ID+"-outflow", flow.RoleSourceOutflow, func(m flow.AtomicModel) (flow.Flow, flow.Flow) {
			u := m.(*flow.UncontrolledSource)
			return u.Requested(), u.Achieved()
		})
		reg(cs.ID+"-lossflow", flow.RoleWasteInflow, func(m flow.AtomicModel) (flow.Flow, flow.Flow) {
			u := m.(*flow.UncontrolledSource)
			return u.LossAchieved(), u.LossAchieved()
		})

	case KindLoad:
		reg(cs.ID+"-inflow", flow.RoleLoadInflow, func(m flow.AtomicModel) (flow.Flow, flow.Flow) {
			l := m.(*flow.Load)
			return l.Requested(), l.Achieved()
		})

	case KindConverter:
		reg(cs.ID+"-inflow", flow.RoleInflow, func(m flow.AtomicModel) (flow.Flow, flow.Flow) {
			c := m.(*flow.Converter)
			return c.InflowRequested(), c.InflowAchieved()
		})
		reg(cs.ID+"-outflow", flow.RoleOutflow, func(m flow.AtomicModel) (flow.Flow, flow.Flow) {
			c := m.(*flow.Converter)
			return c.OutflowRequested(), c.OutflowAchieved()
		})
		if cs.LossflowStream != "" {
			reg(cs.ID+"-lossflow", flow.RoleOutflow, func(m flow.AtomicModel) (flow.Flow, flow.Flow) {
				c := m.(*flow.Converter)
				return c.LossflowAchieved(), c.LossflowAchieved()
			})
		}
		reg(cs.ID+"-wasteflow", flow.RoleWasteInflow, func(m flow.AtomicModel) (flow.Flow, flow.Flow) {
			c := m.(*flow.Converter)
			return c.WasteflowAchieved(), c.WasteflowAchieved()
		})

	case KindMuxer:
		for i := 0; i < cs.NumInflows; i++ {
			i := i
			reg(fmt.Sprintf("%s-inflow(%d)", cs.ID, i), flow.RoleInflow, func(m flow.AtomicModel) (flow.Flow, flow.Flow) {
				mx := m.(*flow.Mux)
				return mx.InflowRequested(i), mx.InflowAchieved(i)
			})
		}
		for j := 0; j < cs.NumOutflows; j++ {
			j := j
			reg(fmt.Sprintf("%s-outflow(%d)", cs.ID, j), flow.RoleOutflow, func(m flow.AtomicModel) (flow.Flow, flow.Flow) {
				mx := m.(*flow.Mux)
				return mx.OutflowRequested(j), mx.OutflowAchieved(j)
			})
		}

	case KindStorage:
		reg(cs.ID+"-inflow", flow.RoleStorageInflow, func(m flow.AtomicModel) (flow.Flow, flow.Flow) {
			s := m.(*flow.Storage)
			return s.InflowRequested(), s.InflowAchieved()
		})
		reg(cs.ID+"-outflow", flow.RoleStorageOutflow, func(m flow.AtomicModel) (flow.Flow, flow.Flow) {
			s := m.(*flow.Storage)
			return s.OutflowRequested(), s.OutflowAchieved()
		})
		reg(cs.ID+"-storeflow", flow.RoleStorageInflow, func(m flow.AtomicModel) (flow.Flow, flow.Flow) {
			s := m.(*flow.Storage)
			return s.StoreflowAchieved(), s.StoreflowAchieved()
		})
		reg(cs.ID+"-discharge", flow.RoleStorageOutflow, func(m flow.AtomicModel) (flow.Flow, flow.Flow) {
			s := m.(*flow.Storage)
			return s.DischargeAchieved(), s.DischargeAchieved()
		})

	case KindPassThrough:
		reg(cs.ID+"-inflow", flow.RoleInflow, func(m flow.AtomicModel) (flow.Flow, flow.Flow) {
			f := m.(*flow.FlowLimits)
			return f.InflowRequested(), f.InflowAchieved()
		})
		reg(cs.ID+"-outflow", flow.RoleOutflow, func(m flow.AtomicModel) (flow.Flow, flow.Flow) {
			f := m.(*flow.FlowLimits)
			return f.OutflowRequested(), f.OutflowAchieved()
		})

	case KindMover:
		reg(cs.ID+"-moved-inflow", flow.RoleInflow, func(m flow.AtomicModel) (flow.Flow, flow.Flow) {
			mv := m.(*flow.Mover)
			return mv.MovedInflowAchieved(), mv.MovedInflowAchieved()
		})
		reg(cs.ID+"-powered-inflow", flow.RoleInflow, func(m flow.AtomicModel) (flow.Flow, flow.Flow) {
			mv := m.(*flow.Mover)
			return mv.PoweredInflowAchieved(), mv.PoweredInflowAchieved()
		})
		reg(cs.ID+"-outflow", flow.RoleOutflow, func(m flow.AtomicModel) (flow.Flow, flow.Flow) {
			mv := m.(*flow.Mover)
			return mv.OutflowAchieved(), mv.OutflowAchieved()
		})
	}
	return entries
}
