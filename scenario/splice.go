package scenario

import "fmt"

// gatePort reports which logical port of a component kind an
// availability schedule should gate: a producer's Outflow (equipment
// outage stops its delivery) or a consumer's Inflow (the component goes
// dark and stops drawing). Muxer is intentionally unsupported: a
// scheduled Muxer gets no switch.
func gatePort(kind ComponentKind) (PortType, bool) {
	switch kind {
	case KindLoad:
		return PortInflow, true
	case KindSource, KindUncontrolledSource, KindConverter, KindStorage, KindPassThrough, KindMover:
		return PortOutflow, true
	default:
		return 0, false
	}
}

// spliceSwitches rewrites conns so that every component in gated (keyed
// by component id, with its declared kind) has an OnOffSwitch inserted
// inline on its gating port. Returns the rewritten connections and the
// list of synthetic switch ids to instantiate, each paired with the
// stream it carries.
func spliceSwitches(conns []Connection, gated map[string]ComponentSpec) ([]Connection, map[string]string, error) {
	out := append([]Connection(nil), conns...)
	switches := make(map[string]string)

	for id, cs := range gated {
		pt, ok := gatePort(cs.Kind)
		if !ok {
			continue
		}
		switchID := id + "-switch"
		switch pt {
		case PortOutflow:
			found := false
			for i := range out {
				c := &out[i]
				if c.SrcID == id && c.SrcPort == PortOutflow {
					found = true
					switches[switchID] = c.Stream
					downstream := Connection{SrcID: switchID, SrcPort: PortOutflow, SrcPortNo: 0,
						DstID: c.DstID, DstPort: c.DstPort, DstPortNo: c.DstPortNo, Stream: c.Stream}
					c.SrcID = id
					c.SrcPort = PortOutflow
					c.DstID = switchID
					c.DstPort = PortInflow
					c.DstPortNo = 0
					out = append(out, downstream)
				}
			}
			if !found {
				return nil, nil, fmt.Errorf("scheduled component %q has no outflow connection to gate", id)
			}
		case PortInflow:
			found := false
			for i := range out {
				c := &out[i]
				if c.DstID == id && c.DstPort == PortInflow {
					found = true
					switches[switchID] = c.Stream
					upstream := Connection{SrcID: c.SrcID, SrcPort: c.SrcPort, SrcPortNo: c.SrcPortNo,
						DstID: switchID, DstPort: PortInflow, DstPortNo: 0, Stream: c.Stream}
					c.SrcID = switchID
					c.SrcPort = PortOutflow
					c.SrcPortNo = 0
					c.DstID = id
					c.DstPort = PortInflow
					out = append(out, upstream)
				}
			}
			if !found {
				return nil, nil, fmt.Errorf("scheduled component %q has no inflow connection to gate", id)
			}
		}
	}
	return out, switches, nil
}
