package scenario

import "github.com/rfielding/flowsim/flow"

// Port-id resolution translates the declarative (PortType, portNo) shape
// of a Connection (spec §6) into the concrete flow port ids defined by
// spec §4.3's protocol. Two conventions hold throughout the kernel:
//
//   - An Inflow-facing port emits Requested as its output and accepts
//     Achieved as its input (it's asking upstream for something).
//   - An Outflow- or Lossflow-facing port emits Achieved as its output
//     and accepts Requested as its input (it's telling downstream what
//     it delivered, and being asked for more).
//
// Single-port kinds (Source, Load, FlowLimits/PassThrough, Storage) use
// the fixed id pairs from flow.Port* constants. Multi-port kinds (Mux,
// Mover) reuse one id per indexed port, bidirectionally, exactly as
// their atomic-model implementations expect.
func outputPortID(cs ComponentSpec, pt PortType, portNo int) int {
	switch pt {
	case PortInflow:
		if cs.Kind == KindMuxer {
			return flow.PortLossflowOrExtra + portNo
		}
		if cs.Kind == KindMover && portNo == 1 {
			return flow.PortPoweredInflowRequest
		}
		return flow.PortInflowRequest
	case PortOutflow:
		if cs.Kind == KindMuxer {
			return flow.PortLossflowOrExtra + cs.NumInflows + portNo
		}
		return flow.PortOutflowAchieved
	case PortLossflow:
		return flow.PortLossflowOrExtra
	default:
		return flow.PortOutflowAchieved
	}
}

func inputPortID(cs ComponentSpec, pt PortType, portNo int) int {
	switch pt {
	case PortInflow:
		if cs.Kind == KindMuxer {
			return flow.PortLossflowOrExtra + portNo
		}
		if cs.Kind == KindMover && portNo == 1 {
			return flow.PortPoweredInflowAchieved
		}
		return flow.PortInflowAchieved
	case PortOutflow:
		if cs.Kind == KindMuxer {
			return flow.PortLossflowOrExtra + cs.NumInflows + portNo
		}
		return flow.PortOutflowRequest
	case PortLossflow:
		return flow.PortLossflowOrExtra
	default:
		return flow.PortOutflowRequest
	}
}

// couplingsForConnection expands one declarative Connection into the two
// flow.Coupling values that implement it: the achieved leg (src -> dst)
// and the request leg (dst -> src), per spec §4.4.
func couplingsForConnection(c Connection, src, dst ComponentSpec) [2]flow.Coupling {
	achieved := flow.Coupling{
		SrcModel: flow.ID(c.SrcID), SrcPort: outputPortID(src, c.SrcPort, c.SrcPortNo),
		DstModel: flow.ID(c.DstID), DstPort: inputPortID(dst, c.DstPort, c.DstPortNo),
		Stream: c.Stream,
	}
	request := flow.Coupling{
		SrcModel: flow.ID(c.DstID), SrcPort: outputPortID(dst, c.DstPort, c.DstPortNo),
		DstModel: flow.ID(c.SrcID), DstPort: inputPortID(src, c.SrcPort, c.SrcPortNo),
		Stream: c.Stream,
	}
	return [2]flow.Coupling{achieved, request}
}
