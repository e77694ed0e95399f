package flow

// Coupling is a directed link from one model's output port to another's
// input port (spec §3, C4). Both ends must agree on Stream.
type Coupling struct {
	SrcModel ID
	SrcPort  int
	DstModel ID
	DstPort  int
	Stream   string
}

// Network is a typed directed multigraph of atomic models connected by
// couplings. It is built once per scenario instance and is immutable
// for the run (spec §3).
type Network struct {
	models    map[ID]AtomicModel
	order     []ID // insertion order, for deterministic iteration
	couplings []Coupling
	// portStream records each model's declared stream per port, so the
	// builder can reject a coupling whose ends disagree (MixedStreams).
	portStream map[ID]map[int]string
}

// NewNetwork constructs an empty Network.
func NewNetwork() *Network {
	return &Network{
		models:     make(map[ID]AtomicModel),
		couplings:  nil,
		portStream: make(map[ID]map[int]string),
	}
}

// AddModel registers an atomic model instance, declaring the streams it
// exposes on its ports.
func (n *Network) AddModel(m AtomicModel, portStreams map[int]string) {
	n.models[m.ID()] = m
	n.order = append(n.order, m.ID())
	n.portStream[m.ID()] = portStreams
}

// Model returns the current state of a registered model.
func (n *Network) Model(id ID) (AtomicModel, bool) {
	m, ok := n.models[id]
	return m, ok
}

// SetModel replaces a model's state (used by the scheduler after a
// transition).
func (n *Network) SetModel(m AtomicModel) {
	n.models[m.ID()] = m
}

// Models returns every registered model in deterministic (insertion)
// order.
func (n *Network) Models() []AtomicModel {
	out := make([]AtomicModel, 0, len(n.order))
	for _, id := range n.order {
		out = append(out, n.models[id])
	}
	return out
}

// Connect adds a coupling after validating the stream on both ends agree
// (spec §4.4: "the builder rejects stream-mismatched links").
func (n *Network) Connect(c Coupling) error {
	srcStream, ok := n.portStream[c.SrcModel][c.SrcPort]
	if !ok {
		return NewBadPortError(string(c.SrcModel), 0, c.SrcPort)
	}
	dstStream, ok := n.portStream[c.DstModel][c.DstPort]
	if !ok {
		return NewBadPortError(string(c.DstModel), 0, c.DstPort)
	}
	if srcStream != dstStream || srcStream != c.Stream {
		return NewMixedStreamsError(string(c.SrcModel), 0,
			"coupling stream %q does not match src port stream %q / dst port stream %q",
			c.Stream, srcStream, dstStream)
	}
	n.couplings = append(n.couplings, c)
	return nil
}

// DestinationsOf returns every coupling whose source is (model, port),
// in the order they were added (deterministic fan-out, spec §4.4).
func (n *Network) DestinationsOf(model ID, port int) []Coupling {
	var out []Coupling
	for _, c := range n.couplings {
		if c.SrcModel == model && c.SrcPort == port {
			out = append(out, c)
		}
	}
	return out
}

// Couplings returns every coupling in the network.
func (n *Network) Couplings() []Coupling {
	return n.couplings
}
