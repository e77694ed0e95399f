package flow

// Datum is one recorded (time, requested, achieved) sample for a
// component sub-port (spec §6).
type Datum struct {
	Time      RealTime
	Requested Flow
	Achieved  Flow
}

// FlowWriter is the shared, columnar recorder every recording model
// writes through via an index handle rather than a back-reference
// (spec §9: "models borrow the writer by index", no cyclic ownership).
type FlowWriter struct {
	ids       []string
	records   [][]Datum
	index     map[string]int
	finalized bool
}

// NewFlowWriter constructs an empty writer.
func NewFlowWriter() *FlowWriter {
	return &FlowWriter{index: make(map[string]int)}
}

// RegisterID reserves a column for a component sub-port tag (e.g.
// "<id>-inflow"), returning its handle. Must be called only during
// network construction (spec §5).
func (w *FlowWriter) RegisterID(tag string) int {
	if i, ok := w.index[tag]; ok {
		return i
	}
	i := len(w.ids)
	w.ids = append(w.ids, tag)
	w.records = append(w.records, nil)
	w.index[tag] = i
	return i
}

// WriteData appends one sample under handle. Deduplicates consecutive
// writes at the same time for the same handle, keeping the latest value
// (spec C6: "per-time, per-component flow record with deduplication").
func (w *FlowWriter) WriteData(handle int, d Datum) error {
	if w.finalized {
		return NewBadInputError("write_data called after finalize_at_time on handle %d", handle)
	}
	col := w.records[handle]
	if n := len(col); n > 0 && col[n-1].Time == d.Time {
		col[n-1] = d
		return nil
	}
	w.records[handle] = append(col, d)
	return nil
}

// FinalizeAtTime forces every recorded component to a final zero-flow
// record at t, then locks the writer against further writes (spec §4.6
// step 4).
func (w *FlowWriter) FinalizeAtTime(t RealTime) error {
	if w.finalized {
		return NewBadInputError("finalize_at_time called twice")
	}
	for i := range w.records {
		col := w.records[i]
		if n := len(col); n > 0 && col[n-1].Time == t {
			col[n-1] = Datum{Time: t, Requested: 0, Achieved: 0}
			continue
		}
		w.records[i] = append(col, Datum{Time: t, Requested: 0, Achieved: 0})
	}
	w.finalized = true
	return nil
}

// Series returns the recorded series for tag, or nil if never registered.
func (w *FlowWriter) Series(tag string) []Datum {
	i, ok := w.index[tag]
	if !ok {
		return nil
	}
	return w.records[i]
}

// Tags returns every registered component sub-port tag, in registration
// order.
func (w *FlowWriter) Tags() []string {
	return append([]string(nil), w.ids...)
}
