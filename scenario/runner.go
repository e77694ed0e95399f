package scenario

import (
	"context"
	"fmt"

	"github.com/rfielding/flowsim/flow"
)

// RunnerOptions tunes one scenario instance run beyond what Input/Scenario
// declare (spec §6's simulation_info is the campaign-wide default; these
// are per-call overrides used mainly by tests).
type RunnerOptions struct {
	MaxNoAdvance int             // quiescence guard; <=0 uses 10000 (spec §4.5, C5)
	Occurrence   int             // which occurrence of sc this is, seeds BuildSchedules
	Ctx          context.Context // caller-supplied deadline/cancellation (spec.md §4.6); nil means no deadline
}

const switchSuffix = "-switch"

// RunInstance builds the flow.Network for one (scenario, occurrence) and
// drives it to completion, returning the reduced Results (spec §6 / C7).
func RunInstance(input *Input, sc Scenario, opts RunnerOptions) *Results {
	maxNoAdvance := opts.MaxNoAdvance
	if maxNoAdvance <= 0 {
		maxNoAdvance = 10000
	}

	conns, ok := input.Networks[sc.NetworkID]
	if !ok {
		return &Results{Err: fmt.Errorf("unknown network %q", sc.NetworkID)}
	}

	sampled := BuildSchedules(input, sc, opts.Occurrence)
	schedules := make(map[string][]flow.TimeState) // component id -> schedule
	gated := make(map[string]ComponentSpec)
	addSchedule := func(key ScheduleKey, sched []flow.TimeState) {
		if key.ScenarioID != sc.ID || len(sched) == 0 {
			return
		}
		cs, ok := input.Components[key.ComponentID]
		if !ok {
			return
		}
		gated[key.ComponentID] = cs
		schedules[key.ComponentID] = sched
	}
	for key, sched := range sampled {
		addSchedule(key, sched)
	}
	for key, sched := range input.Schedules {
		addSchedule(key, sched) // caller-supplied schedules win over sampled ones
	}

	conns, switchStreams, err := spliceSwitches(conns, gated)
	if err != nil {
		return &Results{Err: err}
	}

	ids := make(map[string]bool)
	for _, c := range conns {
		ids[c.SrcID] = true
		ids[c.DstID] = true
	}

	const t0 = flow.RealTime(0)
	net := flow.NewNetwork()
	writer := flow.NewFlowWriter()
	var entries []tagEntry
	componentTypes := make(map[string]string)
	streamTypes := make(map[string]string)
	switchIDs := make(map[string]bool)

	for id := range ids {
		if stream, isSwitch := switchStreams[id]; isSwitch {
			compID := id[:len(id)-len(switchSuffix)]
			sw := flow.NewOnOffSwitch(flow.ID(id), schedules[compID], t0)
			net.AddModel(sw, map[int]string{
				flow.PortOutflowRequest:  stream,
				flow.PortInflowAchieved:  stream,
				flow.PortInflowRequest:   stream,
				flow.PortOutflowAchieved: stream,
			})
			switchIDs[id] = true
			streamTypes[id] = stream
			componentTypes[id] = "switch"
			continue
		}
		cs, ok := input.Components[id]
		if !ok {
			return &Results{Err: fmt.Errorf("network %q references unknown component %q", sc.NetworkID, id)}
		}
		m, portStreams, err := newModel(cs, input.Loads, sc.ID, t0)
		if err != nil {
			return &Results{Err: err}
		}
		net.AddModel(m, portStreams)
		componentTypes[id] = kindName(cs.Kind)
		streamTypes[id] = cs.OutputStream
		entries = append(entries, registerTags(writer, cs)...)
	}

	for _, c := range conns {
		src, ok := componentSpecOrSwitch(input, switchStreams, c.SrcID)
		if !ok {
			return &Results{Err: fmt.Errorf("connection references unknown component %q", c.SrcID)}
		}
		dst, ok := componentSpecOrSwitch(input, switchStreams, c.DstID)
		if !ok {
			return &Results{Err: fmt.Errorf("connection references unknown component %q", c.DstID)}
		}
		for _, coupling := range couplingsForConnection(c, src, dst) {
			if err := net.Connect(coupling); err != nil {
				return &Results{Err: err}
			}
		}
	}

	down := make(map[string]flow.RealTime)      // component id -> accumulated downtime
	maxDown := make(map[string]flow.RealTime)    // component id -> longest single outage
	downSince := make(map[string]flow.RealTime)  // component id -> start of current outage
	wasOn := make(map[string]bool, len(switchIDs))
	for id := range switchIDs {
		m, _ := net.Model(flow.ID(id))
		wasOn[id] = m.(*flow.OnOffSwitch).IsOn()
	}

	onSettle := func(t flow.RealTime) error {
		for id := range switchIDs {
			m, _ := net.Model(flow.ID(id))
			isOn := m.(*flow.OnOffSwitch).IsOn()
			if wasOn[id] && !isOn {
				downSince[id] = t
			} else if !wasOn[id] && isOn {
				span := t - downSince[id]
				down[id] += span
				if span > maxDown[id] {
					maxDown[id] = span
				}
			}
			wasOn[id] = isOn
		}
		for _, e := range entries {
			m, ok := net.Model(e.id)
			if !ok {
				continue
			}
			req, ach := e.read(m)
			if err := writer.WriteData(e.handle, flow.Datum{Time: t, Requested: req, Achieved: ach}); err != nil {
				return err
			}
		}
		return nil
	}

	scheduler := flow.NewScheduler(net, t0, maxNoAdvance)
	runErr := scheduler.RunUntil(opts.Ctx, sc.Duration, onSettle)

	for id := range switchIDs {
		if !wasOn[id] {
			span := sc.Duration - downSince[id]
			down[id] += span
			if span > maxDown[id] {
				maxDown[id] = span
			}
		}
	}

	if runErr == nil {
		runErr = writer.FinalizeAtTime(sc.Duration)
	}

	portRoles := make(map[string]flow.PortRole, len(entries))
	resultSeries := make(map[string][]Datum, len(entries))
	for _, e := range entries {
		portRoles[e.tag] = e.role
		var series []Datum
		for _, d := range writer.Series(e.tag) {
			series = append(series, Datum{TimeS: d.Time, Requested: d.Requested, Achieved: d.Achieved})
		}
		resultSeries[e.tag] = series
	}

	avail := make(map[string]AvailabilityStat, len(switchIDs))
	for id := range switchIDs {
		compID := id[:len(id)-len(switchSuffix)]
		avail[compID] = AvailabilityStat{
			UptimeS:      sc.Duration - down[id],
			DowntimeS:    down[id],
			MaxDowntimeS: maxDown[id],
		}
	}

	res := &Results{
		IsGood:         runErr == nil,
		StartTimeS:     t0,
		DurationS:      sc.Duration,
		Results:        resultSeries,
		StreamTypes:    streamTypes,
		ComponentTypes: componentTypes,
		PortRoles:      portRoles,
		Err:            runErr,
	}
	res.Stats = ComputeStats(res, avail)
	return res
}

// componentSpecOrSwitch resolves a connection endpoint id to a
// ComponentSpec, synthesizing a generic one for spliced switch nodes
// (which have no entry in input.Components).
func componentSpecOrSwitch(input *Input, switchStreams map[string]string, id string) (ComponentSpec, bool) {
	if stream, ok := switchStreams[id]; ok {
		return ComponentSpec{ID: id, Kind: KindPassThrough, OutputStream: stream, InputStream: stream}, true
	}
	cs, ok := input.Components[id]
	return cs, ok
}

func kindName(k ComponentKind) string {
	switch k {
	case KindSource:
		return "source"
	case KindUncontrolledSource:
		return "uncontrolled_source"
	case KindLoad:
		return "load"
	case KindConverter:
		return "converter"
	case KindMuxer:
		return "muxer"
	case KindStorage:
		return "storage"
	case KindPassThrough:
		return "pass_through"
	case KindMover:
		return "mover"
	default:
		return "unknown"
	}
}
