package flow

import "context"

// Scheduler is the single-threaded, cooperative next-event loop over a
// Network (spec §4.5, C5). It carries no goroutines and no suspension
// points inside a transition: each model's transition runs to
// completion before another model is touched.
type Scheduler struct {
	net          *Network
	lastTime     map[ID]RealTime
	maxNoAdvance int
}

// NewScheduler constructs a scheduler over net, with every model's clock
// starting at t0.
func NewScheduler(net *Network, t0 RealTime, maxNoAdvance int) *Scheduler {
	s := &Scheduler{net: net, lastTime: make(map[ID]RealTime), maxNoAdvance: maxNoAdvance}
	for _, m := range net.Models() {
		s.lastTime[m.ID()] = t0
	}
	return s
}

func (s *Scheduler) nextEventTime(m AtomicModel) RealTime {
	ta := m.TimeAdvance()
	if ta == Infinity {
		return Infinity
	}
	return s.lastTime[m.ID()] + ta
}

// OnSettle is invoked once per event instant, after every transition at
// that instant has been applied and conservation-checked — the natural
// point for a FlowWriter to record achieved flow (spec §2's data flow).
type OnSettle func(t RealTime) error

// RunUntil drives the scheduler from its current state up to tEnd
// (inclusive), calling onSettle after each event instant. It returns the
// first fatal *Error encountered (FlowInvariant, Stuck, ...), or nil on
// reaching quiescence or tEnd. ctx is checked once per event instant
// (never mid-transition, since a transition always runs to completion);
// a cancelled or expired ctx stops the run with a Cancelled *Error at
// the instant the check failed. A nil ctx is treated as
// context.Background (never cancels).
func (s *Scheduler) RunUntil(ctx context.Context, tEnd RealTime, onSettle OnSettle) error {
	noAdvance := 0
	havePrev := false
	var prevReal RealTime

	for {
		tNext := s.minNextEventTime()
		if tNext == Infinity || tNext > tEnd {
			return nil
		}

		if ctx != nil {
			if err := ctx.Err(); err != nil {
				return NewCancelledError(tNext, err)
			}
		}

		if havePrev && tNext == prevReal {
			noAdvance++
			if noAdvance > s.maxNoAdvance {
				return NewStuckError(tNext, s.maxNoAdvance)
			}
		} else {
			noAdvance = 0
		}
		havePrev = true
		prevReal = tNext

		if err := s.stepInstant(tNext); err != nil {
			return err
		}

		if onSettle != nil {
			if err := onSettle(tNext); err != nil {
				return err
			}
		}
	}
}

func (s *Scheduler) minNextEventTime() RealTime {
	tNext := Infinity
	for _, m := range s.net.Models() {
		if t := s.nextEventTime(m); t < tNext {
			tNext = t
		}
	}
	return tNext
}

// stepInstant runs one full event instant at time t: compute imminent
// outputs, route them, dispatch confluent/internal/external transitions,
// then validate conservation on every model that changed (spec §4.5).
func (s *Scheduler) stepInstant(t RealTime) error {
	imminent := s.imminentAt(t)

	outputs := make(map[ID][]PortValue, len(imminent))
	for _, m := range imminent {
		outputs[m.ID()] = m.Output()
	}

	inbox := make(map[ID][]PortValue)
	for _, m := range imminent {
		for _, pv := range outputs[m.ID()] {
			for _, c := range s.net.DestinationsOf(m.ID(), pv.Port) {
				inbox[c.DstModel] = append(inbox[c.DstModel], PortValue{Port: c.DstPort, Value: pv.Value})
			}
		}
	}

	imminentSet := make(map[ID]bool, len(imminent))
	for _, m := range imminent {
		imminentSet[m.ID()] = true
	}

	touched := make(map[ID]bool)

	// Confluent is preferred over separate internal-then-external for an
	// imminent model that also received input (spec §5 tie-break).
	for _, m := range imminent {
		xs := inbox[m.ID()]
		var next AtomicModel
		var err error
		if len(xs) > 0 {
			next, err = m.DeltaConfluent(xs)
		} else {
			next = m.DeltaInternal()
		}
		if err != nil {
			return err
		}
		s.net.SetModel(next)
		s.lastTime[m.ID()] = t
		touched[m.ID()] = true
	}

	for dstID, xs := range inbox {
		if imminentSet[dstID] {
			continue // already handled confluently above
		}
		m, ok := s.net.Model(dstID)
		if !ok {
			return NewBadPortError(string(dstID), t, -1)
		}
		elapsed := t - s.lastTime[dstID]
		next, err := m.DeltaExternal(elapsed, xs)
		if err != nil {
			return err
		}
		s.net.SetModel(next)
		s.lastTime[dstID] = t
		touched[dstID] = true
	}

	for id := range touched {
		m, _ := s.net.Model(id)
		if err := m.CheckConservation(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) imminentAt(t RealTime) []AtomicModel {
	var out []AtomicModel
	for _, m := range s.net.Models() {
		if s.nextEventTime(m) == t {
			out = append(out, m)
		}
	}
	return out
}
