package flow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOnOffSwitchZeroesPortsWhileOff(t *testing.T) {
	schedule := []TimeState{{Time: 10, Available: false}, {Time: 20, Available: true}}
	s := NewOnOffSwitch("sw", schedule, 0)
	require.Truef(t, s.IsOn(), "switch should start on (schedule's first entry is in the future)")

	next, err := s.DeltaExternal(0, []PortValue{
		{Port: PortOutflowRequest, Value: 50},
		{Port: PortInflowAchieved, Value: 50},
	})
	require.NoError(t, err)
	sw := next.(*OnOffSwitch)
	require.Equalf(t, Flow(50), sw.InflowRequested(), "while on, passed straight through")
	require.Equalf(t, Flow(50), sw.OutflowAchieved(), "while on, passed straight through")

	// the pass-through's own report is pending; flush it first.
	sw = sw.DeltaInternal().(*OnOffSwitch)
	require.Equalf(t, RealTime(10), sw.TimeAdvance(), "until the scheduled off transition")
	off := sw.DeltaInternal().(*OnOffSwitch)
	require.Falsef(t, off.IsOn(), "switch should be off after the t=10 schedule entry fires")
	require.Equalf(t, Flow(0), off.InflowRequested(), "while off, regardless of the last request")
	require.Equalf(t, Flow(0), off.OutflowAchieved(), "while off, regardless of the last request")

	// the transition's own report is pending; one more DeltaInternal just
	// flushes it without advancing time.
	echoed := off.DeltaInternal().(*OnOffSwitch)
	require.Equalf(t, RealTime(10), echoed.TimeAdvance(), "until the t=20 schedule entry")

	on := echoed.DeltaInternal().(*OnOffSwitch)
	require.Truef(t, on.IsOn(), "switch should be back on after the t=20 schedule entry fires")
	require.Equalf(t, Flow(50), on.InflowRequested(), "the outflow request survives the outage")
	require.Equalf(t, Flow(0), on.OutflowAchieved(),
		"achieved was cleared by the outage and no new delivery has been reported yet")
}

func TestOnOffSwitchConservationHoldsWhileOff(t *testing.T) {
	schedule := []TimeState{{Time: 5, Available: false}}
	s := NewOnOffSwitch("sw", schedule, 0)
	next, _ := s.DeltaExternal(0, []PortValue{
		{Port: PortOutflowRequest, Value: 10},
		{Port: PortInflowAchieved, Value: 10},
	})
	// the first DeltaInternal flushes the pending report; the second fires
	// the t=5 off transition.
	off := next.(*OnOffSwitch).DeltaInternal().DeltaInternal().(*OnOffSwitch)
	require.Falsef(t, off.IsOn(), "switch should be off after the t=5 schedule entry fires")
	require.NoError(t, off.CheckConservation())
}
