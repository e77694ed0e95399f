package flow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMuxInOrderReRequestsShortfallFromNextInflow(t *testing.T) {
	m := NewMux("bus", 2, 1, InOrder, 0)

	next, err := m.DeltaExternal(0, []PortValue{{Port: m.outflowPort(0), Value: 30}})
	require.NoError(t, err)
	mx := next.(*Mux)
	require.Equalf(t, Flow(30), mx.InflowRequested(0), "before any achieved is known")
	require.Equalf(t, Flow(30), mx.InflowRequested(1), "before any achieved is known")

	// inflow 0 can only deliver 20 of the 30 it was asked for.
	next2, err := mx.DeltaExternal(0, []PortValue{{Port: mx.inflowPort(0), Value: 20}})
	require.NoError(t, err)
	mx2 := next2.(*Mux)
	require.Equalf(t, Flow(10), mx2.InflowRequested(1), "InOrder re-requests the 30-20 shortfall from the next inflow")
	require.Equalf(t, Flow(20), mx2.OutflowAchieved(0), "only inflow 0's contribution settled so far")

	// inflow 1 now meets the reduced (shortfall) request exactly.
	next3, err := mx2.DeltaExternal(0, []PortValue{{Port: mx2.inflowPort(1), Value: 10}})
	require.NoError(t, err)
	mx3 := next3.(*Mux)
	require.Equalf(t, Flow(30), mx3.OutflowAchieved(0), "request fully met")
	require.NoError(t, mx3.CheckConservation())
}

func TestMuxDistributeSharesRequestEvenly(t *testing.T) {
	m := NewMux("bus", 2, 1, Distribute, 0)

	next, _ := m.DeltaExternal(0, []PortValue{{Port: m.outflowPort(0), Value: 30}})
	mx := next.(*Mux)
	require.Equal(t, Flow(15), mx.InflowRequested(0))
	require.Equal(t, Flow(15), mx.InflowRequested(1))

	next2, err := mx.DeltaExternal(0, []PortValue{
		{Port: mx.inflowPort(0), Value: 15},
		{Port: mx.inflowPort(1), Value: 10},
	})
	require.NoError(t, err)
	mx2 := next2.(*Mux)
	require.InDeltaf(t, 25, float64(mx2.OutflowAchieved(0)), float64(Tolerance), "sum of what both inflows actually delivered")
	require.NoErrorf(t, mx2.CheckConservation(), "spec §4.3.6: sum inflow_achieved must equal sum outflow_achieved")
}
