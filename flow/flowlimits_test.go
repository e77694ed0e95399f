package flow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlowLimitsClampsRequestUpstream(t *testing.T) {
	f := NewFlowLimits("lim", 0, 50, 0)
	next, err := f.DeltaExternal(0, []PortValue{{Port: PortOutflowRequest, Value: 160}})
	require.NoError(t, err)
	fl := next.(*FlowLimits)
	require.Equalf(t, Flow(50), fl.InflowRequested(), "clamped to upper bound 50")
}

func TestFlowLimitsReconciliesAchievedDownstream(t *testing.T) {
	f := NewFlowLimits("lim", 0, 50, 0)
	next, _ := f.DeltaExternal(0, []PortValue{{Port: PortOutflowRequest, Value: 160}})
	fl := next.(*FlowLimits)

	next2, err := fl.DeltaExternal(0, []PortValue{{Port: PortInflowAchieved, Value: 50}})
	require.NoError(t, err)
	fl2 := next2.(*FlowLimits)
	require.Equal(t, Flow(50), fl2.OutflowAchieved())
	require.NoError(t, fl2.CheckConservation())
}

func TestFlowLimitsLowerBoundFloor(t *testing.T) {
	f := NewFlowLimits("lim", 10, 50, 0)
	next, _ := f.DeltaExternal(0, []PortValue{{Port: PortOutflowRequest, Value: 0}})
	fl := next.(*FlowLimits)
	require.Equalf(t, Flow(10), fl.InflowRequested(), "floored to lower bound 10")
}

func TestFlowLimitsConfluentClampsThenReconciles(t *testing.T) {
	f := NewFlowLimits("lim", 0, 50, 0)
	// Both a fresh (above-limit) outflow request and an inflow-achieved
	// report arrive in the same instant (spec §4.3.4's confluent rule:
	// clamp the request first, then reconcile achieved against the new clamp).
	next, err := f.DeltaConfluent([]PortValue{
		{Port: PortOutflowRequest, Value: 160},
		{Port: PortInflowAchieved, Value: 50},
	})
	require.NoError(t, err)
	fl := next.(*FlowLimits)
	require.Equal(t, Flow(50), fl.InflowRequested())
	require.Equal(t, Flow(50), fl.OutflowAchieved())
}

func TestFlowLimitsOverDeliverLowersRequest(t *testing.T) {
	f := NewFlowLimits("lim", 0, 50, 0)
	next, _ := f.DeltaExternal(0, []PortValue{{Port: PortOutflowRequest, Value: 20}})
	fl := next.(*FlowLimits)
	require.Equal(t, Flow(20), fl.InflowRequested())

	// Upstream over-delivers relative to the (now lower) clamped request.
	next2, err := fl.DeltaExternal(0, []PortValue{{Port: PortInflowAchieved, Value: 45}})
	require.NoError(t, err)
	fl2 := next2.(*FlowLimits)
	require.Equalf(t, Flow(20), fl2.OutflowAchieved(), "capped at clamped request")
	require.Equalf(t, Flow(20), fl2.InflowRequested(), "the over-deliver is clamped, not rewarded")
}
