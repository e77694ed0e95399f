package flow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func pvSupply() []LoadItem {
	return []LoadItem{
		{Time: 0, Rate: 10},
		{Time: 1, Rate: 4},
		{Time: 2, Rate: 0, EndMark: true},
	}
}

func TestUncontrolledSourceExcessSupplyBecomesLossflow(t *testing.T) {
	u := NewUncontrolledSource("pv", pvSupply(), 0)
	next, err := u.DeltaExternal(0, []PortValue{{Port: PortOutflowRequest, Value: 6}})
	require.NoError(t, err)
	us := next.(*UncontrolledSource)
	require.InDeltaf(t, 6, float64(us.Achieved()), float64(Tolerance), "fully met, supply 10 exceeds demand")
	require.InDeltaf(t, 4, float64(us.LossAchieved()), float64(Tolerance), "unused supply, 10-6")
	require.NoError(t, us.CheckConservation())
}

func TestUncontrolledSourceDemandExceedsSupply(t *testing.T) {
	u := NewUncontrolledSource("pv", pvSupply(), 0)
	next, err := u.DeltaExternal(0, []PortValue{{Port: PortOutflowRequest, Value: 20}})
	require.NoError(t, err)
	us := next.(*UncontrolledSource)
	require.InDeltaf(t, 10, float64(us.Achieved()), float64(Tolerance), "capped by available supply, demand of 20 unmet")
	require.InDeltaf(t, 0, float64(us.LossAchieved()), float64(Tolerance), "nothing left over when demand exceeds supply")
}

func TestUncontrolledSourceFollowsSupplyProfile(t *testing.T) {
	u := NewUncontrolledSource("pv", pvSupply(), 0)
	next, _ := u.DeltaExternal(0, []PortValue{{Port: PortOutflowRequest, Value: 6}})
	us := next.(*UncontrolledSource)

	// flush the pending t=0 report before advancing.
	flushed := us.DeltaInternal().(*UncontrolledSource)
	require.Equalf(t, RealTime(1), flushed.TimeAdvance(), "until the next supply breakpoint")

	atOne := flushed.DeltaInternal().(*UncontrolledSource)
	require.InDeltaf(t, 4, float64(atOne.Achieved()), float64(Tolerance), "supply dropped to 4, still below the 6 requested")
	require.InDelta(t, 0, float64(atOne.LossAchieved()), float64(Tolerance))
}
