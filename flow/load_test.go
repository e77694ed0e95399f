package flow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testProfile() []LoadItem {
	return []LoadItem{
		{Time: 0, Rate: 160},
		{Time: 1, Rate: 80},
		{Time: 2, Rate: 40},
		{Time: 3, Rate: 0, EndMark: true},
	}
}

func TestLoadAdvancesThroughProfile(t *testing.T) {
	l := NewLoad("load", testProfile(), 0)

	require.Equalf(t, RealTime(0), l.TimeAdvance(), "the first request must be reported before the clock advances")
	next := l.DeltaInternal().(*Load)
	require.Equal(t, Flow(160), next.Requested())
	require.Equalf(t, RealTime(1), next.TimeAdvance(), "next breakpoint at t=1")

	next = next.DeltaInternal().(*Load)
	require.Equal(t, Flow(80), next.Requested())
}

func TestLoadEndMarkerIsIdle(t *testing.T) {
	l := NewLoad("load", testProfile(), 0)
	// drive through every breakpoint, reporting and advancing alternately.
	for i := 0; i < 3; i++ {
		l = l.DeltaInternal().(*Load) // report
		l = l.DeltaInternal().(*Load) // advance to next breakpoint
	}
	l = l.DeltaInternal().(*Load) // report end-marker
	require.Equal(t, Flow(0), l.Requested())
	require.Equal(t, Infinity, l.TimeAdvance())
}

func TestLoadExternalUpdatesAchieved(t *testing.T) {
	l := NewLoad("load", testProfile(), 0)
	l = l.DeltaInternal().(*Load) // clears the initial report, requested=160

	next, err := l.DeltaExternal(0, []PortValue{{Port: PortInflowAchieved, Value: 50}})
	require.NoError(t, err)
	ld := next.(*Load)
	require.Equal(t, Flow(50), ld.Achieved())
}
