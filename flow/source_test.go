package flow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSourceUnlimitedMeetsAnyRequest(t *testing.T) {
	s := NewSource("src", 0, 0) // maxOutflow <= 0 means unlimited
	next, err := s.DeltaExternal(0, []PortValue{{Port: PortOutflowRequest, Value: 1e6}})
	require.NoError(t, err)
	sr := next.(*Source)
	require.Equal(t, Flow(1e6), sr.Achieved())
}

func TestSourceClampsToMaxOutflow(t *testing.T) {
	s := NewSource("src", 50, 0)
	next, err := s.DeltaExternal(0, []PortValue{{Port: PortOutflowRequest, Value: 160}})
	require.NoError(t, err)
	sr := next.(*Source)
	require.Equalf(t, Flow(160), sr.Requested(), "the source still records the full ask")
	require.Equalf(t, Flow(50), sr.Achieved(), "clamped to max_outflow 50")

	out := sr.Output()
	require.Len(t, out, 1)
	require.Equal(t, PortOutflowAchieved, out[0].Port)
	require.Equal(t, Flow(50), out[0].Value)
}

func TestSourceConservation(t *testing.T) {
	s := NewSource("src", 50, 0)
	next, _ := s.DeltaExternal(0, []PortValue{{Port: PortOutflowRequest, Value: 30}})
	require.NoError(t, next.CheckConservation())
}
