package flow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestStorageChargesToFullOverFiftySeconds reproduces spec §8 S6's sanity
// check: capacity 100 kJ, max_charge_rate 1 kW, initial SOC 0.5, charging
// continuously with no competing outflow demand reaches SOC=1.0 at
// exactly t=50 (50 kJ needed / 1 kW).
func TestStorageChargesToFullOverFiftySeconds(t *testing.T) {
	s := NewStorage("batt", 100, 1, 0.5, 0)

	next, err := s.DeltaExternal(0, []PortValue{{Port: PortInflowAchieved, Value: 1}})
	require.NoError(t, err)
	st := next.(*Storage)
	require.InDeltaf(t, 1, float64(st.StoreflowAchieved()), float64(Tolerance), "all inflow charges, no outflow demand")

	ta := st.TimeAdvance()
	require.Equalf(t, RealTime(50), ta, "(1-0.5)*100/1")

	full := st.DeltaInternal().(*Storage)
	require.InDeltaf(t, 1.0, full.SOC(), float64(Tolerance), "soc after advancing %d s", ta)
	require.Equalf(t, Flow(0), full.InflowRequested(), "storage stops asking to charge at capacity")
}

func TestStorageDischargesToCoverShortfall(t *testing.T) {
	s := NewStorage("batt", 100, 1, 0.5, 0)

	next, err := s.DeltaExternal(0, []PortValue{{Port: PortOutflowRequest, Value: 2}})
	require.NoError(t, err)
	st := next.(*Storage)

	next2, err := st.DeltaExternal(0, []PortValue{{Port: PortInflowAchieved, Value: 1}})
	require.NoError(t, err)
	st2 := next2.(*Storage)

	require.InDeltaf(t, 2, float64(st2.OutflowAchieved()), float64(Tolerance), "1 direct + 1 discharged to meet the 2kW request")
	require.InDeltaf(t, 1, float64(st2.DischargeAchieved()), float64(Tolerance), "shortfall between achieved inflow and requested outflow")
	require.NoError(t, st2.CheckConservation())
}

func TestStorageSOCStaysWithinBounds(t *testing.T) {
	s := NewStorage("batt", 100, 1, 0.99, 0)
	next, _ := s.DeltaExternal(0, []PortValue{{Port: PortInflowAchieved, Value: 1}})
	st := next.(*Storage)
	// advance well past the point SOC would hit 1.0 without clamping.
	after := st.DeltaInternal().(*Storage)
	for i := 0; i < 5 && after.SOC() < 1; i++ {
		after = after.DeltaInternal().(*Storage)
	}
	require.GreaterOrEqualf(t, after.SOC(), -float64(Tolerance), "spec §8 property 7")
	require.LessOrEqualf(t, after.SOC(), 1+float64(Tolerance), "spec §8 property 7")
}
