package flow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConverterConstantEfficiencyRoundTrip(t *testing.T) {
	c := NewConverter("conv", ConstantEfficiency{Eta: 0.5}, false, 0)

	next, err := c.DeltaExternal(0, []PortValue{{Port: PortOutflowRequest, Value: 50}})
	require.NoError(t, err)
	cv := next.(*Converter)
	require.Equalf(t, Flow(100), cv.InflowRequested(), "50 / 0.5")

	next2, err := cv.DeltaExternal(0, []PortValue{{Port: PortInflowAchieved, Value: 100}})
	require.NoError(t, err)
	cv2 := next2.(*Converter)
	require.InDeltaf(t, 50, float64(cv2.OutflowAchieved()), float64(Tolerance),
		"spec §8 property 6: |outflow - eta*inflow| <= 1e-6")
	require.NoError(t, cv2.CheckConservation())
}

func TestConverterNoLossflowAllGoesToWaste(t *testing.T) {
	c := NewConverter("conv", ConstantEfficiency{Eta: 0.5}, false, 0)
	next, _ := c.DeltaExternal(0, []PortValue{{Port: PortOutflowRequest, Value: 50}})
	cv := next.(*Converter)
	next2, _ := cv.DeltaExternal(0, []PortValue{{Port: PortInflowAchieved, Value: 100}})
	cv2 := next2.(*Converter)

	require.Equalf(t, Flow(0), cv2.LossflowAchieved(), "no lossflow_stream configured, SPEC_FULL §4.12")
	require.InDeltaf(t, 50, float64(cv2.WasteflowAchieved()), float64(Tolerance), "inflow 100 - outflow 50, all unrecovered")
}

func TestConverterLossflowRecoversPartOfTheDifference(t *testing.T) {
	c := NewConverter("chp", ConstantEfficiency{Eta: 0.5}, true, 0)
	next, _ := c.DeltaExternal(0, []PortValue{
		{Port: PortOutflowRequest, Value: 50},
		{Port: PortLossflowOrExtra, Value: 40},
	})
	cv := next.(*Converter)
	next2, err := cv.DeltaExternal(0, []PortValue{{Port: PortInflowAchieved, Value: 100}})
	require.NoError(t, err)
	cv2 := next2.(*Converter)

	require.InDeltaf(t, 40, float64(cv2.LossflowAchieved()), float64(Tolerance), "min(requested 40, diff 50)")
	require.InDeltaf(t, 10, float64(cv2.WasteflowAchieved()), float64(Tolerance), "remaining diff after lossflow")
	require.NoError(t, cv2.CheckConservation())
}

func TestConverterOverDeliverLowersInflowRequest(t *testing.T) {
	c := NewConverter("conv", ConstantEfficiency{Eta: 0.5}, false, 0)
	next, _ := c.DeltaExternal(0, []PortValue{{Port: PortOutflowRequest, Value: 50}})
	cv := next.(*Converter) // inflow requested = 100

	// upstream reports more than was requested.
	next2, err := cv.DeltaExternal(0, []PortValue{{Port: PortInflowAchieved, Value: 150}})
	require.NoError(t, err)
	cv2 := next2.(*Converter)
	require.Equalf(t, Flow(100), cv2.InflowRequested(), "derived from the outflow request, not raised by the over-deliver")
	require.Equalf(t, Flow(100), cv2.InflowAchieved(), "clamped to the (unchanged) request")
}
