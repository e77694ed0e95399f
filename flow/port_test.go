package flow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPortWithRequestedClampsAchieved(t *testing.T) {
	p := Port{Requested: 100, Achieved: 80}

	next, sendRequest, sendAchieved := p.WithRequested(50, 1)
	require.Equal(t, Flow(50), next.Requested)
	require.Equalf(t, Flow(50), next.Achieved, "clamped down to new request")
	require.Truef(t, sendRequest, "requested value changed")
	require.Truef(t, sendAchieved, "achieved was clamped")
}

func TestPortWithRequestedNoChange(t *testing.T) {
	p := Port{Requested: 50, Achieved: 50}
	next, sendRequest, sendAchieved := p.WithRequested(50, 1)
	require.Falsef(t, sendRequest, "no flags should be raised when nothing changes")
	require.Falsef(t, sendAchieved, "no flags should be raised when nothing changes")
	require.Equal(t, Flow(50), next.Achieved)
}

func TestPortWithAchievedClampsToRequest(t *testing.T) {
	p := Port{Requested: 40}
	next, sendRequest, sendAchieved := p.WithAchieved(60, 2)
	require.Equalf(t, Flow(40), next.Achieved, "clamped to requested 40")
	require.Truef(t, sendAchieved, "achieved value changed")
	require.Truef(t, sendRequest, "an over-deliver (achieved > requested) must raise sendRequest so the request can be corrected upstream")
}

func TestPortWithAchievedBelowRequestNoOverDeliver(t *testing.T) {
	p := Port{Requested: 100}
	next, sendRequest, _ := p.WithAchieved(60, 2)
	require.Equal(t, Flow(60), next.Achieved)
	require.Falsef(t, sendRequest, "sendRequest should not be raised when achieved stays within request")
}

func TestPortWithRequestedAndAvailable(t *testing.T) {
	p := Port{}
	next, sendRequest, sendAchieved := p.WithRequestedAndAvailable(30, 20, 5)
	require.Equal(t, Flow(30), next.Requested)
	require.Equal(t, Flow(20), next.Achieved)
	require.Truef(t, sendRequest, "both flags should be raised on first assignment")
	require.Truef(t, sendAchieved, "both flags should be raised on first assignment")
}

func TestPortBounded(t *testing.T) {
	ok := Port{Requested: 10, Achieved: 10}
	require.Truef(t, ok.Bounded(), "achieved == requested should be bounded")
	bad := Port{Requested: 10, Achieved: 10.1}
	require.Falsef(t, bad.Bounded(), "achieved > requested beyond tolerance should not be bounded")
}
