package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadBytesDecodesReliabilityCatalog(t *testing.T) {
	const doc = `
[simulation_info]
rate_unit = "kW"
quantity_unit = "kJ"
time_unit = "s"
max_time_seconds = 100

[distributions.ttf]
kind = "fixed"
fixed_seconds = 5

[distributions.ttr]
kind = "fixed"
fixed_seconds = 2

[failure_modes.random-outage]
time_to_failure_dist = "ttf"
time_to_repair_dist = "ttr"

[fragility_modes.flood]
hazard_key = "flood_depth_m"
curve = [[0.0, 0.0], [5.0, 1.0]]
repair_dist = "ttr"
`
	input, err := LoadBytes([]byte(doc))
	require.NoError(t, err)

	_, ok := input.Distributions["ttf"]
	require.Truef(t, ok, "expected distribution %q to decode", "ttf")

	fm, ok := input.FailureModes["random-outage"]
	require.Truef(t, ok, "failure mode %q should decode", "random-outage")
	require.Equalf(t, "ttf", fm.TimeToFailureDist, "failure mode decoded incorrectly: %+v", fm)
	require.Equalf(t, "ttr", fm.TimeToRepairDist, "failure mode decoded incorrectly: %+v", fm)

	fr, ok := input.FragilityModes["flood"]
	require.Truef(t, ok, "fragility mode %q should decode", "flood")
	require.Equalf(t, "flood_depth_m", fr.HazardKey, "fragility mode decoded incorrectly: %+v", fr)
	require.Lenf(t, fr.Curve, 2, "fragility mode decoded incorrectly: %+v", fr)
	require.Equalf(t, "ttr", fr.RepairDist, "fragility mode's repair_dist decoded incorrectly: %+v", fr)
}

func TestLoadBytesBasicScenario(t *testing.T) {
	const doc = `
[simulation_info]
rate_unit = "kW"
quantity_unit = "kJ"
time_unit = "s"
max_time_seconds = 10

[[loads.profile]]
time_s = 0
rate = 10

[components.src]
kind = "source"
output_stream = "bus"

[components.load]
kind = "load"
input_stream = "bus"
[components.load.loads_by_scenario]
s1 = "profile"

[[networks.net1]]
src_id = "src"
src_port = "outflow"
dst_id = "load"
dst_port = "inflow"
stream = "bus"

[scenarios.s1]
network_id = "net1"
duration_s = 10
`
	input, err := LoadBytes([]byte(doc))
	require.NoError(t, err)
	require.Lenf(t, input.Components, 2, "expected 2 components")

	sc, ok := input.Scenarios["s1"]
	require.Truef(t, ok, "scenario s1 should decode")
	require.Equalf(t, "net1", sc.NetworkID, "scenario s1 decoded incorrectly: %+v", sc)
}
