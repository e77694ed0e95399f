package scenario

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rfielding/flowsim/flow"
)

// s1Input builds spec §8 S1: Source (unlimited) -> PassThrough[0,50] -> Load,
// profile [(0,160),(1,80),(2,40),(3,0,end)]. Load should see its request
// clamped to 50 wherever it asks for more.
func s1Input() *Input {
	return &Input{
		SimulationInfo: SimulationInfo{RateUnit: "kW", QuantityUnit: "kJ", TimeUnit: "s", MaxTimeSeconds: 3},
		Loads: map[string][]flow.LoadItem{
			"profile": {
				{Time: 0, Rate: 160},
				{Time: 1, Rate: 80},
				{Time: 2, Rate: 40},
				{Time: 3, Rate: 0, EndMark: true},
			},
		},
		Components: map[string]ComponentSpec{
			"src":  {ID: "src", Kind: KindSource, OutputStream: "bus"},
			"lim":  {ID: "lim", Kind: KindPassThrough, InputStream: "bus", OutputStream: "bus", MinOutflow: 0, MaxOutflow: 50},
			"load": {ID: "load", Kind: KindLoad, InputStream: "bus", LoadsByScenario: map[string]string{"s1": "profile"}},
		},
		Networks: map[string][]Connection{
			"net1": {
				{SrcID: "src", SrcPort: PortOutflow, SrcPortNo: 0, DstID: "lim", DstPort: PortInflow, DstPortNo: 0, Stream: "bus"},
				{SrcID: "lim", SrcPort: PortOutflow, SrcPortNo: 0, DstID: "load", DstPort: PortInflow, DstPortNo: 0, Stream: "bus"},
			},
		},
		Scenarios: map[string]Scenario{
			"s1": {ID: "s1", NetworkID: "net1", Duration: 3},
		},
	}
}

func TestRunInstanceS1ClampsLoadThroughFlowLimits(t *testing.T) {
	input := s1Input()
	res := RunInstance(input, input.Scenarios["s1"], RunnerOptions{})
	require.Truef(t, res.IsGood, "expected a good run, got err: %v", res.Err)

	series := res.Results["load-inflow"]
	require.NotNilf(t, series, "no series recorded for tag %q; have %v", "load-inflow", tagsOf(res))

	want := map[flow.RealTime][2]flow.Flow{
		0: {160, 50},
		1: {80, 50},
		2: {40, 40},
		3: {0, 0},
	}
	got := make(map[flow.RealTime][2]flow.Flow, len(series))
	for _, d := range series {
		got[d.TimeS] = [2]flow.Flow{d.Requested, d.Achieved}
	}
	for ts, w := range want {
		g, ok := got[ts]
		require.Truef(t, ok, "no load-inflow datum recorded at t=%d; got %v", ts, got)
		require.Equalf(t, w, g, "load-inflow at t=%d", ts)
	}
}

func TestRunInstanceS1SourceSeesClampedRequest(t *testing.T) {
	input := s1Input()
	res := RunInstance(input, input.Scenarios["s1"], RunnerOptions{})
	require.Truef(t, res.IsGood, "expected a good run, got err: %v", res.Err)

	series := res.Results["src-outflow"]
	require.NotNilf(t, series, "no series recorded for tag %q", "src-outflow")
	last := series[len(series)-1]
	require.LessOrEqualf(t, last.Achieved, flow.Flow(50)+flow.Tolerance, "source achieved should never exceed the downstream limiter's cap of 50")
}

func TestRunInstanceStopsOnCancelledContext(t *testing.T) {
	input := s1Input()
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // already cancelled before the first event instant

	res := RunInstance(input, input.Scenarios["s1"], RunnerOptions{Ctx: ctx})
	require.Falsef(t, res.IsGood, "expected a cancelled run to be marked bad")

	ferr, ok := res.Err.(*flow.Error)
	require.Truef(t, ok, "expected a *flow.Error, got %T", res.Err)
	require.Equalf(t, flow.Cancelled, ferr.Kind, "expected a flow.Cancelled error, got %v", res.Err)
}

func tagsOf(res *Results) []string {
	tags := make([]string, 0, len(res.Results))
	for k := range res.Results {
		tags = append(tags, k)
	}
	return tags
}
