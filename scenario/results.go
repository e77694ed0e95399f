package scenario

import "github.com/rfielding/flowsim/flow"

// Datum mirrors flow.Datum at the scenario-results boundary (spec §6).
type Datum struct {
	TimeS     flow.RealTime
	Requested flow.Flow
	Achieved  flow.Flow
}

// Results is one scenario instance's recorded output (spec §6's
// ScenarioResults). ComponentSubportTag keys follow spec §6's naming:
// "<id>-inflow", "<id>-outflow", "<id>-lossflow", "<id>-wasteflow" for
// Converter; "<id>-inflow(k)"/"<id>-outflow(k)" for Mux; "<id>-inflow",
// "<id>-outflow", "<id>-storeflow", "<id>-discharge" for Storage.
type Results struct {
	IsGood        bool
	StartTimeS    flow.RealTime
	DurationS     flow.RealTime
	Results       map[string][]Datum
	StreamTypes   map[string]string // component id -> stream name
	ComponentTypes map[string]string // component id -> kind name
	PortRoles     map[string]flow.PortRole // component sub-port tag -> role
	Stats         Stats
	Err           error
}

// AllResults aggregates every scenario instance across a campaign
// (spec §6's AllResults).
type AllResults struct {
	IsGood  bool
	Results map[string][]Results // scenario_id -> occurrences
}
