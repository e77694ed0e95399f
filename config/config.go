// Package config loads a scenario campaign from a TOML file, the
// on-disk shape of scenario.Input (spec §6).
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/rfielding/flowsim/dist"
	"github.com/rfielding/flowsim/flow"
	"github.com/rfielding/flowsim/reliability"
	"github.com/rfielding/flowsim/scenario"
)

// File is the TOML-serializable shape of a campaign. It mirrors
// scenario.Input field-for-field but with string-keyed enums and flat
// tables, since TOML has no tagged-union or Go-constant notion.
type File struct {
	Simulation     SimulationInfo           `toml:"simulation_info"`
	Loads          map[string][]LoadItem    `toml:"loads"`
	Components     map[string]Component     `toml:"components"`
	Networks       map[string][]Connection  `toml:"networks"`
	Scenarios      map[string]Scenario      `toml:"scenarios"`
	Distributions  map[string]Distribution  `toml:"distributions"`
	FailureModes   map[string]FailureMode   `toml:"failure_modes"`
	FragilityModes map[string]FragilityMode `toml:"fragility_modes"`
}

// Distribution is the on-disk shape of one named dist.Spec; only the
// fields relevant to Kind are meaningful (mirrors ComponentSpec's tagged
// union approach, spec §9).
type Distribution struct {
	Kind         string       `toml:"kind"` // fixed, uniform, normal, weibull, quantile_table
	FixedSeconds float64      `toml:"fixed_seconds"`
	Min          float64      `toml:"min"`
	Max          float64      `toml:"max"`
	Mean         float64      `toml:"mean"`
	StdDev       float64      `toml:"std_dev"`
	Shape        float64      `toml:"shape"`
	Scale        float64      `toml:"scale"`
	Quantiles    [][2]float64 `toml:"quantiles"`
}

// FailureMode is the on-disk shape of reliability.FailureMode.
type FailureMode struct {
	TimeToFailureDist string `toml:"time_to_failure_dist"`
	TimeToRepairDist  string `toml:"time_to_repair_dist"`
}

// FragilityMode is the on-disk shape of reliability.FragilityMode.
type FragilityMode struct {
	HazardKey  string       `toml:"hazard_key"`
	Curve      [][2]float64 `toml:"curve"` // (intensity, failure_prob) pairs
	RepairDist string       `toml:"repair_dist"`
}

type SimulationInfo struct {
	RateUnit       string `toml:"rate_unit"`
	QuantityUnit   string `toml:"quantity_unit"`
	TimeUnit       string `toml:"time_unit"`
	MaxTimeSeconds int64  `toml:"max_time_seconds"`
	RandomSeed     *int64 `toml:"random_seed"`
}

type LoadItem struct {
	TimeS   int64   `toml:"time_s"`
	Rate    float64 `toml:"rate"`
	EndMark bool    `toml:"end_mark"`
}

type Component struct {
	Kind string `toml:"kind"`

	OutputStream string  `toml:"output_stream"`
	MaxOutflow   float64 `toml:"max_outflow"`

	InputStream string `toml:"input_stream"`

	LoadsByScenario  map[string]string `toml:"loads_by_scenario"`
	SupplyByScenario map[string]string `toml:"supply_by_scenario"`

	LossflowStream     string       `toml:"lossflow_stream"`
	ConstantEfficiency float64      `toml:"constant_efficiency"`
	ConversionTable    [][2]float64 `toml:"conversion_table"`

	NumInflows       int    `toml:"num_inflows"`
	NumOutflows      int    `toml:"num_outflows"`
	DispatchStrategy string `toml:"dispatch_strategy"`
	Stream           string `toml:"stream"`

	Capacity     float64 `toml:"capacity"`
	MaxInflow    float64 `toml:"max_inflow"`
	CapacityUnit string  `toml:"capacity_unit"`
	InitialSOC   float64 `toml:"initial_soc"`

	MinOutflow float64 `toml:"min_outflow"`

	Inflow0Stream string  `toml:"inflow0_stream"`
	Inflow1Stream string  `toml:"inflow1_stream"`
	COP           float64 `toml:"cop"`

	FailureModes   []string `toml:"failure_modes"`
	FragilityModes []string `toml:"fragility_modes"`
}

type Connection struct {
	SrcID     string `toml:"src_id"`
	SrcPort   string `toml:"src_port"`
	SrcPortNo int    `toml:"src_port_no"`
	DstID     string `toml:"dst_id"`
	DstPort   string `toml:"dst_port"`
	DstPortNo int    `toml:"dst_port_no"`
	Stream    string `toml:"stream"`
}

type Scenario struct {
	NetworkID            string             `toml:"network_id"`
	DurationS            int64              `toml:"duration_s"`
	OccurrenceDistID     string             `toml:"occurrence_dist_id"`
	MaxOccurrences       int                `toml:"max_occurrences"`
	Intensities          map[string]float64 `toml:"intensities"`
	CalculateReliability bool               `toml:"calculate_reliability"`
}

// Load reads and decodes path into a scenario.Input.
func Load(path string) (*scenario.Input, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return toInput(f), nil
}

// LoadBytes decodes raw TOML bytes, for callers that already have the
// file in memory (tests, embedded defaults).
func LoadBytes(data []byte) (*scenario.Input, error) {
	var f File
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return toInput(f), nil
}

func toInput(f File) *scenario.Input {
	in := &scenario.Input{
		SimulationInfo: scenario.SimulationInfo{
			RateUnit:       f.Simulation.RateUnit,
			QuantityUnit:   f.Simulation.QuantityUnit,
			TimeUnit:       f.Simulation.TimeUnit,
			MaxTimeSeconds: flow.RealTime(f.Simulation.MaxTimeSeconds),
			RandomSeed:     f.Simulation.RandomSeed,
		},
		Loads:          make(map[string][]flow.LoadItem, len(f.Loads)),
		Components:     make(map[string]scenario.ComponentSpec, len(f.Components)),
		Networks:       make(map[string][]scenario.Connection, len(f.Networks)),
		Scenarios:      make(map[string]scenario.Scenario, len(f.Scenarios)),
		Schedules:      make(map[scenario.ScheduleKey][]flow.TimeState),
		Distributions:  make(map[string]dist.Spec, len(f.Distributions)),
		FailureModes:   make(map[string]reliability.FailureMode, len(f.FailureModes)),
		FragilityModes: make(map[string]reliability.FragilityMode, len(f.FragilityModes)),
	}

	for id, d := range f.Distributions {
		in.Distributions[id] = toDistSpec(id, d)
	}
	for id, fm := range f.FailureModes {
		in.FailureModes[id] = reliability.FailureMode{
			ID: id, TimeToFailureDist: fm.TimeToFailureDist, TimeToRepairDist: fm.TimeToRepairDist,
		}
	}
	for id, fm := range f.FragilityModes {
		curve := make([]reliability.CurvePoint, len(fm.Curve))
		for i, p := range fm.Curve {
			curve[i] = reliability.CurvePoint{Intensity: p[0], FailureProb: p[1]}
		}
		in.FragilityModes[id] = reliability.FragilityMode{ID: id, HazardKey: fm.HazardKey, Curve: curve, RepairDist: fm.RepairDist}
	}

	for id, items := range f.Loads {
		profile := make([]flow.LoadItem, len(items))
		for i, it := range items {
			profile[i] = flow.LoadItem{Time: flow.RealTime(it.TimeS), Rate: flow.Flow(it.Rate), EndMark: it.EndMark}
		}
		in.Loads[id] = profile
	}

	for id, c := range f.Components {
		in.Components[id] = toComponentSpec(id, c)
	}

	for id, conns := range f.Networks {
		out := make([]scenario.Connection, len(conns))
		for i, c := range conns {
			out[i] = scenario.Connection{
				SrcID: c.SrcID, SrcPort: toPortType(c.SrcPort), SrcPortNo: c.SrcPortNo,
				DstID: c.DstID, DstPort: toPortType(c.DstPort), DstPortNo: c.DstPortNo,
				Stream: c.Stream,
			}
		}
		in.Networks[id] = out
	}

	for id, s := range f.Scenarios {
		in.Scenarios[id] = scenario.Scenario{
			ID: id, NetworkID: s.NetworkID, Duration: flow.RealTime(s.DurationS),
			OccurrenceDistID: s.OccurrenceDistID, MaxOccurrences: s.MaxOccurrences,
			Intensities: s.Intensities, CalculateReliability: s.CalculateReliability,
		}
	}
	return in
}

func toComponentSpec(id string, c Component) scenario.ComponentSpec {
	var conv scenario.ConversionSpec
	if len(c.ConversionTable) > 0 {
		pts := make([][2]flow.Flow, len(c.ConversionTable))
		for i, p := range c.ConversionTable {
			pts[i] = [2]flow.Flow{flow.Flow(p[0]), flow.Flow(p[1])}
		}
		conv.Table = pts
	} else {
		conv.ConstantEfficiency = c.ConstantEfficiency
	}

	return scenario.ComponentSpec{
		ID: id, Kind: toKind(c.Kind),
		OutputStream: c.OutputStream, MaxOutflow: flow.Flow(c.MaxOutflow),
		InputStream:      c.InputStream,
		LoadsByScenario:  c.LoadsByScenario,
		SupplyByScenario: c.SupplyByScenario,
		LossflowStream:   c.LossflowStream,
		Conversion:       conv,
		NumInflows:       c.NumInflows, NumOutflows: c.NumOutflows,
		DispatchStrategy: toDispatchStrategy(c.DispatchStrategy), Stream: c.Stream,
		Capacity: flow.Flow(c.Capacity), MaxInflow: flow.Flow(c.MaxInflow),
		CapacityUnit: c.CapacityUnit, InitialSOC: c.InitialSOC,
		MinOutflow:    flow.Flow(c.MinOutflow),
		Inflow0Stream: c.Inflow0Stream, Inflow1Stream: c.Inflow1Stream, COP: c.COP,
		FailureModes: c.FailureModes, FragilityModes: c.FragilityModes,
	}
}

func toDistSpec(id string, d Distribution) dist.Spec {
	spec := dist.Spec{
		ID: id, FixedSeconds: d.FixedSeconds,
		Min: d.Min, Max: d.Max,
		Mean: d.Mean, StdDev: d.StdDev,
		Shape: d.Shape, Scale: d.Scale,
		Quantiles: d.Quantiles,
	}
	switch d.Kind {
	case "uniform":
		spec.Kind = dist.KindUniform
	case "normal":
		spec.Kind = dist.KindNormal
	case "weibull":
		spec.Kind = dist.KindWeibull
	case "quantile_table":
		spec.Kind = dist.KindQuantileTable
	default:
		spec.Kind = dist.KindFixed
	}
	return spec
}

func toKind(s string) scenario.ComponentKind {
	switch s {
	case "source":
		return scenario.KindSource
	case "uncontrolled_source":
		return scenario.KindUncontrolledSource
	case "load":
		return scenario.KindLoad
	case "converter":
		return scenario.KindConverter
	case "muxer":
		return scenario.KindMuxer
	case "storage":
		return scenario.KindStorage
	case "pass_through", "flow_meter":
		return scenario.KindPassThrough
	case "mover":
		return scenario.KindMover
	default:
		return scenario.KindPassThrough
	}
}

func toPortType(s string) scenario.PortType {
	switch s {
	case "outflow":
		return scenario.PortOutflow
	case "lossflow":
		return scenario.PortLossflow
	default:
		return scenario.PortInflow
	}
}

func toDispatchStrategy(s string) flow.DispatchStrategy {
	if s == "distribute" {
		return flow.Distribute
	}
	return flow.InOrder
}
