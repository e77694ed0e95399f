// Package scenario implements the scenario runner (C7) and stats (C9):
// it builds a flow.Network from a declarative Input, drives flow.Scheduler
// to fixed point, and reduces the recorded flow.FlowWriter into Results.
package scenario

import (
	"github.com/rfielding/flowsim/dist"
	"github.com/rfielding/flowsim/flow"
	"github.com/rfielding/flowsim/reliability"
)

// SimulationInfo carries the campaign-wide unit conventions and horizon
// (spec §6).
type SimulationInfo struct {
	RateUnit       string
	QuantityUnit   string
	TimeUnit       string
	MaxTimeSeconds flow.RealTime
	RandomSeed     *int64
}

// ComponentKind discriminates the ComponentSpec tagged union (spec §6).
type ComponentKind int

const (
	KindSource ComponentKind = iota
	KindUncontrolledSource
	KindLoad
	KindConverter
	KindMuxer
	KindStorage
	KindPassThrough
	KindMover
)

// ConversionSpec describes a Converter's efficiency, either a constant
// or a tabulated function (spec §4.3.5, §9).
type ConversionSpec struct {
	ConstantEfficiency float64    // used when Table is nil
	Table              [][2]flow.Flow // (in, out) pairs; used when non-nil
}

// ComponentSpec is the declarative shape of one network element. Only the
// fields relevant to Kind are meaningful; this mirrors spec §6's tagged
// union without Go-side inheritance (spec §9's "tagged union of concrete
// state records").
type ComponentSpec struct {
	ID   string
	Kind ComponentKind

	// Source / UncontrolledSource / Mover outflow, Converter output.
	OutputStream string
	MaxOutflow   flow.Flow // 0 = unlimited

	// Load / Converter input.
	InputStream string

	// Load: scenario_id -> load_id.
	LoadsByScenario map[string]string
	// UncontrolledSource: scenario_id -> load_id.
	SupplyByScenario map[string]string

	// Converter.
	LossflowStream string // "" = no lossflow port
	Conversion     ConversionSpec

	// Muxer.
	NumInflows       int
	NumOutflows      int
	DispatchStrategy flow.DispatchStrategy
	Stream           string // muxer's single stream

	// Storage.
	Capacity      flow.Flow
	MaxInflow     flow.Flow
	CapacityUnit  string
	InitialSOC    float64

	// PassThrough.
	MinOutflow flow.Flow

	// Mover.
	Inflow0Stream string
	Inflow1Stream string
	COP           float64

	FailureModes   []string
	FragilityModes []string
}

// Connection is one coupling in a network spec (spec §6).
type Connection struct {
	SrcID     string
	SrcPort   PortType
	SrcPortNo int
	DstID     string
	DstPort   PortType
	DstPortNo int
	Stream    string
}

// PortType names the logical port kind on either end of a Connection.
type PortType int

const (
	PortInflow PortType = iota
	PortOutflow
	PortLossflow
)

// Scenario describes one named scenario: which network to instantiate,
// for how long, and how many independent occurrences to run (spec §6).
type Scenario struct {
	ID                     string
	NetworkID              string
	Duration               flow.RealTime
	OccurrenceDistID       string
	MaxOccurrences         int
	Intensities            map[string]float64
	CalculateReliability   bool
}

// Input is the full declarative scenario campaign (spec §6).
type Input struct {
	SimulationInfo SimulationInfo
	Loads          map[string][]flow.LoadItem
	Components     map[string]ComponentSpec
	Networks       map[string][]Connection
	Scenarios      map[string]Scenario

	// Distributions, FailureModes, and FragilityModes are the reliability
	// catalog BuildSchedules samples from (spec §6); ComponentSpec's
	// FailureModes/FragilityModes fields are []string ids into these maps.
	Distributions  map[string]dist.Spec
	FailureModes   map[string]reliability.FailureMode
	FragilityModes map[string]reliability.FragilityMode

	// Schedules are precomputed, externally-supplied availability
	// schedules keyed by (scenario_id, component_id) — set directly by a
	// caller that already has schedules in hand. RunInstance merges these
	// with whatever BuildSchedules samples from the catalog above for the
	// occurrence being run, with Schedules taking precedence.
	Schedules map[ScheduleKey][]flow.TimeState
}

// ScheduleKey addresses a precomputed availability schedule.
type ScheduleKey struct {
	ScenarioID  string
	ComponentID string
}
