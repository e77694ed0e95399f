package flow

import "fmt"

// ErrorKind enumerates the error taxonomy of spec §7.
type ErrorKind int

const (
	BadInput ErrorKind = iota
	MixedStreams
	InconsistentStreamUnits
	FlowInvariant
	AchievedMoreThanRequested
	SimultaneousIORequest
	BadPort
	Stuck
	Cancelled
)

func (k ErrorKind) String() string {
	switch k {
	case BadInput:
		return "BadInput"
	case MixedStreams:
		return "MixedStreams"
	case InconsistentStreamUnits:
		return "InconsistentStreamUnits"
	case FlowInvariant:
		return "FlowInvariant"
	case AchievedMoreThanRequested:
		return "AchievedMoreThanRequested"
	case SimultaneousIORequest:
		return "SimultaneousIORequest"
	case BadPort:
		return "BadPort"
	case Stuck:
		return "Stuck"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Error is the common shape of every error the kernel returns: a kind, the
// component it was raised against (if any), and the logical time it was
// raised at. Fatal kinds (FlowInvariant, Stuck, MixedStreams) are checked
// with errors.As by the scenario runner, which halts and marks the run bad.
type Error struct {
	Kind      ErrorKind
	Component string
	Time      RealTime
	Message   string
}

func (e *Error) Error() string {
	if e.Component == "" {
		return fmt.Sprintf("%s at t=%d: %s", e.Kind, e.Time, e.Message)
	}
	return fmt.Sprintf("%s: component %q at t=%d: %s", e.Kind, e.Component, e.Time, e.Message)
}

// Fatal reports whether this error kind halts the scenario run per the
// policy in spec §7.
func (e *Error) Fatal() bool {
	switch e.Kind {
	case FlowInvariant, Stuck, MixedStreams, BadInput, Cancelled:
		return true
	default:
		return false
	}
}

func newErr(kind ErrorKind, component string, t RealTime, format string, args ...any) *Error {
	return &Error{Kind: kind, Component: component, Time: t, Message: fmt.Sprintf(format, args...)}
}

func NewBadInputError(format string, args ...any) *Error {
	return newErr(BadInput, "", 0, format, args...)
}

func NewMixedStreamsError(component string, t RealTime, format string, args ...any) *Error {
	return newErr(MixedStreams, component, t, format, args...)
}

func NewInconsistentStreamUnitsError(component string, format string, args ...any) *Error {
	return newErr(InconsistentStreamUnits, component, 0, format, args...)
}

func NewFlowInvariantError(component string, t RealTime, inflow, outflow, storeflow, lossflow, wasteflow Flow) *Error {
	return newErr(FlowInvariant, component, t,
		"inflow=%.9g != outflow(%.9g)+storeflow(%.9g)+lossflow(%.9g)+wasteflow(%.9g)",
		inflow, outflow, storeflow, lossflow, wasteflow)
}

func NewAchievedMoreThanRequestedError(component string, t RealTime, achieved, requested Flow) *Error {
	return newErr(AchievedMoreThanRequested, component, t, "achieved=%.9g > requested=%.9g", achieved, requested)
}

func NewSimultaneousIORequestError(component string, t RealTime) *Error {
	return newErr(SimultaneousIORequest, component, t, "received both outflow-request and inflow-achieved with no confluent rule")
}

func NewBadPortError(component string, t RealTime, port int) *Error {
	return newErr(BadPort, component, t, "message on undefined port %d", port)
}

func NewStuckError(t RealTime, maxNoAdvance int) *Error {
	return newErr(Stuck, "", t, "scheduler exceeded max_no_advance=%d consecutive zero-time steps", maxNoAdvance)
}

func NewCancelledError(t RealTime, cause error) *Error {
	return newErr(Cancelled, "", t, "run cancelled: %v", cause)
}
