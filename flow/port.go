package flow

// Port is a tri-valued request/achieved cell: requested flows upstream,
// achieved flows downstream. Both are non-negative; achieved never
// exceeds requested once a settle step has reconciled them (spec §3, §4.1).
type Port struct {
	Requested  Flow
	Achieved   Flow
	LastChange RealTime
}

// WithRequested returns the port after a new request r, and whether the
// change must be propagated upstream (sendRequest) or downstream
// (sendAchieved). Achieved is clamped down to the new request; it is
// never raised here (a request only ever lowers or holds the ceiling
// achieved can currently occupy).
func (p Port) WithRequested(r Flow, t RealTime) (next Port, sendRequest, sendAchieved bool) {
	next = p
	next.Requested = r
	next.LastChange = t
	sendRequest = !almostEqual(p.Requested, r)

	clamped := minFlow(p.Achieved, r)
	sendAchieved = !almostEqual(p.Achieved, clamped)
	next.Achieved = clamped
	return next, sendRequest, sendAchieved
}

// WithAchieved returns the port after a new achieved value a, clamped to
// the current request. An a above the request is an upstream over-deliver:
// it is clamped here, and sendRequest is raised so the over-delivering
// request can be corrected on the next settle step (spec §4.1).
func (p Port) WithAchieved(a Flow, t RealTime) (next Port, sendRequest, sendAchieved bool) {
	next = p
	next.LastChange = t

	clamped := minFlow(a, p.Requested)
	overDeliver := a > p.Requested+Tolerance

	sendAchieved = !almostEqual(p.Achieved, clamped)
	next.Achieved = clamped
	sendRequest = overDeliver
	return next, sendRequest, sendAchieved
}

// WithRequestedAndAvailable atomically sets the request to r and the
// achieved to min(r, avail) — used when an event carries both a new
// upstream capacity and a propagation step in one transition (spec §4.1).
func (p Port) WithRequestedAndAvailable(r, avail Flow, t RealTime) (next Port, sendRequest, sendAchieved bool) {
	next = p
	next.Requested = r
	next.LastChange = t
	sendRequest = !almostEqual(p.Requested, r)

	achieved := minFlow(r, avail)
	sendAchieved = !almostEqual(p.Achieved, achieved)
	next.Achieved = achieved
	return next, sendRequest, sendAchieved
}

// Bounded reports whether 0 <= Achieved <= Requested within Tolerance
// (spec §8 property 3).
func (p Port) Bounded() bool {
	return p.Achieved >= -Tolerance && lessOrEqual(p.Achieved, p.Requested)
}
