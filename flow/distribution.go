package flow

// DistributionSystem is the facade the kernel consumes for inter-arrival
// and failure/repair timing (C8). The kernel never samples randomness
// itself beyond asking this interface; concrete distributions live in
// the sibling dist package (spec §1, §6).
type DistributionSystem interface {
	// NextTimeAdvance maps a uniform(0,1) draw u01 to a delay in seconds
	// for the named distribution.
	NextTimeAdvance(distID string, u01 float64) RealTime

	// RandFn returns the next uniform(0,1) draw from the underlying RNG.
	RandFn() float64
}
