package scenario

import "github.com/rfielding/flowsim/flow"

// AvailabilityStat summarizes one component's on/off schedule over a
// scenario run (spec §6, §9 / C9).
type AvailabilityStat struct {
	UptimeS      flow.RealTime
	DowntimeS    flow.RealTime
	MaxDowntimeS flow.RealTime
}

// Stats is the C9 reduction of a Results trace: totals by role, energy
// balance, per-component availability, and load-not-served (spec §6, §8
// property 9).
type Stats struct {
	EnergyKJByRole     map[flow.PortRole]float64
	ComponentEnergyKJ  map[string]float64 // per component sub-port tag
	Availability       map[string]AvailabilityStat
	EnergyBalanceKJ    float64 // source - (load+storage+waste), should be ~0
	LoadNotServedKJ    float64
}

// integrateEnergyKJ applies the right-continuous piecewise-constant rule
// of spec §3 (energy = rate * seconds) across a Datum series up to
// endTime, summing Achieved * dt for each interval.
func integrateEnergyKJ(series []Datum, endTime flow.RealTime) float64 {
	var total float64
	for i, d := range series {
		var next flow.RealTime
		if i+1 < len(series) {
			next = series[i+1].TimeS
		} else {
			next = endTime
		}
		if next <= d.TimeS {
			continue
		}
		total += float64(d.Achieved) * float64(next-d.TimeS)
	}
	return total
}

// ComputeStats reduces a Results' recorded series into Stats. available
// is the per-component availability data accumulated by the runner while
// driving OnOffSwitch models (nil if the scenario had no schedules).
func ComputeStats(res *Results, available map[string]AvailabilityStat) Stats {
	st := Stats{
		EnergyKJByRole:    make(map[flow.PortRole]float64),
		ComponentEnergyKJ: make(map[string]float64),
		Availability:      available,
	}
	if st.Availability == nil {
		st.Availability = make(map[string]AvailabilityStat)
	}

	for tag, series := range res.Results {
		role := res.PortRoles[tag]
		energy := integrateEnergyKJ(series, res.DurationS)
		st.ComponentEnergyKJ[tag] = energy
		st.EnergyKJByRole[role] += energy
	}

	source := st.EnergyKJByRole[flow.RoleSourceOutflow]
	load := st.EnergyKJByRole[flow.RoleLoadInflow]
	storage := st.EnergyKJByRole[flow.RoleStorageInflow] - st.EnergyKJByRole[flow.RoleStorageOutflow]
	waste := st.EnergyKJByRole[flow.RoleWasteInflow]
	st.EnergyBalanceKJ = source - (load + storage + waste)

	for tag, series := range res.Results {
		if res.PortRoles[tag] != flow.RoleLoadInflow {
			continue
		}
		for i, d := range series {
			var next flow.RealTime
			if i+1 < len(series) {
				next = series[i+1].TimeS
			} else {
				next = res.DurationS
			}
			if next <= d.TimeS {
				continue
			}
			shortfall := d.Requested - d.Achieved
			if shortfall > flow.Tolerance {
				st.LoadNotServedKJ += float64(shortfall) * float64(next-d.TimeS)
			}
		}
	}
	return st
}
