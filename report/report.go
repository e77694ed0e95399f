// Package report writes scenario.Results to CSV, matching the event and
// stats table formats spec §6 describes.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/rfielding/flowsim/scenario"
)

// WriteEventCSV writes one row per (tag, recorded instant), columns
// time_s, component, requested, achieved. Row order is deterministic:
// tags sorted lexically, then by recorded time within each tag.
func WriteEventCSV(w io.Writer, res *scenario.Results) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"time_s", "component", "requested", "achieved"}); err != nil {
		return err
	}

	tags := make([]string, 0, len(res.Results))
	for tag := range res.Results {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	for _, tag := range tags {
		for _, d := range res.Results[tag] {
			row := []string{
				fmt.Sprintf("%d", int64(d.TimeS)),
				tag,
				fmt.Sprintf("%.9g", float64(d.Requested)),
				fmt.Sprintf("%.9g", float64(d.Achieved)),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	return cw.Error()
}

// WriteStatsCSV writes the per-component energy and availability summary,
// with a trailing TOTAL row and an ENERGY BALANCE row (spec §6).
func WriteStatsCSV(w io.Writer, res *scenario.Results) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"component", "energy_kj", "uptime_s", "downtime_s", "max_downtime_s"}); err != nil {
		return err
	}

	tags := make([]string, 0, len(res.Stats.ComponentEnergyKJ))
	for tag := range res.Stats.ComponentEnergyKJ {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	var total float64
	for _, tag := range tags {
		energy := res.Stats.ComponentEnergyKJ[tag]
		total += energy
		a := res.Stats.Availability[tag]
		row := []string{
			tag,
			fmt.Sprintf("%.6f", energy),
			fmt.Sprintf("%d", int64(a.UptimeS)),
			fmt.Sprintf("%d", int64(a.DowntimeS)),
			fmt.Sprintf("%d", int64(a.MaxDowntimeS)),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	if err := cw.Write([]string{"TOTAL", fmt.Sprintf("%.6f", total), "", "", ""}); err != nil {
		return err
	}
	if err := cw.Write([]string{"ENERGY BALANCE", fmt.Sprintf("%.6f", res.Stats.EnergyBalanceKJ), "", "", ""}); err != nil {
		return err
	}
	if err := cw.Write([]string{"LOAD NOT SERVED", fmt.Sprintf("%.6f", res.Stats.LoadNotServedKJ), "", "", ""}); err != nil {
		return err
	}
	return cw.Error()
}
