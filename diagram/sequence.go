package diagram

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rfielding/flowsim/scenario"
)

// Sequence renders a Mermaid gantt-style timeline of a scenario
// instance's component on/off transitions, reading the "<id>-switch"
// availability the runner exposes via Stats. Components never gated by
// a schedule don't appear.
func Sequence(res *scenario.Results) string {
	var sb strings.Builder
	sb.WriteString("gantt\n")
	sb.WriteString("  dateFormat X\n")
	sb.WriteString("  axisFormat %s\n")
	sb.WriteString("  title Component availability\n")

	ids := make([]string, 0, len(res.Stats.Availability))
	for id := range res.Stats.Availability {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		a := res.Stats.Availability[id]
		sb.WriteString(fmt.Sprintf("  section %s\n", id))
		sb.WriteString(fmt.Sprintf("  up : 0, %ds\n", int64(a.UptimeS)))
		if a.DowntimeS > 0 {
			sb.WriteString(fmt.Sprintf("  down : %ds\n", int64(a.DowntimeS)))
		}
	}
	return sb.String()
}
