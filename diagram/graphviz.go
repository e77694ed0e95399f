// Package diagram renders a flow.Network or scenario.Results as text
// diagrams: Graphviz DOT for network topology, Mermaid for a flow
// timeline.
package diagram

import (
	"fmt"
	"strings"

	"github.com/rfielding/flowsim/flow"
)

// Graphviz generates a DOT digraph of net's couplings, one node per
// model and one edge per coupling, annotated with the stream name.
func Graphviz(net *flow.Network) string {
	var sb strings.Builder

	sb.WriteString("digraph FlowNetwork {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box];\n\n")

	for _, m := range net.Models() {
		sb.WriteString(fmt.Sprintf("  \"%s\";\n", m.ID()))
	}
	sb.WriteString("\n")

	for _, c := range net.Couplings() {
		sb.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [label=\"%s\"];\n", c.SrcModel, c.DstModel, c.Stream))
	}

	sb.WriteString("}\n")
	return sb.String()
}

// ComponentOf strips a component sub-port tag's suffix ("<id>-outflow",
// "<id>-inflow(0)", ...) back to the bare component id, for grouping a
// Results trace by component in diagrams and reports.
func ComponentOf(tag string) string {
	if i := strings.LastIndex(tag, "-"); i >= 0 {
		return tag[:i]
	}
	return tag
}
