package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rfielding/flowsim/config"
	"github.com/rfielding/flowsim/diagram"
	"github.com/rfielding/flowsim/scenario"
)

var graphScenario string

var graphCmd = &cobra.Command{
	Use:   "graph <config.toml>",
	Short: "Render a scenario's network as a Graphviz DOT digraph",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraph,
}

func init() {
	graphCmd.Flags().StringVar(&graphScenario, "scenario", "", "scenario id to render (default: first found)")
}

func runGraph(cmd *cobra.Command, args []string) error {
	input, err := config.Load(args[0])
	if err != nil {
		return err
	}

	sc, err := pickScenario(input, graphScenario)
	if err != nil {
		return err
	}

	net, err := scenario.BuildNetwork(input, sc)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, diagram.Graphviz(net))
	return nil
}

func pickScenario(input *scenario.Input, id string) (scenario.Scenario, error) {
	if id != "" {
		sc, ok := input.Scenarios[id]
		if !ok {
			return scenario.Scenario{}, fmt.Errorf("unknown scenario %q", id)
		}
		return sc, nil
	}
	for _, sc := range input.Scenarios {
		return sc, nil
	}
	return scenario.Scenario{}, fmt.Errorf("campaign has no scenarios")
}
