package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"campaigner/internal/cascade"
)

var graphFlags struct {
	output string
}

var graphCmd = &cobra.Command{
	Use:   "graph <plan-file|preset>",
	Short: "Render the signal cascade of a plan as a Mermaid flowchart",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraph,
}

func init() {
	graphCmd.Flags().StringVarP(&graphFlags.output, "output", "o", "", "Write the diagram to a file instead of stdout")
}

func runGraph(cmd *cobra.Command, args []string) error {
	res, err := buildOne(args[0])
	if err != nil {
		return err
	}
	diagram := cascade.Render(res.Graph)
	if graphFlags.output == "" {
		fmt.Fprint(cmd.OutOrStdout(), diagram)
		return nil
	}
	if err := os.WriteFile(graphFlags.output, []byte(diagram), 0o644); err != nil {
		return fmt.Errorf("write diagram: %w", err)
	}
	return nil
}
