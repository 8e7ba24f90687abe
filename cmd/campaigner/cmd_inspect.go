package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"campaigner/internal/cascade"
	"campaigner/internal/format"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <plan-file|preset>",
	Short: "Show the events of a plan as a table",
	Long: `Build a plan in memory and list its events: start day, trigger or
schedule window, coverage, the signals each event listens on and emits, and
its interventions.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	res, err := buildOne(args[0])
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s (seed %d)\n", res.Name, res.Seed)
	fmt.Fprintln(w, format.Cascade(cascade.Rows(res.Graph), tableMode()))
	fmt.Fprintln(w, format.Descriptors(res.Summaries, tableMode()))
	return nil
}
