package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"campaigner/internal/format"
	"campaigner/internal/presets"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the shipped campaign plans",
	Args:  cobra.NoArgs,
	RunE:  runPresets,
}

var presetsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print the YAML of a shipped plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runPresetsShow,
}

func init() {
	presetsCmd.AddCommand(presetsShowCmd)
}

func runPresets(cmd *cobra.Command, _ []string) error {
	list, err := presets.List()
	if err != nil {
		return err
	}
	items := make([][2]string, len(list))
	for i, p := range list {
		items[i] = [2]string{p.Name, p.Description}
	}
	fmt.Fprintln(cmd.OutOrStdout(), format.Listing([2]string{"Preset", "Description"}, items, tableMode()))
	return nil
}

func runPresetsShow(cmd *cobra.Command, args []string) error {
	data, err := presets.Raw(args[0])
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
