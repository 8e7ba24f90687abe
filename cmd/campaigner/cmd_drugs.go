package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"campaigner/internal/display"
	"campaigner/internal/drugcampaign"
	"campaigner/internal/format"
)

var drugsCmd = &cobra.Command{
	Use:   "drugs",
	Short: "List the drug codes and the drugs each one dispenses",
	Args:  cobra.NoArgs,
	RunE:  runDrugs,
}

func runDrugs(cmd *cobra.Command, _ []string) error {
	codes := drugcampaign.DrugCodes()
	items := make([][2]string, 0, len(codes))
	for _, code := range codes {
		names, err := drugcampaign.DrugsFor(code)
		if err != nil {
			return err
		}
		items = append(items, [2]string{display.DrugCodeWithCode(code), strings.Join(names, " + ")})
	}
	fmt.Fprintln(cmd.OutOrStdout(), format.Listing([2]string{"Regimen", "Drugs"}, items, tableMode()))
	return nil
}
