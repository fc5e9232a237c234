package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var creditsCmd = &cobra.Command{
	Use:   "credits <debate-id>",
	Short: "Show a debate's provider cost and billable credits",
	Args:  cobra.ExactArgs(1),
	RunE:  runCredits,
}

func runCredits(cmd *cobra.Command, args []string) error {
	svc, closeStore, err := openService()
	if err != nil {
		return err
	}
	defer closeStore()

	usage, err := svc.Credits(args[0], callerID())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Provider cost:  $%.4f\n", usage.TotalCostUSD)
	fmt.Fprintf(out, "Margin:         x%.2f\n", usage.Pricing.MarginMultiplier)
	fmt.Fprintf(out, "Credit price:   $%.3f\n", usage.Pricing.CreditUnitPrice)
	fmt.Fprintf(out, "Credits:        %d\n", usage.Credits)
	return nil
}
