package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pauseCmd = &cobra.Command{
	Use:   "pause <debate-id>",
	Short: "Pause a debate at the next round boundary",
	Long: `Pause sets the pause flag on an in-progress debate. The in-flight round
always finishes and is sealed; the loop stops before the next round.`,
	Args: cobra.ExactArgs(1),
	RunE: runPause,
}

func runPause(cmd *cobra.Command, args []string) error {
	svc, closeStore, err := openService()
	if err != nil {
		return err
	}
	defer closeStore()

	if err := svc.Pause(args[0], callerID()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Pause requested. The in-flight round will finish first.\n")
	return nil
}
