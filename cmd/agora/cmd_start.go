package main

import (
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start <debate-id>",
	Short: "Run the debate round loop to completion",
	Long: `Start runs the round loop: each round, all assigned experts respond
concurrently, the moderator may intervene, and the round is sealed. The
loop stops on consensus, round exhaustion, or a pause.

Experts are simulated personas; replies are generated by the built-in
deterministic agent.`,
	Args: cobra.ExactArgs(1),
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	svc, closeStore, err := openService()
	if err != nil {
		return err
	}
	defer closeStore()

	if err := svc.Start(cmd.Context(), args[0], callerID()); err != nil {
		return err
	}

	d, err := svc.Get(args[0], callerID())
	if err != nil {
		return err
	}
	printDebate(cmd.OutOrStdout(), d)
	return nil
}
