package main

import (
	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <debate-id>",
	Short: "Resume a paused debate from the next unplayed round",
	Args:  cobra.ExactArgs(1),
	RunE:  runResume,
}

func runResume(cmd *cobra.Command, args []string) error {
	svc, closeStore, err := openService()
	if err != nil {
		return err
	}
	defer closeStore()

	if err := svc.Resume(cmd.Context(), args[0], callerID()); err != nil {
		return err
	}

	d, err := svc.Get(args[0], callerID())
	if err != nil {
		return err
	}
	printDebate(cmd.OutOrStdout(), d)
	return nil
}
