package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"agora/internal/service"
)

var configureFlags struct {
	expertIDs   []string
	expertCount int
	rounds      int
	category    string
}

var configureCmd = &cobra.Command{
	Use:   "configure <debate-id>",
	Short: "Assign experts and the round limit to a draft debate",
	Long: `Configure assigns the expert panel and the round limit, moving the debate
from draft to pending. The assignment is immutable afterwards.

Usage:
  agora configure <debate-id> --experts 3 --rounds 5 --category strategy
  agora configure <debate-id> --expert skeptic --expert visionary`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigure,
}

func init() {
	f := configureCmd.Flags()
	f.StringArrayVar(&configureFlags.expertIDs, "expert", nil, "Explicit expert ID (repeatable, wins over --experts)")
	f.IntVar(&configureFlags.expertCount, "experts", 3, "Number of experts to auto-select")
	f.IntVar(&configureFlags.rounds, "rounds", 3, "Round limit")
	f.StringVar(&configureFlags.category, "category", "", "Debate category for specialization matching")
}

func runConfigure(cmd *cobra.Command, args []string) error {
	svc, closeStore, err := openService()
	if err != nil {
		return err
	}
	defer closeStore()

	d, err := svc.Configure(args[0], callerID(), service.ConfigureRequest{
		ExpertIDs:   configureFlags.expertIDs,
		ExpertCount: configureFlags.expertCount,
		MaxRounds:   configureFlags.rounds,
		Category:    configureFlags.category,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Status:  %s\n", d.Status)
	fmt.Fprintf(out, "Rounds:  up to %d\n", d.MaxRounds)
	fmt.Fprintf(out, "Experts:\n")
	for _, e := range d.Experts {
		fmt.Fprintf(out, "  %-12s %s\n", e.ID, e.Name)
	}
	return nil
}
