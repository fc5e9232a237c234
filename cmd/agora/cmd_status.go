package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"agora/internal/debate"
)

var statusFlags struct {
	transcript bool
}

var statusCmd = &cobra.Command{
	Use:   "status <debate-id>",
	Short: "Show a debate's state, consensus, and ranking",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusFlags.transcript, "transcript", false, "Print the full round transcript")
}

func runStatus(cmd *cobra.Command, args []string) error {
	svc, closeStore, err := openService()
	if err != nil {
		return err
	}
	defer closeStore()

	d, err := svc.Get(args[0], callerID())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printDebate(out, d)
	if statusFlags.transcript {
		printTranscript(out, d)
	}
	return nil
}

func printDebate(out io.Writer, d *debate.Debate) {
	fmt.Fprintf(out, "Debate:    %s\n", d.ID)
	fmt.Fprintf(out, "Question:  %s\n", d.Question)
	status := string(d.Status)
	if d.Paused {
		status += " (paused)"
	}
	fmt.Fprintf(out, "Status:    %s\n", status)
	fmt.Fprintf(out, "Rounds:    %d of %d\n", len(d.Rounds), d.MaxRounds)
	fmt.Fprintf(out, "Consensus: %.2f\n", d.ConsensusScore)
	fmt.Fprintf(out, "Cost:      $%.4f\n", d.TotalCostUSD)

	if len(d.FinalRanking) > 0 {
		fmt.Fprintf(out, "Ranking:\n")
		for i, entry := range d.FinalRanking {
			fmt.Fprintf(out, "  %d. %-20s score %.0f  (%d supporters)\n",
				i+1, entry.Option, entry.Score, len(entry.Supporters))
			if entry.Reasoning != "" {
				fmt.Fprintf(out, "     %s\n", entry.Reasoning)
			}
		}
	}
	if d.Status == debate.StatusCompleted {
		q := d.Quality
		fmt.Fprintf(out, "Quality:   overall %.2f (depth %.2f, balance %.2f, originality %.2f)\n",
			q.OverallScore, q.DepthScore, q.BalanceScore, q.OriginalityScore)
	}
}

func printTranscript(out io.Writer, d *debate.Debate) {
	for _, r := range d.Rounds {
		fmt.Fprintf(out, "\n--- Round %d ---\n", r.Number)
		for _, m := range r.Messages {
			if m.Skipped {
				fmt.Fprintf(out, "%s: (no contribution: %s)\n", m.AuthorID, m.SkipReason)
				continue
			}
			fmt.Fprintf(out, "%s: %s\n", m.AuthorID, m.Content)
		}
	}
}
