package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"agora/internal/readiness"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <input>",
	Short: "Score how ready a decision input is for debate",
	Long: `Analyze scores the input against the dimension model for its inferred
debate type and reports missing dimensions as assumptions and clarifying
questions. The input itself is never stored.

Usage:
  agora analyze "Should we expand into Europe? Budget is $2M, decision by March."`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	input := strings.Join(args, " ")
	assessment, err := readiness.Analyze(input, "")
	if err != nil {
		return err
	}
	printAssessment(cmd.OutOrStdout(), assessment)
	return nil
}

func printAssessment(out io.Writer, a *readiness.Assessment) {
	fmt.Fprintf(out, "Type:    %s\n", a.DebateType)
	fmt.Fprintf(out, "Score:   %d (%s)\n", a.OverallScore, a.Level)
	fmt.Fprintf(out, "Action:  %s\n", a.RecommendedAction)

	dims := make([]string, 0, len(a.DimensionScores))
	for d := range a.DimensionScores {
		dims = append(dims, d)
	}
	sort.Strings(dims)
	fmt.Fprintf(out, "Dimensions:\n")
	for _, d := range dims {
		fmt.Fprintf(out, "  %-14s %d\n", d, a.DimensionScores[d])
	}

	if len(a.Assumptions) > 0 {
		fmt.Fprintf(out, "Assumptions:\n")
		for _, as := range a.Assumptions {
			fmt.Fprintf(out, "  [%s] %s (confidence %.2f)\n", as.ID, as.Text, as.Confidence)
		}
	}
	if len(a.Questions) > 0 {
		fmt.Fprintf(out, "Questions:\n")
		for _, q := range a.Questions {
			fmt.Fprintf(out, "  [%s] (%s) %s\n", q.ID, q.Priority, q.Text)
			if len(q.Options) > 0 {
				fmt.Fprintf(out, "      options: %s\n", strings.Join(q.Options, " | "))
			}
		}
	}
}
