package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"agora/internal/readiness"
)

var refineFlags struct {
	confirm []string
	answers []string
	context string
}

var refineCmd = &cobra.Command{
	Use:   "refine <input>",
	Short: "Fold answers into a decision input and re-score it",
	Long: `Refine appends confirmed assumptions, question answers, and extra context
to the original input as annotations, then re-scores the enhanced text.
Use the printed enhanced input with 'agora create'.

Usage:
  agora refine "Should we expand into Europe?" \
    --confirm assume-timeline \
    --answer "ask-goal=20% revenue growth" \
    --context "budget is $2M"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRefine,
}

func init() {
	f := refineCmd.Flags()
	f.StringArrayVar(&refineFlags.confirm, "confirm", nil, "Assumption ID to confirm (repeatable)")
	f.StringArrayVar(&refineFlags.answers, "answer", nil, "Question answer as id=text (repeatable)")
	f.StringVar(&refineFlags.context, "context", "", "Additional free-form context")
}

func runRefine(cmd *cobra.Command, args []string) error {
	input := strings.Join(args, " ")

	confirms := make(map[string]bool, len(refineFlags.confirm))
	for _, id := range refineFlags.confirm {
		confirms[id] = true
	}
	answers := make(map[string][]string, len(refineFlags.answers))
	for _, pair := range refineFlags.answers {
		id, text, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("answer %q must be id=text", pair)
		}
		answers[id] = append(answers[id], text)
	}

	enhanced, assessment, err := readiness.Refine(input, confirms, answers, refineFlags.context)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Enhanced input:\n  %s\n\n", enhanced)
	printAssessment(out, assessment)
	return nil
}
