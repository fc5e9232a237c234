package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"agora/internal/debate"
)

var listFlags struct {
	status string
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your debates",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listFlags.status, "status", "", "Filter by status (draft, pending, in_progress, completed, failed)")
}

func runList(cmd *cobra.Command, _ []string) error {
	svc, closeStore, err := openService()
	if err != nil {
		return err
	}
	defer closeStore()

	debates, err := svc.List(callerID(), debate.Status(listFlags.status))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(debates) == 0 {
		fmt.Fprintln(out, "No debates. Create one with 'agora create \"<question>\"'.")
		return nil
	}
	for _, d := range debates {
		status := string(d.Status)
		if d.Paused {
			status += " (paused)"
		}
		question := d.Question
		if len(question) > 60 {
			question = question[:57] + "..."
		}
		fmt.Fprintf(out, "%s  %-20s  %d/%d rounds  %s\n",
			d.ID, status, len(d.Rounds), d.MaxRounds, question)
	}
	return nil
}
