package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var contextCmd = &cobra.Command{
	Use:   "context <debate-id> <text>",
	Short: "Add context to an in-progress debate",
	Long: `Context appends additional context to an in-progress debate. It reaches
the experts with the next round's prompt; the current round is unaffected.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runContext,
}

func runContext(cmd *cobra.Command, args []string) error {
	svc, closeStore, err := openService()
	if err != nil {
		return err
	}
	defer closeStore()

	text := strings.Join(args[1:], " ")
	if err := svc.AddContext(args[0], callerID(), text); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Context added. It takes effect with the next round.\n")
	return nil
}
