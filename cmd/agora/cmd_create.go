package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"agora/internal/debate"
)

var createFlags struct {
	background  string
	constraints []string
}

var createCmd = &cobra.Command{
	Use:   "create <question>",
	Short: "Create a draft debate",
	Long: `Create opens a draft debate owned by the caller. Configure it with
'agora configure' before starting.

Usage:
  agora create "Should we expand into Europe?" \
    --background "Revenue has been flat for two quarters." \
    --constraint "Budget is fixed for the quarter."`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCreate,
}

func init() {
	f := createCmd.Flags()
	f.StringVar(&createFlags.background, "background", "", "Background shared with every expert")
	f.StringArrayVar(&createFlags.constraints, "constraint", nil, "Hard constraint (repeatable)")
}

func runCreate(cmd *cobra.Command, args []string) error {
	svc, closeStore, err := openService()
	if err != nil {
		return err
	}
	defer closeStore()

	d, err := svc.Create(callerID(), strings.Join(args, " "), debate.Context{
		Background:  createFlags.background,
		Constraints: createFlags.constraints,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Debate:  %s\n", d.ID)
	fmt.Fprintf(out, "Status:  %s\n", d.Status)
	fmt.Fprintf(out, "Next:    agora configure %s --experts 3 --rounds 3\n", d.ID)
	return nil
}
