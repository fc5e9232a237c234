package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"agora/internal/arggraph"
)

var graphFlags struct {
	asJSON bool
}

var graphCmd = &cobra.Command{
	Use:   "graph <debate-id>",
	Short: "Show the argument graph extracted from a debate",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraph,
}

func init() {
	graphCmd.Flags().BoolVar(&graphFlags.asJSON, "json", false, "Dump the full graph as JSON")
}

func runGraph(cmd *cobra.Command, args []string) error {
	svc, closeStore, err := openService()
	if err != nil {
		return err
	}
	defer closeStore()

	g, err := svc.Graph(args[0], callerID())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if graphFlags.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(g)
	}

	fmt.Fprintf(out, "Nodes: %d\n", len(g.Nodes))
	byType := g.NodesByType()
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(out, "  %-12s %d\n", t, byType[arggraph.NodeType(t)])
	}

	fmt.Fprintf(out, "Edges: %d\n", len(g.Edges))
	for _, e := range g.Edges {
		fmt.Fprintf(out, "  %s -%s-> %s (%.2f)\n", e.From, e.Type, e.To, e.Strength)
	}
	return nil
}
