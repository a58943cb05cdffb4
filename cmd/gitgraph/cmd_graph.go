package main

import (
	"fmt"

	"github.com/odvcencio/gitgraph/pkg/snapshot"
	"github.com/spf13/cobra"
)

func newGraphCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the commit graph as nodes and child-to-parent edges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.openRepo(cmd)
			if err != nil {
				return err
			}
			g, order, err := r.History()
			if err != nil {
				return err
			}
			head, _, err := r.ResolveHead()
			if err != nil {
				return err
			}
			branches, err := r.Branches()
			if err != nil {
				return err
			}
			snap := snapshot.FromGraph(g, order, head, branches)

			out := cmd.OutOrStdout()
			if asJSON {
				return snapshot.Write(out, snap, false)
			}
			for _, n := range snap.Nodes {
				fmt.Fprintf(out, "node %s %s\n", n.Hash, n.Label)
			}
			for _, e := range snap.Edges {
				fmt.Fprintf(out, "edge %s %s\n", e.Source, e.Target)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of text")
	return cmd
}
