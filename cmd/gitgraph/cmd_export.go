package main

import (
	"fmt"
	"os"

	"github.com/odvcencio/gitgraph/pkg/snapshot"
	"github.com/spf13/cobra"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var output string
	var compressed bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON snapshot of the commit graph",
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

			if output == "" || output == "-" {
				return snapshot.Write(cmd.OutOrStdout(), snap, compressed)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if err := snapshot.Write(f, snap, compressed); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d commits to %s\n", len(snap.Nodes), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file (- for stdout)")
	cmd.Flags().BoolVar(&compressed, "zstd", false, "wrap the JSON in a zstd frame")
	return cmd
}
