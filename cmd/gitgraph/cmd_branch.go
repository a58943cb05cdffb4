package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBranchCmd(opts *rootOptions) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "branch",
		Short: "List branches, marking the one HEAD points at",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.openRepo(cmd)
			if err != nil {
				return err
			}
			names, err := r.ListBranches()
			if err != nil {
				return err
			}
			current, err := r.CurrentBranch()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range names {
				marker := "  "
				if name == current {
					marker = "* "
				}
				if !verbose {
					fmt.Fprintf(out, "%s%s\n", marker, name)
					continue
				}
				h, ok, err := r.ResolveSymbolic("refs/heads/" + name)
				if err != nil {
					return err
				}
				short := "(empty)"
				if ok {
					short = h.Short()
				}
				fmt.Fprintf(out, "%s%s %s\n", marker, name, short)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&verbose, "ids", false, "show the abbreviated id each branch points at")
	return cmd
}
