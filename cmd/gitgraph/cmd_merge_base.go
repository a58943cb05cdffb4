package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMergeBaseCmd(opts *rootOptions) *cobra.Command {
	var isAncestor bool

	cmd := &cobra.Command{
		Use:   "merge-base <revision> <revision>",
		Short: "Print the best common ancestor of two commits",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.openRepo(cmd)
			if err != nil {
				return err
			}
			a, err := r.ResolveRevision(args[0])
			if err != nil {
				return err
			}
			b, err := r.ResolveRevision(args[1])
			if err != nil {
				return err
			}

			if isAncestor {
				ok, err := r.IsAncestor(a, b)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%s is not an ancestor of %s", args[0], args[1])
				}
				return nil
			}

			base, found, err := r.MergeBase(a, b)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%s and %s have no common ancestor", args[0], args[1])
			}
			fmt.Fprintln(cmd.OutOrStdout(), base)
			return nil
		},
	}
	cmd.Flags().BoolVar(&isAncestor, "is-ancestor", false, "succeed only if the first commit is an ancestor of the second")
	return cmd
}
