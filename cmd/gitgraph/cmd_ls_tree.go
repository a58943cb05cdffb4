package main

import (
	"fmt"

	"github.com/odvcencio/gitgraph/pkg/object"
	"github.com/spf13/cobra"
)

func newLsTreeCmd(opts *rootOptions) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "ls-tree [-r] <revision>",
		Short: "List the entries of a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.openRepo(cmd)
			if err != nil {
				return err
			}
			h, err := r.ResolveRevision(args[0])
			if err != nil {
				return err
			}
			obj, err := r.Store.Get(h)
			if err != nil {
				return fmt.Errorf("ls-tree: %w", err)
			}
			tree := h
			switch o := obj.(type) {
			case *object.Commit:
				tree = o.Tree
			case *object.Tree:
			default:
				return fmt.Errorf("ls-tree: %s is a %s, not a tree", args[0], obj.Type())
			}

			out := cmd.OutOrStdout()
			if !recursive {
				t, err := r.Store.ReadTree(tree)
				if err != nil {
					return fmt.Errorf("ls-tree: %w", err)
				}
				printTree(out, t)
				return nil
			}
			files, err := r.FlattenTree(tree)
			if err != nil {
				return fmt.Errorf("ls-tree: %w", err)
			}
			for _, f := range files {
				printTreeLine(out, object.TreeEntry{Mode: f.Mode, Hash: f.Hash}, f.Path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "recurse into subtrees")
	return cmd
}
