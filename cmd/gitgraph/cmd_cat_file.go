package main

import (
	"fmt"

	"github.com/odvcencio/gitgraph/pkg/object"
	"github.com/spf13/cobra"
)

func newCatFileCmd(opts *rootOptions) *cobra.Command {
	var showType bool
	var showSize bool
	var pretty bool

	cmd := &cobra.Command{
		Use:   "cat-file (-t | -s | -p) <object>",
		Short: "Print an object's type, size or content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selected := 0
			for _, on := range []bool{showType, showSize, pretty} {
				if on {
					selected++
				}
			}
			if selected != 1 {
				return fmt.Errorf("cat-file: exactly one of -t, -s or -p is required")
			}

			r, err := opts.openRepo(cmd)
			if err != nil {
				return err
			}
			h, err := r.ResolveRevision(args[0])
			if err != nil {
				return err
			}
			objType, data, err := r.Store.Read(h)
			if err != nil {
				return fmt.Errorf("cat-file: %w", err)
			}

			out := cmd.OutOrStdout()
			switch {
			case showType:
				fmt.Fprintln(out, objType)
			case showSize:
				fmt.Fprintln(out, len(data))
			case objType == object.TypeTree:
				t, err := object.UnmarshalTree(data)
				if err != nil {
					return fmt.Errorf("cat-file: %w", err)
				}
				printTree(out, t)
			default:
				out.Write(data)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showType, "type", "t", false, "show the object type")
	cmd.Flags().BoolVarP(&showSize, "size", "s", false, "show the content size in bytes")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "pretty-print the content")
	return cmd
}
