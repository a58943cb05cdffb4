package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTagCmd(opts *rootOptions) *cobra.Command {
	var ids bool

	cmd := &cobra.Command{
		Use:   "tag",
		Short: "List tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.openRepo(cmd)
			if err != nil {
				return err
			}
			tags, err := r.Tags()
			if err != nil {
				return err
			}
			names, err := r.ListTags()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range names {
				if ids {
					fmt.Fprintf(out, "%s %s\n", name, tags[name].Short())
					continue
				}
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&ids, "ids", false, "show the abbreviated id each tag points at")
	return cmd
}
