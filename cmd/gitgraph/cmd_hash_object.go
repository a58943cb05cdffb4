package main

import (
	"fmt"
	"io"
	"os"

	"github.com/odvcencio/gitgraph/pkg/object"
	"github.com/spf13/cobra"
)

func newHashObjectCmd(opts *rootOptions) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "hash-object [-w] <file|->",
		Short: "Compute a blob id for a file, optionally storing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("hash-object: %w", err)
			}

			h := object.HashObject(object.TypeBlob, data)
			if write {
				r, err := opts.openRepo(cmd)
				if err != nil {
					return err
				}
				if h, err = r.Store.Write(object.TypeBlob, data); err != nil {
					return fmt.Errorf("hash-object: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the blob into the object store")
	return cmd
}
