package main

import (
	"errors"
	"fmt"

	"github.com/odvcencio/gitgraph/pkg/object"
	"github.com/spf13/cobra"
)

func newObjectsCmd(opts *rootOptions) *cobra.Command {
	var unreachable bool
	var long bool
	var verify bool

	cmd := &cobra.Command{
		Use:   "objects",
		Short: "List loose objects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.openRepo(cmd)
			if err != nil {
				return err
			}
			if verify {
				return runVerify(cmd, r.Store)
			}
			ids, err := r.Store.List()
			if err != nil {
				return err
			}

			if unreachable {
				tips, err := r.Tips()
				if err != nil {
					return err
				}
				reachable, err := r.Store.ReachableSet(tips)
				if err != nil {
					return err
				}
				kept := ids[:0]
				for _, h := range ids {
					if _, ok := reachable[h]; !ok {
						kept = append(kept, h)
					}
				}
				ids = kept
			}

			out := cmd.OutOrStdout()
			for _, h := range ids {
				if !long {
					fmt.Fprintln(out, h)
					continue
				}
				objType, data, err := r.Store.Read(h)
				if err != nil {
					fmt.Fprintf(out, "%s %s\n", h, describeReadError(err))
					continue
				}
				fmt.Fprintf(out, "%s %s %d\n", h, objType, len(data))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&unreachable, "unreachable", false, "only objects no branch or HEAD can reach")
	cmd.Flags().BoolVarP(&long, "long", "l", false, "also show type and size")
	cmd.Flags().BoolVar(&verify, "verify", false, "check every object hashes to its id and decodes")
	cmd.MarkFlagsMutuallyExclusive("verify", "unreachable")
	return cmd
}

func describeReadError(err error) string {
	if errors.Is(err, object.ErrCorruptObject) {
		return "corrupt"
	}
	return "unreadable"
}

func runVerify(cmd *cobra.Command, store *object.Store) error {
	report, err := store.Verify()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, h := range report.CorruptIDs() {
		fmt.Fprintf(out, "corrupt %s: %s\n", h, report.Corrupt[h])
	}
	fmt.Fprintf(out, "checked %d loose, %d packed in %d packs\n", report.LooseObjects, report.PackObjects, report.PackFiles)
	if n := len(report.Corrupt); n > 0 {
		return fmt.Errorf("%d corrupt objects", n)
	}
	return nil
}
