package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/odvcencio/gitgraph/pkg/object"
	"github.com/spf13/cobra"
)

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [revision]",
		Short: "Show a commit, tree or blob",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.openRepo(cmd)
			if err != nil {
				return err
			}

			target := "HEAD"
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				target = strings.TrimSpace(args[0])
			}
			h, err := r.ResolveRevision(target)
			if err != nil {
				return err
			}
			obj, err := r.Store.Get(h)
			if err != nil {
				return fmt.Errorf("show: %w", err)
			}

			out := cmd.OutOrStdout()
			switch o := obj.(type) {
			case *object.Commit:
				printCommit(out, h, o, "")
				fmt.Fprintf(out, "tree %s\n", o.Tree)
			case *object.Tree:
				fmt.Fprintf(out, "tree %s\n\n", h)
				printTree(out, o)
			case *object.Blob:
				printBlob(out, o)
			}
			return nil
		},
	}
}

// printTree lists entries in ls-tree form: "mode type id<TAB>name".
func printTree(out io.Writer, t *object.Tree) {
	for _, e := range t.Entries {
		printTreeLine(out, e, e.Name)
	}
}

func printTreeLine(out io.Writer, e object.TreeEntry, name string) {
	kind := object.TypeBlob
	switch {
	case e.IsDir():
		kind = object.TypeTree
	case e.IsGitlink():
		kind = object.TypeCommit
	}
	mode := e.Mode
	if len(mode) < 6 {
		mode = strings.Repeat("0", 6-len(mode)) + mode
	}
	fmt.Fprintf(out, "%s %s %s\t%s\n", mode, kind, e.Hash, name)
}

func printBlob(out io.Writer, b *object.Blob) {
	if !utf8.Valid(b.Data) {
		fmt.Fprintln(out, "<Binary Data>")
		return
	}
	out.Write(b.Data)
}
