package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/odvcencio/gitgraph/pkg/object"
	"github.com/spf13/cobra"
)

func newCommitTreeCmd(opts *rootOptions) *cobra.Command {
	var parents []string
	var message string
	var author string
	var committer string

	cmd := &cobra.Command{
		Use:   "commit-tree <tree> -m <message> --author <ident>",
		Short: "Write a commit object for an existing tree without moving any ref",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.openRepo(cmd)
			if err != nil {
				return err
			}

			tree, err := r.ResolveRevision(args[0])
			if err != nil {
				return err
			}
			if _, err := r.Store.ReadTree(tree); err != nil {
				return fmt.Errorf("commit-tree: %w", err)
			}

			c := &object.Commit{Tree: tree, Message: message}
			for _, p := range parents {
				h, err := r.ResolveRevision(p)
				if err != nil {
					return err
				}
				if _, err := r.Store.ReadCommit(h); err != nil {
					return fmt.Errorf("commit-tree: parent: %w", err)
				}
				c.Parents = append(c.Parents, h)
			}

			now := time.Now()
			if c.Author, err = identity(author, now); err != nil {
				return fmt.Errorf("commit-tree: --author: %w", err)
			}
			if strings.TrimSpace(committer) == "" {
				c.Committer = c.Author
			} else if c.Committer, err = identity(committer, now); err != nil {
				return fmt.Errorf("commit-tree: --committer: %w", err)
			}
			if c.Message != "" && !strings.HasSuffix(c.Message, "\n") {
				c.Message += "\n"
			}

			h, err := r.Store.Put(c)
			if err != nil {
				return fmt.Errorf("commit-tree: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&parents, "parent", "p", nil, "parent commit (repeatable, order kept)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&author, "author", "", `author as "Name <email>" or "Name <email> unix-seconds +hhmm"`)
	cmd.Flags().StringVar(&committer, "committer", "", "committer (default: author)")
	_ = cmd.MarkFlagRequired("author")
	return cmd
}

// identity accepts a full signature line or "Name <email>", stamping the
// latter with now.
func identity(raw string, now time.Time) (string, error) {
	raw = strings.TrimSpace(raw)
	if _, ok := object.ParseSignature(raw); ok {
		return raw, nil
	}
	lt := strings.IndexByte(raw, '<')
	if lt <= 0 || !strings.HasSuffix(raw, ">") || strings.ContainsAny(raw, "\n\x00") {
		return "", fmt.Errorf("invalid identity %q", raw)
	}
	sig := object.Signature{
		Name:  strings.TrimSpace(raw[:lt]),
		Email: raw[lt+1 : len(raw)-1],
		When:  now,
	}
	return sig.String(), nil
}
