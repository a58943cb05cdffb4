package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/odvcencio/gitgraph/pkg/dag"
	"github.com/odvcencio/gitgraph/pkg/object"
	"github.com/odvcencio/gitgraph/pkg/repo"
	"github.com/spf13/cobra"
)

func newLogCmd(opts *rootOptions) *cobra.Command {
	var oneline bool
	var limit int
	var skip int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show every commit reachable from a branch or HEAD, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.openRepo(cmd)
			if err != nil {
				return err
			}
			_, order, err := r.History()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(order) == 0 {
				fmt.Fprintln(out, "no commits yet")
				return nil
			}

			decorations, err := repoDecorations(r)
			if err != nil {
				return err
			}
			for _, n := range repo.Page(order, skip, limit) {
				if oneline {
					printOneline(out, n, decorations[n.Hash])
				} else {
					printCommit(out, n.Hash, n.Commit, decorations[n.Hash])
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "show each commit on a single line")
	cmd.Flags().IntVarP(&limit, "max-count", "n", 0, "maximum number of commits to show (0 = all)")
	cmd.Flags().IntVar(&skip, "skip", 0, "skip this many commits before showing any")
	return cmd
}

func repoDecorations(r *repo.Repo) (map[object.Hash]string, error) {
	head, _, err := r.ResolveHead()
	if err != nil {
		return nil, err
	}
	branches, err := r.Branches()
	if err != nil {
		return nil, err
	}
	current, err := r.CurrentBranch()
	if err != nil {
		return nil, err
	}
	tags, err := r.CommitTags()
	if err != nil {
		return nil, err
	}
	return buildDecorations(head, current, branches, tags), nil
}

// buildDecorations renders git-style ref labels, e.g.
// "(HEAD -> main, dev, tag: v1)".
func buildDecorations(head object.Hash, current string, branches, tags map[string]object.Hash) map[object.Hash]string {
	labels := make(map[object.Hash][]string)
	if head != "" {
		if current != "" && branches[current] == head {
			labels[head] = append(labels[head], "HEAD -> "+current)
		} else {
			labels[head] = append(labels[head], "HEAD")
		}
	}

	names := make([]string, 0, len(branches))
	for name := range branches {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		h := branches[name]
		if name == current && h == head {
			continue
		}
		labels[h] = append(labels[h], name)
	}

	tagNames := make([]string, 0, len(tags))
	for name := range tags {
		tagNames = append(tagNames, name)
	}
	sort.Strings(tagNames)
	for _, name := range tagNames {
		h := tags[name]
		labels[h] = append(labels[h], "tag: "+name)
	}

	out := make(map[object.Hash]string, len(labels))
	for h, l := range labels {
		out[h] = "(" + strings.Join(l, ", ") + ")"
	}
	return out
}

func printOneline(out io.Writer, n *dag.Node, decoration string) {
	subject := ""
	if n.Commit != nil {
		subject = firstLine(n.Commit.Message)
	}
	if decoration != "" {
		fmt.Fprintf(out, "%s %s %s\n", n.Hash.Short(), decoration, subject)
		return
	}
	fmt.Fprintf(out, "%s %s\n", n.Hash.Short(), subject)
}

func printCommit(out io.Writer, h object.Hash, c *object.Commit, decoration string) {
	if decoration != "" {
		fmt.Fprintf(out, "commit %s %s\n", h, decoration)
	} else {
		fmt.Fprintf(out, "commit %s\n", h)
	}
	if c == nil {
		fmt.Fprintln(out)
		return
	}
	if len(c.Parents) > 1 {
		shorts := make([]string, len(c.Parents))
		for i, p := range c.Parents {
			shorts[i] = p.Short()
		}
		fmt.Fprintf(out, "Merge: %s\n", strings.Join(shorts, " "))
	}
	if sig, ok := object.ParseSignature(c.Author); ok {
		fmt.Fprintf(out, "Author: %s <%s>\n", sig.Name, sig.Email)
		fmt.Fprintf(out, "Date:   %s\n", sig.When.Format("Mon Jan 2 15:04:05 2006 -0700"))
	} else {
		fmt.Fprintf(out, "Author: %s\n", c.Author)
	}
	fmt.Fprintln(out)
	for _, line := range strings.Split(strings.TrimRight(c.Message, "\n"), "\n") {
		fmt.Fprintf(out, "    %s\n", line)
	}
	fmt.Fprintln(out)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimRight(line, "\r")
}
