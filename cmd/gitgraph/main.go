package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/odvcencio/gitgraph/pkg/bridge"
	"github.com/odvcencio/gitgraph/pkg/config"
	"github.com/odvcencio/gitgraph/pkg/object"
	"github.com/odvcencio/gitgraph/pkg/repo"
	"github.com/spf13/cobra"
)

const version = "0.1.0-dev"

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	gitDir     string
	configPath string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "gitgraph",
		Short:         "Read git object stores and walk their commit graph",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.gitDir, "git-dir", "", "repository or git directory (default: search upward from the current directory)")
	pf.StringVar(&opts.configPath, "config", "", "config file (default: ./"+config.DefaultFile+" when present)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log graph discovery to stderr")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newLogCmd(opts))
	root.AddCommand(newGraphCmd(opts))
	root.AddCommand(newShowCmd(opts))
	root.AddCommand(newLsTreeCmd(opts))
	root.AddCommand(newCatFileCmd(opts))
	root.AddCommand(newHashObjectCmd(opts))
	root.AddCommand(newCommitTreeCmd(opts))
	root.AddCommand(newBranchCmd(opts))
	root.AddCommand(newTagCmd(opts))
	root.AddCommand(newReflogCmd(opts))
	root.AddCommand(newMergeBaseCmd(opts))
	root.AddCommand(newObjectsCmd(opts))
	root.AddCommand(newExportCmd(opts))
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "gitgraph "+version)
		},
	}
}

// openRepo loads configuration, then opens the repository with the
// configured fallback, cache and logger. --git-dir beats the config value.
func (o *rootOptions) openRepo(cmd *cobra.Command) (*repo.Repo, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	path := cfg.GitDir
	if strings.TrimSpace(o.gitDir) != "" {
		path = o.gitDir
	}

	located, err := repo.Open(path)
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.FallbackTimeout()
	if err != nil {
		return nil, err
	}
	fb, err := bridge.New(cfg.Fallback.Mode, located.GitDir, cfg.Fallback.GitBinary, timeout)
	if err != nil {
		return nil, err
	}

	storeOpts := []object.StoreOption{object.WithCacheSize(cfg.Store.CacheSize)}
	if fb != nil {
		storeOpts = append(storeOpts, object.WithFallback(fb))
	}
	repoOpts := []repo.Option{repo.WithStoreOptions(storeOpts...)}
	if o.verbose || cfg.Log.Verbose {
		repoOpts = append(repoOpts, repo.WithLogger(log.New(cmd.ErrOrStderr(), "gitgraph: ", 0)))
	}
	return repo.Open(located.GitDir, repoOpts...)
}
