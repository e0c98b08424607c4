package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/eringen/filepress"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
)

// cli holds flags shared by every subcommand.
type cli struct {
	instance string
	logLevel string
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "filepress",
		Short: "A blog engine that serves a directory of plain-text posts and pages",
		Long: `filepress serves posts, pages and widgets stored as plain-text files
with a YAML header. It exposes a JSON API, HTML views, an RSS feed and a sitemap.

Quick Start:
  filepress new myblog
  filepress serve --instance myblog
  filepress post "My first post" --instance myblog`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&c.instance, "instance", "i",
		filepress.EnvOr("FILEPRESS_INSTANCE", "."), "instance root holding posts/, pages/ and widgets/")
	root.PersistentFlags().StringVarP(&c.logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		c.serveCmd(),
		newNewCmd(),
		c.postCmd(),
		c.listCmd(),
		c.searchCmd(),
		versionCmd(),
	)
	return root
}

func (c *cli) logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.logLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openStore loads the instance configuration and opens its store.
func (c *cli) openStore() (*filepress.Store, filepress.Config, error) {
	cfg, err := filepress.LoadConfig(c.instance)
	if err != nil {
		return nil, cfg, err
	}
	store, err := filepress.OpenStore(cfg, osfs.New(cfg.InstancePath), filepress.WithStoreLogger(c.logger()))
	if err != nil {
		return nil, cfg, err
	}
	return store, cfg, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the filepress version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "filepress %s\n", version)
		},
	}
}
