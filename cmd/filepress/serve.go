package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/eringen/filepress"
	"github.com/spf13/cobra"
)

func (c *cli) serveCmd() *cobra.Command {
	var (
		addr  string
		mode  string
		watch bool
	)
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Serve the instance over HTTP",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := filepress.LoadConfig(c.instance)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("mode") {
				cfg.Mode = mode
			}
			if cmd.Flags().Changed("watch") {
				cfg.Watch = watch
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app := filepress.New(cfg, filepress.WithLogger(c.logger()))
			return app.Start(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&mode, "mode", filepress.ModeMixed, "serving mode (api-only, view-only, mixed)")
	cmd.Flags().BoolVar(&watch, "watch", true, "invalidate the cache when content files change")
	return cmd
}
