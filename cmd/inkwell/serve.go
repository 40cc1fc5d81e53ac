package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/eringen/inkwell"
)

func newServeCmd(opts *options) *cobra.Command {
	var (
		addr    string
		noWatch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site and reindex when content changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			ctx := cmd.Context()
			app, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer app.Close()

			if !noWatch {
				go func() {
					err := inkwell.Watch(ctx, log, []string{cfg.ContentDir}, inkwell.DefaultDebounce, func(ctx context.Context) {
						if _, err := app.Reindex(ctx); err != nil {
							log.Error().Err(err).Msg("reindex failed")
						}
					})
					if err != nil {
						log.Error().Err(err).Msg("watcher stopped")
					}
				}()
			}
			return app.Start(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides addr)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reindex on content changes")
	return cmd
}
