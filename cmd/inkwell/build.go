package main

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/eringen/inkwell"
)

func newBuildCmd(opts *options) *cobra.Command {
	var (
		out   string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Export the site as static files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			if out != "" {
				cfg.OutputDir = out
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			ctx := cmd.Context()
			app, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := afero.NewOsFs().MkdirAll(cfg.OutputDir, 0o755); err != nil {
				return err
			}
			dst := afero.NewBasePathFs(afero.NewOsFs(), cfg.OutputDir)
			if _, err := app.Build(ctx, dst); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			log.Info().Str("out", cfg.OutputDir).Msg("watching for changes")
			return inkwell.Watch(ctx, log, []string{cfg.ContentDir, cfg.StaticDir}, inkwell.DefaultDebounce, func(ctx context.Context) {
				if err := rebuild(ctx, app, dst); err != nil {
					log.Error().Err(err).Msg("rebuild failed")
				}
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output directory (overrides output_dir)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "rebuild when content or static files change")
	return cmd
}

func rebuild(ctx context.Context, app *inkwell.App, dst afero.Fs) error {
	if _, err := app.Reindex(ctx); err != nil {
		return fmt.Errorf("reindex: %w", err)
	}
	_, err := app.Build(ctx, dst)
	return err
}
