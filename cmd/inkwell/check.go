package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eringen/inkwell/content"
)

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			fsys := os.DirFS(cfg.ContentDir)
			res, err := content.LoadPosts(cmd.Context(), fsys, cfg.PostsDir())
			if err != nil {
				return err
			}
			pages, skippedPages, err := content.LoadPages(fsys, cfg.PagesDir())
			if err != nil {
				return err
			}
			skipped := append(res.Skipped, skippedPages...)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "config ok: %s (%s)\n", cfg.Site.Site.Title, cfg.Site.Site.URL)
			fmt.Fprintf(w, "%d posts, %d pages, %d skipped\n", len(res.Posts), len(pages), len(skipped))
			for _, s := range skipped {
				fmt.Fprintf(w, "  skipped %s: %v\n", s.Path, s.Err)
			}
			return nil
		},
	}
}
