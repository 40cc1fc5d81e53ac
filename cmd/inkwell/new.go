package main

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/eringen/inkwell/content"
	"github.com/eringen/inkwell/scaffold"
)

func newNewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Scaffold a new site or post",
	}
	cmd.AddCommand(newSiteCmd(), newPostCmd())
	return cmd
}

func newSiteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "site <dir>",
		Short: "Create a new site with sample content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := filepath.Clean(args[0])
			fsys := afero.NewOsFs()
			if ok, _ := afero.Exists(fsys, dir); ok {
				return fmt.Errorf("directory %q already exists", dir)
			}
			name := filepath.Base(dir)
			title := cases.Title(language.English).String(strings.NewReplacer("-", " ", "_", " ").Replace(name))
			created, err := scaffold.WriteSite(fsys, dir, scaffold.NewSiteData(name, title))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Creating new inkwell site: %s\n\n", dir)
			for _, p := range created {
				fmt.Fprintf(w, "  created %s\n", p)
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Done! Next steps:")
			fmt.Fprintln(w)
			fmt.Fprintf(w, "  cd %s\n", dir)
			fmt.Fprintln(w, "  inkwell serve")
			return nil
		},
	}
}

func newPostCmd() *cobra.Command {
	var (
		tags  []string
		draft bool
		dir   string
	)
	cmd := &cobra.Command{
		Use:   "post <title>",
		Short: "Create a new post in the posts directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			slug := content.Slugify(title)
			if slug == "" {
				return fmt.Errorf("title %q yields an empty slug", title)
			}
			tags = content.NormalizeTags(tags)
			if len(tags) == 0 {
				return fmt.Errorf("a post needs at least one tag (--tags)")
			}
			name := path.Join(filepath.ToSlash(dir), "posts", slug+".md")
			err := scaffold.WritePost(afero.NewOsFs(), name, scaffold.PostData{
				Title: title,
				Date:  time.Now().Format("2006-01-02"),
				Tags:  tags,
				Draft: draft,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&tags, "tags", "t", []string{"notes"}, "comma-separated tags")
	cmd.Flags().BoolVar(&draft, "draft", false, "mark the post as a draft")
	cmd.Flags().StringVar(&dir, "content", "content", "content directory")
	return cmd
}
