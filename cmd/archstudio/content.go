package main

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pqui/archstudio/internal/backend"
	"github.com/pqui/archstudio/internal/blogimport"
	"github.com/pqui/archstudio/internal/config"
	"github.com/pqui/archstudio/internal/logging"
	pdfutil "github.com/pqui/archstudio/internal/pdf"
	"github.com/pqui/archstudio/internal/s3storage"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations to the configured datasource",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			n, err := backend.Migrate(cmd.Context(), cfg.DataSource)
			if errors.Is(err, backend.ErrUnmanagedSchema) {
				fmt.Fprintln(cmd.OutOrStdout(), "postgrest schema is managed by the hosting project, nothing to do")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s) to %s\n", n, cfg.DataSource.Driver)
			return nil
		},
	}
}

type importFlags struct {
	file, title, category, author, cover string
	publish                              bool
}

func newImportPostCmd() *cobra.Command {
	var f importFlags
	cmd := &cobra.Command{
		Use:   "import-post",
		Short: "Publish the text of a PDF as a blog post",
		Example: `  archstudio import-post --file daylight.pdf --category insights --author tm-elena-ward --publish
  archstudio import-post --file award.pdf --title "Civic Library Wins AIA Award" --cover cover.jpg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return importPost(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.file, "file", "", "PDF to import")
	cmd.Flags().StringVar(&f.title, "title", "", "Post title (defaults to the first paragraph)")
	cmd.Flags().StringVar(&f.category, "category", "insights", "Blog category id")
	cmd.Flags().StringVar(&f.author, "author", "", "Team member id of the author")
	cmd.Flags().StringVar(&f.cover, "cover", "", "Cover image uploaded to the media bucket")
	cmd.Flags().BoolVar(&f.publish, "publish", false, "Publish immediately")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func importPost(cmd *cobra.Command, f importFlags) error {
	ctx := cmd.Context()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	raw, err := os.ReadFile(f.file)
	if err != nil {
		return err
	}
	doc, err := pdfutil.Extract(raw)
	if err != nil {
		return fmt.Errorf("extract %s: %w", f.file, err)
	}

	opts := blogimport.Options{
		Title:     f.title,
		Category:  f.category,
		AuthorID:  f.author,
		Published: f.publish,
	}
	if f.cover != "" {
		data, err := os.ReadFile(f.cover)
		if err != nil {
			return err
		}
		opts.Cover = &blogimport.Cover{Name: f.cover, Data: data, ContentType: contentType(f.cover, data)}
	}

	b, err := backend.Open(ctx, cfg.DataSource, log)
	if err != nil {
		return err
	}
	defer b.Close()

	im := &blogimport.Importer{Sink: b}
	if cfg.StorageEnabled() {
		store, err := s3storage.New(cfg.Storage)
		if err != nil {
			return err
		}
		if err := store.EnsureBuckets(ctx); err != nil {
			return err
		}
		im.Media = store
	}

	post, err := im.Import(ctx, doc, opts)
	if err != nil {
		return err
	}
	log.WithField("pages", doc.Pages).WithField("slug", post.Slug).Info("post imported")
	fmt.Fprintf(cmd.OutOrStdout(), "imported %q as %s (published: %t)\n", post.Title, post.ID, post.Published)
	return nil
}

func contentType(name string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}
