// Package blogimport publishes extracted documents as blog posts.
package blogimport

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pqui/archstudio/internal/datasource"
	"github.com/pqui/archstudio/internal/model"
	pdfutil "github.com/pqui/archstudio/internal/pdf"
	"github.com/pqui/archstudio/internal/textutil"
)

const (
	maxTitle   = 120
	excerptLen = 200
)

// ErrEmpty is returned for documents without any text.
var ErrEmpty = errors.New("blogimport: document has no text")

// MediaStore uploads cover images; *s3storage.Storage.
type MediaStore interface {
	UploadMedia(ctx context.Context, key string, data []byte, contentType string) error
}

// Cover is an image to upload with the post.
type Cover struct {
	Name        string
	Data        []byte
	ContentType string
}

// Options describe the post. An empty Title takes the document's first
// paragraph.
type Options struct {
	Title     string
	Category  string
	AuthorID  string
	Published bool
	Cover     *Cover
}

// Importer writes posts through a Sink.
type Importer struct {
	Sink  datasource.Sink
	Media MediaStore
	Now   func() time.Time
	NewID func() string
}

// Import builds a post from doc and inserts it.
func (im *Importer) Import(ctx context.Context, doc pdfutil.Document, opts Options) (model.BlogPost, error) {
	if len(doc.Paragraphs) == 0 {
		return model.BlogPost{}, ErrEmpty
	}
	now, newID := time.Now, uuid.NewString
	if im.Now != nil {
		now = im.Now
	}
	if im.NewID != nil {
		newID = im.NewID
	}

	title, skip := strings.TrimSpace(opts.Title), 0
	if title == "" {
		title, skip = doc.Title(maxTitle), 1
	}
	body := doc.Markdown(skip)
	created := now().UTC()
	post := model.BlogPost{
		ID:        newID(),
		Title:     title,
		Slug:      textutil.Slugify(title),
		Excerpt:   textutil.Excerpt(strings.Join(doc.Paragraphs[skip:], " "), excerptLen),
		Content:   body,
		Category:  opts.Category,
		AuthorID:  opts.AuthorID,
		Published: opts.Published,
		CreatedAt: created,
		UpdatedAt: created,
	}

	if opts.Cover != nil {
		if im.Media == nil {
			return model.BlogPost{}, errors.New("blogimport: cover image given but object storage is not configured")
		}
		key := path.Join("blog", post.Slug, path.Base(opts.Cover.Name))
		if err := im.Media.UploadMedia(ctx, key, opts.Cover.Data, opts.Cover.ContentType); err != nil {
			return model.BlogPost{}, fmt.Errorf("upload cover: %w", err)
		}
		post.FeaturedImage = key
	}

	if err := im.Sink.Insert(ctx, model.CollectionBlogPosts, Row(post)); err != nil {
		return model.BlogPost{}, fmt.Errorf("insert post: %w", err)
	}
	return post, nil
}

// Row returns the post's columns. author_id is left out when empty so the
// column stays NULL.
func Row(p model.BlogPost) datasource.Row {
	row := datasource.Row{
		"id":             p.ID,
		"title":          p.Title,
		"slug":           p.Slug,
		"excerpt":        p.Excerpt,
		"content":        p.Content,
		"category":       p.Category,
		"featured_image": p.FeaturedImage,
		"published":      p.Published,
		"created_at":     p.CreatedAt,
		"updated_at":     p.UpdatedAt,
	}
	if p.AuthorID != "" {
		row["author_id"] = p.AuthorID
	}
	return row
}
