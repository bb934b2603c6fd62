package blogimport

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pqui/archstudio/internal/database"
	"github.com/pqui/archstudio/internal/datasource"
	"github.com/pqui/archstudio/internal/model"
	pdfutil "github.com/pqui/archstudio/internal/pdf"
	"github.com/pqui/archstudio/internal/repository"
)

type recordingSink struct {
	collection string
	row        datasource.Row
	err        error
}

func (s *recordingSink) Insert(_ context.Context, collection string, row datasource.Row) error {
	s.collection, s.row = collection, row
	return s.err
}

type recordingMedia struct {
	key  string
	data []byte
}

func (m *recordingMedia) UploadMedia(_ context.Context, key string, data []byte, _ string) error {
	m.key, m.data = key, data
	return nil
}

var fixedNow = func() time.Time { return time.Date(2024, 8, 1, 10, 0, 0, 0, time.UTC) }

func sampleDoc() pdfutil.Document {
	return pdfutil.Document{Pages: 2, Paragraphs: []string{
		"Timber Towers: Building Tall With Wood",
		"Mass timber is changing how we build.",
		"Our new tower uses cross-laminated panels.",
	}}
}

func TestImportTakesTitleFromDocument(t *testing.T) {
	t.Parallel()
	sink := &recordingSink{}
	im := &Importer{Sink: sink, Now: fixedNow, NewID: func() string { return "bp-new" }}

	post, err := im.Import(context.Background(), sampleDoc(), Options{Category: "insights"})
	require.NoError(t, err)

	assert.Equal(t, "Timber Towers: Building Tall With Wood", post.Title)
	assert.Equal(t, "timber-towers-building-tall-with-wood", post.Slug)
	assert.Equal(t, "Mass timber is changing how we build.\n\nOur new tower uses cross-laminated panels.", post.Content)
	assert.False(t, post.Published)

	assert.Equal(t, model.CollectionBlogPosts, sink.collection)
	assert.Equal(t, "bp-new", sink.row["id"])
	assert.NotContains(t, sink.row, "author_id")
}

func TestImportWithTitleAndCover(t *testing.T) {
	t.Parallel()
	sink := &recordingSink{}
	media := &recordingMedia{}
	im := &Importer{Sink: sink, Media: media, Now: fixedNow}

	post, err := im.Import(context.Background(), sampleDoc(), Options{
		Title:     "Mass Timber",
		Category:  "news",
		AuthorID:  "tm-marcus-lee",
		Published: true,
		Cover:     &Cover{Name: "/tmp/cover.jpg", Data: []byte("jpeg"), ContentType: "image/jpeg"},
	})
	require.NoError(t, err)

	assert.Equal(t, "blog/mass-timber/cover.jpg", media.key)
	assert.Equal(t, "blog/mass-timber/cover.jpg", post.FeaturedImage)
	assert.Contains(t, post.Content, "Timber Towers", "an explicit title keeps the first paragraph in the body")
	assert.Equal(t, "tm-marcus-lee", sink.row["author_id"])
}

func TestImportErrors(t *testing.T) {
	t.Parallel()

	_, err := (&Importer{Sink: &recordingSink{}}).Import(context.Background(), pdfutil.Document{}, Options{})
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = (&Importer{Sink: &recordingSink{}}).Import(context.Background(), sampleDoc(), Options{Cover: &Cover{Name: "x.jpg"}})
	assert.ErrorContains(t, err, "object storage is not configured")

	boom := errors.New("boom")
	_, err = (&Importer{Sink: &recordingSink{err: boom}}).Import(context.Background(), sampleDoc(), Options{})
	assert.ErrorIs(t, err, boom)
}

func TestImportIntoSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenSQLite(ctx, filepath.Join(t.TempDir(), "import.db"))
	require.NoError(t, err)
	_, err = database.MigrateSQLite(ctx, db)
	require.NoError(t, err)
	store := repository.NewSQLite(db)
	t.Cleanup(func() { _ = store.Close() })

	im := &Importer{Sink: store, Now: fixedNow, NewID: func() string { return "bp-timber" }}
	_, err = im.Import(ctx, sampleDoc(), Options{Category: "insights", AuthorID: "tm-priya-nair", Published: true})
	require.NoError(t, err)

	rows, err := store.Query(ctx, datasource.Query{
		Collection: model.CollectionBlogPosts,
		Filters:    []datasource.Eq{{Field: "id", Value: "bp-timber"}},
		Expand: []datasource.Expansion{{
			As: "author", LocalKey: "author_id", Collection: model.CollectionTeamMembers, ForeignKey: "id",
		}},
	})
	require.NoError(t, err)
	posts, err := datasource.Decode[model.BlogPost](rows)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.True(t, posts[0].Published)
	assert.True(t, fixedNow().Equal(posts[0].CreatedAt))
	require.NotNil(t, posts[0].Author)
	assert.Equal(t, "tm-priya-nair", posts[0].Author.ID)
}
