package postgrest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pqui/archstudio/internal/datasource"
	"github.com/pqui/archstudio/internal/model"
)

func newClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL + "/rest/v1/", APIKey: "anon-key", Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

func TestQueryBuildsPostgRESTRequest(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/blog_posts", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "*,author:team_members!author_id(*)", q.Get("select"))
		assert.Equal(t, "eq.true", q.Get("published"))
		assert.Equal(t, "created_at.desc", q.Get("order"))
		assert.Equal(t, "3", q.Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"id":"p1","title":"Daylight","category":"insights","published":true,
			 "created_at":"2024-04-02T08:00:00+00:00","author":{"id":"m1","name":"Marcus Lee"}},
			{"id":"p2","title":"Workshops","category":"projects","published":true,
			 "created_at":"2024-03-02T08:00:00+00:00","author":null}
		]`)
	})

	rows, err := c.Query(context.Background(), datasource.Query{
		Collection: model.CollectionBlogPosts,
		Filters:    []datasource.Eq{{Field: "published", Value: true}},
		Order:      datasource.Order{Field: "created_at", Direction: datasource.Descending},
		Limit:      3,
		Expand: []datasource.Expansion{{
			As: "author", LocalKey: "author_id", Collection: model.CollectionTeamMembers, ForeignKey: "id",
		}},
	})
	require.NoError(t, err)

	posts, err := datasource.Decode[model.BlogPost](rows)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "p1", posts[0].ID)
	require.NotNil(t, posts[0].Author)
	assert.Equal(t, "Marcus Lee", posts[0].Author.Name)
	assert.Nil(t, posts[1].Author)
}

func TestQueryErrorIsNotRetriedByDefault(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"code":"PGRST000","message":"could not connect","hint":"check the pool"}`)
	})

	_, err := c.Query(context.Background(), datasource.Query{Collection: model.CollectionProjects})
	require.Error(t, err)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusServiceUnavailable, perr.Status)
	assert.Equal(t, "PGRST000", perr.Code)
	assert.Equal(t, "could not connect", perr.Message)
	assert.Equal(t, "check the pool", perr.Hint)
	assert.EqualValues(t, 1, calls.Load())
}

func TestQueryNonJSONError(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "not here\n")
	})

	_, err := c.Query(context.Background(), datasource.Query{Collection: "awards"})
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "not here", perr.Message)
}

func TestQueryValidatesBeforeSending(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not be sent")
	})

	_, err := c.Query(context.Background(), datasource.Query{Collection: "projects?select=secret"})
	assert.ErrorIs(t, err, datasource.ErrInvalidQuery)
}

func TestInsertPostsMinimalRow(t *testing.T) {
	t.Parallel()

	var got []map[string]any
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/contact_submissions", r.URL.Path)
		assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})

	err := c.Insert(context.Background(), model.CollectionContactSubmissions, datasource.Row{
		"name": "Jane", "email": "jane@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"name": "Jane", "email": "jane@example.com"}}, got)
}

func TestInsertFailure(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"permission denied for table contact_submissions"}`)
	})

	err := c.Insert(context.Background(), model.CollectionContactSubmissions, datasource.Row{"name": "Jane"})
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusUnauthorized, perr.Status)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestNewRejectsBadURL(t *testing.T) {
	t.Parallel()

	_, err := New(Options{BaseURL: "ftp://example.com"})
	assert.Error(t, err)
}
