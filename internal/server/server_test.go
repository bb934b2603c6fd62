package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pqui/archstudio/internal/config"
	"github.com/pqui/archstudio/internal/contact"
	"github.com/pqui/archstudio/internal/datasource"
	"github.com/pqui/archstudio/internal/logging"
	"github.com/pqui/archstudio/internal/metrics"
	"github.com/pqui/archstudio/internal/model"
	"github.com/pqui/archstudio/internal/signing"
	"github.com/pqui/archstudio/internal/viewstate"
)

// fakeSource holds every query until open is closed, so pages render their
// loading placeholder deterministically.
type fakeSource struct {
	open  chan struct{}
	once  sync.Once
	mu    sync.Mutex
	rows  map[string][]datasource.Row
	fail  map[string]error
	calls map[string]int
}

func (f *fakeSource) release() { f.once.Do(func() { close(f.open) }) }

func (f *fakeSource) Query(ctx context.Context, q datasource.Query) ([]datasource.Row, error) {
	select {
	case <-f.open:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[q.Collection]++
	if err := f.fail[q.Collection]; err != nil {
		return nil, err
	}
	return f.rows[q.Collection], nil
}

func (f *fakeSource) count(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[collection]
}

type fakeSink struct {
	mu   sync.Mutex
	rows []datasource.Row
	err  error
}

func (f *fakeSink) Insert(_ context.Context, collection string, row datasource.Row) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, row)
	return nil
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		open: make(chan struct{}),
		rows: map[string][]datasource.Row{
			model.CollectionProjects: {
				{"id": "pr-cedar", "title": "Cedar House", "category": "residential", "year": 2023, "status": "completed", "location": "Portland, OR", "is_featured": true},
				{"id": "pr-harbor", "title": "Harbor Offices", "category": "commercial", "year": 2022, "status": "ongoing", "location": "Seattle, WA", "area": "8,000 m²"},
			},
			model.CollectionTeamMembers: {
				{"id": "tm-elena", "name": "Elena Ward", "role": "Founding Partner", "order_position": 1},
			},
			model.CollectionBlogPosts: {
				{"id": "bp-daylight", "title": "Designing With Daylight", "category": "insights", "content": "Light **matters**.", "published": true,
					"author": datasource.Row{"id": "tm-elena", "name": "Elena Ward", "role": "Founding Partner"}},
			},
		},
		fail:  map[string]error{},
		calls: map[string]int{},
	}
}

type harness struct {
	srv     *Server
	handler http.Handler
	source  *fakeSource
	sink    *fakeSink
	views   *viewstate.Registry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Domain: "archstudio.test"},
		Views:  config.ViewsConfig{TTL: time.Minute, MaxActive: 10, LoadTimeout: 2 * time.Second},
		Site: config.SiteConfig{
			Name:    "ARCH Studio",
			Tagline: "Designing Spaces That Inspire",
			ProjectCategories: []config.Category{
				{ID: "all", Label: "All Projects"},
				{ID: "residential", Label: "Residential"},
				{ID: "commercial", Label: "Commercial"},
			},
			BlogCategories:     []config.Category{{ID: "all", Label: "All Posts"}, {ID: "insights", Label: "Insights"}},
			FeaturedProjectMax: 3,
		},
	}
	log := logging.Discard()
	source := newFakeSource()
	t.Cleanup(source.release)
	sink := &fakeSink{}
	registry := viewstate.New(cfg.Views.TTL, cfg.Views.MaxActive, log)
	t.Cleanup(registry.Close)
	m := metrics.New(func() float64 { return float64(registry.Len()) })

	svc := contact.NewService(contact.Options{
		Sink:    sink,
		Signer:  signing.NewSigner([]byte("test-secret")),
		FormTTL: time.Hour,
		Logger:  log,
		Observe: m.ObserveSubmission,
	})
	srv := New(Deps{
		Config:  cfg,
		Source:  source,
		Contact: svc,
		Views:   registry,
		Metrics: m,
		Logger:  log,
	})
	return &harness{srv: srv, handler: srv.Handler(), source: source, sink: sink, views: registry}
}

func (h *harness) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	res := rec.Result()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(body)
}

func (h *harness) get(t *testing.T, target string) (*http.Response, string) {
	t.Helper()
	return h.do(t, httptest.NewRequest(http.MethodGet, target, nil))
}

var viewIDPattern = regexp.MustCompile(`hx-get="/views/([0-9a-f-]{36})`)

func viewID(t *testing.T, body string) string {
	t.Helper()
	m := viewIDPattern.FindStringSubmatch(body)
	require.NotNil(t, m, "page has no view region")
	return m[1]
}

func TestListingPageRendersLoadingShell(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	res, body := h.get(t, "/projects")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Our Projects")
	assert.Contains(t, body, `hx-trigger="load delay:100ms"`)
	assert.Equal(t, 1, h.views.Len())
}

func TestRegionFiltersWithoutRefetch(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	_, body := h.get(t, "/projects")
	id := viewID(t, body)
	h.source.release()

	res, body := h.get(t, "/views/"+id)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Cedar House")
	assert.Contains(t, body, "Harbor Offices")
	assert.True(t, strings.Index(body, "Cedar House") < strings.Index(body, "Harbor Offices"), "query order is kept")

	_, body = h.get(t, "/views/"+id+"?category=commercial")
	assert.NotContains(t, body, "Cedar House")
	assert.Contains(t, body, "Harbor Offices")

	_, body = h.get(t, "/views/"+id+"?category=institutional")
	assert.Contains(t, body, "No projects found in this category.")

	assert.Equal(t, 1, h.source.count(model.CollectionProjects))
}

func TestInitialCategoryFromPageURL(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	_, body := h.get(t, "/projects?category=residential")
	id := viewID(t, body)
	h.source.release()
	_, body = h.get(t, "/views/"+id)
	assert.Contains(t, body, "Cedar House")
	assert.NotContains(t, body, "Harbor Offices")
}

func TestRegionOpenAndCloseDetail(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	_, body := h.get(t, "/projects")
	id := viewID(t, body)
	h.source.release()

	_, body = h.get(t, "/views/"+id+"/records/pr-harbor")
	assert.Contains(t, body, "8,000 m²")
	assert.Contains(t, body, "Back to projects")
	assert.NotContains(t, body, "Cedar House")

	_, body = h.get(t, "/views/"+id+"/close")
	assert.Contains(t, body, "Cedar House")
	assert.NotContains(t, body, "Back to projects")

	_, body = h.get(t, "/views/"+id+"/records/missing")
	assert.Contains(t, body, "Cedar House", "unknown records leave the listing in place")
	assert.Equal(t, 1, h.source.count(model.CollectionProjects))
}

func TestExpiredViewRedirects(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	res, _ := h.get(t, "/views/does-not-exist")
	assert.Equal(t, http.StatusGone, res.StatusCode)
	assert.Equal(t, "/", res.Header.Get("HX-Redirect"))

	req := httptest.NewRequest(http.MethodGet, "/views/does-not-exist?category=commercial", nil)
	req.Header.Set("HX-Current-URL", "https://archstudio.test/projects?category=commercial")
	res, _ = h.do(t, req)
	assert.Equal(t, http.StatusGone, res.StatusCode)
	assert.Equal(t, "/projects?category=commercial", res.Header.Get("HX-Redirect"))

	_, body := h.get(t, "/team")
	id := viewID(t, body)
	h.views.Remove(id)
	res, _ = h.get(t, "/views/"+id)
	assert.Equal(t, http.StatusGone, res.StatusCode)
}

func TestUncategorizedPagesIgnoreCategory(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	_, body := h.get(t, "/team?category=residential")
	teamID := viewID(t, body)
	_, body = h.get(t, "/?category=urban")
	homeID := viewID(t, body)
	h.source.release()

	_, body = h.get(t, "/views/"+teamID)
	assert.Contains(t, body, "Elena Ward")
	assert.NotContains(t, body, "No team members found")

	_, body = h.get(t, "/views/"+teamID+"?category=commercial")
	assert.Contains(t, body, "Elena Ward")

	_, body = h.get(t, "/views/"+homeID+"?category=urban")
	assert.Contains(t, body, `href="/projects/pr-cedar"`)
}

func TestExpiredViewRedirectStaysOnSite(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	for _, current := range []string{
		"https://archstudio.test//evil.example/path",
		"https://archstudio.test/\\evil.example",
		"not a url %zz",
	} {
		req := httptest.NewRequest(http.MethodGet, "/views/does-not-exist", nil)
		req.Header.Set("HX-Current-URL", current)
		res, _ := h.do(t, req)
		assert.Equal(t, http.StatusGone, res.StatusCode)
		assert.Equal(t, "/", res.Header.Get("HX-Redirect"), current)
	}
}

func TestDeepLinkOpensDetail(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.source.release()

	res, body := h.get(t, "/projects/pr-cedar")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "<title>Cedar House - ARCH Studio</title>")
	assert.Contains(t, body, "Portland, OR")
	assert.Contains(t, body, "N/A")

	res, _ = h.get(t, "/projects/pr-missing")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, 1, h.views.Len(), "the failed deep link view is dropped")
}

func TestLoadFailureShowsEmptyState(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.source.fail[model.CollectionTeamMembers] = errors.New("connection refused")

	_, body := h.get(t, "/team")
	id := viewID(t, body)
	h.source.release()
	res, body := h.get(t, "/views/"+id)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "No team members found.")
	assert.NotContains(t, body, "connection refused")
}

func TestBlogShowsExpandedAuthor(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.source.release()

	_, body := h.get(t, "/blog/bp-daylight")
	assert.Contains(t, body, "Designing With Daylight")
	assert.Contains(t, body, "<strong>matters</strong>")
	assert.Contains(t, body, "Founding Partner")
}

func TestHomeFeaturedRegion(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	res, body := h.get(t, "/")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Featured Projects")
	id := viewID(t, body)
	h.source.release()

	_, body = h.get(t, "/views/"+id)
	assert.Contains(t, body, `href="/projects/pr-cedar"`)
}

var tokenPattern = regexp.MustCompile(`name="token" value="([^"]+)"`)

func contactToken(t *testing.T, h *harness) string {
	t.Helper()
	_, body := h.get(t, "/contact")
	m := tokenPattern.FindStringSubmatch(body)
	require.NotNil(t, m)
	return m[1]
}

func postContact(t *testing.T, h *harness, form url.Values) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(t, req)
}

func TestContactSubmit(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	form := url.Values{
		"name":    {"Ada Lovelace"},
		"email":   {"ada@example.com"},
		"subject": {"New studio"},
		"message": {"We would like to talk."},
		"token":   {contactToken(t, h)},
	}
	res, body := postContact(t, h, form)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Thank you for your message!")
	assert.NotContains(t, body, `value="Ada Lovelace"`)

	require.Len(t, h.sink.rows, 1)
	assert.Equal(t, "ada@example.com", h.sink.rows[0]["email"])
}

func TestContactValidationKeepsValues(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	form := url.Values{
		"name":    {"Ada Lovelace"},
		"email":   {"ada-at-example"},
		"message": {"Hello"},
		"token":   {contactToken(t, h)},
	}
	res, body := postContact(t, h, form)
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Contains(t, body, "Please enter a valid email address.")
	assert.Contains(t, body, "Subject is required.")
	assert.Contains(t, body, `value="Ada Lovelace"`)
	assert.Empty(t, h.sink.rows)
}

func TestContactFailures(t *testing.T) {
	t.Parallel()

	t.Run("bad token", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		res, body := postContact(t, h, url.Values{
			"name": {"Ada"}, "email": {"ada@example.com"}, "subject": {"Hi"}, "message": {"Hello"},
			"token": {"forged.1.abc"},
		})
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Contains(t, body, contact.FailureMessage)
		assert.Empty(t, h.sink.rows)
	})

	t.Run("store error", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.sink.err = errors.New("insert failed")
		res, body := postContact(t, h, url.Values{
			"name": {"Ada"}, "email": {"ada@example.com"}, "subject": {"Hi"}, "message": {"Hello"},
			"token": {contactToken(t, h)},
		})
		assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
		assert.Contains(t, body, contact.FailureMessage)
		assert.Contains(t, body, `value="Ada"`)
	})
}

func TestOpsEndpoints(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.source.release()

	res, body := h.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"status":"ok","views":0}`, body)

	_, body = h.get(t, "/robots.txt")
	assert.Contains(t, body, "Sitemap: https://archstudio.test/sitemap.xml")

	h.source.fail[model.CollectionBlogPosts] = errors.New("boom")
	res, body = h.get(t, "/sitemap.xml")
	assert.Equal(t, "application/xml; charset=utf-8", res.Header.Get("Content-Type"))
	assert.Contains(t, body, "<loc>https://archstudio.test/</loc>")
	assert.Contains(t, body, "<loc>https://archstudio.test/contact</loc>")
	assert.Contains(t, body, "<loc>https://archstudio.test/projects/pr-harbor</loc>")
	assert.NotContains(t, body, "/blog/bp-daylight")

	_, body = h.get(t, "/metrics")
	assert.Contains(t, body, "archstudio_http_request_duration_seconds")
	assert.Contains(t, body, `route="GET /sitemap.xml"`)
}

func TestUnknownPage(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	res, body := h.get(t, "/nowhere")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Contains(t, body, "does not exist")
}
