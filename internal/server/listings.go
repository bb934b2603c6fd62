package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	g "maragu.dev/gomponents"

	"github.com/pqui/archstudio/internal/config"
	"github.com/pqui/archstudio/internal/datasource"
	"github.com/pqui/archstudio/internal/listing"
	"github.com/pqui/archstudio/internal/model"
	"github.com/pqui/archstudio/internal/site"
	"github.com/pqui/archstudio/internal/views"
	"github.com/pqui/archstudio/internal/viewstate"
)

// listingPage binds a page to the query that feeds it and its renderers.
type listingPage[T listing.Record] struct {
	page   site.Page
	query  datasource.Query
	full   func(st views.State, viewID string, snap listing.Snapshot[T]) g.Node
	region func(st views.State, viewID string, snap listing.Snapshot[T]) g.Node
}

func homeListing(cfg config.SiteConfig) listingPage[model.Project] {
	return listingPage[model.Project]{
		page: site.PageHome,
		query: datasource.Query{
			Collection: model.CollectionProjects,
			Filters:    []datasource.Eq{{Field: "is_featured", Value: true}},
			Order:      datasource.Order{Field: "created_at", Direction: datasource.Descending},
			Limit:      cfg.FeaturedProjectMax,
		},
		full:   views.HomePage,
		region: views.FeaturedRegion,
	}
}

func projectsListing() listingPage[model.Project] {
	return listingPage[model.Project]{
		page: site.PageProjects,
		query: datasource.Query{
			Collection: model.CollectionProjects,
			Order:      datasource.Order{Field: "year", Direction: datasource.Descending},
		},
		full:   views.ProjectsPage,
		region: views.ProjectsRegion,
	}
}

func teamListing() listingPage[model.TeamMember] {
	return listingPage[model.TeamMember]{
		page: site.PageTeam,
		query: datasource.Query{
			Collection: model.CollectionTeamMembers,
			Order:      datasource.Order{Field: "order_position", Direction: datasource.Ascending},
		},
		full:   views.TeamPage,
		region: views.TeamRegion,
	}
}

func blogListing() listingPage[model.BlogPost] {
	return listingPage[model.BlogPost]{
		page: site.PageBlog,
		query: datasource.Query{
			Collection: model.CollectionBlogPosts,
			Filters:    []datasource.Eq{{Field: "published", Value: true}},
			Order:      datasource.Order{Field: "created_at", Direction: datasource.Descending},
			Expand: []datasource.Expansion{{
				As:         "author",
				LocalKey:   "author_id",
				Collection: model.CollectionTeamMembers,
				ForeignKey: "id",
			}},
		},
		full:   views.BlogPage,
		region: views.BlogRegion,
	}
}

// activate starts a fresh view model for the page and registers it. The load
// outlives the request that started it, so it runs on a context detached from
// the request's cancellation.
func activate[T listing.Record](s *Server, r *http.Request, lp listingPage[T]) (string, *listing.ViewModel[T], error) {
	opts := []listing.Option{
		listing.WithLogger(s.log.WithField("page", lp.page.String())),
		listing.WithTimeout(s.cfg.Views.LoadTimeout),
	}
	if s.metrics != nil {
		opts = append(opts, listing.WithObserver(s.metrics.ObserveLoad))
	}
	vm := listing.New(lp.query.Collection, listing.FromSource[T](s.source, lp.query), opts...)
	applyCategory(r, lp.page, vm)
	if err := vm.Activate(context.WithoutCancel(r.Context())); err != nil {
		return "", nil, err
	}
	return s.views.Add(lp.page, vm), vm, nil
}

// applyCategory sets the category from the query string. Pages without
// categories ignore it and keep listing everything.
func applyCategory[T listing.Record](r *http.Request, page site.Page, vm *listing.ViewModel[T]) {
	if page.Categorized() && r.URL.Query().Has("category") {
		vm.SetCategory(r.URL.Query().Get("category"))
	}
}

// wait blocks until vm settles or the load timeout passes. A timeout leaves
// the loading placeholder in place, which polls again.
func wait[T listing.Record](s *Server, r *http.Request, vm *listing.ViewModel[T]) error {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Views.LoadTimeout)
	defer cancel()
	err := vm.Wait(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// listingHandler renders a page shell around a new activation. The region
// normally starts as the loading placeholder.
func listingHandler[T listing.Record](s *Server, lp listingPage[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, vm, err := activate(s, r, lp)
		if err != nil {
			s.log.WithError(err).Error("activate view")
			s.render(w, r, http.StatusInternalServerError, views.ErrorPage(s.state(r, lp.page), http.StatusInternalServerError, "Something went wrong."))
			return
		}
		s.render(w, r, http.StatusOK, lp.full(s.state(r, lp.page), id, vm.Snapshot(lp.page.Noun())))
	}
}

// recordHandler serves a deep link to one record: it waits for the listing
// and opens the record's detail view.
func recordHandler[T listing.Record](s *Server, lp listingPage[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, vm, err := activate(s, r, lp)
		if err != nil {
			s.log.WithError(err).Error("activate view")
			s.render(w, r, http.StatusInternalServerError, views.ErrorPage(s.state(r, lp.page), http.StatusInternalServerError, "Something went wrong."))
			return
		}
		if err := wait(s, r, vm); err != nil {
			s.views.Remove(id)
			s.render(w, r, http.StatusServiceUnavailable, views.ErrorPage(s.state(r, lp.page), http.StatusServiceUnavailable, "Please try again."))
			return
		}
		if vm.Loading() {
			// Still loading after the timeout; let the placeholder poll.
			s.render(w, r, http.StatusOK, lp.full(s.state(r, lp.page), id, vm.Snapshot(lp.page.Noun())))
			return
		}
		if _, ok := vm.Select(r.PathValue("id")); !ok {
			s.views.Remove(id)
			s.handleNotFound(w, r)
			return
		}
		s.render(w, r, http.StatusOK, lp.full(s.state(r, lp.page), id, vm.Snapshot(lp.page.Noun())))
	}
}

type viewAction int

const (
	actionRegion viewAction = iota
	actionOpen
	actionClose
)

// viewHandler routes region requests to the activation's typed handler.
func (s *Server) viewHandler(action viewAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		page, _, err := s.views.Get(id)
		if err != nil {
			s.gone(w, r, page)
			return
		}
		switch page {
		case site.PageHome:
			serveView(s, w, r, s.home, id, action)
		case site.PageProjects:
			serveView(s, w, r, s.projects, id, action)
		case site.PageTeam:
			serveView(s, w, r, s.team, id, action)
		case site.PageBlog:
			serveView(s, w, r, s.blog, id, action)
		default:
			s.gone(w, r, page)
		}
	}
}

func serveView[T listing.Record](s *Server, w http.ResponseWriter, r *http.Request, lp listingPage[T], id string, action viewAction) {
	_, vm, err := viewstate.Lookup[*listing.ViewModel[T]](s.views, id)
	if err != nil {
		s.gone(w, r, lp.page)
		return
	}
	applyCategory(r, lp.page, vm)
	if err := wait(s, r, vm); err != nil {
		s.gone(w, r, lp.page)
		return
	}
	switch action {
	case actionOpen:
		if vm.Loading() {
			break
		}
		if _, ok := vm.Select(r.PathValue("rid")); !ok {
			s.log.WithField("view", id).WithField("record", r.PathValue("rid")).Debug("record not in collection")
			vm.Close()
		}
	case actionClose:
		vm.Close()
	}
	s.render(w, r, http.StatusOK, lp.region(s.state(r, lp.page), id, vm.Snapshot(lp.page.Noun())))
}

// gone answers requests for expired activations. htmx follows HX-Redirect
// with a full page load, which starts a fresh activation.
func (s *Server) gone(w http.ResponseWriter, r *http.Request, page site.Page) {
	target := page.Path()
	if u, err := url.Parse(r.Header.Get("HX-Current-URL")); err == nil && localPath(u.Path) {
		target = u.RequestURI()
	}
	w.Header().Set("HX-Redirect", target)
	w.WriteHeader(http.StatusGone)
}

// localPath reports whether p is a path on this site, not a
// protocol-relative URL such as "//other.example".
func localPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}
