// Package server wires the site's HTTP routes to the listing view models, the
// contact service and the renderers.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	g "maragu.dev/gomponents"

	"github.com/pqui/archstudio/internal/config"
	"github.com/pqui/archstudio/internal/contact"
	"github.com/pqui/archstudio/internal/datasource"
	"github.com/pqui/archstudio/internal/metrics"
	"github.com/pqui/archstudio/internal/model"
	"github.com/pqui/archstudio/internal/site"
	"github.com/pqui/archstudio/internal/views"
	"github.com/pqui/archstudio/internal/viewstate"
)

// Deps are the collaborators a Server needs. Metrics and Images are
// optional.
type Deps struct {
	Config  *config.Config
	Source  datasource.Source
	Contact *contact.Service
	Views   *viewstate.Registry
	Images  views.ImageResolver
	Metrics *metrics.Metrics
	Logger  logrus.FieldLogger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Server hosts the site.
type Server struct {
	cfg     *config.Config
	source  datasource.Source
	contact *contact.Service
	views   *viewstate.Registry
	images  views.ImageResolver
	metrics *metrics.Metrics
	log     logrus.FieldLogger
	now     func() time.Time

	home     listingPage[model.Project]
	projects listingPage[model.Project]
	team     listingPage[model.TeamMember]
	blog     listingPage[model.BlogPost]

	handler http.Handler
	once    sync.Once
}

// New builds a Server.
func New(d Deps) *Server {
	s := &Server{
		cfg:     d.Config,
		source:  d.Source,
		contact: d.Contact,
		views:   d.Views,
		images:  d.Images,
		metrics: d.Metrics,
		log:     d.Logger,
		now:     d.Now,
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.home = homeListing(s.cfg.Site)
	s.projects = projectsListing()
	s.team = teamListing()
	s.blog = blogListing()
	return s
}

// Handler returns the routed handler with its middleware.
func (s *Server) Handler() http.Handler {
	s.once.Do(func() {
		s.handler = s.recoverer(s.accessLog(s.routes()))
	})
	return s.handler
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.cfg.Server.Address,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.WithError(err).Warn("http shutdown")
		}
	}()
	s.log.WithField("address", s.cfg.Server.Address).Info("archstudio listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", listingHandler(s, s.home))
	mux.HandleFunc("GET /projects", listingHandler(s, s.projects))
	mux.HandleFunc("GET /projects/{id}", recordHandler(s, s.projects))
	mux.HandleFunc("GET /team", listingHandler(s, s.team))
	mux.HandleFunc("GET /team/{id}", recordHandler(s, s.team))
	mux.HandleFunc("GET /blog", listingHandler(s, s.blog))
	mux.HandleFunc("GET /blog/{id}", recordHandler(s, s.blog))

	mux.HandleFunc("GET /views/{id}", s.viewHandler(actionRegion))
	mux.HandleFunc("GET /views/{id}/records/{rid}", s.viewHandler(actionOpen))
	mux.HandleFunc("GET /views/{id}/close", s.viewHandler(actionClose))

	mux.HandleFunc("GET /contact", s.handleContactForm)
	mux.HandleFunc("POST /contact", s.handleContactSubmit)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /robots.txt", s.handleRobots)
	mux.HandleFunc("GET /sitemap.xml", s.handleSitemap)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	mux.HandleFunc("/", s.handleNotFound)
	return mux
}

func (s *Server) state(r *http.Request, p site.Page) views.State {
	return views.State{
		Ctx:    r.Context(),
		Page:   p,
		Site:   s.cfg.Site,
		Images: s.images,
		Now:    s.now(),
	}
}

// render writes an HTML response. Rendering errors after the header is sent
// can only be logged.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, node g.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := node.Render(w); err != nil {
		s.log.WithError(err).WithField("path", r.URL.Path).Error("render page")
	}
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, views.ErrorPage(s.state(r, 0), http.StatusNotFound, "The page you are looking for does not exist."))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"views":  s.views.Len(),
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
