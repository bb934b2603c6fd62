package server

import (
	"context"
	"fmt"
	"html"
	"net/http"

	"github.com/pqui/archstudio/internal/datasource"
	"github.com/pqui/archstudio/internal/site"
	"github.com/pqui/archstudio/internal/views"
)

func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "User-agent: *")
	fmt.Fprintln(w, "Allow: /")
	fmt.Fprintln(w, "Disallow: /views/")
	fmt.Fprintf(w, "Sitemap: https://%s/sitemap.xml\n", s.cfg.Server.Domain)
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>`)
	fmt.Fprint(w, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)

	baseURL := "https://" + s.cfg.Server.Domain
	entry := func(path, changefreq string, priority float64) {
		fmt.Fprintf(w, "<url><loc>%s%s</loc><changefreq>%s</changefreq><priority>%.1f</priority></url>\n",
			baseURL, html.EscapeString(path), changefreq, priority)
	}

	for _, p := range site.Pages() {
		switch p {
		case site.PageHome:
			entry(p.Path(), "weekly", 1.0)
		case site.PageContact:
			entry(p.Path(), "monthly", 0.6)
		default:
			entry(p.Path(), "weekly", 0.8)
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Views.LoadTimeout)
	defer cancel()
	for _, lp := range []struct {
		page  site.Page
		query datasource.Query
	}{
		{s.projects.page, s.projects.query},
		{s.blog.page, s.blog.query},
	} {
		q := lp.query
		q.Expand = nil
		rows, err := s.source.Query(ctx, q)
		if err != nil {
			s.log.WithError(err).WithField("collection", q.Collection).Warn("sitemap: detail URLs skipped")
			continue
		}
		for _, row := range rows {
			if id, ok := row["id"].(string); ok && id != "" {
				entry(views.RecordPath(lp.page, id), "monthly", 0.6)
			}
		}
	}

	fmt.Fprint(w, `</urlset>`)
}
