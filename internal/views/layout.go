// Package views renders the site's HTML with gomponents. Listing regions are
// swapped in place with htmx; every other interaction is a plain link or
// form post.
package views

import (
	"context"
	"fmt"
	"net/url"
	"time"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/pqui/archstudio/internal/config"
	"github.com/pqui/archstudio/internal/site"
)

// RegionID is the DOM id of the swappable listing region.
const RegionID = "listing-region"

// ImageResolver turns stored image references into browser URLs.
type ImageResolver interface {
	ImageURL(ctx context.Context, ref string) string
}

// State is passed explicitly through the render tree.
type State struct {
	Ctx    context.Context
	Page   site.Page
	Site   config.SiteConfig
	Images ImageResolver
	Now    time.Time
}

func (s State) image(ref string) string {
	if s.Images == nil || ref == "" {
		return ref
	}
	ctx := s.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return s.Images.ImageURL(ctx, ref)
}

func (s State) year() int {
	if s.Now.IsZero() {
		return time.Now().Year()
	}
	return s.Now.Year()
}

// ViewPath is the endpoint serving a view activation's region.
func ViewPath(viewID string) string {
	return "/views/" + url.PathEscape(viewID)
}

// RecordPath is the deep link for one record on a listing page.
func RecordPath(p site.Page, id string) string {
	return p.Path() + "/" + url.PathEscape(id)
}

// CategoryPath is a listing page URL with its category selected.
func CategoryPath(p site.Page, category string) string {
	if category == "" || category == "all" {
		return p.Path()
	}
	return p.Path() + "?category=" + url.QueryEscape(category)
}

func pageTitle(st State, title string) string {
	if title == "" {
		return st.Site.Name + " - " + st.Site.Tagline
	}
	return title + " - " + st.Site.Name
}

func layout(st State, title, description string, content ...g.Node) g.Node {
	return Doctype(
		HTML(Lang("en"),
			Head(
				Meta(Charset("UTF-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1.0")),
				Meta(Name("description"), Content(description)),
				TitleEl(g.Text(pageTitle(st, title))),
				Script(Src("https://cdn.tailwindcss.com")),
				Script(Src("https://unpkg.com/htmx.org@2.0.4")),
			),
			Body(Class("bg-slate-50 font-sans antialiased text-slate-900 flex flex-col min-h-screen"),
				navBar(st),
				Main(Class("flex-grow"), g.Group(content)),
				siteFooter(st),
			),
		),
	)
}

func navBar(st State) g.Node {
	link := func(p site.Page) g.Node {
		cls := "px-3 py-2 rounded-md text-sm font-medium transition-colors "
		if p == st.Page {
			cls += "text-white bg-slate-800"
		} else {
			cls += "text-slate-300 hover:text-white hover:bg-slate-800/50"
		}
		return A(Href(p.Path()), Class(cls), g.If(p == st.Page, g.Attr("aria-current", "page")), g.Text(p.Label()))
	}
	return Nav(Class("bg-slate-900 text-white sticky top-0 z-50 shadow-lg"),
		Div(Class("max-w-7xl mx-auto px-4 sm:px-6 lg:px-8 flex justify-between items-center h-16"),
			A(Href("/"), Class("text-xl font-bold tracking-tight"), g.Text(st.Site.Name)),
			Div(Class("flex space-x-1"), g.Map(site.Pages(), link)),
		),
	)
}

func siteFooter(st State) g.Node {
	return Footer(Class("bg-slate-900 text-slate-400 py-12"),
		Div(Class("max-w-7xl mx-auto px-4 sm:px-6 lg:px-8 grid grid-cols-1 md:grid-cols-3 gap-8"),
			Div(
				H3(Class("text-white text-lg font-bold mb-4"), g.Text(st.Site.Name)),
				P(g.Text(st.Site.Tagline)),
			),
			Div(
				H3(Class("text-white text-lg font-bold mb-4"), g.Text("Visit")),
				g.Map(st.Site.Address, func(line string) g.Node { return P(g.Text(line)) }),
			),
			Div(
				H3(Class("text-white text-lg font-bold mb-4"), g.Text("Contact")),
				P(g.Text(st.Site.Phone)),
				g.Map(st.Site.Emails, func(e string) g.Node {
					return P(A(Href("mailto:"+e), Class("hover:text-white"), g.Text(e)))
				}),
			),
		),
		P(Class("text-center text-sm mt-8"), g.Textf("© %d %s. All rights reserved.", st.year(), st.Site.Name)),
	)
}

func pageHeader(title, subtitle string) g.Node {
	return Header(Class("bg-slate-900 text-white py-20"),
		Div(Class("max-w-7xl mx-auto px-4 sm:px-6 lg:px-8 text-center"),
			H1(Class("text-5xl md:text-6xl font-bold mb-6"), g.Text(title)),
			P(Class("text-xl text-slate-300 max-w-3xl mx-auto"), g.Text(subtitle)),
		),
	)
}

func container(children ...g.Node) g.Node {
	return Div(Class("max-w-7xl mx-auto px-4 sm:px-6 lg:px-8 py-12"), g.Group(children))
}

// ErrorPage is the full page shown for 404s and other failures.
func ErrorPage(st State, status int, message string) g.Node {
	return layout(st, fmt.Sprintf("%d", status), message,
		container(
			Div(Class("text-center py-24"),
				H1(Class("text-6xl font-bold text-slate-900 mb-4"), g.Textf("%d", status)),
				P(Class("text-xl text-slate-600 mb-8"), g.Text(message)),
				A(Href("/"), Class("inline-block bg-slate-900 text-white px-8 py-3 rounded-lg font-semibold"), g.Text("Back to home")),
			),
		),
	)
}
