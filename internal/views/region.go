package views

import (
	"net/url"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/pqui/archstudio/internal/config"
	"github.com/pqui/archstudio/internal/listing"
	"github.com/pqui/archstudio/internal/site"
	"github.com/pqui/archstudio/internal/textutil"
)

// listingKind describes how one listing page draws its records.
type listingKind[T listing.Record] struct {
	grid   string
	card   func(st State, viewID string, rec T) g.Node
	detail func(st State, viewID, category string, rec T) g.Node
}

func categoriesFor(cfg config.SiteConfig, p site.Page) []config.Category {
	switch p {
	case site.PageProjects:
		return cfg.ProjectCategories
	case site.PageBlog:
		return cfg.BlogCategories
	default:
		return nil
	}
}

// categoryLabel returns the catalog label for id, or a title-cased id.
func categoryLabel(cfg config.SiteConfig, p site.Page, id string) string {
	for _, c := range categoriesFor(cfg, p) {
		if c.ID == id {
			return c.Label
		}
	}
	return textutil.Label(id)
}

// region renders the swappable part of a listing page. With the detail view
// open it replaces the whole region; otherwise the category bar sits above
// whatever the loading gate decided.
func region[T listing.Record](st State, viewID string, k listingKind[T], snap listing.Snapshot[T]) g.Node {
	if snap.Overlay == listing.Open {
		return Div(ID(RegionID), k.detail(st, viewID, snap.Category, snap.Selected))
	}

	var body g.Node
	switch snap.Region.Kind {
	case listing.RegionLoading:
		body = loadingGate(viewID, snap.Category)
	case listing.RegionEmpty:
		body = emptyState(snap.Region.Message)
	default:
		body = Div(Class(k.grid), g.Map(snap.Visible, func(rec T) g.Node { return k.card(st, viewID, rec) }))
	}

	cats := categoriesFor(st.Site, st.Page)
	return Div(ID(RegionID),
		g.If(len(cats) > 0, categoryBar(st, viewID, cats, snap.Category)),
		body,
	)
}

// loadingGate is the placeholder shown until the load settles. htmx asks for
// the settled region as soon as it is on the page. Category links always send
// their category; the gate only repeats a non-default one.
func loadingGate(viewID, category string) g.Node {
	return Div(
		Class("text-center py-12"),
		g.Attr("hx-get", regionURL(viewID, category)),
		g.Attr("hx-trigger", "load delay:100ms"),
		g.Attr("hx-target", "#"+RegionID),
		g.Attr("hx-swap", "outerHTML"),
		Role("status"),
		Div(Class("animate-spin w-12 h-12 border-4 border-slate-300 border-t-slate-800 rounded-full mx-auto")),
		Span(Class("sr-only"), g.Text("Loading…")),
	)
}

func regionURL(viewID, category string) string {
	u := ViewPath(viewID)
	if category != "" && category != listing.All {
		u += "?category=" + url.QueryEscape(category)
	}
	return u
}

func emptyState(message string) g.Node {
	return Div(Class("text-center py-12"),
		P(Class("text-xl text-slate-600"), g.Text(message)),
	)
}

func categoryBar(st State, viewID string, cats []config.Category, active string) g.Node {
	return Div(Class("flex flex-wrap gap-3 justify-center mb-12"),
		g.Map(cats, func(c config.Category) g.Node {
			cls := "px-6 py-3 rounded-lg font-medium transition-all "
			if c.ID == active {
				cls += "bg-slate-900 text-white"
			} else {
				cls += "bg-white text-slate-600 hover:bg-slate-100"
			}
			page := CategoryPath(st.Page, c.ID)
			return A(Href(page), Class(cls),
				g.Attr("hx-get", ViewPath(viewID)+"?category="+url.QueryEscape(c.ID)),
				g.Attr("hx-target", "#"+RegionID),
				g.Attr("hx-swap", "outerHTML"),
				g.Attr("hx-push-url", page),
				g.Text(c.Label),
			)
		}),
	)
}

// openLink opens a record's detail view in place; without htmx it is a
// plain link to the record's page.
func openLink(st State, viewID, id string, children ...g.Node) g.Node {
	path := RecordPath(st.Page, id)
	return A(Href(path), Class("group block"),
		g.Attr("hx-get", ViewPath(viewID)+"/records/"+url.PathEscape(id)),
		g.Attr("hx-target", "#"+RegionID),
		g.Attr("hx-swap", "outerHTML"),
		g.Attr("hx-push-url", path),
		g.Group(children),
	)
}

// backLink closes the detail view and returns to the listing.
func backLink(st State, viewID, category, text string) g.Node {
	page := CategoryPath(st.Page, category)
	return A(Href(page),
		Class("inline-flex items-center text-slate-600 hover:text-slate-900 font-medium mb-8"),
		g.Attr("hx-get", ViewPath(viewID)+"/close"),
		g.Attr("hx-target", "#"+RegionID),
		g.Attr("hx-swap", "outerHTML"),
		g.Attr("hx-push-url", page),
		g.Text("← "+text),
	)
}

func image(st State, ref, alt, cls string) g.Node {
	src := st.image(ref)
	if src == "" {
		return Div(Class(cls+" bg-slate-200"))
	}
	return Img(Src(src), Alt(alt), Class(cls), g.Attr("loading", "lazy"))
}
