package views

import (
	"strconv"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/pqui/archstudio/internal/listing"
	"github.com/pqui/archstudio/internal/model"
	"github.com/pqui/archstudio/internal/site"
)

var projectsKind = listingKind[model.Project]{
	grid:   "grid grid-cols-1 md:grid-cols-2 lg:grid-cols-3 gap-8",
	card:   projectCard,
	detail: projectDetail,
}

// ProjectsPage is the full projects page around its listing region.
func ProjectsPage(st State, viewID string, snap listing.Snapshot[model.Project]) g.Node {
	title := "Projects"
	if snap.Overlay == listing.Open {
		title = snap.Selected.Title
	}
	return layout(st, title, "Discover our portfolio of innovative architectural projects.",
		pageHeader("Our Projects", "Discover our portfolio of innovative architectural projects across various sectors"),
		container(ProjectsRegion(st, viewID, snap)),
	)
}

// ProjectsRegion is the swappable listing region of the projects page.
func ProjectsRegion(st State, viewID string, snap listing.Snapshot[model.Project]) g.Node {
	return region(st, viewID, projectsKind, snap)
}

func statusBadge(s model.ProjectStatus) g.Node {
	return Span(Class("px-3 py-1 rounded-full text-xs font-medium capitalize "+statusClass(s)), g.Text(string(s)))
}

func projectCard(st State, viewID string, p model.Project) g.Node {
	return Article(Class("bg-white rounded-lg overflow-hidden shadow-md hover:shadow-xl transition-all duration-300"),
		openLink(st, viewID, p.ID,
			Div(Class("relative h-64 overflow-hidden"),
				image(st, p.FeaturedImage, p.Title, "w-full h-full object-cover group-hover:scale-110 transition-transform duration-500"),
				Div(Class("absolute top-4 right-4"), statusBadge(p.Status)),
			),
			Div(Class("p-6"),
				Div(Class("flex justify-between text-sm text-slate-500 mb-2 uppercase tracking-wide"),
					Span(g.Text(categoryLabel(st.Site, site.PageProjects, p.Category))),
					Span(g.Text(strconv.Itoa(p.Year))),
				),
				H3(Class("text-xl font-bold text-slate-900 mb-2"), g.Text(p.Title)),
				P(Class("text-slate-600 line-clamp-2"), g.Text(p.Description)),
				P(Class("text-sm text-slate-500 mt-3"), g.Text(p.Location)),
			),
		),
	)
}

func projectDetail(st State, viewID, category string, p model.Project) g.Node {
	fact := func(label, value string) g.Node {
		return Div(
			P(Class("text-sm text-slate-500"), g.Text(label)),
			P(Class("font-medium text-slate-900 capitalize"), g.Text(value)),
		)
	}
	return Article(Class("bg-white rounded-lg shadow-lg overflow-hidden"),
		Div(Class("p-8"), backLink(st, viewID, category, "Back to projects")),
		image(st, p.FeaturedImage, p.Title, "w-full h-96 object-cover"),
		Div(Class("p-8"),
			Div(Class("flex items-center gap-3 mb-4"),
				Span(Class("text-sm text-slate-500 uppercase tracking-wide"), g.Text(categoryLabel(st.Site, site.PageProjects, p.Category))),
				statusBadge(p.Status),
			),
			H2(Class("text-4xl font-bold text-slate-900 mb-4"), g.Text(p.Title)),
			P(Class("text-lg text-slate-600 mb-8 leading-relaxed"), g.Text(p.Description)),
			Div(Class("grid grid-cols-2 md:grid-cols-4 gap-6 mb-8 border-t border-b border-slate-200 py-6"),
				fact("Location", orNA(p.Location)),
				fact("Year", strconv.Itoa(p.Year)),
				fact("Area", orNA(p.Area)),
				fact("Status", string(p.Status)),
			),
			g.If(len(p.Images) > 0,
				Div(Class("grid grid-cols-1 md:grid-cols-2 gap-4"),
					g.Map(p.Images, func(ref string) g.Node {
						return image(st, ref, p.Title, "w-full h-64 object-cover rounded-lg")
					}),
				),
			),
		),
	)
}
