package views

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/pqui/archstudio/internal/listing"
	"github.com/pqui/archstudio/internal/model"
	"github.com/pqui/archstudio/internal/site"
)

var blogKind = listingKind[model.BlogPost]{
	grid:   "grid grid-cols-1 md:grid-cols-2 lg:grid-cols-3 gap-8",
	card:   postCard,
	detail: postDetail,
}

// BlogPage is the full blog page.
func BlogPage(st State, viewID string, snap listing.Snapshot[model.BlogPost]) g.Node {
	title, desc := "Blog", "Thoughts, stories, and insights from our team."
	if snap.Overlay == listing.Open {
		title, desc = snap.Selected.Title, snap.Selected.Excerpt
	}
	return layout(st, title, desc,
		pageHeader("Blog & Insights", "Thoughts, stories, and insights from our team"),
		container(BlogRegion(st, viewID, snap)),
	)
}

// BlogRegion is the swappable listing region of the blog page.
func BlogRegion(st State, viewID string, snap listing.Snapshot[model.BlogPost]) g.Node {
	return region(st, viewID, blogKind, snap)
}

func authorName(p model.BlogPost) string {
	if p.Author == nil {
		return ""
	}
	return p.Author.Name
}

func postCard(st State, viewID string, p model.BlogPost) g.Node {
	return Article(Class("bg-white rounded-lg overflow-hidden shadow-md hover:shadow-xl transition-all duration-300"),
		openLink(st, viewID, p.ID,
			Div(Class("relative h-56 overflow-hidden"),
				image(st, p.FeaturedImage, p.Title, "w-full h-full object-cover group-hover:scale-110 transition-transform duration-500"),
			),
			Div(Class("p-6"),
				Div(Class("flex justify-between text-sm text-slate-500 mb-3"),
					Span(Class("uppercase tracking-wide"), g.Text(categoryLabel(st.Site, site.PageBlog, p.Category))),
					Span(g.Text(formatDate(p.CreatedAt))),
				),
				H3(Class("text-xl font-bold text-slate-900 mb-2"), g.Text(p.Title)),
				P(Class("text-slate-600 line-clamp-3 mb-4"), g.Text(p.Excerpt)),
				g.If(p.Author != nil, P(Class("text-sm text-slate-500"), g.Text("By "+authorName(p)))),
			),
		),
	)
}

func postDetail(st State, viewID, category string, p model.BlogPost) g.Node {
	return Article(Class("max-w-4xl mx-auto"),
		backLink(st, viewID, category, "Back to blog"),
		image(st, p.FeaturedImage, p.Title, "w-full h-96 object-cover rounded-lg mb-8"),
		Div(Class("flex items-center gap-4 text-sm text-slate-500 mb-4"),
			Span(Class("uppercase tracking-wide"), g.Text(categoryLabel(st.Site, site.PageBlog, p.Category))),
			Span(g.Text(formatDate(p.CreatedAt))),
		),
		H1(Class("text-4xl md:text-5xl font-bold text-slate-900 mb-6 leading-tight"), g.Text(p.Title)),
		g.If(p.Author != nil, authorCard(st, p.Author)),
		Div(Class("prose prose-lg max-w-none text-slate-700"), markdownBody(p.Content)),
	)
}

func authorCard(st State, m *model.TeamMember) g.Node {
	return Div(Class("flex items-center gap-4 mb-8 pb-8 border-b border-slate-200"),
		image(st, m.Photo, m.Name, "w-14 h-14 rounded-full object-cover"),
		Div(
			P(Class("font-semibold text-slate-900"), g.Text(m.Name)),
			P(Class("text-sm text-slate-500"), g.Text(m.Role)),
		),
	)
}
