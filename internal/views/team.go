package views

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/pqui/archstudio/internal/listing"
	"github.com/pqui/archstudio/internal/model"
)

var teamKind = listingKind[model.TeamMember]{
	grid:   "grid grid-cols-1 md:grid-cols-2 lg:grid-cols-3 gap-8",
	card:   memberCard,
	detail: memberDetail,
}

// TeamPage is the full team page.
func TeamPage(st State, viewID string, snap listing.Snapshot[model.TeamMember]) g.Node {
	title := "Team"
	if snap.Overlay == listing.Open {
		title = snap.Selected.Name
	}
	return layout(st, title, "Meet the architects and designers of the studio.",
		pageHeader("Our Team", "Meet the talented architects and designers behind our innovative projects"),
		container(TeamRegion(st, viewID, snap)),
		joinTeam(st),
	)
}

// TeamRegion is the swappable listing region of the team page.
func TeamRegion(st State, viewID string, snap listing.Snapshot[model.TeamMember]) g.Node {
	return region(st, viewID, teamKind, snap)
}

func memberCard(st State, viewID string, m model.TeamMember) g.Node {
	return Article(Class("bg-white rounded-lg overflow-hidden shadow-md hover:shadow-xl transition-all duration-300"),
		openLink(st, viewID, m.ID,
			Div(Class("relative h-80 overflow-hidden"),
				image(st, m.Photo, m.Name, "w-full h-full object-cover group-hover:scale-105 transition-transform duration-500"),
			),
			Div(Class("p-6"),
				H3(Class("text-xl font-bold text-slate-900 mb-1"), g.Text(m.Name)),
				P(Class("text-slate-500 font-medium mb-3"), g.Text(m.Role)),
				P(Class("text-slate-600 line-clamp-3"), g.Text(m.Bio)),
			),
		),
	)
}

func memberLinks(m model.TeamMember) g.Node {
	return Div(Class("flex gap-4"),
		g.If(m.Email != "",
			A(Href("mailto:"+m.Email), Class("text-slate-600 hover:text-slate-900 underline"), g.Text(m.Email)),
		),
		g.If(m.LinkedIn != "",
			A(Href(m.LinkedIn), Target("_blank"), Rel("noopener noreferrer"),
				Class("text-slate-600 hover:text-slate-900 underline"), g.Text("LinkedIn")),
		),
	)
}

func memberDetail(st State, viewID, category string, m model.TeamMember) g.Node {
	return Article(Class("bg-white rounded-lg shadow-lg overflow-hidden"),
		Div(Class("p-8"), backLink(st, viewID, category, "Back to team")),
		Div(Class("grid grid-cols-1 md:grid-cols-2 gap-8 p-8 pt-0"),
			image(st, m.Photo, m.Name, "w-full h-96 object-cover rounded-lg"),
			Div(
				H2(Class("text-4xl font-bold text-slate-900 mb-2"), g.Text(m.Name)),
				P(Class("text-xl text-slate-500 mb-6"), g.Text(m.Role)),
				P(Class("text-lg text-slate-600 mb-8 leading-relaxed"), g.Text(m.Bio)),
				memberLinks(m),
			),
		),
	)
}

func joinTeam(st State) g.Node {
	return Section(Class("bg-white py-20"),
		Div(Class("max-w-5xl mx-auto px-4 sm:px-6 lg:px-8 text-center"),
			H2(Class("text-3xl md:text-4xl font-bold text-slate-900 mb-6"), g.Text("Join Our Team")),
			P(Class("text-lg text-slate-600 mb-8 leading-relaxed"),
				g.Text("We're always looking for talented individuals who share our passion for innovative design. If you're interested in joining our team, we'd love to hear from you."),
			),
			A(Href("mailto:"+st.Site.CareersEmail),
				Class("inline-block bg-slate-900 text-white px-8 py-4 rounded-lg font-semibold hover:bg-slate-800 transition-colors"),
				g.Text("View Open Positions"),
			),
		),
	)
}
