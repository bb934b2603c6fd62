package views

import (
	"strconv"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/pqui/archstudio/internal/config"
	"github.com/pqui/archstudio/internal/listing"
	"github.com/pqui/archstudio/internal/model"
	"github.com/pqui/archstudio/internal/site"
)

// Featured cards link to the project page rather than opening in place.
var featuredKind = listingKind[model.Project]{
	grid:   "grid grid-cols-1 md:grid-cols-3 gap-8",
	card:   featuredCard,
	detail: projectDetail,
}

// HomePage renders the landing page with the featured projects region.
func HomePage(st State, viewID string, snap listing.Snapshot[model.Project]) g.Node {
	return layout(st, "", st.Site.Tagline,
		hero(st),
		stats(st),
		Section(Class("py-20"),
			Div(Class("max-w-7xl mx-auto px-4 sm:px-6 lg:px-8"),
				Div(Class("text-center mb-12"),
					H2(Class("text-4xl font-bold text-slate-900 mb-4"), g.Text("Featured Projects")),
					P(Class("text-xl text-slate-600"), g.Text("Explore our latest architectural achievements")),
				),
				FeaturedRegion(st, viewID, snap),
				Div(Class("text-center mt-12"),
					A(Href(site.PageProjects.Path()),
						Class("inline-block bg-slate-900 text-white px-8 py-4 rounded-lg font-semibold hover:bg-slate-800 transition-colors"),
						g.Text("View All Projects"),
					),
				),
			),
		),
		about(),
	)
}

// FeaturedRegion is the swappable featured projects region on the home page.
func FeaturedRegion(st State, viewID string, snap listing.Snapshot[model.Project]) g.Node {
	return region(st, viewID, featuredKind, snap)
}

func hero(st State) g.Node {
	return Section(Class("relative h-[600px] flex items-center justify-center text-white"),
		Div(Class("absolute inset-0 bg-cover bg-center"), Style("background-image: url('"+st.image(st.Site.HeroImageURL)+"')")),
		Div(Class("absolute inset-0 bg-slate-900/60")),
		Div(Class("relative text-center px-4"),
			H1(Class("text-5xl md:text-7xl font-bold mb-6"), g.Text(st.Site.Tagline)),
			P(Class("text-xl md:text-2xl text-slate-200 mb-8 max-w-3xl mx-auto"),
				g.Text("Award-winning architecture that blends innovation, sustainability, and timeless design"),
			),
			A(Href(site.PageContact.Path()),
				Class("inline-block bg-white text-slate-900 px-8 py-4 rounded-lg font-semibold hover:bg-slate-100 transition-colors"),
				g.Text("Start Your Project"),
			),
		),
	)
}

func stats(st State) g.Node {
	return Section(Class("bg-white py-16 border-b border-slate-200"),
		Div(Class("max-w-7xl mx-auto px-4 sm:px-6 lg:px-8 grid grid-cols-1 md:grid-cols-3 gap-8 text-center"),
			g.Map(st.Site.Stats, func(s config.Stat) g.Node {
				return Div(
					P(Class("text-5xl font-bold text-slate-900 mb-2"), g.Text(s.Value)),
					P(Class("text-slate-600 font-medium"), g.Text(s.Label)),
				)
			}),
		),
	)
}

func featuredCard(st State, _ string, p model.Project) g.Node {
	return Article(Class("bg-white rounded-lg overflow-hidden shadow-md hover:shadow-xl transition-all duration-300"),
		A(Href(RecordPath(site.PageProjects, p.ID)), Class("group block"),
			Div(Class("relative h-64 overflow-hidden"),
				image(st, p.FeaturedImage, p.Title, "w-full h-full object-cover group-hover:scale-110 transition-transform duration-500"),
				Div(Class("absolute top-4 left-4 bg-white px-3 py-1 rounded-full text-sm font-semibold"), g.Text(strconv.Itoa(p.Year))),
			),
			Div(Class("p-6"),
				P(Class("text-sm text-slate-500 uppercase tracking-wide mb-2"), g.Text(categoryLabel(st.Site, site.PageProjects, p.Category))),
				H3(Class("text-xl font-bold text-slate-900 mb-2"), g.Text(p.Title)),
				P(Class("text-slate-600 line-clamp-2 mb-3"), g.Text(p.Description)),
				P(Class("text-sm text-slate-500"), g.Text(p.Location)),
			),
		),
	)
}

func about() g.Node {
	return Section(Class("bg-slate-900 text-white py-20"),
		Div(Class("max-w-5xl mx-auto px-4 sm:px-6 lg:px-8 text-center"),
			H2(Class("text-4xl font-bold mb-6"), g.Text("Creating Tomorrow's Landmarks Today")),
			P(Class("text-lg text-slate-300 mb-6 leading-relaxed"),
				g.Text("For over two decades, we've been at the forefront of architectural innovation, creating spaces that inspire, endure, and enhance the communities they serve."),
			),
			P(Class("text-lg text-slate-300 mb-8 leading-relaxed"),
				g.Text("Our multidisciplinary team combines creative vision with technical expertise to deliver projects that exceed expectations and stand the test of time."),
			),
			A(Href(site.PageTeam.Path()),
				Class("inline-block border-2 border-white px-8 py-4 rounded-lg font-semibold hover:bg-white hover:text-slate-900 transition-colors"),
				g.Text("Meet Our Team"),
			),
		),
	)
}
