// Package site models the closed set of pages the site serves.
package site

// Page identifies one top-level page. It is a closed enum: the zero value is
// not a page and renders as "unknown".
type Page int

const (
	PageHome Page = iota + 1
	PageProjects
	PageTeam
	PageBlog
	PageContact
)

var pages = []Page{PageHome, PageProjects, PageTeam, PageBlog, PageContact}

var pageIDs = map[Page]string{
	PageHome:     "home",
	PageProjects: "projects",
	PageTeam:     "team",
	PageBlog:     "blog",
	PageContact:  "contact",
}

var pageLabels = map[Page]string{
	PageHome:     "Home",
	PageProjects: "Projects",
	PageTeam:     "Team",
	PageBlog:     "Blog",
	PageContact:  "Contact",
}

// Pages returns every page in navigation order.
func Pages() []Page {
	out := make([]Page, len(pages))
	copy(out, pages)
	return out
}

// String returns the page id.
func (p Page) String() string {
	if id, ok := pageIDs[p]; ok {
		return id
	}
	return "unknown"
}

// Label is the navigation text.
func (p Page) Label() string { return pageLabels[p] }

// Path is the URL path the page is served under.
func (p Page) Path() string {
	if p == PageHome {
		return "/"
	}
	id, ok := pageIDs[p]
	if !ok {
		return "/"
	}
	return "/" + id
}

// Categorized reports whether the page's records carry categories a visitor
// can filter by. Every other listing stays on "all".
func (p Page) Categorized() bool {
	return p == PageProjects || p == PageBlog
}

var pageNouns = map[Page]string{
	PageHome:     "featured projects",
	PageProjects: "projects",
	PageTeam:     "team members",
	PageBlog:     "posts",
}

// Noun names the records a page lists, as used in its empty state. Pages
// without records return "".
func (p Page) Noun() string { return pageNouns[p] }
