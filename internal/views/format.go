package views

import (
	"time"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	g "maragu.dev/gomponents"

	"github.com/pqui/archstudio/internal/model"
)

// markdownBody renders a post body. Raw HTML in the source is dropped and
// links with unsafe schemes such as javascript: are not linked.
func markdownBody(src string) g.Node {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.SkipHTML | mdhtml.Safelink | mdhtml.HrefTargetBlank | mdhtml.NofollowLinks,
	})
	return g.Raw(string(markdown.ToHTML([]byte(src), p, r)))
}

// formatDate renders dates as "January 2, 2006".
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

func statusClass(s model.ProjectStatus) string {
	switch s {
	case model.StatusCompleted:
		return "bg-green-100 text-green-800"
	case model.StatusOngoing:
		return "bg-blue-100 text-blue-800"
	case model.StatusConcept:
		return "bg-purple-100 text-purple-800"
	default:
		return "bg-slate-100 text-slate-800"
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
