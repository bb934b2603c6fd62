// Package pdfutil turns PDF documents, typically practice papers and award
// write-ups, into text that can be published as a blog post.
package pdfutil

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

// Document is the extracted text of a PDF, split into paragraphs.
type Document struct {
	Pages      int
	Paragraphs []string
}

// Extract reads PDF bytes with ledongthuc/pdf.
func Extract(data []byte) (Document, error) {
	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Document{}, fmt.Errorf("new pdf reader: %w", err)
	}
	var builder strings.Builder
	total := doc.NumPage()
	for page := 1; page <= total; page++ {
		p := doc.Page(page)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			return Document{}, fmt.Errorf("page %d: %w", page, err)
		}
		builder.WriteString(content)
		builder.WriteString("\n\n")
	}
	return Document{Pages: total, Paragraphs: Paragraphs(builder.String())}, nil
}

// ExtractFromReader drains r before passing along to Extract.
func ExtractFromReader(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read pdf: %w", err)
	}
	return Extract(data)
}

// Paragraphs splits text on blank lines and collapses the whitespace inside
// each paragraph, which undoes the hard wrapping of PDF text lines.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, block := range strings.Split(text, "\n\n") {
		if p := strings.Join(strings.Fields(block), " "); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Title is the first paragraph, cut at max runes.
func (d Document) Title(max int) string {
	if len(d.Paragraphs) == 0 {
		return ""
	}
	r := []rune(d.Paragraphs[0])
	if max > 0 && len(r) > max {
		return strings.TrimSpace(string(r[:max]))
	}
	return string(r)
}

// Markdown joins the paragraphs as markdown paragraphs. skip drops leading
// paragraphs already used elsewhere, such as the title.
func (d Document) Markdown(skip int) string {
	if skip >= len(d.Paragraphs) {
		return ""
	}
	if skip < 0 {
		skip = 0
	}
	return strings.Join(d.Paragraphs[skip:], "\n\n")
}
