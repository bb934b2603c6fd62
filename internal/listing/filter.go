// Package listing implements the load-once, filter, select pattern shared by
// the projects, team and blog pages.
//
// A ViewModel loads its collection once per activation, keeps it in memory,
// and derives the category-filtered subset on demand. The Overlay holds the
// record whose detail view replaces the listing, and Decide picks which
// region (placeholder, empty state or listing) is visible.
package listing

// All is the category value that matches every record.
const All = "all"

// Record is what the listing needs to know about an item.
type Record interface {
	RecordID() string
	RecordCategory() string
}

// Filter returns the records whose category equals active, in their original
// order. All returns the input unchanged. A category nothing belongs to
// yields an empty, non-nil slice.
func Filter[T Record](records []T, active string) []T {
	if active == All {
		return records
	}
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if rec.RecordCategory() == active {
			out = append(out, rec)
		}
	}
	return out
}

// NormalizeCategory maps an empty selection to All.
func NormalizeCategory(c string) string {
	if c == "" {
		return All
	}
	return c
}
