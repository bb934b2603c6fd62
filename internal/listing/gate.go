package listing

import "fmt"

// RegionKind is what the listing area shows.
type RegionKind int

const (
	RegionLoading RegionKind = iota
	RegionEmpty
	RegionListing
)

func (k RegionKind) String() string {
	switch k {
	case RegionLoading:
		return "loading"
	case RegionEmpty:
		return "empty"
	default:
		return "listing"
	}
}

// Region is the decision made by Decide. Message is set only for RegionEmpty.
type Region struct {
	Kind    RegionKind
	Message string
}

// Decide picks the visible region. While loading only the placeholder is
// shown, whatever filtered holds; the empty state is only possible once the
// load has settled.
func Decide[T any](loading bool, filtered []T, active, kind string) Region {
	if loading {
		return Region{Kind: RegionLoading}
	}
	if len(filtered) == 0 {
		return Region{Kind: RegionEmpty, Message: EmptyMessage(kind, active)}
	}
	return Region{Kind: RegionListing}
}

// EmptyMessage is the text shown when a settled listing has nothing to show.
func EmptyMessage(kind, active string) string {
	if NormalizeCategory(active) != All {
		return fmt.Sprintf("No %s found in this category.", kind)
	}
	return fmt.Sprintf("No %s found.", kind)
}
