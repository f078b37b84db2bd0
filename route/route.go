// Package route maps URL fragments to views and back. The fragment form is
// shared with the original web catalog, so links copied from either side keep
// working.
package route

import "strings"

type Kind int

const (
	Catalog Kind = iota
	Detail
)

// Route is the single source of truth for which view is showing.
type Route struct {
	Kind    Kind
	EventId string
}

const detailPrefix = "#/event/"

// FromFragment parses a fragment into a Route. A fragment matching
// "#/event/<segment>" yields Detail with the segment taken verbatim; the
// segment is not checked against the catalog here. Anything else, including
// the empty fragment, is the catalog.
func FromFragment(fragment string) Route {
	if strings.HasPrefix(fragment, detailPrefix) {
		parts := strings.Split(fragment, "/")
		if len(parts) >= 3 && parts[2] != "" {
			return Route{Kind: Detail, EventId: parts[2]}
		}
	}
	return Route{Kind: Catalog}
}

// ToFragment renders the canonical fragment for a route: "#/event/<id>" for a
// detail view, empty for the catalog.
func ToFragment(r Route) string {
	if r.Kind == Detail && r.EventId != "" {
		return detailPrefix + r.EventId
	}
	return ""
}

// ShareURL builds the deep-link URL for an event under the given base.
func ShareURL(base string, eventId string) string {
	return strings.TrimRight(base, "/") + "/" + ToFragment(Route{Kind: Detail, EventId: eventId})
}
