package catalog

import (
	"strings"

	"event-catalog-cli/model"
)

// PerPage is the fixed catalog page size.
const PerPage = 8

// Apply returns the events whose title, artist names or city contain query,
// case-insensitively. An empty or whitespace-only query matches everything.
// Source order is preserved.
func Apply(events []model.EventRecord, query string) []model.EventRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return events
	}
	var filtered []model.EventRecord
	for _, ev := range events {
		parts := make([]string, 0, len(ev.Artists)+2)
		parts = append(parts, ev.Title)
		parts = append(parts, ev.Artists...)
		parts = append(parts, ev.City)
		if strings.Contains(strings.ToLower(strings.Join(parts, " ")), q) {
			filtered = append(filtered, ev)
		}
	}
	return filtered
}

// Page is one slice of the filtered catalog. TotalPages of 0 or 1 both mean
// pagination controls are pointless.
type Page struct {
	Items      []model.EventRecord
	TotalPages int
}

// Paginate slices filtered into the 1-based page of size perPage. Pages out
// of range clamp instead of erroring, so the returned page is never empty
// while filtered has items.
func Paginate(filtered []model.EventRecord, page int, perPage int) Page {
	if perPage < 1 {
		perPage = PerPage
	}
	totalPages := (len(filtered) + perPage - 1) / perPage
	if totalPages == 0 {
		return Page{TotalPages: 0}
	}
	page = ClampPage(page, totalPages)
	start := (page - 1) * perPage
	end := min(start+perPage, len(filtered))
	return Page{Items: filtered[start:end], TotalPages: totalPages}
}

// ClampPage keeps page within [1, totalPages]; with no pages it is 1.
func ClampPage(page int, totalPages int) int {
	if totalPages < 1 || page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}
