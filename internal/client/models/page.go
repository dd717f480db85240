package models

import (
	"strings"
)

const DefaultPageSize = 10

// MediaPage is one page of a filtered media list.
type MediaPage struct {
	Items      []MediaItem
	Query      string
	Page       int
	TotalPages int
	Total      int
}

// Filter keeps items whose file name contains query, ignoring case. An
// empty query keeps everything.
func Filter(items []MediaItem, query string) []MediaItem {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}
	out := make([]MediaItem, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.FileName), q) {
			out = append(out, it)
		}
	}
	return out
}

// Paginate filters items and cuts out the 1-based page, clamped to the
// available range. An empty result is page 1 of 1.
func Paginate(items []MediaItem, query string, page, size int) MediaPage {
	if size <= 0 {
		size = DefaultPageSize
	}
	filtered := Filter(items, query)

	total := len(filtered)
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	page = min(max(page, 1), pages)

	start := min((page-1)*size, total)
	end := min(start+size, total)

	return MediaPage{
		Items:      filtered[start:end],
		Query:      query,
		Page:       page,
		TotalPages: pages,
		Total:      total,
	}
}
