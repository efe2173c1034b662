package catalog

import (
	"sort"
	"strings"
)

// Sentinel and enum values for FilterState.
const (
	CategoryAll = "all"

	DateAll       = "all"
	DateUpcoming  = "upcoming"
	DateThisWeek  = "this_week"
	DateThisMonth = "this_month"

	SortPopular   = "popular"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "newest"
	SortRating    = "rating"
)

// FilterState narrows and orders the catalog.
type FilterState struct {
	Search     string   `json:"search"`
	Category   string   `json:"category"`
	PriceMin   *float64 `json:"priceMin,omitempty"`
	PriceMax   *float64 `json:"priceMax,omitempty"`
	DateFilter string   `json:"dateFilter"`
	Sort       string   `json:"sort"`
}

// DefaultFilters is the unfiltered, popularity-sorted view.
func DefaultFilters() FilterState {
	return FilterState{
		Category:   CategoryAll,
		DateFilter: DateAll,
		Sort:       SortPopular,
	}
}

// BoostFunc supplies a popularity boost for an event id.
type BoostFunc func(eventID int) float64

// Filter runs search, category, price, date and sort stages in that order and
// returns a new slice. events is not modified.
func Filter(events []Event, f FilterState, boost BoostFunc, today Date) []Event {
	out := make([]Event, 0, len(events))
	// Surrounding spaces are part of the query; they only decide blankness.
	q := strings.ToLower(f.Search)
	searching := strings.TrimSpace(q) != ""

	for _, e := range events {
		if searching && !matchesSearch(e, q) {
			continue
		}
		if f.Category != "" && f.Category != CategoryAll && e.Category != f.Category {
			continue
		}
		if f.PriceMin != nil && e.Price < *f.PriceMin {
			continue
		}
		if f.PriceMax != nil && e.Price > *f.PriceMax {
			continue
		}
		if !matchesDate(e, f.DateFilter, today) {
			continue
		}
		out = append(out, e)
	}

	sortEvents(out, f.Sort, boost)
	return out
}

func matchesSearch(e Event, q string) bool {
	if strings.Contains(strings.ToLower(e.Title), q) ||
		strings.Contains(strings.ToLower(e.Venue), q) ||
		strings.Contains(strings.ToLower(e.City), q) {
		return true
	}
	for _, t := range e.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

func matchesDate(e Event, filter string, today Date) bool {
	switch filter {
	case DateUpcoming, DateThisWeek, DateThisMonth:
	default:
		return true
	}

	d, err := ParseDate(e.Date)
	if err != nil {
		return false
	}
	if d.Before(today) {
		return false
	}
	switch filter {
	case DateThisWeek:
		return !d.After(today.EndOfWeek())
	case DateThisMonth:
		return !d.After(today.EndOfMonth())
	}
	return true
}

func sortEvents(events []Event, mode string, boost BoostFunc) {
	if mode == "" {
		mode = SortPopular
	}

	var less func(a, b Event) bool
	switch mode {
	case SortPopular:
		score := func(e Event) float64 {
			s := float64(e.PopularityScore)
			if boost != nil {
				s += boost(e.ID)
			}
			return s
		}
		less = func(a, b Event) bool { return score(a) > score(b) }
	case SortPriceAsc:
		less = func(a, b Event) bool { return a.Price < b.Price }
	case SortPriceDesc:
		less = func(a, b Event) bool { return a.Price > b.Price }
	case SortNewest:
		less = func(a, b Event) bool { return a.CreatedAt.After(b.CreatedAt) }
	case SortRating:
		less = func(a, b Event) bool { return a.Rating > b.Rating }
	default:
		return
	}

	sort.SliceStable(events, func(i, j int) bool { return less(events[i], events[j]) })
}

// DefaultPageSize matches the storefront grid.
const DefaultPageSize = 6

// Page is one slice of a filtered result.
type Page struct {
	Items    []Event `json:"items"`
	Page     int     `json:"page"`
	PageSize int     `json:"pageSize"`
	Total    int     `json:"total"`
	HasMore  bool    `json:"hasMore"`
}

// Paginate cuts events into 1-based pages. Out-of-range pages are empty.
func Paginate(events []Event, page, size int) Page {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}

	p := Page{Items: []Event{}, Page: page, PageSize: size, Total: len(events)}
	pages := len(events) / size
	if len(events)%size != 0 {
		pages++
	}
	if page > pages {
		return p
	}
	start := (page - 1) * size
	end := start + size
	if end > len(events) {
		end = len(events)
	}
	p.Items = append(p.Items, events[start:end]...)
	p.HasMore = end < len(events)
	return p
}
