package httpapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"eventflow/internal/app/catalog"
	"eventflow/internal/app/storefront"
)

// filterFromQuery overlays the query parameters that are present on base.
// An empty priceMin or priceMax clears that bound.
func filterFromQuery(q url.Values, base catalog.FilterState) (catalog.FilterState, error) {
	f := base
	if q.Has("search") {
		f.Search = q.Get("search")
	}
	if q.Has("category") {
		f.Category = q.Get("category")
	}
	if q.Has("dateFilter") {
		f.DateFilter = q.Get("dateFilter")
	}
	if q.Has("sort") {
		f.Sort = q.Get("sort")
	}

	for _, bound := range []struct {
		name string
		dst  **float64
	}{{"priceMin", &f.PriceMin}, {"priceMax", &f.PriceMax}} {
		if !q.Has(bound.name) {
			continue
		}
		raw := strings.TrimSpace(q.Get(bound.name))
		if raw == "" {
			*bound.dst = nil
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return catalog.FilterState{}, fmt.Errorf("invalid %s", bound.name)
		}
		*bound.dst = &v
	}
	return f, nil
}

func intQuery(q url.Values, name string, def int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	p := s.profile(r)
	q := r.URL.Query()

	f, err := filterFromQuery(q, p.Filters.Load())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	page, err := intQuery(q, "page", 1)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	size, err := intQuery(q, "pageSize", catalog.DefaultPageSize)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, eventsResponse{
		Page:    p.Browse(r.Context(), f, page, size),
		Filters: f,
	})
}

type eventsResponse struct {
	catalog.Page
	Filters catalog.FilterState `json:"filters"`
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event id"})
		return
	}

	detail, err := s.profile(r).View(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleFeatured(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.shop.Catalog().Featured(storefront.FeaturedCount))
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.shop.Catalog().Trending(storefront.TrendingCount))
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("ids"))
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "ids are required"})
		return
	}

	var ids []int
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event id"})
			return
		}
		ids = append(ids, id)
	}

	events, err := s.shop.Catalog().Compare(ids)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.profile(r).RecentlyViewed())
}

func (s *Server) handleGetFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.profile(r).Filters.Load())
}

func (s *Server) handleResetFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.profile(r).Filters.Reset(r.Context()))
}
