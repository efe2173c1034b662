package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"eventflow/internal/app/cart"
	"eventflow/internal/app/pricing"
)

type cartResponse struct {
	cart.State
	Pricing pricing.Breakdown `json:"pricing"`
}

func newCartResponse(s cart.State) cartResponse {
	return cartResponse{State: s, Pricing: s.Pricing().Rounded()}
}

type addItemRequest struct {
	EventID  int    `json:"eventId"`
	Zone     string `json:"zone"`
	Quantity int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type couponRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newCartResponse(s.profile(r).Cart.State()))
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newCartResponse(s.profile(r).Cart.Clear(r.Context())))
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Zone == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "zone is required"})
		return
	}
	if req.Quantity < 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "quantity must not be negative"})
		return
	}

	state, err := s.profile(r).AddToCart(r.Context(), req.EventID, req.Zone, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(state))
}

func cartLine(r *http.Request) (int, string, bool) {
	id, err := strconv.Atoi(r.PathValue("eventId"))
	if err != nil {
		return 0, "", false
	}
	return id, r.PathValue("zone"), true
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, zone, ok := cartLine(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event id"})
		return
	}
	var req quantityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	state, err := s.profile(r).SetQuantity(r.Context(), id, zone, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(state))
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	id, zone, ok := cartLine(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event id"})
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(s.profile(r).Cart.RemoveItem(r.Context(), id, zone)))
}

// handleApplyCoupon answers 400 for blank or unknown codes; the cart still
// records the attempt and is returned alongside the error.
func (s *Server) handleApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	state, err := s.profile(r).Cart.ApplyCoupon(r.Context(), req.Code)
	if errors.Is(err, cart.ErrCouponRequired) || errors.Is(err, cart.ErrInvalidCoupon) {
		writeJSON(w, http.StatusBadRequest, couponErrorResponse{
			Error:        err.Error(),
			cartResponse: newCartResponse(state),
		})
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(state))
}

type couponErrorResponse struct {
	Error string `json:"error"`
	cartResponse
}

func (s *Server) handleRemoveCoupon(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newCartResponse(s.profile(r).Cart.RemoveCoupon(r.Context())))
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.profile(r).Suggestions())
}
