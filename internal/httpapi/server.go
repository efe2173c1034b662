package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"eventflow/internal/app/auth"
	"eventflow/internal/app/cart"
	"eventflow/internal/app/catalog"
	"eventflow/internal/app/checkout"
	"eventflow/internal/app/storefront"
	"eventflow/internal/app/validation"
	"eventflow/internal/http/middleware"
	"eventflow/internal/logging"
	"eventflow/internal/metrics"
)

// Storefront resolves the catalog and per-client state.
type Storefront interface {
	Catalog() *catalog.Catalog
	Profile(ctx context.Context, id string) *storefront.Profile
}

// Server wires HTTP handlers to the storefront.
type Server struct {
	shop Storefront
}

// New configures a Server.
func New(shop Storefront) *Server {
	return &Server{shop: shop}
}

// Routes exposes the storefront API.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", metrics.Handler())

	// Catalog
	mux.HandleFunc("GET /api/v1/events", s.handleListEvents)
	mux.HandleFunc("GET /api/v1/events/featured", s.handleFeatured)
	mux.HandleFunc("GET /api/v1/events/trending", s.handleTrending)
	mux.HandleFunc("GET /api/v1/events/compare", s.handleCompare)
	mux.HandleFunc("GET /api/v1/events/{id}", s.handleGetEvent)
	mux.HandleFunc("GET /api/v1/preferences/filters", s.handleGetFilters)
	mux.HandleFunc("DELETE /api/v1/preferences/filters", s.handleResetFilters)

	// Cart
	mux.HandleFunc("GET /api/v1/cart", s.handleGetCart)
	mux.HandleFunc("DELETE /api/v1/cart", s.handleClearCart)
	mux.HandleFunc("POST /api/v1/cart/items", s.handleAddItem)
	mux.HandleFunc("PUT /api/v1/cart/items/{eventId}/{zone}", s.handleUpdateItem)
	mux.HandleFunc("DELETE /api/v1/cart/items/{eventId}/{zone}", s.handleRemoveItem)
	mux.HandleFunc("POST /api/v1/cart/coupon", s.handleApplyCoupon)
	mux.HandleFunc("DELETE /api/v1/cart/coupon", s.handleRemoveCoupon)
	mux.HandleFunc("GET /api/v1/cart/suggestions", s.handleSuggestions)

	// Auth
	mux.HandleFunc("POST /api/v1/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/v1/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /api/v1/auth/session", s.handleSession)

	// Shopper
	mux.HandleFunc("GET /api/v1/me/wishlist", s.handleWishlist)
	mux.HandleFunc("PUT /api/v1/me/wishlist/{id}", s.handleToggleWishlist)
	mux.HandleFunc("GET /api/v1/me/recent", s.handleRecent)
	mux.HandleFunc("GET /api/v1/me/orders", s.handleOrders)

	// Checkout
	mux.HandleFunc("POST /api/v1/checkout", s.handleCheckout)
	mux.HandleFunc("GET /api/v1/payment/test-cards", s.handleTestCards)

	return mux
}

func (s *Server) profile(r *http.Request) *storefront.Profile {
	return s.shop.Profile(r.Context(), middleware.ProfileFrom(r.Context()))
}

// requireUser resolves the bearer token against the profile's session and
// writes a 401 when it does not match.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request, p *storefront.Profile) (auth.SessionUser, bool) {
	token := parseBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return auth.SessionUser{}, false
	}
	user, err := p.Auth.Authenticate(token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return auth.SessionUser{}, false
	}
	return user, true
}

type errorResponse struct {
	Error string `json:"error"`
}

type fieldErrorsResponse struct {
	Errors validation.Errors `json:"errors"`
}

// writeError maps domain errors onto status codes. Unknown errors are logged
// and reported as 500 without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fields validation.Errors
	var declined *checkout.PaymentError

	switch {
	case errors.As(err, &fields):
		writeJSON(w, http.StatusUnprocessableEntity, fieldErrorsResponse{Errors: fields})
	case errors.As(err, &declined):
		writeJSON(w, http.StatusPaymentRequired, errorResponse{Error: declined.Message})
	case errors.Is(err, catalog.ErrEventNotFound), errors.Is(err, catalog.ErrZoneNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, cart.ErrSoldOut), errors.Is(err, cart.ErrInsufficientStock), errors.Is(err, auth.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, cart.ErrCouponRequired), errors.Is(err, cart.ErrInvalidCoupon),
		errors.Is(err, checkout.ErrEmptyCart), errors.Is(err, catalog.ErrCompareLimit):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusRequestTimeout, errorResponse{Error: "request cancelled"})
	default:
		logging.WithContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return false
	}
	return true
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
