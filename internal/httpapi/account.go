package httpapi

import (
	"net/http"
	"strconv"

	"eventflow/internal/app/auth"
	"eventflow/internal/app/checkout"
	"eventflow/internal/app/payment"
	"eventflow/internal/app/validation"
)

type sessionResponse struct {
	Status auth.Status       `json:"status"`
	User   *auth.SessionUser `json:"user,omitempty"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req validation.SignupForm
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.Signup(req).Err(); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := s.profile(r).Auth.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req validation.LoginForm
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.Login(req).Err(); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := s.profile(r).Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.profile(r).Auth.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	p := s.profile(r)
	resp := sessionResponse{Status: p.Auth.Status()}
	if user, ok := p.Auth.Current(); ok {
		resp.User = &user
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWishlist(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.profile(r).WishlistEvents())
}

type wishlistToggleResponse struct {
	EventID    int  `json:"eventId"`
	Wishlisted bool `json:"wishlisted"`
}

func (s *Server) handleToggleWishlist(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event id"})
		return
	}

	added, err := s.profile(r).ToggleWishlist(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wishlistToggleResponse{EventID: id, Wishlisted: added})
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	p := s.profile(r)
	if _, ok := s.requireUser(w, r, p); !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.Checkout.Orders(r.Context()))
}

type checkoutRequest struct {
	Address validation.Address `json:"address"`
	Card    checkout.Card      `json:"card"`
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	p := s.profile(r)
	user, ok := s.requireUser(w, r, p)
	if !ok {
		return
	}

	var req checkoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := p.Checkout.Checkout(r.Context(), req.Address, req.Card, user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleTestCards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, payment.TestCards)
}
