package main

import (
	"net/http"
	"time"

	"eventflow/internal/http/middleware"
	"eventflow/internal/httpapi"
)

func newHTTPHandler(cfg Config, shop httpapi.Storefront) http.Handler {
	return middleware.Chain(
		httpapi.New(shop).Routes(),
		middleware.Recovery(),
		middleware.RequestLogging(),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.Profile(),
	)
}

func newHTTPServer(cfg Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// Checkout waits on the simulated processor.
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
