package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"eventflow/internal/logging"
)

// ClientIDHeader names the storefront profile a request acts on. Each browser
// tab or device sends its own id.
const ClientIDHeader = "X-Client-ID"

var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Profile reads ClientIDHeader into the request context. Malformed ids are
// rejected so they can never escape their key namespace.
func Profile() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(ClientIDHeader))
			if id != "" && !clientIDPattern.MatchString(id) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid client id"}` + "\n"))
				return
			}

			ctx := context.WithValue(r.Context(), logging.ProfileKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ProfileFrom returns the profile id stored by Profile, or "".
func ProfileFrom(ctx context.Context) string {
	id, _ := ctx.Value(logging.ProfileKey).(string)
	return id
}
