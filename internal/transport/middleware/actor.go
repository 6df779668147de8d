package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/henrier/rico-backend/pkg/ctxutil"
)

// Actor extracts the acting operator from the gateway-injected headers and
// stores it in the context for audit stamping. Requests without the headers
// (or with a malformed id) pass through without an actor.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idHeader := r.Header.Get("X-Operator-Id")
		if idHeader == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := uuid.Parse(idHeader)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := ctxutil.WithActor(r.Context(), ctxutil.Actor{
			ID:   id,
			Name: r.Header.Get("X-Operator-Name"),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
