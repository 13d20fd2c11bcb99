package middleware

import (
	"net/http"
	"time"

	"infinite-experiment/clanledger/internal/auth"
)

func IsAdminMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := auth.GetUserClaims(r.Context())

			if claims == nil || !claims.IsAdmin() {
				forbidden(w, time.Now())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
