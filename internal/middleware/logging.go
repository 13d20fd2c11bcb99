package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"infinite-experiment/clanledger/internal/auth"
	"infinite-experiment/clanledger/internal/common"
	"infinite-experiment/clanledger/internal/logging"
)

// Recoverer turns a handler panic into a 500 response and an error log.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				var userID int64
				if claims := auth.GetUserClaims(r.Context()); claims != nil {
					userID = claims.DiscordUserID()
				}
				logging.WithRequest(RequestID(r.Context()), userID, r.URL.Path).Errorw("Handler panicked",
					"method", r.Method,
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				common.RespondError(w, start, nil, "Internal server error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
