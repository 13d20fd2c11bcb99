package middleware

import (
	"context"
	"net/http"
	"time"

	"infinite-experiment/clanledger/internal/auth"
	"infinite-experiment/clanledger/internal/common"
	"infinite-experiment/clanledger/internal/logging"
)

// WhitelistChecker reports whether any of the caller's platform roles may use
// restricted commands.
type WhitelistChecker interface {
	IsWhitelisted(ctx context.Context, roleNames []string) (bool, error)
}

// IsWhitelistedMiddleware lets admins through and otherwise requires a
// whitelisted role on the caller.
func IsWhitelistedMiddleware(checker WhitelistChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			initTime := time.Now()
			claims := auth.GetUserClaims(r.Context())
			if claims == nil {
				forbidden(w, initTime)
				return
			}

			if claims.IsAdmin() {
				next.ServeHTTP(w, r)
				return
			}

			ok, err := checker.IsWhitelisted(r.Context(), claims.RoleNames())
			if err != nil {
				logging.Error("Whitelist lookup failed", "error", err, "user_id", claims.DiscordUserID())
				common.RespondError(w, initTime, nil, "Failed to check permissions", http.StatusServiceUnavailable)
				return
			}
			if !ok {
				forbidden(w, initTime)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
