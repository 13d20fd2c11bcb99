package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"infinite-experiment/clanledger/internal/auth"
	"infinite-experiment/clanledger/internal/common"
	"infinite-experiment/clanledger/internal/constants"
	"infinite-experiment/clanledger/internal/models/entities"
)

// KeyLookup resolves an API key to its stored status.
type KeyLookup interface {
	GetStatus(ctx context.Context, key string) (*entities.ApiKey, error)
}

// AuthMiddleware accepts either an HS256 bearer token or an active API key and
// stores the resulting claims on the request context.
func AuthMiddleware(keysRepo KeyLookup, tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			initTime := time.Now()

			authHeader := r.Header.Get("Authorization")
			apiKey := r.Header.Get(auth.HeaderAPIKey)

			var claims auth.UserClaims

			switch {
			case strings.HasPrefix(authHeader, "Bearer "):
				jwtClaims, err := tokens.Parse(strings.TrimPrefix(authHeader, "Bearer "))
				if err != nil {
					unauthorized(w, initTime, "Unauthorized. Invalid token")
					return
				}
				claims = jwtClaims

			case apiKey != "":
				keyRes, err := keysRepo.GetStatus(r.Context(), apiKey)
				if err != nil || keyRes == nil {
					unauthorized(w, initTime, "Unauthorized. Invalid API Key")
					return
				}

				if !keyRes.Status {
					unauthorized(w, initTime, "Unauthorized. Inactive API Key")
					return
				}

				claims = auth.MakeClaimsFromApi(keyRes, r)

			default:
				unauthorized(w, initTime, "Unauthorized. Missing credentials")
				return
			}

			ctx := auth.SetUserClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, initTime time.Time, message string) {
	common.RespondError(w, initTime, errors.New(message), message, http.StatusUnauthorized)
}

func forbidden(w http.ResponseWriter, initTime time.Time) {
	common.RespondCodedError(w, initTime, constants.ErrCodeForbidden,
		constants.GetErrorMessage(constants.ErrCodeForbidden), nil, http.StatusForbidden)
}
