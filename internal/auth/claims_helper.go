package auth

import (
	"net/http"
	"strconv"
	"strings"

	"infinite-experiment/clanledger/internal/common"
	"infinite-experiment/clanledger/internal/models/entities"
)

const (
	HeaderAPIKey       = "X-API-Key"
	HeaderDiscordID    = "X-Discord-Id"
	HeaderDiscordRoles = "X-Discord-Roles"
	HeaderDiscordAdmin = "X-Discord-Admin"
)

// MakeClaimsFromApi builds claims from the headers the chat integration forwards.
// A missing or malformed member id yields 0, which handlers treat as anonymous.
func MakeClaimsFromApi(key *entities.ApiKey, r *http.Request) *APIKeyClaims {
	discordID, _ := strconv.ParseInt(strings.TrimSpace(r.Header.Get(HeaderDiscordID)), 10, 64)
	admin, _ := strconv.ParseBool(r.Header.Get(HeaderDiscordAdmin))

	return &APIKeyClaims{
		DiscordID:  discordID,
		KeyRole:    key.Role,
		AdminClaim: admin,
		Roles:      common.SplitCSV(r.Header.Get(HeaderDiscordRoles)),
	}
}
