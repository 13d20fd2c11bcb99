package auth

import "infinite-experiment/clanledger/internal/constants"

// UserClaims describes the member on whose behalf a request is made.
type UserClaims interface {
	DiscordUserID() int64
	Role() constants.ActorRole
	RoleNames() []string
	Source() constants.RequestSource
	IsAdmin() bool
}

// JWTClaims come from a signed bearer token issued to admin tooling.
type JWTClaims struct {
	DiscordID int64
	RoleValue constants.ActorRole
	Roles     []string
	TokenID   string
}

func (c *JWTClaims) DiscordUserID() int64            { return c.DiscordID }
func (c *JWTClaims) Role() constants.ActorRole       { return c.RoleValue }
func (c *JWTClaims) RoleNames() []string             { return c.Roles }
func (c *JWTClaims) Source() constants.RequestSource { return constants.RequestSourceJWT }
func (c *JWTClaims) IsAdmin() bool                   { return c.RoleValue == constants.RoleAdmin }

// APIKeyClaims come from the chat integration. The key's role bounds what the
// integration may assert about the member it acts for.
type APIKeyClaims struct {
	DiscordID  int64
	KeyRole    constants.ActorRole
	AdminClaim bool
	Roles      []string
}

func (c *APIKeyClaims) DiscordUserID() int64 { return c.DiscordID }
func (c *APIKeyClaims) Role() constants.ActorRole {
	if c.IsAdmin() {
		return constants.RoleAdmin
	}
	return constants.RoleMember
}
func (c *APIKeyClaims) RoleNames() []string             { return c.Roles }
func (c *APIKeyClaims) Source() constants.RequestSource { return constants.RequestSourceAPI }
func (c *APIKeyClaims) IsAdmin() bool                   { return c.AdminClaim && c.KeyRole == constants.RoleAdmin }
