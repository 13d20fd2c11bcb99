package constants

import (
	"database/sql/driver"
	"fmt"
)

// ActorRole is the permission level of the member calling into the ledger.
type ActorRole string

const (
	RoleMember ActorRole = "member"
	RoleAdmin  ActorRole = "admin"
)

// Stringer ­– convenient for fmt / logs
func (r ActorRole) String() string { return string(r) }

/* ---------- DB adapters so sqlx (or database/sql) scans/values cleanly ---------- */

// Scan implements the sql.Scanner interface
func (r *ActorRole) Scan(src interface{}) error {
	if src == nil {
		*r = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*r = ActorRole(v)
	case []byte:
		*r = ActorRole(v)
	default:
		return fmt.Errorf("ActorRole: cannot scan type %T", src)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (r ActorRole) Value() (driver.Value, error) { return string(r), nil }

// Role names that never become clans during a role sync.
var ReservedRoleKeywords = []string{"admin", "mod", "bot", "everyone"}

const EveryoneRole = "@everyone"
