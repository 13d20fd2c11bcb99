package entities

import "time"

// ClanRow is a read-model row over the clans table.
type ClanRow struct {
	Name           string     `db:"name"`
	Points         int64      `db:"points"`
	MaxPoints      int64      `db:"max_points"`
	LastWeekPoints int64      `db:"last_week_points"`
	LastWeekStart  *time.Time `db:"last_week_start"`
}

type UserRow struct {
	UserID   int64   `db:"user_id"`
	ClanName *string `db:"clan_name"`
	Points   int64   `db:"points"`
}
