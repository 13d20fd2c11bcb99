package constants

// Raw read-model queries. Written with '?' placeholders; callers Rebind for the driver.
const (
	GetApiKeyStatus = `
	SELECT key, status, role FROM api_keys WHERE key = ?
	`

	TopClans = `
	SELECT name, points, max_points, last_week_points FROM clans ORDER BY points DESC, name ASC LIMIT ?
	`

	ClanWeeks = `
	SELECT name, points, max_points, last_week_points, last_week_start FROM clans ORDER BY name ASC
	`

	WeeklyComparison = `
	SELECT name, points, max_points, last_week_points FROM clans ORDER BY points DESC, name ASC
	`

	TopUsers = `
	SELECT user_id, clan_name, points FROM users ORDER BY points DESC, user_id ASC LIMIT ?
	`

	TopClanMembers = `
	SELECT user_id, clan_name, points FROM users WHERE clan_name = ? ORDER BY points DESC, user_id ASC LIMIT ?
	`

	ClanMembers = `
	SELECT user_id, clan_name, points FROM users WHERE clan_name = ? ORDER BY points DESC, user_id ASC
	`

	ClanMemberCount = `
	SELECT COUNT(*) FROM users WHERE clan_name = ?
	`

	RankInClan = `
	SELECT COUNT(*) FROM users WHERE clan_name = ? AND points > ?
	`
)
