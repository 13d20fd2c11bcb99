package dtos

import "time"

// APIResponse is the envelope for every JSON response.
type APIResponse struct {
	Status       string `json:"status"`
	Code         string `json:"code,omitempty"`
	Message      string `json:"message"`
	ResponseTime string `json:"response_time"`
	Data         any    `json:"data,omitempty"`
}

// ErrorDetails carries the context a caller needs to explain a rejection.
type ErrorDetails struct {
	Current int64 `json:"current,omitempty"`
	Limit   int64 `json:"limit,omitempty"`
}

type AwardResponse struct {
	UserID          int64    `json:"user_id"`
	ClanName        string   `json:"clan_name"`
	Applied         int64    `json:"applied"`
	ClanPoints      int64    `json:"clan_points"`
	UserPoints      int64    `json:"user_points"`
	NewAchievements []string `json:"new_achievements"`
}

type UserPointsResponse struct {
	UserID   int64   `json:"user_id"`
	Points   int64   `json:"points"`
	ClanName *string `json:"clan_name"`
}

type UserStatsResponse struct {
	UserID       int64      `json:"user_id"`
	ClanName     *string    `json:"clan_name"`
	Points       int64      `json:"points"`
	RankInClan   int64      `json:"rank_in_clan,omitempty"`
	StreakDays   int        `json:"streak_days"`
	DaysAsMember int        `json:"days_as_member"`
	LastActive   *time.Time `json:"last_active"`
	JoinDate     time.Time  `json:"join_date"`
	Achievements int        `json:"achievements"`
	WeeklyCap    int64      `json:"weekly_cap"`
}

type ClanInfoResponse struct {
	Name            string  `json:"name"`
	Points          int64   `json:"points"`
	LastWeekPoints  int64   `json:"last_week_points"`
	MaxPoints       int64   `json:"max_points"`
	MemberCount     int64   `json:"member_count"`
	ProgressPercent float64 `json:"progress_percent"`
}

type ClanStanding struct {
	Rank      int    `json:"rank"`
	Name      string `json:"name"`
	Points    int64  `json:"points"`
	MaxPoints int64  `json:"max_points"`
}

type UserStanding struct {
	Rank     int     `json:"rank"`
	UserID   int64   `json:"user_id"`
	ClanName *string `json:"clan_name"`
	Points   int64   `json:"points"`
}

type WeeklyComparisonRow struct {
	Name           string `json:"name"`
	Points         int64  `json:"points"`
	LastWeekPoints int64  `json:"last_week_points"`
	Delta          int64  `json:"delta"`
}

type PointLogEntry struct {
	Amount    int64     `json:"amount"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	ChannelID *int64    `json:"channel_id,omitempty"`
}

type AchievementEntry struct {
	Name       string    `json:"name"`
	EarnedDate time.Time `json:"earned_date"`
}

type ChallengeResponse struct {
	Date         string `json:"date"`
	Challenge    string `json:"challenge"`
	RewardPoints int64  `json:"reward_points"`
}

type ShopItemResponse struct {
	Name string `json:"name"`
	Cost int64  `json:"cost"`
}

type PurchaseResponse struct {
	UserID          int64  `json:"user_id"`
	ItemName        string `json:"item_name"`
	Cost            int64  `json:"cost"`
	RemainingPoints int64  `json:"remaining_points"`
}

type SyncClansResponse struct {
	ClansCreated int `json:"clans_created"`
	UsersSynced  int `json:"users_synced"`
}
