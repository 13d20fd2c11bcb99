package gorm

import "time"

// User is a platform member. Points are lifetime points.
type User struct {
	UserID     int64      `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	ClanName   *string    `gorm:"column:clan_name;size:50;index"`
	Points     int64      `gorm:"column:points;not null;default:0;index"`
	StreakDays int        `gorm:"column:streak_days;not null;default:0"`
	LastActive *time.Time `gorm:"column:last_active"`
	JoinDate   time.Time  `gorm:"column:join_date"`
	WeeklyCap  int64      `gorm:"column:weekly_cap;not null;default:2000"`

	// Relationships
	Clan *Clan `gorm:"foreignKey:ClanName;references:Name"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// ClanNameOrEmpty returns the assigned clan name or "" when unassigned.
func (u *User) ClanNameOrEmpty() string {
	if u == nil || u.ClanName == nil {
		return ""
	}
	return *u.ClanName
}
