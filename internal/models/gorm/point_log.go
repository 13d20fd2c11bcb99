package gorm

import "time"

// PointLog is an append-only ledger row. Amount is negative for removals and purchases.
type PointLog struct {
	ID        uint      `gorm:"column:id;primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;index:idx_logs_user_time,priority:1"`
	Amount    int64     `gorm:"column:amount;not null"`
	Source    string    `gorm:"column:source;size:120;not null"`
	Timestamp time.Time `gorm:"column:timestamp;not null;index:idx_logs_user_time,priority:2"`
	ChannelID *int64    `gorm:"column:channel_id"`
}

// TableName specifies the table name for GORM
func (PointLog) TableName() string {
	return "logs"
}
