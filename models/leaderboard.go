package models

import (
	"time"

	"sql-career-engine/engine"
)

// LeaderboardEntry is the ranker's backing row, fed asynchronously from attempt events.
// Rank is never stored; it depends on the filter of each query.
type LeaderboardEntry struct {
	PlayerID   string    `gorm:"primaryKey;type:varchar(64)" json:"player_id"`
	Username   string    `gorm:"index;not null" json:"username"`
	Region     string    `gorm:"index;type:varchar(32)" json:"region"`
	Level      int       `gorm:"not null;default:1" json:"level"`
	XPTotal    int       `gorm:"column:xp_total;index;not null;default:0" json:"xp_total"`
	BadgeCount int       `gorm:"not null;default:0" json:"badge_count"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (e *LeaderboardEntry) ToEngine() engine.Entry {
	return engine.Entry{
		PlayerID:   e.PlayerID,
		Username:   e.Username,
		Level:      e.Level,
		XPTotal:    e.XPTotal,
		BadgeCount: e.BadgeCount,
		Region:     e.Region,
	}
}
