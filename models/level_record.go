package models

import (
	"time"

	"sql-career-engine/engine"
)

// LevelRecord is a player's best result on one challenge.
type LevelRecord struct {
	ID              string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PlayerID        string     `gorm:"uniqueIndex:idx_level_records_player_challenge;not null;type:varchar(64)" json:"player_id"`
	ChallengeID     string     `gorm:"uniqueIndex:idx_level_records_player_challenge;index;not null;type:varchar(128)" json:"challenge_id"`
	BestScore       int        `gorm:"not null;default:0" json:"best_score"`
	BestTimeSeconds *float64   `json:"best_time_seconds,omitempty"`
	Completed       bool       `gorm:"not null;default:false" json:"completed"`
	Attempts        int        `gorm:"not null;default:0" json:"attempts"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (r *LevelRecord) ToEngine() engine.LevelRecord {
	return engine.LevelRecord{
		BestScore:       r.BestScore,
		BestTimeSeconds: r.BestTimeSeconds,
		Completed:       r.Completed,
		Attempts:        r.Attempts,
	}
}

func (r *LevelRecord) Apply(er engine.LevelRecord, now time.Time) {
	if er.Completed && !r.Completed {
		r.CompletedAt = &now
	}
	r.BestScore = er.BestScore
	r.BestTimeSeconds = er.BestTimeSeconds
	r.Completed = er.Completed
	r.Attempts = er.Attempts
}

// AttemptLog is the audit trail of every evaluated submission.
type AttemptLog struct {
	ID                   string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PlayerID             string    `gorm:"index;not null;type:varchar(64)" json:"player_id"`
	ChallengeID          string    `gorm:"index;not null;type:varchar(128)" json:"challenge_id"`
	Query                string    `gorm:"type:text" json:"query"`
	ExecutionTimeSeconds float64   `json:"execution_time_seconds"`
	RowsScanned          int64     `json:"rows_scanned"`
	UsedIndex            bool      `json:"used_index"`
	UsedJoin             bool      `json:"used_join"`
	HintsUsed            int       `json:"hints_used"`
	Correct              bool      `json:"correct"`
	OverallScore         int       `json:"overall_score"`
	PerformanceRating    string    `gorm:"type:varchar(16)" json:"performance_rating"`
	Stars                int       `json:"stars"`
	XPEarned             int       `gorm:"column:xp_earned" json:"xp_earned"`
	LeveledUp            bool      `json:"leveled_up"`
	CreatedAt            time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
