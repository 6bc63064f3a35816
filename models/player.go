package models

import (
	"time"

	"sql-career-engine/engine"

	"gorm.io/gorm"
)

// Player is the persisted career state of one user. ID is the gateway's user id
// (X-User-ID), so the profile service and this table share a key.
type Player struct {
	ID       string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Username string `gorm:"index;not null" json:"username"`
	Region   string `gorm:"index;type:varchar(32)" json:"region"`

	Level         int `gorm:"not null;default:1" json:"level"`
	XP            int `gorm:"column:xp;not null;default:0" json:"xp"`
	XPToNextLevel int `gorm:"column:xp_to_next_level;not null;default:1000" json:"xp_to_next_level"`
	TotalXP       int `gorm:"column:total_xp;not null;default:0" json:"total_xp"`

	SkillQuerying     int `gorm:"not null;default:0" json:"skill_querying"`
	SkillOptimization int `gorm:"not null;default:0" json:"skill_optimization"`
	SkillIndexing     int `gorm:"not null;default:0" json:"skill_indexing"`
	SkillJoins        int `gorm:"not null;default:0" json:"skill_joins"`

	LastLevelUpAt *time.Time `json:"last_level_up_at,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// NewPlayer returns a level 1 player with an empty ladder.
func NewPlayer(id, username, region string) Player {
	s := engine.NewLevelState()
	if username == "" {
		username = id
	}
	return Player{
		ID:            id,
		Username:      username,
		Region:        region,
		Level:         s.Level,
		XP:            s.XP,
		XPToNextLevel: s.XPToNextLevel,
		TotalXP:       s.TotalXP,
	}
}

func (p *Player) LevelState() engine.LevelState {
	return engine.LevelState{Level: p.Level, XP: p.XP, XPToNextLevel: p.XPToNextLevel, TotalXP: p.TotalXP}
}

func (p *Player) Skills() engine.Skills {
	return engine.Skills{
		Querying:     p.SkillQuerying,
		Optimization: p.SkillOptimization,
		Indexing:     p.SkillIndexing,
		Joins:        p.SkillJoins,
	}
}

// ToEngine builds the evaluation view. badges are the player's badge codes.
func (p *Player) ToEngine(badges []string) engine.Player {
	return engine.Player{
		ID:         p.ID,
		Username:   p.Username,
		LevelState: p.LevelState(),
		Skills:     p.Skills(),
		Badges:     badges,
	}
}

// Apply copies an evaluated player back onto the row. Identity fields are untouched.
func (p *Player) Apply(ep engine.Player, now time.Time) {
	if ep.Level > p.Level {
		p.LastLevelUpAt = &now
	}
	p.Level = ep.Level
	p.XP = ep.XP
	p.XPToNextLevel = ep.XPToNextLevel
	p.TotalXP = ep.TotalXP
	p.SkillQuerying = ep.Skills.Querying
	p.SkillOptimization = ep.Skills.Optimization
	p.SkillIndexing = ep.Skills.Indexing
	p.SkillJoins = ep.Skills.Joins
}

// RemoteProfile mirrors one row returned by the profile sync service (read-only).
type RemoteProfile struct {
	ExternalID string    `json:"external_id"`
	Username   string    `json:"username"`
	Region     string    `json:"region"`
	UpdatedAt  time.Time `json:"updated_at"`
}
