package models

import (
	"time"
)

// Badge codes awarded by the badge service.
const (
	BadgeFirstClear    = "FIRST_CLEAR"
	BadgePerfectScore  = "PERFECT_SCORE"
	BadgeNoHintsExpert = "NO_HINTS_EXPERT"
	BadgeClusterMaster = "CLUSTER_MASTER"
	BadgeLevel10       = "LEVEL_10"
	BadgeLevel25       = "LEVEL_25"
)

// BadgeType: static catalog entry
type BadgeType struct {
	Code        string    `gorm:"primaryKey;type:varchar(32)" json:"code"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	IconURL     string    `gorm:"type:text" json:"icon_url,omitempty"`
	Rarity      string    `gorm:"type:varchar(16);default:'common'" json:"rarity"` // common, rare, epic, legendary
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"-"`
}

// UserBadge: awarded instance. A player holds each code at most once.
type UserBadge struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PlayerID    string    `gorm:"uniqueIndex:idx_user_badges_player_code;not null;type:varchar(64)" json:"player_id"`
	BadgeCode   string    `gorm:"uniqueIndex:idx_user_badges_player_code;not null;type:varchar(32)" json:"badge_code"`
	ChallengeID string    `gorm:"type:varchar(128)" json:"challenge_id,omitempty"` // attempt that triggered it
	Seq         int64     `gorm:"not null;default:0" json:"-"`                       // tie-break within one award batch
	AwardedAt   time.Time `gorm:"autoCreateTime;index" json:"awarded_at"`

	BadgeType BadgeType `gorm:"foreignKey:BadgeCode;references:Code" json:"badge"`
}

var BadgeTriggers = []BadgeType{
	{
		Code:        BadgeFirstClear,
		Name:        "First Clear",
		Description: "Completed your first challenge",
		Rarity:      "common",
	},
	{
		Code:        BadgePerfectScore,
		Name:        "Flawless Query",
		Description: "Scored 100 on a challenge",
		Rarity:      "rare",
	},
	{
		Code:        BadgeNoHintsExpert,
		Name:        "No Hints Needed",
		Description: "Cleared an expert challenge without using a hint",
		Rarity:      "epic",
	},
	{
		Code:        BadgeClusterMaster,
		Name:        "Cluster Master",
		Description: "Completed every challenge in a cluster",
		Rarity:      "rare",
	},
	{
		Code:        BadgeLevel10,
		Name:        "Senior DBA",
		Description: "Reached level 10",
		Rarity:      "rare",
	},
	{
		Code:        BadgeLevel25,
		Name:        "Lead Architect",
		Description: "Reached level 25",
		Rarity:      "legendary",
	},
}
