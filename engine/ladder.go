package engine

import (
	"math"
)

// Tier is the authored difficulty of a challenge.
type Tier string

const (
	TierBeginner     Tier = "beginner"
	TierIntermediate Tier = "intermediate"
	TierAdvanced     Tier = "advanced"
	TierExpert       Tier = "expert"
)

// BaseXP is the reward for a perfect score on each tier.
var BaseXP = map[Tier]int{
	TierBeginner:     50,
	TierIntermediate: 100,
	TierAdvanced:     200,
	TierExpert:       400,
}

func (t Tier) Valid() bool {
	_, ok := BaseXP[t]
	return ok
}

const (
	// StartingXPToNextLevel is the level 1 -> 2 threshold for a fresh player.
	StartingXPToNextLevel = 1000
	levelGrowth           = 1.5
	xpChunk               = 5
)

// TitleThreshold maps the lowest level at which a title is held.
type TitleThreshold struct {
	MinLevel int
	Title    string
}

// Titles must stay ascending by MinLevel.
var Titles = []TitleThreshold{
	{1, "Junior DBA"},
	{5, "DBA"},
	{10, "Senior DBA"},
	{15, "Principal DBA"},
	{20, "Database Architect"},
	{25, "Lead Database Architect"},
	{30, "Data Platform Architect"},
	{40, "Query Grandmaster"},
	{50, "SQL Legend"},
}

// TitleForLevel returns the title of the highest threshold <= level.
func TitleForLevel(level int) string {
	title := Titles[0].Title
	for _, t := range Titles {
		if level < t.MinLevel {
			break
		}
		title = t.Title
	}
	return title
}

// XPEarned scales a tier's base reward by score and rounds to the nearest multiple of 5.
func XPEarned(tier Tier, overallScore int) (int, error) {
	base, ok := BaseXP[tier]
	if !ok {
		return 0, invalidArgf("unknown difficulty tier %q", tier)
	}
	if overallScore < 0 || overallScore > MaxScore {
		return 0, invalidArgf("overall score must be within [0, %d], got %d", MaxScore, overallScore)
	}
	chunks := math.Round(float64(base) * float64(overallScore) / float64(MaxScore) / xpChunk)
	return int(chunks) * xpChunk, nil
}

// LevelState is the slice of a player the ladder operates on.
type LevelState struct {
	Level         int `json:"level"`
	XP            int `json:"xp"`
	XPToNextLevel int `json:"xp_to_next_level"`
	TotalXP       int `json:"total_xp"`
}

// NewLevelState is the state of a player who has never earned xp.
func NewLevelState() LevelState {
	return LevelState{Level: 1, XPToNextLevel: StartingXPToNextLevel}
}

func (s LevelState) Title() string { return TitleForLevel(s.Level) }

// Check reports an ErrInconsistentSnapshot if s breaks 0 <= xp < xpToNextLevel.
func (s LevelState) Check() error {
	switch {
	case s.Level < 1:
		return inconsistentf("level must be >= 1, got %d", s.Level)
	case s.XPToNextLevel <= 0:
		return inconsistentf("xp to next level must be > 0, got %d", s.XPToNextLevel)
	case s.XP < 0:
		return inconsistentf("xp must be >= 0, got %d", s.XP)
	case s.XP >= s.XPToNextLevel:
		return inconsistentf("xp %d must be below threshold %d", s.XP, s.XPToNextLevel)
	case s.TotalXP < s.XP:
		return inconsistentf("total xp %d is below current-level xp %d", s.TotalXP, s.XP)
	}
	return nil
}

// ApplyXP adds xp to s, rolling overflow into as many level-ups as it pays for.
// Each threshold is 1.5x the previous one, rounded to an integer at every step.
func ApplyXP(s LevelState, xp int) (LevelState, error) {
	if xp < 0 {
		return LevelState{}, invalidArgf("xp earned must be >= 0, got %d", xp)
	}
	if err := s.Check(); err != nil {
		return LevelState{}, err
	}

	next := s
	next.TotalXP += xp
	pool := s.XP + xp
	for pool >= next.XPToNextLevel {
		pool -= next.XPToNextLevel
		next.Level++
		next.XPToNextLevel = int(math.Round(float64(next.XPToNextLevel) * levelGrowth))
	}
	next.XP = pool
	return next, nil
}
