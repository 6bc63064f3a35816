package services

import (
	"context"

	"sql-career-engine/engine"
	"sql-career-engine/logger"
	"sql-career-engine/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeService struct {
	DB  *gorm.DB
	log *logger.Logger
}

func NewBadgeService(db *gorm.DB, log *logger.Logger) *BadgeService {
	return &BadgeService{DB: db, log: log.With("service", "BadgeService")}
}

// AwardContext is what the triggers look at after one evaluated attempt.
type AwardContext struct {
	PlayerID    string
	ChallengeID string
	Tier        engine.Tier
	HintsUsed   int
	Correct     bool
	Score       int
	Completed   bool // level record completed after this attempt
	Level       int
	// ClusterPercent is nil when the challenge belongs to no cluster
	ClusterPercent *int
}

// AutoAwardBadges checks all badge triggers and inserts the ones the player does
// not hold yet. It runs on the caller's tx and returns the new codes in catalog order.
func (s *BadgeService) AutoAwardBadges(tx *gorm.DB, ac AwardContext) ([]string, error) {
	var awarded []string
	for i, trigger := range models.BadgeTriggers {
		if !meetsTrigger(trigger.Code, ac) {
			continue
		}
		ub := models.UserBadge{
			ID:          uuid.NewString(),
			PlayerID:    ac.PlayerID,
			BadgeCode:   trigger.Code,
			ChallengeID: ac.ChallengeID,
			Seq:         int64(i),
		}
		res := tx.Omit("BadgeType").Clauses(clause.OnConflict{DoNothing: true}).Create(&ub)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			continue // already held
		}
		awarded = append(awarded, trigger.Code)
		s.log.Info("badge awarded", "player_id", ac.PlayerID, "badge", trigger.Code)
	}
	return awarded, nil
}

func meetsTrigger(code string, ac AwardContext) bool {
	switch code {
	case models.BadgeFirstClear:
		return ac.Completed
	case models.BadgePerfectScore:
		return ac.Correct && ac.Score == engine.MaxScore
	case models.BadgeNoHintsExpert:
		return ac.Tier == engine.TierExpert && ac.Correct && ac.Score >= engine.PassingScore && ac.HintsUsed == 0
	case models.BadgeClusterMaster:
		return ac.ClusterPercent != nil && *ac.ClusterPercent == 100
	case models.BadgeLevel10:
		return ac.Level >= 10
	case models.BadgeLevel25:
		return ac.Level >= 25
	}
	return false
}

// Codes returns the player's badge codes in award order.
func (s *BadgeService) Codes(tx *gorm.DB, playerID string) ([]string, error) {
	var codes []string
	err := tx.Model(&models.UserBadge{}).
		Where("player_id = ?", playerID).
		Order("awarded_at ASC, seq ASC").
		Pluck("badge_code", &codes).Error
	return codes, err
}

// ListForPlayer returns awarded badges with their catalog entry.
func (s *BadgeService) ListForPlayer(ctx context.Context, playerID string) ([]models.UserBadge, error) {
	var badges []models.UserBadge
	err := s.DB.WithContext(ctx).
		Preload("BadgeType").
		Where("player_id = ?", playerID).
		Order("awarded_at ASC, seq ASC").
		Find(&badges).Error
	return badges, err
}

// CountsByPlayer is used by the leaderboard rebuild.
func (s *BadgeService) CountsByPlayer(tx *gorm.DB) (map[string]int, error) {
	var rows []struct {
		PlayerID string
		Count    int
	}
	if err := tx.Model(&models.UserBadge{}).
		Select("player_id, COUNT(*) AS count").
		Group("player_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.PlayerID] = r.Count
	}
	return out, nil
}
