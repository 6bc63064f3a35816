package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"sql-career-engine/engine"
	"sql-career-engine/logger"
	"sql-career-engine/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressionService struct {
	DB     *gorm.DB
	Badges *BadgeService
	Bus    EventBus

	log   *logger.Logger
	locks *playerLocks
	now   func() time.Time
}

func NewProgressionService(db *gorm.DB, badges *BadgeService, bus EventBus, log *logger.Logger) *ProgressionService {
	return &ProgressionService{
		DB:     db,
		Badges: badges,
		Bus:    bus,
		log:    log.With("service", "ProgressionService"),
		locks:  newPlayerLocks(),
		now:    time.Now,
	}
}

// EnsurePlayer ensures a Player row exists (idempotent). An existing player keeps
// its username and region.
func (s *ProgressionService) EnsurePlayer(ctx context.Context, id, username, region string) (*models.Player, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, invalidArg("player id is required")
	}
	db := s.DB.WithContext(ctx)
	p := models.NewPlayer(id, strings.TrimSpace(username), strings.TrimSpace(region))
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&p)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 1 {
		s.log.Info("player created", "player_id", id)
		return &p, nil
	}
	var existing models.Player
	if err := db.Where("id = ?", id).First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

// SubmitAttempt evaluates one submission and persists the outcome. Evaluations
// for the same player run one at a time; the event is published after commit.
func (s *ProgressionService) SubmitAttempt(ctx context.Context, sub engine.Submission) (engine.EvaluationResult, error) {
	if sub.PlayerID == "" || sub.ChallengeID == "" {
		return engine.EvaluationResult{}, invalidArg("player id and challenge id are required")
	}

	unlock := s.locks.Lock(sub.PlayerID)
	defer unlock()

	var (
		result engine.EvaluationResult
		event  AttemptEvaluated
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// row lock serializes attempts across replicas; sqlite ignores it
		var player models.Player
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", sub.PlayerID).First(&player).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("player %q", sub.PlayerID)
			}
			return err
		}
		var challenge models.Challenge
		if err := tx.Where("id = ?", sub.ChallengeID).First(&challenge).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("challenge %q", sub.ChallengeID)
			}
			return err
		}

		snap, record, err := s.loadSnapshot(tx, &player, &challenge)
		if err != nil {
			return err
		}

		out, err := engine.Evaluate(snap, sub)
		if err != nil {
			return err
		}

		now := s.now()
		player.Apply(out.Player, now)
		if err := tx.Save(&player).Error; err != nil {
			return err
		}

		isNew := record.ID == ""
		record.Apply(out.Record, now)
		if isNew {
			record.ID = uuid.NewString()
			record.PlayerID = player.ID
			record.ChallengeID = challenge.ID
			err = tx.Create(&record).Error
		} else {
			err = tx.Save(&record).Error
		}
		if err != nil {
			return err
		}

		attempt := models.AttemptLog{
			ID:                   uuid.NewString(),
			PlayerID:             player.ID,
			ChallengeID:          challenge.ID,
			Query:                sub.Query,
			ExecutionTimeSeconds: sub.Metrics.ExecutionTimeSeconds,
			RowsScanned:          sub.Metrics.RowsScanned,
			UsedIndex:            sub.Metrics.UsedIndex,
			UsedJoin:             sub.Metrics.UsedJoin,
			HintsUsed:            sub.HintsUsed,
			Correct:              sub.Correct,
			OverallScore:         out.Result.OverallScore,
			PerformanceRating:    string(out.Result.PerformanceRating),
			Stars:                out.Result.Stars,
			XPEarned:             out.Result.XPEarned,
			LeveledUp:            out.Result.LeveledUp,
		}
		if err := tx.Create(&attempt).Error; err != nil {
			return err
		}

		ac := AwardContext{
			PlayerID:    player.ID,
			ChallengeID: challenge.ID,
			Tier:        engine.Tier(challenge.Tier),
			HintsUsed:   sub.HintsUsed,
			Correct:     sub.Correct,
			Score:       out.Result.OverallScore,
			Completed:   out.Record.Completed,
			Level:       out.Player.Level,
		}
		if out.ClusterProgress != nil {
			pct := out.ClusterProgress.ProgressPercent
			ac.ClusterPercent = &pct
		}
		newBadges, err := s.Badges.AutoAwardBadges(tx, ac)
		if err != nil {
			return err
		}

		out.Result.NewBadges = newBadges
		result = out.Result
		event = AttemptEvaluated{
			PlayerID:     player.ID,
			Username:     player.Username,
			Region:       player.Region,
			ChallengeID:  challenge.ID,
			Level:        player.Level,
			TotalXP:      player.TotalXP,
			XPEarned:     out.Result.XPEarned,
			OverallScore: out.Result.OverallScore,
			LeveledUp:    out.Result.LeveledUp,
			BadgeCount:   len(snap.Player.Badges) + len(newBadges),
			NewBadges:    newBadges,
			At:           now,
		}
		return nil
	})
	if err != nil {
		if engine.IsInconsistentSnapshot(err) {
			s.log.Error("inconsistent player snapshot", "player_id", sub.PlayerID, "challenge_id", sub.ChallengeID, "error", err)
		}
		return engine.EvaluationResult{}, err
	}

	s.log.Debug("attempt evaluated",
		"player_id", sub.PlayerID,
		"challenge_id", sub.ChallengeID,
		"score", result.OverallScore,
		"xp", result.XPEarned,
		"leveled_up", result.LeveledUp,
	)
	if s.Bus != nil {
		if err := s.Bus.Publish(ctx, event); err != nil {
			// the scheduled rebuild reconciles the leaderboard row
			s.log.Warn("publish attempt event failed", "player_id", sub.PlayerID, "error", err)
		}
	}
	return result, nil
}

// loadSnapshot reads everything Evaluate needs. The returned record is a zero
// row (empty ID) when the player has never attempted the challenge.
func (s *ProgressionService) loadSnapshot(tx *gorm.DB, player *models.Player, challenge *models.Challenge) (engine.Snapshot, models.LevelRecord, error) {
	badges, err := s.Badges.Codes(tx, player.ID)
	if err != nil {
		return engine.Snapshot{}, models.LevelRecord{}, err
	}
	snap := engine.Snapshot{
		Player:    player.ToEngine(badges),
		Challenge: challenge.ToEngine(),
	}

	var record models.LevelRecord
	err = tx.Where("player_id = ? AND challenge_id = ?", player.ID, challenge.ID).First(&record).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		record = models.LevelRecord{}
	case err != nil:
		return engine.Snapshot{}, models.LevelRecord{}, err
	}
	snap.Record = record.ToEngine()

	var cluster models.Cluster
	err = tx.Preload("Challenges", orderedChallenges).Where("id = ?", challenge.ClusterID).First(&cluster).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return snap, record, nil
	case err != nil:
		return engine.Snapshot{}, models.LevelRecord{}, err
	}
	ec := cluster.ToEngine()
	snap.Cluster = &ec

	records, err := recordsFor(tx, player.ID, ec.ChallengeIDs)
	if err != nil {
		return engine.Snapshot{}, models.LevelRecord{}, err
	}
	snap.ClusterRecords = records
	return snap, record, nil
}

func recordsFor(tx *gorm.DB, playerID string, challengeIDs []string) (map[string]engine.LevelRecord, error) {
	out := make(map[string]engine.LevelRecord, len(challengeIDs))
	q := tx.Where("player_id = ?", playerID)
	if challengeIDs != nil {
		if len(challengeIDs) == 0 {
			return out, nil
		}
		q = q.Where("challenge_id IN ?", challengeIDs)
	}
	var rows []models.LevelRecord
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ChallengeID] = r.ToEngine()
	}
	return out, nil
}

// PlayerProgress is the profile view of a player.
type PlayerProgress struct {
	PlayerID      string                `json:"id"`
	Username      string                `json:"username"`
	Region        string                `json:"region,omitempty"`
	Level         int                   `json:"level"`
	Title         string                `json:"title"`
	XP            int                   `json:"xp"`
	XPToNextLevel int                   `json:"xp_to_next_level"`
	TotalXP       int                   `json:"total_xp"`
	Skills        engine.Skills         `json:"skills"`
	Career        engine.CareerProgress `json:"career"`
	Badges        []string              `json:"badges"`
	LastLevelUpAt *time.Time            `json:"last_level_up_at,omitempty"`
}

func (s *ProgressionService) GetProgress(ctx context.Context, playerID string) (*PlayerProgress, error) {
	db := s.DB.WithContext(ctx)
	var player models.Player
	if err := db.Where("id = ?", playerID).First(&player).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("player %q", playerID)
		}
		return nil, err
	}

	var clusters []models.Cluster
	if err := db.Preload("Challenges", orderedChallenges).Order("position ASC, id ASC").Find(&clusters).Error; err != nil {
		return nil, err
	}
	engineClusters := make([]engine.Cluster, 0, len(clusters))
	for i := range clusters {
		engineClusters = append(engineClusters, clusters[i].ToEngine())
	}

	records, err := recordsFor(db, playerID, nil)
	if err != nil {
		return nil, err
	}
	badges, err := s.Badges.Codes(db, playerID)
	if err != nil {
		return nil, err
	}
	if badges == nil {
		badges = []string{}
	}

	state := player.LevelState()
	return &PlayerProgress{
		PlayerID:      player.ID,
		Username:      player.Username,
		Region:        player.Region,
		Level:         state.Level,
		Title:         state.Title(),
		XP:            state.XP,
		XPToNextLevel: state.XPToNextLevel,
		TotalXP:       state.TotalXP,
		Skills:        player.Skills(),
		Career:        engine.RecomputeCareerProgress(engineClusters, records),
		Badges:        badges,
		LastLevelUpAt: player.LastLevelUpAt,
	}, nil
}

type AttemptHistory struct {
	Attempts   []models.AttemptLog `json:"attempts"`
	Page       int                 `json:"page"`
	Size       int                 `json:"size"`
	TotalItems int64               `json:"total_items"`
	TotalPages int                 `json:"total_pages"`
}

// GetHistory returns the attempt log newest first.
func (s *ProgressionService) GetHistory(ctx context.Context, playerID string, page, size int) (*AttemptHistory, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	db := s.DB.WithContext(ctx)

	var total int64
	if err := db.Model(&models.AttemptLog{}).Where("player_id = ?", playerID).Count(&total).Error; err != nil {
		return nil, err
	}
	attempts := []models.AttemptLog{}
	if err := db.Where("player_id = ?", playerID).
		Order("created_at DESC, id DESC").
		Limit(size).Offset((page - 1) * size).
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return &AttemptHistory{
		Attempts:   attempts,
		Page:       page,
		Size:       size,
		TotalItems: total,
		TotalPages: int((total + int64(size) - 1) / int64(size)),
	}, nil
}
