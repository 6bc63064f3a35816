package services

import (
	"context"
	"strings"
	"time"

	"sql-career-engine/engine"
	"sql-career-engine/logger"
	"sql-career-engine/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LeaderboardService struct {
	DB     *gorm.DB
	Badges *BadgeService
	log    *logger.Logger
	now    func() time.Time
}

func NewLeaderboardService(db *gorm.DB, badges *BadgeService, log *logger.Logger) *LeaderboardService {
	return &LeaderboardService{
		DB:     db,
		Badges: badges,
		log:    log.With("service", "LeaderboardService"),
		now:    time.Now,
	}
}

type LeaderboardQuery struct {
	Region   string
	Search   string
	Page     int
	CallerID string
	// Period defaults to all-time
	Period engine.Period
}

// PeriodLeaderboard is a ranked page plus the window it covers.
type PeriodLeaderboard struct {
	engine.Leaderboard
	Period      engine.Period `json:"period"`
	PeriodStart *time.Time    `json:"period_start,omitempty"`
	PeriodEnd   *time.Time    `json:"period_end,omitempty"`
}

// GetLeaderboard ranks the current snapshot of the requested period. Ranks are
// relative to the period and the region/search filter.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, q LeaderboardQuery) (PeriodLeaderboard, error) {
	if q.Page < 1 {
		return PeriodLeaderboard{}, invalidArg("page must be >= 1, got %d", q.Page)
	}
	period, err := engine.ParsePeriod(string(q.Period))
	if err != nil {
		return PeriodLeaderboard{}, err
	}
	entries, start, end, err := s.entriesFor(ctx, period, q.Region)
	if err != nil {
		return PeriodLeaderboard{}, err
	}
	lb, err := engine.Rank(entries, engine.Filter{Region: q.Region, Search: q.Search}, q.Page, q.CallerID)
	if err != nil {
		return PeriodLeaderboard{}, err
	}
	return PeriodLeaderboard{Leaderboard: lb, Period: period, PeriodStart: start, PeriodEnd: end}, nil
}

// PeriodRank is a player's standing on one board. Rank is 0 when the player
// has no row on it.
type PeriodRank struct {
	Rank         int `json:"rank"`
	XP           int `json:"xp"`
	TotalPlayers int `json:"total_players"`
}

// PlayerRanking is a player's standing on every period board.
type PlayerRanking struct {
	PlayerID string                       `json:"player_id"`
	Boards   map[engine.Period]PeriodRank `json:"boards"`
}

// GetPlayerRanking locates the player on the all-time, daily, weekly and monthly boards.
func (s *LeaderboardService) GetPlayerRanking(ctx context.Context, playerID string) (*PlayerRanking, error) {
	if playerID == "" {
		return nil, invalidArg("player id is required")
	}
	out := &PlayerRanking{PlayerID: playerID, Boards: make(map[engine.Period]PeriodRank, len(engine.Periods))}
	for _, period := range engine.Periods {
		entries, _, _, err := s.entriesFor(ctx, period, "")
		if err != nil {
			return nil, err
		}
		lb, err := engine.Rank(entries, engine.Filter{}, 1, playerID)
		if err != nil {
			return nil, err
		}
		pr := PeriodRank{Rank: lb.CallerRank, TotalPlayers: lb.TotalEntries}
		if lb.CallerEntry != nil {
			pr.XP = lb.CallerEntry.XPTotal
		}
		out.Boards[period] = pr
	}
	return out, nil
}

// entriesFor loads the unranked rows of a board. All-time reads the fed
// leaderboard rows; windowed boards sum attempt xp inside the window.
func (s *LeaderboardService) entriesFor(ctx context.Context, period engine.Period, region string) ([]engine.Entry, *time.Time, *time.Time, error) {
	start, end, windowed := period.Window(s.now())
	if !windowed {
		entries, err := s.snapshot(ctx, region)
		return entries, nil, nil, err
	}
	entries, err := s.windowSnapshot(ctx, start, end, region)
	return entries, &start, &end, err
}

type windowRow struct {
	PlayerID string
	Username string
	Region   string
	Level    int
	XPTotal  int
}

// windowSnapshot ranks players by xp earned in [start, end). Players without an
// attempt in the window are not on the board.
func (s *LeaderboardService) windowSnapshot(ctx context.Context, start, end time.Time, region string) ([]engine.Entry, error) {
	db := s.DB.WithContext(ctx)
	q := db.Table("attempt_logs AS a").
		Select("a.player_id AS player_id, p.username AS username, p.region AS region, p.level AS level, CAST(COALESCE(SUM(a.xp_earned), 0) AS BIGINT) AS xp_total").
		Joins("JOIN players AS p ON p.id = a.player_id AND p.deleted_at IS NULL").
		Where("a.created_at >= ? AND a.created_at < ?", start, end).
		Group("a.player_id, p.username, p.region, p.level")
	if r := strings.TrimSpace(region); r != "" {
		q = q.Where("p.region = ?", r)
	}
	var rows []windowRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts, err := s.Badges.CountsByPlayer(db)
	if err != nil {
		return nil, err
	}
	entries := make([]engine.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, engine.Entry{
			PlayerID:   r.PlayerID,
			Username:   r.Username,
			Region:     r.Region,
			Level:      r.Level,
			XPTotal:    r.XPTotal,
			BadgeCount: counts[r.PlayerID],
		})
	}
	return entries, nil
}

// AllRanked returns every row of the unfiltered board in rank order.
func (s *LeaderboardService) AllRanked(ctx context.Context) ([]engine.Entry, error) {
	entries, err := s.snapshot(ctx, "")
	if err != nil {
		return nil, err
	}
	first, err := engine.Rank(entries, engine.Filter{}, 1, "")
	if err != nil {
		return nil, err
	}
	out := make([]engine.Entry, 0, first.TotalEntries)
	out = append(out, first.Entries...)
	for page := 2; page <= first.TotalPages; page++ {
		lb, err := engine.Rank(entries, engine.Filter{}, page, "")
		if err != nil {
			return nil, err
		}
		out = append(out, lb.Entries...)
	}
	return out, nil
}

// snapshot narrows by region in SQL; the search filter stays in the ranker
// because it needs Unicode case folding.
func (s *LeaderboardService) snapshot(ctx context.Context, region string) ([]engine.Entry, error) {
	q := s.DB.WithContext(ctx).Model(&models.LeaderboardEntry{})
	if r := strings.TrimSpace(region); r != "" {
		q = q.Where("region = ?", r)
	}
	var rows []models.LeaderboardEntry
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]engine.Entry, 0, len(rows))
	for i := range rows {
		entries = append(entries, rows[i].ToEngine())
	}
	return entries, nil
}

// Upsert applies one feed update. Rows never move backwards in xp, so a late
// event cannot undo a newer one.
func (s *LeaderboardService) Upsert(ctx context.Context, e models.LeaderboardEntry) error {
	if e.PlayerID == "" {
		return invalidArg("leaderboard entry without player id")
	}
	e.UpdatedAt = time.Now()
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "player_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "region", "level", "xp_total", "badge_count", "updated_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "leaderboard_entries.xp_total <= excluded.xp_total"},
		}},
	}).Create(&e).Error
}

// UpdateProfile refreshes the display fields of an existing row.
func (s *LeaderboardService) UpdateProfile(ctx context.Context, playerID, username, region string) error {
	return s.DB.WithContext(ctx).
		Model(&models.LeaderboardEntry{}).
		Where("player_id = ?", playerID).
		Updates(map[string]interface{}{"username": username, "region": region}).Error
}

// Rebuild recomputes every row from players and badge counts and drops rows of
// players that no longer exist. Returns the number of rows written.
func (s *LeaderboardService) Rebuild(ctx context.Context) (int, error) {
	var written int
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var players []models.Player
		if err := tx.Find(&players).Error; err != nil {
			return err
		}
		counts, err := s.Badges.CountsByPlayer(tx)
		if err != nil {
			return err
		}

		rows := make([]models.LeaderboardEntry, 0, len(players))
		now := time.Now()
		for _, p := range players {
			rows = append(rows, models.LeaderboardEntry{
				PlayerID:   p.ID,
				Username:   p.Username,
				Region:     p.Region,
				Level:      p.Level,
				XPTotal:    p.TotalXP,
				BadgeCount: counts[p.ID],
				UpdatedAt:  now,
			})
		}
		if len(rows) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "player_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"username", "region", "level", "xp_total", "badge_count", "updated_at"}),
			}).CreateInBatches(&rows, 200).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("player_id NOT IN (?)", tx.Model(&models.Player{}).Select("id")).
			Delete(&models.LeaderboardEntry{}).Error; err != nil {
			return err
		}
		written = len(rows)
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("leaderboard rebuilt", "rows", written)
	return written, nil
}
