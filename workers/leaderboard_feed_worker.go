// workers/leaderboard_feed_worker.go
package workers

import (
	"context"
	"time"

	"sql-career-engine/logger"
	"sql-career-engine/models"
	"sql-career-engine/services"
)

// LeaderboardFeedWorker keeps leaderboard rows current from attempt events.
type LeaderboardFeedWorker struct {
	bus   services.EventBus
	board *services.LeaderboardService
	log   *logger.Logger
}

func NewLeaderboardFeedWorker(bus services.EventBus, board *services.LeaderboardService, log *logger.Logger) *LeaderboardFeedWorker {
	return &LeaderboardFeedWorker{
		bus:   bus,
		board: board,
		log:   log.With("worker", "LeaderboardFeed"),
	}
}

// Start subscribes and returns; events are applied until ctx is done.
func (w *LeaderboardFeedWorker) Start(ctx context.Context) error {
	if err := w.bus.Subscribe(ctx, func(ev services.AttemptEvaluated) {
		w.apply(ctx, ev)
	}); err != nil {
		return err
	}
	w.log.Info("leaderboard feed started")
	return nil
}

func (w *LeaderboardFeedWorker) apply(ctx context.Context, ev services.AttemptEvaluated) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := w.board.Upsert(ctx, models.LeaderboardEntry{
		PlayerID:   ev.PlayerID,
		Username:   ev.Username,
		Region:     ev.Region,
		Level:      ev.Level,
		XPTotal:    ev.TotalXP,
		BadgeCount: ev.BadgeCount,
	})
	if err != nil {
		w.log.Warn("leaderboard upsert failed", "player_id", ev.PlayerID, "error", err)
		return
	}
	if ev.LeveledUp {
		w.log.Info("player leveled up", "player_id", ev.PlayerID, "level", ev.Level)
	}
}
