package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sql-career-engine/engine"
	"sql-career-engine/logger"

	"github.com/go-co-op/gocron/v2"
)

// SnapshotUploader stores an exported leaderboard snapshot and returns its public URL.
type SnapshotUploader interface {
	UploadJSON(ctx context.Context, key string, body []byte) (string, error)
}

type LeaderboardSnapshot struct {
	GeneratedAt  time.Time      `json:"generated_at"`
	TotalEntries int            `json:"total_entries"`
	Entries      []engine.Entry `json:"entries"`
}

const snapshotPrefix = "leaderboards/global"

// Scheduler runs the periodic leaderboard reconciliation and export.
type Scheduler struct {
	board    *LeaderboardService
	uploader SnapshotUploader
	interval time.Duration
	log      *logger.Logger
	sched    gocron.Scheduler
	now      func() time.Time
}

// NewScheduler builds the scheduler. uploader may be nil to skip exports.
func NewScheduler(board *LeaderboardService, uploader SnapshotUploader, interval time.Duration, log *logger.Logger) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Scheduler{
		board:    board,
		uploader: uploader,
		interval: interval,
		log:      log.With("service", "Scheduler"),
		sched:    sched,
		now:      time.Now,
	}, nil
}

// Start registers the refresh job and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			if err := s.RefreshLeaderboard(ctx); err != nil {
				s.log.Error("leaderboard refresh failed", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("leaderboard-refresh"),
	)
	if err != nil {
		return fmt.Errorf("register leaderboard job: %w", err)
	}
	s.sched.Start()
	s.log.Info("scheduler started", "interval", s.interval.String(), "export", s.uploader != nil)
	return nil
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}

// RefreshLeaderboard rebuilds the rows and, when an uploader is set, exports the
// ranked board twice: a timestamped copy and latest.json.
func (s *Scheduler) RefreshLeaderboard(ctx context.Context) error {
	if _, err := s.board.Rebuild(ctx); err != nil {
		return fmt.Errorf("rebuild: %w", err)
	}
	if s.uploader == nil {
		return nil
	}

	entries, err := s.board.AllRanked(ctx)
	if err != nil {
		return fmt.Errorf("rank: %w", err)
	}
	now := s.now().UTC()
	body, err := json.Marshal(LeaderboardSnapshot{
		GeneratedAt:  now,
		TotalEntries: len(entries),
		Entries:      entries,
	})
	if err != nil {
		return err
	}

	for _, key := range []string{
		fmt.Sprintf("%s/%s.json", snapshotPrefix, now.Format("20060102T150405Z")),
		snapshotPrefix + "/latest.json",
	} {
		url, err := s.uploader.UploadJSON(ctx, key, body)
		if err != nil {
			return fmt.Errorf("upload %s: %w", key, err)
		}
		s.log.Debug("leaderboard snapshot uploaded", "key", key, "url", url)
	}
	return nil
}
