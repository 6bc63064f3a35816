package services

import (
	"context"
	"testing"

	"sql-career-engine/engine"
	"sql-career-engine/logger"
	"sql-career-engine/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	bus         EventBus
	badges      *BadgeService
	progression *ProgressionService
	board       *LeaderboardService
	challenges  *ChallengeService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	log := logger.Nop()
	bus := NewMemoryBus(log)
	t.Cleanup(func() { _ = bus.Close() })

	badges := NewBadgeService(db, log)
	return &fixture{
		db:          db,
		bus:         bus,
		badges:      badges,
		progression: NewProgressionService(db, badges, bus, log),
		board:       NewLeaderboardService(db, badges, log),
		challenges:  NewChallengeService(db, log),
	}
}

func boolPtr(b bool) *bool { return &b }

// seedBasics creates a two-challenge cluster:
// "select-all-customers" (beginner, optimal 0.8s, index required, 3 hints) and
// "where-clause" (beginner, optimal 0.5s, 2 hints).
func (f *fixture) seedBasics(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.challenges.CreateCluster(ctx, ClusterInput{Name: "Basics", Position: 1})
	require.NoError(t, err)
	_, err = f.challenges.CreateChallenge(ctx, ChallengeInput{
		ClusterID:            "basics",
		Title:                "Select All Customers",
		Tier:                 "beginner",
		MustUseIndex:         boolPtr(true),
		OptimalExecutionTime: 0.8,
		HintsAvailable:       3,
	})
	require.NoError(t, err)
	_, err = f.challenges.CreateChallenge(ctx, ChallengeInput{
		ClusterID:            "basics",
		Title:                "Where Clause",
		Tier:                 "beginner",
		OptimalExecutionTime: 0.5,
		HintsAvailable:       2,
	})
	require.NoError(t, err)
}

func (f *fixture) player(t *testing.T, id, region string) {
	t.Helper()
	_, err := f.progression.EnsurePlayer(context.Background(), id, id, region)
	require.NoError(t, err)
}

func perfect(playerID, challengeID string) engine.Submission {
	return engine.Submission{
		PlayerID:    playerID,
		ChallengeID: challengeID,
		Query:       "SELECT * FROM t",
		Metrics:     engine.ExecutionMetrics{ExecutionTimeSeconds: 0.05, RowsScanned: 10, UsedIndex: true},
		Correct:     true,
	}
}
