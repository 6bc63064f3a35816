package services

import (
	"context"
	"testing"

	"sql-career-engine/engine"
	"sql-career-engine/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateClusterUsesSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.challenges.CreateCluster(ctx, ClusterInput{Name: "Joins & Relationships"})
	require.NoError(t, err)
	assert.Equal(t, "joins-and-relationships", c.ID)

	_, err = f.challenges.CreateCluster(ctx, ClusterInput{Name: "Joins & Relationships"})
	assert.True(t, engine.IsInvalidArgument(err))

	_, err = f.challenges.CreateCluster(ctx, ClusterInput{Name: "   "})
	assert.True(t, engine.IsInvalidArgument(err))
}

func TestCreateChallengeValidation(t *testing.T) {
	f := newFixture(t)
	f.seedBasics(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   ChallengeInput
	}{
		{"missing title", ChallengeInput{ClusterID: "basics", Tier: "beginner", OptimalExecutionTime: 1}},
		{"bad tier", ChallengeInput{ClusterID: "basics", Title: "X", Tier: "legendary", OptimalExecutionTime: 1}},
		{"bad type", ChallengeInput{ClusterID: "basics", Title: "X", Tier: "beginner", Type: "quiz", OptimalExecutionTime: 1}},
		{"zero optimal time", ChallengeInput{ClusterID: "basics", Title: "X", Tier: "beginner"}},
		{"negative hints", ChallengeInput{ClusterID: "basics", Title: "X", Tier: "beginner", OptimalExecutionTime: 1, HintsAvailable: -1}},
		{"duplicate", ChallengeInput{ClusterID: "basics", Title: "Where Clause", Tier: "beginner", OptimalExecutionTime: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.challenges.CreateChallenge(ctx, tt.in)
			assert.True(t, engine.IsInvalidArgument(err), "got %v", err)
		})
	}

	_, err := f.challenges.CreateChallenge(ctx, ChallengeInput{ClusterID: "nope", Title: "X", Tier: "beginner", OptimalExecutionTime: 1})
	assert.True(t, engine.IsNotFound(err))
}

func TestCreateChallengeAppendsPosition(t *testing.T) {
	f := newFixture(t)
	f.seedBasics(t)

	ch, err := f.challenges.CreateChallenge(context.Background(), ChallengeInput{
		ClusterID: "basics", Title: "Count Rows", Tier: "intermediate", OptimalExecutionTime: 0.2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, ch.Position)
	assert.Equal(t, models.ChallengeQueryWriting, ch.Type)

	got, err := f.challenges.GetChallenge(context.Background(), "count-rows")
	require.NoError(t, err)
	assert.Equal(t, "Count Rows", got.Title)

	_, err = f.challenges.GetChallenge(context.Background(), "missing")
	assert.True(t, engine.IsNotFound(err))
}

func TestSeedIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.challenges.Seed(ctx))
	require.NoError(t, f.challenges.Seed(ctx))

	clusters, err := f.challenges.ListClusters(ctx)
	require.NoError(t, err)
	require.Len(t, clusters, 4)
	assert.Equal(t, "basics", clusters[0].ID)
	assert.Equal(t, "filtering-and-sorting", clusters[1].ID)
	assert.Equal(t, "joins-and-relationships", clusters[2].ID)
	assert.Equal(t, "indexes-and-performance", clusters[3].ID)

	for _, c := range clusters {
		require.NotEmpty(t, c.Challenges, c.ID)
		for i, ch := range c.Challenges {
			assert.Equal(t, i+1, ch.Position)
			assert.True(t, engine.Tier(ch.Tier).Valid())
		}
	}
	assert.Equal(t, "select-all-customers", clusters[0].Challenges[0].ID)
}
