package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type attemptStep struct {
	correct bool
	time    float64
	score   int
}

func TestRecordAttemptNeverRegresses(t *testing.T) {
	steps := []attemptStep{
		{correct: false, time: 0.2, score: 0},
		{correct: true, time: 1.5, score: 55},
		{correct: true, time: 0.9, score: 80},
		{correct: true, time: 2.0, score: 40},
		{correct: false, time: 0.01, score: 0},
		{correct: true, time: 0.9, score: 80},
		{correct: true, time: 0.4, score: 75},
	}

	var rec LevelRecord
	var prev LevelRecord
	for i, s := range steps {
		next, err := RecordAttempt(rec, s.correct, s.time, s.score)
		require.NoError(t, err)

		assert.Equal(t, i+1, next.Attempts)
		assert.GreaterOrEqual(t, next.BestScore, prev.BestScore)
		if prev.BestTimeSeconds != nil {
			require.NotNil(t, next.BestTimeSeconds)
			assert.LessOrEqual(t, *next.BestTimeSeconds, *prev.BestTimeSeconds)
		}
		if prev.Completed {
			assert.True(t, next.Completed)
		}
		prev, rec = next, next
	}

	assert.Equal(t, 80, rec.BestScore)
	require.NotNil(t, rec.BestTimeSeconds)
	assert.Equal(t, 0.4, *rec.BestTimeSeconds)
	assert.True(t, rec.Completed)
	assert.Equal(t, 7, rec.Attempts)
}

func TestRecordAttemptIgnoresTimeOfWrongAnswers(t *testing.T) {
	rec, err := RecordAttempt(LevelRecord{}, false, 0.01, 0)
	require.NoError(t, err)
	assert.Nil(t, rec.BestTimeSeconds)
	assert.Equal(t, 1, rec.Attempts)
	assert.False(t, rec.Completed)
}

func TestRecordAttemptCompletionThreshold(t *testing.T) {
	rec, err := RecordAttempt(LevelRecord{}, true, 1, PassingScore-1)
	require.NoError(t, err)
	assert.False(t, rec.Completed)

	rec, err = RecordAttempt(rec, true, 1, PassingScore)
	require.NoError(t, err)
	assert.True(t, rec.Completed)
}

func TestRecordAttemptDoesNotMutateInput(t *testing.T) {
	best := 1.0
	in := LevelRecord{BestScore: 50, BestTimeSeconds: &best, Attempts: 2}
	_, err := RecordAttempt(in, true, 0.5, 90)
	require.NoError(t, err)
	assert.Equal(t, 1.0, *in.BestTimeSeconds)
	assert.Equal(t, 50, in.BestScore)
	assert.Equal(t, 2, in.Attempts)
}

func TestRecordAttemptValidation(t *testing.T) {
	_, err := RecordAttempt(LevelRecord{}, true, -0.1, 50)
	assert.True(t, IsInvalidArgument(err))

	_, err = RecordAttempt(LevelRecord{}, true, 0.1, 101)
	assert.True(t, IsInvalidArgument(err))

	_, err = RecordAttempt(LevelRecord{BestScore: 150}, true, 0.1, 50)
	assert.True(t, IsInconsistentSnapshot(err))
}

func TestRecomputeClusterProgress(t *testing.T) {
	cluster := Cluster{ID: "joins", Name: "Joins & Relationships", ChallengeIDs: []string{"a", "b", "c"}}
	records := map[string]LevelRecord{
		"a":     {Completed: true},
		"b":     {Completed: false, Attempts: 3},
		"other": {Completed: true},
	}

	first := RecomputeClusterProgress(cluster, records)
	second := RecomputeClusterProgress(cluster, records)

	assert.Equal(t, first, second)
	assert.Equal(t, 33, first.ProgressPercent)
	assert.Equal(t, 1, first.Completed)
	assert.Equal(t, 3, first.Total)
	assert.Len(t, records, 3)
}

func TestRecomputeClusterProgressOrderIndependent(t *testing.T) {
	records := map[string]LevelRecord{"a": {Completed: true}, "c": {Completed: true}}
	x := RecomputeClusterProgress(Cluster{ID: "k", ChallengeIDs: []string{"a", "b", "c"}}, records)
	y := RecomputeClusterProgress(Cluster{ID: "k", ChallengeIDs: []string{"c", "b", "a"}}, records)
	assert.Equal(t, x.ProgressPercent, y.ProgressPercent)
	assert.Equal(t, 67, x.ProgressPercent)
}

func TestRecomputeClusterProgressEmpty(t *testing.T) {
	cp := RecomputeClusterProgress(Cluster{ID: "empty"}, nil)
	assert.Equal(t, 0, cp.ProgressPercent)
	assert.Equal(t, 0, cp.Total)
}

func TestRecomputeCareerProgress(t *testing.T) {
	clusters := []Cluster{
		{ID: "basics", ChallengeIDs: []string{"b1", "b2"}},
		{ID: "joins", ChallengeIDs: []string{"j1", "j2", "j3", "j4"}},
	}
	records := map[string]LevelRecord{
		"b1": {Completed: true},
		"b2": {Completed: true},
		"j1": {Completed: true},
	}
	cp := RecomputeCareerProgress(clusters, records)
	require.Len(t, cp.Clusters, 2)
	assert.Equal(t, 100, cp.Clusters[0].ProgressPercent)
	assert.Equal(t, 25, cp.Clusters[1].ProgressPercent)
	assert.Equal(t, 3, cp.Completed)
	assert.Equal(t, 6, cp.Total)
	assert.Equal(t, 50, cp.OverallPercent)
}
