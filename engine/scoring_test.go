package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }
func floatPtr(v float64) *float64 { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestScoreCombinedPenalties(t *testing.T) {
	res, err := Score(ScoreInput{
		Correct:     true,
		Metrics:     ExecutionMetrics{ExecutionTimeSeconds: 1.2, RowsScanned: 500},
		Criteria:    Criteria{MustUseIndex: boolPtr(true)},
		OptimalTime: 0.8,
		HintsUsed:   1,
	})
	require.NoError(t, err)

	assert.Equal(t, 10, res.TimePenalty)
	assert.Equal(t, 20, res.IndexPenalty)
	assert.Equal(t, 10, res.HintPenalty)
	assert.Equal(t, 60, res.Overall)
	assert.Equal(t, PerformanceFair, res.Performance)
	assert.Equal(t, 1, res.Stars)
	assert.Equal(t, []string{CriterionMustUseIndex}, res.UnmetCriteria)
}

func TestScoreWrongAnswerIsZero(t *testing.T) {
	res, err := Score(ScoreInput{
		Correct:     false,
		Metrics:     ExecutionMetrics{ExecutionTimeSeconds: 0.01, UsedIndex: true},
		OptimalTime: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Overall)
	assert.Equal(t, 0, res.Stars)
	assert.False(t, res.Correct)
	assert.Empty(t, res.Performance)
}

func TestScoreBounds(t *testing.T) {
	tests := []struct {
		name    string
		in      ScoreInput
		overall int
	}{
		{
			name:    "faster than optimal earns no bonus",
			in:      ScoreInput{Correct: true, Metrics: ExecutionMetrics{ExecutionTimeSeconds: 0.1}, OptimalTime: 1},
			overall: 100,
		},
		{
			name:    "time penalty caps at 30",
			in:      ScoreInput{Correct: true, Metrics: ExecutionMetrics{ExecutionTimeSeconds: 10}, OptimalTime: 1},
			overall: 70,
		},
		{
			name:    "hint penalty floors at zero",
			in:      ScoreInput{Correct: true, Metrics: ExecutionMetrics{ExecutionTimeSeconds: 10}, OptimalTime: 1, HintsUsed: 12},
			overall: 0,
		},
		{
			name: "index used when required is not penalised",
			in: ScoreInput{
				Correct:     true,
				Metrics:     ExecutionMetrics{ExecutionTimeSeconds: 0.5, UsedIndex: true},
				Criteria:    Criteria{MustUseIndex: boolPtr(true)},
				OptimalTime: 0.5,
			},
			overall: 100,
		},
		{
			name: "must_use_index false is not a requirement",
			in: ScoreInput{
				Correct:     true,
				Metrics:     ExecutionMetrics{ExecutionTimeSeconds: 0.5},
				Criteria:    Criteria{MustUseIndex: boolPtr(false)},
				OptimalTime: 0.5,
			},
			overall: 100,
		},
		{
			name:    "zero execution time",
			in:      ScoreInput{Correct: true, OptimalTime: 0.2},
			overall: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Score(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.overall, res.Overall)
			assert.GreaterOrEqual(t, res.Overall, 0)
			assert.LessOrEqual(t, res.Overall, 100)
		})
	}
}

func TestScoreRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		in   ScoreInput
	}{
		{"negative time", ScoreInput{Correct: true, Metrics: ExecutionMetrics{ExecutionTimeSeconds: -1}, OptimalTime: 1}},
		{"negative rows", ScoreInput{Correct: true, Metrics: ExecutionMetrics{RowsScanned: -5}, OptimalTime: 1}},
		{"zero optimal time", ScoreInput{Correct: true, OptimalTime: 0}},
		{"negative hints", ScoreInput{Correct: true, OptimalTime: 1, HintsUsed: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Score(tt.in)
			require.Error(t, err)
			assert.True(t, IsInvalidArgument(err))
			assert.False(t, IsInconsistentSnapshot(err))
		})
	}
}

func TestRatePerformance(t *testing.T) {
	tests := []struct {
		metrics ExecutionMetrics
		want    PerformanceRating
	}{
		{ExecutionMetrics{ExecutionTimeSeconds: 0.05, UsedIndex: true}, PerformanceExcellent},
		{ExecutionMetrics{ExecutionTimeSeconds: 0.1}, PerformanceGood},
		{ExecutionMetrics{ExecutionTimeSeconds: 0.49}, PerformanceGood},
		{ExecutionMetrics{ExecutionTimeSeconds: 1.99}, PerformanceFair},
		{ExecutionMetrics{ExecutionTimeSeconds: 2}, PerformancePoor},
		// unindexed large scan overrides a fast time
		{ExecutionMetrics{ExecutionTimeSeconds: 0.01, RowsScanned: 1001}, PerformancePoor},
		{ExecutionMetrics{ExecutionTimeSeconds: 0.01, RowsScanned: 1000}, PerformanceExcellent},
		{ExecutionMetrics{ExecutionTimeSeconds: 0.01, RowsScanned: 50000, UsedIndex: true}, PerformanceExcellent},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RatePerformance(tt.metrics), "%+v", tt.metrics)
	}
}

func TestUnmetCriteriaAreAdvisory(t *testing.T) {
	res, err := Score(ScoreInput{
		Correct: true,
		Metrics: ExecutionMetrics{ExecutionTimeSeconds: 0.3, RowsScanned: 200},
		Criteria: Criteria{
			MaxExecutionTime: floatPtr(0.2),
			MustUseJoin:      boolPtr(true),
			MaxRowsScanned:   int64Ptr(100),
		},
		OptimalTime: 0.3,
	})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Overall)
	assert.Equal(t, []string{CriterionMaxExecutionTime, CriterionMustUseJoin, CriterionMaxRowsScanned}, res.UnmetCriteria)
}

func TestStarsFor(t *testing.T) {
	assert.Equal(t, 3, StarsFor(100))
	assert.Equal(t, 3, StarsFor(90))
	assert.Equal(t, 2, StarsFor(89))
	assert.Equal(t, 2, StarsFor(70))
	assert.Equal(t, 1, StarsFor(69))
	assert.Equal(t, 1, StarsFor(0))
}
