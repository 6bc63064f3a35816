package engine

import (
	"math"
)

// PerformanceRating is the advisory speed bucket shown next to a score.
type PerformanceRating string

const (
	PerformanceExcellent PerformanceRating = "excellent"
	PerformanceGood      PerformanceRating = "good"
	PerformanceFair      PerformanceRating = "fair"
	PerformancePoor      PerformanceRating = "poor"
)

const (
	MaxScore = 100

	maxTimePenalty    = 30
	timePenaltyFactor = 20
	indexPenalty      = 20
	hintPenalty       = 10

	// full-scan override for the performance bucket
	fullScanRowThreshold = 1000
)

// ExecutionMetrics are measured by the external query runner.
type ExecutionMetrics struct {
	ExecutionTimeSeconds float64 `json:"execution_time_seconds"`
	RowsScanned          int64   `json:"rows_scanned"`
	UsedIndex            bool    `json:"used_index"`
	UsedJoin             bool    `json:"used_join"`
}

func (m ExecutionMetrics) validate() error {
	if m.ExecutionTimeSeconds < 0 || math.IsNaN(m.ExecutionTimeSeconds) || math.IsInf(m.ExecutionTimeSeconds, 0) {
		return invalidArgf("execution time must be a finite value >= 0, got %v", m.ExecutionTimeSeconds)
	}
	if m.RowsScanned < 0 {
		return invalidArgf("rows scanned must be >= 0, got %d", m.RowsScanned)
	}
	return nil
}

// Criteria is what a challenge author expects from a good solution. Nil fields are unset.
type Criteria struct {
	MaxExecutionTime *float64 `json:"max_execution_time,omitempty"`
	MustUseIndex     *bool    `json:"must_use_index,omitempty"`
	MustUseJoin      *bool    `json:"must_use_join,omitempty"`
	MaxRowsScanned   *int64   `json:"max_rows_scanned,omitempty"`
}

func (c Criteria) requiresIndex() bool { return c.MustUseIndex != nil && *c.MustUseIndex }
func (c Criteria) requiresJoin() bool { return c.MustUseJoin != nil && *c.MustUseJoin }

// Criterion names reported in ScoreResult.UnmetCriteria.
const (
	CriterionMaxExecutionTime = "max_execution_time"
	CriterionMustUseIndex     = "must_use_index"
	CriterionMustUseJoin      = "must_use_join"
	CriterionMaxRowsScanned   = "max_rows_scanned"
)

// ScoreInput groups everything the calculator needs.
type ScoreInput struct {
	Correct     bool
	Metrics     ExecutionMetrics
	Criteria    Criteria
	OptimalTime float64
	HintsUsed   int
}

// ScoreResult is the calculator output. Overall is always within [0, 100].
type ScoreResult struct {
	Correct       bool              `json:"correctness"`
	Performance   PerformanceRating `json:"performance_rating"`
	Overall       int               `json:"overall_score"`
	TimePenalty   int               `json:"time_penalty"`
	IndexPenalty  int               `json:"index_penalty"`
	HintPenalty   int               `json:"hint_penalty"`
	Stars         int               `json:"stars"`
	UnmetCriteria []string          `json:"unmet_criteria,omitempty"`
}

// Score derives the overall score and performance bucket for one attempt.
// A wrong answer always scores 0 with no performance rating; only correct answers
// go through the penalties.
func Score(in ScoreInput) (ScoreResult, error) {
	if err := in.Metrics.validate(); err != nil {
		return ScoreResult{}, err
	}
	if in.OptimalTime <= 0 || math.IsNaN(in.OptimalTime) || math.IsInf(in.OptimalTime, 0) {
		return ScoreResult{}, invalidArgf("optimal time must be > 0, got %v", in.OptimalTime)
	}
	if in.HintsUsed < 0 {
		return ScoreResult{}, invalidArgf("hints used must be >= 0, got %d", in.HintsUsed)
	}

	res := ScoreResult{
		Correct:       in.Correct,
		UnmetCriteria: unmetCriteria(in.Metrics, in.Criteria),
	}
	if !in.Correct {
		return res, nil
	}
	res.Performance = RatePerformance(in.Metrics)

	res.TimePenalty = timePenalty(in.Metrics.ExecutionTimeSeconds, in.OptimalTime)
	if in.Criteria.requiresIndex() && !in.Metrics.UsedIndex {
		res.IndexPenalty = indexPenalty
	}
	res.HintPenalty = hintPenalty * in.HintsUsed

	overall := MaxScore - res.TimePenalty - res.IndexPenalty - res.HintPenalty
	res.Overall = clamp(overall, 0, MaxScore)
	res.Stars = StarsFor(res.Overall)
	return res, nil
}

// timePenalty is 0 at or below the optimal time, then 20 points per 100% over it, capped at 30.
func timePenalty(executionTime, optimalTime float64) int {
	ratio := executionTime / optimalTime
	if ratio <= 1 {
		return 0
	}
	p := int(math.Round((ratio - 1) * timePenaltyFactor))
	if p > maxTimePenalty {
		return maxTimePenalty
	}
	return p
}

// RatePerformance buckets an execution by wall time, except that an unindexed
// scan over more than 1000 rows is always poor.
func RatePerformance(m ExecutionMetrics) PerformanceRating {
	if !m.UsedIndex && m.RowsScanned > fullScanRowThreshold {
		return PerformancePoor
	}
	switch t := m.ExecutionTimeSeconds; {
	case t < 0.1:
		return PerformanceExcellent
	case t < 0.5:
		return PerformanceGood
	case t < 2:
		return PerformanceFair
	default:
		return PerformancePoor
	}
}

// StarsFor maps an overall score of a correct answer to 1..3 stars.
func StarsFor(overall int) int {
	switch {
	case overall >= 90:
		return 3
	case overall >= PassingScore:
		return 2
	default:
		return 1
	}
}

func unmetCriteria(m ExecutionMetrics, c Criteria) []string {
	var unmet []string
	if c.MaxExecutionTime != nil && m.ExecutionTimeSeconds > *c.MaxExecutionTime {
		unmet = append(unmet, CriterionMaxExecutionTime)
	}
	if c.requiresIndex() && !m.UsedIndex {
		unmet = append(unmet, CriterionMustUseIndex)
	}
	if c.requiresJoin() && !m.UsedJoin {
		unmet = append(unmet, CriterionMustUseJoin)
	}
	if c.MaxRowsScanned != nil && m.RowsScanned > *c.MaxRowsScanned {
		unmet = append(unmet, CriterionMaxRowsScanned)
	}
	return unmet
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
