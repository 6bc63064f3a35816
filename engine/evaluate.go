package engine

// Player is the evaluation view of a player. Title is derived from Level, never stored.
type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	LevelState
	Skills Skills   `json:"skills"`
	Badges []string `json:"badges"`
}

// Challenge is the authored, immutable part of a level.
type Challenge struct {
	ID                   string   `json:"id"`
	ClusterID            string   `json:"cluster_id"`
	Tier                 Tier     `json:"difficulty_tier"`
	Criteria             Criteria `json:"expected_criteria"`
	OptimalExecutionTime float64  `json:"optimal_execution_time"`
	HintsAvailable       int      `json:"hints_available"`
}

// Submission is one attempt as received from the UI/API layer.
// Correct comes from an external result checker.
type Submission struct {
	ChallengeID string           `json:"challenge_id"`
	PlayerID    string           `json:"player_id"`
	Query       string           `json:"query"`
	Metrics     ExecutionMetrics `json:"metrics"`
	HintsUsed   int              `json:"hints_used"`
	Correct     bool             `json:"correct"`
}

// Snapshot is everything Evaluate reads. Cluster is optional.
type Snapshot struct {
	Player         Player
	Challenge      Challenge
	Record         LevelRecord
	Cluster        *Cluster
	ClusterRecords map[string]LevelRecord
}

// EvaluationResult is what the UI shows after a submission.
type EvaluationResult struct {
	Correctness          bool              `json:"correctness"`
	PerformanceRating    PerformanceRating `json:"performance_rating"`
	OverallScore         int               `json:"overall_score"`
	Stars                int               `json:"stars"`
	XPEarned             int               `json:"xp_earned"`
	NewLevel             int               `json:"new_level"`
	LeveledUp            bool              `json:"leveled_up"`
	NewTitle             string            `json:"new_title"`
	Completed            bool              `json:"completed"`
	ClusterProgress      int               `json:"cluster_progress"`
	ClusterProgressDelta int               `json:"cluster_progress_delta"`
	UnmetCriteria        []string          `json:"unmet_criteria,omitempty"`
	Feedback             string            `json:"feedback"`
	NewBadges            []string          `json:"new_badges,omitempty"`
}

// Outcome carries the result plus the new snapshots for the caller to persist.
type Outcome struct {
	Result          EvaluationResult
	Score           ScoreResult
	Player          Player
	Record          LevelRecord
	ClusterProgress *ClusterProgress
}

// Evaluate runs one submission through scoring, the xp ladder and the progress
// tracker. It is all-or-nothing: on error nothing in the returned Outcome is usable.
//
// XP is paid for improvement only: the ladder value of the new score minus the
// ladder value of the previous best on this challenge, floored at zero.
func Evaluate(snap Snapshot, sub Submission) (Outcome, error) {
	if sub.PlayerID != snap.Player.ID {
		return Outcome{}, inconsistentf("submission player %q does not match snapshot player %q", sub.PlayerID, snap.Player.ID)
	}
	if sub.ChallengeID != snap.Challenge.ID {
		return Outcome{}, inconsistentf("submission challenge %q does not match snapshot challenge %q", sub.ChallengeID, snap.Challenge.ID)
	}
	ch := snap.Challenge
	if !ch.Tier.Valid() {
		return Outcome{}, inconsistentf("challenge %q has unknown tier %q", ch.ID, ch.Tier)
	}
	if ch.HintsAvailable < 0 {
		return Outcome{}, inconsistentf("challenge %q has negative hints available", ch.ID)
	}
	if sub.HintsUsed < 0 || sub.HintsUsed > ch.HintsAvailable {
		return Outcome{}, invalidArgf("hints used must be within [0, %d], got %d", ch.HintsAvailable, sub.HintsUsed)
	}
	if err := snap.Player.Check(); err != nil {
		return Outcome{}, err
	}

	score, err := Score(ScoreInput{
		Correct:     sub.Correct,
		Metrics:     sub.Metrics,
		Criteria:    ch.Criteria,
		OptimalTime: ch.OptimalExecutionTime,
		HintsUsed:   sub.HintsUsed,
	})
	if err != nil {
		return Outcome{}, err
	}

	record, err := RecordAttempt(snap.Record, sub.Correct, sub.Metrics.ExecutionTimeSeconds, score.Overall)
	if err != nil {
		return Outcome{}, err
	}

	prevXP, err := XPEarned(ch.Tier, snap.Record.BestScore)
	if err != nil {
		return Outcome{}, err
	}
	newXP, err := XPEarned(ch.Tier, score.Overall)
	if err != nil {
		return Outcome{}, err
	}
	xp := newXP - prevXP
	if xp < 0 {
		xp = 0
	}

	levels, err := ApplyXP(snap.Player.LevelState, xp)
	if err != nil {
		return Outcome{}, err
	}

	player := snap.Player
	player.LevelState = levels
	player.Badges = append([]string(nil), snap.Player.Badges...)
	if sub.Correct && xp > 0 {
		player.Skills = GainSkills(player.Skills, ch.Tier, sub.Metrics, score.Performance)
	}

	out := Outcome{
		Score:  score,
		Player: player,
		Record: record,
		Result: EvaluationResult{
			Correctness:       score.Correct,
			PerformanceRating: score.Performance,
			OverallScore:      score.Overall,
			Stars:             score.Stars,
			XPEarned:          xp,
			NewLevel:          levels.Level,
			LeveledUp:         levels.Level > snap.Player.Level,
			NewTitle:          levels.Title(),
			Completed:         record.Completed,
			UnmetCriteria:     score.UnmetCriteria,
			Feedback:          feedbackFor(score),
		},
	}

	if snap.Cluster != nil {
		before := withRecord(snap.ClusterRecords, ch.ID, snap.Record)
		after := withRecord(snap.ClusterRecords, ch.ID, record)
		prev := RecomputeClusterProgress(*snap.Cluster, before)
		cur := RecomputeClusterProgress(*snap.Cluster, after)
		out.ClusterProgress = &cur
		out.Result.ClusterProgress = cur.ProgressPercent
		out.Result.ClusterProgressDelta = cur.ProgressPercent - prev.ProgressPercent
	}
	return out, nil
}

func withRecord(records map[string]LevelRecord, id string, rec LevelRecord) map[string]LevelRecord {
	out := make(map[string]LevelRecord, len(records)+1)
	for k, v := range records {
		out[k] = v
	}
	out[id] = rec
	return out
}

func feedbackFor(s ScoreResult) string {
	if !s.Correct {
		return "Your result set does not match the expected output."
	}
	msg := "Correct! "
	switch s.Stars {
	case 3:
		msg += "Excellent work."
	case 2:
		msg += "Good job."
	default:
		msg += "Solved, but there is room to improve."
	}
	if s.Performance == PerformanceFair || s.Performance == PerformancePoor {
		msg += " Consider an index or a narrower scan to speed the query up."
	}
	return msg
}
