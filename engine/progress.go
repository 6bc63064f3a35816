package engine

import (
	"math"
)

// PassingScore completes a level. The results screen auto-advances on the same value.
const PassingScore = 70

// LevelRecord is one player's history on one challenge.
type LevelRecord struct {
	BestScore       int      `json:"best_score"`
	BestTimeSeconds *float64 `json:"best_time_seconds,omitempty"`
	Completed       bool     `json:"completed"`
	Attempts        int      `json:"attempts"`
}

func (r LevelRecord) check() error {
	if r.BestScore < 0 || r.BestScore > MaxScore {
		return inconsistentf("best score %d outside [0, %d]", r.BestScore, MaxScore)
	}
	if r.Attempts < 0 {
		return inconsistentf("attempts must be >= 0, got %d", r.Attempts)
	}
	if r.BestTimeSeconds != nil && *r.BestTimeSeconds < 0 {
		return inconsistentf("best time must be >= 0, got %v", *r.BestTimeSeconds)
	}
	return nil
}

// RecordAttempt folds one scored attempt into a level record.
// Best score and best time only improve; completion is sticky; attempts always count.
// Execution time is only considered for correct attempts.
func RecordAttempt(rec LevelRecord, correct bool, executionTime float64, score int) (LevelRecord, error) {
	if err := rec.check(); err != nil {
		return LevelRecord{}, err
	}
	if score < 0 || score > MaxScore {
		return LevelRecord{}, invalidArgf("score must be within [0, %d], got %d", MaxScore, score)
	}
	if executionTime < 0 || math.IsNaN(executionTime) || math.IsInf(executionTime, 0) {
		return LevelRecord{}, invalidArgf("execution time must be a finite value >= 0, got %v", executionTime)
	}

	next := rec
	next.Attempts++
	if score > next.BestScore {
		next.BestScore = score
	}
	if correct && (next.BestTimeSeconds == nil || executionTime < *next.BestTimeSeconds) {
		t := executionTime
		next.BestTimeSeconds = &t
	}
	next.Completed = rec.Completed || score >= PassingScore
	return next, nil
}

// Cluster is an ordered group of challenges sharing a topic.
type Cluster struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	ChallengeIDs []string `json:"challenge_ids"`
}

// ClusterProgress is derived, never stored independently.
type ClusterProgress struct {
	ClusterID       string `json:"cluster_id"`
	Name            string `json:"name"`
	Completed       int    `json:"completed"`
	Total           int    `json:"total"`
	ProgressPercent int    `json:"progress_percent"`
}

// RecomputeClusterProgress is a pure reduction over the records of the cluster's challenges.
// Records for challenges outside the cluster are ignored; missing records count as not completed.
func RecomputeClusterProgress(c Cluster, records map[string]LevelRecord) ClusterProgress {
	completed, total := countCompleted(c.ChallengeIDs, records)
	return ClusterProgress{
		ClusterID:       c.ID,
		Name:            c.Name,
		Completed:       completed,
		Total:           total,
		ProgressPercent: percent(completed, total),
	}
}

// CareerProgress summarises every cluster plus the overall completion across all of them.
type CareerProgress struct {
	Clusters       []ClusterProgress `json:"clusters"`
	Completed      int               `json:"completed"`
	Total          int               `json:"total"`
	OverallPercent int               `json:"overall_percent"`
}

func RecomputeCareerProgress(clusters []Cluster, records map[string]LevelRecord) CareerProgress {
	out := CareerProgress{Clusters: make([]ClusterProgress, 0, len(clusters))}
	for _, c := range clusters {
		cp := RecomputeClusterProgress(c, records)
		out.Clusters = append(out.Clusters, cp)
		out.Completed += cp.Completed
		out.Total += cp.Total
	}
	out.OverallPercent = percent(out.Completed, out.Total)
	return out
}

func countCompleted(ids []string, records map[string]LevelRecord) (completed, total int) {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		total++
		if records[id].Completed {
			completed++
		}
	}
	return completed, total
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(whole)))
}
