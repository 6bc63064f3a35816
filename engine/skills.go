package engine

const maxSkill = 100

// Skills are the four 0..100 gauges on a player's profile.
type Skills struct {
	Querying     int `json:"querying"`
	Optimization int `json:"optimization"`
	Indexing     int `json:"indexing"`
	Joins        int `json:"joins"`
}

var tierWeight = map[Tier]int{
	TierBeginner:     1,
	TierIntermediate: 2,
	TierAdvanced:     3,
	TierExpert:       4,
}

// GainSkills applies the gauge increments for a rewarded, correct attempt.
func GainSkills(s Skills, tier Tier, m ExecutionMetrics, rating PerformanceRating) Skills {
	s.Querying = clamp(s.Querying+tierWeight[tier], 0, maxSkill)
	switch rating {
	case PerformanceExcellent:
		s.Optimization = clamp(s.Optimization+3, 0, maxSkill)
	case PerformanceGood:
		s.Optimization = clamp(s.Optimization+2, 0, maxSkill)
	case PerformanceFair:
		s.Optimization = clamp(s.Optimization+1, 0, maxSkill)
	}
	if m.UsedIndex {
		s.Indexing = clamp(s.Indexing+2, 0, maxSkill)
	}
	if m.UsedJoin {
		s.Joins = clamp(s.Joins+2, 0, maxSkill)
	}
	return s
}
