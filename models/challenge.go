package models

import (
	"sql-career-engine/engine"
)

// Challenge types shown in the career map.
const (
	ChallengeQueryWriting = "query_writing"
	ChallengeOptimization = "optimization"
	ChallengeBestPractice = "best_practices"
	ChallengeBossFight    = "boss_fight"
)

var ChallengeTypes = []string{ChallengeQueryWriting, ChallengeOptimization, ChallengeBestPractice, ChallengeBossFight}

// Cluster groups consecutive challenges sharing a topic.
type Cluster struct {
	ID          string      `gorm:"primaryKey;type:varchar(128)" json:"id"` // slug of Name
	Name        string      `gorm:"not null" json:"name"`
	Description string      `gorm:"type:text" json:"description,omitempty"`
	Position    int         `gorm:"index;not null;default:0" json:"position"`
	Challenges  []Challenge `gorm:"foreignKey:ClusterID" json:"challenges,omitempty"`

	Timestamps
}

// ToEngine expects Challenges to be loaded in position order.
func (c *Cluster) ToEngine() engine.Cluster {
	ids := make([]string, 0, len(c.Challenges))
	for _, ch := range c.Challenges {
		ids = append(ids, ch.ID)
	}
	return engine.Cluster{ID: c.ID, Name: c.Name, ChallengeIDs: ids}
}

type Challenge struct {
	ID          string `gorm:"primaryKey;type:varchar(128)" json:"id"` // slug of Title
	ClusterID   string `gorm:"index;not null;type:varchar(128)" json:"cluster_id"`
	Position    int    `gorm:"not null;default:0" json:"position"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Type        string `gorm:"column:challenge_type;type:varchar(32);not null;default:'query_writing'" json:"challenge_type"`
	Tier        string `gorm:"column:difficulty_tier;type:varchar(16);not null" json:"difficulty_tier"`

	// expected criteria; nil means unset
	MaxExecutionTime *float64 `json:"max_execution_time,omitempty"`
	MustUseIndex     *bool    `json:"must_use_index,omitempty"`
	MustUseJoin      *bool    `json:"must_use_join,omitempty"`
	MaxRowsScanned   *int64   `json:"max_rows_scanned,omitempty"`

	OptimalExecutionTime float64 `gorm:"not null" json:"optimal_execution_time"`
	HintsAvailable       int     `gorm:"not null;default:0" json:"hints_available"`

	Timestamps
}

func (c *Challenge) Criteria() engine.Criteria {
	return engine.Criteria{
		MaxExecutionTime: c.MaxExecutionTime,
		MustUseIndex:     c.MustUseIndex,
		MustUseJoin:      c.MustUseJoin,
		MaxRowsScanned:   c.MaxRowsScanned,
	}
}

func (c *Challenge) ToEngine() engine.Challenge {
	return engine.Challenge{
		ID:                   c.ID,
		ClusterID:            c.ClusterID,
		Tier:                 engine.Tier(c.Tier),
		Criteria:             c.Criteria(),
		OptimalExecutionTime: c.OptimalExecutionTime,
		HintsAvailable:       c.HintsAvailable,
	}
}
