package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"sql-career-engine/engine"
	"sql-career-engine/logger"
	"sql-career-engine/models"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChallengeService struct {
	DB  *gorm.DB
	log *logger.Logger
}

func NewChallengeService(db *gorm.DB, log *logger.Logger) *ChallengeService {
	return &ChallengeService{DB: db, log: log.With("service", "ChallengeService")}
}

type ClusterInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Position    int    `json:"position"`
}

type ChallengeInput struct {
	ClusterID            string   `json:"cluster_id"`
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	Type                 string   `json:"challenge_type"`
	Tier                 string   `json:"difficulty_tier"`
	Position             int      `json:"position"`
	MaxExecutionTime     *float64 `json:"max_execution_time"`
	MustUseIndex         *bool    `json:"must_use_index"`
	MustUseJoin          *bool    `json:"must_use_join"`
	MaxRowsScanned       *int64   `json:"max_rows_scanned"`
	OptimalExecutionTime float64  `json:"optimal_execution_time"`
	HintsAvailable       int      `json:"hints_available"`
}

func invalidArg(format string, args ...any) error {
	return fmt.Errorf("%w: %s", engine.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func notFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", engine.ErrNotFound, fmt.Sprintf(format, args...))
}

// CreateCluster stores a cluster keyed by the slug of its name.
func (s *ChallengeService) CreateCluster(ctx context.Context, in ClusterInput) (*models.Cluster, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalidArg("cluster name is required")
	}
	cluster := models.Cluster{
		ID:          slug.Make(name),
		Name:        name,
		Description: in.Description,
		Position:    in.Position,
	}
	if cluster.ID == "" {
		return nil, invalidArg("cluster name %q has no usable characters", name)
	}
	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&cluster)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, invalidArg("cluster %q already exists", cluster.ID)
	}
	s.log.Info("cluster created", "cluster_id", cluster.ID)
	return &cluster, nil
}

func (in ChallengeInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return invalidArg("challenge title is required")
	}
	if strings.TrimSpace(in.ClusterID) == "" {
		return invalidArg("cluster_id is required")
	}
	if !engine.Tier(in.Tier).Valid() {
		return invalidArg("unknown difficulty tier %q", in.Tier)
	}
	if in.Type != "" && !slices.Contains(models.ChallengeTypes, in.Type) {
		return invalidArg("unknown challenge type %q", in.Type)
	}
	if in.OptimalExecutionTime <= 0 {
		return invalidArg("optimal_execution_time must be > 0")
	}
	if in.HintsAvailable < 0 {
		return invalidArg("hints_available must be >= 0")
	}
	if in.MaxExecutionTime != nil && *in.MaxExecutionTime <= 0 {
		return invalidArg("max_execution_time must be > 0 when set")
	}
	if in.MaxRowsScanned != nil && *in.MaxRowsScanned < 0 {
		return invalidArg("max_rows_scanned must be >= 0 when set")
	}
	return nil
}

func (in ChallengeInput) toModel() models.Challenge {
	ch := models.Challenge{
		ID:                   slug.Make(in.Title),
		ClusterID:            in.ClusterID,
		Position:             in.Position,
		Title:                strings.TrimSpace(in.Title),
		Description:          in.Description,
		Type:                 in.Type,
		Tier:                 in.Tier,
		MaxExecutionTime:     in.MaxExecutionTime,
		MustUseIndex:         in.MustUseIndex,
		MustUseJoin:          in.MustUseJoin,
		MaxRowsScanned:       in.MaxRowsScanned,
		OptimalExecutionTime: in.OptimalExecutionTime,
		HintsAvailable:       in.HintsAvailable,
	}
	if ch.Type == "" {
		ch.Type = models.ChallengeQueryWriting
	}
	return ch
}

// CreateChallenge appends a challenge to its cluster. A zero position places it last.
func (s *ChallengeService) CreateChallenge(ctx context.Context, in ChallengeInput) (*models.Challenge, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	ch := in.toModel()

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cluster models.Cluster
		if err := tx.Where("id = ?", in.ClusterID).First(&cluster).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("cluster %q", in.ClusterID)
			}
			return err
		}
		if ch.Position == 0 {
			var maxPos int
			if err := tx.Model(&models.Challenge{}).
				Where("cluster_id = ?", cluster.ID).
				Select("COALESCE(MAX(position), 0)").
				Scan(&maxPos).Error; err != nil {
				return err
			}
			ch.Position = maxPos + 1
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ch)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return invalidArg("challenge %q already exists", ch.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("challenge created", "challenge_id", ch.ID, "cluster_id", ch.ClusterID, "tier", ch.Tier)
	return &ch, nil
}

// ListClusters returns the career map: clusters and their challenges, both in position order.
func (s *ChallengeService) ListClusters(ctx context.Context) ([]models.Cluster, error) {
	var clusters []models.Cluster
	err := s.DB.WithContext(ctx).
		Preload("Challenges", orderedChallenges).
		Order("position ASC, id ASC").
		Find(&clusters).Error
	return clusters, err
}

func orderedChallenges(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

func (s *ChallengeService) GetChallenge(ctx context.Context, id string) (*models.Challenge, error) {
	var ch models.Challenge
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&ch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("challenge %q", id)
		}
		return nil, err
	}
	return &ch, nil
}

type seedCluster struct {
	name        string
	description string
	challenges  []ChallengeInput
}

func ptr[T any](v T) *T { return &v }

var starterCareer = []seedCluster{
	{
		name:        "Basics",
		description: "SELECT, FROM and the shape of a result set.",
		challenges: []ChallengeInput{
			{Title: "Select All Customers", Tier: "beginner", OptimalExecutionTime: 0.05, HintsAvailable: 2},
			{Title: "Pick Columns", Tier: "beginner", OptimalExecutionTime: 0.05, HintsAvailable: 2},
			{Title: "Distinct Countries", Tier: "beginner", OptimalExecutionTime: 0.1, HintsAvailable: 2},
		},
	},
	{
		name:        "Filtering & Sorting",
		description: "WHERE, ORDER BY and LIMIT.",
		challenges: []ChallengeInput{
			{Title: "Orders Over 100", Tier: "beginner", OptimalExecutionTime: 0.1, HintsAvailable: 2, MaxExecutionTime: ptr(1.0)},
			{Title: "Latest Ten Orders", Tier: "intermediate", OptimalExecutionTime: 0.1, HintsAvailable: 3},
			{Title: "Top Customers By Spend", Tier: "intermediate", Type: models.ChallengeBossFight, OptimalExecutionTime: 0.3, HintsAvailable: 3},
		},
	},
	{
		name:        "Joins & Relationships",
		description: "Combining tables with INNER and OUTER joins.",
		challenges: []ChallengeInput{
			{Title: "Orders With Customer Names", Tier: "intermediate", OptimalExecutionTime: 0.2, HintsAvailable: 3, MustUseJoin: ptr(true)},
			{Title: "Customers Without Orders", Tier: "advanced", OptimalExecutionTime: 0.3, HintsAvailable: 3, MustUseJoin: ptr(true)},
			{Title: "Revenue Per Category", Tier: "advanced", Type: models.ChallengeBossFight, OptimalExecutionTime: 0.5, HintsAvailable: 3, MustUseJoin: ptr(true)},
		},
	},
	{
		name:        "Indexes & Performance",
		description: "Reading plans and making queries fast.",
		challenges: []ChallengeInput{
			{Title: "Lookup By Email", Tier: "advanced", Type: models.ChallengeOptimization, OptimalExecutionTime: 0.01, HintsAvailable: 2, MustUseIndex: ptr(true), MaxRowsScanned: ptr(int64(10))},
			{Title: "Range Scan On Dates", Tier: "expert", Type: models.ChallengeOptimization, OptimalExecutionTime: 0.05, HintsAvailable: 2, MustUseIndex: ptr(true), MaxRowsScanned: ptr(int64(1000))},
			{Title: "Covering Index Report", Tier: "expert", Type: models.ChallengeBossFight, OptimalExecutionTime: 0.1, HintsAvailable: 1, MustUseIndex: ptr(true), MustUseJoin: ptr(true)},
		},
	},
}

// Seed installs the starter career. Existing clusters and challenges are left alone.
func (s *ChallengeService) Seed(ctx context.Context) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for ci, sc := range starterCareer {
			cluster := models.Cluster{
				ID:          slug.Make(sc.name),
				Name:        sc.name,
				Description: sc.description,
				Position:    ci + 1,
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&cluster).Error; err != nil {
				return err
			}
			for i, in := range sc.challenges {
				in.ClusterID = cluster.ID
				in.Position = i + 1
				if err := in.validate(); err != nil {
					return err
				}
				ch := in.toModel()
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ch).Error; err != nil {
					return err
				}
			}
		}
		s.log.Info("starter career seeded", "clusters", len(starterCareer))
		return nil
	})
}
