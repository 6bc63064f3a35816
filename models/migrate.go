package models

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AutoMigrate creates or updates every table the service owns and makes sure
// the badge catalog rows exist.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Player{},
		&Cluster{},
		&Challenge{},
		&LevelRecord{},
		&AttemptLog{},
		&LeaderboardEntry{},
		&BadgeType{},
		&UserBadge{},
	); err != nil {
		return err
	}
	types := append([]BadgeType(nil), BadgeTriggers...)
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "rarity"}),
	}).Create(&types).Error
}
