package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

// GormTechLevelRepository implements empire.TechLevelRepository using GORM
type GormTechLevelRepository struct {
	db *gorm.DB
}

// NewGormTechLevelRepository creates a new GORM tech level repository
func NewGormTechLevelRepository(db *gorm.DB) *GormTechLevelRepository {
	return &GormTechLevelRepository{db: db}
}

// Level returns the researched level for a catalog key, zero when the
// technology has never been researched
func (r *GormTechLevelRepository) Level(ctx context.Context, empireID shared.EmpireID, catalogKey string) (int, error) {
	var model TechLevelModel
	result := r.db.WithContext(ctx).
		Where("empire_id = ? AND catalog_key = ?", empireID.Value(), catalogKey).
		First(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to find tech level: %w", result.Error)
	}
	return model.Level, nil
}

// Increment raises the researched level by one, creating the row on
// first research
func (r *GormTechLevelRepository) Increment(ctx context.Context, empireID shared.EmpireID, catalogKey string) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "empire_id"}, {Name: "catalog_key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"level": gorm.Expr("tech_levels.level + 1")}),
		}).
		Create(&TechLevelModel{
			EmpireID:   empireID.Value(),
			CatalogKey: catalogKey,
			Level:      1,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to increment tech level: %w", err)
	}
	return nil
}
