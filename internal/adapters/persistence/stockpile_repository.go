package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

// GormStockpileRepository implements base.StockpileRepository using GORM
type GormStockpileRepository struct {
	db *gorm.DB
}

// NewGormStockpileRepository creates a new GORM stockpile repository
func NewGormStockpileRepository(db *gorm.DB) *GormStockpileRepository {
	return &GormStockpileRepository{db: db}
}

// Count returns how many of a catalog key the base holds
func (r *GormStockpileRepository) Count(ctx context.Context, coord shared.Coordinate, catalogKey string) (int, error) {
	var model StockpileModel
	result := r.db.WithContext(ctx).
		Where("coordinate = ? AND catalog_key = ?", coord.String(), catalogKey).
		First(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to find stockpile: %w", result.Error)
	}
	return model.Count, nil
}

// Increment adds n to the base's count for a catalog key, creating the
// row on first completion
func (r *GormStockpileRepository) Increment(ctx context.Context, coord shared.Coordinate, catalogKey string, n int) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "coordinate"}, {Name: "catalog_key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("stockpiles.count + ?", n)}),
		}).
		Create(&StockpileModel{
			Coordinate: coord.String(),
			CatalogKey: catalogKey,
			Count:      n,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to increment stockpile: %w", err)
	}
	return nil
}
