package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/stellaredge/empire-engine/internal/domain/base"
	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

// GormBaseRepository implements base.Repository using GORM
type GormBaseRepository struct {
	db *gorm.DB
}

// NewGormBaseRepository creates a new GORM base repository
func NewGormBaseRepository(db *gorm.DB) *GormBaseRepository {
	return &GormBaseRepository{db: db}
}

// FindByCoordinate retrieves a base by its map coordinate
func (r *GormBaseRepository) FindByCoordinate(ctx context.Context, coord shared.Coordinate) (*base.Base, error) {
	var model BaseModel
	result := r.db.WithContext(ctx).Where("coordinate = ?", coord.String()).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewBaseNotFoundError(coord)
		}
		return nil, fmt.Errorf("failed to find base: %w", result.Error)
	}
	return r.modelToBase(&model)
}

// Save persists a base (upsert)
func (r *GormBaseRepository) Save(ctx context.Context, b *base.Base) error {
	model := &BaseModel{
		Coordinate:         b.Coordinate.String(),
		EmpireID:           b.EmpireID.Value(),
		Name:               b.Name,
		SolarRating:        b.SolarRating,
		GasRating:          b.GasRating,
		MetalRating:        b.MetalRating,
		CrystalRating:      b.CrystalRating,
		Fertility:          b.Fertility,
		Area:               b.Area,
		PopulationCapacity: b.PopulationCapacity,
	}
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save base: %w", err)
	}
	return nil
}

func (r *GormBaseRepository) modelToBase(model *BaseModel) (*base.Base, error) {
	coord, err := shared.ParseCoordinate(model.Coordinate)
	if err != nil {
		return nil, fmt.Errorf("invalid coordinate in database: %w", err)
	}
	empireID, err := shared.NewEmpireID(model.EmpireID)
	if err != nil {
		return nil, fmt.Errorf("invalid empire ID in database: %w", err)
	}
	return &base.Base{
		Coordinate:         coord,
		EmpireID:           empireID,
		Name:               model.Name,
		SolarRating:        model.SolarRating,
		GasRating:          model.GasRating,
		MetalRating:        model.MetalRating,
		CrystalRating:      model.CrystalRating,
		Fertility:          model.Fertility,
		Area:               model.Area,
		PopulationCapacity: model.PopulationCapacity,
	}, nil
}
