package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/stellaredge/empire-engine/internal/domain/empire"
	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

// GormEmpireRepository implements empire.Repository using GORM
type GormEmpireRepository struct {
	db *gorm.DB
}

// NewGormEmpireRepository creates a new GORM empire repository
func NewGormEmpireRepository(db *gorm.DB) *GormEmpireRepository {
	return &GormEmpireRepository{db: db}
}

// FindByID retrieves an empire by ID, including its base coordinates
func (r *GormEmpireRepository) FindByID(ctx context.Context, id shared.EmpireID) (*empire.Empire, error) {
	var model EmpireModel
	result := r.db.WithContext(ctx).Where("id = ?", id.Value()).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewEmpireNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to find empire: %w", result.Error)
	}

	var baseCoords []string
	if err := r.db.WithContext(ctx).
		Model(&BaseModel{}).
		Where("empire_id = ?", id.Value()).
		Pluck("coordinate", &baseCoords).Error; err != nil {
		return nil, fmt.Errorf("failed to load empire bases: %w", err)
	}

	bases := make([]shared.Coordinate, 0, len(baseCoords))
	for _, c := range baseCoords {
		coord, err := shared.ParseCoordinate(c)
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate in database: %w", err)
		}
		bases = append(bases, coord)
	}

	return &empire.Empire{
		ID:      id,
		Name:    model.Name,
		Credits: model.Credits,
		Bases:   bases,
	}, nil
}

// Save persists an empire (upsert)
func (r *GormEmpireRepository) Save(ctx context.Context, e *empire.Empire) error {
	model := &EmpireModel{
		ID:      e.ID.Value(),
		Name:    e.Name,
		Credits: e.Credits,
	}
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save empire: %w", err)
	}
	return nil
}

// AdjustCredits applies a signed delta to the empire's balance as a
// single conditional update. A debit never drives the balance below
// zero: the update matches no row and InsufficientCreditsError is
// returned with the current balance.
func (r *GormEmpireRepository) AdjustCredits(ctx context.Context, id shared.EmpireID, delta int) (int, error) {
	result := r.db.WithContext(ctx).
		Model(&EmpireModel{}).
		Where("id = ? AND credits + ? >= 0", id.Value(), delta).
		Update("credits", gorm.Expr("credits + ?", delta))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to adjust credits: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var model EmpireModel
		lookup := r.db.WithContext(ctx).Where("id = ?", id.Value()).First(&model)
		if lookup.Error != nil {
			if errors.Is(lookup.Error, gorm.ErrRecordNotFound) {
				return 0, shared.NewEmpireNotFoundError(id)
			}
			return 0, fmt.Errorf("failed to find empire: %w", lookup.Error)
		}
		return 0, empire.NewInsufficientCreditsError(id, model.Credits, -delta)
	}

	var balance int
	if err := r.db.WithContext(ctx).
		Model(&EmpireModel{}).
		Where("id = ?", id.Value()).
		Pluck("credits", &balance).Error; err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}
	return balance, nil
}
