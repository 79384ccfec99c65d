package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/stellaredge/empire-engine/internal/domain/base"
	"github.com/stellaredge/empire-engine/internal/domain/queue"
	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

// GormBuildingRepository implements base.BuildingRepository using GORM.
// Status-affecting writes are conditional updates so the sweep, a
// cancellation and an admission racing on the same row cannot step on
// each other regardless of the caller-side locking.
type GormBuildingRepository struct {
	db *gorm.DB
}

// NewGormBuildingRepository creates a new GORM building repository
func NewGormBuildingRepository(db *gorm.DB) *GormBuildingRepository {
	return &GormBuildingRepository{db: db}
}

// ListAt retrieves every building record at a base
func (r *GormBuildingRepository) ListAt(ctx context.Context, coord shared.Coordinate) ([]*base.BuildingRecord, error) {
	var models []BuildingModel
	result := r.db.WithContext(ctx).
		Where("coordinate = ?", coord.String()).
		Order("catalog_key").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list buildings: %w", result.Error)
	}

	records := make([]*base.BuildingRecord, 0, len(models))
	for i := range models {
		rec, err := r.modelToRecord(&models[i])
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// FindAt retrieves the record for one catalog key at a base, nil when absent
func (r *GormBuildingRepository) FindAt(ctx context.Context, coord shared.Coordinate, catalogKey string) (*base.BuildingRecord, error) {
	var model BuildingModel
	result := r.db.WithContext(ctx).
		Where("coordinate = ? AND catalog_key = ?", coord.String(), catalogKey).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find building: %w", result.Error)
	}
	return r.modelToRecord(&model)
}

// FindByOrderID retrieves the record carrying an in-flight order id
func (r *GormBuildingRepository) FindByOrderID(ctx context.Context, orderID string) (*base.BuildingRecord, error) {
	var model BuildingModel
	result := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find building order: %w", result.Error)
	}
	return r.modelToRecord(&model)
}

// Insert persists a new building record
func (r *GormBuildingRepository) Insert(ctx context.Context, rec *base.BuildingRecord) error {
	model := &BuildingModel{
		Coordinate:     rec.Coordinate.String(),
		CatalogKey:     rec.CatalogKey,
		EmpireID:       rec.EmpireID.Value(),
		Level:          rec.Level,
		Active:         rec.Active,
		PendingUpgrade: rec.PendingUpgrade,
		StartedAt:      rec.StartedAt,
		CompletesAt:    rec.CompletesAt,
		CreditsCost:    rec.CreditsCost,
		OrderID:        rec.OrderID,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to insert building: %w", err)
	}
	return nil
}

// MarkUpgrading flips an existing record into an upgrade in progress.
// Conditional on no upgrade already running: the record must either be
// active or have an elapsed completion time (finished but unswept).
func (r *GormBuildingRepository) MarkUpgrading(ctx context.Context, coord shared.Coordinate, catalogKey string, orderID string, startedAt, completesAt time.Time, creditsCost int) error {
	result := r.db.WithContext(ctx).
		Model(&BuildingModel{}).
		Where("coordinate = ? AND catalog_key = ? AND pending_upgrade = ? AND (active = ? OR completes_at <= ?)",
			coord.String(), catalogKey, false, true, startedAt).
		Updates(map[string]interface{}{
			"active":          false,
			"pending_upgrade": true,
			"started_at":      startedAt,
			"completes_at":    completesAt,
			"credits_cost":    creditsCost,
			"order_id":        orderID,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark building upgrading: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("building %s at %s is not upgradable", catalogKey, coord)
	}
	return nil
}

// ActivateDue finalizes records whose completion time has passed.
// Upgrades bump their level; first builds keep the level they were
// inserted with. Both become active with the upgrade flag cleared.
func (r *GormBuildingRepository) ActivateDue(ctx context.Context, now time.Time) (int, error) {
	upgrades := r.db.WithContext(ctx).
		Model(&BuildingModel{}).
		Where("pending_upgrade = ? AND completes_at <= ?", true, now).
		Updates(map[string]interface{}{
			"level":           gorm.Expr("level + 1"),
			"active":          true,
			"pending_upgrade": false,
			"order_id":        "",
		})
	if upgrades.Error != nil {
		return 0, fmt.Errorf("failed to activate due upgrades: %w", upgrades.Error)
	}

	builds := r.db.WithContext(ctx).
		Model(&BuildingModel{}).
		Where("active = ? AND pending_upgrade = ? AND completes_at <= ?", false, false, now).
		Updates(map[string]interface{}{
			"active":   true,
			"order_id": "",
		})
	if builds.Error != nil {
		return 0, fmt.Errorf("failed to activate due builds: %w", builds.Error)
	}

	return int(upgrades.RowsAffected + builds.RowsAffected), nil
}

// CancelOrder removes a queued first build or reverts an upgrade in
// progress. Conditional on the completion time still being ahead, so a
// cancel can never undo a finished order. Returns the recorded cost.
func (r *GormBuildingRepository) CancelOrder(ctx context.Context, orderID string, now time.Time) (int, error) {
	var model BuildingModel
	result := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, queue.NewItemNotFoundError(orderID)
		}
		return 0, fmt.Errorf("failed to find building order: %w", result.Error)
	}

	cost := model.CreditsCost

	if model.PendingUpgrade {
		// Revert the upgrade: the structure keeps operating at its
		// current level
		revert := r.db.WithContext(ctx).
			Model(&BuildingModel{}).
			Where("order_id = ? AND pending_upgrade = ? AND completes_at > ?", orderID, true, now).
			Updates(map[string]interface{}{
				"active":          true,
				"pending_upgrade": false,
				"order_id":        "",
			})
		if revert.Error != nil {
			return 0, fmt.Errorf("failed to revert upgrade: %w", revert.Error)
		}
		if revert.RowsAffected == 0 {
			return 0, queue.NewItemNotFoundError(orderID)
		}
		return cost, nil
	}

	// First build: the record disappears entirely
	removal := r.db.WithContext(ctx).
		Where("order_id = ? AND active = ? AND completes_at > ?", orderID, false, now).
		Delete(&BuildingModel{})
	if removal.Error != nil {
		return 0, fmt.Errorf("failed to remove queued build: %w", removal.Error)
	}
	if removal.RowsAffected == 0 {
		return 0, queue.NewItemNotFoundError(orderID)
	}
	return cost, nil
}

func (r *GormBuildingRepository) modelToRecord(model *BuildingModel) (*base.BuildingRecord, error) {
	coord, err := shared.ParseCoordinate(model.Coordinate)
	if err != nil {
		return nil, fmt.Errorf("invalid coordinate in database: %w", err)
	}
	empireID, err := shared.NewEmpireID(model.EmpireID)
	if err != nil {
		return nil, fmt.Errorf("invalid empire ID in database: %w", err)
	}
	return &base.BuildingRecord{
		EmpireID:       empireID,
		Coordinate:     coord,
		CatalogKey:     model.CatalogKey,
		Level:          model.Level,
		Active:         model.Active,
		PendingUpgrade: model.PendingUpgrade,
		StartedAt:      model.StartedAt,
		CompletesAt:    model.CompletesAt,
		CreditsCost:    model.CreditsCost,
		OrderID:        model.OrderID,
	}, nil
}
