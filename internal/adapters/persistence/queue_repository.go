package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/stellaredge/empire-engine/internal/domain/queue"
	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

// GormQueueRepository implements queue.Repository using GORM. The two
// status flips are guarded by `status = PENDING` in the WHERE clause,
// which is the store-level half of the cancel/complete exclusion.
type GormQueueRepository struct {
	db *gorm.DB
}

// NewGormQueueRepository creates a new GORM queue repository
func NewGormQueueRepository(db *gorm.DB) *GormQueueRepository {
	return &GormQueueRepository{db: db}
}

// Enqueue persists a new pending item
func (r *GormQueueRepository) Enqueue(ctx context.Context, item *queue.Item) error {
	model := r.itemToModel(item)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to enqueue item: %w", err)
	}
	return nil
}

// FindByID retrieves an item by id
func (r *GormQueueRepository) FindByID(ctx context.Context, id string) (*queue.Item, error) {
	var model QueueItemModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, queue.NewItemNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to find queue item: %w", result.Error)
	}
	return r.modelToItem(&model)
}

// ListPending retrieves pending items ordered by completion time
func (r *GormQueueRepository) ListPending(ctx context.Context, empireID shared.EmpireID, coord *shared.Coordinate) ([]*queue.Item, error) {
	q := r.db.WithContext(ctx).
		Where("empire_id = ? AND status = ?", empireID.Value(), string(queue.StatusPending))
	if coord != nil {
		q = q.Where("coordinate = ?", coord.String())
	}

	var models []QueueItemModel
	if err := q.Order("completes_at ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending items: %w", err)
	}
	return r.modelsToItems(models)
}

// CountPendingByKey counts an empire's pending items for one catalog key
func (r *GormQueueRepository) CountPendingByKey(ctx context.Context, empireID shared.EmpireID, catalogKey string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&QueueItemModel{}).
		Where("empire_id = ? AND catalog_key = ? AND status = ?",
			empireID.Value(), catalogKey, string(queue.StatusPending)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count pending items: %w", err)
	}
	return int(count), nil
}

// ListDue retrieves pending items whose completion time has passed
func (r *GormQueueRepository) ListDue(ctx context.Context, now time.Time) ([]*queue.Item, error) {
	var models []QueueItemModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND completes_at <= ?", string(queue.StatusPending), now).
		Order("completes_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due items: %w", err)
	}
	return r.modelsToItems(models)
}

// PendingDepthByKind counts pending items across all empires by kind
func (r *GormQueueRepository) PendingDepthByKind(ctx context.Context) (map[queue.Kind]int, error) {
	var rows []struct {
		Kind  string
		Depth int
	}
	err := r.db.WithContext(ctx).
		Model(&QueueItemModel{}).
		Select("kind, COUNT(*) AS depth").
		Where("status = ?", string(queue.StatusPending)).
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count pending items by kind: %w", err)
	}

	depths := make(map[queue.Kind]int, len(rows))
	for _, row := range rows {
		depths[queue.Kind(row.Kind)] = row.Depth
	}
	return depths, nil
}

// CompleteIfPending flips the row to COMPLETED iff it is still PENDING
func (r *GormQueueRepository) CompleteIfPending(ctx context.Context, id string) (bool, error) {
	return r.flipIfPending(ctx, id, queue.StatusCompleted)
}

// CancelIfPending flips the row to CANCELLED iff it is still PENDING
func (r *GormQueueRepository) CancelIfPending(ctx context.Context, id string) (bool, error) {
	return r.flipIfPending(ctx, id, queue.StatusCancelled)
}

func (r *GormQueueRepository) flipIfPending(ctx context.Context, id string, next queue.Status) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&QueueItemModel{}).
		Where("id = ? AND status = ?", id, string(queue.StatusPending)).
		Update("status", string(next))
	if result.Error != nil {
		return false, fmt.Errorf("failed to update queue item status: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *GormQueueRepository) itemToModel(item *queue.Item) *QueueItemModel {
	return &QueueItemModel{
		ID:          item.ID(),
		Kind:        string(item.Kind()),
		EmpireID:    item.EmpireID().Value(),
		Coordinate:  item.Coordinate().String(),
		CatalogKey:  item.CatalogKey(),
		Level:       item.Level(),
		Status:      string(item.Status()),
		StartedAt:   item.StartedAt(),
		CompletesAt: item.CompletesAt(),
		CreditsCost: item.CreditsCost(),
	}
}

func (r *GormQueueRepository) modelToItem(model *QueueItemModel) (*queue.Item, error) {
	empireID, err := shared.NewEmpireID(model.EmpireID)
	if err != nil {
		return nil, fmt.Errorf("invalid empire ID in database: %w", err)
	}
	coord, err := shared.ParseCoordinate(model.Coordinate)
	if err != nil {
		return nil, fmt.Errorf("invalid coordinate in database: %w", err)
	}
	return queue.Reconstruct(
		model.ID,
		queue.Kind(model.Kind),
		empireID,
		coord,
		model.CatalogKey,
		model.Level,
		queue.Status(model.Status),
		model.StartedAt,
		model.CompletesAt,
		model.CreditsCost,
	), nil
}

func (r *GormQueueRepository) modelsToItems(models []QueueItemModel) ([]*queue.Item, error) {
	items := make([]*queue.Item, 0, len(models))
	for i := range models {
		item, err := r.modelToItem(&models[i])
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
