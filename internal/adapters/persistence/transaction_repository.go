package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/stellaredge/empire-engine/internal/domain/ledger"
	"github.com/stellaredge/empire-engine/internal/domain/shared"
)

// GormTransactionRepository implements ledger.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GORM transaction repository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Create persists a new ledger entry
func (r *GormTransactionRepository) Create(ctx context.Context, transaction *ledger.Transaction) error {
	model := &TransactionModel{
		ID:            transaction.ID(),
		EmpireID:      transaction.EmpireID().Value(),
		Timestamp:     transaction.Timestamp(),
		Type:          string(transaction.Type()),
		Amount:        transaction.Amount(),
		BalanceBefore: transaction.BalanceBefore(),
		BalanceAfter:  transaction.BalanceAfter(),
		Reference:     transaction.Reference(),
		Description:   transaction.Description(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// FindByReference retrieves the entries settling one order, oldest first
func (r *GormTransactionRepository) FindByReference(ctx context.Context, reference string) ([]*ledger.Transaction, error) {
	var models []TransactionModel
	err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		Order("timestamp ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find transactions: %w", err)
	}
	return r.modelsToTransactions(models)
}

// ListByEmpire retrieves an empire's entries, newest first
func (r *GormTransactionRepository) ListByEmpire(ctx context.Context, empireID shared.EmpireID, limit int) ([]*ledger.Transaction, error) {
	q := r.db.WithContext(ctx).
		Where("empire_id = ?", empireID.Value()).
		Order("timestamp DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var models []TransactionModel
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return r.modelsToTransactions(models)
}

func (r *GormTransactionRepository) modelsToTransactions(models []TransactionModel) ([]*ledger.Transaction, error) {
	transactions := make([]*ledger.Transaction, 0, len(models))
	for i := range models {
		model := &models[i]
		empireID, err := shared.NewEmpireID(model.EmpireID)
		if err != nil {
			return nil, fmt.Errorf("invalid empire ID in database: %w", err)
		}
		txType, err := ledger.ParseTransactionType(model.Type)
		if err != nil {
			return nil, fmt.Errorf("invalid transaction type in database: %w", err)
		}
		transactions = append(transactions, ledger.ReconstructTransaction(
			model.ID,
			empireID,
			model.Timestamp,
			txType,
			model.Amount,
			model.BalanceBefore,
			model.BalanceAfter,
			model.Reference,
			model.Description,
		))
	}
	return transactions, nil
}
