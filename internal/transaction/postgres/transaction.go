package postgres

import (
	"context"
	stdErrors "errors"
	"time"

	errors "github.com/frahmantamala/personal-finance/internal"
	transactionDatamodel "github.com/frahmantamala/personal-finance/internal/core/datamodel/transaction"
	"github.com/frahmantamala/personal-finance/internal/transaction"
	"gorm.io/gorm"
)

// TransactionRepository implements transaction.Repository using GORM
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) transaction.Repository {
	return &TransactionRepository{db: db}
}

// FindAll returns every row ordered by date, newest first.
func (r *TransactionRepository) FindAll(ctx context.Context) ([]*transaction.Transaction, error) {
	var rows []*transactionDatamodel.Transaction
	err := r.db.WithContext(ctx).
		Order("date DESC").
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return transaction.FromDataModelSlice(rows), nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, id string) (*transaction.Transaction, error) {
	row, err := findByID(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return transaction.FromDataModel(row), nil
}

func (r *TransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	return r.db.WithContext(ctx).Create(transaction.ToDataModel(t)).Error
}

// Update applies column updates to an existing row and returns it re-read from the store.
func (r *TransactionRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (*transaction.Transaction, error) {
	var updated *transactionDatamodel.Transaction

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findByID(tx, id); err != nil {
			return err
		}

		updates["updated_at"] = time.Now()
		if err := tx.Model(&transactionDatamodel.Transaction{}).
			Where("id = ?", id).
			Updates(updates).Error; err != nil {
			return err
		}

		row, err := findByID(tx, id)
		if err != nil {
			return err
		}
		updated = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transaction.FromDataModel(updated), nil
}

func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&transactionDatamodel.Transaction{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrTransactionNotFound
	}
	return nil
}

func findByID(db *gorm.DB, id string) (*transactionDatamodel.Transaction, error) {
	var row transactionDatamodel.Transaction
	if err := db.Where("id = ?", id).First(&row).Error; err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrTransactionNotFound
		}
		return nil, err
	}
	return &row, nil
}
