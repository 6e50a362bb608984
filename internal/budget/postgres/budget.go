package postgres

import (
	"context"
	"time"

	"github.com/frahmantamala/personal-finance/internal/budget"
	budgetDatamodel "github.com/frahmantamala/personal-finance/internal/core/datamodel/budget"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BudgetRepository implements budget.Repository using GORM
type BudgetRepository struct {
	db *gorm.DB
}

func NewBudgetRepository(db *gorm.DB) budget.Repository {
	return &BudgetRepository{db: db}
}

var upsertOnMonthCategory = clause.OnConflict{
	Columns:   []clause.Column{{Name: "month"}, {Name: "category"}},
	DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
}

func (r *BudgetRepository) FindByMonth(ctx context.Context, month string) ([]*budget.Budget, error) {
	var rows []*budgetDatamodel.Budget
	err := r.db.WithContext(ctx).
		Where("month = ?", month).
		Order("category ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return budget.FromDataModelSlice(rows), nil
}

func (r *BudgetRepository) Upsert(ctx context.Context, month, category string, amount decimal.Decimal) error {
	return r.BulkUpsert(ctx, []*budget.Budget{{Month: month, Category: category, Amount: amount}})
}

// BulkUpsert writes all budgets in one statement. Keys must be unique within the batch.
func (r *BudgetRepository) BulkUpsert(ctx context.Context, budgets []*budget.Budget) error {
	if len(budgets) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]*budgetDatamodel.Budget, len(budgets))
	for i, b := range budgets {
		b.UpdatedAt = now
		rows[i] = budget.ToDataModel(b)
		rows[i].CreatedAt = now
	}

	return r.db.WithContext(ctx).
		Clauses(upsertOnMonthCategory).
		Create(&rows).Error
}
