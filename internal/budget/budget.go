package budget

import (
	"time"

	budgetDatamodel "github.com/frahmantamala/personal-finance/internal/core/datamodel/budget"
	"github.com/shopspring/decimal"
)

// Budget is the spending ceiling for one category in one month.
type Budget struct {
	Month     string          `json:"month"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	UpdatedAt time.Time       `json:"updated_at,omitempty"`
}

// Key identifies the row a budget upserts into.
func (b *Budget) Key() string {
	return b.Month + "|" + b.Category
}

func ToDataModel(b *Budget) *budgetDatamodel.Budget {
	return &budgetDatamodel.Budget{
		Month:     b.Month,
		Category:  b.Category,
		Amount:    b.Amount,
		UpdatedAt: b.UpdatedAt,
	}
}

func FromDataModel(b *budgetDatamodel.Budget) *Budget {
	return &Budget{
		Month:     b.Month,
		Category:  b.Category,
		Amount:    b.Amount,
		UpdatedAt: b.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*budgetDatamodel.Budget) []*Budget {
	result := make([]*Budget, len(rows))
	for i, row := range rows {
		result[i] = FromDataModel(row)
	}
	return result
}
