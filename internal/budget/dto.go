package budget

import (
	"fmt"
	"strings"

	errors "github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/core/common/validation"
	"github.com/frahmantamala/personal-finance/internal/core/money"
	"github.com/shopspring/decimal"
)

// BudgetDTO is one element of the POST /budgets array.
type BudgetDTO struct {
	Month    string              `json:"month"`
	Category string              `json:"category"`
	Amount   decimal.NullDecimal `json:"amount"`
}

func (dto *BudgetDTO) Normalize() {
	dto.Month = strings.TrimSpace(dto.Month)
	dto.Category = strings.TrimSpace(dto.Category)
}

// ToBudget clamps negative amounts to zero.
func (dto BudgetDTO) ToBudget() *Budget {
	return &Budget{
		Month:    dto.Month,
		Category: dto.Category,
		Amount:   money.ClampNonNegative(dto.Amount.Decimal),
	}
}

type UpsertBudgetsDTO []BudgetDTO

func (dtos UpsertBudgetsDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	for i, dto := range dtos {
		prefix := fmt.Sprintf("budgets[%d].", i)
		v.Field(prefix+"month", dto.Month).Required().Month()
		v.Field(prefix+"category", dto.Category).Required().MaxLength(100)
		v.Field(prefix+"amount", dto.Amount).Required()
	}
	return v.Validate()
}
