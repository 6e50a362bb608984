package transaction

import (
	"time"

	transactionDatamodel "github.com/frahmantamala/personal-finance/internal/core/datamodel/transaction"
	"github.com/frahmantamala/personal-finance/internal/core/period"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

var Types = []string{TypeIncome, TypeExpense}

type Transaction struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	Category    string          `json:"category"`
	Type        string          `json:"type"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (t *Transaction) IsExpense() bool {
	return t.Type == TypeExpense
}

func (t *Transaction) IsIncome() bool {
	return t.Type == TypeIncome
}

// Month is the YYYY-MM bucket the transaction is reported under.
func (t *Transaction) Month() string {
	return period.MonthKey(t.Date)
}

// NewTransaction builds a transaction from an already validated create request.
func NewTransaction(dto CreateTransactionDTO) *Transaction {
	now := time.Now()
	date, _ := period.ParseDate(dto.Date)

	return &Transaction{
		ID:          uuid.NewString(),
		Amount:      dto.Amount.Decimal,
		Description: dto.Description,
		Date:        date,
		Category:    dto.Category,
		Type:        dto.Type,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func ToDataModel(t *Transaction) *transactionDatamodel.Transaction {
	return &transactionDatamodel.Transaction{
		ID:          t.ID,
		Amount:      t.Amount,
		Description: t.Description,
		Date:        t.Date,
		Category:    t.Category,
		Type:        t.Type,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func FromDataModel(t *transactionDatamodel.Transaction) *Transaction {
	return &Transaction{
		ID:          t.ID,
		Amount:      t.Amount,
		Description: t.Description,
		Date:        period.Day(t.Date),
		Category:    t.Category,
		Type:        t.Type,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*transactionDatamodel.Transaction) []*Transaction {
	result := make([]*Transaction, len(rows))
	for i, row := range rows {
		result[i] = FromDataModel(row)
	}
	return result
}
