package budget

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is one (month, category) ceiling; the pair is the primary key.
type Budget struct {
	Month     string          `gorm:"column:month;primaryKey;type:varchar(7)"`
	Category  string          `gorm:"column:category;primaryKey;type:varchar(100)"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Budget) TableName() string {
	return "budgets"
}
