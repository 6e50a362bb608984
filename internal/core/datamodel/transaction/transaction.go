package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID          string          `gorm:"column:id;primaryKey;type:varchar(36)"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	Description string          `gorm:"column:description;not null;default:''"`
	Date        time.Time       `gorm:"column:date;type:date;not null;index"`
	Category    string          `gorm:"column:category;type:varchar(100);not null"`
	Type        string          `gorm:"column:type;type:varchar(16);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Transaction) TableName() string {
	return "transactions"
}
