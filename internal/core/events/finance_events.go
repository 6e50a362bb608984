package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeTransactionCreated = "transaction.created"
	EventTypeTransactionUpdated = "transaction.updated"
	EventTypeTransactionDeleted = "transaction.deleted"
	EventTypeBudgetsUpserted    = "budgets.upserted"
)

// LedgerEventTypes lists every event that changes what the reports compute.
var LedgerEventTypes = []string{
	EventTypeTransactionCreated,
	EventTypeTransactionUpdated,
	EventTypeTransactionDeleted,
	EventTypeBudgetsUpserted,
}

type TransactionChangedEvent struct {
	BaseEvent
	TransactionID string `json:"transaction_id"`
	Month         string `json:"month"`
}

func NewTransactionChangedEvent(eventType, transactionID, month string) *TransactionChangedEvent {
	return &TransactionChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"transaction_id": transactionID,
				"month":          month,
			},
		},
		TransactionID: transactionID,
		Month:         month,
	}
}

type BudgetsUpsertedEvent struct {
	BaseEvent
	Months []string `json:"months"`
	Count  int      `json:"count"`
}

func NewBudgetsUpsertedEvent(months []string, count int) *BudgetsUpsertedEvent {
	return &BudgetsUpsertedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeBudgetsUpserted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"months": months,
				"count":  count,
			},
		},
		Months: months,
		Count:  count,
	}
}
