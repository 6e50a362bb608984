package transaction

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/core/events"
)

// Repository defines the data access methods for transactions.
// Implementations return errors.ErrTransactionNotFound for unknown ids.
type Repository interface {
	FindAll(ctx context.Context) ([]*Transaction, error)
	FindByID(ctx context.Context, id string) (*Transaction, error)
	Create(ctx context.Context, t *Transaction) error
	Update(ctx context.Context, id string, updates map[string]interface{}) (*Transaction, error)
	Delete(ctx context.Context, id string) error
}

type Service struct {
	repo      Repository
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// List returns every transaction, newest date first.
func (s *Service) List(ctx context.Context) ([]*Transaction, error) {
	transactions, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("failed to list transactions", "error", err)
		return nil, errors.NewInternalError("failed to fetch transactions", err)
	}
	return transactions, nil
}

func (s *Service) Create(ctx context.Context, dto CreateTransactionDTO) (*Transaction, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		s.logger.Warn("transaction validation failed", "error", err.GetDetailedMessage())
		return nil, err
	}

	t := NewTransaction(dto)
	if err := s.repo.Create(ctx, t); err != nil {
		s.logger.Error("failed to create transaction", "error", err)
		return nil, errors.NewInternalError("failed to create transaction", err)
	}

	s.logger.Info("transaction created",
		"transaction_id", t.ID,
		"type", t.Type,
		"category", t.Category,
		"amount", t.Amount.String())

	s.publish(ctx, events.NewTransactionChangedEvent(events.EventTypeTransactionCreated, t.ID, t.Month()))
	return t, nil
}

// Patch applies the allow-listed fields in dto to transaction id and returns the stored result.
func (s *Service) Patch(ctx context.Context, id string, dto PatchTransactionDTO) (*Transaction, error) {
	if id == "" {
		return nil, errors.ErrMissingTransactionID
	}

	dto.Normalize()
	if err := dto.Validate(); err != nil {
		s.logger.Warn("transaction patch validation failed", "transaction_id", id, "error", err.GetDetailedMessage())
		return nil, err
	}

	t, err := s.repo.Update(ctx, id, dto.Updates())
	if err != nil {
		if _, ok := errors.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("failed to update transaction", "transaction_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update transaction", err)
	}

	s.logger.Info("transaction updated", "transaction_id", id)
	s.publish(ctx, events.NewTransactionChangedEvent(events.EventTypeTransactionUpdated, t.ID, t.Month()))
	return t, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.ErrMissingTransactionID
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if _, ok := errors.IsAppError(err); ok {
			return err
		}
		s.logger.Error("failed to delete transaction", "transaction_id", id, "error", err)
		return errors.NewInternalError("failed to delete transaction", err)
	}

	s.logger.Info("transaction deleted", "transaction_id", id)
	s.publish(ctx, events.NewTransactionChangedEvent(events.EventTypeTransactionDeleted, id, ""))
	return nil
}

// publish never fails the write; subscribers only hold derived state.
func (s *Service) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.PublishSync(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
