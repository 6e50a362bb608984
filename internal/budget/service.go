package budget

import (
	"context"
	"log/slog"
	"sort"

	errors "github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/core/events"
	"github.com/frahmantamala/personal-finance/internal/core/period"
	"github.com/shopspring/decimal"
)

// Repository persists budgets keyed by (month, category); a second write to a key overwrites its amount.
type Repository interface {
	FindByMonth(ctx context.Context, month string) ([]*Budget, error)
	Upsert(ctx context.Context, month, category string, amount decimal.Decimal) error
	BulkUpsert(ctx context.Context, budgets []*Budget) error
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

func (s *Service) ListByMonth(ctx context.Context, month string) ([]*Budget, error) {
	if month == "" {
		return nil, errors.ErrMissingMonth
	}
	if _, err := period.ParseMonth(month); err != nil {
		return nil, errors.NewValidationFieldError("month", "month must be formatted as YYYY-MM", errors.ErrCodeInvalidMonth)
	}

	budgets, err := s.repo.FindByMonth(ctx, month)
	if err != nil {
		s.logger.Error("failed to fetch budgets", "month", month, "error", err)
		return nil, errors.NewInternalError("failed to fetch budgets", err)
	}
	return budgets, nil
}

// Set writes a single budget through the repository's keyed upsert.
func (s *Service) Set(ctx context.Context, month, category string, amount decimal.Decimal) (*Budget, error) {
	dto := BudgetDTO{Month: month, Category: category, Amount: decimal.NewNullDecimal(amount)}
	dto.Normalize()
	if err := (UpsertBudgetsDTO{dto}).Validate(); err != nil {
		return nil, err
	}

	b := dto.ToBudget()
	if err := s.repo.Upsert(ctx, b.Month, b.Category, b.Amount); err != nil {
		s.logger.Error("failed to upsert budget", "month", b.Month, "category", b.Category, "error", err)
		return nil, errors.NewInternalError("Budget save failed", err)
	}

	s.publish(ctx, []*Budget{b})
	return b, nil
}

// Save upserts every budget in dtos. When a key repeats, the later element wins.
func (s *Service) Save(ctx context.Context, dtos UpsertBudgetsDTO) ([]*Budget, error) {
	for i := range dtos {
		dtos[i].Normalize()
	}
	if err := dtos.Validate(); err != nil {
		s.logger.Warn("budget validation failed", "error", err.GetDetailedMessage())
		return nil, err
	}

	budgets := dedupe(dtos)
	if len(budgets) == 0 {
		return []*Budget{}, nil
	}

	if err := s.repo.BulkUpsert(ctx, budgets); err != nil {
		s.logger.Error("failed to upsert budgets", "count", len(budgets), "error", err)
		return nil, errors.NewInternalError("Budget save failed", err)
	}

	s.publish(ctx, budgets)
	return budgets, nil
}

func (s *Service) publish(ctx context.Context, budgets []*Budget) {
	months := touchedMonths(budgets)
	s.logger.Info("budgets saved", "count", len(budgets), "months", months)

	if err := s.publisher.PublishSync(ctx, events.NewBudgetsUpsertedEvent(months, len(budgets))); err != nil {
		s.logger.Warn("failed to publish event", "event_type", events.EventTypeBudgetsUpserted, "error", err)
	}
}

// Totals returns month's budget amounts by category.
func (s *Service) Totals(ctx context.Context, month string) (map[string]decimal.Decimal, error) {
	budgets, err := s.repo.FindByMonth(ctx, month)
	if err != nil {
		return nil, err
	}
	totals := make(map[string]decimal.Decimal, len(budgets))
	for _, b := range budgets {
		totals[b.Category] = totals[b.Category].Add(b.Amount)
	}
	return totals, nil
}

func dedupe(dtos UpsertBudgetsDTO) []*Budget {
	index := make(map[string]int, len(dtos))
	var budgets []*Budget
	for _, dto := range dtos {
		b := dto.ToBudget()
		if i, ok := index[b.Key()]; ok {
			budgets[i] = b
			continue
		}
		index[b.Key()] = len(budgets)
		budgets = append(budgets, b)
	}
	return budgets
}

func touchedMonths(budgets []*Budget) []string {
	seen := make(map[string]struct{})
	var months []string
	for _, b := range budgets {
		if _, ok := seen[b.Month]; !ok {
			seen[b.Month] = struct{}{}
			months = append(months, b.Month)
		}
	}
	sort.Strings(months)
	return months
}
