package report

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/personal-finance/internal/core/events"
	"github.com/frahmantamala/personal-finance/internal/core/period"
	"github.com/frahmantamala/personal-finance/internal/transaction"
)

// TransactionLister is the read side of the transaction store.
type TransactionLister interface {
	List(ctx context.Context) ([]*transaction.Transaction, error)
}

type Service struct {
	transactions TransactionLister
	budgets      BudgetFetcher
	window       int
	now          func() time.Time
	cache        *seriesCache
	logger       *slog.Logger
}

// NewService builds the report service. cacheTTL <= 0 disables caching of the monthly series.
func NewService(transactions TransactionLister, budgets BudgetFetcher, cacheTTL time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		transactions: transactions,
		budgets:      budgets,
		window:       DefaultWindow,
		now:          time.Now,
		cache:        newSeriesCache(cacheTTL),
		logger:       logger,
	}
}

// SetClock replaces the time source used to pick the current month.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
	s.cache.clear()
}

// Subscribe drops the cached series whenever a ledger event is published on bus.
func (s *Service) Subscribe(bus *events.EventBus) {
	bus.SubscribeMany(events.LedgerEventTypes, s.Invalidate)
}

// Invalidate is an events.Handler.
func (s *Service) Invalidate(_ context.Context, event events.Event) error {
	s.cache.clear()
	s.logger.Debug("monthly series cache invalidated", "event_type", event.EventType(), "event_id", event.EventID())
	return nil
}

func (s *Service) Monthly(ctx context.Context) ([]MonthlyRecord, error) {
	now := s.now()
	key := period.MonthKey(now.UTC())
	records, generation, ok := s.cache.get(key, now)
	if ok {
		return records, nil
	}

	transactions, err := s.transactions.List(ctx)
	if err != nil {
		return nil, err
	}

	// a series with a failed budget fetch is served but not cached
	records, complete := monthlySeries(ctx, transactions, s.budgets, now, s.window)
	if complete {
		s.cache.put(key, records, now, generation)
	}
	return records, nil
}

func (s *Service) Categories(ctx context.Context, monthlyOnly bool) ([]CategoryTotal, error) {
	transactions, err := s.transactions.List(ctx)
	if err != nil {
		return nil, err
	}
	return CategoryTotals(transactions, monthlyOnly, s.now()), nil
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	transactions, err := s.transactions.List(ctx)
	if err != nil {
		return nil, err
	}
	summary := Summarize(transactions, s.now())
	return &summary, nil
}

func (s *Service) Breakdown(ctx context.Context) ([]MonthBreakdown, error) {
	transactions, err := s.transactions.List(ctx)
	if err != nil {
		return nil, err
	}
	return Breakdown(transactions), nil
}

// seriesCache holds the last computed monthly series for one current-month key. Every clear
// bumps generation; a put computed from reads older than the last clear is dropped.
type seriesCache struct {
	ttl        time.Duration
	mu         sync.Mutex
	generation uint64
	key        string
	records    []MonthlyRecord
	expires    time.Time
}

func newSeriesCache(ttl time.Duration) *seriesCache {
	return &seriesCache{ttl: ttl}
}

// get returns the cached series on a hit, and always the generation a later put must quote.
func (c *seriesCache) get(key string, now time.Time) ([]MonthlyRecord, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ttl <= 0 || c.records == nil || c.key != key || !now.Before(c.expires) {
		return nil, c.generation, false
	}
	return append([]MonthlyRecord(nil), c.records...), c.generation, true
}

func (c *seriesCache) put(key string, records []MonthlyRecord, now time.Time, generation uint64) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return
	}
	c.key = key
	c.records = append([]MonthlyRecord(nil), records...)
	c.expires = now.Add(c.ttl)
}

func (c *seriesCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.key = ""
	c.records = nil
}
