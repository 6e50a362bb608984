// Package report derives the chart and card views from the transaction and budget stores.
package report

import (
	"context"
	"sort"
	"time"

	"github.com/frahmantamala/personal-finance/internal/core/period"
	"github.com/frahmantamala/personal-finance/internal/transaction"
	"github.com/frahmantamala/personal-finance/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultWindow is the number of trailing months in the monthly series, current month included.
	DefaultWindow = 6

	// RecentLimit caps Summary.Recent.
	RecentLimit = 3

	budgetFetchConcurrency = 4
	breakdownLabelLayout   = "January 2006"
)

// BudgetFetcher returns the budget amount per category for a YYYY-MM month.
type BudgetFetcher func(ctx context.Context, month string) (map[string]decimal.Decimal, error)

type MonthlyRecord struct {
	Month  string          `json:"month"`
	Label  string          `json:"label"`
	Spent  decimal.Decimal `json:"spent"`
	Budget decimal.Decimal `json:"budget"`
}

type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

type Summary struct {
	Month       string                     `json:"month"`
	Income      decimal.Decimal            `json:"income"`
	Spending    decimal.Decimal            `json:"spending"`
	TopCategory *string                    `json:"top_category"`
	Recent      []*transaction.Transaction `json:"recent"`
}

type MonthBreakdown struct {
	Month   string          `json:"month"`
	Label   string          `json:"label"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// MonthlySeries buckets expense amounts into the trailing window months ending at now and pairs
// each month with its summed budget. Months without data are still emitted. A month whose budget
// cannot be fetched reports a zero budget.
func MonthlySeries(ctx context.Context, transactions []*transaction.Transaction, fetch BudgetFetcher, now time.Time, window int) []MonthlyRecord {
	records, _ := monthlySeries(ctx, transactions, fetch, now, window)
	return records
}

// monthlySeries also reports whether every budget fetch succeeded.
func monthlySeries(ctx context.Context, transactions []*transaction.Transaction, fetch BudgetFetcher, now time.Time, window int) ([]MonthlyRecord, bool) {
	keys := period.Trailing(now.UTC(), window)
	records := make([]MonthlyRecord, len(keys))
	index := make(map[string]int, len(keys))
	for i, key := range keys {
		index[key] = i
		records[i] = MonthlyRecord{
			Month:  key,
			Label:  period.Label(key),
			Spent:  decimal.Zero,
			Budget: decimal.Zero,
		}
	}

	for _, t := range transactions {
		if !t.IsExpense() {
			continue
		}
		if i, ok := index[t.Month()]; ok {
			records[i].Spent = records[i].Spent.Add(t.Amount)
		}
	}

	if fetch == nil {
		return records, true
	}

	log := logger.From(ctx)
	budgets := make([]decimal.Decimal, len(keys))
	failed := make([]bool, len(keys))

	var g errgroup.Group
	g.SetLimit(budgetFetchConcurrency)
	for i, key := range keys {
		g.Go(func() error {
			amounts, err := fetch(ctx, key)
			if err != nil {
				log.Warn("budget fetch failed, treating month as unbudgeted", "month", key, "error", err)
				failed[i] = true
				return nil
			}
			total := decimal.Zero
			for _, amount := range amounts {
				total = total.Add(amount)
			}
			budgets[i] = total
			return nil
		})
	}
	_ = g.Wait()

	complete := true
	for i := range records {
		records[i].Budget = budgets[i]
		complete = complete && !failed[i]
	}
	return records, complete
}

// CategoryTotals sums expenses per category in order of first occurrence. With monthlyOnly
// only transactions in the calendar month of now count.
func CategoryTotals(transactions []*transaction.Transaction, monthlyOnly bool, now time.Time) []CategoryTotal {
	now = now.UTC()

	totals := []CategoryTotal{}
	index := make(map[string]int)
	for _, t := range transactions {
		if !t.IsExpense() {
			continue
		}
		if monthlyOnly && !period.SameMonth(t.Date, now) {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(totals)
			index[t.Category] = i
			totals = append(totals, CategoryTotal{Category: t.Category, Total: decimal.Zero})
		}
		totals[i].Total = totals[i].Total.Add(t.Amount)
	}
	return totals
}

// Summarize computes the current-month cards: income, spending, the top expense category and the
// most recent transactions.
func Summarize(transactions []*transaction.Transaction, now time.Time) Summary {
	now = now.UTC()

	summary := Summary{
		Month:    period.MonthKey(now),
		Income:   decimal.Zero,
		Spending: decimal.Zero,
		Recent:   []*transaction.Transaction{},
	}

	var thisMonth []*transaction.Transaction
	for _, t := range transactions {
		if !period.SameMonth(t.Date, now) {
			continue
		}
		thisMonth = append(thisMonth, t)
		switch {
		case t.IsIncome():
			summary.Income = summary.Income.Add(t.Amount)
		case t.IsExpense():
			summary.Spending = summary.Spending.Add(t.Amount)
		}
	}

	// ties keep the first category encountered
	var top *CategoryTotal
	byCategory := CategoryTotals(thisMonth, false, now)
	for i := range byCategory {
		if top == nil || byCategory[i].Total.GreaterThan(top.Total) {
			top = &byCategory[i]
		}
	}
	if top != nil {
		category := top.Category
		summary.TopCategory = &category
	}

	recent := append([]*transaction.Transaction(nil), thisMonth...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Date.After(recent[j].Date)
	})
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	summary.Recent = append(summary.Recent, recent...)

	return summary
}

// Breakdown totals income and expense for every month that has transactions, newest month first.
// Any type other than income counts as expense.
func Breakdown(transactions []*transaction.Transaction) []MonthBreakdown {
	byMonth := make(map[string]*MonthBreakdown)
	for _, t := range transactions {
		key := t.Month()
		entry, ok := byMonth[key]
		if !ok {
			entry = &MonthBreakdown{Month: key, Income: decimal.Zero, Expense: decimal.Zero}
			byMonth[key] = entry
		}
		if t.IsIncome() {
			entry.Income = entry.Income.Add(t.Amount)
		} else {
			entry.Expense = entry.Expense.Add(t.Amount)
		}
	}

	result := make([]MonthBreakdown, 0, len(byMonth))
	for _, entry := range byMonth {
		entry.Net = entry.Income.Sub(entry.Expense)
		if start, err := period.ParseMonth(entry.Month); err == nil {
			entry.Label = start.Format(breakdownLabelLayout)
		}
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Month > result[j].Month
	})
	return result
}
