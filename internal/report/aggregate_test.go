package report_test

import (
	"context"
	stdErrors "errors"
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/personal-finance/internal/report"
	"github.com/frahmantamala/personal-finance/internal/transaction"
)

var now = time.Date(2024, time.January, 20, 15, 30, 0, 0, time.UTC)

func tx(id, date, amount, category, kind string) *transaction.Transaction {
	d, err := time.Parse("2006-01-02", date)
	Expect(err).NotTo(HaveOccurred())
	return &transaction.Transaction{
		ID:       id,
		Amount:   decimal.RequireFromString(amount),
		Date:     d,
		Category: category,
		Type:     kind,
	}
}

func budgets(byMonth map[string]map[string]string) report.BudgetFetcher {
	return func(_ context.Context, month string) (map[string]decimal.Decimal, error) {
		result := make(map[string]decimal.Decimal)
		for category, amount := range byMonth[month] {
			result[category] = decimal.RequireFromString(amount)
		}
		return result, nil
	}
}

func find(records []report.MonthlyRecord, month string) report.MonthlyRecord {
	for _, r := range records {
		if r.Month == month {
			return r
		}
	}
	Fail(fmt.Sprintf("month %s not in series", month))
	return report.MonthlyRecord{}
}

var _ = Describe("MonthlySeries", func() {
	ctx := context.Background()

	It("always emits the trailing window oldest first, empty months included", func() {
		records := report.MonthlySeries(ctx, nil, nil, now, report.DefaultWindow)
		Expect(records).To(HaveLen(6))

		months := make([]string, len(records))
		for i, r := range records {
			months[i] = r.Month
			Expect(r.Spent.IsZero()).To(BeTrue())
			Expect(r.Budget.IsZero()).To(BeTrue())
		}
		Expect(months).To(Equal([]string{"2023-08", "2023-09", "2023-10", "2023-11", "2023-12", "2024-01"}))
		Expect(records[0].Label).To(Equal("Aug 23"))
		Expect(records[5].Label).To(Equal("Jan 24"))
	})

	It("sums expenses per month and ignores income", func() {
		records := report.MonthlySeries(ctx, []*transaction.Transaction{
			tx("1", "2024-01-05", "100", "Food", transaction.TypeExpense),
			tx("2", "2024-01-10", "200", "Food", transaction.TypeExpense),
			tx("3", "2024-01-15", "50", "Transport", transaction.TypeExpense),
			tx("4", "2024-01-01", "5000", "Salary", transaction.TypeIncome),
			tx("5", "2023-11-30", "19.99", "Bills", transaction.TypeExpense),
		}, nil, now, report.DefaultWindow)

		Expect(find(records, "2024-01").Spent.String()).To(Equal("350"))
		Expect(find(records, "2023-11").Spent.String()).To(Equal("19.99"))
		Expect(find(records, "2023-12").Spent.IsZero()).To(BeTrue())
	})

	It("ignores transactions outside the window", func() {
		records := report.MonthlySeries(ctx, []*transaction.Transaction{
			tx("old", "2023-07-31", "999", "Food", transaction.TypeExpense),
			tx("future", "2024-02-01", "999", "Food", transaction.TypeExpense),
		}, nil, now, report.DefaultWindow)

		for _, r := range records {
			Expect(r.Spent.IsZero()).To(BeTrue(), r.Month)
		}
	})

	It("sums every category budget of a month", func() {
		records := report.MonthlySeries(ctx, nil, budgets(map[string]map[string]string{
			"2024-01": {"Food": "250", "Transport": "100.50"},
			"2023-10": {"Bills": "75"},
		}), now, report.DefaultWindow)

		Expect(find(records, "2024-01").Budget.String()).To(Equal("350.5"))
		Expect(find(records, "2023-10").Budget.String()).To(Equal("75"))
		Expect(find(records, "2023-12").Budget.IsZero()).To(BeTrue())
	})

	It("treats a failed budget fetch as zero for that month only", func() {
		fetch := func(_ context.Context, month string) (map[string]decimal.Decimal, error) {
			if month == "2023-12" {
				return nil, stdErrors.New("store unreachable")
			}
			return map[string]decimal.Decimal{"Food": decimal.NewFromInt(10)}, nil
		}

		records := report.MonthlySeries(ctx, nil, fetch, now, report.DefaultWindow)
		Expect(records).To(HaveLen(6))
		Expect(find(records, "2023-12").Budget.IsZero()).To(BeTrue())
		Expect(find(records, "2024-01").Budget.String()).To(Equal("10"))
	})

	It("fetches each window month exactly once", func() {
		var (
			mu      sync.Mutex
			fetched = map[string]int{}
		)
		fetch := func(_ context.Context, month string) (map[string]decimal.Decimal, error) {
			mu.Lock()
			defer mu.Unlock()
			fetched[month]++
			return nil, nil
		}

		report.MonthlySeries(ctx, nil, fetch, now, report.DefaultWindow)
		Expect(fetched).To(HaveLen(6))
		for month, calls := range fetched {
			Expect(calls).To(Equal(1), month)
		}
	})

	It("reproduces the January 2024 scenario", func() {
		records := report.MonthlySeries(ctx, []*transaction.Transaction{
			tx("1", "2024-01-05", "100", "Food", transaction.TypeExpense),
			tx("2", "2024-01-10", "200", "Food", transaction.TypeExpense),
			tx("3", "2024-01-15", "50", "Transport", transaction.TypeExpense),
		}, budgets(map[string]map[string]string{"2024-01": {"Food": "250"}}), now, report.DefaultWindow)

		january := find(records, "2024-01")
		Expect(january.Spent.String()).To(Equal("350"))
		Expect(january.Budget.String()).To(Equal("250"))
	})
})

var _ = Describe("CategoryTotals", func() {
	It("picks the current month in UTC whatever the clock's zone", func() {
		plus5 := time.FixedZone("UTC+5", 5*60*60)
		// 2024-02-01 02:00 at +05:00 is still January 31st in UTC
		localNow := time.Date(2024, time.February, 1, 2, 0, 0, 0, plus5)
		transactions := []*transaction.Transaction{
			tx("jan", "2024-01-31", "40", "Food", transaction.TypeExpense),
			tx("feb", "2024-02-01", "9", "Food", transaction.TypeExpense),
		}

		totals := report.CategoryTotals(transactions, true, localNow)
		Expect(totals).To(HaveLen(1))
		Expect(totals[0].Total.String()).To(Equal("40"))

		summary := report.Summarize(transactions, localNow)
		Expect(summary.Month).To(Equal("2024-01"))
		Expect(summary.Spending.String()).To(Equal("40"))
	})

	transactions := func() []*transaction.Transaction {
		return []*transaction.Transaction{
			tx("1", "2024-01-10", "40", "Food", transaction.TypeExpense),
			tx("2", "2024-01-09", "25", "Transport", transaction.TypeExpense),
			tx("3", "2024-01-08", "10", "Food", transaction.TypeExpense),
			tx("4", "2024-01-07", "900", "Salary", transaction.TypeIncome),
			tx("5", "2023-12-31", "60", "Shopping", transaction.TypeExpense),
		}
	}

	It("groups current-month expenses in first-occurrence order", func() {
		totals := report.CategoryTotals(transactions(), true, now)
		Expect(totals).To(HaveLen(2))
		Expect(totals[0].Category).To(Equal("Food"))
		Expect(totals[0].Total.String()).To(Equal("50"))
		Expect(totals[1].Category).To(Equal("Transport"))
		Expect(totals[1].Total.String()).To(Equal("25"))
	})

	It("includes every month when monthlyOnly is false", func() {
		totals := report.CategoryTotals(transactions(), false, now)
		Expect(totals).To(HaveLen(3))
		Expect(totals[2].Category).To(Equal("Shopping"))
	})

	It("adds up to the total expense of the filtered set", func() {
		for _, monthlyOnly := range []bool{true, false} {
			sum := decimal.Zero
			for _, total := range report.CategoryTotals(transactions(), monthlyOnly, now) {
				sum = sum.Add(total.Total)
			}

			expected := decimal.Zero
			for _, t := range transactions() {
				if t.IsExpense() && (!monthlyOnly || t.Month() == "2024-01") {
					expected = expected.Add(t.Amount)
				}
			}
			Expect(sum.Equal(expected)).To(BeTrue())
		}
	})

	It("returns an empty, non-nil slice without expenses", func() {
		totals := report.CategoryTotals(nil, true, now)
		Expect(totals).NotTo(BeNil())
		Expect(totals).To(BeEmpty())
	})
})

var _ = Describe("Summarize", func() {
	It("computes the current-month cards", func() {
		summary := report.Summarize([]*transaction.Transaction{
			tx("a", "2024-01-03", "30", "Transport", transaction.TypeExpense),
			tx("b", "2024-01-18", "3000", "Salary", transaction.TypeIncome),
			tx("c", "2024-01-12", "120", "Food", transaction.TypeExpense),
			tx("d", "2024-01-15", "45", "Food", transaction.TypeExpense),
			tx("e", "2023-12-28", "999", "Shopping", transaction.TypeExpense),
		}, now)

		Expect(summary.Month).To(Equal("2024-01"))
		Expect(summary.Income.String()).To(Equal("3000"))
		Expect(summary.Spending.String()).To(Equal("195"))
		Expect(summary.TopCategory).NotTo(BeNil())
		Expect(*summary.TopCategory).To(Equal("Food"))

		ids := []string{}
		for _, t := range summary.Recent {
			ids = append(ids, t.ID)
		}
		Expect(ids).To(Equal([]string{"b", "d", "c"}))
	})

	It("breaks top-category ties by first occurrence", func() {
		summary := report.Summarize([]*transaction.Transaction{
			tx("1", "2024-01-02", "50", "Bills", transaction.TypeExpense),
			tx("2", "2024-01-03", "50", "Food", transaction.TypeExpense),
			tx("3", "2024-01-04", "50", "Transport", transaction.TypeExpense),
		}, now)
		Expect(*summary.TopCategory).To(Equal("Bills"))
	})

	It("requires a strictly greater sum to replace the leader", func() {
		summary := report.Summarize([]*transaction.Transaction{
			tx("1", "2024-01-02", "50", "Bills", transaction.TypeExpense),
			tx("2", "2024-01-03", "30", "Food", transaction.TypeExpense),
			tx("3", "2024-01-04", "20", "Food", transaction.TypeExpense),
			tx("4", "2024-01-05", "51", "Transport", transaction.TypeExpense),
		}, now)
		Expect(*summary.TopCategory).To(Equal("Transport"))
	})

	It("keeps input order for recent transactions on the same date", func() {
		summary := report.Summarize([]*transaction.Transaction{
			tx("first", "2024-01-10", "1", "Food", transaction.TypeExpense),
			tx("second", "2024-01-10", "1", "Food", transaction.TypeExpense),
			tx("third", "2024-01-10", "1", "Food", transaction.TypeExpense),
			tx("fourth", "2024-01-10", "1", "Food", transaction.TypeExpense),
		}, now)

		Expect(summary.Recent).To(HaveLen(report.RecentLimit))
		Expect(summary.Recent[0].ID).To(Equal("first"))
		Expect(summary.Recent[2].ID).To(Equal("third"))
	})

	It("has no top category and zero totals for an empty month", func() {
		summary := report.Summarize([]*transaction.Transaction{
			tx("1", "2024-01-02", "800", "Salary", transaction.TypeIncome),
		}, now)
		Expect(summary.TopCategory).To(BeNil())
		Expect(summary.Spending.IsZero()).To(BeTrue())
		Expect(summary.Recent).To(HaveLen(1))
	})
})

var _ = Describe("Breakdown", func() {
	It("reports income, expense and net per month, newest first", func() {
		breakdown := report.Breakdown([]*transaction.Transaction{
			tx("1", "2023-12-05", "100", "Food", transaction.TypeExpense),
			tx("2", "2024-01-01", "2000", "Salary", transaction.TypeIncome),
			tx("3", "2024-01-03", "300", "Bills", transaction.TypeExpense),
			tx("4", "2023-12-25", "500", "Work", transaction.TypeIncome),
		})

		Expect(breakdown).To(HaveLen(2))
		Expect(breakdown[0].Month).To(Equal("2024-01"))
		Expect(breakdown[0].Label).To(Equal("January 2024"))
		Expect(breakdown[0].Income.String()).To(Equal("2000"))
		Expect(breakdown[0].Expense.String()).To(Equal("300"))
		Expect(breakdown[0].Net.String()).To(Equal("1700"))

		Expect(breakdown[1].Month).To(Equal("2023-12"))
		Expect(breakdown[1].Net.String()).To(Equal("400"))
	})

	It("is empty without transactions", func() {
		Expect(report.Breakdown(nil)).To(BeEmpty())
	})
})
