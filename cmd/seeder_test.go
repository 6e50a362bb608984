package cmd

import (
	"math/rand/v2"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/personal-finance/internal/core/period"
	"github.com/frahmantamala/personal-finance/internal/transaction"
)

func newTestRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

var _ = Describe("seedTransactions", func() {
	It("plans expenses and income for the current and previous month", func() {
		now := time.Date(2024, 3, 31, 9, 0, 0, 0, time.UTC)
		plan := seedTransactions(now, newTestRand())
		Expect(plan).To(HaveLen(11))

		perMonth := map[string]map[string]int{}
		for _, dto := range plan {
			Expect(dto.Validate()).To(BeNil())
			d, err := period.ParseDate(dto.Date)
			Expect(err).NotTo(HaveOccurred())
			month := period.MonthKey(d)
			if perMonth[month] == nil {
				perMonth[month] = map[string]int{}
			}
			perMonth[month][dto.Type]++
			if dto.Type == transaction.TypeExpense {
				Expect(seedExpenseCategories).To(ContainElement(dto.Category))
			}
		}

		Expect(perMonth).To(HaveLen(2))
		Expect(perMonth["2024-03"]).To(Equal(map[string]int{transaction.TypeExpense: 5, transaction.TypeIncome: 1}))
		Expect(perMonth["2024-02"]).To(Equal(map[string]int{transaction.TypeExpense: 4, transaction.TypeIncome: 1}))
	})
})
