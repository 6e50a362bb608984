package cmd

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	budgetModel "github.com/frahmantamala/personal-finance/internal/core/datamodel/budget"
	transactionModel "github.com/frahmantamala/personal-finance/internal/core/datamodel/transaction"
	"github.com/frahmantamala/personal-finance/internal/core/period"
	"github.com/frahmantamala/personal-finance/internal/transaction"
	"github.com/frahmantamala/personal-finance/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	seedExpenseCategories = []string{"Food", "Transport", "Shopping", "Bills", "Entertainment"}
	seedBudgets           = map[string]int64{"Food": 4000, "Transport": 1500, "Shopping": 2500, "Bills": 3000, "Entertainment": 1000}
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample transactions for the current and previous month plus current-month budgets.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		logger.Init(cfg.Logging.Level, cfg.Logging.Format)
		lg := logger.LoggerWrapper()

		conn, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer conn.Close()

		gdb, err := openGorm(cfg.Database.Driver, conn)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		services, err := buildServices(cfg, gdb, lg)
		if err != nil {
			log.Fatalf("failed to build services: %v", err)
		}

		ctx := context.Background()
		if clearData {
			if err := clearLedger(ctx, gdb); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared existing transactions and budgets")
		}

		now := time.Now().UTC()
		rng := rand.New(rand.NewPCG(uint64(now.UnixNano()), 0))

		count, err := seed(ctx, services, now, rng)
		if err != nil {
			log.Fatalf("failed to seed: %v", err)
		}
		fmt.Printf("Seeded %d transactions and %d budgets\n", count, len(seedBudgets))
	},
}

func clearLedger(ctx context.Context, gdb *gorm.DB) error {
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&transactionModel.Transaction{}).Error; err != nil {
			return err
		}
		return all.Delete(&budgetModel.Budget{}).Error
	})
}

func seed(ctx context.Context, services *Services, now time.Time, rng *rand.Rand) (int, error) {
	plan := seedTransactions(now, rng)
	for i, dto := range plan {
		if _, err := services.Transactions.Create(ctx, dto); err != nil {
			return i, fmt.Errorf("transaction %d (%s): %w", i+1, dto.Description, err)
		}
	}

	month := period.MonthKey(now)
	for category, amount := range seedBudgets {
		if _, err := services.Budgets.Set(ctx, month, category, decimal.NewFromInt(amount)); err != nil {
			return len(plan), fmt.Errorf("budget %s: %w", category, err)
		}
	}
	return len(plan), nil
}

// seedTransactions plans five expenses and a salary this month, four expenses and a freelance
// payment last month.
func seedTransactions(now time.Time, rng *rand.Rand) []transaction.CreateTransactionDTO {
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonth := thisMonth.AddDate(0, -1, 0)

	var plan []transaction.CreateTransactionDTO
	for i := 0; i < 5; i++ {
		plan = append(plan, seedExpense(thisMonth, rng, 100, 3000, fmt.Sprintf("This month expense %d", i+1)))
	}
	plan = append(plan, seedIncome(thisMonth, 25000, "Monthly Salary", "Salary"))

	for i := 0; i < 4; i++ {
		plan = append(plan, seedExpense(lastMonth, rng, 200, 2000, fmt.Sprintf("Last month expense %d", i+1)))
	}
	plan = append(plan, seedIncome(lastMonth.AddDate(0, 0, 2), 22000, "Freelance Project", "Work"))

	return plan
}

func seedExpense(month time.Time, rng *rand.Rand, base, spread int, description string) transaction.CreateTransactionDTO {
	day := month.AddDate(0, 0, rng.IntN(28))
	return transaction.CreateTransactionDTO{
		Amount:      decimal.NewNullDecimal(decimal.NewFromInt(int64(rng.IntN(spread) + base))),
		Description: description,
		Date:        day.Format(period.DateLayout),
		Category:    seedExpenseCategories[rng.IntN(len(seedExpenseCategories))],
		Type:        transaction.TypeExpense,
	}
}

func seedIncome(day time.Time, amount int64, description, category string) transaction.CreateTransactionDTO {
	return transaction.CreateTransactionDTO{
		Amount:      decimal.NewNullDecimal(decimal.NewFromInt(amount)),
		Description: description,
		Date:        day.Format(period.DateLayout),
		Category:    category,
		Type:        transaction.TypeIncome,
	}
}
