package cmd

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/personal-finance/internal"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
)

func testConfig() *internal.Config {
	cfg := &internal.Config{
		Database: internal.DatabaseConfig{
			Driver:       "sqlite",
			Source:       ":memory:",
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		Security: internal.SecurityConfig{
			JWTSecret:  strings.Repeat("s", 32),
			Username:   "admin",
			Password:   "secret",
			BCryptCost: 4,
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

var _ = Describe("HTTP server wiring", func() {
	var (
		conn     *sqlx.DB
		router   *chi.Mux
		services *Services
		token    string
	)

	call := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	decode := func(rec *httptest.ResponseRecorder, dst interface{}) {
		ExpectWithOffset(1, json.Unmarshal(rec.Body.Bytes(), dst)).To(Succeed(), rec.Body.String())
	}

	BeforeEach(func() {
		cfg := testConfig()
		Expect(cfg.Validate()).To(Succeed())
		lg := slog.New(slog.NewTextHandler(GinkgoWriter, nil))

		var err error
		conn, err = initDB(cfg.Database)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(conn.Close)

		Expect(migrate(context.Background(), conn.DB, cfg.Database.Driver, "", "up")).To(Succeed())

		gdb, err := openGorm(cfg.Database.Driver, conn)
		Expect(err).NotTo(HaveOccurred())

		services, err = buildServices(cfg, gdb, lg)
		Expect(err).NotTo(HaveOccurred())
		services.Reports.SetClock(func() time.Time { return time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC) })

		router = newRouter(cfg, conn, services, lg)
		token = ""
	})

	login := func() {
		rec := call(http.MethodPost, "/api/login", `{"username": "admin", "password": "secret"}`)
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		var body struct {
			Success bool   `json:"success"`
			Token   string `json:"token"`
		}
		decode(rec, &body)
		Expect(body.Success).To(BeTrue())
		Expect(body.Token).NotTo(BeEmpty())
		token = body.Token
	}

	It("reports the database as healthy without auth", func() {
		rec := call(http.MethodGet, "/api/health", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("rejects data routes without a token", func() {
		for _, path := range []string{"/api/transactions", "/api/budgets?month=2024-01", "/api/reports/monthly"} {
			rec := call(http.MethodGet, path, "")
			Expect(rec.Code).To(Equal(http.StatusUnauthorized), path)
			Expect(rec.Body.String()).To(ContainSubstring("Unauthorized"))
		}
	})

	It("rejects bad credentials", func() {
		rec := call(http.MethodPost, "/api/login", `{"username": "admin", "password": "wrong"}`)
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("serves the embedded OpenAPI document", func() {
		rec := call(http.MethodGet, "/openapi.yml", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("openapi: 3.0.3"))
	})

	It("answers unknown routes with a JSON 404", func() {
		login()
		rec := call(http.MethodGet, "/api/nope", "")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(rec.Body.String()).To(ContainSubstring(`"error"`))
	})

	It("tracks spending against budgets end to end", func() {
		login()

		for _, body := range []string{
			`{"amount": 100, "description": "Groceries", "date": "2024-01-05", "category": "Food", "type": "expense"}`,
			`{"amount": 200, "description": "Dinner out", "date": "2024-01-12", "category": "Food", "type": "expense"}`,
			`{"amount": 50, "description": "Bus pass", "date": "2024-01-15", "category": "Transport", "type": "expense"}`,
			`{"amount": 1000, "description": "Salary", "date": "2024-01-01", "category": "Salary", "type": "income"}`,
		} {
			rec := call(http.MethodPost, "/api/transactions", body)
			Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())
		}

		rec := call(http.MethodPost, "/api/budgets", `[{"month": "2024-01", "category": "Food", "amount": 250}]`)
		Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())

		rec = call(http.MethodGet, "/api/reports/monthly", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var monthly []struct {
			Month  string  `json:"month"`
			Spent  float64 `json:"spent"`
			Budget float64 `json:"budget"`
		}
		decode(rec, &monthly)
		Expect(monthly).To(HaveLen(6))
		Expect(monthly[0].Month).To(Equal("2023-08"))
		current := monthly[5]
		Expect(current.Month).To(Equal("2024-01"))
		Expect(current.Spent).To(BeNumerically("==", 350))
		Expect(current.Budget).To(BeNumerically("==", 250))

		rec = call(http.MethodGet, "/api/reports/summary", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var summary struct {
			Income      float64           `json:"income"`
			Spending    float64           `json:"spending"`
			TopCategory string            `json:"top_category"`
			Recent      []json.RawMessage `json:"recent"`
		}
		decode(rec, &summary)
		Expect(summary.Income).To(BeNumerically("==", 1000))
		Expect(summary.Spending).To(BeNumerically("==", 350))
		Expect(summary.TopCategory).To(Equal("Food"))
		Expect(summary.Recent).To(HaveLen(3))

		rec = call(http.MethodGet, "/api/budgets?month=2024-01", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var budgets []map[string]interface{}
		decode(rec, &budgets)
		Expect(budgets).To(HaveLen(1))
		Expect(budgets[0]["category"]).To(Equal("Food"))
		Expect(budgets[0]["amount"]).To(BeNumerically("==", 250))

		rec = call(http.MethodGet, "/api/reports/categories?monthly=false", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var categories []struct {
			Category string  `json:"category"`
			Total    float64 `json:"total"`
		}
		decode(rec, &categories)
		totals := map[string]float64{}
		for _, c := range categories {
			totals[c.Category] = c.Total
		}
		Expect(totals).To(Equal(map[string]float64{"Food": 300, "Transport": 50}))

		rec = call(http.MethodGet, "/api/reports/breakdown", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var breakdown []struct {
			Month string  `json:"month"`
			Net   float64 `json:"net"`
		}
		decode(rec, &breakdown)
		Expect(breakdown).To(HaveLen(1))
		Expect(breakdown[0].Month).To(Equal("2024-01"))
		Expect(breakdown[0].Net).To(BeNumerically("==", 650))
	})

	It("invalidates the cached monthly series when a transaction is deleted", func() {
		login()

		rec := call(http.MethodPost, "/api/transactions",
			`{"amount": 80, "date": "2024-01-15", "category": "Food", "type": "expense"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		var created struct {
			ID string `json:"id"`
		}
		decode(rec, &created)

		var monthly []struct {
			Spent float64 `json:"spent"`
		}
		decode(call(http.MethodGet, "/api/reports/monthly", ""), &monthly)
		Expect(monthly[5].Spent).To(BeNumerically("==", 80))

		rec = call(http.MethodDelete, "/api/transactions?id="+created.ID, "")
		Expect(rec.Code).To(Equal(http.StatusOK))

		decode(call(http.MethodGet, "/api/reports/monthly", ""), &monthly)
		Expect(monthly[5].Spent).To(BeNumerically("==", 0))

		rec = call(http.MethodDelete, "/api/transactions?id="+created.ID, "")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("seeds two months of sample data", func() {
		now := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
		count, err := seed(context.Background(), services, now, newTestRand())
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(11))

		all, err := services.Transactions.List(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(11))

		totals, err := services.Budgets.Totals(context.Background(), "2024-01")
		Expect(err).NotTo(HaveOccurred())
		Expect(totals).To(HaveLen(len(seedBudgets)))
	})
})
