package report

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	errors "github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/transport"
	"github.com/frahmantamala/personal-finance/pkg/logger"
)

type ServiceAPI interface {
	Monthly(ctx context.Context) ([]MonthlyRecord, error)
	Categories(ctx context.Context, monthlyOnly bool) ([]CategoryTotal, error)
	Summary(ctx context.Context) (*Summary, error)
	Breakdown(ctx context.Context) ([]MonthBreakdown, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// GetMonthly handles GET /reports/monthly.
func (h *Handler) GetMonthly(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.Monthly(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, records)
}

// GetCategories handles GET /reports/categories?monthly=true|false. monthly defaults to true.
func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	monthlyOnly := true
	if raw := r.URL.Query().Get("monthly"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			h.HandleServiceError(w, errors.NewValidationFieldError("monthly", "monthly must be true or false", errors.ErrCodeValidationFailed))
			return
		}
		monthlyOnly = parsed
	}

	totals, err := h.Service.Categories(r.Context(), monthlyOnly)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, totals)
}

// GetSummary handles GET /reports/summary.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, summary)
}

// GetBreakdown handles GET /reports/breakdown.
func (h *Handler) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	breakdown, err := h.Service.Breakdown(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, breakdown)
}
