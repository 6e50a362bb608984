package budget

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	errors "github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/transport"
	"github.com/frahmantamala/personal-finance/pkg/logger"
)

type ServiceAPI interface {
	ListByMonth(ctx context.Context, month string) ([]*Budget, error)
	Save(ctx context.Context, dtos UpsertBudgetsDTO) ([]*Budget, error)
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

type SaveBudgetsResponse struct {
	Success bool      `json:"success"`
	Budgets []*Budget `json:"budgets"`
}

// GetBudgets handles GET /budgets?month=YYYY-MM.
func (h *Handler) GetBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.Service.ListByMonth(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if budgets == nil {
		budgets = []*Budget{}
	}
	h.WriteJSON(w, http.StatusOK, budgets)
}

// SaveBudgets handles POST /budgets with a JSON array body.
func (h *Handler) SaveBudgets(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := h.DecodeJSON(r, &raw); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		h.HandleServiceError(w, errors.ErrExpectedBudgetArray)
		return
	}

	var dtos UpsertBudgetsDTO
	if err := json.Unmarshal(raw, &dtos); err != nil {
		h.Logger.Debug("SaveBudgets: invalid element", "error", err)
		h.HandleServiceError(w, errors.ErrInvalidBody)
		return
	}

	budgets, err := h.Service.Save(r.Context(), dtos)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, SaveBudgetsResponse{Success: true, Budgets: budgets})
}
