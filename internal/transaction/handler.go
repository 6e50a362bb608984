package transaction

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/personal-finance/internal/transport"
	"github.com/frahmantamala/personal-finance/pkg/logger"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]*Transaction, error)
	Create(ctx context.Context, dto CreateTransactionDTO) (*Transaction, error)
	Patch(ctx context.Context, id string, dto PatchTransactionDTO) (*Transaction, error)
	Delete(ctx context.Context, id string) error
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

// ListTransactions handles GET /transactions.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if transactions == nil {
		transactions = []*Transaction{}
	}
	h.WriteJSON(w, http.StatusOK, transactions)
}

// CreateTransaction handles POST /transactions.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var dto CreateTransactionDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	t, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, t)
}

// PatchTransaction handles PATCH /transactions?id=.
func (h *Handler) PatchTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")

	var dto PatchTransactionDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	t, err := h.Service.Patch(r.Context(), id, dto)
	if err != nil {
		logger.From(r.Context()).Debug("PatchTransaction: service error", "transaction_id", id, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, t)
}

// DeleteTransaction handles DELETE /transactions?id=.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")

	if err := h.Service.Delete(r.Context(), id); err != nil {
		logger.From(r.Context()).Debug("DeleteTransaction: service error", "transaction_id", id, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
