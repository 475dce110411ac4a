package request

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/payflowhq/payflow/internal/transport"
	"github.com/payflowhq/payflow/pkg/logger"
)

type SupplierServiceAPI interface {
	GetBySupplierToken(token string) (*Request, error)
	SupplierSubmit(ctx context.Context, token string, dto *SupplierFillDTO) (*Request, error)
}

// SupplierHandler serves the unauthenticated supplier-fill surface. Access
// is scoped entirely by the opaque token in the URL.
type SupplierHandler struct {
	*transport.BaseHandler
	Service SupplierServiceAPI
}

func NewSupplierHandler(svc SupplierServiceAPI) *SupplierHandler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &SupplierHandler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// supplierView hides internal identifiers and workflow data from the
// external party; they only need what to fill in and for how much.
type supplierView struct {
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	Status      string `json:"status"`
}

// GetSupplierRequest handles GET /supplier/{token}
func (h *SupplierHandler) GetSupplierRequest(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	req, err := h.Service.GetBySupplierToken(token)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, supplierView{
		Description: req.Description,
		AmountCents: req.AmountCents,
		Status:      req.Status,
	})
}

// SubmitSupplierData handles POST /supplier/{token}
func (h *SupplierHandler) SubmitSupplierData(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var dto SupplierFillDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Service.SupplierSubmit(r.Context(), token, &dto)
	if err != nil {
		h.Logger.Error("SubmitSupplierData: service failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, supplierView{
		Description: req.Description,
		AmountCents: req.AmountCents,
		Status:      req.Status,
	})
}
