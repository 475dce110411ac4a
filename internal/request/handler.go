package request

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/payflowhq/payflow/internal/auth"
	"github.com/payflowhq/payflow/internal/transport"
	"github.com/payflowhq/payflow/pkg/logger"
)

type ServiceAPI interface {
	Create(ctx context.Context, actor *auth.User, dto *CreateRequestDTO) (*Request, error)
	GetByID(actor *auth.User, id int64) (*Request, error)
	List(actor *auth.User, filter ListFilter) ([]*Request, error)
	ConfirmData(ctx context.Context, actor *auth.User, id int64) (*Request, error)
	RejectData(ctx context.Context, actor *auth.User, id int64, dto *RejectRequestDTO) (*Request, error)
	Approve(ctx context.Context, actor *auth.User, id int64) (*Request, error)
	Reject(ctx context.Context, actor *auth.User, id int64, dto *RejectRequestDTO) (*Request, error)
	MarkPaid(ctx context.Context, actor *auth.User, id int64, dto *MarkPaidDTO) (*Request, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// CreateRequest handles POST /payment-requests
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateRequest: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Service.Create(r.Context(), actor, &dto)
	if err != nil {
		h.Logger.Error("CreateRequest: service failed", "user_id", actor.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	resp := struct {
		*Request
		SupplierToken *string `json:"supplier_token,omitempty"`
	}{Request: req, SupplierToken: req.SupplierToken}

	h.WriteJSON(w, http.StatusCreated, resp)
}

// ListRequests handles GET /payment-requests with optional status and month
// (YYYY-MM) query filters.
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter := ListFilter{
		Status: r.URL.Query().Get("status"),
		Month:  r.URL.Query().Get("month"),
	}

	requests, err := h.Service.List(actor, filter)
	if err != nil {
		h.Logger.Error("ListRequests: service failed", "user_id", actor.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, requests)
}

// GetRequest handles GET /payment-requests/{id}
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	req, err := h.Service.GetByID(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

// ConfirmData handles POST /payment-requests/{id}/confirm-data
func (h *Handler) ConfirmData(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	req, err := h.Service.ConfirmData(r.Context(), actor, id)
	if err != nil {
		h.Logger.Error("ConfirmData: service failed", "request_id", id, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

// RejectData handles POST /payment-requests/{id}/reject-data
func (h *Handler) RejectData(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var dto RejectRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Service.RejectData(r.Context(), actor, id, &dto)
	if err != nil {
		h.Logger.Error("RejectData: service failed", "request_id", id, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

// ApproveRequest handles POST /payment-requests/{id}/approve
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	req, err := h.Service.Approve(r.Context(), actor, id)
	if err != nil {
		h.Logger.Error("ApproveRequest: service failed", "request_id", id, "user_id", actor.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

// RejectRequest handles POST /payment-requests/{id}/reject
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var dto RejectRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Service.Reject(r.Context(), actor, id, &dto)
	if err != nil {
		h.Logger.Error("RejectRequest: service failed", "request_id", id, "user_id", actor.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

// PayRequest handles POST /payment-requests/{id}/pay
func (h *Handler) PayRequest(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var dto MarkPaidDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Service.MarkPaid(r.Context(), actor, id, &dto)
	if err != nil {
		h.Logger.Error("PayRequest: service failed", "request_id", id, "user_id", actor.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) actorAndID(w http.ResponseWriter, r *http.Request) (*auth.User, int64, bool) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, 0, false
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request id")
		return nil, 0, false
	}
	return actor, id, true
}
