package event

import (
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
	GetByID(eventID int64) (*Event, error)
	List() ([]*Event, error)
	ListCreatable(userID int64) ([]*Event, error)
	Create(dto *CreateEventDTO) (*Event, error)
	Update(eventID int64, dto *UpdateEventDTO) (*Event, error)
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

// ListEvents handles GET /events. With ?creatable=true it narrows the list
// to cost centers the caller can submit new requests against.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var (
		events []*Event
		err    error
	)
	if r.URL.Query().Get("creatable") == "true" {
		events, err = h.Service.ListCreatable(user.ID)
	} else {
		events, err = h.Service.List()
	}
	if err != nil {
		h.Logger.Error("ListEvents: service failed", "user_id", user.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	e, err := h.Service.GetByID(eventID)
	if err != nil {
		h.Logger.Error("GetEvent: service failed", "event_id", eventID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}

// CreateEvent handles POST /events
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var dto CreateEventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateEvent: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e, err := h.Service.Create(&dto)
	if err != nil {
		h.Logger.Error("CreateEvent: service failed", "name", dto.Name, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateEvent: event created", "event_id", e.ID, "name", e.Name)
	h.WriteJSON(w, http.StatusCreated, e)
}

// UpdateEvent handles PATCH /events/{id}
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var dto UpdateEventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateEvent: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e, err := h.Service.Update(eventID, &dto)
	if err != nil {
		h.Logger.Error("UpdateEvent: service failed", "event_id", eventID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}
