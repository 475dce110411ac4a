package notification

import (
	"log/slog"
	"net/http"

	"github.com/payflowhq/payflow/internal/auth"
	"github.com/payflowhq/payflow/internal/transport"
	"github.com/payflowhq/payflow/pkg/logger"
)

type ServiceAPI interface {
	ListForUser(userID int64) ([]*Notification, error)
	CountUnread(userID int64) (int64, error)
	MarkAllRead(userID int64) error
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

// ListNotifications handles GET /notifications
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	notifications, err := h.Service.ListForUser(actor.ID)
	if err != nil {
		h.Logger.Error("ListNotifications: service failed", "user_id", actor.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	unread, err := h.Service.CountUnread(actor.ID)
	if err != nil {
		h.Logger.Error("ListNotifications: unread count failed", "user_id", actor.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// MarkAllRead handles POST /notifications/read-all
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.Service.MarkAllRead(actor.ID); err != nil {
		h.Logger.Error("MarkAllRead: service failed", "user_id", actor.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
