package report

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/payflowhq/payflow/internal/transport"
	"github.com/payflowhq/payflow/pkg/logger"
)

type ServiceAPI interface {
	PaymentsCSV(start, end time.Time) ([]byte, error)
	PaymentsCalendar(start, end time.Time) ([]byte, error)
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

// ExportCSV handles GET /reports/payments.csv?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.dateRange(w, r)
	if !ok {
		return
	}

	data, err := h.Service.PaymentsCSV(start, end)
	if err != nil {
		h.Logger.Error("ExportCSV: service failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="payments.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ExportCalendar handles GET /reports/payments.ics?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Handler) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.dateRange(w, r)
	if !ok {
		return
	}

	data, err := h.Service.PaymentsCalendar(start, end)
	if err != nil {
		h.Logger.Error("ExportCalendar: service failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="payments.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) dateRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	start, err := time.Parse("2006-01-02", r.URL.Query().Get("start"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse("2006-01-02", r.URL.Query().Get("end"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "end must be YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	if end.Before(start) {
		h.WriteError(w, http.StatusBadRequest, "end must not be before start")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
