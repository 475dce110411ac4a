package postgres

import (
	"errors"
	"time"

	internal_errors "github.com/payflowhq/payflow/internal"
	requestDatamodel "github.com/payflowhq/payflow/internal/core/datamodel/request"
	"github.com/payflowhq/payflow/internal/request"
	"gorm.io/gorm"
)

// RequestRepository implements the request.Repository interface using GORM.
type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) Create(req *request.Request) error {
	dm := request.ToDataModel(req)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	req.ID = dm.ID
	req.Version = dm.Version
	req.CreatedAt = dm.CreatedAt
	req.UpdatedAt = dm.UpdatedAt
	return nil
}

func (r *RequestRepository) GetByID(id int64) (*request.Request, error) {
	var dm requestDatamodel.PaymentRequest
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal_errors.ErrRequestNotFound
		}
		return nil, err
	}
	return request.FromDataModel(&dm), nil
}

func (r *RequestRepository) GetBySupplierToken(token string) (*request.Request, error) {
	var dm requestDatamodel.PaymentRequest
	err := r.db.Where("supplier_token = ?", token).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal_errors.ErrRequestNotFound
		}
		return nil, err
	}
	return request.FromDataModel(&dm), nil
}

// ApplyTransition is the optimistic-lock write: the row moves to newStatus
// only if status and version still match what the caller read. A zero
// RowsAffected means another transition won the race.
func (r *RequestRepository) ApplyTransition(id int64, expectedStatus string, expectedVersion int64, newStatus string, fields map[string]interface{}) error {
	updates := map[string]interface{}{
		"status":     newStatus,
		"version":    gorm.Expr("version + 1"),
		"updated_at": time.Now(),
	}
	for k, v := range fields {
		updates[k] = v
	}

	result := r.db.Model(&requestDatamodel.PaymentRequest{}).
		Where("id = ? AND status = ? AND version = ?", id, expectedStatus, expectedVersion).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&requestDatamodel.PaymentRequest{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return internal_errors.ErrRequestNotFound
		}
		return internal_errors.ErrTransitionConflict
	}
	return nil
}

func (r *RequestRepository) ListForRequester(userID int64, filter request.ListFilter) ([]*request.Request, error) {
	query := r.db.Where("requester_id = ?", userID)
	return r.list(query, filter)
}

func (r *RequestRepository) ListForManager(userID int64, filter request.ListFilter) ([]*request.Request, error) {
	query := r.db.Where("requester_id = ? OR status = ?", userID, request.StatusAwaitingApproval)
	return r.list(query, filter)
}

func (r *RequestRepository) ListForFinance(filter request.ListFilter) ([]*request.Request, error) {
	query := r.db.Where("status <> ?", request.StatusAwaitingApproval)
	return r.list(query, filter)
}

func (r *RequestRepository) list(query *gorm.DB, filter request.ListFilter) ([]*request.Request, error) {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Month != "" {
		start, err := time.Parse("2006-01", filter.Month)
		if err != nil {
			return nil, internal_errors.NewValidationError("month filter must be YYYY-MM", internal_errors.ErrCodeValidationFailed)
		}
		query = query.Where("created_at >= ? AND created_at < ?", start, start.AddDate(0, 1, 0))
	}

	var dms []requestDatamodel.PaymentRequest
	if err := query.Order("created_at DESC").Find(&dms).Error; err != nil {
		return nil, err
	}

	requests := make([]*request.Request, 0, len(dms))
	for i := range dms {
		requests = append(requests, request.FromDataModel(&dms[i]))
	}
	return requests, nil
}

// ListPaidCreatedBetween returns paid requests whose creation date falls in
// [start, end], end-day inclusive, decorated with requester and event names
// for export. Ordered oldest first so exports read chronologically.
func (r *RequestRepository) ListPaidCreatedBetween(start, end time.Time) ([]*request.Request, error) {
	endExclusive := end.Truncate(24 * time.Hour).AddDate(0, 0, 1)

	var dms []requestDatamodel.PaymentRequest
	err := r.db.
		Where("status = ? AND created_at >= ? AND created_at < ?", request.StatusPaid, start, endExclusive).
		Order("created_at ASC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}

	requests := make([]*request.Request, 0, len(dms))
	for i := range dms {
		req := request.FromDataModel(&dms[i])

		var requesterName, eventName string
		r.db.Raw("SELECT name FROM users WHERE id = ?", req.RequesterID).Scan(&requesterName)
		r.db.Raw("SELECT name FROM events WHERE id = ?", req.EventID).Scan(&eventName)
		req.RequesterName = requesterName
		req.EventName = eventName

		requests = append(requests, req)
	}
	return requests, nil
}

// SpentByEvent sums paid amounts per cost center.
func (r *RequestRepository) SpentByEvent() (map[int64]int64, error) {
	type row struct {
		EventID int64
		Total   int64
	}
	var rows []row
	err := r.db.Model(&requestDatamodel.PaymentRequest{}).
		Select("event_id, SUM(amount_cents) AS total").
		Where("status = ?", request.StatusPaid).
		Group("event_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	spent := make(map[int64]int64, len(rows))
	for _, rw := range rows {
		spent[rw.EventID] = rw.Total
	}
	return spent, nil
}
