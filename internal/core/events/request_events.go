package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeRequestSubmitted        = "request.submitted"
	EventTypeSupplierDataSubmitted   = "request.supplier_data_submitted"
	EventTypeRequestDataConfirmed    = "request.data_confirmed"
	EventTypeRequestApproved         = "request.approved"
	EventTypeRequestRejected         = "request.rejected"
	EventTypeRequestPaid             = "request.paid"
)

type RequestSubmittedEvent struct {
	BaseEvent
	RequestID    int64 `json:"request_id"`
	RequesterID  int64 `json:"requester_id"`
	AmountCents  int64 `json:"amount_cents"`
	CostCenterID int64 `json:"event_id"`
}

func NewRequestSubmittedEvent(requestID, requesterID, amountCents, eventID int64) *RequestSubmittedEvent {
	return &RequestSubmittedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRequestSubmitted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":   requestID,
				"requester_id": requesterID,
				"amount_cents": amountCents,
				"event_id":     eventID,
			},
		},
		RequestID:    requestID,
		RequesterID:  requesterID,
		AmountCents:  amountCents,
		CostCenterID: eventID,
	}
}

type RequestDataConfirmedEvent struct {
	BaseEvent
	RequestID   int64 `json:"request_id"`
	RequesterID int64 `json:"requester_id"`
}

func NewRequestDataConfirmedEvent(requestID, requesterID int64) *RequestDataConfirmedEvent {
	return &RequestDataConfirmedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRequestDataConfirmed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":   requestID,
				"requester_id": requesterID,
			},
		},
		RequestID:   requestID,
		RequesterID: requesterID,
	}
}

type SupplierDataSubmittedEvent struct {
	BaseEvent
	RequestID   int64  `json:"request_id"`
	RequesterID int64  `json:"requester_id"`
	Recipient   string `json:"recipient"`
}

func NewSupplierDataSubmittedEvent(requestID, requesterID int64, recipient string) *SupplierDataSubmittedEvent {
	return &SupplierDataSubmittedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSupplierDataSubmitted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":   requestID,
				"requester_id": requesterID,
				"recipient":    recipient,
			},
		},
		RequestID:   requestID,
		RequesterID: requesterID,
		Recipient:   recipient,
	}
}

type RequestApprovedEvent struct {
	BaseEvent
	RequestID   int64 `json:"request_id"`
	RequesterID int64 `json:"requester_id"`
	ApproverID  int64 `json:"approver_id"`
	AmountCents int64 `json:"amount_cents"`
}

func NewRequestApprovedEvent(requestID, requesterID, approverID, amountCents int64) *RequestApprovedEvent {
	return &RequestApprovedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRequestApproved,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":   requestID,
				"requester_id": requesterID,
				"approver_id":  approverID,
				"amount_cents": amountCents,
			},
		},
		RequestID:   requestID,
		RequesterID: requesterID,
		ApproverID:  approverID,
		AmountCents: amountCents,
	}
}

type RequestRejectedEvent struct {
	BaseEvent
	RequestID   int64  `json:"request_id"`
	RequesterID int64  `json:"requester_id"`
	Reason      string `json:"reason"`
	ByRole      string `json:"by_role"`
	// SelfRejected marks the requester discarding supplier-submitted data,
	// which only notifies the requester themselves.
	SelfRejected bool `json:"self_rejected"`
}

func NewRequestRejectedEvent(requestID, requesterID int64, reason, byRole string, selfRejected bool) *RequestRejectedEvent {
	return &RequestRejectedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRequestRejected,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":    requestID,
				"requester_id":  requesterID,
				"reason":        reason,
				"by_role":       byRole,
				"self_rejected": selfRejected,
			},
		},
		RequestID:    requestID,
		RequesterID:  requesterID,
		Reason:       reason,
		ByRole:       byRole,
		SelfRejected: selfRejected,
	}
}

type RequestPaidEvent struct {
	BaseEvent
	RequestID   int64  `json:"request_id"`
	RequesterID int64  `json:"requester_id"`
	AmountCents int64  `json:"amount_cents"`
	Proof       string `json:"proof"`
}

func NewRequestPaidEvent(requestID, requesterID, amountCents int64, proof string) *RequestPaidEvent {
	return &RequestPaidEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRequestPaid,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":   requestID,
				"requester_id": requesterID,
				"amount_cents": amountCents,
				"proof":        proof,
			},
		},
		RequestID:   requestID,
		RequesterID: requesterID,
		AmountCents: amountCents,
		Proof:       proof,
	}
}
