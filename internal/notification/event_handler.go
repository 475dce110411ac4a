package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/payflowhq/payflow/internal/core/datamodel/user"
	"github.com/payflowhq/payflow/internal/core/events"
	userDomain "github.com/payflowhq/payflow/internal/user"
)

// UserDirectory resolves notification audiences by role.
type UserDirectory interface {
	ListActiveByRole(role string) ([]*userDomain.User, error)
}

// EventHandler turns lifecycle events into notifications for the right
// audiences.
type EventHandler struct {
	service *Service
	users   UserDirectory
	logger  *slog.Logger
}

func NewEventHandler(service *Service, users UserDirectory, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		users:   users,
		logger:  logger,
	}
}

// HandleRequestSubmitted notifies every manager that a new request entered
// the approval queue.
func (h *EventHandler) HandleRequestSubmitted(ctx context.Context, event events.Event) error {
	evt, ok := event.(*events.RequestSubmittedEvent)
	if !ok {
		return fmt.Errorf("expected RequestSubmittedEvent, got %T", event)
	}

	managers, err := h.users.ListActiveByRole(user.RoleManager)
	if err != nil {
		return fmt.Errorf("failed to resolve managers: %w", err)
	}
	if len(managers) == 0 {
		h.logger.Warn("no active managers to notify, request will wait in the approval queue",
			"request_id", evt.RequestID)
		return nil
	}

	message := fmt.Sprintf("New payment request #%d of %s is awaiting your approval",
		evt.RequestID, formatBRL(evt.AmountCents))
	for _, m := range managers {
		if _, err := h.service.Notify(m.ID, message); err != nil {
			h.logger.Error("failed to notify manager",
				"user_id", m.ID, "request_id", evt.RequestID, "error", err)
		}
	}
	return nil
}

// HandleRequestApproved notifies the requester and every finance user.
func (h *EventHandler) HandleRequestApproved(ctx context.Context, event events.Event) error {
	evt, ok := event.(*events.RequestApprovedEvent)
	if !ok {
		return fmt.Errorf("expected RequestApprovedEvent, got %T", event)
	}

	requesterMsg := fmt.Sprintf("Your payment request #%d was approved and sent to finance", evt.RequestID)
	if _, err := h.service.Notify(evt.RequesterID, requesterMsg); err != nil {
		h.logger.Error("failed to notify requester",
			"user_id", evt.RequesterID, "request_id", evt.RequestID, "error", err)
	}

	financeUsers, err := h.users.ListActiveByRole(user.RoleFinance)
	if err != nil {
		return fmt.Errorf("failed to resolve finance users: %w", err)
	}
	financeMsg := fmt.Sprintf("Payment request #%d of %s was approved and is ready for payment",
		evt.RequestID, formatBRL(evt.AmountCents))
	for _, f := range financeUsers {
		if _, err := h.service.Notify(f.ID, financeMsg); err != nil {
			h.logger.Error("failed to notify finance user",
				"user_id", f.ID, "request_id", evt.RequestID, "error", err)
		}
	}
	return nil
}

// HandleRequestRejected notifies the requester, naming the rejecting role.
func (h *EventHandler) HandleRequestRejected(ctx context.Context, event events.Event) error {
	evt, ok := event.(*events.RequestRejectedEvent)
	if !ok {
		return fmt.Errorf("expected RequestRejectedEvent, got %T", event)
	}

	var message string
	if evt.SelfRejected {
		message = fmt.Sprintf("You rejected the supplier data for payment request #%d: %s",
			evt.RequestID, evt.Reason)
	} else {
		message = fmt.Sprintf("Your payment request #%d was rejected by %s: %s",
			evt.RequestID, evt.ByRole, evt.Reason)
	}

	if _, err := h.service.Notify(evt.RequesterID, message); err != nil {
		h.logger.Error("failed to notify requester of rejection",
			"user_id", evt.RequesterID, "request_id", evt.RequestID, "error", err)
		return err
	}
	return nil
}

// HandleRequestPaid notifies the requester.
func (h *EventHandler) HandleRequestPaid(ctx context.Context, event events.Event) error {
	evt, ok := event.(*events.RequestPaidEvent)
	if !ok {
		return fmt.Errorf("expected RequestPaidEvent, got %T", event)
	}

	message := fmt.Sprintf("Your payment request #%d of %s was paid",
		evt.RequestID, formatBRL(evt.AmountCents))
	if _, err := h.service.Notify(evt.RequesterID, message); err != nil {
		h.logger.Error("failed to notify requester of payment",
			"user_id", evt.RequesterID, "request_id", evt.RequestID, "error", err)
		return err
	}
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeRequestSubmitted, h.HandleRequestSubmitted)
	eventBus.Subscribe(events.EventTypeRequestApproved, h.HandleRequestApproved)
	eventBus.Subscribe(events.EventTypeRequestRejected, h.HandleRequestRejected)
	eventBus.Subscribe(events.EventTypeRequestPaid, h.HandleRequestPaid)

	h.logger.Info("notification event handlers registered",
		"handlers", []string{
			events.EventTypeRequestSubmitted,
			events.EventTypeRequestApproved,
			events.EventTypeRequestRejected,
			events.EventTypeRequestPaid,
		})
}

func formatBRL(cents int64) string {
	return fmt.Sprintf("R$ %d,%02d", cents/100, cents%100)
}
