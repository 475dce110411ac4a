package request

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	internal_errors "github.com/payflowhq/payflow/internal"
	"github.com/payflowhq/payflow/internal/auth"
	"github.com/payflowhq/payflow/internal/core/datamodel/user"
	"github.com/payflowhq/payflow/internal/core/events"
	"github.com/payflowhq/payflow/internal/event"
)

// Repository defines the data access methods for payment requests.
type Repository interface {
	Create(r *Request) error
	GetByID(id int64) (*Request, error)
	GetBySupplierToken(token string) (*Request, error)

	// ApplyTransition moves a request to a new status only if its current
	// status and version still match the expected values. It must return
	// ErrTransitionConflict when the row was changed concurrently.
	ApplyTransition(id int64, expectedStatus string, expectedVersion int64, newStatus string, fields map[string]interface{}) error

	ListForRequester(userID int64, filter ListFilter) ([]*Request, error)
	ListForManager(userID int64, filter ListFilter) ([]*Request, error)
	ListForFinance(filter ListFilter) ([]*Request, error)
}

// EventPublisher is the slice of the event bus the service needs.
type EventPublisher interface {
	PublishSync(ctx context.Context, event events.Event) error
}

// EventGuard verifies a cost center accepts new requests from a requester.
type EventGuard interface {
	AssertAcceptsRequests(eventID, requesterID int64) (*event.Event, error)
}

type Service struct {
	repo       Repository
	eventGuard EventGuard
	eventBus   EventPublisher
	logger     *slog.Logger
}

func NewService(repo Repository, eventGuard EventGuard, eventBus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		eventGuard: eventGuard,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// Create submits a new payment request. Internal requests carry full
// recipient and payment data and go straight to approval; external requests
// start in the supplier-fill state with a freshly minted public token.
func (s *Service) Create(ctx context.Context, actor *auth.User, dto *CreateRequestDTO) (*Request, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("request validation failed", "error", err, "user_id", actor.ID)
		return nil, err
	}

	if _, err := s.eventGuard.AssertAcceptsRequests(dto.EventID, actor.ID); err != nil {
		return nil, err
	}

	req := &Request{
		RequesterID: actor.ID,
		EventID:     dto.EventID,
		AmountCents: dto.AmountCents,
		Description: dto.Description,
		Category:    dto.Category,
		IsExternal:  dto.IsExternal,
	}

	if dto.IsExternal {
		token := uuid.New().String()
		req.Status = StatusWaitingSupplier
		req.SupplierToken = &token
	} else {
		req.Status = StatusAwaitingApproval
		req.Recipient = *dto.Recipient
		req.PaymentMethod = dto.PaymentMethod
	}

	if err := s.repo.Create(req); err != nil {
		s.logger.Error("failed to create payment request", "error", err, "user_id", actor.ID)
		return nil, err
	}

	s.logger.Info("payment request created",
		"request_id", req.ID,
		"user_id", actor.ID,
		"amount_cents", req.AmountCents,
		"status", req.Status)

	if req.Status == StatusAwaitingApproval {
		evt := events.NewRequestSubmittedEvent(req.ID, req.RequesterID, req.AmountCents, req.EventID)
		if err := s.eventBus.PublishSync(ctx, evt); err != nil {
			s.logger.Error("failed to publish request submitted event", "request_id", req.ID, "error", err)
		}
	}

	return req, nil
}

// GetByID returns a request if the actor's role allows seeing it.
func (s *Service) GetByID(actor *auth.User, id int64) (*Request, error) {
	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !s.canSee(actor, req) {
		return nil, internal_errors.ErrUnauthorizedAccess
	}
	return req, nil
}

// List returns the requests visible to the actor, newest first. Requesters
// see their own; managers additionally see everything awaiting approval;
// finance sees everything already past manager approval.
func (s *Service) List(actor *auth.User, filter ListFilter) ([]*Request, error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, internal_errors.NewValidationError("unknown status filter", internal_errors.ErrCodeValidationFailed)
	}

	switch actor.Role {
	case user.RoleManager:
		return s.repo.ListForManager(actor.ID, filter)
	case user.RoleFinance:
		return s.repo.ListForFinance(filter)
	default:
		return s.repo.ListForRequester(actor.ID, filter)
	}
}

// GetBySupplierToken resolves a public supplier link. Only requests still
// waiting on the supplier are addressable this way.
func (s *Service) GetBySupplierToken(token string) (*Request, error) {
	req, err := s.repo.GetBySupplierToken(token)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusWaitingSupplier {
		return nil, internal_errors.ErrRequestNotFound
	}
	return req, nil
}

// SupplierSubmit records the data an external supplier filled in through
// the public link and hands the request back to its requester for review.
func (s *Service) SupplierSubmit(ctx context.Context, token string, dto *SupplierFillDTO) (*Request, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	req, err := s.GetBySupplierToken(token)
	if err != nil {
		return nil, err
	}

	transition, err := Resolve(req.Status, ActionSupplierSubmit, ActorSupplier)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"recipient_name":   dto.Recipient.Name,
		"recipient_tax_id": dto.Recipient.TaxID,
		"recipient_rg":     dto.Recipient.RG,
		"recipient_email":  dto.Recipient.Email,
		"payment_method":   dto.PaymentMethod.Type,
	}
	switch dto.PaymentMethod.Type {
	case PaymentMethodBank:
		fields["bank_name"] = dto.PaymentMethod.Bank.BankName
		fields["bank_agency"] = dto.PaymentMethod.Bank.Agency
		fields["bank_account"] = dto.PaymentMethod.Bank.Account
	case PaymentMethodPix:
		fields["pix_key"] = *dto.PaymentMethod.PixKey
	}
	if dto.Invoice != nil {
		fields["invoice_url"] = dto.Invoice.URL
		fields["invoice_filename"] = dto.Invoice.FileName
	}

	if err := s.applyTransition(req, transition, fields); err != nil {
		return nil, err
	}

	evt := events.NewSupplierDataSubmittedEvent(req.ID, req.RequesterID, dto.Recipient.Name)
	if err := s.eventBus.PublishSync(ctx, evt); err != nil {
		s.logger.Error("failed to publish supplier data event", "request_id", req.ID, "error", err)
	}

	return s.repo.GetByID(req.ID)
}

// ConfirmData lets the owning requester accept supplier-submitted data,
// moving the request into the approval queue.
func (s *Service) ConfirmData(ctx context.Context, actor *auth.User, id int64) (*Request, error) {
	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	transition, err := Resolve(req.Status, ActionConfirmData, actor.Role)
	if err != nil {
		return nil, err
	}
	if transition.OwnerOnly && !req.IsOwnedBy(actor.ID) {
		return nil, internal_errors.ErrUnauthorizedAccess
	}

	if err := s.applyTransition(req, transition, nil); err != nil {
		return nil, err
	}

	evt := events.NewRequestDataConfirmedEvent(req.ID, req.RequesterID)
	if err := s.eventBus.PublishSync(ctx, evt); err != nil {
		s.logger.Error("failed to publish data confirmed event", "request_id", req.ID, "error", err)
	}

	return s.repo.GetByID(req.ID)
}

// RejectData lets the owning requester discard supplier-submitted data,
// terminating the request.
func (s *Service) RejectData(ctx context.Context, actor *auth.User, id int64, dto *RejectRequestDTO) (*Request, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	transition, err := Resolve(req.Status, ActionRejectData, actor.Role)
	if err != nil {
		return nil, err
	}
	if transition.OwnerOnly && !req.IsOwnedBy(actor.ID) {
		return nil, internal_errors.ErrUnauthorizedAccess
	}

	fields := map[string]interface{}{
		"reason_for_rejection": dto.Reason,
		"rejected_by_role":     user.RoleRequester,
	}
	if err := s.applyTransition(req, transition, fields); err != nil {
		return nil, err
	}

	evt := events.NewRequestRejectedEvent(req.ID, req.RequesterID, dto.Reason, user.RoleRequester, true)
	if err := s.eventBus.PublishSync(ctx, evt); err != nil {
		s.logger.Error("failed to publish request rejected event", "request_id", req.ID, "error", err)
	}

	return s.repo.GetByID(req.ID)
}

// Approve moves a request from the approval queue to the payment queue.
func (s *Service) Approve(ctx context.Context, actor *auth.User, id int64) (*Request, error) {
	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	transition, err := Resolve(req.Status, ActionApprove, actor.Role)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	fields := map[string]interface{}{
		"approver_id": actor.ID,
		"approved_at": now,
	}
	if err := s.applyTransition(req, transition, fields); err != nil {
		return nil, err
	}

	s.logger.Info("payment request approved",
		"request_id", req.ID,
		"approver_id", actor.ID)

	evt := events.NewRequestApprovedEvent(req.ID, req.RequesterID, actor.ID, req.AmountCents)
	if err := s.eventBus.PublishSync(ctx, evt); err != nil {
		s.logger.Error("failed to publish request approved event", "request_id", req.ID, "error", err)
	}

	return s.repo.GetByID(req.ID)
}

// Reject terminates a request with a reason. Managers reject from the
// approval queue, finance from the payment queue; the lifecycle table
// decides which applies.
func (s *Service) Reject(ctx context.Context, actor *auth.User, id int64, dto *RejectRequestDTO) (*Request, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	transition, err := Resolve(req.Status, ActionReject, actor.Role)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"reason_for_rejection": dto.Reason,
		"rejected_by_role":     actor.Role,
	}
	if err := s.applyTransition(req, transition, fields); err != nil {
		return nil, err
	}

	s.logger.Info("payment request rejected",
		"request_id", req.ID,
		"rejected_by", actor.ID,
		"role", actor.Role)

	evt := events.NewRequestRejectedEvent(req.ID, req.RequesterID, dto.Reason, actor.Role, false)
	if err := s.eventBus.PublishSync(ctx, evt); err != nil {
		s.logger.Error("failed to publish request rejected event", "request_id", req.ID, "error", err)
	}

	return s.repo.GetByID(req.ID)
}

// MarkPaid settles a request with a proof of payment reference.
func (s *Service) MarkPaid(ctx context.Context, actor *auth.User, id int64, dto *MarkPaidDTO) (*Request, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	transition, err := Resolve(req.Status, ActionMarkPaid, actor.Role)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	fields := map[string]interface{}{
		"paid_at":          now,
		"proof_of_payment": dto.ProofOfPayment,
	}
	if err := s.applyTransition(req, transition, fields); err != nil {
		return nil, err
	}

	s.logger.Info("payment request paid",
		"request_id", req.ID,
		"paid_by", actor.ID,
		"amount_cents", req.AmountCents)

	evt := events.NewRequestPaidEvent(req.ID, req.RequesterID, req.AmountCents, dto.ProofOfPayment)
	if err := s.eventBus.PublishSync(ctx, evt); err != nil {
		s.logger.Error("failed to publish request paid event", "request_id", req.ID, "error", err)
	}

	return s.repo.GetByID(req.ID)
}

// applyTransition performs the compare-and-swap write. A concurrent
// transition on the same request makes the expected version stale, which
// surfaces as ErrTransitionConflict instead of a silent double write.
func (s *Service) applyTransition(req *Request, transition *Transition, fields map[string]interface{}) error {
	err := s.repo.ApplyTransition(req.ID, transition.From, req.Version, transition.To, fields)
	if err != nil {
		s.logger.Error("transition failed",
			"request_id", req.ID,
			"from", transition.From,
			"to", transition.To,
			"error", err)
		return err
	}
	return nil
}

func (s *Service) canSee(actor *auth.User, req *Request) bool {
	switch actor.Role {
	case user.RoleManager:
		return req.IsOwnedBy(actor.ID) || req.Status == StatusAwaitingApproval
	case user.RoleFinance:
		return req.Status != StatusAwaitingApproval
	default:
		return req.IsOwnedBy(actor.ID)
	}
}
