package request_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal_errors "github.com/payflowhq/payflow/internal"
	"github.com/payflowhq/payflow/internal/auth"
	"github.com/payflowhq/payflow/internal/core/datamodel/user"
	"github.com/payflowhq/payflow/internal/core/events"
	"github.com/payflowhq/payflow/internal/event"
	"github.com/payflowhq/payflow/internal/request"
)

type mockRequestRepository struct {
	requests      map[int64]*request.Request
	nextID        int64
	createError   error
	conflictOnce  bool
	lastUpdate    map[string]interface{}
	lastNewStatus string
}

func newMockRequestRepository() *mockRequestRepository {
	return &mockRequestRepository{
		requests: make(map[int64]*request.Request),
		nextID:   1,
	}
}

func (m *mockRequestRepository) Create(r *request.Request) error {
	if m.createError != nil {
		return m.createError
	}
	r.ID = m.nextID
	m.nextID++
	r.CreatedAt = time.Now()
	r.UpdatedAt = time.Now()
	stored := *r
	m.requests[r.ID] = &stored
	return nil
}

func (m *mockRequestRepository) GetByID(id int64) (*request.Request, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, internal_errors.ErrRequestNotFound
	}
	copied := *r
	return &copied, nil
}

func (m *mockRequestRepository) GetBySupplierToken(token string) (*request.Request, error) {
	for _, r := range m.requests {
		if r.SupplierToken != nil && *r.SupplierToken == token {
			copied := *r
			return &copied, nil
		}
	}
	return nil, internal_errors.ErrRequestNotFound
}

func (m *mockRequestRepository) ApplyTransition(id int64, expectedStatus string, expectedVersion int64, newStatus string, fields map[string]interface{}) error {
	if m.conflictOnce {
		m.conflictOnce = false
		return internal_errors.ErrTransitionConflict
	}
	r, ok := m.requests[id]
	if !ok {
		return internal_errors.ErrRequestNotFound
	}
	if r.Status != expectedStatus || r.Version != expectedVersion {
		return internal_errors.ErrTransitionConflict
	}
	r.Status = newStatus
	r.Version++
	m.lastNewStatus = newStatus
	m.lastUpdate = fields

	if v, ok := fields["reason_for_rejection"].(string); ok {
		r.ReasonForRejection = &v
	}
	if v, ok := fields["rejected_by_role"].(string); ok {
		r.RejectedByRole = &v
	}
	if v, ok := fields["proof_of_payment"].(string); ok {
		r.ProofOfPayment = &v
	}
	if v, ok := fields["approver_id"].(int64); ok {
		r.ApproverID = &v
	}
	if v, ok := fields["paid_at"].(time.Time); ok {
		r.PaidAt = &v
	}
	if v, ok := fields["approved_at"].(time.Time); ok {
		r.ApprovedAt = &v
	}
	if v, ok := fields["recipient_name"].(string); ok {
		r.Recipient.Name = v
	}
	return nil
}

func (m *mockRequestRepository) ListForRequester(userID int64, filter request.ListFilter) ([]*request.Request, error) {
	var out []*request.Request
	for _, r := range m.requests {
		if r.RequesterID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRequestRepository) ListForManager(userID int64, filter request.ListFilter) ([]*request.Request, error) {
	var out []*request.Request
	for _, r := range m.requests {
		if r.RequesterID == userID || r.Status == request.StatusAwaitingApproval {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRequestRepository) ListForFinance(filter request.ListFilter) ([]*request.Request, error) {
	var out []*request.Request
	for _, r := range m.requests {
		if r.Status != request.StatusAwaitingApproval {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockEventGuard struct {
	err error
}

func (m *mockEventGuard) AssertAcceptsRequests(eventID, requesterID int64) (*event.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &event.Event{ID: eventID, Status: event.StatusActive, MemberIDs: []int64{requesterID}}, nil
}

type recordingPublisher struct {
	published []events.Event
}

func (p *recordingPublisher) PublishSync(ctx context.Context, event events.Event) error {
	p.published = append(p.published, event)
	return nil
}

func (p *recordingPublisher) lastType() string {
	if len(p.published) == 0 {
		return ""
	}
	return p.published[len(p.published)-1].EventType()
}

var _ = Describe("Request Service", func() {
	var (
		repo      *mockRequestRepository
		guard     *mockEventGuard
		publisher *recordingPublisher
		service   *request.Service
		ctx       context.Context

		requester *auth.User
		manager   *auth.User
		finance   *auth.User
	)

	BeforeEach(func() {
		repo = newMockRequestRepository()
		guard = &mockEventGuard{}
		publisher = &recordingPublisher{}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = request.NewService(repo, guard, publisher, logger)
		ctx = context.Background()

		requester = &auth.User{ID: 1, Name: "Ana Silva", Role: user.RoleRequester}
		manager = &auth.User{ID: 2, Name: "Maria Souza", Role: user.RoleManager}
		finance = &auth.User{ID: 3, Name: "Carlos Dias", Role: user.RoleFinance}
	})

	newInternalDTO := func() *request.CreateRequestDTO {
		return &request.CreateRequestDTO{
			EventID:     10,
			AmountCents: 15075,
			Description: "venue deposit",
			Category:    "venue",
			Recipient:   &request.Recipient{Name: "Eventos Ltda", TaxID: "12.345.678/0001-00"},
			PaymentMethod: &request.PaymentMethod{
				Type: request.PaymentMethodBank,
				Bank: &request.BankDetails{BankName: "Banco Alfa", Agency: "0001", Account: "12345-6"},
			},
		}
	}

	Describe("Create", func() {
		It("creates an internal request in the approval queue and publishes a submitted event", func() {
			req, err := service.Create(ctx, requester, newInternalDTO())
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(request.StatusAwaitingApproval))
			Expect(req.AmountCents).To(Equal(int64(15075)))
			Expect(req.SupplierToken).To(BeNil())
			Expect(publisher.lastType()).To(Equal(events.EventTypeRequestSubmitted))
		})

		It("creates an external request waiting on the supplier with a token and no event", func() {
			dto := &request.CreateRequestDTO{
				EventID:     10,
				AmountCents: 50000,
				Description: "sound system rental",
				IsExternal:  true,
			}

			req, err := service.Create(ctx, requester, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(request.StatusWaitingSupplier))
			Expect(req.SupplierToken).NotTo(BeNil())
			Expect(*req.SupplierToken).NotTo(BeEmpty())
			Expect(publisher.published).To(BeEmpty())
		})

		It("refuses when the cost center does not accept requests from the actor", func() {
			guard.err = internal_errors.ErrEventNotAvailable

			_, err := service.Create(ctx, requester, newInternalDTO())
			Expect(err).To(MatchError(internal_errors.ErrEventNotAvailable))
		})

		It("refuses an internal request without a payment method", func() {
			dto := newInternalDTO()
			dto.PaymentMethod = nil

			_, err := service.Create(ctx, requester, dto)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Approve", func() {
		var reqID int64

		BeforeEach(func() {
			req, err := service.Create(ctx, requester, newInternalDTO())
			Expect(err).NotTo(HaveOccurred())
			reqID = req.ID
			publisher.published = nil
		})

		It("moves the request to pending and records the approver", func() {
			req, err := service.Approve(ctx, manager, reqID)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(request.StatusPending))
			Expect(req.ApproverID).NotTo(BeNil())
			Expect(*req.ApproverID).To(Equal(manager.ID))
			Expect(publisher.lastType()).To(Equal(events.EventTypeRequestApproved))
		})

		It("refuses approval from a requester", func() {
			_, err := service.Approve(ctx, requester, reqID)
			Expect(err).To(MatchError(internal_errors.ErrUnauthorizedAccess))
		})

		It("surfaces a conflict when another transition won the race", func() {
			repo.conflictOnce = true

			_, err := service.Approve(ctx, manager, reqID)
			Expect(err).To(MatchError(internal_errors.ErrTransitionConflict))
			Expect(publisher.published).To(BeEmpty())
		})

		It("refuses a second approval of the same request", func() {
			_, err := service.Approve(ctx, manager, reqID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Approve(ctx, manager, reqID)
			Expect(err).To(MatchError(internal_errors.ErrInvalidTransition))
		})
	})

	Describe("Reject", func() {
		var reqID int64

		BeforeEach(func() {
			req, err := service.Create(ctx, requester, newInternalDTO())
			Expect(err).NotTo(HaveOccurred())
			reqID = req.ID
			publisher.published = nil
		})

		It("requires a non-empty reason", func() {
			_, err := service.Reject(ctx, manager, reqID, &request.RejectRequestDTO{Reason: "  "})
			Expect(err).To(HaveOccurred())
			Expect(publisher.published).To(BeEmpty())
		})

		It("records reason and rejecting role for a manager rejection", func() {
			req, err := service.Reject(ctx, manager, reqID, &request.RejectRequestDTO{Reason: "over budget"})
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(request.StatusRejected))
			Expect(req.ReasonForRejection).To(HaveValue(Equal("over budget")))
			Expect(req.RejectedByRole).To(HaveValue(Equal(user.RoleManager)))
		})

		It("records the finance role when finance rejects a pending request", func() {
			_, err := service.Approve(ctx, manager, reqID)
			Expect(err).NotTo(HaveOccurred())

			req, err := service.Reject(ctx, finance, reqID, &request.RejectRequestDTO{Reason: "invoice mismatch"})
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(request.StatusRejected))
			Expect(req.ReasonForRejection).To(HaveValue(Equal("invoice mismatch")))
			Expect(req.RejectedByRole).To(HaveValue(Equal(user.RoleFinance)))
			Expect(publisher.lastType()).To(Equal(events.EventTypeRequestRejected))
		})
	})

	Describe("MarkPaid", func() {
		var reqID int64

		BeforeEach(func() {
			req, err := service.Create(ctx, requester, newInternalDTO())
			Expect(err).NotTo(HaveOccurred())
			reqID = req.ID
			_, err = service.Approve(ctx, manager, reqID)
			Expect(err).NotTo(HaveOccurred())
			publisher.published = nil
		})

		It("requires a proof of payment reference", func() {
			_, err := service.MarkPaid(ctx, finance, reqID, &request.MarkPaidDTO{})
			Expect(err).To(HaveOccurred())
		})

		It("settles the request and publishes a paid event", func() {
			req, err := service.MarkPaid(ctx, finance, reqID, &request.MarkPaidDTO{ProofOfPayment: "transfer-receipt-991"})
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(request.StatusPaid))
			Expect(req.ProofOfPayment).To(HaveValue(Equal("transfer-receipt-991")))
			Expect(req.PaidAt).NotTo(BeNil())
			Expect(publisher.lastType()).To(Equal(events.EventTypeRequestPaid))
		})

		It("refuses payment from a manager", func() {
			_, err := service.MarkPaid(ctx, manager, reqID, &request.MarkPaidDTO{ProofOfPayment: "x"})
			Expect(err).To(MatchError(internal_errors.ErrUnauthorizedAccess))
		})
	})

	Describe("Supplier flow", func() {
		var token string
		var reqID int64

		BeforeEach(func() {
			dto := &request.CreateRequestDTO{
				EventID:     10,
				AmountCents: 80000,
				Description: "stage lighting",
				IsExternal:  true,
			}
			req, err := service.Create(ctx, requester, dto)
			Expect(err).NotTo(HaveOccurred())
			token = *req.SupplierToken
			reqID = req.ID
		})

		fill := func() *request.SupplierFillDTO {
			key := "luz@fornecedor.com"
			return &request.SupplierFillDTO{
				Recipient:     request.Recipient{Name: "Luz e Som ME", TaxID: "98.765.432/0001-00"},
				PaymentMethod: &request.PaymentMethod{Type: request.PaymentMethodPix, PixKey: &key},
			}
		}

		It("accepts supplier data and hands the request back to the requester", func() {
			req, err := service.SupplierSubmit(ctx, token, fill())
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(request.StatusWaitingRequesterApproval))
		})

		It("rejects an unknown token", func() {
			_, err := service.SupplierSubmit(ctx, "not-a-token", fill())
			Expect(err).To(MatchError(internal_errors.ErrRequestNotFound))
		})

		It("hides the request from the token once data was submitted", func() {
			_, err := service.SupplierSubmit(ctx, token, fill())
			Expect(err).NotTo(HaveOccurred())

			_, err = service.GetBySupplierToken(token)
			Expect(err).To(MatchError(internal_errors.ErrRequestNotFound))
		})

		It("lets only the owner confirm the data", func() {
			_, err := service.SupplierSubmit(ctx, token, fill())
			Expect(err).NotTo(HaveOccurred())

			other := &auth.User{ID: 99, Role: user.RoleRequester}
			_, err = service.ConfirmData(ctx, other, reqID)
			Expect(err).To(MatchError(internal_errors.ErrUnauthorizedAccess))

			req, err := service.ConfirmData(ctx, requester, reqID)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(request.StatusAwaitingApproval))
		})

		It("lets the owner discard the data with a reason", func() {
			_, err := service.SupplierSubmit(ctx, token, fill())
			Expect(err).NotTo(HaveOccurred())

			req, err := service.RejectData(ctx, requester, reqID, &request.RejectRequestDTO{Reason: "wrong supplier"})
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(request.StatusRejected))
			Expect(req.RejectedByRole).To(HaveValue(Equal(user.RoleRequester)))
		})
	})

	Describe("Visibility", func() {
		It("hides other users' requests from a requester", func() {
			req, err := service.Create(ctx, requester, newInternalDTO())
			Expect(err).NotTo(HaveOccurred())

			other := &auth.User{ID: 42, Role: user.RoleRequester}
			_, err = service.GetByID(other, req.ID)
			Expect(err).To(MatchError(internal_errors.ErrUnauthorizedAccess))

			seen, err := service.GetByID(requester, req.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(seen.ID).To(Equal(req.ID))
		})

		It("shows managers requests awaiting approval but hides them from finance", func() {
			req, err := service.Create(ctx, requester, newInternalDTO())
			Expect(err).NotTo(HaveOccurred())

			_, err = service.GetByID(manager, req.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.GetByID(finance, req.ID)
			Expect(err).To(MatchError(internal_errors.ErrUnauthorizedAccess))
		})

		It("shows finance the request once it is pending", func() {
			req, err := service.Create(ctx, requester, newInternalDTO())
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Approve(ctx, manager, req.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.GetByID(finance, req.ID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects an unknown status filter", func() {
			_, err := service.List(requester, request.ListFilter{Status: "bogus"})
			Expect(err).To(HaveOccurred())
		})
	})
})
