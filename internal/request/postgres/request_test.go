package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	internal_errors "github.com/payflowhq/payflow/internal"
	"github.com/payflowhq/payflow/internal/request"
)

func TestRequestRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "RequestRepository Suite")
}

type SQLiteUser struct {
	ID           int64  `gorm:"primaryKey"`
	Name         string `gorm:"column:name"`
	Email        string `gorm:"column:email"`
	Role         string `gorm:"column:role"`
	PasswordHash string `gorm:"column:password_hash"`
	IsActive     bool   `gorm:"column:is_active"`
}

func (SQLiteUser) TableName() string { return "users" }

type SQLiteEvent struct {
	ID     int64  `gorm:"primaryKey"`
	Name   string `gorm:"column:name"`
	Status string `gorm:"column:status"`
	Type   string `gorm:"column:type"`
}

func (SQLiteEvent) TableName() string { return "events" }

type SQLitePaymentRequest struct {
	ID                 int64      `gorm:"primaryKey"`
	RequesterID        int64      `gorm:"column:requester_id"`
	EventID            int64      `gorm:"column:event_id"`
	AmountCents        int64      `gorm:"column:amount_cents"`
	Description        string     `gorm:"column:description"`
	Category           string     `gorm:"column:category"`
	RecipientName      string     `gorm:"column:recipient_name"`
	RecipientTaxID     string     `gorm:"column:recipient_tax_id"`
	RecipientRG        string     `gorm:"column:recipient_rg"`
	RecipientEmail     string     `gorm:"column:recipient_email"`
	PaymentMethod      string     `gorm:"column:payment_method"`
	BankName           string     `gorm:"column:bank_name"`
	BankAgency         string     `gorm:"column:bank_agency"`
	BankAccount        string     `gorm:"column:bank_account"`
	PixKey             string     `gorm:"column:pix_key"`
	Status             string     `gorm:"column:status"`
	Version            int64      `gorm:"column:version;default:0"`
	IsExternal         bool       `gorm:"column:is_external"`
	SupplierToken      *string    `gorm:"column:supplier_token"`
	InvoiceURL         *string    `gorm:"column:invoice_url"`
	InvoiceFileName    *string    `gorm:"column:invoice_filename"`
	ApproverID         *int64     `gorm:"column:approver_id"`
	ApprovedAt         *time.Time `gorm:"column:approved_at"`
	PaidAt             *time.Time `gorm:"column:paid_at"`
	ProofOfPayment     *string    `gorm:"column:proof_of_payment"`
	ReasonForRejection *string    `gorm:"column:reason_for_rejection"`
	RejectedByRole     *string    `gorm:"column:rejected_by_role"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
}

func (SQLitePaymentRequest) TableName() string { return "payment_requests" }

var _ = Describe("RequestRepository", func() {
	var (
		db   *gorm.DB
		repo *RequestRepository
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteUser{}, &SQLiteEvent{}, &SQLitePaymentRequest{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewRequestRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	newRequest := func(requesterID int64, status string) *request.Request {
		return &request.Request{
			RequesterID: requesterID,
			EventID:     1,
			AmountCents: 15075,
			Description: "venue deposit",
			Category:    "venue",
			Recipient:   request.Recipient{Name: "Eventos Ltda", TaxID: "12.345.678/0001-00"},
			PaymentMethod: &request.PaymentMethod{
				Type: request.PaymentMethodBank,
				Bank: &request.BankDetails{BankName: "Banco Alfa", Agency: "0001", Account: "12345-6"},
			},
			Status: status,
		}
	}

	Describe("Create and GetByID", func() {
		It("round-trips a request with its payment method", func() {
			req := newRequest(1, request.StatusAwaitingApproval)
			Expect(repo.Create(req)).To(Succeed())
			Expect(req.ID).NotTo(BeZero())

			got, err := repo.GetByID(req.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.AmountCents).To(Equal(int64(15075)))
			Expect(got.Description).To(Equal("venue deposit"))
			Expect(got.Recipient.Name).To(Equal("Eventos Ltda"))
			Expect(got.PaymentMethod).NotTo(BeNil())
			Expect(got.PaymentMethod.Type).To(Equal(request.PaymentMethodBank))
			Expect(got.PaymentMethod.Bank.Account).To(Equal("12345-6"))
			Expect(got.Status).To(Equal(request.StatusAwaitingApproval))
			Expect(got.Version).To(BeZero())
		})

		It("returns not found for a missing id", func() {
			_, err := repo.GetByID(12345)
			Expect(err).To(MatchError(internal_errors.ErrRequestNotFound))
		})
	})

	Describe("GetBySupplierToken", func() {
		It("finds a request by its token", func() {
			token := "tok-abc"
			req := newRequest(1, request.StatusWaitingSupplier)
			req.SupplierToken = &token
			Expect(repo.Create(req)).To(Succeed())

			got, err := repo.GetBySupplierToken(token)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(req.ID))
		})

		It("returns not found for an unknown token", func() {
			_, err := repo.GetBySupplierToken("nope")
			Expect(err).To(MatchError(internal_errors.ErrRequestNotFound))
		})
	})

	Describe("ApplyTransition", func() {
		It("applies the update and bumps the version when status and version match", func() {
			req := newRequest(1, request.StatusAwaitingApproval)
			Expect(repo.Create(req)).To(Succeed())

			err := repo.ApplyTransition(req.ID, request.StatusAwaitingApproval, 0, request.StatusPending, map[string]interface{}{
				"approver_id": int64(2),
			})
			Expect(err).NotTo(HaveOccurred())

			got, err := repo.GetByID(req.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(request.StatusPending))
			Expect(got.Version).To(Equal(int64(1)))
			Expect(got.ApproverID).To(HaveValue(Equal(int64(2))))
		})

		It("reports a conflict when the version is stale", func() {
			req := newRequest(1, request.StatusAwaitingApproval)
			Expect(repo.Create(req)).To(Succeed())

			err := repo.ApplyTransition(req.ID, request.StatusAwaitingApproval, 0, request.StatusPending, nil)
			Expect(err).NotTo(HaveOccurred())

			// A second caller still holding version 0 loses the race
			err = repo.ApplyTransition(req.ID, request.StatusAwaitingApproval, 0, request.StatusRejected, nil)
			Expect(err).To(MatchError(internal_errors.ErrTransitionConflict))

			got, err := repo.GetByID(req.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(request.StatusPending))
		})

		It("reports a conflict when the status changed underneath", func() {
			req := newRequest(1, request.StatusPending)
			Expect(repo.Create(req)).To(Succeed())

			err := repo.ApplyTransition(req.ID, request.StatusAwaitingApproval, 0, request.StatusPending, nil)
			Expect(err).To(MatchError(internal_errors.ErrTransitionConflict))
		})

		It("reports not found for a missing request", func() {
			err := repo.ApplyTransition(999, request.StatusPending, 0, request.StatusPaid, nil)
			Expect(err).To(MatchError(internal_errors.ErrRequestNotFound))
		})
	})

	Describe("Listing", func() {
		BeforeEach(func() {
			a := newRequest(1, request.StatusAwaitingApproval)
			Expect(repo.Create(a)).To(Succeed())

			b := newRequest(1, request.StatusPaid)
			b.AmountCents = 20000
			Expect(repo.Create(b)).To(Succeed())

			c := newRequest(2, request.StatusAwaitingApproval)
			Expect(repo.Create(c)).To(Succeed())

			d := newRequest(2, request.StatusPending)
			Expect(repo.Create(d)).To(Succeed())
		})

		It("limits requesters to their own requests", func() {
			requests, err := repo.ListForRequester(1, request.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(requests).To(HaveLen(2))
			for _, r := range requests {
				Expect(r.RequesterID).To(Equal(int64(1)))
			}
		})

		It("shows managers their own plus the whole approval queue", func() {
			requests, err := repo.ListForManager(1, request.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(requests).To(HaveLen(3))
		})

		It("hides the approval queue from finance", func() {
			requests, err := repo.ListForFinance(request.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(requests).To(HaveLen(2))
			for _, r := range requests {
				Expect(r.Status).NotTo(Equal(request.StatusAwaitingApproval))
			}
		})

		It("applies the status filter", func() {
			requests, err := repo.ListForFinance(request.ListFilter{Status: request.StatusPaid})
			Expect(err).NotTo(HaveOccurred())
			Expect(requests).To(HaveLen(1))
			Expect(requests[0].AmountCents).To(Equal(int64(20000)))
		})

		It("rejects a malformed month filter", func() {
			_, err := repo.ListForRequester(1, request.ListFilter{Month: "01-2026"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("SpentByEvent", func() {
		It("sums only paid requests per event", func() {
			paid1 := newRequest(1, request.StatusPaid)
			paid1.AmountCents = 10000
			Expect(repo.Create(paid1)).To(Succeed())

			paid2 := newRequest(1, request.StatusPaid)
			paid2.AmountCents = 5075
			Expect(repo.Create(paid2)).To(Succeed())

			pending := newRequest(1, request.StatusPending)
			pending.AmountCents = 99999
			Expect(repo.Create(pending)).To(Succeed())

			otherEvent := newRequest(2, request.StatusPaid)
			otherEvent.EventID = 2
			otherEvent.AmountCents = 777
			Expect(repo.Create(otherEvent)).To(Succeed())

			spent, err := repo.SpentByEvent()
			Expect(err).NotTo(HaveOccurred())
			Expect(spent[1]).To(Equal(int64(15075)))
			Expect(spent[2]).To(Equal(int64(777)))
		})
	})

	Describe("ListPaidCreatedBetween", func() {
		BeforeEach(func() {
			Expect(db.Create(&SQLiteUser{ID: 1, Name: "Ana Silva"}).Error).To(Succeed())
			Expect(db.Create(&SQLiteEvent{ID: 1, Name: "Tech Conference 2026"}).Error).To(Succeed())
		})

		createPaidAt := func(created time.Time) {
			req := newRequest(1, request.StatusPaid)
			Expect(repo.Create(req)).To(Succeed())
			Expect(db.Model(&SQLitePaymentRequest{}).
				Where("id = ?", req.ID).
				Updates(map[string]interface{}{"created_at": created, "paid_at": created.AddDate(0, 0, 2)}).Error).To(Succeed())
		}

		It("includes only paid requests created in the range, end day inclusive", func() {
			createPaidAt(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
			createPaidAt(time.Date(2026, 3, 15, 23, 30, 0, 0, time.UTC))
			createPaidAt(time.Date(2026, 4, 1, 0, 30, 0, 0, time.UTC))

			pendingReq := newRequest(1, request.StatusPending)
			Expect(repo.Create(pendingReq)).To(Succeed())

			start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
			end := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

			requests, err := repo.ListPaidCreatedBetween(start, end)
			Expect(err).NotTo(HaveOccurred())
			Expect(requests).To(HaveLen(2))
			Expect(requests[0].RequesterName).To(Equal("Ana Silva"))
			Expect(requests[0].EventName).To(Equal("Tech Conference 2026"))
		})
	})
})
