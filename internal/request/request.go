package request

import (
	"strings"
	"time"

	internal_errors "github.com/payflowhq/payflow/internal"
	requestDatamodel "github.com/payflowhq/payflow/internal/core/datamodel/request"
)

const (
	StatusWaitingSupplier          = "waiting_supplier"
	StatusWaitingRequesterApproval = "waiting_requester_approval"
	StatusAwaitingApproval         = "awaiting_approval"
	StatusPending                  = "pending"
	StatusPaid                     = "paid"
	StatusRejected                 = "rejected"
)

const (
	PaymentMethodBank = "bank"
	PaymentMethodPix  = "pix"
)

type BankDetails struct {
	BankName string `json:"bank_name"`
	Agency   string `json:"agency"`
	Account  string `json:"account"`
}

// PaymentMethod is a tagged union: exactly one of Bank or PixKey is set,
// selected by Type.
type PaymentMethod struct {
	Type    string       `json:"type"`
	Bank    *BankDetails `json:"bank,omitempty"`
	PixKey  *string      `json:"pix_key,omitempty"`
}

func (m *PaymentMethod) Validate() error {
	switch m.Type {
	case PaymentMethodBank:
		if m.PixKey != nil {
			return internal_errors.NewValidationError("bank payment method cannot carry a pix key", internal_errors.ErrCodeMissingPayMethod)
		}
		if m.Bank == nil || strings.TrimSpace(m.Bank.BankName) == "" ||
			strings.TrimSpace(m.Bank.Agency) == "" || strings.TrimSpace(m.Bank.Account) == "" {
			return internal_errors.NewValidationError("bank payment method requires bank name, agency and account", internal_errors.ErrCodeMissingPayMethod)
		}
	case PaymentMethodPix:
		if m.Bank != nil {
			return internal_errors.NewValidationError("pix payment method cannot carry bank details", internal_errors.ErrCodeMissingPayMethod)
		}
		if m.PixKey == nil || strings.TrimSpace(*m.PixKey) == "" {
			return internal_errors.NewValidationError("pix payment method requires a key", internal_errors.ErrCodeMissingPayMethod)
		}
	default:
		return internal_errors.NewValidationError("payment method must be bank or pix", internal_errors.ErrCodeMissingPayMethod)
	}
	return nil
}

type Recipient struct {
	Name  string `json:"name"`
	TaxID string `json:"tax_id"`
	RG    string `json:"rg,omitempty"`
	Email string `json:"email,omitempty"`
}

type Invoice struct {
	URL      string `json:"url"`
	FileName string `json:"file_name"`
}

type Request struct {
	ID          int64  `json:"id"`
	RequesterID int64  `json:"requester_id"`
	EventID     int64  `json:"event_id"`
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`

	Recipient     Recipient      `json:"recipient"`
	PaymentMethod *PaymentMethod `json:"payment_method,omitempty"`

	Status  string `json:"status"`
	Version int64  `json:"version"`

	IsExternal    bool     `json:"is_external"`
	SupplierToken *string  `json:"-"`
	Invoice       *Invoice `json:"invoice,omitempty"`

	ApproverID         *int64     `json:"approver_id,omitempty"`
	ApprovedAt         *time.Time `json:"approved_at,omitempty"`
	PaidAt             *time.Time `json:"paid_at,omitempty"`
	ProofOfPayment     *string    `json:"proof_of_payment,omitempty"`
	ReasonForRejection *string    `json:"reason_for_rejection,omitempty"`
	RejectedByRole     *string    `json:"rejected_by_role,omitempty"`

	RequesterName string `json:"requester_name,omitempty"`
	EventName     string `json:"event_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTerminal reports whether the request has reached read-only history.
func (r *Request) IsTerminal() bool {
	return r.Status == StatusPaid || r.Status == StatusRejected
}

func (r *Request) IsOwnedBy(userID int64) bool {
	return r.RequesterID == userID
}

func ToDataModel(r *Request) *requestDatamodel.PaymentRequest {
	dm := &requestDatamodel.PaymentRequest{
		ID:          r.ID,
		RequesterID: r.RequesterID,
		EventID:     r.EventID,
		AmountCents: r.AmountCents,
		Description: r.Description,
		Category:    r.Category,

		RecipientName:  r.Recipient.Name,
		RecipientTaxID: r.Recipient.TaxID,
		RecipientRG:    r.Recipient.RG,
		RecipientEmail: r.Recipient.Email,

		Status:  r.Status,
		Version: r.Version,

		IsExternal:    r.IsExternal,
		SupplierToken: r.SupplierToken,

		ApproverID:         r.ApproverID,
		ApprovedAt:         r.ApprovedAt,
		PaidAt:             r.PaidAt,
		ProofOfPayment:     r.ProofOfPayment,
		ReasonForRejection: r.ReasonForRejection,
		RejectedByRole:     r.RejectedByRole,

		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}

	if r.PaymentMethod != nil {
		dm.PaymentMethod = r.PaymentMethod.Type
		switch r.PaymentMethod.Type {
		case PaymentMethodBank:
			if r.PaymentMethod.Bank != nil {
				dm.BankName = r.PaymentMethod.Bank.BankName
				dm.BankAgency = r.PaymentMethod.Bank.Agency
				dm.BankAccount = r.PaymentMethod.Bank.Account
			}
		case PaymentMethodPix:
			if r.PaymentMethod.PixKey != nil {
				dm.PixKey = *r.PaymentMethod.PixKey
			}
		}
	}

	if r.Invoice != nil {
		dm.InvoiceURL = &r.Invoice.URL
		dm.InvoiceFileName = &r.Invoice.FileName
	}

	return dm
}

func FromDataModel(dm *requestDatamodel.PaymentRequest) *Request {
	r := &Request{
		ID:          dm.ID,
		RequesterID: dm.RequesterID,
		EventID:     dm.EventID,
		AmountCents: dm.AmountCents,
		Description: dm.Description,
		Category:    dm.Category,

		Recipient: Recipient{
			Name:  dm.RecipientName,
			TaxID: dm.RecipientTaxID,
			RG:    dm.RecipientRG,
			Email: dm.RecipientEmail,
		},

		Status:  dm.Status,
		Version: dm.Version,

		IsExternal:    dm.IsExternal,
		SupplierToken: dm.SupplierToken,

		ApproverID:         dm.ApproverID,
		ApprovedAt:         dm.ApprovedAt,
		PaidAt:             dm.PaidAt,
		ProofOfPayment:     dm.ProofOfPayment,
		ReasonForRejection: dm.ReasonForRejection,
		RejectedByRole:     dm.RejectedByRole,

		CreatedAt: dm.CreatedAt,
		UpdatedAt: dm.UpdatedAt,
	}

	switch dm.PaymentMethod {
	case PaymentMethodBank:
		r.PaymentMethod = &PaymentMethod{
			Type: PaymentMethodBank,
			Bank: &BankDetails{
				BankName: dm.BankName,
				Agency:   dm.BankAgency,
				Account:  dm.BankAccount,
			},
		}
	case PaymentMethodPix:
		key := dm.PixKey
		r.PaymentMethod = &PaymentMethod{
			Type:   PaymentMethodPix,
			PixKey: &key,
		}
	}

	if dm.InvoiceURL != nil {
		inv := &Invoice{URL: *dm.InvoiceURL}
		if dm.InvoiceFileName != nil {
			inv.FileName = *dm.InvoiceFileName
		}
		r.Invoice = inv
	}

	return r
}
