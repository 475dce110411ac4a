package request

import "time"

type PaymentRequest struct {
	ID          int64  `gorm:"primaryKey"`
	RequesterID int64  `gorm:"column:requester_id;not null;index"`
	EventID     int64  `gorm:"column:event_id;not null;index"`
	AmountCents int64  `gorm:"column:amount_cents;not null"`
	Description string `gorm:"column:description;not null"`
	Category    string `gorm:"column:category"`

	RecipientName  string `gorm:"column:recipient_name"`
	RecipientTaxID string `gorm:"column:recipient_tax_id"`
	RecipientRG    string `gorm:"column:recipient_rg"`
	RecipientEmail string `gorm:"column:recipient_email"`

	PaymentMethod string `gorm:"column:payment_method"`
	BankName      string `gorm:"column:bank_name"`
	BankAgency    string `gorm:"column:bank_agency"`
	BankAccount   string `gorm:"column:bank_account"`
	PixKey        string `gorm:"column:pix_key"`

	Status  string `gorm:"column:status;not null;default:awaiting_approval;index"`
	Version int64  `gorm:"column:version;not null;default:0"`

	IsExternal      bool    `gorm:"column:is_external;default:false"`
	SupplierToken   *string `gorm:"column:supplier_token;uniqueIndex"`
	InvoiceURL      *string `gorm:"column:invoice_url"`
	InvoiceFileName *string `gorm:"column:invoice_filename"`

	ApproverID         *int64     `gorm:"column:approver_id"`
	ApprovedAt         *time.Time `gorm:"column:approved_at"`
	PaidAt             *time.Time `gorm:"column:paid_at"`
	ProofOfPayment     *string    `gorm:"column:proof_of_payment"`
	ReasonForRejection *string    `gorm:"column:reason_for_rejection"`
	RejectedByRole     *string    `gorm:"column:rejected_by_role"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (PaymentRequest) TableName() string {
	return "payment_requests"
}
