package request

import (
	"strings"

	internal_errors "github.com/payflowhq/payflow/internal"
)

type CreateRequestDTO struct {
	EventID     int64  `json:"event_id"`
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`

	Recipient     *Recipient     `json:"recipient,omitempty"`
	PaymentMethod *PaymentMethod `json:"payment_method,omitempty"`

	// IsExternal switches to the supplier-link flow: recipient and payment
	// details are collected later through the public link.
	IsExternal bool `json:"is_external"`
}

func (d *CreateRequestDTO) Validate() error {
	var validationErrors []internal_errors.ValidationError

	if d.EventID <= 0 {
		validationErrors = append(validationErrors, internal_errors.ValidationError{
			Field:   "event_id",
			Message: "event_id is required",
		})
	}

	if d.AmountCents <= 0 {
		validationErrors = append(validationErrors, internal_errors.ValidationError{
			Field:   "amount_cents",
			Message: "amount must be greater than zero",
		})
	}

	if strings.TrimSpace(d.Description) == "" {
		validationErrors = append(validationErrors, internal_errors.ValidationError{
			Field:   "description",
			Message: "description is required",
		})
	}

	if !d.IsExternal {
		if d.Recipient == nil || strings.TrimSpace(d.Recipient.Name) == "" {
			validationErrors = append(validationErrors, internal_errors.ValidationError{
				Field:   "recipient.name",
				Message: "recipient name is required",
			})
		}
		if d.Recipient != nil && strings.TrimSpace(d.Recipient.TaxID) == "" {
			validationErrors = append(validationErrors, internal_errors.ValidationError{
				Field:   "recipient.tax_id",
				Message: "recipient tax id is required",
			})
		}
		if d.PaymentMethod == nil {
			validationErrors = append(validationErrors, internal_errors.ValidationError{
				Field:   "payment_method",
				Message: "payment method is required",
			})
		}
	}

	if len(validationErrors) > 0 {
		return internal_errors.NewValidationErrors(validationErrors)
	}

	if !d.IsExternal && d.PaymentMethod != nil {
		if err := d.PaymentMethod.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SupplierFillDTO is what an external supplier submits through the public
// token link.
type SupplierFillDTO struct {
	Recipient     Recipient      `json:"recipient"`
	PaymentMethod *PaymentMethod `json:"payment_method"`
	Invoice       *Invoice       `json:"invoice,omitempty"`
}

func (d *SupplierFillDTO) Validate() error {
	var validationErrors []internal_errors.ValidationError

	if strings.TrimSpace(d.Recipient.Name) == "" {
		validationErrors = append(validationErrors, internal_errors.ValidationError{
			Field:   "recipient.name",
			Message: "recipient name is required",
		})
	}
	if strings.TrimSpace(d.Recipient.TaxID) == "" {
		validationErrors = append(validationErrors, internal_errors.ValidationError{
			Field:   "recipient.tax_id",
			Message: "recipient tax id is required",
		})
	}
	if d.PaymentMethod == nil {
		validationErrors = append(validationErrors, internal_errors.ValidationError{
			Field:   "payment_method",
			Message: "payment method is required",
		})
	}

	if len(validationErrors) > 0 {
		return internal_errors.NewValidationErrors(validationErrors)
	}

	return d.PaymentMethod.Validate()
}

type RejectRequestDTO struct {
	Reason string `json:"reason"`
}

func (d *RejectRequestDTO) Validate() error {
	if strings.TrimSpace(d.Reason) == "" {
		return internal_errors.NewValidationError("rejection requires a non-empty reason", internal_errors.ErrCodeMissingReason)
	}
	return nil
}

type MarkPaidDTO struct {
	ProofOfPayment string `json:"proof_of_payment"`
}

func (d *MarkPaidDTO) Validate() error {
	if strings.TrimSpace(d.ProofOfPayment) == "" {
		return internal_errors.NewValidationError("marking paid requires a proof of payment reference", internal_errors.ErrCodeMissingProof)
	}
	return nil
}

// ListFilter narrows a request listing. Month is "YYYY-MM"; empty fields
// are ignored.
type ListFilter struct {
	Status string
	Month  string
}
