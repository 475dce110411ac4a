package event

import (
	"strings"

	internal_errors "github.com/payflowhq/payflow/internal"
)

type CreateEventDTO struct {
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	BudgetCents   *int64   `json:"budget_cents,omitempty"`
	Subcategories []string `json:"subcategories,omitempty"`
	MemberIDs     []int64  `json:"member_ids"`
}

func (d *CreateEventDTO) Validate() error {
	var validationErrors []internal_errors.ValidationError

	if strings.TrimSpace(d.Name) == "" {
		validationErrors = append(validationErrors, internal_errors.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}

	if d.Type == "" {
		d.Type = TypeEvent
	}
	if d.Type != TypeEvent && d.Type != TypeCompany {
		validationErrors = append(validationErrors, internal_errors.ValidationError{
			Field:   "type",
			Message: "type must be event or company",
		})
	}

	if d.BudgetCents != nil && *d.BudgetCents < 0 {
		validationErrors = append(validationErrors, internal_errors.ValidationError{
			Field:   "budget_cents",
			Message: "budget cannot be negative",
		})
	}

	if len(validationErrors) > 0 {
		return internal_errors.NewValidationErrors(validationErrors)
	}
	return nil
}

type UpdateEventDTO struct {
	Name          *string   `json:"name,omitempty"`
	Status        *string   `json:"status,omitempty"`
	BudgetCents   *int64    `json:"budget_cents,omitempty"`
	Subcategories *[]string `json:"subcategories,omitempty"`
	MemberIDs     *[]int64  `json:"member_ids,omitempty"`
}

func (d *UpdateEventDTO) Validate() error {
	var validationErrors []internal_errors.ValidationError

	if d.Name != nil && strings.TrimSpace(*d.Name) == "" {
		validationErrors = append(validationErrors, internal_errors.ValidationError{
			Field:   "name",
			Message: "name cannot be empty",
		})
	}

	if d.Status != nil && *d.Status != StatusActive && *d.Status != StatusInactive {
		validationErrors = append(validationErrors, internal_errors.ValidationError{
			Field:   "status",
			Message: "status must be active or inactive",
		})
	}

	if d.BudgetCents != nil && *d.BudgetCents < 0 {
		validationErrors = append(validationErrors, internal_errors.ValidationError{
			Field:   "budget_cents",
			Message: "budget cannot be negative",
		})
	}

	if len(validationErrors) > 0 {
		return internal_errors.NewValidationErrors(validationErrors)
	}
	return nil
}
