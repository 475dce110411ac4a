package user

import (
	"strings"

	internal_errors "github.com/payflowhq/payflow/internal"
	userDatamodel "github.com/payflowhq/payflow/internal/core/datamodel/user"
)

type CreateUserDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (d *CreateUserDTO) Validate() error {
	var validationErrors []internal_errors.ValidationError

	if strings.TrimSpace(d.Name) == "" {
		validationErrors = append(validationErrors, internal_errors.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}

	if strings.TrimSpace(d.Email) == "" || !strings.Contains(d.Email, "@") {
		validationErrors = append(validationErrors, internal_errors.ValidationError{
			Field:   "email",
			Message: "a valid email is required",
		})
	}

	if len(d.Password) < 6 {
		validationErrors = append(validationErrors, internal_errors.ValidationError{
			Field:   "password",
			Message: "password must be at least 6 characters",
		})
	}

	if d.Role == "" {
		d.Role = userDatamodel.RoleRequester
	}
	switch d.Role {
	case userDatamodel.RoleRequester, userDatamodel.RoleManager, userDatamodel.RoleFinance:
	default:
		validationErrors = append(validationErrors, internal_errors.ValidationError{
			Field:   "role",
			Message: "role must be one of: requester, manager, finance",
		})
	}

	if len(validationErrors) > 0 {
		return internal_errors.NewValidationErrors(validationErrors)
	}
	return nil
}

type UpdateUserDTO struct {
	Name     *string `json:"name,omitempty"`
	Role     *string `json:"role,omitempty"`
	Password *string `json:"password,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func (d *UpdateUserDTO) Validate() error {
	var validationErrors []internal_errors.ValidationError

	if d.Name != nil && strings.TrimSpace(*d.Name) == "" {
		validationErrors = append(validationErrors, internal_errors.ValidationError{
			Field:   "name",
			Message: "name cannot be empty",
		})
	}

	if d.Role != nil {
		switch *d.Role {
		case userDatamodel.RoleRequester, userDatamodel.RoleManager, userDatamodel.RoleFinance:
		default:
			validationErrors = append(validationErrors, internal_errors.ValidationError{
				Field:   "role",
				Message: "role must be one of: requester, manager, finance",
			})
		}
	}

	if d.Password != nil && len(*d.Password) < 6 {
		validationErrors = append(validationErrors, internal_errors.ValidationError{
			Field:   "password",
			Message: "password must be at least 6 characters",
		})
	}

	if len(validationErrors) > 0 {
		return internal_errors.NewValidationErrors(validationErrors)
	}
	return nil
}
