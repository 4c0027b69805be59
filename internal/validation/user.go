package validation

import (
	"strings"

	"github.com/spec-kit/course-service/internal/domain"
)

// RegisterInput is the inbound registration payload.
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=teacher student"`
	Age      int    `json:"age" validate:"required,gte=13,lte=100"`
}

// NormalizedRegistration is the validated registration payload.
type NormalizedRegistration struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
	Age      int
}

var userValidate = newValidate()

// ValidateRegistration normalizes and validates a registration payload.
// Email is lowercased and trimmed before validation so uniqueness is
// case-insensitive.
func ValidateRegistration(input RegisterInput) (*NormalizedRegistration, ValidationErrors) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if errs := toValidationErrors("RegisterInput", userValidate.Struct(input)); len(errs) > 0 {
		return nil, errs
	}

	role, _ := domain.ParseRole(input.Role)
	return &NormalizedRegistration{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Role:     role,
		Age:      input.Age,
	}, nil
}

// NormalizeLoginEmail applies the same email normalization used at
// registration so lookups match stored rows.
func NormalizeLoginEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
