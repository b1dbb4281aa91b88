package dto

import (
	"time"

	"github.com/townhall/civic-service/internal/domain"
)

// BillingAddressRequest is the structured address evidence accepted on
// signup and relocation.
type BillingAddressRequest struct {
	Street string `json:"street" validate:"required"`
	Unit   string `json:"unit"`
	City   string `json:"city" validate:"required"`
	State  string `json:"state" validate:"required"`
	Zip    string `json:"zip" validate:"required"`
}

// Domain converts to the domain value object.
func (r BillingAddressRequest) Domain() domain.BillingAddress {
	return domain.BillingAddress{Street: r.Street, Unit: r.Unit, City: r.City, State: r.State, Zip: r.Zip}
}

// RegisterRequest carries the fields shared by all signup flows.
type RegisterRequest struct {
	Email          string                `json:"email" validate:"required,email"`
	Password       string                `json:"password" validate:"required,min=8"`
	FirstName      string                `json:"first_name" validate:"required"`
	LastName       string                `json:"last_name" validate:"required"`
	Phone          string                `json:"phone"`
	TownID         string                `json:"town_id" validate:"required,uuid"`
	BillingAddress BillingAddressRequest `json:"billing_address" validate:"required"`
}

// CitizenRegisterRequest payload for citizen signup.
type CitizenRegisterRequest struct {
	RegisterRequest
	CitizenID   string     `json:"citizen_id" validate:"required"`
	Address     string     `json:"address" validate:"required"`
	DateOfBirth *time.Time `json:"date_of_birth"`
}

// BusinessRegisterRequest payload for business-owner signup.
type BusinessRegisterRequest struct {
	RegisterRequest
	BusinessName       string `json:"business_name" validate:"required"`
	RegistrationNumber string `json:"registration_number" validate:"required"`
	BusinessType       string `json:"business_type" validate:"required"`
	BusinessAddress    string `json:"business_address" validate:"required"`
	Website            string `json:"website"`
}

// OfficialRegisterRequest payload for government-official signup.
type OfficialRegisterRequest struct {
	RegisterRequest
	EmployeeID    string `json:"employee_id" validate:"required"`
	Department    string `json:"department" validate:"required"`
	Position      string `json:"position" validate:"required"`
	OfficeAddress string `json:"office_address"`
}

// LoginRequest payload for the role-typed login endpoints.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PrincipalResponse is the public view of an account.
type PrincipalResponse struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Phone      string     `json:"phone,omitempty"`
	Role       string     `json:"role"`
	IsApproved bool       `json:"is_approved"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	TownID     *string    `json:"town_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewPrincipalResponse maps a domain principal.
func NewPrincipalResponse(p *domain.Principal) PrincipalResponse {
	return PrincipalResponse{
		ID:         p.ID,
		Email:      p.Email,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Phone:      p.Phone,
		Role:       string(p.Role),
		IsApproved: p.IsApproved,
		ApprovedAt: p.ApprovedAt,
		TownID:     p.TownID,
		CreatedAt:  p.CreatedAt,
	}
}
