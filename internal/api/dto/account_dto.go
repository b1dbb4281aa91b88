package dto

import (
	"time"

	"github.com/townhall/civic-service/internal/domain"
	"github.com/townhall/civic-service/internal/service"
)

// RejectRequest carries the optional rejection reason.
type RejectRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// ProfileUpdateRequest is the self-service profile patch.
type ProfileUpdateRequest struct {
	FirstName       *string                `json:"first_name"`
	LastName        *string                `json:"last_name"`
	Phone           *string                `json:"phone"`
	Address         *string                `json:"address"`
	BillingAddress  *BillingAddressRequest `json:"billing_address"`
	BusinessName    *string                `json:"business_name"`
	BusinessType    *string                `json:"business_type"`
	BusinessAddress *string                `json:"business_address"`
	Website         *string                `json:"website"`
}

// Input converts to the service-layer patch.
func (r ProfileUpdateRequest) Input() service.ProfileUpdateInput {
	input := service.ProfileUpdateInput{
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Phone:           r.Phone,
		Address:         r.Address,
		BusinessName:    r.BusinessName,
		BusinessType:    r.BusinessType,
		BusinessAddress: r.BusinessAddress,
		Website:         r.Website,
	}
	if r.BillingAddress != nil {
		addr := r.BillingAddress.Domain()
		input.BillingAddress = &addr
	}
	return input
}

// OfficialFlagsRequest sets an official's permission flags.
type OfficialFlagsRequest struct {
	CanViewUsers    bool `json:"can_view_users"`
	CanApproveUsers bool `json:"can_approve_users"`
}

// CredentialResponse returns an issued API credential.
type CredentialResponse struct {
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
}

// OfficialResponse is the public view of an official record.
type OfficialResponse struct {
	ID              string `json:"id"`
	PrincipalID     string `json:"principal_id"`
	EmployeeID      string `json:"employee_id"`
	Department      string `json:"department"`
	Position        string `json:"position"`
	OfficeAddress   string `json:"office_address,omitempty"`
	CanViewUsers    bool   `json:"can_view_users"`
	CanApproveUsers bool   `json:"can_approve_users"`
}

// NewOfficialResponse maps a domain official.
func NewOfficialResponse(o *domain.GovernmentOfficial) OfficialResponse {
	return OfficialResponse{
		ID:              o.ID,
		PrincipalID:     o.PrincipalID,
		EmployeeID:      o.EmployeeID,
		Department:      o.Department,
		Position:        o.Position,
		OfficeAddress:   o.OfficeAddress,
		CanViewUsers:    o.CanViewUsers,
		CanApproveUsers: o.CanApproveUsers,
	}
}

// CitizenProfileResponse is the public view of a citizen profile.
type CitizenProfileResponse struct {
	CitizenID      string                `json:"citizen_id"`
	Address        string                `json:"address"`
	BillingAddress domain.BillingAddress `json:"billing_address"`
	DateOfBirth    *time.Time            `json:"date_of_birth,omitempty"`
}

// BusinessProfileResponse is the public view of a business profile.
type BusinessProfileResponse struct {
	BusinessName       string                `json:"business_name"`
	RegistrationNumber string                `json:"registration_number"`
	BusinessType       string                `json:"business_type"`
	BusinessAddress    string                `json:"business_address"`
	BillingAddress     domain.BillingAddress `json:"billing_address"`
	Website            string                `json:"website,omitempty"`
}

// AccountDetailResponse nests the principal with its role profile.
type AccountDetailResponse struct {
	Principal PrincipalResponse        `json:"principal"`
	Citizen   *CitizenProfileResponse  `json:"citizen_profile,omitempty"`
	Business  *BusinessProfileResponse `json:"business_profile,omitempty"`
	Official  *OfficialResponse        `json:"official_profile,omitempty"`
}

// NewAccountDetailResponse maps a service detail bundle.
func NewAccountDetailResponse(detail *service.AccountDetail) AccountDetailResponse {
	resp := AccountDetailResponse{Principal: NewPrincipalResponse(detail.Principal)}
	if detail.Citizen != nil {
		resp.Citizen = &CitizenProfileResponse{
			CitizenID:      detail.Citizen.CitizenID,
			Address:        detail.Citizen.Address,
			BillingAddress: detail.Citizen.BillingAddress,
			DateOfBirth:    detail.Citizen.DateOfBirth,
		}
	}
	if detail.Business != nil {
		resp.Business = &BusinessProfileResponse{
			BusinessName:       detail.Business.BusinessName,
			RegistrationNumber: detail.Business.RegistrationNumber,
			BusinessType:       detail.Business.BusinessType,
			BusinessAddress:    detail.Business.BusinessAddress,
			BillingAddress:     detail.Business.BillingAddress,
			Website:            detail.Business.Website,
		}
	}
	if detail.Official != nil {
		official := NewOfficialResponse(detail.Official)
		resp.Official = &official
	}
	return resp
}
