package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/townhall/civic-service/internal/api/dto"
	"github.com/townhall/civic-service/internal/domain"
	"github.com/townhall/civic-service/internal/service"
)

// AuthHandler exposes the signup and login endpoints. Each role has its own
// pair so the login surface is typed: citizen credentials do not work on
// the official endpoint.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// RegisterCitizen handles POST /auth/citizens/register.
func (h *AuthHandler) RegisterCitizen(c *fiber.Ctx) error {
	var req dto.CitizenRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	principal, err := h.auth.RegisterCitizen(c.UserContext(), service.CitizenRegisterInput{
		RegisterInput: registerInput(req.RegisterRequest),
		CitizenID:     req.CitizenID,
		Address:       req.Address,
		DateOfBirth:   req.DateOfBirth,
	})
	if err != nil {
		return err
	}
	return created(c, principal)
}

// RegisterBusiness handles POST /auth/businesses/register.
func (h *AuthHandler) RegisterBusiness(c *fiber.Ctx) error {
	var req dto.BusinessRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	principal, err := h.auth.RegisterBusiness(c.UserContext(), service.BusinessRegisterInput{
		RegisterInput:      registerInput(req.RegisterRequest),
		BusinessName:       req.BusinessName,
		RegistrationNumber: req.RegistrationNumber,
		BusinessType:       req.BusinessType,
		BusinessAddress:    req.BusinessAddress,
		Website:            req.Website,
	})
	if err != nil {
		return err
	}
	return created(c, principal)
}

// RegisterOfficial handles POST /auth/officials/register.
func (h *AuthHandler) RegisterOfficial(c *fiber.Ctx) error {
	var req dto.OfficialRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	principal, err := h.auth.RegisterOfficial(c.UserContext(), service.OfficialRegisterInput{
		RegisterInput: registerInput(req.RegisterRequest),
		EmployeeID:    req.EmployeeID,
		Department:    req.Department,
		Position:      req.Position,
		OfficeAddress: req.OfficeAddress,
	})
	if err != nil {
		return err
	}
	return created(c, principal)
}

// LoginCitizen handles POST /auth/citizens/login.
func (h *AuthHandler) LoginCitizen(c *fiber.Ctx) error {
	return h.login(c, domain.RoleCitizen)
}

// LoginBusiness handles POST /auth/businesses/login.
func (h *AuthHandler) LoginBusiness(c *fiber.Ctx) error {
	return h.login(c, domain.RoleBusiness)
}

// LoginOfficial handles POST /auth/officials/login.
func (h *AuthHandler) LoginOfficial(c *fiber.Ctx) error {
	return h.login(c, domain.RoleGovernment)
}

// AdminLogin handles POST /auth/admin/login.
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	result, err := h.auth.AdminLogin(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return loginResponse(c, result)
}

func (h *AuthHandler) login(c *fiber.Ctx, role domain.Role) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password, role)
	if err != nil {
		return err
	}
	return loginResponse(c, result)
}

func registerInput(req dto.RegisterRequest) service.RegisterInput {
	return service.RegisterInput{
		Email:          req.Email,
		Password:       req.Password,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		TownID:         req.TownID,
		BillingAddress: req.BillingAddress.Domain(),
	}
}

func created(c *fiber.Ctx, principal *domain.Principal) error {
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"account": dto.NewPrincipalResponse(principal),
			"status":  "pending approval",
		},
	})
}

func loginResponse(c *fiber.Ctx, result *service.LoginResult) error {
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"account": dto.NewPrincipalResponse(result.Principal),
			"auth":    dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
		},
	})
}
