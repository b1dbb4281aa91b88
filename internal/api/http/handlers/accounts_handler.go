package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/townhall/civic-service/internal/api/dto"
	"github.com/townhall/civic-service/internal/domain"
	"github.com/townhall/civic-service/internal/repository"
	"github.com/townhall/civic-service/internal/service"
)

// AccountsHandler exposes account management: listing, approval decisions
// and the self-service profile.
type AccountsHandler struct {
	accounts *service.AccountService
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(accounts *service.AccountService) *AccountsHandler {
	return &AccountsHandler{accounts: accounts}
}

// List handles GET /accounts.
func (h *AccountsHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	limit, offset := pagination(c)
	filter := repository.PrincipalFilter{Limit: limit, Offset: offset}
	if role := c.Query("role"); role != "" {
		filter.Roles = []domain.Role{domain.Role(role)}
	}
	if approved := c.Query("approved"); approved != "" {
		value := approved == "true"
		filter.IsApproved = &value
	}
	if town := c.Query("town_id"); town != "" {
		filter.TownID = &town
	}

	accounts, err := h.accounts.List(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}

	responses := make([]dto.PrincipalResponse, 0, len(accounts))
	for i := range accounts {
		responses = append(responses, dto.NewPrincipalResponse(&accounts[i]))
	}
	return c.JSON(fiber.Map{"data": responses})
}

// Get handles GET /accounts/:id.
func (h *AccountsHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	detail, err := h.accounts.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountDetailResponse(detail)})
}

// Approve handles POST /accounts/:id/approve.
func (h *AccountsHandler) Approve(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	credential, err := h.accounts.Approve(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"credential": dto.CredentialResponse{Key: credential.Key, CreatedAt: credential.CreatedAt},
		},
	})
}

// Reject handles POST /accounts/:id/reject.
func (h *AccountsHandler) Reject(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.RejectRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.accounts.Reject(c.UserContext(), actor, c.Params("id"), req.Reason); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Deactivate handles POST /accounts/:id/deactivate.
func (h *AccountsHandler) Deactivate(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.accounts.Deactivate(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Me handles GET /accounts/me.
func (h *AccountsHandler) Me(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	detail, err := h.accounts.Profile(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountDetailResponse(detail)})
}

// UpdateMe handles PATCH /accounts/me.
func (h *AccountsHandler) UpdateMe(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	detail, err := h.accounts.UpdateProfile(c.UserContext(), actor, req.Input())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountDetailResponse(detail)})
}
