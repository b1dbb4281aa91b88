package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/townhall/civic-service/internal/api/dto"
	"github.com/townhall/civic-service/internal/domain"
	"github.com/townhall/civic-service/internal/service"
)

// TownChangesHandler serves the two-step relocation workflow.
type TownChangesHandler struct {
	changes *service.TownChangeService
}

func NewTownChangesHandler(changes *service.TownChangeService) *TownChangesHandler {
	return &TownChangesHandler{changes: changes}
}

// Create handles POST /town-changes.
func (h *TownChangesHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.TownChangeRequestBody
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	request, err := h.changes.Request(c.UserContext(), actor, req.RequestedTownID, req.BillingAddress.Domain())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTownChangeResponse(request)})
}

// List handles GET /town-changes.
func (h *TownChangesHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)

	var status *domain.TownChangeStatus
	if raw := c.Query("status"); raw != "" {
		value := domain.TownChangeStatus(raw)
		status = &value
	}

	requests, err := h.changes.List(c.UserContext(), actor, status, limit, offset)
	if err != nil {
		return err
	}

	responses := make([]dto.TownChangeResponse, 0, len(requests))
	for i := range requests {
		responses = append(responses, dto.NewTownChangeResponse(&requests[i]))
	}
	return c.JSON(fiber.Map{"data": responses})
}

// Get handles GET /town-changes/:id.
func (h *TownChangesHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	request, err := h.changes.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTownChangeResponse(request)})
}

// Approve handles POST /town-changes/:id/approve. A pending request advances
// to approved_current; an approved_current request completes and moves the
// account to its new town.
func (h *TownChangesHandler) Approve(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	request, err := h.changes.Approve(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTownChangeResponse(request)})
}

// Reject handles POST /town-changes/:id/reject.
func (h *TownChangesHandler) Reject(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.RejectRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	request, err := h.changes.Reject(c.UserContext(), actor, c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTownChangeResponse(request)})
}
