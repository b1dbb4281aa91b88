package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/townhall/civic-service/internal/api/dto"
	"github.com/townhall/civic-service/internal/service"
)

// OfficialsHandler administers government official records. Superuser only.
type OfficialsHandler struct {
	officials *service.OfficialService
}

func NewOfficialsHandler(officials *service.OfficialService) *OfficialsHandler {
	return &OfficialsHandler{officials: officials}
}

// List handles GET /officials.
func (h *OfficialsHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	officials, err := h.officials.List(c.UserContext(), actor, limit, offset)
	if err != nil {
		return err
	}

	responses := make([]dto.OfficialResponse, 0, len(officials))
	for i := range officials {
		responses = append(responses, dto.NewOfficialResponse(&officials[i]))
	}
	return c.JSON(fiber.Map{"data": responses})
}

// SetFlags handles PUT /officials/:id/flags.
func (h *OfficialsHandler) SetFlags(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.OfficialFlagsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	official, err := h.officials.SetFlags(c.UserContext(), actor, c.Params("id"), req.CanViewUsers, req.CanApproveUsers)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOfficialResponse(official)})
}
