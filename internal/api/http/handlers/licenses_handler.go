package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/townhall/civic-service/internal/api/dto"
	"github.com/townhall/civic-service/internal/domain"
	"github.com/townhall/civic-service/internal/repository"
	"github.com/townhall/civic-service/internal/service"
)

// LicensesHandler serves business-license applications and reviews.
type LicensesHandler struct {
	licenses *service.LicenseService
}

func NewLicensesHandler(licenses *service.LicenseService) *LicensesHandler {
	return &LicensesHandler{licenses: licenses}
}

// Apply handles POST /licenses.
func (h *LicensesHandler) Apply(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.LicenseApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	license, err := h.licenses.Apply(c.UserContext(), actor, service.LicenseApplyInput{
		LicenseType:   req.LicenseType,
		LicenseNumber: req.LicenseNumber,
		Description:   req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": license})
}

// List handles GET /licenses.
func (h *LicensesHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	filter := repository.LicenseFilter{Limit: limit, Offset: offset}
	if status := c.Query("status"); status != "" {
		value := domain.LicenseStatus(status)
		filter.Status = &value
	}

	licenses, err := h.licenses.List(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": licenses})
}

// Get handles GET /licenses/:id.
func (h *LicensesHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	license, err := h.licenses.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": license})
}

// Review handles POST /licenses/:id/review.
func (h *LicensesHandler) Review(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.LicenseReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	license, err := h.licenses.Review(c.UserContext(), actor, c.Params("id"), service.LicenseReviewInput{
		Approve:    req.Approve,
		ReviewNote: req.ReviewNote,
		IssueDate:  req.IssueDate,
		ExpiryDate: req.ExpiryDate,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": license})
}
