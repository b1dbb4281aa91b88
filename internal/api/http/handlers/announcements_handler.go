package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/townhall/civic-service/internal/api/dto"
	"github.com/townhall/civic-service/internal/domain"
	"github.com/townhall/civic-service/internal/service"
)

// AnnouncementsHandler serves town announcements.
type AnnouncementsHandler struct {
	announcements *service.AnnouncementService
}

func NewAnnouncementsHandler(announcements *service.AnnouncementService) *AnnouncementsHandler {
	return &AnnouncementsHandler{announcements: announcements}
}

// Create handles POST /announcements.
func (h *AnnouncementsHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	req, err := announcementInput(c)
	if err != nil {
		return err
	}

	announcement, err := h.announcements.Create(c.UserContext(), actor, req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": announcement})
}

// List handles GET /announcements.
func (h *AnnouncementsHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	announcements, err := h.announcements.List(c.UserContext(), actor, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": announcements})
}

// Get handles GET /announcements/:id.
func (h *AnnouncementsHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	announcement, err := h.announcements.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": announcement})
}

// Update handles PUT /announcements/:id.
func (h *AnnouncementsHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	req, err := announcementInput(c)
	if err != nil {
		return err
	}

	announcement, err := h.announcements.Update(c.UserContext(), actor, c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": announcement})
}

// Delete handles DELETE /announcements/:id.
func (h *AnnouncementsHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.announcements.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func announcementInput(c *fiber.Ctx) (service.AnnouncementInput, error) {
	var req dto.AnnouncementRequest
	if err := c.BodyParser(&req); err != nil {
		return service.AnnouncementInput{}, fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return service.AnnouncementInput{}, err
	}
	return service.AnnouncementInput{
		Title:    req.Title,
		Content:  req.Content,
		Priority: domain.Priority(req.Priority),
		Publish:  req.Publish,
	}, nil
}
