package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/townhall/civic-service/internal/api/dto"
	"github.com/townhall/civic-service/internal/domain"
	"github.com/townhall/civic-service/internal/repository"
	"github.com/townhall/civic-service/internal/service"
)

// EventsHandler serves business events: submission, review and
// registration.
type EventsHandler struct {
	events *service.EventService
}

func NewEventsHandler(events *service.EventService) *EventsHandler {
	return &EventsHandler{events: events}
}

// Submit handles POST /events.
func (h *EventsHandler) Submit(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.EventRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	event, err := h.events.Submit(c.UserContext(), actor, service.EventInput{
		Title:       req.Title,
		Description: req.Description,
		Venue:       req.Venue,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": event})
}

// List handles GET /events.
func (h *EventsHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	filter := repository.EventFilter{Limit: limit, Offset: offset}
	if status := c.Query("status"); status != "" {
		value := domain.EventStatus(status)
		filter.Status = &value
	}

	events, err := h.events.List(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": events})
}

// Get handles GET /events/:id.
func (h *EventsHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	event, err := h.events.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": event})
}

// Review handles POST /events/:id/review.
func (h *EventsHandler) Review(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.EventReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	event, err := h.events.Review(c.UserContext(), actor, c.Params("id"), req.Approve)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": event})
}

// Register handles POST /events/:id/register.
func (h *EventsHandler) Register(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	registration, err := h.events.Register(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": registration})
}

// Unregister handles DELETE /events/:id/register.
func (h *EventsHandler) Unregister(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.events.Unregister(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Registrations handles GET /events/:id/registrations.
func (h *EventsHandler) Registrations(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	registrations, err := h.events.Registrations(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": registrations})
}
