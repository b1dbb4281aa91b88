package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/townhall/civic-service/internal/api/dto"
	"github.com/townhall/civic-service/internal/service"
)

// TownsHandler serves the town registry. Reads are public; writes require
// a superuser.
type TownsHandler struct {
	towns *service.TownService
}

func NewTownsHandler(towns *service.TownService) *TownsHandler {
	return &TownsHandler{towns: towns}
}

// List handles GET /towns. ?active=true hides towns closed to registration.
func (h *TownsHandler) List(c *fiber.Ctx) error {
	towns, err := h.towns.List(c.UserContext(), c.Query("active") == "true")
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": towns})
}

// Get handles GET /towns/:id.
func (h *TownsHandler) Get(c *fiber.Ctx) error {
	town, err := h.towns.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": town})
}

// Create handles POST /towns.
func (h *TownsHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.TownRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	town, err := h.towns.Create(c.UserContext(), actor, townInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": town})
}

// Update handles PUT /towns/:id.
func (h *TownsHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.TownRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	town, err := h.towns.Update(c.UserContext(), actor, c.Params("id"), townInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": town})
}

func townInput(req dto.TownRequest) service.TownInput {
	return service.TownInput{
		Name:               req.Name,
		State:              req.State,
		IsActive:           req.IsActive,
		EmergencyPolice:    req.EmergencyPolice,
		EmergencyFire:      req.EmergencyFire,
		EmergencyMedical:   req.EmergencyMedical,
		EmergencyNonUrgent: req.EmergencyNonUrgent,
		EmergencyDispatch:  req.EmergencyDispatch,
	}
}
