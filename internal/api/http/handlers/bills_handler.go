package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/townhall/civic-service/internal/api/dto"
	"github.com/townhall/civic-service/internal/domain"
	"github.com/townhall/civic-service/internal/service"
)

// BillsHandler serves town bill proposals, votes and discussion.
type BillsHandler struct {
	bills *service.BillService
}

func NewBillsHandler(bills *service.BillService) *BillsHandler {
	return &BillsHandler{bills: bills}
}

// Propose handles POST /bills.
func (h *BillsHandler) Propose(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	input, err := billInput(c)
	if err != nil {
		return err
	}

	bill, err := h.bills.Propose(c.UserContext(), actor, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": bill})
}

// List handles GET /bills.
func (h *BillsHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)

	var status *domain.BillStatus
	if raw := c.Query("status"); raw != "" {
		value := domain.BillStatus(raw)
		status = &value
	}

	bills, err := h.bills.List(c.UserContext(), actor, status, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bills})
}

// Get handles GET /bills/:id; the response carries the vote tally.
func (h *BillsHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	bill, votes, err := h.bills.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"bill": bill, "votes": votes}})
}

// Update handles PUT /bills/:id.
func (h *BillsHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	input, err := billInput(c)
	if err != nil {
		return err
	}

	bill, err := h.bills.Update(c.UserContext(), actor, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bill})
}

// Decide handles POST /bills/:id/decide.
func (h *BillsHandler) Decide(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.BillDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	bill, err := h.bills.Decide(c.UserContext(), actor, c.Params("id"), req.Passed)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bill})
}

// Delete handles DELETE /bills/:id.
func (h *BillsHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.bills.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Vote handles PUT /bills/:id/vote. Voting again replaces the position.
func (h *BillsHandler) Vote(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.VoteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	vote, err := h.bills.Vote(c.UserContext(), actor, c.Params("id"), req.Support)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": vote})
}

// Unvote handles DELETE /bills/:id/vote.
func (h *BillsHandler) Unvote(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.bills.Unvote(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Comment handles POST /bills/:id/comments.
func (h *BillsHandler) Comment(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	comment, err := h.bills.Comment(c.UserContext(), actor, c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": comment})
}

// Comments handles GET /bills/:id/comments.
func (h *BillsHandler) Comments(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	comments, err := h.bills.Comments(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": comments})
}

func billInput(c *fiber.Ctx) (service.BillInput, error) {
	var req dto.BillRequest
	if err := c.BodyParser(&req); err != nil {
		return service.BillInput{}, fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return service.BillInput{}, err
	}
	return service.BillInput{
		Title:    req.Title,
		Summary:  req.Summary,
		Priority: domain.Priority(req.Priority),
	}, nil
}
