package handlers

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/townhall/civic-service/internal/api/dto"
	"github.com/townhall/civic-service/internal/domain"
	"github.com/townhall/civic-service/internal/repository"
	"github.com/townhall/civic-service/internal/service"
	"github.com/townhall/civic-service/internal/upload"
)

// ComplaintsHandler serves resident complaints: filing, official triage,
// comments and file attachments.
type ComplaintsHandler struct {
	complaints *service.ComplaintService
}

func NewComplaintsHandler(complaints *service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{complaints: complaints}
}

// Create handles POST /complaints.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.ComplaintCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	complaint, err := h.complaints.Create(c.UserContext(), actor, service.ComplaintCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Priority:    domain.Priority(req.Priority),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": complaint})
}

// List handles GET /complaints.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	filter := repository.ComplaintFilter{Limit: limit, Offset: offset}
	if status := c.Query("status"); status != "" {
		filter.Statuses = []domain.ComplaintStatus{domain.ComplaintStatus(status)}
	}

	complaints, err := h.complaints.List(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaints})
}

// Get handles GET /complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	complaint, err := h.complaints.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaint})
}

// Update handles PATCH /complaints/:id.
func (h *ComplaintsHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.ComplaintUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	input := service.ComplaintUpdateInput{AssignedTo: req.AssignedTo}
	if req.Status != nil {
		status := domain.ComplaintStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		input.Priority = &priority
	}

	complaint, err := h.complaints.Update(c.UserContext(), actor, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaint})
}

// Comment handles POST /complaints/:id/comments.
func (h *ComplaintsHandler) Comment(c *fiber.Ctx) error {
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

	comment, err := h.complaints.Comment(c.UserContext(), actor, c.Params("id"), req.Body, req.Notify)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": comment})
}

// Comments handles GET /complaints/:id/comments.
func (h *ComplaintsHandler) Comments(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	comments, err := h.complaints.Comments(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": comments})
}

// Attach handles POST /complaints/:id/attachments with a multipart "file"
// part.
func (h *ComplaintsHandler) Attach(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	header, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "missing file")
	}
	if header.Size > upload.MaxFileSize {
		return fiber.NewError(http.StatusBadRequest, "file too large")
	}

	file, err := header.Open()
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "unreadable file")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "unreadable file")
	}

	attachment, err := h.complaints.Attach(c.UserContext(), actor, c.Params("id"), service.AttachmentUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     content,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": attachment})
}

// Attachments handles GET /complaints/:id/attachments.
func (h *ComplaintsHandler) Attachments(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	attachments, err := h.complaints.Attachments(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": attachments})
}
