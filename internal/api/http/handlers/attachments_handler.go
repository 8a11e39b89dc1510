package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/internal/storage"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// AttachmentsHandler serves stored attachment content.
type AttachmentsHandler struct {
	service *service.TicketService
	objects storage.ObjectStore
}

// NewAttachmentsHandler constructs handler.
func NewAttachmentsHandler(ticketService *service.TicketService, objects storage.ObjectStore) *AttachmentsHandler {
	return &AttachmentsHandler{service: ticketService, objects: objects}
}

// Download GET /attachments/:id.
func (h *AttachmentsHandler) Download(c *fiber.Ctx) error {
	agent, err := requireAgent(c)
	if err != nil {
		return err
	}
	attachment, err := h.service.GetAttachment(c.Context(), agent, c.Params("id"))
	if err != nil {
		return err
	}

	data, contentType, err := h.objects.Get(c.Context(), attachment.Path)
	if err != nil {
		return apperrors.NewNotFound("attachment content", map[string]any{"id": attachment.ID})
	}
	if contentType == "" {
		contentType = attachment.MimeType
	}

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", attachment.Name))
	return c.Send(data)
}
