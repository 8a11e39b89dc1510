package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// ContactsHandler manages contact endpoints.
type ContactsHandler struct {
	service *service.ContactService
}

// NewContactsHandler constructs handler.
func NewContactsHandler(contactService *service.ContactService) *ContactsHandler {
	return &ContactsHandler{service: contactService}
}

// CreateContact POST /contacts.
func (h *ContactsHandler) CreateContact(c *fiber.Ctx) error {
	agent, err := requireAgent(c)
	if err != nil {
		return err
	}
	var req dto.CreateContactRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	contact, err := h.service.Create(c.Context(), agent, service.ContactCreateInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": contactResponse(contact)})
}

// GetContact GET /contacts/:id.
func (h *ContactsHandler) GetContact(c *fiber.Ctx) error {
	agent, err := requireAgent(c)
	if err != nil {
		return err
	}
	contact, err := h.service.Get(c.Context(), agent, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": contactResponse(contact)})
}

// ListContacts GET /contacts.
func (h *ContactsHandler) ListContacts(c *fiber.Ctx) error {
	agent, err := requireAgent(c)
	if err != nil {
		return err
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)

	contacts, err := h.service.List(c.Context(), agent, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.ContactResponse, 0, len(contacts))
	for i := range contacts {
		items = append(items, contactResponse(&contacts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func contactResponse(contact *domain.Contact) dto.ContactResponse {
	return dto.ContactResponse{
		ID:        contact.ID,
		TenantID:  contact.TenantID,
		Name:      contact.Name,
		Email:     contact.Email,
		Phone:     contact.Phone,
		CreatedAt: contact.CreatedAt,
	}
}
