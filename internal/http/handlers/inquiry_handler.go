package handlers

import (
	"github.com/gofiber/fiber/v2"

	"harvestlink/internal/domain"
	applog "harvestlink/internal/log"
	"harvestlink/internal/services"
	"harvestlink/internal/validate"
)

type InquiryHandler struct {
	Inquiries *services.InquiryService
}

// POST /api/v1/inquiries — public; anonymous buyers must supply a phone.
func (h *InquiryHandler) Create(c *fiber.Ctx) error {
	var body struct {
		ProductID    string `json:"product_id"`
		CustomerName string `json:"customer_name"`
		ContactPhone string `json:"contact_phone"`
		Message      string `json:"message"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	inq, err := h.Inquiries.Create(principal(c), services.CreateInquiryInput{
		ProductID:    body.ProductID,
		CustomerName: body.CustomerName,
		ContactPhone: body.ContactPhone,
		Message:      body.Message,
	})
	if err != nil {
		applog.Info(c, "inquiry.create.reject", map[string]any{"product_id": body.ProductID})
		return fail(c, err)
	}
	applog.Audit(c, "inquiry.create", map[string]any{"inquiry_id": inq.ID, "farmer_id": inq.FarmerID})
	return c.Status(fiber.StatusCreated).JSON(inq)
}

// GET /api/v1/farmers/:id/inquiries — owner farmer or admin.
func (h *InquiryHandler) ListForFarmer(c *fiber.Ctx) error {
	farmerID, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found or forbidden"})
	}
	inqs, err := h.Inquiries.ListForFarmer(principal(c), farmerID)
	if err != nil {
		applog.Security(c, "inquiry.list.denied", map[string]any{"farmer_id": farmerID})
		return fail(c, err)
	}
	return c.JSON(inqs)
}

// GET /api/v1/inquiries/:id — owner read; first read moves new -> viewed.
func (h *InquiryHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found or forbidden"})
	}
	inq, err := h.Inquiries.View(principal(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(inq)
}

// PATCH /api/v1/inquiries/:id/status
func (h *InquiryHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found or forbidden"})
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil || body.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing status"})
	}
	inq, err := h.Inquiries.Transition(principal(c), id, domain.InquiryStatus(body.Status))
	if err != nil {
		applog.Info(c, "inquiry.transition.reject", map[string]any{"inquiry_id": id, "status": body.Status})
		return fail(c, err)
	}
	applog.Audit(c, "inquiry.transition", map[string]any{"inquiry_id": id, "status": inq.Status})
	return c.JSON(inq)
}

// DELETE /api/v1/inquiries/:id
func (h *InquiryHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found or forbidden"})
	}
	if err := h.Inquiries.Delete(principal(c), id); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "inquiry.delete", map[string]any{"inquiry_id": id})
	return c.JSON(fiber.Map{"message": "inquiry deleted"})
}
