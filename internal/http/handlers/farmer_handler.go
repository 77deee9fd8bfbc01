package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "harvestlink/internal/log"
	"harvestlink/internal/services"
	"harvestlink/internal/validate"
)

type FarmerHandler struct {
	Farmers *services.FarmerService
}

// GET /api/v1/farmers/:id — public profile.
func (h *FarmerHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found or forbidden"})
	}
	f, err := h.Farmers.Get(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(f)
}

// PUT /api/v1/farmers/:id — owner or admin.
func (h *FarmerHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found or forbidden"})
	}
	var body struct {
		FarmName    string `json:"farm_name"`
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		Location    string `json:"location"`
		Phone       string `json:"phone"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	f, err := h.Farmers.Update(principal(c), id, services.FarmerInput{
		FarmName:    body.FarmName,
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		Location:    body.Location,
		Phone:       body.Phone,
		Description: body.Description,
	})
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "farmer.update", map[string]any{"farmer_id": id})
	return c.JSON(f)
}

// GET /api/v1/dashboard/farmer — single-call dashboard payload.
func (h *FarmerHandler) Dashboard(c *fiber.Ctx) error {
	d, err := h.Farmers.DashboardFor(principal(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(d)
}
