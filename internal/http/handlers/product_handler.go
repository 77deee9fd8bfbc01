package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "harvestlink/internal/log"
	"harvestlink/internal/services"
	"harvestlink/internal/validate"
)

type ProductHandler struct {
	Catalog  *services.CatalogService
	Products *services.ProductService
}

type productBody struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Unit        string  `json:"unit"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
	Available   *bool   `json:"available"`
}

func (b productBody) input() services.ProductInput {
	in := services.ProductInput{
		Name:        b.Name,
		Description: b.Description,
		Price:       b.Price,
		Unit:        b.Unit,
		Category:    b.Category,
		ImageURL:    b.ImageURL,
		Available:   true,
	}
	if b.Available != nil {
		in.Available = *b.Available
	}
	return in
}

// GET /api/v1/products/:id
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found or forbidden"})
	}
	p, err := h.Catalog.GetProduct(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(p)
}

// POST /api/v1/products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var body productBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	prod, err := h.Products.Create(principal(c), body.input())
	if err != nil {
		applog.Error(c, "product.create.fail", err, nil)
		return fail(c, err)
	}
	applog.Audit(c, "product.create", map[string]any{"product_id": prod.ID})
	return c.Status(fiber.StatusCreated).JSON(prod)
}

// PUT /api/v1/products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found or forbidden"})
	}
	var body productBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	prod, err := h.Products.Update(principal(c), id, body.input())
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "product.update", map[string]any{"product_id": id})
	return c.JSON(prod)
}

// DELETE /api/v1/products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found or forbidden"})
	}
	if err := h.Products.Delete(principal(c), id); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "product.delete", map[string]any{"product_id": id})
	return c.JSON(fiber.Map{"message": "product removed"})
}

// GET /api/v1/farmers/:id/products
func (h *ProductHandler) ListByFarmer(c *fiber.Ctx) error {
	farmerID, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found or forbidden"})
	}
	prods, err := h.Products.ListByFarmer(principal(c), farmerID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(prods)
}
