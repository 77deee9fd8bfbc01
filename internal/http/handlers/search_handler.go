package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "harvestlink/internal/log"
	"harvestlink/internal/services"
	"harvestlink/internal/validate"
)

type SearchHandler struct {
	Catalog *services.CatalogService
}

// GET /api/v1/products
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	in := services.SearchInput{
		Cursor: strings.TrimSpace(c.Query("cursor")),
		Limit:  validate.Limit(c.Query("limit"), 20, 100),
	}

	if rawQ := strings.TrimSpace(c.Query("q")); rawQ != "" {
		q, ok := validate.Q(rawQ)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "q", "value": rawQ})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "enter a valid keyword (letters/numbers only)"})
		}
		in.Query = strings.ToLower(q)
	}
	if cat := strings.TrimSpace(c.Query("category")); cat != "" {
		if _, ok := validate.Name(cat); !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "category"})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid category"})
		}
		in.Category = cat
	}
	if loc := strings.TrimSpace(c.Query("location")); loc != "" {
		if _, ok := validate.Name(loc); !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "location"})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid location"})
		}
		in.Location = loc
	}

	page, err := h.Catalog.Search(principal(c), in)
	if err != nil {
		applog.Error(c, "search.error", err, nil)
		return fail(c, err)
	}
	return c.JSON(page)
}
