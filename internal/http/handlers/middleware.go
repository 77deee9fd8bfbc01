package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"harvestlink/internal/auth"
	"harvestlink/internal/domain"
	applog "harvestlink/internal/log"
	"harvestlink/internal/repos"
)

// credential extracts the bearer token; websocket clients pass it as a query
// parameter because browsers cannot set headers on the upgrade request.
func credential(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return c.Query("token")
}

// WithPrincipal resolves the request credential on every call and attaches
// the Principal to the request context. No credential means anonymous; a bad
// or deactivated one is rejected here, before any handler runs.
func WithPrincipal(resolver *auth.Resolver, farmers *repos.FarmerRepo) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := resolver.Resolve(credential(c))
		if err != nil {
			applog.Security(c, "auth.resolve.fail", map[string]any{"reason": err.Error()})
			return fail(c, err)
		}
		if p.IsFarmer() {
			if f, ferr := farmers.ByUserID(p.ID); ferr == nil {
				p.FarmerID = f.ID
			}
		}
		c.Locals("principal", p)
		return c.Next()
	}
}

// principal reads the resolved Principal; anonymous if middleware didn't run.
func principal(c *fiber.Ctx) domain.Principal {
	if p, ok := c.Locals("principal").(domain.Principal); ok {
		return p
	}
	return domain.Anonymous
}

// RequireAuthenticated rejects anonymous requests up front. Ownership is
// still checked downstream by the guard on each mutation.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if principal(c).IsAnonymous() {
			applog.Security(c, "access.denied.anonymous", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}
		return c.Next()
	}
}
