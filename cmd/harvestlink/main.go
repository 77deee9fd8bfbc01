package main

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"harvestlink/internal/auth"
	"harvestlink/internal/config"
	"harvestlink/internal/http/handlers"
	applog "harvestlink/internal/log"
	"harvestlink/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	deps := handlers.NewDeps(db, cfg)
	resolver := auth.NewResolver(&auth.JWTVerifier{Secret: []byte(cfg.JWTSecret)}, repos.NewUserRepo(db))

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(cors.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/ws/")
		},
	}))
	app.Use(handlers.WithPrincipal(resolver, deps.FarmerRepo))

	// ---------- API ----------
	api := app.Group("/api/v1")

	searchLimiter := limiter.New(limiter.Config{Max: 30, Expiration: time.Minute})
	api.Get("/products", searchLimiter, deps.SearchHandler.Search)
	api.Post("/products", handlers.RequireAuthenticated(), deps.ProductHandler.Create)
	api.Get("/products/:id", deps.ProductHandler.Detail)
	api.Put("/products/:id", handlers.RequireAuthenticated(), deps.ProductHandler.Update)
	api.Delete("/products/:id", handlers.RequireAuthenticated(), deps.ProductHandler.Delete)

	api.Get("/farmers/:id", deps.FarmerHandler.Detail)
	api.Put("/farmers/:id", handlers.RequireAuthenticated(), deps.FarmerHandler.Update)
	api.Get("/farmers/:id/products", deps.ProductHandler.ListByFarmer)
	api.Get("/farmers/:id/inquiries", handlers.RequireAuthenticated(), deps.InquiryHandler.ListForFarmer)

	// Anonymous inquiry creation is throttled harder than the rest.
	inquiryLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|inq"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.inquiry.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	api.Post("/inquiries", inquiryLimiter, deps.InquiryHandler.Create)
	api.Get("/inquiries/:id", handlers.RequireAuthenticated(), deps.InquiryHandler.Get)
	api.Patch("/inquiries/:id/status", handlers.RequireAuthenticated(), deps.InquiryHandler.UpdateStatus)
	api.Delete("/inquiries/:id", handlers.RequireAuthenticated(), deps.InquiryHandler.Delete)

	api.Get("/dashboard/farmer", handlers.RequireAuthenticated(), deps.FarmerHandler.Dashboard)

	// ---------- Dashboard event stream ----------
	app.Get("/ws/dashboard", deps.WSHandler.Upgrade(), websocket.New(deps.WSHandler.Serve))

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
