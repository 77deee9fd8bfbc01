package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"

	"harvestlink/internal/auth"
	"harvestlink/internal/config"
	"harvestlink/internal/http/handlers"
	"harvestlink/internal/repos"
)

const testSecret = "test-secret"

// memdb opens a seeded in-memory database pinned to one connection (the
// in-memory sqlite DSN is otherwise per-connection).
func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// newTestApp mounts the API routes exactly as the server does, minus the rate
// limiters (tested separately).
func newTestApp(t *testing.T) (*fiber.App, *sqlx.DB) {
	t.Helper()
	db := memdb(t)
	cfg := config.Config{JWTSecret: testSecret, NotifyBacklog: 100}
	deps := handlers.NewDeps(db, cfg)
	resolver := auth.NewResolver(&auth.JWTVerifier{Secret: []byte(cfg.JWTSecret)}, repos.NewUserRepo(db))

	app := fiber.New()
	app.Use(handlers.WithPrincipal(resolver, deps.FarmerRepo))
	api := app.Group("/api/v1")

	api.Get("/products", deps.SearchHandler.Search)
	api.Post("/products", handlers.RequireAuthenticated(), deps.ProductHandler.Create)
	api.Get("/products/:id", deps.ProductHandler.Detail)
	api.Put("/products/:id", handlers.RequireAuthenticated(), deps.ProductHandler.Update)
	api.Delete("/products/:id", handlers.RequireAuthenticated(), deps.ProductHandler.Delete)

	api.Get("/farmers/:id", deps.FarmerHandler.Detail)
	api.Put("/farmers/:id", handlers.RequireAuthenticated(), deps.FarmerHandler.Update)
	api.Get("/farmers/:id/products", deps.ProductHandler.ListByFarmer)
	api.Get("/farmers/:id/inquiries", handlers.RequireAuthenticated(), deps.InquiryHandler.ListForFarmer)

	api.Post("/inquiries", deps.InquiryHandler.Create)
	api.Get("/inquiries/:id", handlers.RequireAuthenticated(), deps.InquiryHandler.Get)
	api.Patch("/inquiries/:id/status", handlers.RequireAuthenticated(), deps.InquiryHandler.UpdateStatus)
	api.Delete("/inquiries/:id", handlers.RequireAuthenticated(), deps.InquiryHandler.Delete)

	api.Get("/dashboard/farmer", handlers.RequireAuthenticated(), deps.FarmerHandler.Dashboard)
	return app, db
}

func mintToken(t *testing.T, sub, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func jsonReq(t *testing.T, method, target string, body any, token string) *http.Request {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatal(err)
	}
}
