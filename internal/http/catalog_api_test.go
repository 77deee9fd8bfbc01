package handlers_test

import (
	"net/http"
	"testing"
)

type searchPage struct {
	Items []struct {
		ID        string `json:"id"`
		FarmName  string `json:"farm_name"`
		Available bool   `json:"available"`
	} `json:"items"`
	NextCursor string `json:"next_cursor"`
}

func TestSearchEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(jsonReq(t, "GET", "/api/v1/products?q=kale", nil, ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var page searchPage
	decode(t, resp, &page)
	if len(page.Items) != 1 || page.Items[0].ID != "p-kale" {
		t.Fatalf("items %v", page.Items)
	}
	if page.Items[0].FarmName != "Rosa Valley Farm" {
		t.Fatalf("farm name %q", page.Items[0].FarmName)
	}
	if page.NextCursor != "" {
		t.Fatalf("short page should not carry a cursor")
	}
}

func TestSearchRejectsHostileQuery(t *testing.T) {
	app, _ := newTestApp(t)

	for _, q := range []string{"%27%20OR%201=1--", "a%3Cscript%3E"} {
		resp, err := app.Test(jsonReq(t, "GET", "/api/v1/products?q="+q, nil, ""))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("q=%s: status %d, want 400", q, resp.StatusCode)
		}
	}
}

func TestSearchBadCursorIs400(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(jsonReq(t, "GET", "/api/v1/products?cursor=@@@", nil, ""))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}
}

func TestHiddenListingVisibilityOverHTTP(t *testing.T) {
	app, _ := newTestApp(t)

	fruits := func(token string) map[string]bool {
		t.Helper()
		resp, err := app.Test(jsonReq(t, "GET", "/api/v1/products?category=Fruit", nil, token))
		if err != nil {
			t.Fatal(err)
		}
		var page searchPage
		decode(t, resp, &page)
		out := map[string]bool{}
		for _, it := range page.Items {
			out[it.ID] = true
		}
		return out
	}

	if ids := fruits(""); ids["p-longan"] {
		t.Fatal("anonymous caller sees an unavailable listing")
	}
	if ids := fruits(mintToken(t, "u-sam", "farmer")); !ids["p-longan"] {
		t.Fatal("owner cannot see own unavailable listing")
	}
	if ids := fruits(mintToken(t, "u-admin", "admin")); !ids["p-longan"] {
		t.Fatal("admin cannot see unavailable listing")
	}
}

func TestProductDetailCountsViewsAndTombstones(t *testing.T) {
	app, _ := newTestApp(t)
	rosa := mintToken(t, "u-rosa", "farmer")

	resp, err := app.Test(jsonReq(t, "GET", "/api/v1/products/p-kale", nil, ""))
	if err != nil {
		t.Fatal(err)
	}
	var prod map[string]any
	decode(t, resp, &prod)
	if resp.StatusCode != http.StatusOK || prod["view_count"].(float64) != 1 {
		t.Fatalf("detail: %d %v", resp.StatusCode, prod)
	}

	// Owner deletes: the listing becomes invisible, the row stays for
	// inquiry references.
	respDel, err := app.Test(jsonReq(t, "DELETE", "/api/v1/products/p-kale", nil, rosa))
	if err != nil {
		t.Fatal(err)
	}
	if respDel.StatusCode != http.StatusOK {
		t.Fatalf("delete status %d", respDel.StatusCode)
	}
	respGone, err := app.Test(jsonReq(t, "GET", "/api/v1/products/p-kale", nil, ""))
	if err != nil {
		t.Fatal(err)
	}
	if respGone.StatusCode != http.StatusNotFound {
		t.Fatalf("tombstoned detail status %d, want 404", respGone.StatusCode)
	}
}

func TestProductUpdateOwnershipOverHTTP(t *testing.T) {
	app, _ := newTestApp(t)
	sam := mintToken(t, "u-sam", "farmer")

	body := map[string]any{
		"name":      "Curly Kale",
		"price":     3.80,
		"unit":      "bunch",
		"category":  "Vegetables",
		"available": true,
	}
	resp, err := app.Test(jsonReq(t, "PUT", "/api/v1/products/p-kale", body, sam))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign farmer update: status %d, want opaque 404", resp.StatusCode)
	}

	respAnon, err := app.Test(jsonReq(t, "PUT", "/api/v1/products/p-kale", body, ""))
	if err != nil {
		t.Fatal(err)
	}
	if respAnon.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous update: status %d, want 401", respAnon.StatusCode)
	}
}

func TestProductCreateRequiresFarmer(t *testing.T) {
	app, _ := newTestApp(t)

	body := map[string]any{"name": "Jam", "price": 5.0, "unit": "each", "category": "Pantry"}
	resp, err := app.Test(jsonReq(t, "POST", "/api/v1/products", body, mintToken(t, "u-buyer", "user")))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("buyer create: status %d, want opaque 404", resp.StatusCode)
	}

	respOK, err := app.Test(jsonReq(t, "POST", "/api/v1/products", body, mintToken(t, "u-rosa", "farmer")))
	if err != nil {
		t.Fatal(err)
	}
	if respOK.StatusCode != http.StatusCreated {
		t.Fatalf("farmer create: status %d, want 201", respOK.StatusCode)
	}
	var created map[string]any
	decode(t, respOK, &created)
	if created["farmer_id"] != "f-rosa" {
		t.Fatalf("created under %v", created["farmer_id"])
	}
}
