package services_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"

	"harvestlink/internal/domain"
	"harvestlink/internal/errs"
	"harvestlink/internal/repos"
	"harvestlink/internal/services"
)

func newCatalog(t *testing.T) (*sqlx.DB, *services.CatalogService) {
	t.Helper()
	db := memdb(t)
	return db, services.NewCatalogService(repos.NewProductRepo(db))
}

// addProduct inserts a row with a pinned created_at so ordering assertions do
// not depend on the wall clock.
func addProduct(t *testing.T, db *sqlx.DB, id, farmerID, name, desc, category, createdAt string) {
	t.Helper()
	db.MustExec(`INSERT INTO products(id,farmer_id,name,description,price,unit,category,available,created_at)
		VALUES (?,?,?,?,1.00,'lb',?,1,?)`, id, farmerID, name, desc, category, createdAt)
}

func pageIDs(items []repos.ProductSummary) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func TestSearchRelevanceOrder(t *testing.T) {
	db, svc := newCatalog(t)

	// Rosa's farm name does not contain "honey"; register a farm that does so
	// the farm-name tier is exercised.
	db.MustExec(`INSERT INTO users(id,email,name,password_hash,role) VALUES ('u-hive','hive@harvestlink.test','Hive','x','farmer')`)
	db.MustExec(`INSERT INTO farmers(id,user_id,farm_name,location) VALUES ('f-hive','u-hive','Honey Hill Farm','Hoi An')`)

	addProduct(t, db, "p-by-name", "f-rosa", "Raw Honey", "single origin", "Pantry", "2026-01-03 10:00:00")
	addProduct(t, db, "p-by-desc", "f-rosa", "Gift Basket", "includes a jar of honey", "Pantry", "2026-01-04 10:00:00")
	addProduct(t, db, "p-by-farm", "f-hive", "Beeswax Candle", "hand poured", "Pantry", "2026-01-05 10:00:00")

	page, err := svc.Search(domain.Anonymous, services.SearchInput{Query: "Honey", Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"p-by-name", "p-by-desc", "p-by-farm"}
	got := pageIDs(page.Items)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rank order %v, want %v", got, want)
		}
	}
	if page.Items[0].Score <= page.Items[1].Score || page.Items[1].Score <= page.Items[2].Score {
		t.Fatalf("scores not strictly ordered: %d %d %d",
			page.Items[0].Score, page.Items[1].Score, page.Items[2].Score)
	}
}

func TestSearchRecencyFallback(t *testing.T) {
	db, svc := newCatalog(t)

	addProduct(t, db, "p-old", "f-rosa", "Winter Squash", "", "Gourds", "2026-01-01 10:00:00")
	addProduct(t, db, "p-mid", "f-rosa", "Acorn Squash", "", "Gourds", "2026-01-02 10:00:00")
	addProduct(t, db, "p-new", "f-rosa", "Delicata", "", "Gourds", "2026-01-03 10:00:00")
	// An update bumps the oldest row to the top of the no-query ordering.
	db.MustExec(`UPDATE products SET updated_at='2026-01-09 10:00:00' WHERE id='p-old'`)

	page, err := svc.Search(domain.Anonymous, services.SearchInput{Category: "Gourds", Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"p-old", "p-new", "p-mid"}
	got := pageIDs(page.Items)
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSearchVisibility(t *testing.T) {
	_, svc := newCatalog(t)

	// p-longan is seeded unavailable under f-sam.
	see := func(p domain.Principal) map[string]bool {
		t.Helper()
		page, err := svc.Search(p, services.SearchInput{Category: "Fruit", Limit: 10})
		if err != nil {
			t.Fatal(err)
		}
		out := map[string]bool{}
		for _, it := range page.Items {
			out[it.ID] = true
		}
		return out
	}

	if ids := see(domain.Anonymous); ids["p-longan"] || !ids["p-mango"] {
		t.Fatalf("anonymous sees %v", ids)
	}
	if ids := see(rosa); ids["p-longan"] {
		t.Fatalf("foreign farmer sees hidden listing: %v", ids)
	}
	if ids := see(sam); !ids["p-longan"] {
		t.Fatalf("owner cannot see own hidden listing: %v", ids)
	}
	if ids := see(admin); !ids["p-longan"] {
		t.Fatalf("admin cannot see hidden listing: %v", ids)
	}
}

func TestSearchExcludesTombstones(t *testing.T) {
	db, svc := newCatalog(t)
	if err := repos.NewProductRepo(db).Tombstone("p-mango"); err != nil {
		t.Fatal(err)
	}

	page, err := svc.Search(admin, services.SearchInput{Category: "Fruit", Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	for _, it := range page.Items {
		if it.ID == "p-mango" {
			t.Fatal("tombstoned listing surfaced in search")
		}
	}
}

func TestSearchLocationPrefix(t *testing.T) {
	_, svc := newCatalog(t)

	page, err := svc.Search(domain.Anonymous, services.SearchInput{Location: "Da", Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) == 0 {
		t.Fatal("no results for Da Lat prefix")
	}
	for _, it := range page.Items {
		if it.FarmerID != "f-rosa" {
			t.Fatalf("location filter leaked %s (%s)", it.ID, it.FarmLocation)
		}
	}
}

func TestSearchCursorPaginationStable(t *testing.T) {
	db, svc := newCatalog(t)

	const total = 7
	want := map[string]bool{}
	for i := 0; i < total; i++ {
		id := fmt.Sprintf("p-herb-%d", i)
		addProduct(t, db, id, "f-rosa", fmt.Sprintf("Herb %d", i), "", "Herbs",
			fmt.Sprintf("2026-02-0%d 10:00:00", i+1))
		want[id] = true
	}

	seen := map[string]bool{}
	cursor := ""
	pages := 0
	for {
		page, err := svc.Search(domain.Anonymous, services.SearchInput{Category: "Herbs", Cursor: cursor, Limit: 3})
		if err != nil {
			t.Fatal(err)
		}
		for _, it := range page.Items {
			if seen[it.ID] {
				t.Fatalf("duplicate %s across pages", it.ID)
			}
			seen[it.ID] = true
		}
		if pages == 0 {
			// A listing created mid-pagination sorts ahead of the cursor and
			// must not shift the remaining pages.
			addProduct(t, db, "p-herb-late", "f-rosa", "Late Herb", "", "Herbs", "2026-02-09 10:00:00")
		}
		pages++
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
		if pages > total {
			t.Fatal("pagination did not terminate")
		}
	}

	for id := range want {
		if !seen[id] {
			t.Fatalf("page walk omitted %s", id)
		}
	}
	if seen["p-herb-late"] {
		t.Fatal("mid-pagination insert leaked into an ongoing walk")
	}
}

func TestSearchBadCursor(t *testing.T) {
	_, svc := newCatalog(t)
	if _, err := svc.Search(domain.Anonymous, services.SearchInput{Cursor: "!!not-base64!!"}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestGetProductCountsViewsAndHidesTombstones(t *testing.T) {
	db, svc := newCatalog(t)

	p, err := svc.GetProduct("p-kale")
	if err != nil {
		t.Fatal(err)
	}
	if p.ViewCount != 1 {
		t.Fatalf("view_count=%d want 1", p.ViewCount)
	}
	if _, err := svc.GetProduct("p-kale"); err != nil {
		t.Fatal(err)
	}
	var n int
	if err := db.Get(&n, `SELECT view_count FROM products WHERE id='p-kale'`); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("persisted view_count=%d want 2", n)
	}

	if err := repos.NewProductRepo(db).Tombstone("p-kale"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetProduct("p-kale"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound for tombstone, got %v", err)
	}
}
