package repos

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"harvestlink/internal/domain"
	"harvestlink/internal/errs"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `p.id, p.farmer_id, p.name, COALESCE(p.description,'') AS description,
  p.price, p.unit, COALESCE(p.category,'') AS category, COALESCE(p.image_url,'') AS image_url,
  p.available, p.active, p.view_count, p.created_at, COALESCE(p.updated_at,'') AS updated_at`

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products p WHERE p.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return p, errs.ErrNotFound
	}
	return p, err
}

func (r *ProductRepo) ListByFarmer(farmerID string, includeHidden bool) ([]domain.Product, error) {
	q := `SELECT ` + productCols + ` FROM products p WHERE p.farmer_id = ? AND p.active = 1`
	if !includeHidden {
		q += ` AND p.available = 1`
	}
	q += ` ORDER BY p.created_at DESC, p.id ASC`
	var out []domain.Product
	err := r.db.Select(&out, q, farmerID)
	return out, err
}

func (r *ProductRepo) Insert(p domain.Product) error {
	_, err := r.db.Exec(`
		INSERT INTO products(id, farmer_id, name, description, price, unit, category, image_url, available, active)
		VALUES (?,?,?,?,?,?,?,?,?,1)`,
		p.ID, p.FarmerID, p.Name, p.Description, p.Price, p.Unit, p.Category, p.ImageURL, p.Available)
	return err
}

func (r *ProductRepo) Update(p domain.Product) error {
	res, err := r.db.Exec(`
		UPDATE products
		SET name=?, description=?, price=?, unit=?, category=?, image_url=?, available=?,
		    updated_at=CURRENT_TIMESTAMP
		WHERE id=? AND active=1`,
		p.Name, p.Description, p.Price, p.Unit, p.Category, p.ImageURL, p.Available, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Tombstone hides a listing instead of deleting the row, so existing
// inquiries keep a resolvable product reference.
func (r *ProductRepo) Tombstone(id string) error {
	res, err := r.db.Exec(`UPDATE products SET active=0, available=0, updated_at=CURRENT_TIMESTAMP WHERE id=? AND active=1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// IncrementViews bumps the view counter; best-effort analytics signal.
func (r *ProductRepo) IncrementViews(id string) error {
	_, err := r.db.Exec(`UPDATE products SET view_count = view_count + 1 WHERE id=?`, id)
	return err
}

// SearchCursor pins a page boundary to the last-seen rank key so pagination
// stays stable under concurrent writes.
type SearchCursor struct {
	Score     int    `json:"s"`
	RankTS    string `json:"r"`
	CreatedAt string `json:"c"`
	ID        string `json:"i"`
}

type SearchParams struct {
	Query    string // lowercased free text; empty means recency ordering
	Category string
	Location string // exact or prefix match on the farm location
	// ViewerFarmerID lets an owner see their own unavailable listings;
	// ViewerAdmin lifts the availability filter entirely.
	ViewerFarmerID string
	ViewerAdmin    bool
	After          *SearchCursor
	Limit          int
}

type ProductSummary struct {
	domain.Product
	FarmName     string `db:"farm_name" json:"farm_name"`
	FarmLocation string `db:"farm_location" json:"farm_location"`
	Score        int    `db:"score" json:"-"`
	RankTS       string `db:"rank_ts" json:"-"`
}

// Search ranks by text relevance (name > description > farm name), falling
// back to update recency when no query is given; created_at desc then id asc
// break ties so the ordering is fully deterministic.
func (r *ProductRepo) Search(sp SearchParams) ([]ProductSummary, error) {
	where := `p.active = 1`
	args := map[string]any{
		"q":     strings.ToLower(strings.TrimSpace(sp.Query)),
		"limit": sp.Limit,
	}
	if !sp.ViewerAdmin {
		where += ` AND (p.available = 1 OR p.farmer_id = :viewer)`
		args["viewer"] = sp.ViewerFarmerID
	}
	if sp.Category != "" {
		where += ` AND p.category = :category`
		args["category"] = sp.Category
	}
	if sp.Location != "" {
		where += ` AND f.location LIKE :location || '%'`
		args["location"] = sp.Location
	}

	outer := `(:q = '' OR score > 0)`
	if sp.After != nil {
		outer += ` AND (score < :c_score
			OR (score = :c_score AND rank_ts < :c_rts)
			OR (score = :c_score AND rank_ts = :c_rts AND created_at < :c_ca)
			OR (score = :c_score AND rank_ts = :c_rts AND created_at = :c_ca AND id > :c_id))`
		args["c_score"] = sp.After.Score
		args["c_rts"] = sp.After.RankTS
		args["c_ca"] = sp.After.CreatedAt
		args["c_id"] = sp.After.ID
	}

	q := `
SELECT * FROM (
  SELECT ` + productCols + `,
    f.farm_name AS farm_name, COALESCE(f.location,'') AS farm_location,
    CASE WHEN :q = '' THEN 0 ELSE
      (CASE WHEN instr(lower(p.name), :q) > 0 THEN 4 ELSE 0 END
     + CASE WHEN instr(lower(COALESCE(p.description,'')), :q) > 0 THEN 2 ELSE 0 END
     + CASE WHEN instr(lower(f.farm_name), :q) > 0 THEN 1 ELSE 0 END)
    END AS score,
    CASE WHEN :q = '' THEN COALESCE(NULLIF(p.updated_at,''), p.created_at) ELSE '' END AS rank_ts
  FROM products p
  JOIN farmers f ON f.id = p.farmer_id
  WHERE ` + where + `
)
WHERE ` + outer + `
ORDER BY score DESC, rank_ts DESC, created_at DESC, id ASC
LIMIT :limit`

	bound, bargs, err := sqlx.Named(q, args)
	if err != nil {
		return nil, err
	}
	var out []ProductSummary
	err = r.db.Select(&out, r.db.Rebind(bound), bargs...)
	return out, err
}
