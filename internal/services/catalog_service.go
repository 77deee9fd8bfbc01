package services

import (
	"encoding/base64"
	"encoding/json"

	"harvestlink/internal/domain"
	"harvestlink/internal/errs"
	"harvestlink/internal/repos"
)

// CatalogService answers public product discovery: detail reads and the
// filtered, relevance-ranked, cursor-paginated search.
type CatalogService struct {
	Products *repos.ProductRepo
}

func NewCatalogService(prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Products: prods}
}

type SearchInput struct {
	Query    string
	Category string
	Location string
	Cursor   string
	Limit    int
}

type SearchPage struct {
	Items      []repos.ProductSummary `json:"items"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}

// Search runs one page of the catalog query. The cursor pins the page
// boundary to the last row's rank key, so pages stay duplicate- and gap-free
// while products are created or updated in between fetches.
func (s *CatalogService) Search(p domain.Principal, in SearchInput) (SearchPage, error) {
	if in.Limit < 1 || in.Limit > 100 {
		in.Limit = 20
	}
	sp := repos.SearchParams{
		Query:    in.Query,
		Category: in.Category,
		Location: in.Location,
		Limit:    in.Limit,
	}
	if p.IsAdmin() {
		sp.ViewerAdmin = true
	}
	sp.ViewerFarmerID = p.FarmerID
	if in.Cursor != "" {
		cur, err := decodeCursor(in.Cursor)
		if err != nil {
			return SearchPage{}, errs.ErrValidation
		}
		sp.After = &cur
	}

	items, err := s.Products.Search(sp)
	if err != nil {
		return SearchPage{}, err
	}
	page := SearchPage{Items: items}
	if len(items) == in.Limit {
		last := items[len(items)-1]
		page.NextCursor = encodeCursor(repos.SearchCursor{
			Score:     last.Score,
			RankTS:    last.RankTS,
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

// GetProduct serves public product detail. Tombstoned listings read as
// absent; views are counted as a staleness/interest signal.
func (s *CatalogService) GetProduct(id string) (domain.Product, error) {
	p, err := s.Products.Get(id)
	if err != nil {
		return p, err
	}
	if !p.Active {
		return domain.Product{}, errs.ErrNotFound
	}
	_ = s.Products.IncrementViews(id)
	p.ViewCount++
	return p, nil
}

func encodeCursor(c repos.SearchCursor) string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeCursor(s string) (repos.SearchCursor, error) {
	var c repos.SearchCursor
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return c, err
	}
	return c, json.Unmarshal(b, &c)
}
