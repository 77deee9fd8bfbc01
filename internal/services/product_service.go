package services

import (
	"github.com/google/uuid"

	"harvestlink/internal/authz"
	"harvestlink/internal/domain"
	"harvestlink/internal/errs"
	"harvestlink/internal/repos"
	"harvestlink/internal/validate"
)

type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Unit        string
	Category    string
	ImageURL    string
	Available   bool
}

// ProductService handles farmer-owned listing mutations. Reads go through
// CatalogService; every mutation here re-consults the ownership guard.
type ProductService struct {
	Guard    *authz.Guard
	Products *repos.ProductRepo
}

func NewProductService(g *authz.Guard, prods *repos.ProductRepo) *ProductService {
	return &ProductService{Guard: g, Products: prods}
}

func (s *ProductService) validateInput(in ProductInput) (ProductInput, error) {
	name, ok := validate.Name(in.Name)
	if !ok {
		return in, errs.ErrValidation
	}
	in.Name = name
	if in.Price < 0 || in.Price > 1_000_000 {
		return in, errs.ErrValidation
	}
	if in.Unit == "" {
		in.Unit = "lb"
	}
	if _, ok := validate.Unit(in.Unit); !ok {
		return in, errs.ErrValidation
	}
	return in, nil
}

// Create adds a listing under the caller's own farm. Farmers only: even an
// admin needs a farmer profile to own products.
func (s *ProductService) Create(p domain.Principal, in ProductInput) (domain.Product, error) {
	if !p.IsFarmer() || p.FarmerID == "" {
		return domain.Product{}, errs.ErrForbidden
	}
	in, err := s.validateInput(in)
	if err != nil {
		return domain.Product{}, err
	}
	prod := domain.Product{
		ID:          uuid.NewString(),
		FarmerID:    p.FarmerID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Unit:        in.Unit,
		Category:    in.Category,
		ImageURL:    in.ImageURL,
		Available:   in.Available,
		Active:      true,
	}
	if err := s.Products.Insert(prod); err != nil {
		return domain.Product{}, err
	}
	return prod, nil
}

func (s *ProductService) Update(p domain.Principal, id string, in ProductInput) (domain.Product, error) {
	prod, err := s.Products.Get(id)
	if err != nil || !prod.Active {
		return domain.Product{}, errs.ErrNotFound
	}
	dec := s.Guard.Authorize(p, authz.ActionWrite, authz.Ref{Kind: authz.KindProduct, ID: prod.ID, OwnerFarmerID: prod.FarmerID})
	if dec.Deny() {
		return domain.Product{}, errs.ErrForbidden
	}
	in, err = s.validateInput(in)
	if err != nil {
		return domain.Product{}, err
	}
	prod.Name = in.Name
	prod.Description = in.Description
	prod.Price = in.Price
	prod.Unit = in.Unit
	prod.Category = in.Category
	prod.ImageURL = in.ImageURL
	prod.Available = in.Available
	if err := s.Products.Update(prod); err != nil {
		return domain.Product{}, err
	}
	return prod, nil
}

// Delete tombstones the listing so historical inquiries keep resolving.
func (s *ProductService) Delete(p domain.Principal, id string) error {
	prod, err := s.Products.Get(id)
	if err != nil || !prod.Active {
		return errs.ErrNotFound
	}
	dec := s.Guard.Authorize(p, authz.ActionDelete, authz.Ref{Kind: authz.KindProduct, ID: prod.ID, OwnerFarmerID: prod.FarmerID})
	if dec.Deny() {
		return errs.ErrForbidden
	}
	return s.Products.Tombstone(id)
}

// ListByFarmer is the public per-farm listing. The owner (and admins) also
// see listings toggled unavailable.
func (s *ProductService) ListByFarmer(p domain.Principal, farmerID string) ([]domain.Product, error) {
	includeHidden := p.IsAdmin() || (p.IsFarmer() && p.FarmerID == farmerID)
	return s.Products.ListByFarmer(farmerID, includeHidden)
}
