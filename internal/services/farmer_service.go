package services

import (
	"harvestlink/internal/authz"
	"harvestlink/internal/domain"
	"harvestlink/internal/errs"
	"harvestlink/internal/repos"
	"harvestlink/internal/validate"
)

type FarmerInput struct {
	FarmName    string
	FirstName   string
	LastName    string
	Location    string
	Phone       string
	Description string
}

type FarmerService struct {
	Guard     *authz.Guard
	Farmers   *repos.FarmerRepo
	Products  *repos.ProductRepo
	Inquiries *repos.InquiryRepo
}

func NewFarmerService(g *authz.Guard, farmers *repos.FarmerRepo, prods *repos.ProductRepo, inqs *repos.InquiryRepo) *FarmerService {
	return &FarmerService{Guard: g, Farmers: farmers, Products: prods, Inquiries: inqs}
}

func (s *FarmerService) Get(id string) (domain.Farmer, error) {
	return s.Farmers.Get(id)
}

func (s *FarmerService) Update(p domain.Principal, id string, in FarmerInput) (domain.Farmer, error) {
	f, err := s.Farmers.Get(id)
	if err != nil {
		return domain.Farmer{}, err
	}
	dec := s.Guard.Authorize(p, authz.ActionWrite, authz.Ref{Kind: authz.KindFarmer, ID: f.ID, OwnerFarmerID: f.ID})
	if dec.Deny() {
		return domain.Farmer{}, errs.ErrForbidden
	}
	name, ok := validate.Name(in.FarmName)
	if !ok {
		return domain.Farmer{}, errs.ErrValidation
	}
	if in.Phone != "" {
		phone, ok := validate.Phone(in.Phone)
		if !ok {
			return domain.Farmer{}, errs.ErrValidation
		}
		in.Phone = phone
	}
	f.FarmName = name
	f.FirstName = in.FirstName
	f.LastName = in.LastName
	f.Location = in.Location
	f.Phone = in.Phone
	f.Description = in.Description
	if err := s.Farmers.Update(f); err != nil {
		return domain.Farmer{}, err
	}
	return f, nil
}

// Dashboard bundles a farmer's profile, listings and inbox into one payload
// so the dashboard loads with a single round trip.
type Dashboard struct {
	Profile   domain.Farmer    `json:"profile"`
	Products  []domain.Product `json:"products"`
	Inquiries []domain.Inquiry `json:"inquiries"`
}

func (s *FarmerService) DashboardFor(p domain.Principal) (Dashboard, error) {
	if !p.IsFarmer() || p.FarmerID == "" {
		return Dashboard{}, errs.ErrForbidden
	}
	f, err := s.Farmers.Get(p.FarmerID)
	if err != nil {
		return Dashboard{}, err
	}
	prods, err := s.Products.ListByFarmer(p.FarmerID, true)
	if err != nil {
		return Dashboard{}, err
	}
	inqs, err := s.Inquiries.ListByFarmer(p.FarmerID)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{Profile: f, Products: prods, Inquiries: inqs}, nil
}
