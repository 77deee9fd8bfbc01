package services

import (
	"errors"

	"github.com/google/uuid"

	"harvestlink/internal/authz"
	"harvestlink/internal/domain"
	"harvestlink/internal/errs"
	applog "harvestlink/internal/log"
	"harvestlink/internal/notify"
	"harvestlink/internal/repos"
	"harvestlink/internal/validate"
)

type CreateInquiryInput struct {
	ProductID    string
	CustomerName string
	ContactPhone string
	Message      string
}

// InquiryService owns the inquiry lifecycle: creation and the role-gated
// status state machine. Every accepted mutation appends exactly one event to
// the owning farmer's durable log before any live push happens.
type InquiryService struct {
	Guard      *authz.Guard
	Inquiries  *repos.InquiryRepo
	Products   *repos.ProductRepo
	Dispatcher *notify.Dispatcher
	Mailer     Mailer
}

func NewInquiryService(g *authz.Guard, inqs *repos.InquiryRepo, prods *repos.ProductRepo, d *notify.Dispatcher, m Mailer) *InquiryService {
	return &InquiryService{Guard: g, Inquiries: inqs, Products: prods, Dispatcher: d, Mailer: m}
}

// Create validates the contact and the product, persists the inquiry with
// status=new and the farmer id frozen from the product at this instant, and
// emits one "created" event.
func (s *InquiryService) Create(p domain.Principal, in CreateInquiryInput) (domain.Inquiry, error) {
	dec := s.Guard.Authorize(p, authz.ActionCreate, authz.Ref{Kind: authz.KindInquiry, ContactPhone: in.ContactPhone})
	if dec.Deny() {
		return domain.Inquiry{}, errs.ErrForbidden
	}
	phone, ok := validate.Phone(in.ContactPhone)
	if !ok {
		return domain.Inquiry{}, errs.ErrValidation
	}
	name, ok := validate.Name(in.CustomerName)
	if !ok {
		return domain.Inquiry{}, errs.ErrValidation
	}
	msg, ok := validate.Message(in.Message)
	if !ok {
		return domain.Inquiry{}, errs.ErrValidation
	}

	prod, err := s.Products.Get(in.ProductID)
	if err != nil || !prod.Active || !prod.Available {
		return domain.Inquiry{}, errs.ErrValidation
	}

	inq := domain.Inquiry{
		ID:           uuid.NewString(),
		ProductID:    prod.ID,
		FarmerID:     prod.FarmerID,
		CustomerName: name,
		ContactPhone: phone,
		Message:      msg,
		Status:       domain.StatusNew,
	}
	if !p.IsAnonymous() {
		inq.BuyerID = p.ID
	}

	ev, err := s.Inquiries.Insert(inq)
	if err != nil {
		return domain.Inquiry{}, err
	}
	s.publish(ev)
	return inq, nil
}

// ListForFarmer returns a farmer's inbox; owner or admin only.
func (s *InquiryService) ListForFarmer(p domain.Principal, farmerID string) ([]domain.Inquiry, error) {
	dec := s.Guard.Authorize(p, authz.ActionManage, authz.Ref{Kind: authz.KindInquiry, OwnerFarmerID: farmerID})
	if dec.Deny() {
		return nil, errs.ErrForbidden
	}
	return s.Inquiries.ListByFarmer(farmerID)
}

// View fetches one inquiry for its owning farmer and applies the implicit
// new -> viewed edge on first read. Losing the race to another reader is
// fine: the inquiry already left new.
func (s *InquiryService) View(p domain.Principal, id string) (domain.Inquiry, error) {
	inq, err := s.Inquiries.Get(id)
	if err != nil {
		return domain.Inquiry{}, err
	}
	dec := s.Guard.Authorize(p, authz.ActionManage, authz.Ref{Kind: authz.KindInquiry, ID: inq.ID, OwnerFarmerID: inq.FarmerID})
	if dec.Deny() {
		return domain.Inquiry{}, errs.ErrForbidden
	}
	if inq.Status != domain.StatusNew {
		return inq, nil
	}
	ev, err := s.Inquiries.TransitionCAS(inq, domain.StatusViewed)
	if err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return s.Inquiries.Get(id)
		}
		return domain.Inquiry{}, err
	}
	s.publish(ev)
	inq.Status = domain.StatusViewed
	return inq, nil
}

// Transition applies one edge of the status graph. Re-requesting the current
// status is an idempotent no-op success with no event; an illegal edge fails
// with InvalidTransition and no write; a lost compare-and-set race surfaces
// as ErrConflict unless the winner reached the same target.
func (s *InquiryService) Transition(p domain.Principal, id string, to domain.InquiryStatus) (domain.Inquiry, error) {
	if !to.Valid() {
		return domain.Inquiry{}, errs.ErrValidation
	}
	inq, err := s.Inquiries.Get(id)
	if err != nil {
		return domain.Inquiry{}, err
	}
	dec := s.Guard.Authorize(p, authz.ActionManage, authz.Ref{Kind: authz.KindInquiry, ID: inq.ID, OwnerFarmerID: inq.FarmerID})
	if dec.Deny() {
		return domain.Inquiry{}, errs.ErrForbidden
	}
	if inq.Status == to {
		return inq, nil
	}
	if !inq.Status.CanTransitionTo(to) {
		return domain.Inquiry{}, errs.InvalidTransition(string(inq.Status), string(to))
	}

	ev, err := s.Inquiries.TransitionCAS(inq, to)
	if err != nil {
		if errors.Is(err, errs.ErrConflict) {
			cur, gerr := s.Inquiries.Get(id)
			if gerr == nil && cur.Status == to {
				return cur, nil // someone else already applied this edge
			}
			return domain.Inquiry{}, errs.ErrConflict
		}
		return domain.Inquiry{}, err
	}
	s.publish(ev)
	inq.Status = to
	return inq, nil
}

// Delete removes an inquiry; owning farmer or admin only.
func (s *InquiryService) Delete(p domain.Principal, id string) error {
	inq, err := s.Inquiries.Get(id)
	if err != nil {
		return err
	}
	dec := s.Guard.Authorize(p, authz.ActionDelete, authz.Ref{Kind: authz.KindInquiry, ID: inq.ID, OwnerFarmerID: inq.FarmerID})
	if dec.Deny() {
		return errs.ErrForbidden
	}
	return s.Inquiries.Delete(id)
}

// publish pushes a committed event to live sessions and the best-effort
// email side channel. Neither may fail the underlying transition.
func (s *InquiryService) publish(ev domain.NotificationEvent) {
	if s.Dispatcher != nil {
		s.Dispatcher.Publish(ev)
	}
	if s.Mailer != nil {
		go func() {
			if err := s.Mailer.NotifyInquiry(ev); err != nil {
				applog.Error(nil, "notify.email.fail", err, map[string]any{"event": ev.ID, "farmer": ev.FarmerID})
			}
		}()
	}
}
