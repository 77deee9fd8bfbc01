// Package authz is the single ownership guard consulted by every mutating
// or owner-scoped operation. Rules live in one declarative table keyed by
// (resource kind, action); new resource types are added as table entries.
package authz

import (
	"harvestlink/internal/domain"
	"harvestlink/internal/validate"
)

// Kind is the closed enumeration of guarded resource types.
type Kind string

const (
	KindProduct Kind = "product"
	KindFarmer  Kind = "farmer"
	KindInquiry Kind = "inquiry"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
	// ActionManage covers owner-scoped inquiry access: listing and status
	// transitions.
	ActionManage Action = "manage"
)

// Ref is a tagged reference to the resource under authorization, carrying
// only the ownership fields the rules read.
type Ref struct {
	Kind          Kind
	ID            string
	OwnerFarmerID string
	// ContactPhone is supplied for anonymous inquiry creation; it must be
	// verifiable for the create rule to pass.
	ContactPhone string
}

// Deny reasons. Handlers map all of them to the same opaque response so a
// denied caller cannot distinguish "forbidden" from "absent".
const (
	ReasonNotOwner            = "not owner"
	ReasonFarmerRoleRequired  = "farmer role required"
	ReasonContactUnverifiable = "contact phone not verifiable"
	ReasonUnknownResourceType = "unknown resource type"
)

type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision        { return Decision{Allowed: true} }
func deny(r string) Decision { return Decision{Reason: r} }

func (d Decision) Deny() bool { return !d.Allowed }

type ruleKey struct {
	kind   Kind
	action Action
}

type rule func(p domain.Principal, ref Ref) Decision

// ownerFarmer allows only the farmer owning the resource.
func ownerFarmer(p domain.Principal, ref Ref) Decision {
	if !p.IsFarmer() {
		return deny(ReasonFarmerRoleRequired)
	}
	if p.FarmerID == "" || p.FarmerID != ref.OwnerFarmerID {
		return deny(ReasonNotOwner)
	}
	return allow()
}

// inquiryCreate allows any non-anonymous principal, or an anonymous one
// supplying a verifiable contact phone.
func inquiryCreate(p domain.Principal, ref Ref) Decision {
	if !p.IsAnonymous() {
		return allow()
	}
	if _, ok := validate.Phone(ref.ContactPhone); ok {
		return allow()
	}
	return deny(ReasonContactUnverifiable)
}

var rules = map[ruleKey]rule{
	{KindProduct, ActionWrite}:  ownerFarmer,
	{KindProduct, ActionDelete}: ownerFarmer,
	{KindFarmer, ActionWrite}:   ownerFarmer,
	{KindInquiry, ActionManage}: ownerFarmer,
	{KindInquiry, ActionDelete}: ownerFarmer,
	{KindInquiry, ActionCreate}: inquiryCreate,
}

type Guard struct{}

func NewGuard() *Guard { return &Guard{} }

// Authorize decides allow/deny for one principal, action and resource. It is
// evaluated fresh on every call — ownership and roles can change between
// requests, so decisions are never cached.
func (g *Guard) Authorize(p domain.Principal, action Action, ref Ref) Decision {
	if p.IsAdmin() {
		return allow() // superuser escape hatch, audited at the handler
	}
	r, ok := rules[ruleKey{ref.Kind, action}]
	if !ok {
		return deny(ReasonUnknownResourceType)
	}
	return r(p, ref)
}
