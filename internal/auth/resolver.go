// Package auth resolves an opaque request credential into a Principal.
// It consumes only the identity collaborator's two calls: credential
// verification and the account liveness check.
package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"harvestlink/internal/domain"
	"harvestlink/internal/errs"
)

// Verifier validates a credential and yields the subject identity and role.
type Verifier interface {
	VerifyCredential(token string) (id string, role domain.Role, err error)
}

// ActivityStore answers whether an account is still active.
type ActivityStore interface {
	IsActive(id string) (bool, error)
}

// Resolver is a pure lookup: no side effects, safe to run on every request.
type Resolver struct {
	Verify   Verifier
	Accounts ActivityStore
}

func NewResolver(v Verifier, accounts ActivityStore) *Resolver {
	return &Resolver{Verify: v, Accounts: accounts}
}

// Resolve maps a credential to a Principal. An empty credential resolves to
// the anonymous principal; a bad one fails with ErrInvalidCredential and a
// deactivated account with ErrInactiveAccount.
func (r *Resolver) Resolve(credential string) (domain.Principal, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return domain.Anonymous, nil
	}
	id, role, err := r.Verify.VerifyCredential(credential)
	if err != nil {
		return domain.Principal{}, err
	}
	active, err := r.Accounts.IsActive(id)
	if err != nil {
		return domain.Principal{}, err
	}
	if !active {
		return domain.Principal{}, errs.ErrInactiveAccount
	}
	return domain.Principal{ID: id, Role: role, Active: true}, nil
}

// JWTVerifier checks HS256 bearer tokens minted by the identity collaborator.
type JWTVerifier struct {
	Secret []byte
}

func (v *JWTVerifier) VerifyCredential(token string) (string, domain.Role, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errs.ErrInvalidCredential
		}
		return v.Secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", "", errs.ErrInvalidCredential
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", "", errs.ErrInvalidCredential
	}
	role := domain.RoleUser
	if raw, ok := claims["role"].(string); ok {
		switch domain.Role(raw) {
		case domain.RoleUser, domain.RoleFarmer, domain.RoleAdmin:
			role = domain.Role(raw)
		default:
			return "", "", errs.ErrInvalidCredential
		}
	}
	return sub, role, nil
}
