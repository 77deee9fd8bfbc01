package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"harvestlink/internal/domain"
	"harvestlink/internal/errs"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT id,email,name,password_hash,role,active FROM users WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT id,email,name,password_hash,role,active FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// IsActive answers the identity collaborator's liveness check. Unknown users
// read as inactive.
func (r *UserRepo) IsActive(id string) (bool, error) {
	var active bool
	err := r.DB.Get(&active, `SELECT active FROM users WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return active, err
}

func (r *UserRepo) SetActive(id string, active bool) error {
	_, err := r.DB.Exec(`UPDATE users SET active=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`, active, id)
	return err
}
