package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"harvestlink/internal/domain"
	"harvestlink/internal/errs"
)

type FarmerRepo struct{ db *sqlx.DB }

func NewFarmerRepo(db *sqlx.DB) *FarmerRepo { return &FarmerRepo{db: db} }

const farmerCols = `id, user_id, farm_name,
  COALESCE(first_name,'') AS first_name, COALESCE(last_name,'') AS last_name,
  COALESCE(location,'') AS location, COALESCE(phone,'') AS phone,
  COALESCE(description,'') AS description,
  created_at, COALESCE(updated_at,'') AS updated_at`

func (r *FarmerRepo) Get(id string) (domain.Farmer, error) {
	var f domain.Farmer
	err := r.db.Get(&f, `SELECT `+farmerCols+` FROM farmers WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return f, errs.ErrNotFound
	}
	return f, err
}

// ByUserID resolves the farmer profile owned by a user account, if any.
func (r *FarmerRepo) ByUserID(userID string) (domain.Farmer, error) {
	var f domain.Farmer
	err := r.db.Get(&f, `SELECT `+farmerCols+` FROM farmers WHERE user_id=?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return f, errs.ErrNotFound
	}
	return f, err
}

func (r *FarmerRepo) Update(f domain.Farmer) error {
	res, err := r.db.Exec(`
		UPDATE farmers
		SET farm_name=?, first_name=?, last_name=?, location=?, phone=?, description=?,
		    updated_at=CURRENT_TIMESTAMP
		WHERE id=?`,
		f.FarmName, f.FirstName, f.LastName, f.Location, f.Phone, f.Description, f.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}
