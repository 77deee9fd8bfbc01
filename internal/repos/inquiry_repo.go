package repos

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"harvestlink/internal/domain"
	"harvestlink/internal/errs"
)

type InquiryRepo struct{ db *sqlx.DB }

func NewInquiryRepo(db *sqlx.DB) *InquiryRepo { return &InquiryRepo{db: db} }

const inquiryCols = `id, product_id, farmer_id, COALESCE(buyer_id,'') AS buyer_id,
  customer_name, contact_phone, message, status,
  created_at, COALESCE(updated_at,'') AS updated_at`

func (r *InquiryRepo) Get(id string) (domain.Inquiry, error) {
	var inq domain.Inquiry
	err := r.db.Get(&inq, `SELECT `+inquiryCols+` FROM inquiries WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return inq, errs.ErrNotFound
	}
	return inq, err
}

func (r *InquiryRepo) ListByFarmer(farmerID string) ([]domain.Inquiry, error) {
	var out []domain.Inquiry
	err := r.db.Select(&out, `
		SELECT `+inquiryCols+` FROM inquiries
		WHERE farmer_id = ?
		ORDER BY created_at DESC, id ASC`, farmerID)
	return out, err
}

// Insert persists a new inquiry and its "created" event atomically. The
// returned event carries the freshly allocated sequence number.
func (r *InquiryRepo) Insert(inq domain.Inquiry) (domain.NotificationEvent, error) {
	ev := domain.NotificationEvent{
		ID:        uuid.NewString(),
		FarmerID:  inq.FarmerID,
		InquiryID: inq.ID,
		Kind:      domain.EventCreated,
	}
	payload, _ := json.Marshal(map[string]string{
		"inquiry_id": inq.ID,
		"product_id": inq.ProductID,
		"status":     string(inq.Status),
		"customer":   inq.CustomerName,
	})
	ev.Payload = string(payload)

	tx, err := r.db.Beginx()
	if err != nil {
		return ev, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		INSERT INTO inquiries(id, product_id, farmer_id, buyer_id, customer_name, contact_phone, message, status)
		VALUES (?,?,?,NULLIF(?,''),?,?,?,?)`,
		inq.ID, inq.ProductID, inq.FarmerID, inq.BuyerID, inq.CustomerName, inq.ContactPhone, inq.Message, inq.Status); err != nil {
		return ev, err
	}
	if err := appendEvent(tx, &ev); err != nil {
		return ev, err
	}
	return ev, tx.Commit()
}

// TransitionCAS applies from -> to as a compare-and-set on the status column
// and appends the "status_changed" event in the same transaction. A guarded
// UPDATE with zero rows affected means another writer moved the inquiry
// first; the caller re-reads and decides between no-op and conflict.
func (r *InquiryRepo) TransitionCAS(inq domain.Inquiry, to domain.InquiryStatus) (domain.NotificationEvent, error) {
	ev := domain.NotificationEvent{
		ID:        uuid.NewString(),
		FarmerID:  inq.FarmerID,
		InquiryID: inq.ID,
		Kind:      domain.EventStatusChanged,
	}
	payload, _ := json.Marshal(map[string]string{
		"inquiry_id": inq.ID,
		"product_id": inq.ProductID,
		"from":       string(inq.Status),
		"status":     string(to),
	})
	ev.Payload = string(payload)

	tx, err := r.db.Beginx()
	if err != nil {
		return ev, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
		UPDATE inquiries SET status=?, updated_at=CURRENT_TIMESTAMP
		WHERE id=? AND status=?`, to, inq.ID, inq.Status)
	if err != nil {
		return ev, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ev, errs.ErrConflict
	}
	if err := appendEvent(tx, &ev); err != nil {
		return ev, err
	}
	return ev, tx.Commit()
}

func (r *InquiryRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM inquiries WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}
