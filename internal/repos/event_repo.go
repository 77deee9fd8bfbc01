package repos

import (
	"github.com/jmoiron/sqlx"

	"harvestlink/internal/domain"
)

// EventRepo reads the per-farmer durable notification log. Appends happen
// inside inquiry transactions (see appendEvent) so an inquiry write and its
// event are atomic.
type EventRepo struct{ db *sqlx.DB }

func NewEventRepo(db *sqlx.DB) *EventRepo { return &EventRepo{db: db} }

// appendEvent allocates the next per-farmer sequence number and inserts the
// event within the caller's transaction. The (farmer_id, seq) primary key
// makes a racing allocation fail the transaction instead of forking the log.
func appendEvent(tx *sqlx.Tx, ev *domain.NotificationEvent) error {
	if err := tx.Get(&ev.Seq, `SELECT COALESCE(MAX(seq),0)+1 FROM events WHERE farmer_id=?`, ev.FarmerID); err != nil {
		return err
	}
	_, err := tx.Exec(`
		INSERT INTO events(farmer_id, seq, id, inquiry_id, kind, payload)
		VALUES (?,?,?,?,?,?)`,
		ev.FarmerID, ev.Seq, ev.ID, ev.InquiryID, ev.Kind, ev.Payload)
	return err
}

const eventCols = `id, farmer_id, inquiry_id, kind, payload, seq, created_at`

// After returns up to limit events for a farmer with seq > afterSeq, in
// sequence order.
func (r *EventRepo) After(farmerID string, afterSeq int64, limit int) ([]domain.NotificationEvent, error) {
	var out []domain.NotificationEvent
	err := r.db.Select(&out, `
		SELECT `+eventCols+` FROM events
		WHERE farmer_id = ? AND seq > ?
		ORDER BY seq ASC
		LIMIT ?`, farmerID, afterSeq, limit)
	return out, err
}

// LatestSeq returns the highest sequence number in a farmer's log (0 if the
// log is empty).
func (r *EventRepo) LatestSeq(farmerID string) (int64, error) {
	var seq int64
	err := r.db.Get(&seq, `SELECT COALESCE(MAX(seq),0) FROM events WHERE farmer_id=?`, farmerID)
	return seq, err
}
