// Package notify fans inquiry lifecycle events out to live dashboard
// sessions. The durable per-farmer log is the source of truth; this package
// only routes — an event is pushed here strictly after its log append
// committed, so no session can ever acknowledge an event the log does not
// hold.
package notify

import (
	"errors"
	"sync"

	"harvestlink/internal/domain"
)

var errSessionOverflow = errors.New("session buffer overflow")

// Log is the read side of the durable event log.
type Log interface {
	After(farmerID string, afterSeq int64, limit int) ([]domain.NotificationEvent, error)
	LatestSeq(farmerID string) (int64, error)
}

// Dispatcher tracks the live sessions per farmer and replays backlog on
// subscribe. Sessions of different farmers are fully isolated: routing is
// keyed by the farmer id the session authenticated as.
type Dispatcher struct {
	log     Log
	backlog int // max events replayed on resume before forcing a resync

	mu       sync.RWMutex
	sessions map[string]map[*Session]struct{}
}

func NewDispatcher(log Log, backlog int) *Dispatcher {
	if backlog < 1 {
		backlog = 500
	}
	return &Dispatcher{
		log:      log,
		backlog:  backlog,
		sessions: make(map[string]map[*Session]struct{}),
	}
}

// Subscribe registers a session for farmerID and replays every durable event
// with seq > lastAck. If the gap exceeds the backlog window the session gets
// a resync instruction instead of a replay. The session is registered before
// the replay query runs, so an event published concurrently is either found
// by the query or pushed live — the reorder buffer deduplicates the overlap.
func (d *Dispatcher) Subscribe(farmerID string, lastAck int64) (*Session, error) {
	s := newSession(farmerID, lastAck+1, d.backlog+64)

	d.mu.Lock()
	if _, ok := d.sessions[farmerID]; !ok {
		d.sessions[farmerID] = make(map[*Session]struct{})
	}
	d.sessions[farmerID][s] = struct{}{}
	d.mu.Unlock()

	latest, err := d.log.LatestSeq(farmerID)
	if err != nil {
		d.Unsubscribe(s)
		return nil, err
	}
	if latest-lastAck > int64(d.backlog) {
		s.resync(latest)
		return s, nil
	}
	missed, err := d.log.After(farmerID, lastAck, d.backlog)
	if err != nil {
		d.Unsubscribe(s)
		return nil, err
	}
	for _, ev := range missed {
		if !s.deliver(ev) {
			d.Unsubscribe(s)
			return nil, errSessionOverflow
		}
	}
	return s, nil
}

// Unsubscribe drops one session. Other sessions of the same farmer and the
// durable log are untouched.
func (d *Dispatcher) Unsubscribe(s *Session) {
	if s == nil {
		return
	}
	d.mu.Lock()
	if set, ok := d.sessions[s.FarmerID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(d.sessions, s.FarmerID)
		}
	}
	d.mu.Unlock()
	s.close()
}

// Publish pushes an already-persisted event to every live session of its
// farmer. A session that cannot keep up is dropped; it will replay from its
// watermark on reconnect.
func (d *Dispatcher) Publish(ev domain.NotificationEvent) {
	d.mu.RLock()
	var slow []*Session
	for s := range d.sessions[ev.FarmerID] {
		if !s.deliver(ev) {
			slow = append(slow, s)
		}
	}
	d.mu.RUnlock()
	for _, s := range slow {
		d.Unsubscribe(s)
	}
}
