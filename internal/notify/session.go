package notify

import (
	"sync"

	"harvestlink/internal/domain"
)

// Message types pushed to a dashboard session.
const (
	MessageEvent  = "event"
	MessageResync = "resync"
)

// Message is one unit of downstream delivery: a log event in sequence order,
// or an instruction to resynchronize via an ordinary query because the
// session's backlog exceeds the replay window.
type Message struct {
	Type      string                    `json:"type"`
	Event     *domain.NotificationEvent `json:"event,omitempty"`
	LatestSeq int64                     `json:"latest_seq,omitempty"`
}

// Session is one live dashboard connection of a farmer. Events reach the
// client strictly in increasing sequence order: anything arriving out of
// order is held in a small reorder buffer and released only when the gap
// closes, so the transport boundary never leaks reordering.
type Session struct {
	FarmerID string

	mu      sync.Mutex
	next    int64 // next sequence number owed to the client
	ack     int64 // highest sequence the client acknowledged
	pending map[int64]domain.NotificationEvent
	out     chan Message
	closed  bool
}

// buffer must hold a full backlog replay plus some live headroom so a
// replaying subscriber never trips the slow-consumer teardown.
func newSession(farmerID string, next int64, buffer int) *Session {
	return &Session{
		FarmerID: farmerID,
		next:     next,
		ack:      next - 1,
		pending:  make(map[int64]domain.NotificationEvent),
		out:      make(chan Message, buffer),
	}
}

// Messages is the stream the transport pumps to the client.
func (s *Session) Messages() <-chan Message { return s.out }

// Acknowledge advances the session watermark. It never moves backwards and
// never touches the shared durable log.
func (s *Session) Acknowledge(seq int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq > s.ack {
		s.ack = seq
	}
}

// Watermark returns the highest acknowledged sequence number.
func (s *Session) Watermark() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ack
}

// deliver feeds one event into the session. Duplicates below the delivery
// pointer are dropped; events ahead of it are buffered until the sequence is
// contiguous. Returns false when the session should be torn down (client too
// slow to drain its buffer).
func (s *Session) deliver(ev domain.NotificationEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if ev.Seq < s.next {
		return true // already delivered on this session
	}
	s.pending[ev.Seq] = ev
	for {
		next, ok := s.pending[s.next]
		if !ok {
			return true
		}
		select {
		case s.out <- Message{Type: MessageEvent, Event: &next}:
			delete(s.pending, s.next)
			s.next++
		default:
			return false
		}
	}
}

// resync tells the client to drop replay and refetch state via query; the
// delivery pointer jumps past the whole backlog.
func (s *Session) resync(latest int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.next = latest + 1
	select {
	case s.out <- Message{Type: MessageResync, LatestSeq: latest}:
	default:
	}
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.out)
	}
}
