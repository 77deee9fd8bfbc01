package handlers

import (
	"strconv"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"harvestlink/internal/domain"
	applog "harvestlink/internal/log"
	"harvestlink/internal/notify"
)

type WSHandler struct {
	Dispatcher *notify.Dispatcher
}

// Upgrade gates /ws/dashboard: only websocket upgrades from farmer
// principals get through. The principal middleware has already resolved the
// token (passed as ?token=... on the upgrade request).
func (h *WSHandler) Upgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		p := principal(c)
		if !p.IsFarmer() || p.FarmerID == "" {
			applog.Security(c, "ws.denied", nil)
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found or forbidden"})
		}
		return c.Next()
	}
}

// Serve pumps a farmer's event stream over one websocket connection. The
// client resumes with ?last_ack=N; everything after N is replayed in order
// before live events, and acks are {"ack": N} frames.
func (h *WSHandler) Serve(conn *websocket.Conn) {
	p, ok := conn.Locals("principal").(domain.Principal)
	if !ok || p.FarmerID == "" {
		_ = conn.Close()
		return
	}
	lastAck, _ := strconv.ParseInt(conn.Query("last_ack", "0"), 10, 64)

	sess, err := h.Dispatcher.Subscribe(p.FarmerID, lastAck)
	if err != nil {
		_ = conn.WriteJSON(fiber.Map{"error": "subscription failed"})
		_ = conn.Close()
		return
	}
	defer h.Dispatcher.Unsubscribe(sess)

	go func() {
		for msg := range sess.Messages() {
			if err := conn.WriteJSON(msg); err != nil {
				h.Dispatcher.Unsubscribe(sess)
				return
			}
		}
		_ = conn.Close()
	}()

	conn.SetReadLimit(512)
	for {
		var m struct {
			Ack int64 `json:"ack"`
		}
		if err := conn.ReadJSON(&m); err != nil {
			return
		}
		if m.Ack > 0 {
			sess.Acknowledge(m.Ack)
		}
	}
}
