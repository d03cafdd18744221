// Package push fans live clinic events out to connected browsers: queue
// positions, appointment reminders, and refresh nudges.
package push

import (
	"net/http"
	"sync"

	"golang.org/x/net/websocket"

	"github.com/pediclinic/portal/internal/clinicapi"
	"github.com/pediclinic/portal/internal/observability/metrics"
	"github.com/pediclinic/portal/internal/queue"
	"github.com/pediclinic/portal/pkg/logging"
)

// Event is the envelope every downstream frame uses.
type Event struct {
	Type      string           `json:"type"` // "queue", "reminder", "refresh", "pong"
	Queue     *queue.Status    `json:"queue,omitempty"`
	Reminders []queue.Reminder `json:"reminders,omitempty"`
}

// inbound is what the browser sends; only pings today.
type inbound struct {
	Type string `json:"type"`
}

type wsConn struct {
	conn   *websocket.Conn
	target queue.PushTarget
	done   chan struct{}
}

// Hub tracks connected browser sessions and pushes projections to them.
// It is the Sink for the queue watcher.
type Hub struct {
	logger            *logging.Logger
	metrics           *metrics.PortalMetrics
	scanner           *queue.ReminderScanner
	minutesPerPatient int

	mu        sync.RWMutex
	sessions  map[string]*wsConn // session id -> active connection
	lastQueue []clinicapi.Appointment
}

// NewHub creates a hub.
func NewHub(scanner *queue.ReminderScanner, minutesPerPatient int, m *metrics.PortalMetrics, logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	if minutesPerPatient <= 0 {
		minutesPerPatient = 15
	}
	return &Hub{
		logger:            logger,
		metrics:           m,
		scanner:           scanner,
		minutesPerPatient: minutesPerPatient,
		sessions:          make(map[string]*wsConn),
	}
}

// Handler upgrades to WebSocket. resolve maps the request to its
// authenticated session; requests it rejects are closed immediately.
func (h *Hub) Handler(resolve func(r *http.Request) (queue.PushTarget, bool)) http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		target, ok := resolve(conn.Request())
		if !ok {
			_ = conn.Close()
			return
		}
		h.serve(conn, target)
	})
}

func (h *Hub) serve(conn *websocket.Conn, target queue.PushTarget) {
	wsc := &wsConn{conn: conn, target: target, done: make(chan struct{})}

	h.mu.Lock()
	if prev, ok := h.sessions[target.SessionID]; ok {
		// One live connection per session; the newer tab wins.
		_ = prev.conn.Close()
	}
	h.sessions[target.SessionID] = wsc
	snapshot := h.lastQueue
	h.mu.Unlock()

	h.metrics.PushSessionOpened()
	h.logger.Info("push: session connected", "session_id", target.SessionID)

	defer func() {
		h.mu.Lock()
		if h.sessions[target.SessionID] == wsc {
			delete(h.sessions, target.SessionID)
		}
		h.mu.Unlock()
		close(wsc.done)
		if h.scanner != nil {
			h.scanner.ForgetSession(target.SessionID)
		}
		h.metrics.PushSessionClosed()
		h.logger.Info("push: session disconnected", "session_id", target.SessionID)
	}()

	if snapshot != nil {
		st := queue.Project(snapshot, target.UserID, h.minutesPerPatient)
		_ = websocket.JSON.Send(conn, Event{Type: "queue", Queue: &st})
	}

	for {
		var msg inbound
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			return
		}
		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, Event{Type: "pong"})
		}
	}
}

// BroadcastQueue projects the snapshot per connected user and sends it.
func (h *Hub) BroadcastQueue(today []clinicapi.Appointment) {
	h.mu.Lock()
	h.lastQueue = today
	conns := make([]*wsConn, 0, len(h.sessions))
	for _, wsc := range h.sessions {
		conns = append(conns, wsc)
	}
	h.mu.Unlock()

	for _, wsc := range conns {
		st := queue.Project(today, wsc.target.UserID, h.minutesPerPatient)
		if err := websocket.JSON.Send(wsc.conn, Event{Type: "queue", Queue: &st}); err != nil {
			h.logger.Debug("push: queue send failed", "session_id", wsc.target.SessionID, "error", err)
		}
	}
}

// SendReminders delivers due reminders to one session.
func (h *Hub) SendReminders(target queue.PushTarget, reminders []queue.Reminder) {
	h.mu.RLock()
	wsc, ok := h.sessions[target.SessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	_ = websocket.JSON.Send(wsc.conn, Event{Type: "reminder", Reminders: reminders})
}

// Targets lists the connected sessions.
func (h *Hub) Targets() []queue.PushTarget {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]queue.PushTarget, 0, len(h.sessions))
	for _, wsc := range h.sessions {
		out = append(out, wsc.target)
	}
	return out
}

// BroadcastRefresh nudges every session to refetch its appointment views.
func (h *Hub) BroadcastRefresh() {
	h.mu.RLock()
	conns := make([]*wsConn, 0, len(h.sessions))
	for _, wsc := range h.sessions {
		conns = append(conns, wsc)
	}
	h.mu.RUnlock()

	for _, wsc := range conns {
		_ = websocket.JSON.Send(wsc.conn, Event{Type: "refresh"})
	}
}

// Disconnect force-closes a session's connection, typically on logout.
func (h *Hub) Disconnect(sessionID string) {
	h.mu.RLock()
	wsc, ok := h.sessions[sessionID]
	h.mu.RUnlock()
	if ok {
		_ = wsc.conn.Close()
	}
}
