package push

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pediclinic/portal/pkg/logging"
)

// upstreamEvent is one frame from the clinic's event feed.
type upstreamEvent struct {
	Event string `json:"event"`
}

// EventAppointmentsUpdated is the feed's signal that the schedule changed.
const EventAppointmentsUpdated = "appointments:updated"

// Upstream maintains a WebSocket subscription to the clinic's event feed
// and invokes onEvent for every named event. The connection reconnects
// with doubling backoff, capped, and stops with the context.
type Upstream struct {
	url          string
	onEvent      func(ctx context.Context, event string)
	logger       *logging.Logger
	dialer       *websocket.Dialer
	backoffBase  time.Duration
	backoffLimit time.Duration
}

// NewUpstream creates the feed subscriber. url may be empty, in which
// case Run returns immediately and the portal relies on polling alone.
func NewUpstream(url string, backoffBase, backoffLimit time.Duration, onEvent func(ctx context.Context, event string), logger *logging.Logger) *Upstream {
	if logger == nil {
		logger = logging.Default()
	}
	if backoffBase <= 0 {
		backoffBase = time.Second
	}
	if backoffLimit < backoffBase {
		backoffLimit = 30 * time.Second
	}
	return &Upstream{
		url:          url,
		onEvent:      onEvent,
		logger:       logger,
		dialer:       &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		backoffBase:  backoffBase,
		backoffLimit: backoffLimit,
	}
}

// Run connects and reads until the context is cancelled.
func (u *Upstream) Run(ctx context.Context) {
	if u.url == "" {
		u.logger.Info("push: event feed disabled, polling only")
		return
	}

	backoff := u.backoffBase
	for {
		if ctx.Err() != nil {
			return
		}
		conn, _, err := u.dialer.DialContext(ctx, u.url, nil)
		if err != nil {
			u.logger.Warn("push: event feed dial failed", "url", u.url, "backoff", backoff, "error", err)
			if !sleep(ctx, backoff) {
				return
			}
			backoff = min(backoff*2, u.backoffLimit)
			continue
		}

		u.logger.Info("push: event feed connected", "url", u.url)
		backoff = u.backoffBase
		u.read(ctx, conn)
		_ = conn.Close()
	}
}

func (u *Upstream) read(ctx context.Context, conn *websocket.Conn) {
	// Unblock ReadMessage when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			u.logger.Warn("push: event feed read failed", "error", err)
			return
		}
		var ev upstreamEvent
		if err := json.Unmarshal(data, &ev); err != nil || ev.Event == "" {
			continue
		}
		if u.onEvent != nil {
			u.onEvent(ctx, ev.Event)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
