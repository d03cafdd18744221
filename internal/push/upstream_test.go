package push

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpstreamInvokesCallbackOnEvent(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		require.NoError(t, conn.WriteJSON(map[string]string{"event": EventAppointmentsUpdated}))
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	var mu sync.Mutex
	var events []string
	got := make(chan struct{}, 1)
	u := NewUpstream(
		"ws"+strings.TrimPrefix(srv.URL, "http"),
		10*time.Millisecond, 100*time.Millisecond,
		func(ctx context.Context, event string) {
			mu.Lock()
			events = append(events, event)
			mu.Unlock()
			select {
			case got <- struct{}{}:
			default:
			}
		},
		nil,
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		u.Run(ctx)
		close(done)
	}()

	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, events, EventAppointmentsUpdated)
}

func TestUpstreamDisabledWithoutURL(t *testing.T) {
	u := NewUpstream("", time.Second, time.Minute, nil, nil)

	done := make(chan struct{})
	go func() {
		u.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run must return immediately without a feed URL")
	}
}

func TestUpstreamReconnectsAfterFailure(t *testing.T) {
	// No server listening: every dial fails and Run keeps retrying until
	// the context ends.
	u := NewUpstream("ws://127.0.0.1:1/feed", 5*time.Millisecond, 20*time.Millisecond, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		u.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run must stop when the context ends")
	}
}
