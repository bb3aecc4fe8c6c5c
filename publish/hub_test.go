package publish

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	ws "nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func dialHub(t *testing.T, ctx context.Context, h *Hub) *ws.Conn {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(ws.StatusNormalClosure, "") })
	return conn
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, h.Clients())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_Broadcast(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h := NewHub(nil, zerolog.Nop())
	conn := dialHub(t, ctx, h)
	waitForClients(t, h, 1)

	if err := h.Publish(ctx, &Publication{ID: "cycle-1", Matched: 2}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	var got Publication
	if err := wsjson.Read(ctx, conn, &got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.ID != "cycle-1" || got.Matched != 2 {
		t.Errorf("unexpected publication: %+v", got)
	}
}

func TestHub_SendsLatestOnConnect(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	latest := NewLatest()
	_ = latest.Publish(ctx, &Publication{ID: "before"})

	h := NewHub(latest, zerolog.Nop())
	conn := dialHub(t, ctx, h)

	var got Publication
	if err := wsjson.Read(ctx, conn, &got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.ID != "before" {
		t.Errorf("expected latest publication on connect, got %q", got.ID)
	}
}
