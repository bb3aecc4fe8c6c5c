package publish

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	ws "nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const writeTimeout = 5 * time.Second

// Hub pushes publications to connected websocket clients.
type Hub struct {
	logger zerolog.Logger
	latest *Latest

	mu      sync.Mutex
	clients map[*ws.Conn]struct{}
}

// NewHub creates a hub. When latest is non-nil new clients first receive the
// current publication.
func NewHub(latest *Latest, logger zerolog.Logger) *Hub {
	return &Hub{
		logger:  logger.With().Str("component", "ws").Logger(),
		latest:  latest,
		clients: make(map[*ws.Conn]struct{}),
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and holds the connection until the client
// goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.Accept(w, r, &ws.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		h.logger.Error().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.Close(ws.StatusInternalError, "server error")

	ctx := conn.CloseRead(r.Context())

	if h.latest != nil {
		if p := h.latest.Get(); p != nil {
			if err := h.write(ctx, conn, p); err != nil {
				h.logger.Debug().Err(err).Msg("websocket write failed, client disconnected")
				return
			}
		}
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug().Str("remote", r.RemoteAddr).Msg("websocket client connected")

	<-ctx.Done()

	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close(ws.StatusNormalClosure, "")
}

func (h *Hub) Publish(ctx context.Context, p *Publication) error {
	h.mu.Lock()
	conns := make([]*ws.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := h.write(ctx, c, p); err != nil {
			h.logger.Debug().Err(err).Msg("dropping websocket client")
			h.mu.Lock()
			delete(h.clients, c)
			h.mu.Unlock()
			c.Close(ws.StatusInternalError, "write failed")
		}
	}
	return nil
}

func (h *Hub) write(ctx context.Context, conn *ws.Conn, p *Publication) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, p)
}
