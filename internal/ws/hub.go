package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"voltswap/internal/models"
)

const (
	writeTimeout   = 5 * time.Second
	notifyBacklog  = 64
	clientSendSize = 8
)

// GridFetcher supplies the snapshot pushed to subscribers.
type GridFetcher interface {
	FetchGrid(ctx context.Context, pillarID string, rows, cols int) (*models.SlotGrid, *models.Pillar, error)
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub pushes refreshed pillar grids to subscribed admin consoles after every
// coordinator transition. Broadcasts are decoupled from the coordinator via a
// buffered notify channel so a slow subscriber never blocks a swap.
type Hub struct {
	fetcher GridFetcher
	logger  *zap.Logger
	notify  chan string

	mu      sync.RWMutex
	pillars map[string]map[*client]struct{}
}

// NewHub builds the hub.
func NewHub(fetcher GridFetcher, logger *zap.Logger) *Hub {
	return &Hub{
		fetcher: fetcher,
		logger:  logger,
		notify:  make(chan string, notifyBacklog),
		pillars: make(map[string]map[*client]struct{}),
	}
}

// GridChanged queues a broadcast for the pillar. Never blocks.
func (h *Hub) GridChanged(pillarID string) {
	select {
	case h.notify <- pillarID:
	default:
		h.logger.Warn("grid notify backlog full, dropping update", zap.String("pillar_id", pillarID))
	}
}

// Run drains the notify channel until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case pillarID := <-h.notify:
			h.broadcast(ctx, pillarID)
		}
	}
}

// Subscribe registers a websocket connection for a pillar's updates and
// starts its pumps. The connection is dropped when either side fails.
func (h *Hub) Subscribe(pillarID string, conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, clientSendSize)}

	h.mu.Lock()
	subs, ok := h.pillars[pillarID]
	if !ok {
		subs = make(map[*client]struct{})
		h.pillars[pillarID] = subs
	}
	subs[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(pillarID, c)
	go h.readPump(pillarID, c)

	// Push the current snapshot so the subscriber does not wait for the
	// next transition.
	h.GridChanged(pillarID)
}

func (h *Hub) writePump(pillarID string, c *client) {
	defer c.conn.Close()
	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Info("subscriber write failed, dropping",
				zap.String("pillar_id", pillarID), zap.Error(err))
			h.unsubscribe(pillarID, c)
			return
		}
	}
}

// readPump discards inbound frames and detects the client going away.
func (h *Hub) readPump(pillarID string, c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.unsubscribe(pillarID, c)
			return
		}
	}
}

func (h *Hub) unsubscribe(pillarID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.pillars[pillarID]
	if !ok {
		return
	}
	if _, present := subs[c]; !present {
		return
	}
	delete(subs, c)
	if len(subs) == 0 {
		delete(h.pillars, pillarID)
	}
	close(c.send)
}

func (h *Hub) broadcast(ctx context.Context, pillarID string) {
	h.mu.RLock()
	count := len(h.pillars[pillarID])
	h.mu.RUnlock()
	if count == 0 {
		return
	}

	grid, pillar, err := h.fetcher.FetchGrid(ctx, pillarID, 0, 0)
	if err != nil {
		h.logger.Warn("grid broadcast fetch failed", zap.String("pillar_id", pillarID), zap.Error(err))
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"type":   "grid",
		"pillar": pillar,
		"grid":   grid,
	})
	if err != nil {
		h.logger.Error("grid broadcast encode failed", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.pillars[pillarID] {
		select {
		case c.send <- payload:
		default:
			h.logger.Warn("subscriber backlog full, skipping update", zap.String("pillar_id", pillarID))
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, subs := range h.pillars {
		for c := range subs {
			close(c.send)
		}
	}
	h.pillars = make(map[string]map[*client]struct{})
}
