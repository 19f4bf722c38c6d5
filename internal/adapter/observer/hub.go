// Package observer streams farm snapshots to render clients over websocket.
package observer

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"dronefarm/internal/domain/farm"
)

const FrameType = "FARM"

// Frame is the only message a client receives.
type Frame struct {
	Type string        `json:"type"`
	Seq  uint64        `json:"seq"`
	Farm farm.Snapshot `json:"farm"`
}

// Hub fans farm snapshots out to every connected client. Publish never
// blocks: a client that falls behind loses frames, and the next frame it
// gets is a full snapshot anyway.
type Hub struct {
	log      *log.Logger
	upgrader websocket.Upgrader
	seq      atomic.Uint64
	nextID   atomic.Uint64

	mu     sync.Mutex
	subs   map[uint64]chan []byte
	latest []byte
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		log:  logger,
		subs: map[uint64]chan []byte{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Hub) Publish(snap farm.Snapshot) {
	b, err := json.Marshal(Frame{Type: FrameType, Seq: h.seq.Add(1), Farm: snap})
	if err != nil {
		h.logf("observer: marshal frame: %v", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = b
	for _, ch := range h.subs {
		select {
		case ch <- b:
		default:
		}
	}
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) subscribe() (uint64, chan []byte) {
	id := h.nextID.Add(1)
	ch := make(chan []byte, 16)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.latest != nil {
		ch <- h.latest
	}
	h.subs[id] = ch
	return id, ch
}

func (h *Hub) unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

func (h *Hub) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		id, out := h.subscribe()
		defer h.unsubscribe(id)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// Clients only listen; reads exist to notice the close.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func (h *Hub) logf(format string, args ...any) {
	if h.log != nil {
		h.log.Printf(format, args...)
	}
}
