// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/orientation_provider/internal/orientation"
)

const (
	hubClientBuffer = 8
	hubWriteTimeout = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// Hub keeps the latest estimate and streams estimates to websocket clients.
// Slow clients lose samples instead of blocking Publish.
type Hub struct {
	mu      sync.RWMutex
	last    orientation.Estimate
	have    bool
	clients map[string]chan orientation.Estimate
	closed  bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]chan orientation.Estimate)}
}

func (h *Hub) Publish(e orientation.Estimate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = e
	h.have = true
	for _, ch := range h.clients {
		select {
		case ch <- e:
		default:
		}
	}
}

// Latest returns the most recent estimate, if any.
func (h *Hub) Latest() (orientation.Estimate, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.have
}

// subscribe registers a client queue, primed with the latest estimate.
func (h *Hub) subscribe(id string) (<-chan orientation.Estimate, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	ch := make(chan orientation.Estimate, hubClientBuffer)
	if h.have {
		ch <- h.last
	}
	h.clients[id] = ch
	return ch, true
}

func (h *Hub) unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(ch)
	}
}

// Close disconnects every websocket client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, ch := range h.clients {
		delete(h.clients, id)
		close(ch)
	}
}

// Handler serves the JSON and websocket endpoints, plus static files from
// staticDir when it is not empty.
func (h *Hub) Handler(staticDir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/orientation", h.serveLatest)
	mux.HandleFunc("/ws/orientation", h.serveWS)
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}

func (h *Hub) serveLatest(w http.ResponseWriter, r *http.Request) {
	e, ok := h.Latest()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(NewEstimatePayload(e)); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	ch, ok := h.subscribe(id)
	if !ok {
		return
	}
	defer h.unsubscribe(id)
	log.Printf("web: client %s connected from %s", id, r.RemoteAddr)

	// Reads only detect the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(hubWriteTimeout))
			if err := conn.WriteJSON(NewEstimatePayload(e)); err != nil {
				log.Printf("web: client %s write error: %v", id, err)
				return
			}
		case <-gone:
			log.Printf("web: client %s disconnected", id)
			return
		}
	}
}
