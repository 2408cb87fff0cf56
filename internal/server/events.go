package server

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"CanvasBoard/internal/state"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 16
)

// subscriber is one websocket watching one session.
type subscriber struct {
	conn *websocket.Conn
	send chan state.Event
}

// Hub fans session change events out to websocket subscribers.
type Hub struct {
	subs map[string]map[*subscriber]bool
	mu   sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[*subscriber]bool),
	}
}

func (h *Hub) add(sessionID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[*subscriber]bool)
	}
	h.subs[sessionID][sub] = true
	log.Printf("[EVENTS] Subscriber %s joined %s", sub.conn.RemoteAddr(), sessionID)
}

func (h *Hub) remove(sessionID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sessionID][sub]; !ok {
		return
	}
	delete(h.subs[sessionID], sub)
	if len(h.subs[sessionID]) == 0 {
		delete(h.subs, sessionID)
	}
	close(sub.send)
	log.Printf("[EVENTS] Subscriber %s left %s", sub.conn.RemoteAddr(), sessionID)
}

// Publish queues ev for every subscriber of its session. A subscriber whose
// queue is full is dropped.
func (h *Hub) Publish(ev state.Event) {
	h.mu.RLock()
	var slow []*subscriber
	for sub := range h.subs[ev.SessionID] {
		select {
		case sub.send <- ev:
		default:
			slow = append(slow, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range slow {
		log.Printf("[EVENTS] Dropping slow subscriber %s", sub.conn.RemoteAddr())
		h.remove(ev.SessionID, sub)
	}
}

// Count reports the subscribers of a session.
func (h *Hub) Count(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sessionID])
}

// serve pumps events to conn until it closes. It blocks.
func (h *Hub) serve(sessionID string, conn *websocket.Conn, hello state.Event) {
	sub := &subscriber{conn: conn, send: make(chan state.Event, sendBuffer)}
	sub.send <- hello
	h.add(sessionID, sub)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer conn.Close()
	defer h.remove(sessionID, sub)
	for {
		select {
		case ev, ok := <-sub.send:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				log.Printf("[EVENTS] Error sending to %s: %v", conn.RemoteAddr(), err)
				return
			}
		case <-done:
			return
		}
	}
}
