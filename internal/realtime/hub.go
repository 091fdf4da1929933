// Package realtime pushes board change notifications to WebSocket
// subscribers of a project.
package realtime

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

const (
	EventConnected = "connected"
	EventRefresh   = "refresh"
)

type Message struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	ProjectID string `json:"project_id"`
}

// Publisher is what the board services notify after a mutation.
type Publisher interface {
	PublishRefresh(projectID uuid.UUID)
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex // gorilla allows one concurrent writer
}

func (s *subscriber) write(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return fn()
}

type Hub struct {
	mu       sync.RWMutex
	projects map[uuid.UUID]map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{projects: make(map[uuid.UUID]map[*subscriber]struct{})}
}

// Subscribers returns the number of open connections for a project.
func (h *Hub) Subscribers(projectID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.projects[projectID])
}

func (h *Hub) add(projectID uuid.UUID, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.projects[projectID] == nil {
		h.projects[projectID] = make(map[*subscriber]struct{})
	}
	h.projects[projectID][s] = struct{}{}
}

func (h *Hub) remove(projectID uuid.UUID, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.projects[projectID]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(h.projects, projectID)
		}
	}
}

func (h *Hub) snapshot(projectID uuid.UUID) []*subscriber {
	h.mu.RLock()
	defer h.mu.RUnlock()

	subs := make([]*subscriber, 0, len(h.projects[projectID]))
	for s := range h.projects[projectID] {
		subs = append(subs, s)
	}
	return subs
}

// PublishRefresh tells every subscriber of projectID to reload the board.
// Connections that fail the write are dropped.
func (h *Hub) PublishRefresh(projectID uuid.UUID) {
	msg := Message{
		Type:      EventRefresh,
		Message:   "Board data updated",
		ProjectID: projectID.String(),
	}

	for _, s := range h.snapshot(projectID) {
		err := s.write(func() error { return s.conn.WriteJSON(msg) })
		if err != nil {
			log.Printf("Failed to broadcast refresh for project %s: %v", projectID, err)
			h.remove(projectID, s)
			s.conn.Close()
		}
	}
}

// Serve registers conn for projectID and blocks until the peer goes away.
func (h *Hub) Serve(conn *websocket.Conn, projectID uuid.UUID) {
	s := &subscriber{conn: conn}

	conn.SetReadLimit(maxMessageSize)
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	h.add(projectID, s)
	defer func() {
		h.remove(projectID, s)
		conn.Close()
		log.Printf("WebSocket connection closed for project %s", projectID)
	}()

	err := s.write(func() error {
		return conn.WriteJSON(Message{
			Type:      EventConnected,
			Message:   "WebSocket connection established",
			ProjectID: projectID.String(),
		})
	})
	if err != nil {
		log.Printf("Failed to send welcome message: %v", err)
		return
	}

	done := make(chan struct{})
	defer close(done)
	go h.ping(s, projectID, done)

	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return
		}
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for project %s: %v", projectID, err)
			}
			return
		}
	}
}

func (h *Hub) ping(s *subscriber, projectID uuid.UUID, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			err := s.write(func() error { return s.conn.WriteMessage(websocket.PingMessage, nil) })
			if err != nil {
				log.Printf("Ping failed for project %s: %v", projectID, err)
				return
			}
		}
	}
}
