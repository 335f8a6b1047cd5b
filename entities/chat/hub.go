package chat

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_sessions_active",
		Help: "Number of connected chat sessions",
	})

	messagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Chat messages relayed, by kind",
		},
		[]string{"kind"},
	)

	slowSessionsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_slow_sessions_dropped_total",
		Help: "Sessions disconnected because their outbound buffer was full",
	})
)

// Hub tracks which sessions are in which room.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*Session]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Session]struct{})}
}

func (h *Hub) Join(room string, s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Session]struct{})
		h.rooms[room] = members
	}
	members[s] = struct{}{}
}

// Leave removes s from every room and closes its outbound queue.
func (h *Hub) Leave(s *Session) {
	h.mu.Lock()
	for room, members := range h.rooms {
		delete(members, s)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	h.mu.Unlock()

	s.close()
}

// Broadcast queues frame for every session in room except skip. Sessions
// that cannot keep up are disconnected.
func (h *Hub) Broadcast(room string, frame []byte, skip *Session) {
	var slow []*Session

	h.mu.Lock()
	for s := range h.rooms[room] {
		if s == skip {
			continue
		}
		if !s.enqueue(frame) {
			slow = append(slow, s)
		}
	}
	h.mu.Unlock()

	for _, s := range slow {
		slowSessionsDropped.Inc()
		h.Leave(s)
		s.conn.Close()
	}
}

// Members returns how many sessions are in room.
func (h *Hub) Members(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}
