package chat

import (
	"sync"
	"time"

	"opsdesk/middlewares"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	WS_WRITE_WAIT       = 10 * time.Second
	WS_PONG_WAIT        = 60 * time.Second
	WS_PING_PERIOD      = (WS_PONG_WAIT * 9) / 10
	WS_MAX_MESSAGE_SIZE = 16 * 1024
	WS_SEND_BUFFER      = 64
)

// Session is one authenticated websocket connection. Only writePump writes
// to conn.
type Session struct {
	ID     string
	Caller middlewares.Caller
	conn   *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newSession(conn *websocket.Conn, caller middlewares.Caller) *Session {
	return &Session{
		ID:     uuid.NewString(),
		Caller: caller,
		conn:   conn,
		send:   make(chan []byte, WS_SEND_BUFFER),
	}
}

// enqueue queues frame without blocking. It returns false when the session
// is closed or its buffer is full.
func (s *Session) enqueue(frame []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.send <- frame:
		return true
	default:
		return false
	}
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.send)
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(WS_PING_PERIOD)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(WS_WRITE_WAIT))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(WS_WRITE_WAIT))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
