package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"opsdesk/entities/users"
	"opsdesk/identity"
	"opsdesk/schemas"
	"opsdesk/utils"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type memoryStore struct {
	mu       sync.Mutex
	messages []schemas.Message
}

func (s *memoryStore) Insert(_ context.Context, msg *schemas.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.ID = bson.NewObjectID()
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *memoryStore) RecentInRoom(_ context.Context, room string, limit int64) ([]schemas.Message, error) {
	return s.recent(limit, func(m schemas.Message) bool { return !m.IsPrivate && m.Room == room }), nil
}

func (s *memoryStore) RecentBetween(_ context.Context, a, b bson.ObjectID, limit int64) ([]schemas.Message, error) {
	return s.recent(limit, func(m schemas.Message) bool {
		if !m.IsPrivate || m.Recipient == nil {
			return false
		}
		return (m.Sender == a && *m.Recipient == b) || (m.Sender == b && *m.Recipient == a)
	}), nil
}

func (s *memoryStore) recent(limit int64, match func(schemas.Message) bool) []schemas.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []schemas.Message{}
	for _, m := range s.messages {
		if match(m) {
			out = append(out, m)
		}
	}
	if int64(len(out)) > limit {
		out = out[int64(len(out))-limit:]
	}
	return out
}

type wireUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type wireMessage struct {
	Content   string    `json:"content"`
	Room      string    `json:"room"`
	IsPrivate bool      `json:"isPrivate"`
	Sender    wireUser  `json:"sender"`
	Recipient *wireUser `json:"recipient"`
}

type harness struct {
	srv    *httptest.Server
	store  *memoryStore
	users  *users.MemoryStore
	signer *identity.TokenSigner
	relay  *Relay
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:  &memoryStore{},
		users:  users.NewMemoryStore(),
		signer: identity.NewTokenSigner("test-secret", time.Hour),
	}
	h.relay = NewRelay(h.store, h.users, h.signer, nil, utils.DiscardLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/chat", h.relay.ServeWS)
	mux.HandleFunc("GET /api/chat/messages", h.relay.GetMessages)
	h.srv = httptest.NewServer(mux)
	t.Cleanup(h.srv.Close)
	return h
}

func (h *harness) user(t *testing.T, name string) (schemas.User, string) {
	t.Helper()
	u := schemas.User{Username: name, Email: name + "@example.com", Role: schemas.USERS_ROLE_STAFF}
	require.NoError(t, h.users.Insert(context.Background(), &u))
	token, err := h.signer.Issue(u.ID, u.Role)
	require.NoError(t, err)
	return u, token
}

func (h *harness) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/ws/chat?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func readMessage(t *testing.T, conn *websocket.Conn, event string) wireMessage {
	t.Helper()
	env := readEvent(t, conn)
	require.Equal(t, event, env.Event)
	var msg wireMessage
	require.NoError(t, json.Unmarshal(env.Data, &msg))
	return msg
}

func readList(t *testing.T, conn *websocket.Conn, event string) []wireMessage {
	t.Helper()
	env := readEvent(t, conn)
	require.Equal(t, event, env.Event)
	var list []wireMessage
	require.NoError(t, json.Unmarshal(env.Data, &list))
	return list
}

func emit(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Envelope{Event: event, Data: raw}))
}

func TestServeWS_RejectsMissingToken(t *testing.T) {
	h := newHarness(t)

	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/ws/chat"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(url+"?token=garbage", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServeWS_AcceptsBearerHeader(t *testing.T) {
	h := newHarness(t)
	_, token := h.user(t, "ana")

	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Authorization": {"Bearer " + token}})
	require.NoError(t, err)
	defer conn.Close()

	assert.Empty(t, readList(t, conn, EVENT_LOAD_MESSAGES))
}

func TestRoomRoundTrip(t *testing.T) {
	h := newHarness(t)
	_, anaToken := h.user(t, "ana")
	_, bobToken := h.user(t, "bob")

	ana := h.dial(t, anaToken)
	assert.Empty(t, readList(t, ana, EVENT_LOAD_MESSAGES))
	bob := h.dial(t, bobToken)
	assert.Empty(t, readList(t, bob, EVENT_LOAD_MESSAGES))

	emit(t, ana, EVENT_SEND_MESSAGE, SendMessagePayload{Content: "  hello team  "})

	for _, conn := range []*websocket.Conn{ana, bob} {
		msg := readMessage(t, conn, EVENT_RECEIVE_MESSAGE)
		assert.Equal(t, "hello team", msg.Content)
		assert.Equal(t, schemas.MESSAGE_ROOM_GENERAL, msg.Room)
		assert.False(t, msg.IsPrivate)
		assert.Equal(t, "ana", msg.Sender.Username)
	}

	late := h.dial(t, bobToken)
	history := readList(t, late, EVENT_LOAD_MESSAGES)
	require.Len(t, history, 1)
	assert.Equal(t, "hello team", history[0].Content)
	assert.Equal(t, "ana", history[0].Sender.Username)
}

func TestRoomMessageOmitsSenderEmail(t *testing.T) {
	h := newHarness(t)
	_, anaToken := h.user(t, "ana")
	_, bobToken := h.user(t, "bob")

	ana := h.dial(t, anaToken)
	readList(t, ana, EVENT_LOAD_MESSAGES)
	bob := h.dial(t, bobToken)
	readList(t, bob, EVENT_LOAD_MESSAGES)

	emit(t, ana, EVENT_SEND_MESSAGE, SendMessagePayload{Content: "hi"})

	env := readEvent(t, bob)
	require.Equal(t, EVENT_RECEIVE_MESSAGE, env.Event)
	assert.Contains(t, string(env.Data), `"username":"ana"`)
	assert.NotContains(t, string(env.Data), "ana@example.com")
}

type hookedStore struct {
	*memoryStore
	onRecentInRoom func()
}

func (s *hookedStore) RecentInRoom(ctx context.Context, room string, limit int64) ([]schemas.Message, error) {
	s.onRecentInRoom()
	return s.memoryStore.RecentInRoom(ctx, room, limit)
}

func TestHistoryArrivesBeforeLiveMessages(t *testing.T) {
	h := newHarness(t)
	ana, token := h.user(t, "ana")

	store := &hookedStore{memoryStore: h.store}
	relay := NewRelay(store, h.users, h.signer, nil, utils.DiscardLogger())

	frame, err := encodeEvent(EVENT_RECEIVE_MESSAGE, schemas.MessageView{
		Message:   schemas.Message{Sender: ana.ID, Content: "racing", Room: schemas.MESSAGE_ROOM_GENERAL},
		SenderRef: ana.PublicRef(),
	})
	require.NoError(t, err)

	var membersDuringLoad atomic.Int64
	membersDuringLoad.Store(-1)
	store.onRecentInRoom = func() {
		membersDuringLoad.Store(int64(relay.hub.Members(schemas.MESSAGE_ROOM_GENERAL)))
		relay.hub.Broadcast(schemas.MESSAGE_ROOM_GENERAL, frame, nil)
	}

	srv := httptest.NewServer(http.HandlerFunc(relay.ServeWS))
	t.Cleanup(srv.Close)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"?token="+token, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	assert.Empty(t, readList(t, conn, EVENT_LOAD_MESSAGES))
	assert.Equal(t, int64(0), membersDuringLoad.Load())

	emit(t, conn, EVENT_SEND_MESSAGE, SendMessagePayload{Content: "after"})
	assert.Equal(t, "after", readMessage(t, conn, EVENT_RECEIVE_MESSAGE).Content)
}

func TestInvalidEventKeepsSession(t *testing.T) {
	h := newHarness(t)
	_, token := h.user(t, "ana")
	conn := h.dial(t, token)
	readList(t, conn, EVENT_LOAD_MESSAGES)

	emit(t, conn, EVENT_SEND_MESSAGE, SendMessagePayload{Content: "   "})
	emit(t, conn, EVENT_SEND_MESSAGE, SendMessagePayload{Content: strings.Repeat("x", schemas.MESSAGE_MAX_CONTENT_LEN+1)})
	emit(t, conn, EVENT_SEND_MESSAGE, SendMessagePayload{Content: "sneaky", Room: "user_abc"})
	emit(t, conn, "dance", map[string]string{})
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	emit(t, conn, EVENT_SEND_MESSAGE, SendMessagePayload{Content: "still here"})

	msg := readMessage(t, conn, EVENT_RECEIVE_MESSAGE)
	assert.Equal(t, "still here", msg.Content)

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	assert.Len(t, h.store.messages, 1)
}

func TestPrivateMessageToOfflineUser(t *testing.T) {
	h := newHarness(t)
	ana, anaToken := h.user(t, "ana")
	carl, carlToken := h.user(t, "carl")

	anaConn := h.dial(t, anaToken)
	readList(t, anaConn, EVENT_LOAD_MESSAGES)

	emit(t, anaConn, EVENT_SEND_PRIVATE_MESSAGE, SendPrivateMessagePayload{Content: "ping", RecipientID: carl.ID.Hex()})

	echo := readMessage(t, anaConn, EVENT_RECEIVE_PRIVATE_MESSAGE)
	assert.True(t, echo.IsPrivate)
	assert.Equal(t, "ana", echo.Sender.Username)
	require.NotNil(t, echo.Recipient)
	assert.Equal(t, "carl", echo.Recipient.Username)

	carlConn := h.dial(t, carlToken)
	assert.Empty(t, readList(t, carlConn, EVENT_LOAD_MESSAGES), "private messages stay out of room history")

	emit(t, carlConn, EVENT_LOAD_PRIVATE_MESSAGES, LoadPrivateMessagesPayload{UserID: ana.ID.Hex()})
	loaded := readList(t, carlConn, EVENT_PRIVATE_MESSAGES_LOADED)
	require.Len(t, loaded, 1)
	assert.Equal(t, "ping", loaded[0].Content)
	assert.Equal(t, ana.ID.Hex(), loaded[0].Sender.ID)
}

func TestPrivateMessageToOnlineUser(t *testing.T) {
	h := newHarness(t)
	_, anaToken := h.user(t, "ana")
	bob, bobToken := h.user(t, "bob")
	_, eveToken := h.user(t, "eve")

	anaConn := h.dial(t, anaToken)
	readList(t, anaConn, EVENT_LOAD_MESSAGES)
	bobConn := h.dial(t, bobToken)
	readList(t, bobConn, EVENT_LOAD_MESSAGES)
	eveConn := h.dial(t, eveToken)
	readList(t, eveConn, EVENT_LOAD_MESSAGES)

	emit(t, anaConn, EVENT_SEND_PRIVATE_MESSAGE, SendPrivateMessagePayload{Content: "psst", RecipientID: bob.ID.Hex()})

	assert.Equal(t, "psst", readMessage(t, anaConn, EVENT_RECEIVE_PRIVATE_MESSAGE).Content)
	assert.Equal(t, "psst", readMessage(t, bobConn, EVENT_RECEIVE_PRIVATE_MESSAGE).Content)

	// eve sees the next room message, not the private one
	emit(t, anaConn, EVENT_SEND_MESSAGE, SendMessagePayload{Content: "public"})
	assert.Equal(t, "public", readMessage(t, eveConn, EVENT_RECEIVE_MESSAGE).Content)
}

func TestGetMessages(t *testing.T) {
	h := newHarness(t)
	ana, _ := h.user(t, "ana")
	require.NoError(t, h.store.Insert(context.Background(), &schemas.Message{
		Sender: ana.ID, Content: "first", Room: schemas.MESSAGE_ROOM_GENERAL, Timestamp: time.Now(),
	}))

	resp, err := http.Get(h.srv.URL + "/api/chat/messages")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data []wireMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "ana", body.Data[0].Sender.Username)

	resp2, err := http.Get(h.srv.URL + "/api/chat/messages?room=user_x")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestRecentMessagesSortTieBreak(t *testing.T) {
	require.Len(t, newestFirst, 2)
	assert.Equal(t, bson.E{Key: "timestamp", Value: -1}, newestFirst[0])
	assert.Equal(t, bson.E{Key: "_id", Value: -1}, newestFirst[1])
}

func TestHubMembership(t *testing.T) {
	hub := NewHub()
	a := &Session{send: make(chan []byte, 1)}
	b := &Session{send: make(chan []byte, 1)}

	hub.Join("general", a)
	hub.Join("general", b)
	assert.Equal(t, 2, hub.Members("general"))

	hub.Broadcast("general", []byte("x"), a)
	assert.Len(t, b.send, 1)
	assert.Len(t, a.send, 0)

	hub.Leave(a)
	assert.Equal(t, 1, hub.Members("general"))
	assert.False(t, a.enqueue([]byte("y")), "closed sessions refuse frames")
}
