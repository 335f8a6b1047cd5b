package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"opsdesk/entities/auth"
	"opsdesk/entities/budgets"
	"opsdesk/entities/chat"
	"opsdesk/entities/leads"
	"opsdesk/entities/tasks"
	"opsdesk/entities/users"
	"opsdesk/identity"
	"opsdesk/middlewares"
	"opsdesk/schemas"
	"opsdesk/utils"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// roomLog keeps chat messages in memory, oldest first.
type roomLog struct {
	mu       sync.Mutex
	messages []schemas.Message
}

func (l *roomLog) Insert(_ context.Context, msg *schemas.Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg.ID = bson.NewObjectID()
	l.messages = append(l.messages, *msg)
	return nil
}

func (l *roomLog) RecentInRoom(_ context.Context, room string, _ int64) ([]schemas.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []schemas.Message{}
	for _, m := range l.messages {
		if !m.IsPrivate && m.Room == room {
			out = append(out, m)
		}
	}
	return out, nil
}

func (l *roomLog) RecentBetween(context.Context, bson.ObjectID, bson.ObjectID, int64) ([]schemas.Message, error) {
	return []schemas.Message{}, nil
}

type testServer struct {
	handler http.Handler
	signer  *identity.TokenSigner
	users   *users.MemoryStore
}

// newTestServer wires the real router. Lead, task and budget stores are nil,
// so only requests rejected before the handler may target them.
func newTestServer(t *testing.T, limiter middlewares.Limiter, ready func(context.Context) error) *testServer {
	t.Helper()
	logger := utils.DiscardLogger()
	signer := identity.NewTokenSigner("test-secret", time.Hour)
	userStore := users.NewMemoryStore()

	if limiter == nil {
		limiter = middlewares.NewLocalLimiter(100)
	}

	h := newRouter(routerDeps{
		cfg:      &utils.Config{CORSOrigins: []string{"http://localhost:5173"}},
		logger:   logger,
		verifier: signer,
		limiter:  limiter,
		auth:     auth.NewHandler(userStore, signer, logger),
		users:    users.NewHandler(userStore, logger),
		leads:    leads.NewHandler(nil, nil, userStore, nil, logger),
		tasks:    tasks.NewHandler(nil, userStore, logger),
		budgets:  budgets.NewHandler(nil, nil, userStore, logger),
		chat:     chat.NewRelay(&roomLog{}, userStore, signer, nil, logger),
		ready:    ready,
	})
	return &testServer{handler: h, signer: signer, users: userStore}
}

func (s *testServer) token(t *testing.T, role string) string {
	t.Helper()
	tok, err := s.signer.Issue(bson.NewObjectID(), role)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(method, path, token string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	req.RemoteAddr = "10.1.1.1:5000"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouterRoleChecks(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	leadPath := "/api/leads/" + bson.NewObjectID().Hex()

	cases := []struct {
		name   string
		method string
		path   string
		role   string
		want   int
	}{
		{"leads need a token", http.MethodGet, "/api/leads", "", http.StatusUnauthorized},
		{"staff cannot list leads", http.MethodGet, "/api/leads", schemas.USERS_ROLE_STAFF, http.StatusForbidden},
		{"sales cannot read analytics", http.MethodGet, "/api/leads/analytics", schemas.USERS_ROLE_SALES, http.StatusForbidden},
		{"only sales pick", http.MethodPut, leadPath + "/pick", schemas.USERS_ROLE_MANAGER, http.StatusForbidden},
		{"only admin assigns", http.MethodPut, leadPath + "/assign", schemas.USERS_ROLE_SALES, http.StatusForbidden},
		{"staff cannot move stages", http.MethodPut, leadPath + "/stage", schemas.USERS_ROLE_STAFF, http.StatusForbidden},
		{"unknown lead action", http.MethodPut, leadPath + "/archive", schemas.USERS_ROLE_ADMIN, http.StatusNotFound},
		{"sales cannot edit stages", http.MethodPost, "/api/leads/stages", schemas.USERS_ROLE_SALES, http.StatusForbidden},
		{"sales cannot rename stages", http.MethodPut, "/api/leads/stages/" + bson.NewObjectID().Hex(), schemas.USERS_ROLE_SALES, http.StatusForbidden},
		{"tasks need a token", http.MethodGet, "/api/tasks", "", http.StatusUnauthorized},
		{"staff cannot see budget", http.MethodGet, "/api/budget", schemas.USERS_ROLE_STAFF, http.StatusForbidden},
		{"manager cannot pay salary", http.MethodPost, "/api/budget/salary/" + bson.NewObjectID().Hex(), schemas.USERS_ROLE_MANAGER, http.StatusForbidden},
		{"manager cannot update users", http.MethodPut, "/api/users/" + bson.NewObjectID().Hex(), schemas.USERS_ROLE_MANAGER, http.StatusForbidden},
		{"chat history needs a token", http.MethodGet, "/api/chat/messages", "", http.StatusUnauthorized},
		{"websocket needs a token", http.MethodGet, "/ws/chat", "", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token := ""
			if tc.role != "" {
				token = srv.token(t, tc.role)
			}
			rec := srv.do(tc.method, tc.path, token, strings.NewReader("{}"))
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}
}

func TestRouterListsUsersForAnyRole(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	require.NoError(t, srv.users.Insert(context.Background(), &schemas.User{
		Username: "ana", Email: "ana@example.com", Password: "hash", Role: schemas.USERS_ROLE_STAFF,
	}))

	rec := srv.do(http.MethodGet, "/api/users", srv.token(t, schemas.USERS_ROLE_STAFF), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ana@example.com")
	assert.NotContains(t, rec.Body.String(), "hash")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRouterRateLimitsLogin(t *testing.T) {
	srv := newTestServer(t, middlewares.NewLocalLimiter(1), nil)

	first := srv.do(http.MethodPost, "/api/auth/login", "", strings.NewReader("{}"))
	second := srv.do(http.MethodPost, "/api/auth/login", "", strings.NewReader("{}"))

	assert.Equal(t, http.StatusBadRequest, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestRouterHealthz(t *testing.T) {
	healthy := newTestServer(t, nil, func(context.Context) error { return nil })
	assert.Equal(t, http.StatusOK, healthy.do(http.MethodGet, "/healthz", "", nil).Code)

	down := newTestServer(t, nil, func(context.Context) error { return errors.New("no primary") })
	rec := down.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), utils.SendInternalError(utils.CANNOT_CONNECT_TO_MONGODB))
}

func TestRouterMetrics(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	srv.do(http.MethodGet, "/api/leads", "", nil)

	rec := srv.do(http.MethodGet, "/metrics", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="GET /api/leads",status="401"}`)
}

func TestRouterCorsPreflight(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/leads", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterUpgradesChatThroughMiddleware(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	ana := schemas.User{Username: "ana", Email: "ana@example.com", Password: "hash", Role: schemas.USERS_ROLE_STAFF}
	require.NoError(t, srv.users.Insert(context.Background(), &ana))
	token, err := srv.signer.Issue(ana.ID, ana.Role)
	require.NoError(t, err)

	httpSrv := httptest.NewServer(srv.handler)
	t.Cleanup(httpSrv.Close)

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(httpSrv.URL, "http")+"/ws/chat?token="+token, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	read := func() chat.Envelope {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		var env chat.Envelope
		require.NoError(t, conn.ReadJSON(&env))
		return env
	}

	assert.Equal(t, chat.EVENT_LOAD_MESSAGES, read().Event)

	payload, err := json.Marshal(chat.SendMessagePayload{Content: "through the stack"})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(chat.Envelope{Event: chat.EVENT_SEND_MESSAGE, Data: payload}))

	env := read()
	require.Equal(t, chat.EVENT_RECEIVE_MESSAGE, env.Event)
	assert.Contains(t, string(env.Data), "through the stack")
	assert.Contains(t, string(env.Data), `"username":"ana"`)
}

func TestRootCommand(t *testing.T) {
	root := newRootCommand()

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "seed-admin"})
}
