package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"

	"opsdesk/entities/users"
	"opsdesk/middlewares"
	"opsdesk/schemas"
	"opsdesk/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type memoryStore struct {
	mu    sync.Mutex
	tasks []schemas.Task
}

func (s *memoryStore) Insert(_ context.Context, task *schemas.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task.ID = bson.NewObjectID()
	s.tasks = append(s.tasks, *task)
	return nil
}

func (s *memoryStore) List(_ context.Context) ([]schemas.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks), nil
}

func (s *memoryStore) Update(_ context.Context, id bson.ObjectID, u schemas.TaskUpdate) (*schemas.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.tasks, func(t schemas.Task) bool { return t.ID == id })
	if i < 0 {
		return nil, ErrNotFound
	}
	t := &s.tasks[i]
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.TimeTaken != nil {
		t.TimeTaken = *u.TimeTaken
	}
	if u.AssignedTo != nil {
		t.AssignedTo = u.AssignedTo
	}
	out := *t
	return &out, nil
}

func (s *memoryStore) Delete(_ context.Context, id bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.tasks, func(t schemas.Task) bool { return t.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	return nil
}

func (s *memoryStore) CompletedByUser(_ context.Context) ([]schemas.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byUser := map[bson.ObjectID]*schemas.LeaderboardEntry{}
	var order []bson.ObjectID
	for _, t := range s.tasks {
		if t.Status != schemas.TASK_STATUS_DONE || t.AssignedTo == nil {
			continue
		}
		e, ok := byUser[*t.AssignedTo]
		if !ok {
			e = &schemas.LeaderboardEntry{UserID: *t.AssignedTo}
			byUser[*t.AssignedTo] = e
			order = append(order, *t.AssignedTo)
		}
		e.TasksCompleted++
		e.TotalTime += t.TimeTaken
	}
	out := make([]schemas.LeaderboardEntry, 0, len(order))
	for _, id := range order {
		out = append(out, *byUser[id])
	}
	return out, nil
}

func newTestHandler(t *testing.T) (*Handler, *users.MemoryStore) {
	t.Helper()
	userStore := users.NewMemoryStore()
	return NewHandler(&memoryStore{}, userStore, utils.DiscardLogger()), userStore
}

func addUser(t *testing.T, store *users.MemoryStore, name string) middlewares.Caller {
	t.Helper()
	u := schemas.User{Username: name, Email: name + "@example.com", Role: schemas.USERS_ROLE_STAFF}
	require.NoError(t, store.Insert(context.Background(), &u))
	return middlewares.Caller{ID: u.ID, Role: u.Role}
}

func request(method, body, id string, caller *middlewares.Caller) *http.Request {
	req := httptest.NewRequest(method, "/api/tasks", strings.NewReader(body))
	if id != "" {
		req.SetPathValue("id", id)
	}
	if caller != nil {
		req = req.WithContext(middlewares.WithCaller(req.Context(), *caller))
	}
	return req
}

func data[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var resp struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Data
}

func TestCreateOne_DefaultsToCaller(t *testing.T) {
	h, userStore := newTestHandler(t)
	ana := addUser(t, userStore, "ana")

	rec := httptest.NewRecorder()
	h.CreateOne(rec, request(http.MethodPost, `{"title":"Call supplier"}`, "", &ana))
	require.Equal(t, http.StatusCreated, rec.Code)

	task := data[schemas.TaskView](t, rec)
	require.NotNil(t, task.AssignedTo)
	assert.Equal(t, ana.ID, *task.AssignedTo)
	assert.Equal(t, ana.ID, task.CreatedBy)
	assert.Equal(t, schemas.TASK_STATUS_TODO, task.Status)
	require.NotNil(t, task.Assignee)
	assert.Equal(t, "ana", task.Assignee.Username)
}

func TestCreateOne_Validation(t *testing.T) {
	h, userStore := newTestHandler(t)
	ana := addUser(t, userStore, "ana")

	for name, body := range map[string]string{
		"missing title":    `{"description":"x"}`,
		"unknown status":   `{"title":"x","status":"Archived"}`,
		"negative time":    `{"title":"x","timeTaken":-1}`,
		"malformed person": `{"title":"x","assignedTo":"nope"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.CreateOne(rec, request(http.MethodPost, body, "", &ana))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestUpdateAndDelete(t *testing.T) {
	h, userStore := newTestHandler(t)
	ana := addUser(t, userStore, "ana")

	rec := httptest.NewRecorder()
	h.CreateOne(rec, request(http.MethodPost, `{"title":"Ship order","status":"In Progress"}`, "", &ana))
	require.Equal(t, http.StatusCreated, rec.Code)
	task := data[schemas.TaskView](t, rec)

	rec = httptest.NewRecorder()
	h.UpdateOne(rec, request(http.MethodPut, `{"status":"Done","timeTaken":3}`, task.ID.Hex(), &ana))
	require.Equal(t, http.StatusOK, rec.Code)
	updated := data[schemas.TaskView](t, rec)
	assert.Equal(t, schemas.TASK_STATUS_DONE, updated.Status)
	assert.Equal(t, 3.0, updated.TimeTaken)

	rec = httptest.NewRecorder()
	h.UpdateOne(rec, request(http.MethodPut, `{}`, task.ID.Hex(), &ana))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.DeleteOne(rec, request(http.MethodDelete, "", task.ID.Hex(), &ana))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.DeleteOne(rec, request(http.MethodDelete, "", task.ID.Hex(), &ana))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRank(t *testing.T) {
	ana, bob, cid := bson.NewObjectID(), bson.NewObjectID(), bson.NewObjectID()
	known := map[bson.ObjectID]schemas.User{
		ana: {ID: ana, Username: "ana"},
		bob: {ID: bob, Username: "bob"},
	}

	ranked := rank([]schemas.LeaderboardEntry{
		{UserID: ana, TasksCompleted: 2, TotalTime: 10},
		{UserID: bob, TasksCompleted: 5, TotalTime: 5},
		{UserID: cid, TasksCompleted: 1, TotalTime: 100},
	}, known)

	require.Len(t, ranked, 3)
	assert.Equal(t, bob, ranked[0].UserID)
	assert.Equal(t, 50, ranked[0].Score)
	assert.Equal(t, 1.0, ranked[0].AvgTime)
	assert.Equal(t, "bob", ranked[0].User.Username)

	assert.Equal(t, ana, ranked[1].UserID)
	assert.Equal(t, 18, ranked[1].Score)
	assert.Equal(t, 5.0, ranked[1].AvgTime)

	assert.Equal(t, cid, ranked[2].UserID)
	assert.Equal(t, 0, ranked[2].Score, "score is floored at zero")
	assert.Nil(t, ranked[2].User)
}

func TestGetLeaderboard(t *testing.T) {
	h, userStore := newTestHandler(t)
	ana := addUser(t, userStore, "ana")
	bob := addUser(t, userStore, "bob")

	create := func(caller middlewares.Caller, status string, time float64) {
		rec := httptest.NewRecorder()
		body := fmt.Sprintf(`{"title":"t","status":%q,"timeTaken":%v}`, status, time)
		h.CreateOne(rec, request(http.MethodPost, body, "", &caller))
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	create(ana, schemas.TASK_STATUS_DONE, 2)
	create(bob, schemas.TASK_STATUS_DONE, 1)
	create(bob, schemas.TASK_STATUS_DONE, 1)
	create(bob, schemas.TASK_STATUS_TODO, 0)

	rec := httptest.NewRecorder()
	h.GetLeaderboard(rec, request(http.MethodGet, "", "", &ana))
	require.Equal(t, http.StatusOK, rec.Code)

	board := data[[]schemas.LeaderboardEntry](t, rec)
	require.Len(t, board, 2)
	assert.Equal(t, "bob", board[0].User.Username)
	assert.Equal(t, 2, board[0].TasksCompleted)
	assert.Equal(t, "ana", board[1].User.Username)
}
