package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"opsdesk/schemas"
	"opsdesk/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, store *MemoryStore, email, role string) schemas.User {
	t.Helper()
	u := schemas.User{Username: strings.Split(email, "@")[0], Email: email, Password: "hash", Role: role}
	require.NoError(t, store.Insert(context.Background(), &u))
	return u
}

func TestMemoryStore_DuplicateEmail(t *testing.T) {
	store := NewMemoryStore()
	seedUser(t, store, "ana@example.com", schemas.USERS_ROLE_STAFF)

	err := store.Insert(context.Background(), &schemas.User{Email: " ANA@example.com "})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestGetAll_OmitsPassword(t *testing.T) {
	store := NewMemoryStore()
	seedUser(t, store, "ana@example.com", schemas.USERS_ROLE_SALES)
	h := NewHandler(store, utils.DiscardLogger())

	rec := httptest.NewRecorder()
	h.GetAll(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "hash")
	assert.Contains(t, rec.Body.String(), "ana@example.com")
}

func updateRequest(id, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPut, "/api/users/"+id, strings.NewReader(body))
	req.SetPathValue("id", id)
	return req
}

func TestUpdateOne(t *testing.T) {
	store := NewMemoryStore()
	user := seedUser(t, store, "ana@example.com", schemas.USERS_ROLE_STAFF)
	h := NewHandler(store, utils.DiscardLogger())

	t.Run("approves and promotes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.UpdateOne(rec, updateRequest(user.ID.Hex(), `{"role":"sales","isApproved":true,"username":"ignored"}`))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data schemas.User `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, schemas.USERS_ROLE_SALES, resp.Data.Role)
		assert.True(t, resp.Data.IsApproved)
		assert.Equal(t, "ana", resp.Data.Username)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.UpdateOne(rec, updateRequest(user.ID.Hex(), `{"role":"owner"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects empty update", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.UpdateOne(rec, updateRequest(user.ID.Hex(), `{}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.UpdateOne(rec, updateRequest("64b7f0c2a1b2c3d4e5f60718", `{"isActive":false}`))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.UpdateOne(rec, updateRequest("nope", `{"isActive":false}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
