package users

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"opsdesk/schemas"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// MemoryStore is a Store backed by a map. It enforces the unique email index
// the Mongo store relies on.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[bson.ObjectID]schemas.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[bson.ObjectID]schemas.User)}
}

func (s *MemoryStore) Insert(_ context.Context, user *schemas.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range s.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}

	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id bson.ObjectID) (*schemas.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*schemas.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) FindByIDs(_ context.Context, ids []bson.ObjectID) (map[bson.ObjectID]schemas.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := make(map[bson.ObjectID]schemas.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			found[id] = u
		}
	}
	return found, nil
}

func (s *MemoryStore) List(_ context.Context) ([]schemas.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]schemas.User, 0, len(s.users))
	for _, u := range s.users {
		u.Password = ""
		list = append(list, u)
	}
	slices.SortFunc(list, func(a, b schemas.User) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return list, nil
}

func (s *MemoryStore) Update(_ context.Context, id bson.ObjectID, update schemas.UserUpdate) (*schemas.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if update.Role != nil {
		u.Role = *update.Role
	}
	if update.IsApproved != nil {
		u.IsApproved = *update.IsApproved
	}
	if update.IsActive != nil {
		u.IsActive = *update.IsActive
	}
	u.UpdatedAt = time.Now()
	s.users[id] = u

	u.Password = ""
	return &u, nil
}
