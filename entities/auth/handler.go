package auth

import (
	"context"
	"log/slog"

	"opsdesk/schemas"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// UserStore is the subset of the user directory the auth endpoints need.
type UserStore interface {
	Insert(ctx context.Context, user *schemas.User) error
	FindByEmail(ctx context.Context, email string) (*schemas.User, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(userID bson.ObjectID, role string) (string, error)
}

type Handler struct {
	users  UserStore
	tokens TokenIssuer
	logger *slog.Logger
}

func NewHandler(users UserStore, tokens TokenIssuer, logger *slog.Logger) *Handler {
	return &Handler{users: users, tokens: tokens, logger: logger.With("component", "auth")}
}
