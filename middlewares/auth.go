package middlewares

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"opsdesk/identity"
	"opsdesk/utils"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type contextKey string

const CallerContextKey = contextKey("caller")

// Caller is the authenticated principal of a request.
type Caller struct {
	ID   bson.ObjectID
	Role string
}

func (c Caller) HasRole(roles ...string) bool {
	return slices.Contains(roles, c.Role)
}

// TokenVerifier validates session tokens.
type TokenVerifier interface {
	Verify(raw string) (*identity.Claims, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// CallerFromToken verifies raw and returns the caller it asserts.
func CallerFromToken(verifier TokenVerifier, raw string) (Caller, error) {
	if raw == "" {
		return Caller{}, utils.NewAuthenticationError("Token não informado")
	}
	claims, err := verifier.Verify(raw)
	if err != nil {
		return Caller{}, utils.NewAuthenticationError("Token inválido ou expirado")
	}
	id, err := claims.UserObjectID()
	if err != nil {
		return Caller{}, utils.NewAuthenticationError("Token inválido ou expirado")
	}
	return Caller{ID: id, Role: claims.Role}, nil
}

// Auth rejects requests without a valid bearer token. When roles is not
// empty the caller's role must be one of them.
func Auth(verifier TokenVerifier, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := CallerFromToken(verifier, BearerToken(r))
			if err != nil {
				utils.SendError(w, nil, err)
				return
			}

			if len(roles) > 0 && !caller.HasRole(roles...) {
				utils.SendError(w, nil, utils.NewAuthorizationError("Usuário não possui permissão para este recurso"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}

func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, CallerContextKey, caller)
}

func CallerFromContext(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(CallerContextKey).(Caller)
	return caller, ok
}

// RequireCaller returns the caller stored by Auth. It writes a 401 and
// returns false when the request did not pass through Auth.
func RequireCaller(w http.ResponseWriter, r *http.Request) (Caller, bool) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		utils.SendError(w, nil, utils.NewAuthenticationError("Usuário não autenticado"))
		return Caller{}, false
	}
	return caller, true
}
