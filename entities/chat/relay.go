package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"opsdesk/database"
	"opsdesk/middlewares"
	"opsdesk/schemas"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const USER_ROOM_PREFIX = "user_"

var (
	errEmptyContent    = errors.New("message content is empty")
	errContentTooLong  = errors.New("message content is too long")
	errReservedRoom    = errors.New("room is reserved")
	errUnknownUser     = errors.New("unknown user")
	errUnknownEvent    = errors.New("unknown event")
	errMalformedFrame  = errors.New("malformed frame")
	errInvalidObjectID = errors.New("invalid id")
)

// Relay fans chat messages out to connected sessions and persists them.
type Relay struct {
	hub      *Hub
	store    MessageStore
	users    UserLookup
	verifier middlewares.TokenVerifier
	upgrader websocket.Upgrader
	logger   *slog.Logger
	now      func() time.Time
}

// NewRelay builds the relay. An empty allowedOrigins accepts any origin.
func NewRelay(store MessageStore, users UserLookup, verifier middlewares.TokenVerifier, allowedOrigins []string, logger *slog.Logger) *Relay {
	return &Relay{
		hub:      NewHub(),
		store:    store,
		users:    users,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
		logger: logger.With("component", "chat"),
		now:    time.Now,
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		return slices.Contains(allowed, origin)
	}
}

func userRoom(id bson.ObjectID) string {
	return USER_ROOM_PREFIX + id.Hex()
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", errEmptyContent
	}
	if utf8.RuneCountInString(content) > schemas.MESSAGE_MAX_CONTENT_LEN {
		return "", errContentTooLong
	}
	return content, nil
}

func resolveRoom(room string) (string, error) {
	room = strings.TrimSpace(room)
	if room == "" {
		return schemas.MESSAGE_ROOM_GENERAL, nil
	}
	if strings.HasPrefix(room, USER_ROOM_PREFIX) {
		return "", errReservedRoom
	}
	return room, nil
}

// handle dispatches one inbound frame. Errors are reported to the caller
// for logging only.
func (r *Relay) handle(ctx context.Context, s *Session, raw []byte) error {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return errMalformedFrame
	}

	ctx, cancel := context.WithTimeout(ctx, database.MONGO_TIMEOUT)
	defer cancel()

	switch env.Event {
	case EVENT_SEND_MESSAGE:
		var p SendMessagePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return errMalformedFrame
		}
		return r.sendMessage(ctx, s, p)
	case EVENT_SEND_PRIVATE_MESSAGE:
		var p SendPrivateMessagePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return errMalformedFrame
		}
		return r.sendPrivateMessage(ctx, s, p)
	case EVENT_LOAD_PRIVATE_MESSAGES:
		var p LoadPrivateMessagesPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return errMalformedFrame
		}
		return r.loadPrivateMessages(ctx, s, p)
	default:
		return fmt.Errorf("%w: %q", errUnknownEvent, env.Event)
	}
}

func (r *Relay) sendMessage(ctx context.Context, s *Session, p SendMessagePayload) error {
	content, err := validateContent(p.Content)
	if err != nil {
		return err
	}
	room, err := resolveRoom(p.Room)
	if err != nil {
		return err
	}

	msg := schemas.Message{
		Sender:    s.Caller.ID,
		Content:   content,
		Room:      room,
		IsPrivate: false,
		Timestamp: r.now(),
	}
	if err := r.store.Insert(ctx, &msg); err != nil {
		return err
	}

	views, err := r.views(ctx, []schemas.Message{msg})
	if err != nil {
		return err
	}
	frame, err := encodeEvent(EVENT_RECEIVE_MESSAGE, views[0])
	if err != nil {
		return err
	}

	messagesTotal.WithLabelValues("room").Inc()
	r.hub.Broadcast(room, frame, nil)
	return nil
}

func (r *Relay) sendPrivateMessage(ctx context.Context, s *Session, p SendPrivateMessagePayload) error {
	content, err := validateContent(p.Content)
	if err != nil {
		return err
	}
	recipient, err := bson.ObjectIDFromHex(p.RecipientID)
	if err != nil {
		return errInvalidObjectID
	}

	found, err := r.users.FindByIDs(ctx, []bson.ObjectID{recipient})
	if err != nil {
		return err
	}
	if _, ok := found[recipient]; !ok {
		return errUnknownUser
	}

	msg := schemas.Message{
		Sender:    s.Caller.ID,
		Content:   content,
		IsPrivate: true,
		Recipient: &recipient,
		Timestamp: r.now(),
	}
	if err := r.store.Insert(ctx, &msg); err != nil {
		return err
	}

	views, err := r.views(ctx, []schemas.Message{msg})
	if err != nil {
		return err
	}
	frame, err := encodeEvent(EVENT_RECEIVE_PRIVATE_MESSAGE, views[0])
	if err != nil {
		return err
	}

	messagesTotal.WithLabelValues("private").Inc()
	s.enqueue(frame)
	r.hub.Broadcast(userRoom(recipient), frame, s)
	return nil
}

func (r *Relay) loadPrivateMessages(ctx context.Context, s *Session, p LoadPrivateMessagesPayload) error {
	other, err := bson.ObjectIDFromHex(p.UserID)
	if err != nil {
		return errInvalidObjectID
	}

	list, err := r.store.RecentBetween(ctx, s.Caller.ID, other, schemas.MESSAGE_HISTORY_LIMIT)
	if err != nil {
		return err
	}
	return r.emitHistory(ctx, s, EVENT_PRIVATE_MESSAGES_LOADED, list)
}

// RecentRoomMessages returns the latest page of a room, oldest first.
func (r *Relay) RecentRoomMessages(ctx context.Context, room string) ([]schemas.MessageView, error) {
	list, err := r.store.RecentInRoom(ctx, room, schemas.MESSAGE_HISTORY_LIMIT)
	if err != nil {
		return nil, err
	}
	return r.views(ctx, list)
}

func (r *Relay) emitHistory(ctx context.Context, s *Session, event string, list []schemas.Message) error {
	views, err := r.views(ctx, list)
	if err != nil {
		return err
	}
	frame, err := encodeEvent(event, views)
	if err != nil {
		return err
	}
	s.enqueue(frame)
	return nil
}

// views resolves senders and recipients to user references.
func (r *Relay) views(ctx context.Context, list []schemas.Message) ([]schemas.MessageView, error) {
	ids := make([]bson.ObjectID, 0, len(list))
	for _, m := range list {
		ids = append(ids, m.Sender)
		if m.Recipient != nil {
			ids = append(ids, *m.Recipient)
		}
	}

	found, err := r.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]schemas.MessageView, len(list))
	for i, m := range list {
		views[i] = schemas.MessageView{Message: m}
		if u, ok := found[m.Sender]; ok {
			views[i].SenderRef = u.PublicRef()
		} else {
			views[i].SenderRef = &schemas.UserRef{ID: m.Sender}
		}
		if m.Recipient != nil {
			if u, ok := found[*m.Recipient]; ok {
				views[i].RecipientRef = u.PublicRef()
			} else {
				views[i].RecipientRef = &schemas.UserRef{ID: *m.Recipient}
			}
		}
	}
	return views, nil
}
