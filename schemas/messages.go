package schemas

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	MESSAGE_ROOM_GENERAL    = "general"
	MESSAGE_MAX_CONTENT_LEN = 2000
	MESSAGE_HISTORY_LIMIT   = 50
)

// Message is either a room broadcast (Room set, IsPrivate false, no
// Recipient) or a private message (IsPrivate true, Recipient set).
type Message struct {
	ID        bson.ObjectID  `json:"id" bson:"_id,omitempty"`
	Sender    bson.ObjectID  `json:"-" bson:"sender"`
	Content   string         `json:"content" bson:"content"`
	Room      string         `json:"room,omitempty" bson:"room,omitempty"`
	IsPrivate bool           `json:"isPrivate" bson:"is_private"`
	Recipient *bson.ObjectID `json:"-" bson:"recipient,omitempty"`
	Timestamp time.Time      `json:"timestamp" bson:"timestamp"`
}

// MessageView is a Message with sender and recipient resolved to users.
type MessageView struct {
	Message
	SenderRef    *UserRef `json:"sender"`
	RecipientRef *UserRef `json:"recipient,omitempty"`
}
