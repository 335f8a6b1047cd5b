package chat

import (
	"encoding/json"
)

const (
	EVENT_LOAD_MESSAGES           = "load_messages"
	EVENT_SEND_MESSAGE            = "send_message"
	EVENT_RECEIVE_MESSAGE         = "receive_message"
	EVENT_SEND_PRIVATE_MESSAGE    = "send_private_message"
	EVENT_RECEIVE_PRIVATE_MESSAGE = "receive_private_message"
	EVENT_LOAD_PRIVATE_MESSAGES   = "load_private_messages"
	EVENT_PRIVATE_MESSAGES_LOADED = "private_messages_loaded"
)

// Envelope is the frame exchanged in both directions over the socket.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type SendMessagePayload struct {
	Content string `json:"content"`
	Room    string `json:"room,omitempty"`
}

type SendPrivateMessagePayload struct {
	Content     string `json:"content"`
	RecipientID string `json:"recipientId"`
}

type LoadPrivateMessagesPayload struct {
	UserID string `json:"userId"`
}

func encodeEvent(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
