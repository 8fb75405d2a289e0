package queue

import "encoding/json"

// MessageVersion is the current payload schema version.
const MessageVersion = 1

// Message announces a report reaching a terminal status.
type Message struct {
	ReportID   string `json:"reportId"`
	OwnerID    string `json:"ownerId"`
	Status     string `json:"status"`
	Stage      string `json:"stage,omitempty"`
	RequestID  string `json:"requestId,omitempty"`
	OccurredAt string `json:"occurredAt"`
	Version    int    `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
