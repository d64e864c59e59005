package chat

import "github.com/google/uuid"

// ID prefixes keep the different identifier families distinguishable when
// they appear next to each other in a serialized document.
const (
	messageIDPrefix  = "msg-"
	toolCallIDPrefix = "call-"
	partIDPrefix     = "part-"
)

// NewMessageID generates a unique message identifier.
func NewMessageID() string {
	return messageIDPrefix + uuid.New().String()
}

// NewToolCallID generates a unique tool call identifier.
func NewToolCallID() string {
	return toolCallIDPrefix + uuid.New().String()
}

// NewPartID generates a unique message part identifier.
func NewPartID() string {
	return partIDPrefix + uuid.New().String()
}
