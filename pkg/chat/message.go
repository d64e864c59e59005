package chat

import (
	"sort"
	"strings"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"

	// RoleTool only appears in persisted documents from older format
	// generations. Reconciliation folds tool records into the owning
	// assistant message, so a normalized conversation never contains one.
	RoleTool Role = "tool"
)

// PartType classifies a message part.
type PartType string

const (
	PartReasoning PartType = "reasoning"
	PartToolCall  PartType = "tool_call"
	PartContent   PartType = "content"
)

// MessagePart is one chronologically ordered piece of a message body.
// For reasoning and content parts Data holds the text; for tool_call parts
// Data holds the ID of the ToolCall it references.
type MessagePart struct {
	ID        string
	Type      PartType
	Timestamp int64
	Data      string
}

// Clone returns a copy of the part.
func (p *MessagePart) Clone() *MessagePart {
	cp := *p
	return &cp
}

// Message is a single conversation record. Content and Reasoning are derived
// fields: whenever Parts is populated they are rebuilt by concatenating the
// content-type and reasoning-type parts in timestamp order, and are never
// authoritative on their own.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Reasoning string
	ToolCalls []*ToolCall
	Parts     []*MessagePart

	// ToolCallID links a legacy tool-role record to the call it answers.
	ToolCallID string

	Annotations      []string
	WebSearchEnabled bool
}

// NewUserMessage creates a user message with the given content.
func NewUserMessage(content string) *Message {
	return &Message{ID: NewMessageID(), Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an empty assistant message.
func NewAssistantMessage() *Message {
	return &Message{ID: NewMessageID(), Role: RoleAssistant}
}

// NewSystemMessage creates a system message with the given content.
func NewSystemMessage(content string) *Message {
	return &Message{ID: NewMessageID(), Role: RoleSystem, Content: content}
}

// ToolCallByID returns the tool call with the given ID, or nil.
func (m *Message) ToolCallByID(id string) *ToolCall {
	for _, tc := range m.ToolCalls {
		if tc.ID == id {
			return tc
		}
	}
	return nil
}

// MaterializedParts returns the message's parts in timestamp order. When the
// message carries no explicit parts (older documents, or messages built from
// scalar fields) an equivalent part list is synthesized in the fixed order
// reasoning, tool calls, content.
func (m *Message) MaterializedParts() []*MessagePart {
	if len(m.Parts) > 0 {
		parts := make([]*MessagePart, len(m.Parts))
		for i, p := range m.Parts {
			parts[i] = p.Clone()
		}
		sort.SliceStable(parts, func(i, j int) bool {
			return parts[i].Timestamp < parts[j].Timestamp
		})
		return parts
	}

	var parts []*MessagePart
	var ts int64
	next := func() int64 { ts++; return ts - 1 }

	if m.Reasoning != "" {
		parts = append(parts, &MessagePart{
			ID:        NewPartID(),
			Type:      PartReasoning,
			Timestamp: next(),
			Data:      m.Reasoning,
		})
	}
	for _, tc := range m.ToolCalls {
		parts = append(parts, &MessagePart{
			ID:        NewPartID(),
			Type:      PartToolCall,
			Timestamp: next(),
			Data:      tc.ID,
		})
	}
	if m.Content != "" {
		parts = append(parts, &MessagePart{
			ID:        NewPartID(),
			Type:      PartContent,
			Timestamp: next(),
			Data:      m.Content,
		})
	}
	return parts
}

// RebuildDerived recomputes Content and Reasoning from Parts. It is a no-op
// for messages without explicit parts.
func (m *Message) RebuildDerived() {
	if len(m.Parts) == 0 {
		return
	}
	parts := make([]*MessagePart, len(m.Parts))
	copy(parts, m.Parts)
	sort.SliceStable(parts, func(i, j int) bool {
		return parts[i].Timestamp < parts[j].Timestamp
	})

	var content, reasoning []string
	for _, p := range parts {
		switch p.Type {
		case PartContent:
			content = append(content, p.Data)
		case PartReasoning:
			reasoning = append(reasoning, p.Data)
		}
	}
	m.Content = strings.Join(content, "\n\n")
	m.Reasoning = strings.Join(reasoning, "\n\n")
}
