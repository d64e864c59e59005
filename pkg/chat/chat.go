// Package chat defines the conversation model for the vault chat engine:
// documents, messages, ordered message parts, and tool calls, together with
// the load-time normalization passes (tool-result reconciliation and
// assistant-turn coalescing) that rebuild a logical conversation from
// persisted records.
package chat

import (
	"strings"
	"time"
)

// ContextFileType classifies how a context file was attached to a chat.
type ContextFileType string

const (
	ContextFileSource     ContextFileType = "source"
	ContextFileExtraction ContextFileType = "extraction"
)

// ContextFile is a vault note attached to the conversation as context.
type ContextFile struct {
	Path string
	Type ContextFileType
}

// SystemPromptType identifies how the system prompt is resolved.
type SystemPromptType string

const (
	SystemPromptDefault SystemPromptType = "default"
	SystemPromptCustom  SystemPromptType = "custom"
)

// SystemPrompt points at the prompt used for the conversation. Path is only
// set for custom prompts and addresses a note in the vault.
type SystemPrompt struct {
	Type SystemPromptType
	Path string
}

// Meta holds all document-level metadata persisted in the frontmatter block.
type Meta struct {
	ID           string
	Model        string
	Created      time.Time
	LastModified time.Time
	Title        string
	Version      int
	Tags         []string
	ContextFiles []ContextFile
	SystemPrompt *SystemPrompt
	FontSize     int
	AgentMode    bool
}

// Chat is the fully parsed in-memory representation of a chat document.
type Chat struct {
	Meta     Meta
	Messages []*Message
}

// TitleMaxLen is the number of characters a derived title is capped at.
const TitleMaxLen = 50

// DeriveTitle builds a chat title from the first user message. Titles longer
// than TitleMaxLen characters are truncated with a trailing ellipsis. Returns
// an empty string when no user message with content exists.
func DeriveTitle(messages []*Message) string {
	for _, m := range messages {
		if m.Role != RoleUser {
			continue
		}
		text := strings.TrimSpace(m.Content)
		if text == "" {
			continue
		}
		// Collapse the first line only; multi-line prompts make poor titles.
		if idx := strings.IndexByte(text, '\n'); idx >= 0 {
			text = strings.TrimSpace(text[:idx])
		}
		runes := []rune(text)
		if len(runes) > TitleMaxLen {
			return string(runes[:TitleMaxLen]) + "..."
		}
		return text
	}
	return ""
}
