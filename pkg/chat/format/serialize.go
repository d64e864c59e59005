package format

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mdvault/chatlog/pkg/chat"
)

// DefaultToolResultCap is the byte budget for a serialized tool result.
// Oversized results are replaced by a truncation marker recording the
// original size; they are never silently dropped.
const DefaultToolResultCap = 64 * 1024

// ParseDocument parses the raw text of a modern-format document into a chat.
// Messages are returned as persisted; callers run reconciliation and
// coalescing to obtain the logical conversation. Metadata defaults to the
// zero value when the frontmatter block is absent or carries no id.
func ParseDocument(text string) *chat.Chat {
	c := &chat.Chat{}
	if meta := ParseMeta(text); meta != nil {
		c.Meta = *meta
	}

	body := text
	if _, fmBody, ok := splitFrontmatter(text); ok {
		body = fmBody
	}
	c.Messages = ParseMessages(body)
	return c
}

// Serialize renders a chat in the canonical modern format with the default
// tool-result byte budget.
func Serialize(c *chat.Chat) (string, error) {
	return SerializeWithCap(c, DefaultToolResultCap)
}

// SerializeWithCap renders a chat as a frontmatter block followed by
// sentinel-delimited message blocks. Tool results larger than capBytes are
// replaced with a truncation marker.
func SerializeWithCap(c *chat.Chat, capBytes int) (string, error) {
	front, err := SerializeMeta(&c.Meta)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(front)

	for _, msg := range c.Messages {
		sb.WriteString("\n")
		if err := renderMessage(&sb, msg, capBytes); err != nil {
			return "", err
		}
	}

	return sb.String(), nil
}

// renderMessage writes one sentinel-delimited message block.
func renderMessage(sb *strings.Builder, msg *chat.Message, capBytes int) error {
	if msg.Role == chat.RoleTool {
		fmt.Fprintf(sb, "<!-- chat:message role=\"%s\" id=\"%s\" tool=\"%s\" -->\n", msg.Role, msg.ID, msg.ToolCallID)
		sb.WriteString(msg.Content)
		sb.WriteString("\n" + msgEndMarker + "\n")
		return nil
	}

	fmt.Fprintf(sb, "<!-- chat:message role=\"%s\" id=\"%s\" -->\n", msg.Role, msg.ID)

	for _, part := range msg.MaterializedParts() {
		switch part.Type {
		case chat.PartReasoning:
			sb.WriteString(reasoningStartMarker + "\n")
			sb.WriteString(part.Data)
			sb.WriteString("\n" + reasoningEndMarker + "\n\n")

		case chat.PartToolCall:
			tc := msg.ToolCallByID(part.Data)
			if tc == nil {
				// Dangling part reference; nothing to render.
				continue
			}
			payload, err := encodeToolBlock(tc, capBytes)
			if err != nil {
				return err
			}
			fmt.Fprintf(sb, "<!-- chat:tool id=\"%s\" -->\n", tc.ID)
			sb.WriteString("```json\n")
			sb.WriteString(payload)
			sb.WriteString("\n```\n")
			sb.WriteString(toolEndMarker + "\n\n")

		case chat.PartContent:
			// Blank-line separator, matching how derived content joins parts.
			sb.WriteString(part.Data)
			sb.WriteString("\n\n")
		}
	}

	sb.WriteString(msgEndMarker + "\n")
	return nil
}

// encodeToolBlock marshals a tool call's persisted payload, applying the
// result byte budget.
func encodeToolBlock(tc *chat.ToolCall, capBytes int) (string, error) {
	capped := capToolResult(tc, capBytes)
	doc := toolCallDoc{
		Request:      capped.Request,
		State:        string(capped.State),
		Result:       capped.Result,
		Timestamp:    capped.Timestamp,
		AutoApproved: capped.AutoApproved,
	}
	b, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("format: encode tool call %s: %w", tc.ID, err)
	}
	return string(b), nil
}

// capToolResult enforces the tool-result byte budget, replacing oversized
// result data with a marker that records the original size.
func capToolResult(tc *chat.ToolCall, capBytes int) *chat.ToolCall {
	if capBytes <= 0 || tc.Result == nil || tc.Result.Data == nil {
		return tc
	}
	encoded, err := json.Marshal(tc.Result.Data)
	if err != nil || len(encoded) <= capBytes {
		return tc
	}
	capped := tc.Clone()
	capped.Result.Data = fmt.Sprintf("[tool result truncated: %d bytes]", len(encoded))
	return capped
}
