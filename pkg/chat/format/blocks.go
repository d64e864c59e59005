package format

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/mdvault/chatlog/pkg/chat"
)

// Sentinel markers bounding message bodies and their sub-blocks. HTML
// comments stay invisible when the document is rendered as markdown. These
// strings are part of the on-disk format and must stay byte-stable.
const (
	msgEndMarker         = "<!-- chat:message:end -->"
	reasoningStartMarker = "<!-- chat:reasoning -->"
	reasoningEndMarker   = "<!-- chat:reasoning:end -->"
	toolEndMarker        = "<!-- chat:tool:end -->"
)

var (
	msgStartRe  = regexp.MustCompile(`(?m)^<!-- chat:message role="([a-z]+)" id="([^"]+)"(?: tool="([^"]+)")? -->$`)
	toolStartRe = regexp.MustCompile(`(?m)^<!-- chat:tool id="([^"]+)" -->$`)
)

// toolCallDoc is the JSON payload of a tool sub-block. The call ID lives in
// the sub-block's sentinel marker.
type toolCallDoc struct {
	Request      chat.ToolRequest `json:"request"`
	State        string           `json:"state"`
	Result       *chat.ToolResult `json:"result,omitempty"`
	Timestamp    int64            `json:"timestamp,omitempty"`
	AutoApproved bool             `json:"auto_approved,omitempty"`
}

// ParseMessages parses a modern document body into ordered messages with
// chronological parts. Malformed regions degrade to plain content; this
// function never fails.
func ParseMessages(body string) []*chat.Message {
	starts := msgStartRe.FindAllStringSubmatchIndex(body, -1)
	messages := make([]*chat.Message, 0, len(starts))

	for i, loc := range starts {
		role := body[loc[2]:loc[3]]
		id := body[loc[4]:loc[5]]
		toolCallID := ""
		if loc[6] != -1 {
			toolCallID = body[loc[6]:loc[7]]
		}

		regionEnd := len(body)
		if i+1 < len(starts) {
			regionEnd = starts[i+1][0]
		}
		region := body[loc[1]:regionEnd]
		if end := strings.Index(region, msgEndMarker); end != -1 {
			region = region[:end]
		}

		msg := &chat.Message{ID: id, Role: chat.Role(role)}
		if msg.Role == chat.RoleTool {
			msg.ToolCallID = toolCallID
			msg.Content = strings.TrimSpace(region)
		} else {
			parseMessageBody(msg, region)
		}
		messages = append(messages, msg)
	}

	return messages
}

// parseMessageBody splits a message body into reasoning, tool-call, and
// content parts, stamping them with their document order.
func parseMessageBody(msg *chat.Message, body string) {
	var parts []*chat.MessagePart
	var ts int64

	addPart := func(pt chat.PartType, data string) {
		parts = append(parts, &chat.MessagePart{
			ID:        chat.NewPartID(),
			Type:      pt,
			Timestamp: ts,
			Data:      data,
		})
		ts++
	}
	addContent := func(text string) {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			addPart(chat.PartContent, trimmed)
		}
	}

	rest := body
	for rest != "" {
		rIdx := strings.Index(rest, reasoningStartMarker)
		tLoc := toolStartRe.FindStringSubmatchIndex(rest)

		switch {
		case rIdx != -1 && (tLoc == nil || rIdx < tLoc[0]):
			addContent(rest[:rIdx])
			segment := rest[rIdx+len(reasoningStartMarker):]
			if end := strings.Index(segment, reasoningEndMarker); end != -1 {
				addPart(chat.PartReasoning, strings.TrimSpace(segment[:end]))
				rest = segment[end+len(reasoningEndMarker):]
			} else {
				addPart(chat.PartReasoning, strings.TrimSpace(segment))
				rest = ""
			}

		case tLoc != nil:
			addContent(rest[:tLoc[0]])
			callID := rest[tLoc[2]:tLoc[3]]
			segment := rest[tLoc[1]:]
			raw := segment
			if end := strings.Index(segment, toolEndMarker); end != -1 {
				raw = segment[:end]
				rest = segment[end+len(toolEndMarker):]
			} else {
				rest = ""
			}
			msg.ToolCalls = append(msg.ToolCalls, decodeToolBlock(callID, msg.ID, raw))
			addPart(chat.PartToolCall, callID)

		default:
			addContent(rest)
			rest = ""
		}
	}

	msg.Parts = parts
	msg.RebuildDerived()
}

// decodeToolBlock unmarshals a tool sub-block payload. A payload that fails
// to parse degrades to a completed call carrying the raw text as its result.
func decodeToolBlock(callID, messageID, raw string) *chat.ToolCall {
	payload := strings.TrimSpace(raw)
	payload = strings.TrimPrefix(payload, "```json")
	payload = strings.TrimPrefix(payload, "```")
	payload = strings.TrimSuffix(payload, "```")
	payload = strings.TrimSpace(payload)

	var doc toolCallDoc
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return &chat.ToolCall{
			ID:        callID,
			MessageID: messageID,
			Request: chat.ToolRequest{
				ID:       callID,
				Type:     "function",
				Function: chat.FunctionCall{Name: "unknown", Arguments: "{}"},
			},
			State:  chat.ToolCallCompleted,
			Result: &chat.ToolResult{Success: true, Data: payload},
		}
	}

	state := chat.ToolCallState(doc.State)
	if state == "" {
		state = chat.ToolCallPending
	}
	return &chat.ToolCall{
		ID:           callID,
		MessageID:    messageID,
		Request:      doc.Request,
		State:        state,
		Result:       doc.Result,
		Timestamp:    doc.Timestamp,
		AutoApproved: doc.AutoApproved,
	}
}
