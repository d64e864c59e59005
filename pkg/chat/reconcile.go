package chat

import (
	"encoding/json"
	"fmt"
)

// ReconcileToolResults folds flat tool-role records into the tool_calls list
// of their owning assistant message. It is a single left-fold over the
// sequence: the most recently seen assistant message owns every tool record
// that follows it, until the next assistant message takes over.
//
// A tool record whose content parses as JSON with an "error" field becomes a
// failed call (denied when error.code is USER_DENIED); everything else is a
// completed call whose result data is the parsed JSON, or the raw text when
// parsing fails. Tool records that arrive before any assistant message are
// converted to system-role notes instead of being dropped.
//
// Non-tool messages pass through as-is; owning assistant messages gain the
// reconciled calls in place.
func ReconcileToolResults(messages []*Message) []*Message {
	out := make([]*Message, 0, len(messages))
	var lastAssistant *Message

	for _, msg := range messages {
		if msg.Role != RoleTool {
			out = append(out, msg)
			if msg.Role == RoleAssistant {
				lastAssistant = msg
			}
			continue
		}

		state, result := classifyToolRecord(msg.Content)
		callID := msg.ToolCallID
		if callID == "" {
			callID = msg.ID
		}

		if lastAssistant == nil {
			out = append(out, orphanToolNote(callID, state, result))
			continue
		}

		if existing := lastAssistant.ToolCallByID(callID); existing != nil {
			existing.Result = result
			existing.State = state
			continue
		}

		// No matching pending call: reconstruct one so the result is not
		// lost. The request side is unknown at this point.
		lastAssistant.ToolCalls = append(lastAssistant.ToolCalls, &ToolCall{
			ID:        callID,
			MessageID: lastAssistant.ID,
			Request: ToolRequest{
				ID:       callID,
				Type:     "function",
				Function: FunctionCall{Name: "unknown", Arguments: "{}"},
			},
			State:  state,
			Result: result,
		})
	}

	return out
}

// classifyToolRecord interprets a tool record's content as a structured
// result. JSON parse failures degrade to a raw-text completed result.
func classifyToolRecord(content string) (ToolCallState, *ToolResult) {
	var parsed any
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return ToolCallCompleted, &ToolResult{Success: true, Data: content}
	}

	if obj, ok := parsed.(map[string]any); ok {
		if rawErr, present := obj["error"]; present {
			toolErr := decodeToolError(rawErr)
			state := ToolCallFailed
			if toolErr.Code == ErrorCodeUserDenied {
				state = ToolCallDenied
			}
			return state, &ToolResult{Success: false, Error: toolErr}
		}
	}

	return ToolCallCompleted, &ToolResult{Success: true, Data: parsed}
}

// decodeToolError builds a ToolError from the "error" field of a parsed tool
// record, tolerating both structured objects and bare strings.
func decodeToolError(raw any) *ToolError {
	switch v := raw.(type) {
	case map[string]any:
		toolErr := &ToolError{}
		if code, ok := v["code"].(string); ok {
			toolErr.Code = code
		}
		if msg, ok := v["message"].(string); ok {
			toolErr.Message = msg
		}
		if details, present := v["details"]; present {
			toolErr.Details = details
		}
		return toolErr
	case string:
		return &ToolError{Message: v}
	default:
		return &ToolError{Message: fmt.Sprintf("%v", raw)}
	}
}

// orphanToolNote converts a tool record with no owning assistant message into
// a system-role note summarizing the outcome.
func orphanToolNote(callID string, state ToolCallState, result *ToolResult) *Message {
	var summary string
	switch {
	case result.Error != nil && result.Error.Message != "":
		summary = fmt.Sprintf("Tool call %s %s: %s", callID, state, result.Error.Message)
	case result.Error != nil:
		summary = fmt.Sprintf("Tool call %s %s", callID, state)
	default:
		summary = fmt.Sprintf("Tool call %s completed: %s", callID, compactResult(result.Data))
	}
	return NewSystemMessage(summary)
}

// compactResult renders result data as a single-line string for notes.
func compactResult(data any) string {
	if s, ok := data.(string); ok {
		return s
	}
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(b)
}
