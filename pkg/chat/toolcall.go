package chat

// ToolCallState tracks the lifecycle of a tool call.
type ToolCallState string

const (
	ToolCallPending   ToolCallState = "pending"
	ToolCallCompleted ToolCallState = "completed"
	ToolCallFailed    ToolCallState = "failed"
	ToolCallDenied    ToolCallState = "denied"
)

// ErrorCodeUserDenied is the error code a tool result carries when the user
// rejected the call instead of the tool failing.
const ErrorCodeUserDenied = "USER_DENIED"

// FunctionCall names the invoked tool and its raw JSON arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolRequest is the provider-shaped request that initiated a tool call.
type ToolRequest struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// ToolError describes a failed or denied tool call.
type ToolError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// ToolResult is the outcome of a tool call. Exactly one of Data or Error is
// meaningful depending on Success.
type ToolResult struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ToolError `json:"error,omitempty"`
}

// ToolCall is one tool invocation owned by exactly one assistant message.
type ToolCall struct {
	ID           string        `json:"id"`
	MessageID    string        `json:"-"`
	Request      ToolRequest   `json:"request"`
	State        ToolCallState `json:"state"`
	Result       *ToolResult   `json:"result,omitempty"`
	Timestamp    int64         `json:"timestamp,omitempty"`
	AutoApproved bool          `json:"auto_approved,omitempty"`
}

// Clone returns a deep copy of the tool call. Tool calls are re-owned when
// assistant turns merge, and must never be shared by reference between two
// owning messages.
func (tc *ToolCall) Clone() *ToolCall {
	cp := *tc
	if tc.Result != nil {
		result := *tc.Result
		result.Data = deepCopyValue(tc.Result.Data)
		if tc.Result.Error != nil {
			errCopy := *tc.Result.Error
			errCopy.Details = deepCopyValue(tc.Result.Error.Details)
			result.Error = &errCopy
		}
		cp.Result = &result
	}
	return &cp
}

// deepCopyValue copies the JSON-shaped value graphs tool results are built
// from (maps, slices, scalars). Unknown types are returned as-is.
func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = deepCopyValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}

// HasResult reports whether the call carries a terminal result.
func (tc *ToolCall) HasResult() bool {
	return tc.Result != nil
}
