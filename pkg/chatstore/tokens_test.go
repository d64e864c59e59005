package chatstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdvault/chatlog/pkg/chat"
)

func TestEstimateTokens(t *testing.T) {
	c := newTestChat("chat-1", "hello world")
	if _, err := EstimateTokens(c); err != nil {
		t.Skipf("token encoding unavailable: %v", err)
	}

	empty, err := EstimateTokens(&chat.Chat{})
	require.NoError(t, err)
	assert.Zero(t, empty)

	small, err := EstimateTokens(newTestChat("chat-1", "hi"))
	require.NoError(t, err)
	large, err := EstimateTokens(newTestChat("chat-1", "a much longer prompt with many more words in it than the other"))
	require.NoError(t, err)

	assert.Positive(t, small)
	assert.Greater(t, large, small)
}

func chatWithToolResult(data any) *chat.Chat {
	assistant := chat.NewAssistantMessage()
	assistant.ToolCalls = []*chat.ToolCall{{
		ID:        "call-1",
		MessageID: assistant.ID,
		Request: chat.ToolRequest{
			ID:       "call-1",
			Type:     "function",
			Function: chat.FunctionCall{Name: "search_notes", Arguments: `{"query":"plans"}`},
		},
		State: chat.ToolCallCompleted,
	}}
	if data != nil {
		assistant.ToolCalls[0].Result = &chat.ToolResult{Success: true, Data: data}
	}
	return &chat.Chat{Messages: []*chat.Message{assistant}}
}

func TestEstimateTokensCountsStructuredToolResults(t *testing.T) {
	without, err := EstimateTokens(chatWithToolResult(nil))
	if err != nil {
		t.Skipf("token encoding unavailable: %v", err)
	}

	structured, err := EstimateTokens(chatWithToolResult(map[string]any{
		"files": []any{"Plan.md", "Notes.md", "Archive.md"},
	}))
	require.NoError(t, err)
	assert.Greater(t, structured, without)
}
