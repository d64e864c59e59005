package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterializedPartsSynthesisOrder(t *testing.T) {
	msg := &Message{
		ID:        "msg-1",
		Role:      RoleAssistant,
		Content:   "final answer",
		Reasoning: "thinking it through",
		ToolCalls: []*ToolCall{
			{ID: "call-1", MessageID: "msg-1"},
			{ID: "call-2", MessageID: "msg-1"},
		},
	}

	parts := msg.MaterializedParts()
	require.Len(t, parts, 4)

	assert.Equal(t, PartReasoning, parts[0].Type)
	assert.Equal(t, "thinking it through", parts[0].Data)
	assert.Equal(t, PartToolCall, parts[1].Type)
	assert.Equal(t, "call-1", parts[1].Data)
	assert.Equal(t, PartToolCall, parts[2].Type)
	assert.Equal(t, "call-2", parts[2].Data)
	assert.Equal(t, PartContent, parts[3].Type)
	assert.Equal(t, "final answer", parts[3].Data)

	for i := 1; i < len(parts); i++ {
		assert.Greater(t, parts[i].Timestamp, parts[i-1].Timestamp)
	}
}

func TestMaterializedPartsSortsExplicitParts(t *testing.T) {
	msg := &Message{
		ID:   "msg-1",
		Role: RoleAssistant,
		Parts: []*MessagePart{
			{ID: "p2", Type: PartContent, Timestamp: 5, Data: "later"},
			{ID: "p1", Type: PartReasoning, Timestamp: 1, Data: "earlier"},
		},
	}

	parts := msg.MaterializedParts()
	require.Len(t, parts, 2)
	assert.Equal(t, "p1", parts[0].ID)
	assert.Equal(t, "p2", parts[1].ID)

	// Clones, not aliases.
	parts[0].Data = "mutated"
	assert.Equal(t, "earlier", msg.Parts[1].Data)
}

func TestRebuildDerived(t *testing.T) {
	msg := &Message{
		ID:   "msg-1",
		Role: RoleAssistant,
		Parts: []*MessagePart{
			{ID: "p1", Type: PartReasoning, Timestamp: 0, Data: "first thought"},
			{ID: "p2", Type: PartContent, Timestamp: 1, Data: "part one"},
			{ID: "p3", Type: PartContent, Timestamp: 2, Data: "part two"},
		},
		Content:   "stale",
		Reasoning: "stale",
	}

	msg.RebuildDerived()
	assert.Equal(t, "part one\n\npart two", msg.Content)
	assert.Equal(t, "first thought", msg.Reasoning)
}

func TestRebuildDerivedNoPartsIsNoop(t *testing.T) {
	msg := &Message{ID: "msg-1", Role: RoleUser, Content: "hello"}
	msg.RebuildDerived()
	assert.Equal(t, "hello", msg.Content)
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name     string
		messages []*Message
		want     string
	}{
		{
			name:     "no messages",
			messages: nil,
			want:     "",
		},
		{
			name: "short user message",
			messages: []*Message{
				{Role: RoleAssistant, Content: "ignored"},
				{Role: RoleUser, Content: "Hello"},
			},
			want: "Hello",
		},
		{
			name: "long message truncated with ellipsis",
			messages: []*Message{
				{Role: RoleUser, Content: strings.Repeat("a", 80)},
			},
			want: strings.Repeat("a", 50) + "...",
		},
		{
			name: "first line only",
			messages: []*Message{
				{Role: RoleUser, Content: "Summarize this\nlong body follows"},
			},
			want: "Summarize this",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveTitle(tt.messages))
		})
	}
}

func TestToolCallClone(t *testing.T) {
	tc := &ToolCall{
		ID:        "call-1",
		MessageID: "msg-1",
		State:     ToolCallCompleted,
		Result: &ToolResult{
			Success: true,
			Data:    map[string]any{"files": []any{"a.md", "b.md"}},
		},
	}

	cp := tc.Clone()
	cp.MessageID = "msg-2"
	cp.Result.Data.(map[string]any)["files"].([]any)[0] = "mutated.md"

	assert.Equal(t, "msg-1", tc.MessageID)
	assert.Equal(t, "a.md", tc.Result.Data.(map[string]any)["files"].([]any)[0])
}

func TestIDPrefixes(t *testing.T) {
	assert.True(t, strings.HasPrefix(NewMessageID(), "msg-"))
	assert.True(t, strings.HasPrefix(NewToolCallID(), "call-"))
	assert.True(t, strings.HasPrefix(NewPartID(), "part-"))
	assert.NotEqual(t, NewMessageID(), NewMessageID())
}
