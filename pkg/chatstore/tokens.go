package chatstore

import (
	"encoding/json"
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/mdvault/chatlog/pkg/chat"
)

// tokenEncoding is the BPE encoding used for conversation size estimates.
const tokenEncoding = "cl100k_base"

// EstimateTokens approximates the token footprint of a conversation:
// content, reasoning, and tool-call arguments and results of every message.
// Callers use this to decide when a conversation approaches the model's
// context window.
func EstimateTokens(c *chat.Chat) (int, error) {
	enc, err := tiktoken.GetEncoding(tokenEncoding)
	if err != nil {
		return 0, fmt.Errorf("chatstore: load token encoding: %w", err)
	}

	total := 0
	count := func(text string) {
		if text != "" {
			total += len(enc.Encode(text, nil, nil))
		}
	}

	for _, msg := range c.Messages {
		count(msg.Content)
		count(msg.Reasoning)
		for _, tc := range msg.ToolCalls {
			count(tc.Request.Function.Name)
			count(tc.Request.Function.Arguments)
			if tc.Result == nil || tc.Result.Data == nil {
				continue
			}
			switch data := tc.Result.Data.(type) {
			case string:
				count(data)
			default:
				// Structured results count at their serialized size.
				if b, err := json.Marshal(data); err == nil {
					count(string(b))
				}
			}
		}
	}
	return total, nil
}
