package chat

// CoalesceAssistantTurns merges every maximal run of consecutive assistant
// messages into one logical turn rooted at the run's first message. All other
// messages pass through unchanged and close the open turn.
//
// Within a merged turn:
//   - tool calls merge into an ID-keyed set where an entry carrying a result
//     wins over one without, and every call is re-owned (deep copy) by the
//     turn root;
//   - parts concatenate in document order and are re-stamped with strictly
//     increasing timestamps, then adjacent reasoning parts collapse into one;
//   - Content and Reasoning are recomputed from the merged parts;
//   - annotation and web-search flags are last-write-wins.
//
// The input slice and its messages are not modified; emitted turn roots are
// rebuilt copies.
func CoalesceAssistantTurns(messages []*Message) []*Message {
	out := make([]*Message, 0, len(messages))
	var open *Message

	for _, msg := range messages {
		if msg.Role != RoleAssistant {
			open = nil
			out = append(out, msg)
			continue
		}
		if open == nil {
			open = openTurn(msg)
			out = append(out, open)
			continue
		}
		mergeIntoTurn(open, msg)
	}

	return out
}

// openTurn rebuilds an assistant message as the root of a new turn, re-owning
// its tool calls.
func openTurn(msg *Message) *Message {
	root := *msg

	if len(msg.ToolCalls) > 0 {
		root.ToolCalls = make([]*ToolCall, len(msg.ToolCalls))
		for i, tc := range msg.ToolCalls {
			cp := tc.Clone()
			cp.MessageID = msg.ID
			root.ToolCalls[i] = cp
		}
	}
	if len(msg.Parts) > 0 {
		root.Parts = make([]*MessagePart, len(msg.Parts))
		for i, p := range msg.Parts {
			root.Parts[i] = p.Clone()
		}
	}
	if msg.Annotations != nil {
		root.Annotations = append([]string(nil), msg.Annotations...)
	}

	return &root
}

// mergeIntoTurn folds an incoming assistant message into the open turn root.
func mergeIntoTurn(root, incoming *Message) {
	root.ToolCalls = mergeToolCalls(root, incoming)
	root.Parts = mergeParts(root, incoming)
	root.RebuildDerived()

	if incoming.Annotations != nil {
		root.Annotations = append([]string(nil), incoming.Annotations...)
	}
	root.WebSearchEnabled = incoming.WebSearchEnabled
}

// mergeToolCalls combines the root's and incoming message's tool calls in
// document order. On an ID collision the entry carrying a result replaces one
// without; otherwise the earlier entry stays.
func mergeToolCalls(root, incoming *Message) []*ToolCall {
	combined := make([]*ToolCall, 0, len(root.ToolCalls)+len(incoming.ToolCalls))
	index := make(map[string]int)

	for _, tc := range append(append([]*ToolCall(nil), root.ToolCalls...), incoming.ToolCalls...) {
		cp := tc.Clone()
		cp.MessageID = root.ID

		if i, seen := index[cp.ID]; seen {
			if cp.HasResult() {
				combined[i] = cp
			}
			continue
		}
		index[cp.ID] = len(combined)
		combined = append(combined, cp)
	}

	return combined
}

// mergeParts concatenates root and incoming parts in document order,
// collapses adjacent reasoning parts, drops duplicate tool-call references,
// and re-stamps the result with strictly increasing timestamps.
func mergeParts(root, incoming *Message) []*MessagePart {
	combined := append(root.MaterializedParts(), incoming.MaterializedParts()...)

	merged := make([]*MessagePart, 0, len(combined))
	seenCalls := make(map[string]bool)
	for _, p := range combined {
		if p.Type == PartToolCall {
			if seenCalls[p.Data] {
				continue
			}
			seenCalls[p.Data] = true
		}
		if p.Type == PartReasoning && len(merged) > 0 {
			if prev := merged[len(merged)-1]; prev.Type == PartReasoning {
				prev.Data = prev.Data + "\n\n" + p.Data
				continue
			}
		}
		merged = append(merged, p)
	}

	for i, p := range merged {
		p.Timestamp = int64(i)
	}
	return merged
}
