package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Format
	}{
		{
			name: "sentinel pair",
			text: "preamble\n<!-- chat:message role=\"user\" id=\"msg-1\" -->\nHello\n<!-- chat:message:end -->\n",
			want: FormatModern,
		},
		{
			name: "frontmatter with id",
			text: "---\nid: chat-123\nmodel: gpt-4o\n---\nno messages yet\n",
			want: FormatModern,
		},
		{
			name: "frontmatter with only key value lines",
			text: "---\nsome_key: some value\n---\nbody\n",
			want: FormatModern,
		},
		{
			name: "markdown header inside frontmatter-shaped block",
			text: "---\n# My Note\n---\nbody\n",
			want: FormatInvalid,
		},
		{
			name: "markdown table inside frontmatter-shaped block",
			text: "---\n| col | col2 |\n| x | y |\n---\nbody\n",
			want: FormatInvalid,
		},
		{
			name: "code fence inside frontmatter-shaped block",
			text: "---\n```go\nid: fake\n```\n---\nbody\n",
			want: FormatInvalid,
		},
		{
			name: "link inside frontmatter-shaped block",
			text: "---\nsee [docs](https://example.com)\n---\nbody\n",
			want: FormatInvalid,
		},
		{
			name: "header plus key value line still rejected",
			text: "---\nid: chat-1\n# Heading\n---\nbody\n",
			want: FormatInvalid,
		},
		{
			name: "legacy five backtick",
			text: "# History\n\n`````user\nHello\n`````\n````ai-gpt-4o\nHi\n````\n",
			want: FormatLegacyBacktick,
		},
		{
			name: "legacy blocks without history header",
			text: "`````user\nHello\n`````\n",
			want: FormatInvalid,
		},
		{
			name: "history header without blocks",
			text: "# History\n\njust prose\n",
			want: FormatInvalid,
		},
		{
			name: "plain note",
			text: "# Shopping list\n\n- milk\n- eggs\n",
			want: FormatInvalid,
		},
		{
			name: "empty",
			text: "",
			want: FormatInvalid,
		},
		{
			name: "unterminated frontmatter",
			text: "---\nid: chat-1\nnever closed",
			want: FormatInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.text), "text:\n%s", tt.text)
		})
	}
}

func TestHasMessageSentinels(t *testing.T) {
	assert.False(t, HasMessageSentinels("---\nid: chat-1\n---\n"))
	assert.False(t, HasMessageSentinels("<!-- chat:message role=\"user\" id=\"msg-1\" -->\nno end marker"))
	assert.True(t, HasMessageSentinels("<!-- chat:message role=\"user\" id=\"msg-1\" -->\nhi\n<!-- chat:message:end -->"))
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "modern", FormatModern.String())
	assert.Equal(t, "legacy-backtick", FormatLegacyBacktick.String())
	assert.Equal(t, "invalid", FormatInvalid.String())
}
