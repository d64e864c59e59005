package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdvault/chatlog/pkg/chat"
)

func TestParseLegacyBasic(t *testing.T) {
	text := "# History\n\n" +
		"`````user\nHello\n`````\n" +
		"````ai-gpt-4o\nHi\n````\n"

	c := ParseLegacy(text)

	require.Len(t, c.Messages, 2)
	assert.Equal(t, chat.RoleUser, c.Messages[0].Role)
	assert.Equal(t, "Hello", c.Messages[0].Content)
	assert.Equal(t, chat.RoleAssistant, c.Messages[1].Role)
	assert.Equal(t, "Hi", c.Messages[1].Content)

	assert.True(t, strings.HasPrefix(c.Meta.Title, "Hello"))
	assert.Equal(t, "gpt-4o", c.Meta.Model)

	// Fresh IDs per migrated message.
	assert.NotEmpty(t, c.Messages[0].ID)
	assert.NotEmpty(t, c.Messages[1].ID)
	assert.NotEqual(t, c.Messages[0].ID, c.Messages[1].ID)
}

func TestParseLegacyLongTitleTruncated(t *testing.T) {
	body := strings.Repeat("x", 80)
	c := ParseLegacy("# History\n\n`````user\n" + body + "\n`````\n")

	require.Len(t, c.Messages, 1)
	assert.Len(t, c.Meta.Title, 53)
	assert.True(t, strings.HasSuffix(c.Meta.Title, "..."))
}

func TestParseLegacyContextFiles(t *testing.T) {
	text := "# Context Files\n" +
		"[[Notes/Plan]]\n" +
		"[[Resources/Extractions/paper|paper]]\n\n" +
		"# History\n\n" +
		"`````user\nHello\n`````\n"

	c := ParseLegacy(text)

	require.Len(t, c.Meta.ContextFiles, 2)
	assert.Equal(t, chat.ContextFile{Path: "Notes/Plan", Type: chat.ContextFileSource}, c.Meta.ContextFiles[0])
	assert.Equal(t, chat.ContextFile{Path: "Resources/Extractions/paper", Type: chat.ContextFileExtraction}, c.Meta.ContextFiles[1])
}

func TestParseLegacyContextStopsAtNextSection(t *testing.T) {
	text := "# Context\n" +
		"[[Attached]]\n" +
		"# History\n\n" +
		"`````user\nsee also [[Inline Link]]\n`````\n"

	c := ParseLegacy(text)

	require.Len(t, c.Meta.ContextFiles, 1)
	assert.Equal(t, "Attached", c.Meta.ContextFiles[0].Path)
}

func TestParseLegacyMalformedDegradesGracefully(t *testing.T) {
	// No history section, unclosed block: partial results, never a panic.
	c := ParseLegacy("`````user\nunclosed")
	assert.Empty(t, c.Messages)
	assert.Empty(t, c.Meta.Title)

	c = ParseLegacy("")
	assert.Empty(t, c.Messages)
}

func TestParseLegacyPlainAIRole(t *testing.T) {
	c := ParseLegacy("# History\n\n````ai\nanswer\n````\n")

	require.Len(t, c.Messages, 1)
	assert.Equal(t, chat.RoleAssistant, c.Messages[0].Role)
	assert.Empty(t, c.Meta.Model)
}
