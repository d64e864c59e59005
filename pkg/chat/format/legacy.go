package format

import (
	"regexp"
	"strings"

	"github.com/mdvault/chatlog/pkg/chat"
)

// The oldest document generation stored the conversation as role-tagged
// blocks delimited by four or five backticks under a history section, with
// context notes as wiki links under a context section.

var (
	contextHeaderRe = regexp.MustCompile(`(?mi)^#{1,6}\s*context(\s+files)?\s*$`)
	anyHeaderRe     = regexp.MustCompile(`(?m)^#{1,6}\s`)
	wikiLinkRe      = regexp.MustCompile(`\[\[([^\]|]+)(?:\|[^\]]*)?\]\]`)
)

// ParseLegacy migrates a legacy five-backtick document into the unified chat
// model. It degrades gracefully: missing or malformed sections yield partial
// results, never an error. Message IDs are freshly generated, the title is
// derived from the first user message, and the model is taken from the first
// ai-variant role tag.
func ParseLegacy(text string) *chat.Chat {
	c := &chat.Chat{}

	for _, m := range legacyBlockRe.FindAllStringSubmatch(text, -1) {
		roleTag, body := m[1], m[2]

		msg := &chat.Message{
			ID:      chat.NewMessageID(),
			Content: strings.TrimSpace(body),
		}
		if roleTag == "user" {
			msg.Role = chat.RoleUser
		} else {
			msg.Role = chat.RoleAssistant
			if variant := strings.TrimPrefix(roleTag, "ai-"); variant != roleTag && c.Meta.Model == "" {
				c.Meta.Model = variant
			}
		}
		c.Messages = append(c.Messages, msg)
	}

	c.Meta.Title = chat.DeriveTitle(c.Messages)
	c.Meta.ContextFiles = legacyContextFiles(text)
	return c
}

// legacyContextFiles extracts wiki-linked note paths from the context
// section, stopping at the next section header.
func legacyContextFiles(text string) []chat.ContextFile {
	headerLoc := contextHeaderRe.FindStringIndex(text)
	if headerLoc == nil {
		return nil
	}
	section := text[headerLoc[1]:]
	if next := anyHeaderRe.FindStringIndex(section); next != nil {
		section = section[:next[0]]
	}

	var out []chat.ContextFile
	for _, m := range wikiLinkRe.FindAllStringSubmatch(section, -1) {
		path := strings.TrimSpace(m[1])
		if path == "" {
			continue
		}
		out = append(out, chat.ContextFile{Path: path, Type: inferContextFileType(path)})
	}
	return out
}
