// Package format implements the on-disk chat document format: frontmatter
// metadata, sentinel-delimited message blocks, the legacy backtick format,
// and detection across the historical generations.
package format

import (
	"regexp"
	"strings"
)

// Format classifies a raw document.
type Format int

const (
	// FormatInvalid marks text that is not a chat document of any known
	// generation. Such files are skipped, never surfaced as errors.
	FormatInvalid Format = iota

	// FormatModern is the current frontmatter + sentinel-block format.
	FormatModern

	// FormatLegacyBacktick is the oldest generation: role-tagged blocks
	// delimited by four or five backticks under a history section.
	FormatLegacyBacktick
)

func (f Format) String() string {
	switch f {
	case FormatModern:
		return "modern"
	case FormatLegacyBacktick:
		return "legacy-backtick"
	default:
		return "invalid"
	}
}

var (
	// Markdown constructs that disqualify a leading "---" block from being
	// frontmatter. Ordinary notes open with horizontal rules followed by
	// headers, tables, links or code fences; those must never be
	// misclassified as chats.
	mdHeaderRe    = regexp.MustCompile(`(?m)^#{1,6}\s`)
	mdTableRowRe  = regexp.MustCompile(`(?m)^\s*\|.*\|\s*$`)
	mdLinkRe      = regexp.MustCompile(`\[[^\]]*\]\([^)]*\)`)
	mdImageRe     = regexp.MustCompile(`!\[[^\]]*\]`)
	mdCodeFenceRe = regexp.MustCompile("(?m)^```")

	keyValueLineRe  = regexp.MustCompile(`(?m)^[A-Za-z_][A-Za-z0-9_-]*:(\s|$)`)
	requiredKeyRe   = regexp.MustCompile(`(?m)^(id|model|title):`)
	historyHeaderRe = regexp.MustCompile(`(?mi)^#{1,6}\s*(chat\s+)?history\s*$`)
	legacyBlockRe   = regexp.MustCompile("(?s)`{4,5}(user|ai(?:-[A-Za-z0-9._-]+)?)\n(.*?)\n`{4,5}")
)

// Detect classifies raw document text as modern, legacy, or not a chat.
func Detect(text string) Format {
	if hasMessageSentinels(text) {
		return FormatModern
	}
	if block, ok := leadingFrontmatterBlock(text); ok && looksLikeChatFrontmatter(block) {
		return FormatModern
	}
	if historyHeaderRe.MatchString(text) && legacyBlockRe.MatchString(text) {
		return FormatLegacyBacktick
	}
	return FormatInvalid
}

// HasMessageSentinels reports whether the text contains at least one matched
// message start/end sentinel pair. The save path uses this as its
// empty-overwrite guard: a file with sentinels holds history.
func HasMessageSentinels(text string) bool {
	return hasMessageSentinels(text)
}

func hasMessageSentinels(text string) bool {
	loc := msgStartRe.FindStringIndex(text)
	if loc == nil {
		return false
	}
	return strings.Contains(text[loc[1]:], msgEndMarker)
}

// leadingFrontmatterBlock extracts the body of a "---" delimited block
// anchored at offset 0, if present.
func leadingFrontmatterBlock(text string) (string, bool) {
	block, _, ok := splitFrontmatter(text)
	return block, ok
}

// looksLikeChatFrontmatter applies the false-positive guards: the block must
// be free of markdown constructs and must actually carry metadata-shaped
// lines or one of the required keys.
func looksLikeChatFrontmatter(block string) bool {
	if mdHeaderRe.MatchString(block) ||
		mdTableRowRe.MatchString(block) ||
		mdLinkRe.MatchString(block) ||
		mdImageRe.MatchString(block) ||
		mdCodeFenceRe.MatchString(block) {
		return false
	}
	return keyValueLineRe.MatchString(block) || requiredKeyRe.MatchString(block)
}
