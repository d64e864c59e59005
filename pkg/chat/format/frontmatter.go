package format

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mdvault/chatlog/pkg/chat"
)

const frontmatterDelimiter = "---"

var timeNow = time.Now // injected for testability

// ParseMeta extracts and decodes the file-leading frontmatter block into
// chat metadata. It is deliberately lenient: every field except id is
// defaulted when absent or malformed. Returns nil when the text has no
// leading frontmatter block or the block carries no id.
func ParseMeta(text string) *chat.Meta {
	block, _, ok := splitFrontmatter(text)
	if !ok {
		return nil
	}

	raw := make(map[string]any)
	if err := yaml.Unmarshal([]byte(block), &raw); err != nil {
		return nil
	}

	id := strings.TrimSpace(asString(raw["id"]))
	if id == "" {
		return nil
	}

	now := timeNow()
	meta := &chat.Meta{
		ID:           id,
		Model:        asString(raw["model"]),
		Created:      asTime(raw["created"], now),
		LastModified: asTime(raw["last_modified"], now),
		Title:        asString(raw["title"]),
		Version:      asInt(raw["version"]),
		Tags:         NormalizeTags(coerceTags(raw["tags"])),
		ContextFiles: coerceContextFiles(raw["context_files"]),
		SystemPrompt: coerceSystemPrompt(raw["system_prompt"]),
		FontSize:     asInt(raw["chat_font_size"]),
		AgentMode:    asBool(raw["agent_mode"]),
	}
	if meta.Title == "" {
		meta.Title = meta.ID
	}
	return meta
}

// SerializeMeta renders metadata as a frontmatter block, the exact inverse of
// ParseMeta for every canonical field.
func SerializeMeta(meta *chat.Meta) (string, error) {
	doc := metaDoc{
		ID:           meta.ID,
		Model:        meta.Model,
		Created:      meta.Created.UTC().Format(time.RFC3339),
		LastModified: meta.LastModified.UTC().Format(time.RFC3339),
		Title:        meta.Title,
		Version:      meta.Version,
		Tags:         NormalizeTags(meta.Tags),
		FontSize:     meta.FontSize,
		AgentMode:    meta.AgentMode,
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	for _, cf := range meta.ContextFiles {
		doc.ContextFiles = append(doc.ContextFiles, contextFileDoc{
			Path: cf.Path,
			Type: string(cf.Type),
		})
	}
	if meta.SystemPrompt != nil {
		doc.SystemPrompt = &systemPromptDoc{
			Type: string(meta.SystemPrompt.Type),
			Path: meta.SystemPrompt.Path,
		}
	}

	body, err := yaml.Marshal(&doc)
	if err != nil {
		return "", fmt.Errorf("format: serialize frontmatter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(frontmatterDelimiter + "\n")
	sb.Write(body)
	sb.WriteString(frontmatterDelimiter + "\n")
	return sb.String(), nil
}

// metaDoc fixes the canonical frontmatter key set. These keys are part of
// the on-disk format and must stay byte-stable across versions.
type metaDoc struct {
	ID           string           `yaml:"id"`
	Model        string           `yaml:"model,omitempty"`
	Created      string           `yaml:"created"`
	LastModified string           `yaml:"last_modified"`
	Title        string           `yaml:"title,omitempty"`
	Version      int              `yaml:"version"`
	Tags         []string         `yaml:"tags"`
	ContextFiles []contextFileDoc `yaml:"context_files,omitempty"`
	SystemPrompt *systemPromptDoc `yaml:"system_prompt,omitempty"`
	FontSize     int              `yaml:"chat_font_size,omitempty"`
	AgentMode    bool             `yaml:"agent_mode"`
}

type contextFileDoc struct {
	Path string `yaml:"path"`
	Type string `yaml:"type"`
}

type systemPromptDoc struct {
	Type string `yaml:"type"`
	Path string `yaml:"path,omitempty"`
}

// splitFrontmatter separates a file-leading frontmatter block from the
// document body. Only blocks anchored at offset 0 qualify, and only a line
// consisting of exactly the delimiter closes the block.
func splitFrontmatter(text string) (block, body string, ok bool) {
	if !strings.HasPrefix(text, frontmatterDelimiter+"\n") {
		return "", "", false
	}
	rest := text[len(frontmatterDelimiter):]
	idx, after, ok := frontmatterClose(rest)
	if !ok {
		return "", "", false
	}
	block = strings.TrimPrefix(rest[:idx], "\n")
	body = strings.TrimPrefix(rest[after:], "\n")
	return block, body, true
}

// frontmatterClose locates the first line that is exactly the delimiter,
// returning the offset of its leading newline and the offset just past the
// delimiter. Longer dash runs ("----") do not close the block.
func frontmatterClose(rest string) (idx, after int, ok bool) {
	target := "\n" + frontmatterDelimiter
	for search := 0; ; {
		i := strings.Index(rest[search:], target)
		if i == -1 {
			return 0, 0, false
		}
		i += search
		end := i + len(target)
		if end == len(rest) || rest[end] == '\n' {
			return i, end, true
		}
		search = i + 1
	}
}

// NormalizeTags trims entries, strips a leading '#', drops empties, and
// returns a sorted, deduplicated set.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, tag := range tags {
		t := strings.TrimSpace(tag)
		t = strings.TrimPrefix(t, "#")
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// coerceTags accepts the three historical tag encodings: a YAML array, a
// JSON-array string, or a single bare string.
func coerceTags(raw any) []string {
	switch v := raw.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, asString(item))
		}
		return out
	case string:
		trimmed := strings.TrimSpace(v)
		if strings.HasPrefix(trimmed, "[") {
			var parsed []string
			if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
				return parsed
			}
		}
		return []string{v}
	default:
		return nil
	}
}

// coerceContextFiles accepts bare path strings (type inferred from the path)
// or explicit {path, type} objects. Entries with empty paths are dropped.
func coerceContextFiles(raw any) []chat.ContextFile {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	var out []chat.ContextFile
	for _, item := range items {
		switch v := item.(type) {
		case string:
			path := strings.TrimSpace(v)
			if path == "" {
				continue
			}
			out = append(out, chat.ContextFile{Path: path, Type: inferContextFileType(path)})
		case map[string]any:
			path := strings.TrimSpace(asString(v["path"]))
			if path == "" {
				continue
			}
			cfType := chat.ContextFileType(asString(v["type"]))
			if cfType != chat.ContextFileSource && cfType != chat.ContextFileExtraction {
				cfType = inferContextFileType(path)
			}
			out = append(out, chat.ContextFile{Path: path, Type: cfType})
		}
	}
	return out
}

func inferContextFileType(path string) chat.ContextFileType {
	if strings.Contains(path, "/Extractions/") {
		return chat.ContextFileExtraction
	}
	return chat.ContextFileSource
}

// coerceSystemPrompt prefers the structured {type, path} object and falls
// back to the legacy single-field path, stripping wiki-link brackets.
func coerceSystemPrompt(raw any) *chat.SystemPrompt {
	switch v := raw.(type) {
	case map[string]any:
		spType := chat.SystemPromptType(asString(v["type"]))
		if spType == "" {
			spType = chat.SystemPromptCustom
		}
		return &chat.SystemPrompt{Type: spType, Path: strings.TrimSpace(asString(v["path"]))}
	case string:
		path := strings.TrimSpace(v)
		path = strings.TrimPrefix(path, "[[")
		path = strings.TrimSuffix(path, "]]")
		path = strings.TrimSpace(path)
		if path == "" {
			return nil
		}
		return &chat.SystemPrompt{Type: chat.SystemPromptCustom, Path: path}
	default:
		return nil
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

// asTime accepts RFC 3339 strings, native YAML timestamps, and Unix
// millisecond integers (the oldest generation stored epoch millis).
func asTime(v any, fallback time.Time) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(t)); err == nil {
			return parsed
		}
	case int:
		return time.UnixMilli(int64(t)).UTC()
	case int64:
		return time.UnixMilli(t).UTC()
	case float64:
		return time.UnixMilli(int64(t)).UTC()
	}
	return fallback
}
