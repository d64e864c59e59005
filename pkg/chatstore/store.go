// Package chatstore orchestrates persistence of chat documents in a vault:
// versioned saves with overwrite protection, single-document loads across
// format generations, and forgiving bulk loads.
package chatstore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/mdvault/chatlog/pkg/chat"
	"github.com/mdvault/chatlog/pkg/chat/format"
	"github.com/mdvault/chatlog/pkg/logging"
	"github.com/mdvault/chatlog/pkg/vault"
)

var (
	// ErrEmptyOverwrite is returned when a save would replace a document
	// that already contains message history with an empty conversation.
	ErrEmptyOverwrite = errors.New("chatstore: refusing to overwrite existing history with an empty conversation")

	// ErrNotAChat is returned when the addressed document exists but is not
	// a chat of any known format generation.
	ErrNotAChat = errors.New("chatstore: not a chat document")
)

var timeNow = time.Now // injected for testability

// ChatStore reads and writes chat documents through a vault store. It owns
// no locking: callers must serialize saves of the same chat ID.
type ChatStore struct {
	store            vault.Store
	folder           string
	defaultTag       string
	defaultAgentMode bool
	defaultFontSize  int
	toolResultCap    int
	logger           *logging.Logger
}

// Option configures a ChatStore.
type Option func(*ChatStore)

// WithFolder sets the vault folder chat documents live in.
func WithFolder(folder string) Option {
	return func(s *ChatStore) { s.folder = folder }
}

// WithDefaultTag sets a tag merged into every saved chat.
func WithDefaultTag(tag string) Option {
	return func(s *ChatStore) { s.defaultTag = tag }
}

// WithDefaults sets the agent mode and font size stamped onto newly created
// chat documents.
func WithDefaults(agentMode bool, fontSize int) Option {
	return func(s *ChatStore) {
		s.defaultAgentMode = agentMode
		s.defaultFontSize = fontSize
	}
}

// WithToolResultCap overrides the serialized tool-result byte budget.
func WithToolResultCap(capBytes int) Option {
	return func(s *ChatStore) { s.toolResultCap = capBytes }
}

// WithLogger attaches a component logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *ChatStore) { s.logger = logger }
}

// New creates a ChatStore over the given vault store.
func New(store vault.Store, opts ...Option) *ChatStore {
	s := &ChatStore{
		store:         store,
		folder:        "Chats",
		toolResultCap: format.DefaultToolResultCap,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// chatPath maps a chat ID to its vault path.
func (s *ChatStore) chatPath(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("chatstore: invalid chat id (empty)")
	}
	if strings.ContainsAny(id, "/\\") {
		return "", fmt.Errorf("chatstore: invalid chat id %q (contains path separator)", id)
	}
	return path.Join(s.folder, id+".md"), nil
}

// SaveChat persists a chat document, bumping its version and merging tags
// with the existing document's. The first save of a new ID creates the file
// (version 1); subsequent saves modify it in place. Returns the new version.
//
// Saving an empty message list over a file that already contains message
// sentinels fails with ErrEmptyOverwrite and leaves the file untouched.
func (s *ChatStore) SaveChat(ctx context.Context, c *chat.Chat) (int, error) {
	docPath, err := s.chatPath(c.Meta.ID)
	if err != nil {
		return 0, err
	}

	currentVersion := 0
	exists := false
	var existingTags []string
	var existingMeta *chat.Meta

	existingRaw, err := s.store.Read(ctx, docPath)
	switch {
	case err == nil:
		exists = true
		if len(c.Messages) == 0 && format.HasMessageSentinels(existingRaw) {
			return 0, ErrEmptyOverwrite
		}
		if existingMeta = format.ParseMeta(existingRaw); existingMeta != nil {
			currentVersion = existingMeta.Version
			existingTags = existingMeta.Tags
		}
	case errors.Is(err, vault.ErrNotFound):
		// First save of this ID.
	default:
		return 0, err
	}

	now := timeNow()
	c.Meta.Version = currentVersion + 1
	c.Meta.LastModified = now
	c.Meta.Tags = format.NormalizeTags(s.mergedTags(existingTags, c.Meta.Tags))

	if existingMeta != nil {
		c.Meta.Created = existingMeta.Created
	} else {
		if c.Meta.Created.IsZero() {
			c.Meta.Created = now
		}
		c.Meta.AgentMode = c.Meta.AgentMode || s.defaultAgentMode
		if c.Meta.FontSize == 0 {
			c.Meta.FontSize = s.defaultFontSize
		}
	}
	if c.Meta.Title == "" || c.Meta.Title == c.Meta.ID {
		if derived := chat.DeriveTitle(c.Messages); derived != "" {
			c.Meta.Title = derived
		} else if c.Meta.Title == "" {
			c.Meta.Title = c.Meta.ID
		}
	}

	text, err := format.SerializeWithCap(c, s.toolResultCap)
	if err != nil {
		return 0, err
	}

	if err := s.store.EnsureDir(ctx, s.folder); err != nil {
		return 0, err
	}
	if exists {
		err = s.store.Write(ctx, docPath, text)
	} else {
		err = s.store.Create(ctx, docPath, text)
	}
	if err != nil {
		return 0, fmt.Errorf("chatstore: save %s: %w", c.Meta.ID, err)
	}

	if s.logger != nil {
		s.logger.Debugf("saved chat %s at version %d (%d messages)", c.Meta.ID, c.Meta.Version, len(c.Messages))
	}
	return c.Meta.Version, nil
}

func (s *ChatStore) mergedTags(existing, incoming []string) []string {
	merged := append(append([]string(nil), existing...), incoming...)
	if s.defaultTag != "" {
		merged = append(merged, s.defaultTag)
	}
	return merged
}

// LoadChat reads and normalizes the chat with the given ID. Returns
// vault.ErrNotFound when no document exists and ErrNotAChat when the
// document is not recognizable as any chat format generation.
func (s *ChatStore) LoadChat(ctx context.Context, id string) (*chat.Chat, error) {
	docPath, err := s.chatPath(id)
	if err != nil {
		return nil, err
	}
	raw, err := s.store.Read(ctx, docPath)
	if err != nil {
		return nil, err
	}
	return s.parseRaw(id, raw)
}

// parseRaw dispatches raw text to the per-generation parser and applies the
// load-time normalization passes.
func (s *ChatStore) parseRaw(id, raw string) (*chat.Chat, error) {
	var c *chat.Chat

	switch format.Detect(raw) {
	case format.FormatModern:
		c = format.ParseDocument(raw)
	case format.FormatLegacyBacktick:
		c = format.ParseLegacy(raw)
	default:
		return nil, ErrNotAChat
	}

	if c.Meta.ID == "" {
		c.Meta.ID = id
	}
	if c.Meta.Title == "" {
		c.Meta.Title = c.Meta.ID
	}

	c.Messages = chat.CoalesceAssistantTurns(chat.ReconcileToolResults(c.Messages))
	return c, nil
}

// LoadAll loads every chat in the configured folder. Files that cannot be
// read or parsed are skipped and counted, never fatal; a folder that cannot
// be listed yields an empty result. The skipped count lets callers surface
// possible corruption without breaking the forgiving load contract.
func (s *ChatStore) LoadAll(ctx context.Context) ([]*chat.Chat, int, error) {
	paths, err := s.store.List(ctx, s.folder)
	if err != nil {
		if s.logger != nil {
			s.logger.Warnf("listing chat folder %s failed: %v", s.folder, err)
		}
		return nil, 0, nil
	}

	var chats []*chat.Chat
	skipped := 0
	for _, docPath := range paths {
		if !strings.HasSuffix(docPath, ".md") {
			continue
		}
		id := strings.TrimSuffix(path.Base(docPath), ".md")

		raw, err := s.store.Read(ctx, docPath)
		if err != nil {
			skipped++
			if s.logger != nil {
				s.logger.Debugf("skipping unreadable chat file %s: %v", docPath, err)
			}
			continue
		}
		c, err := s.parseRaw(id, raw)
		if err != nil {
			skipped++
			if s.logger != nil {
				s.logger.Debugf("skipping non-chat file %s: %v", docPath, err)
			}
			continue
		}
		chats = append(chats, c)
	}
	return chats, skipped, nil
}

// Exists reports whether a chat document exists for the given ID.
func (s *ChatStore) Exists(ctx context.Context, id string) (bool, error) {
	docPath, err := s.chatPath(id)
	if err != nil {
		return false, err
	}
	return s.store.Exists(ctx, docPath)
}
