package config

import (
	"fmt"
	"sync"
)

const (
	// SectionIDChats is the identifier for the chat storage section
	SectionIDChats = "chats"

	// Default values for chat storage settings
	defaultChatsFolder   = "Chats"
	defaultFontSize      = 14
	defaultToolResultCap = 64 * 1024
)

// ChatsSection manages chat storage configuration settings.
type ChatsSection struct {
	Folder           string   `json:"folder"`
	DefaultTag       string   `json:"default_tag"`
	DefaultAgentMode bool     `json:"default_agent_mode"`
	FontSize         int      `json:"chat_font_size"`
	IgnoreGlobs      []string `json:"ignore_globs"`
	ToolResultCap    int      `json:"tool_result_cap"`
	mu               sync.RWMutex
}

// NewChatsSection creates a new chats section with default settings.
func NewChatsSection() *ChatsSection {
	return &ChatsSection{
		Folder:        defaultChatsFolder,
		FontSize:      defaultFontSize,
		ToolResultCap: defaultToolResultCap,
	}
}

// ID returns the section identifier.
func (s *ChatsSection) ID() string {
	return SectionIDChats
}

// Title returns the section title.
func (s *ChatsSection) Title() string {
	return "Chat Storage"
}

// Description returns the section description.
func (s *ChatsSection) Description() string {
	return "Configure where chat documents live in the vault and how they are tagged and capped."
}

// Data returns the current configuration data.
func (s *ChatsSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	globs := make([]interface{}, len(s.IgnoreGlobs))
	for i, g := range s.IgnoreGlobs {
		globs[i] = g
	}

	return map[string]interface{}{
		"folder":             s.Folder,
		"default_tag":        s.DefaultTag,
		"default_agent_mode": s.DefaultAgentMode,
		"chat_font_size":     float64(s.FontSize),
		"ignore_globs":       globs,
		"tool_result_cap":    float64(s.ToolResultCap),
	}
}

// SetData updates the configuration from the provided data.
func (s *ChatsSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "folder":
			folder, ok := value.(string)
			if !ok {
				return fmt.Errorf("invalid value type for folder: expected string, got %T", value)
			}
			s.Folder = folder

		case "default_tag":
			tag, ok := value.(string)
			if !ok {
				return fmt.Errorf("invalid value type for default_tag: expected string, got %T", value)
			}
			s.DefaultTag = tag

		case "default_agent_mode":
			enabled, ok := value.(bool)
			if !ok {
				return fmt.Errorf("invalid value type for default_agent_mode: expected bool, got %T", value)
			}
			s.DefaultAgentMode = enabled

		case "chat_font_size":
			size, ok := asConfigInt(value)
			if !ok {
				return fmt.Errorf("invalid value type for chat_font_size: expected number, got %T", value)
			}
			s.FontSize = size

		case "ignore_globs":
			items, ok := value.([]interface{})
			if !ok {
				return fmt.Errorf("invalid value type for ignore_globs: expected array, got %T", value)
			}
			globs := make([]string, 0, len(items))
			for _, item := range items {
				g, ok := item.(string)
				if !ok {
					return fmt.Errorf("invalid ignore_globs entry: expected string, got %T", item)
				}
				globs = append(globs, g)
			}
			s.IgnoreGlobs = globs

		case "tool_result_cap":
			capBytes, ok := asConfigInt(value)
			if !ok {
				return fmt.Errorf("invalid value type for tool_result_cap: expected number, got %T", value)
			}
			s.ToolResultCap = capBytes

		default:
			// Ignore unknown keys for forward compatibility
			continue
		}
	}

	return nil
}

// Validate validates the current configuration.
func (s *ChatsSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.FontSize < 8 || s.FontSize > 72 {
		return fmt.Errorf("chat_font_size must be between 8 and 72, got %d", s.FontSize)
	}
	if s.ToolResultCap < 0 {
		return fmt.Errorf("tool_result_cap must not be negative, got %d", s.ToolResultCap)
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *ChatsSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Folder = defaultChatsFolder
	s.DefaultTag = ""
	s.DefaultAgentMode = false
	s.FontSize = defaultFontSize
	s.IgnoreGlobs = nil
	s.ToolResultCap = defaultToolResultCap
}

// GetFolder returns the vault folder chats are stored in.
func (s *ChatsSection) GetFolder() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Folder
}

// GetDefaultTag returns the tag applied to every saved chat, empty if unset.
func (s *ChatsSection) GetDefaultTag() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.DefaultTag
}

// GetDefaults returns the agent mode and font size applied to new chats.
func (s *ChatsSection) GetDefaults() (agentMode bool, fontSize int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.DefaultAgentMode, s.FontSize
}

// GetIgnoreGlobs returns the glob patterns excluded from bulk loads.
func (s *ChatsSection) GetIgnoreGlobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.IgnoreGlobs...)
}

// GetToolResultCap returns the serialized tool-result byte budget.
func (s *ChatsSection) GetToolResultCap() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ToolResultCap
}

// asConfigInt accepts the numeric types a JSON round-trip can produce.
func asConfigInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
