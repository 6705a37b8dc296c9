package chat

import "strings"

const (
	ChatRoleUser   = "user"
	ChatRoleAgent  = "assistant"
	ChatRoleSystem = "system"
)

// ChatMessage is a single message in an LLM conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ChatResponse is the text an LLM returned for a conversation.
type ChatResponse struct {
	Message string `json:"message,omitempty"`
	Model   string `json:"model,omitempty"`
}

func System(content string) ChatMessage {
	return ChatMessage{Role: ChatRoleSystem, Content: content}
}

func User(content string) ChatMessage {
	return ChatMessage{Role: ChatRoleUser, Content: content}
}

// SplitSystem joins all system messages into one prompt and returns the
// remaining messages in order. Providers such as Anthropic take the
// system prompt outside the message list.
func SplitSystem(messages []ChatMessage) (string, []ChatMessage) {
	var systemParts []string
	var rest []ChatMessage

	for _, msg := range messages {
		if msg.Role == ChatRoleSystem {
			systemParts = append(systemParts, msg.Content)
		} else {
			rest = append(rest, msg)
		}
	}

	return strings.Join(systemParts, "\n\n"), rest
}

// StripCodeFence removes a surrounding markdown code block, with or
// without a language tag. Text without a leading fence is only trimmed.
func StripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimLeft(s, " \t\r\n")
	s = strings.TrimRight(s, " \t\r\n")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimRight(s, " \t\r\n")
}
