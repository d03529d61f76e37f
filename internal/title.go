package internal

// DefaultTitle is shown until the conversation has a user message
const DefaultTitle = "New Chat"

// maxTitleLength is measured in runes
const maxTitleLength = 50

// GenerateTitle derives a session title from the first user message.
// The result depends only on that message, so it is stable across calls.
func GenerateTitle(messages []Message) string {
	for _, m := range messages {
		if m.Role != RoleUser {
			continue
		}
		runes := []rune(m.Content)
		if len(runes) > maxTitleLength {
			return string(runes[:maxTitleLength]) + "..."
		}
		if m.Content == "" {
			return DefaultTitle
		}
		return m.Content
	}
	return DefaultTitle
}
