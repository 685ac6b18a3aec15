package chat

import (
	"strings"
	"time"
)

// Greeting seeds every new session as the assistant's opening turn.
const Greeting = "Hello, I am a bot. How can I help you?"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single message in a conversation.
type Turn struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Session holds the ordered, append-only conversation history for one
// conversation. Sessions are not safe for concurrent use; callers that
// share a session across goroutines serialize access themselves.
type Session struct {
	ID    string
	turns []Turn
}

// NewSession returns a session seeded with the assistant greeting.
func NewSession(id string) *Session {
	return &Session{
		ID: id,
		turns: []Turn{
			{Role: RoleAssistant, Content: Greeting, At: time.Now()},
		},
	}
}

// Append records a turn at the end of the history.
func (s *Session) Append(role, content string) {
	s.turns = append(s.turns, Turn{Role: role, Content: content, At: time.Now()})
}

// History returns a copy of all turns in order.
func (s *Session) History() []Turn {
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// renderHistory flattens the conversation into role-prefixed lines for
// prompt assembly. User turns render as "User:", assistant turns as
// "AI:".
func renderHistory(turns []Turn) string {
	var b strings.Builder
	for _, t := range turns {
		label := "AI"
		if t.Role == RoleUser {
			label = "User"
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(t.Content)
		b.WriteString("\n")
	}
	return b.String()
}
