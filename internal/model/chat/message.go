package chat

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message captures a single conversation turn. Messages are immutable
// once recorded; histories only ever drop them from the front.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
