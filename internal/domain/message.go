package domain

// Role represents the speaker of a turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of a conversation. A user's turns are kept in
// insertion order and never reordered.
type Turn struct {
	Role    Role   `json:"role" bson:"role"`
	Content string `json:"content" bson:"content"`
}

// NewUserTurn builds a turn authored by the user
func NewUserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// NewAssistantTurn builds a turn returned by the generation provider
func NewAssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

// ChatMessage is the body of a chat send request
type ChatMessage struct {
	Message string `json:"message" validate:"required"`
}
