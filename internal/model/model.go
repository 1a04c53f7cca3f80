package model

import "time"

// Role is the internal role vocabulary for stored messages. The Poe wire
// vocabulary ("bot") exists only inside the poe package and is never stored.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the two storable roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// DefaultChatMode is assigned to conversations created without an explicit mode.
const DefaultChatMode = "chatbot"

// Conversation stores metadata about a single conversation thread. BotName is
// mutable only while the conversation has no user messages; after the first
// user turn it is locked.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	BotName   string    `json:"bot_name"`
	ChatMode  string    `json:"chat_mode"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a single immutable turn in a conversation. IDs are assigned by
// the store and ascend in insertion order; that ordering is what context
// replay is built on.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	ContentType    string    `json:"content_type"`
	Timestamp      time.Time `json:"timestamp"`
}

// FullConversation includes the conversation metadata and all its messages.
type FullConversation struct {
	Conversation
	Messages []Message `json:"messages"`
}

// StreamChunk is a single fragment of a streamed bot reply as delivered to
// front ends. The final chunk carries Done and the conversation id, which is
// how callers learn the id of an implicitly created conversation.
type StreamChunk struct {
	Text           string `json:"text,omitempty"`
	Done           bool   `json:"done,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}
