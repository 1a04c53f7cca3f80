package repository

import (
	"context"

	"github.com/cyrilcaoyang/gopoe/internal/model"
)

// Repository defines the interface for conversation storage. It is the sole
// writer of the schema; services hold a Repository handle rather than
// reaching into a process-wide database.
type Repository interface {
	CreateConversation(ctx context.Context, conv *model.Conversation) error
	GetConversation(ctx context.Context, conversationID string) (*model.Conversation, error)
	// GetConversations lists conversations most-recently-updated first.
	// A limit <= 0 means no limit.
	GetConversations(ctx context.Context, limit int) ([]*model.Conversation, error)
	UpdateConversationTitle(ctx context.Context, conversationID, newTitle string) error
	UpdateConversationBot(ctx context.Context, conversationID, botName string) error
	DeleteConversation(ctx context.Context, conversationID string) error

	// AppendMessage inserts the message, assigns its id, and bumps the parent
	// conversation's updated_at in the same transaction.
	AppendMessage(ctx context.Context, msg *model.Message) (int64, error)
	// GetMessages returns all messages of a conversation ascending by id.
	// The ordering is load-bearing for context replay.
	GetMessages(ctx context.Context, conversationID string) ([]model.Message, error)
	// CountUserMessages reports how many user-role messages a conversation
	// has. The bot lock hinges on this count.
	CountUserMessages(ctx context.Context, conversationID string) (int, error)
}
