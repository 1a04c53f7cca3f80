package interfaces

import (
	"context"

	"github.com/cyrilcaoyang/gopoe/internal/model"
	"github.com/cyrilcaoyang/gopoe/internal/service"
)

// This file defines the interfaces for the core services. The API layer
// depends on these rather than on concrete implementations, which keeps the
// layers decoupled and makes the handlers testable with mocks.

// ChatService is the single entry point every front end (CLI, web, Slack)
// calls; SendTurn encapsulates context assembly, the bot lock, the streaming
// call, and persistence.
type ChatService interface {
	CreateConversation(ctx context.Context, title, botName, chatMode string) (*model.Conversation, error)
	ListConversations(ctx context.Context, limit int) ([]*model.Conversation, error)
	GetFullConversation(ctx context.Context, conversationID string) (*model.FullConversation, error)
	GetMessages(ctx context.Context, conversationID string) ([]model.Message, error)
	RenameConversation(ctx context.Context, conversationID, newTitle string) error
	ChangeBot(ctx context.Context, conversationID, botName string) error
	DeleteConversation(ctx context.Context, conversationID string) error
	SendTurn(ctx context.Context, req *service.TurnRequest, ch chan<- model.StreamChunk) error
}

// BotService exposes the available-bots catalog with per-conversation lock
// information.
type BotService interface {
	List(ctx context.Context, conversationID string) (*service.BotCatalog, error)
}
