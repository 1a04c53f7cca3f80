package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cyrilcaoyang/gopoe/internal/cache"
	app_errors "github.com/cyrilcaoyang/gopoe/internal/errors"
	"github.com/cyrilcaoyang/gopoe/internal/model"
	"github.com/cyrilcaoyang/gopoe/internal/poe"
	"github.com/cyrilcaoyang/gopoe/internal/repository"
)

// ChatService owns the turn cycle: context assembly, the streaming call to
// the bot API, and persistence of both sides of the exchange. Every front
// end funnels through SendTurn, so the bot lock is enforced in exactly one
// place.
type ChatService struct {
	repo      repository.Repository
	provider  poe.Provider
	assembler *contextAssembler
}

// TurnRequest describes one conversational turn from any front end. An empty
// ConversationID means "start a new conversation bound to BotName".
type TurnRequest struct {
	ConversationID string
	Content        string
	BotName        string
	ChatMode       string
}

func NewChatService(repo repository.Repository, provider poe.Provider, historyCache *cache.HistoryCache) *ChatService {
	return &ChatService{
		repo:      repo,
		provider:  provider,
		assembler: newContextAssembler(repo, historyCache),
	}
}

// CreateConversation creates an empty conversation bound to an initial bot.
func (s *ChatService) CreateConversation(ctx context.Context, title, botName, chatMode string) (*model.Conversation, error) {
	if botName == "" {
		return nil, fmt.Errorf("%w: bot_name is required", app_errors.ErrValidation)
	}
	if title == "" {
		title = "Chat with " + botName
	}
	if chatMode == "" {
		chatMode = model.DefaultChatMode
	}

	now := time.Now().UTC()
	conv := &model.Conversation{
		ID:        uuid.NewString(),
		Title:     title,
		BotName:   botName,
		ChatMode:  chatMode,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("could not create conversation: %w", err)
	}
	slog.Info("Created conversation", "conversation_id", conv.ID, "bot_name", conv.BotName)
	return conv, nil
}

// ListConversations returns conversations most-recently-updated first.
func (s *ChatService) ListConversations(ctx context.Context, limit int) ([]*model.Conversation, error) {
	convs, err := s.repo.GetConversations(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("could not list conversations: %w", err)
	}
	return convs, nil
}

// GetFullConversation returns a conversation's metadata and all its messages.
func (s *ChatService) GetFullConversation(ctx context.Context, conversationID string) (*model.FullConversation, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, translateRepoErr("could not get conversation", err)
	}
	messages, err := s.repo.GetMessages(ctx, conversationID)
	if err != nil {
		return nil, translateRepoErr("could not get messages", err)
	}
	return &model.FullConversation{Conversation: *conv, Messages: messages}, nil
}

// GetMessages returns the ordered message history of a conversation.
func (s *ChatService) GetMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	messages, err := s.repo.GetMessages(ctx, conversationID)
	if err != nil {
		return nil, translateRepoErr("could not get messages", err)
	}
	return messages, nil
}

// RenameConversation updates a conversation's title.
func (s *ChatService) RenameConversation(ctx context.Context, conversationID, newTitle string) error {
	if strings.TrimSpace(newTitle) == "" {
		return fmt.Errorf("%w: title cannot be empty", app_errors.ErrValidation)
	}
	if err := s.repo.UpdateConversationTitle(ctx, conversationID, newTitle); err != nil {
		return translateRepoErr("could not rename conversation", err)
	}
	return nil
}

// ChangeBot rebinds a conversation to a different bot. Permitted only while
// the conversation has no user messages; afterwards the binding is frozen.
func (s *ChatService) ChangeBot(ctx context.Context, conversationID, botName string) error {
	if botName == "" {
		return fmt.Errorf("%w: bot_name is required", app_errors.ErrValidation)
	}
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return translateRepoErr("could not get conversation", err)
	}
	if conv.BotName == botName {
		return nil
	}

	count, err := s.repo.CountUserMessages(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("could not count user messages: %w", err)
	}
	if count > 0 {
		return &app_errors.LockedConversationError{
			ConversationID: conversationID,
			BotName:        conv.BotName,
			UserMessages:   count,
		}
	}

	if err := s.repo.UpdateConversationBot(ctx, conversationID, botName); err != nil {
		return translateRepoErr("could not update bot", err)
	}
	slog.Info("Rebound conversation to new bot", "conversation_id", conversationID, "bot_name", botName)
	return nil
}

// DeleteConversation removes a conversation and all its messages. Deleting a
// nonexistent id is an error, never a silent no-op.
func (s *ChatService) DeleteConversation(ctx context.Context, conversationID string) error {
	if err := s.repo.DeleteConversation(ctx, conversationID); err != nil {
		return translateRepoErr("could not delete conversation", err)
	}
	s.assembler.invalidate(ctx, conversationID)
	slog.Info("Deleted conversation", "conversation_id", conversationID)
	return nil
}

// SendTurn drives one conversational turn: it resolves (or creates) the
// conversation, enforces the bot lock, persists the user message, streams
// the bot's reply as fragments on ch, and persists the assistant message
// only once the stream completes cleanly. On any failure or cancellation the
// turn ends with exactly the user message persisted and nothing else.
//
// SendTurn closes ch before returning. The final chunk carries Done and the
// conversation id.
func (s *ChatService) SendTurn(ctx context.Context, req *TurnRequest, ch chan<- model.StreamChunk) error {
	defer close(ch)

	if strings.TrimSpace(req.Content) == "" {
		return fmt.Errorf("%w: message content cannot be empty", app_errors.ErrValidation)
	}

	conv, history, err := s.prepareTurn(ctx, req)
	if err != nil {
		return err
	}

	// Persist the user message before calling out, so the utterance survives
	// a downstream failure.
	if _, err := s.appendMessage(ctx, conv.ID, model.RoleUser, req.Content); err != nil {
		return err
	}

	turnContext := s.assembler.assemble(history, req.Content)

	var reply strings.Builder
	providerCh := make(chan poe.StreamChunk)
	errc := make(chan error, 1)
	go func() {
		errc <- s.provider.StreamResponse(ctx, conv.BotName, turnContext, providerCh)
	}()

	done := false
	for chunk := range providerCh {
		if chunk.Done {
			done = true
			continue
		}
		select {
		case ch <- model.StreamChunk{Text: chunk.Text}:
		case <-ctx.Done():
			// Keep draining so the provider goroutine can finish; fragments
			// already sent stay delivered, nothing more is persisted.
		}
		reply.WriteString(chunk.Text)
	}

	if err := <-errc; err != nil {
		slog.Warn("Turn failed, assistant message not persisted",
			"conversation_id", conv.ID, "bot_name", conv.BotName, "error", err)
		return err
	}
	if !done {
		return fmt.Errorf("%w: stream closed without completion", app_errors.ErrTransport)
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%w: turn cancelled: %v", app_errors.ErrTransport, ctx.Err())
	}

	if _, err := s.appendMessage(ctx, conv.ID, model.RoleAssistant, reply.String()); err != nil {
		return err
	}

	select {
	case ch <- model.StreamChunk{Done: true, ConversationID: conv.ID}:
	case <-ctx.Done():
	}
	return nil
}

// prepareTurn resolves the conversation for a turn and loads the history the
// context will replay. The bot lock lives here: a differing bot name on a
// conversation with existing user messages is rejected, while a fresh
// conversation may still be rebound.
//
// The lock is a read-then-decide check; two racing first turns with
// different bots can both pass it. Accepted limitation of the design.
func (s *ChatService) prepareTurn(ctx context.Context, req *TurnRequest) (*model.Conversation, []model.Message, error) {
	if req.ConversationID == "" {
		if req.BotName == "" {
			return nil, nil, fmt.Errorf("%w: bot_name is required for a new conversation", app_errors.ErrValidation)
		}
		conv, err := s.CreateConversation(ctx, "", req.BotName, req.ChatMode)
		if err != nil {
			return nil, nil, err
		}
		return conv, nil, nil
	}

	conv, err := s.repo.GetConversation(ctx, req.ConversationID)
	if err != nil {
		return nil, nil, translateRepoErr("could not get conversation", err)
	}

	if req.BotName != "" && req.BotName != conv.BotName {
		count, err := s.repo.CountUserMessages(ctx, conv.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("could not count user messages: %w", err)
		}
		if count > 0 {
			return nil, nil, &app_errors.LockedConversationError{
				ConversationID: conv.ID,
				BotName:        conv.BotName,
				UserMessages:   count,
			}
		}
		if err := s.repo.UpdateConversationBot(ctx, conv.ID, req.BotName); err != nil {
			return nil, nil, translateRepoErr("could not update bot", err)
		}
		conv.BotName = req.BotName
	}

	history, err := s.assembler.history(ctx, conv.ID)
	if err != nil {
		return nil, nil, translateRepoErr("could not load history", err)
	}
	return conv, history, nil
}

// appendMessage validates the role, stores the message, and invalidates the
// cached history.
func (s *ChatService) appendMessage(ctx context.Context, conversationID string, role model.Role, content string) (int64, error) {
	if !role.Valid() {
		return 0, fmt.Errorf("%w: invalid role %q", app_errors.ErrValidation, role)
	}
	msg := &model.Message{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		ContentType:    "text",
		Timestamp:      time.Now().UTC(),
	}
	id, err := s.repo.AppendMessage(ctx, msg)
	if err != nil {
		return 0, translateRepoErr("could not append message", err)
	}
	s.assembler.invalidate(ctx, conversationID)
	return id, nil
}

// translateRepoErr converts the repository's not-found sentinel into the
// domain-level one, keeping business logic decoupled from the data layer.
func translateRepoErr(msg string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", msg, app_errors.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
