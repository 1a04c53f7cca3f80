package service

import (
	"context"
	"log/slog"

	"github.com/cyrilcaoyang/gopoe/internal/cache"
	"github.com/cyrilcaoyang/gopoe/internal/model"
	"github.com/cyrilcaoyang/gopoe/internal/poe"
	"github.com/cyrilcaoyang/gopoe/internal/repository"
)

// contextAssembler reconstructs the ordered message context to submit to the
// bot API for a turn. It reads through the optional Redis cache; the store
// remains the source of truth and a cache failure only costs a re-read.
//
// The assembled context is always the full stored history plus the new user
// turn. Truncation or summarization of very long conversations is a policy
// for a higher layer, deliberately not applied here.
type contextAssembler struct {
	repo  repository.Repository
	cache *cache.HistoryCache
}

func newContextAssembler(repo repository.Repository, historyCache *cache.HistoryCache) *contextAssembler {
	return &contextAssembler{repo: repo, cache: historyCache}
}

// history returns all messages of a conversation ascending by id.
func (a *contextAssembler) history(ctx context.Context, conversationID string) ([]model.Message, error) {
	if a.cache != nil {
		messages, ok, err := a.cache.GetHistory(ctx, conversationID)
		if err != nil {
			slog.Warn("History cache read failed, falling back to store", "conversation_id", conversationID, "error", err)
		} else if ok {
			return messages, nil
		}
	}

	messages, err := a.repo.GetMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		if err := a.cache.SetHistory(ctx, conversationID, messages); err != nil {
			slog.Warn("History cache write failed", "conversation_id", conversationID, "error", err)
		}
	}
	return messages, nil
}

// assemble builds the ordered role/content context for the gateway: the
// stored history verbatim, followed by the new user turn. Roles stay in the
// internal vocabulary; the gateway translates at its own boundary.
func (a *contextAssembler) assemble(history []model.Message, newUserContent string) []poe.Message {
	context := make([]poe.Message, 0, len(history)+1)
	for _, msg := range history {
		context = append(context, poe.Message{Role: msg.Role, Content: msg.Content})
	}
	context = append(context, poe.Message{Role: model.RoleUser, Content: newUserContent})
	return context
}

// invalidate drops the cached history after a write.
func (a *contextAssembler) invalidate(ctx context.Context, conversationID string) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Invalidate(ctx, conversationID); err != nil {
		slog.Warn("History cache invalidation failed", "conversation_id", conversationID, "error", err)
	}
}
