package service

import (
	"context"

	"github.com/cyrilcaoyang/gopoe/internal/poe"
	"github.com/cyrilcaoyang/gopoe/internal/repository"
)

// BotService exposes the bot catalog, optionally annotated with a
// conversation's lock state so front ends can grey out the picker once the
// binding is frozen.
type BotService struct {
	repo repository.Repository
}

func NewBotService(repo repository.Repository) *BotService {
	return &BotService{repo: repo}
}

// BotCatalog lists the available bots. When resolved against a conversation,
// Locked reports whether that conversation's bot can still be changed and
// LockedBot names the frozen binding.
type BotCatalog struct {
	Bots      []string `json:"bots"`
	Locked    bool     `json:"locked"`
	LockedBot string   `json:"locked_bot,omitempty"`
}

// List returns the bot catalog. With a non-empty conversationID it also
// resolves that conversation's lock state.
func (s *BotService) List(ctx context.Context, conversationID string) (*BotCatalog, error) {
	catalog := &BotCatalog{Bots: poe.AvailableBots()}
	if conversationID == "" {
		return catalog, nil
	}

	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, translateRepoErr("could not get conversation", err)
	}
	count, err := s.repo.CountUserMessages(ctx, conversationID)
	if err != nil {
		return nil, translateRepoErr("could not count user messages", err)
	}

	if count > 0 {
		catalog.Locked = true
		catalog.LockedBot = conv.BotName
	}
	return catalog, nil
}
