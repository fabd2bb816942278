package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/chatbot-api/internal/domain"
	"github.com/Rrens/chatbot-api/internal/llm"
)

// ChatService proxies a user's conversation to the generation provider and
// keeps the turn log on the user document.
type ChatService struct {
	users     domain.UserRepository
	llmRouter *llm.Router
	provider  string
	model     string
}

// NewChatService creates a new chat service. An empty provider or model
// falls back to the router default and the provider default.
func NewChatService(users domain.UserRepository, llmRouter *llm.Router, provider, model string) *ChatService {
	return &ChatService{
		users:     users,
		llmRouter: llmRouter,
		provider:  provider,
		model:     model,
	}
}

// SendMessage appends message to the user's log, asks the provider for a
// reply with the whole log as context and stores both turns. The returned
// slice is the persisted log.
func (s *ChatService) SendMessage(ctx context.Context, userID, message string) ([]domain.Turn, error) {
	// a dropped client must not abort the provider call or the write
	ctx = context.WithoutCancel(ctx)

	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}

	userTurn := domain.NewUserTurn(message)
	turns := make([]domain.Turn, 0, len(user.Chats)+1)
	turns = append(turns, user.Chats...)
	turns = append(turns, userTurn)

	provider, err := s.llmRouter.GetProvider(s.provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}

	resp, err := provider.Generate(ctx, llm.Request{Turns: turns}, s.model)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}

	log.Debug().
		Str("user_id", userID).
		Str("provider", provider.Name()).
		Str("model", resp.Model).
		Int("tokens", resp.TokensUsed).
		Int64("latency_ms", resp.LatencyMs).
		Msg("Generated reply")

	chats, err := s.users.AppendTurns(ctx, user.ID, userTurn, domain.NewAssistantTurn(resp.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to save chats: %w", err)
	}
	if chats == nil {
		return nil, errStaleCredential
	}

	return chats, nil
}

// GetAllChats returns the user's log in append order
func (s *ChatService) GetAllChats(ctx context.Context, userID string) ([]domain.Turn, error) {
	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	if user.Chats == nil {
		return []domain.Turn{}, nil
	}
	return user.Chats, nil
}

// DeleteAllChats empties the user's log and returns it
func (s *ChatService) DeleteAllChats(ctx context.Context, userID string) ([]domain.Turn, error) {
	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}

	chats, err := s.users.ClearTurns(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to clear chats: %w", err)
	}
	if chats == nil {
		return nil, errStaleCredential
	}
	return chats, nil
}

// Providers describes the registered generation providers
func (s *ChatService) Providers() []llm.ProviderInfo {
	return s.llmRouter.GetProvidersInfo()
}
