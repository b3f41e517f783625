package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smartbots/internal/util"
	"smartbots/internal/widgettoken"
	"smartbots/pkg/assistant"
	"smartbots/pkg/auth"
	"smartbots/pkg/domain"
	"smartbots/pkg/store"
)

// TurnRunner drives one message through the assistant platform.
type TurnRunner interface {
	RunTurn(ctx context.Context, threadID, assistantID, message string) (string, string, error)
}

// Limiter gates requests per key.
type Limiter interface {
	Allow(key string) bool
}

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL string
	Store       store.Store
	Runner      TurnRunner
	Tokens      *widgettoken.Manager
	Limiter     Limiter
}

// App handles widget chat turns against provisioned website bots.
type App struct {
	store   store.Store
	runner  TurnRunner
	tokens  *widgettoken.Manager
	limiter Limiter
}

// TurnRequest is one widget message. ClientIP is resolved by the server and
// scopes rate limiting to the caller, not just the bot.
type TurnRequest struct {
	BotID        string
	Message      string
	WidgetKey    string
	ThreadID     string
	SessionToken string
	ClientIP     string
}

// TurnResponse carries the reply and the session material for the next turn.
type TurnResponse struct {
	Reply        string `json:"reply"`
	ThreadID     string `json:"threadId"`
	SessionToken string `json:"sessionToken"`
}

// New constructs the application with database-backed storage.
func New(cfg Config) (*App, error) {
	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}
	if cfg.Runner == nil {
		return nil, fmt.Errorf("turn runner required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("widget token manager required")
	}
	return &App{
		store:   dataStore,
		runner:  cfg.Runner,
		tokens:  cfg.Tokens,
		limiter: cfg.Limiter,
	}, nil
}

// HandleTurn validates the request against the bot, runs the message through
// the assistant, records the turn, and returns a session token bound to the
// resulting thread.
func (a *App) HandleTurn(ctx context.Context, req TurnRequest) (TurnResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return TurnResponse{}, fmt.Errorf("message required")
	}
	bot, ok, err := a.store.GetWebsiteBot(req.BotID)
	if err != nil {
		return TurnResponse{}, fmt.Errorf("load bot: %w", err)
	}
	if !ok {
		return TurnResponse{}, ErrBotNotFound
	}
	if bot.Status != domain.StatusActive {
		return TurnResponse{}, ErrBotNotActive
	}
	if bot.WidgetKeyHash != "" && !auth.CheckKey(req.WidgetKey, bot.WidgetKeyHash) {
		return TurnResponse{}, ErrBadWidgetKey
	}
	limitKey := bot.ID
	if req.ClientIP != "" {
		limitKey += ":" + req.ClientIP
	}
	if a.limiter != nil && !a.limiter.Allow(limitKey) {
		return TurnResponse{}, ErrRateLimited
	}

	threadID := strings.TrimSpace(req.ThreadID)
	if token := strings.TrimSpace(req.SessionToken); token != "" {
		claims, err := a.tokens.Verify(token)
		if err != nil {
			return TurnResponse{}, ErrInvalidSession
		}
		if claims.BotID != bot.ID {
			return TurnResponse{}, ErrInvalidSession
		}
		threadID = claims.ThreadID
	}

	threadID, reply, err := a.runner.RunTurn(ctx, threadID, bot.AssistantID, req.Message)
	if err != nil {
		return TurnResponse{}, err
	}

	rec := domain.ChatRecord{
		ID:          util.NewID(),
		BotID:       bot.ID,
		Channel:     domain.ChannelWebsite,
		ThreadID:    threadID,
		UserMessage: req.Message,
		BotReply:    reply,
		CreatedAt:   time.Now().UTC(),
	}
	if err := a.store.AppendChatRecord(rec); err != nil {
		util.LoggerFromContext(ctx).Warn("persist chat record failed", "botId", bot.ID, "err", err)
	}

	sessionToken, err := a.tokens.Issue(bot.ID, threadID)
	if err != nil {
		return TurnResponse{}, fmt.Errorf("issue session token: %w", err)
	}
	return TurnResponse{
		Reply:        reply,
		ThreadID:     threadID,
		SessionToken: sessionToken,
	}, nil
}

// History returns recent turns for a bot.
func (a *App) History(botID string, limit int) ([]domain.ChatRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	return a.store.ListChatRecords(botID, limit)
}

var _ TurnRunner = (*assistant.Runner)(nil)
