package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smartbots/internal/util"
	"smartbots/pkg/domain"
	"smartbots/pkg/store"
)

const fallbackReply = "Sorry, I could not process your message right now. Please try again in a moment."

// TurnRunner drives one message through the assistant platform.
type TurnRunner interface {
	RunTurn(ctx context.Context, threadID, assistantID, message string) (string, string, error)
}

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL string
	Store       store.Store
	Runner      TurnRunner
}

// App routes inbound WhatsApp messages: a message to a business number goes
// to that company's bot, a message from a known subscriber goes to their
// personal assistant, anything else gets a welcome reply.
type App struct {
	store  store.Store
	runner TurnRunner
}

// InboundMessage is one message delivered by the WhatsApp gateway.
type InboundMessage struct {
	From        string
	To          string
	Body        string
	ProfileName string
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
	return &App{store: dataStore, runner: cfg.Runner}, nil
}

// Route answers one inbound message. It never returns an error: the gateway
// must always receive a reply, so failures degrade to a fallback text.
func (a *App) Route(ctx context.Context, msg InboundMessage) string {
	logger := util.LoggerFromContext(ctx)
	from := normalizeNumber(msg.From)
	to := normalizeNumber(msg.To)
	body := strings.TrimSpace(msg.Body)
	if body == "" {
		return welcomeReply(msg.ProfileName)
	}

	if bot, ok, err := a.store.GetWhatsAppBotByPhone(to); err != nil {
		logger.Error("bot lookup failed", "to", to, "err", err)
		return fallbackReply
	} else if ok {
		return a.commercialReply(ctx, bot, from, body)
	}

	if user, ok, err := a.store.GetStaffUserByPhone(from); err != nil {
		logger.Error("staff lookup failed", "from", from, "err", err)
		return fallbackReply
	} else if ok {
		return a.staffReply(ctx, user, body)
	}

	return welcomeReply(msg.ProfileName)
}

func (a *App) commercialReply(ctx context.Context, bot domain.WhatsAppBot, from, body string) string {
	logger := util.LoggerFromContext(ctx)
	if bot.Status != domain.StatusActive {
		return "This assistant is not active yet. Please try again later."
	}
	threadID, err := a.store.LatestChatThread(bot.ID, from)
	if err != nil {
		logger.Warn("thread lookup failed", "botId", bot.ID, "err", err)
	}
	threadID, reply, err := a.runner.RunTurn(ctx, threadID, bot.AssistantID, body)
	if err != nil {
		logger.Error("assistant turn failed", "botId", bot.ID, "err", err)
		return fallbackReply
	}
	rec := domain.ChatRecord{
		ID:          util.NewID(),
		BotID:       bot.ID,
		Channel:     domain.ChannelWhatsApp,
		ThreadID:    threadID,
		PhoneNumber: from,
		UserMessage: body,
		BotReply:    reply,
		CreatedAt:   time.Now().UTC(),
	}
	if err := a.store.AppendChatRecord(rec); err != nil {
		logger.Warn("persist chat record failed", "botId", bot.ID, "err", err)
	}
	return reply
}

func (a *App) staffReply(ctx context.Context, user domain.StaffUser, body string) string {
	logger := util.LoggerFromContext(ctx)
	if user.Status != domain.StatusActive {
		return "Your subscription is not active yet. Complete the payment to start using your assistant."
	}
	threadID, reply, err := a.runner.RunTurn(ctx, user.ThreadID, user.AssistantID, body)
	if err != nil {
		logger.Error("assistant turn failed", "userId", user.ID, "err", err)
		return fallbackReply
	}
	if threadID != user.ThreadID {
		if err := a.store.SetStaffThread(user.ID, threadID); err != nil {
			logger.Warn("cache staff thread failed", "userId", user.ID, "err", err)
		}
	}
	hist := domain.StaffHistory{
		ID:          util.NewID(),
		UserID:      user.ID,
		PhoneNumber: user.PhoneNumber,
		ThreadID:    threadID,
		UserMessage: body,
		BotReply:    reply,
		CreatedAt:   time.Now().UTC(),
	}
	if err := a.store.AppendStaffHistory(hist); err != nil {
		logger.Warn("persist staff history failed", "userId", user.ID, "err", err)
	}
	return reply
}

func welcomeReply(profileName string) string {
	name := strings.TrimSpace(profileName)
	if name == "" {
		return "Hi! This number is powered by smartbots. Visit our site to set up an assistant for your business."
	}
	return fmt.Sprintf("Hi %s! This number is powered by smartbots. Visit our site to set up an assistant for your business.", name)
}

// normalizeNumber strips the gateway's channel prefix, leaving the E.164
// number.
func normalizeNumber(raw string) string {
	raw = strings.TrimSpace(raw)
	return strings.TrimPrefix(raw, "whatsapp:")
}
