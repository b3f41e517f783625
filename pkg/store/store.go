package store

import (
	"smartbots/pkg/domain"
)

// Store defines persistence operations for bots, staff subscribers, and chat
// history.
type Store interface {
	// website bots
	SaveWebsiteBot(domain.WebsiteBot) error
	GetWebsiteBot(id string) (domain.WebsiteBot, bool, error)
	SetWebsiteBotStatus(id string, status domain.BotStatus) error
	SetWebsiteBotFiles(id string, fileIDs []string) error
	ListWebsiteBots() ([]domain.WebsiteBot, error)

	// whatsapp bots
	SaveWhatsAppBot(domain.WhatsAppBot) error
	GetWhatsAppBot(id string) (domain.WhatsAppBot, bool, error)
	GetWhatsAppBotByPhone(phone string) (domain.WhatsAppBot, bool, error)
	SetWhatsAppBotStatus(id string, status domain.BotStatus) error
	ListWhatsAppBots() ([]domain.WhatsAppBot, error)

	// staff subscribers
	SaveStaffUser(domain.StaffUser) error
	GetStaffUser(id string) (domain.StaffUser, bool, error)
	GetStaffUserByPhone(phone string) (domain.StaffUser, bool, error)
	SetStaffUserStatus(id string, status domain.BotStatus) error
	SetStaffThread(id, threadID string) error
	ListStaffUsers() ([]domain.StaffUser, error)

	// history
	AppendChatRecord(domain.ChatRecord) error
	ListChatRecords(botID string, limit int) ([]domain.ChatRecord, error)
	LatestChatThread(botID, phone string) (string, error)
	AppendStaffHistory(domain.StaffHistory) error
	ListStaffHistory(userID string, limit int) ([]domain.StaffHistory, error)
}
