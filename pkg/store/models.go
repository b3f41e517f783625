package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type WebsiteBotModel struct {
	ID             string `gorm:"primaryKey"`
	OwnerName      string `gorm:"not null"`
	OwnerEmail     string `gorm:"not null;index"`
	OwnerWhatsApp  string
	CompanyName    string `gorm:"not null"`
	Website        string `gorm:"not null"`
	AssistantID    string `gorm:"index"`
	FileIDs        datatypes.JSON
	ContentOptions datatypes.JSON
	WidgetKeyHash  string
	PaymentLink    string
	Status         string    `gorm:"not null;index"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time
}

type WhatsAppBotModel struct {
	ID                  string `gorm:"primaryKey"`
	OwnerName           string `gorm:"not null"`
	OwnerEmail          string `gorm:"not null;index"`
	OwnerWhatsApp       string
	CompanyName         string `gorm:"not null"`
	Website             string
	BusinessDescription string `gorm:"type:text"`
	AssistantID         string `gorm:"index"`
	FileIDs             datatypes.JSON
	PhoneNumber         string `gorm:"uniqueIndex"`
	PaymentLink         string
	Status              string    `gorm:"not null;index"`
	CreatedAt           time.Time `gorm:"not null"`
	UpdatedAt           time.Time
}

type StaffUserModel struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Email       string `gorm:"not null;index"`
	PhoneNumber string `gorm:"uniqueIndex"`
	Preferences string `gorm:"type:text"`
	AssistantID string
	ThreadID    string
	PaymentLink string
	Status      string    `gorm:"not null;index"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time
}

type ChatRecordModel struct {
	ID          string `gorm:"primaryKey"`
	BotID       string `gorm:"not null;index"`
	Channel     string `gorm:"not null"`
	ThreadID    string `gorm:"index"`
	PhoneNumber string
	UserMessage string    `gorm:"type:text;not null"`
	BotReply    string    `gorm:"type:text;not null"`
	CreatedAt   time.Time `gorm:"not null;index"`
}

type StaffHistoryModel struct {
	ID          string `gorm:"primaryKey"`
	UserID      string `gorm:"not null;index"`
	PhoneNumber string
	ThreadID    string
	UserMessage string    `gorm:"type:text;not null"`
	BotReply    string    `gorm:"type:text;not null"`
	CreatedAt   time.Time `gorm:"not null;index"`
}
