package domain

import "time"

// BotStatus tracks a bot or staff subscription through its payment lifecycle.
type BotStatus string

const (
	StatusPendingPayment BotStatus = "pending_payment"
	StatusActive         BotStatus = "active"
	StatusSuspended      BotStatus = "suspended"
)

// Channel identifies where a bot answers.
type Channel string

const (
	ChannelWebsite  Channel = "website"
	ChannelWhatsApp Channel = "whatsapp"
)

// WebsiteBot is a chat widget bot provisioned for a company site.
type WebsiteBot struct {
	ID             string    `json:"id"`
	OwnerName      string    `json:"ownerName"`
	OwnerEmail     string    `json:"ownerEmail"`
	OwnerWhatsApp  string    `json:"ownerWhatsApp"`
	CompanyName    string    `json:"companyName"`
	Website        string    `json:"website"`
	AssistantID    string    `json:"assistantId"`
	FileIDs        []string  `json:"fileIds"`
	ContentOptions []string  `json:"contentOptions"`
	WidgetKeyHash  string    `json:"-"`
	PaymentLink    string    `json:"paymentLink"`
	Status         BotStatus `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// WhatsAppBot is a commercial bot bound to a business WhatsApp number.
type WhatsAppBot struct {
	ID                  string    `json:"id"`
	OwnerName           string    `json:"ownerName"`
	OwnerEmail          string    `json:"ownerEmail"`
	OwnerWhatsApp       string    `json:"ownerWhatsApp"`
	CompanyName         string    `json:"companyName"`
	Website             string    `json:"website"`
	BusinessDescription string    `json:"businessDescription"`
	AssistantID         string    `json:"assistantId"`
	FileIDs             []string  `json:"fileIds"`
	PhoneNumber         string    `json:"phoneNumber"`
	PaymentLink         string    `json:"paymentLink"`
	Status              BotStatus `json:"status"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// StaffUser is a personal-assistant subscriber.
type StaffUser struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	Preferences string    `json:"preferences"`
	AssistantID string    `json:"assistantId"`
	ThreadID    string    `json:"threadId"`
	PaymentLink string    `json:"paymentLink"`
	Status      BotStatus `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ChatRecord is one completed widget or WhatsApp turn kept for history.
type ChatRecord struct {
	ID          string    `json:"id"`
	BotID       string    `json:"botId"`
	Channel     Channel   `json:"channel"`
	ThreadID    string    `json:"threadId"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	UserMessage string    `json:"userMessage"`
	BotReply    string    `json:"botReply"`
	CreatedAt   time.Time `json:"createdAt"`
}

// StaffHistory is one completed personal-assistant turn.
type StaffHistory struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	PhoneNumber string    `json:"phoneNumber"`
	ThreadID    string    `json:"threadId"`
	UserMessage string    `json:"userMessage"`
	BotReply    string    `json:"botReply"`
	CreatedAt   time.Time `json:"createdAt"`
}
