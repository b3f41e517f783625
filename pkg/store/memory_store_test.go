package store

import (
	"testing"
	"time"

	"smartbots/pkg/domain"
)

func TestMemoryStoreWebsiteBotLifecycle(t *testing.T) {
	s := NewMemoryStore()
	bot := domain.WebsiteBot{
		ID:          "bot-1",
		OwnerEmail:  "owner@example.com",
		CompanyName: "Acme",
		Website:     "https://acme.example",
		Status:      domain.StatusPendingPayment,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.SaveWebsiteBot(bot); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := s.GetWebsiteBot("bot-1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Status != domain.StatusPendingPayment {
		t.Fatalf("status = %s", got.Status)
	}

	if err := s.SetWebsiteBotStatus("bot-1", domain.StatusActive); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := s.SetWebsiteBotFiles("bot-1", []string{"file-1", "file-2"}); err != nil {
		t.Fatalf("set files: %v", err)
	}
	got, _, _ = s.GetWebsiteBot("bot-1")
	if got.Status != domain.StatusActive {
		t.Fatalf("status after activation = %s", got.Status)
	}
	if len(got.FileIDs) != 2 || got.FileIDs[0] != "file-1" {
		t.Fatalf("file ids = %v", got.FileIDs)
	}

	if _, ok, _ := s.GetWebsiteBot("missing"); ok {
		t.Fatalf("missing bot should not be found")
	}
}

func TestMemoryStoreWhatsAppBotByPhone(t *testing.T) {
	s := NewMemoryStore()
	if err := s.SaveWhatsAppBot(domain.WhatsAppBot{
		ID:          "wa-1",
		PhoneNumber: "+5511999990000",
		Status:      domain.StatusActive,
		CreatedAt:   time.Now().UTC(),
	}); err != nil {
		t.Fatalf("save: %v", err)
	}
	bot, ok, err := s.GetWhatsAppBotByPhone("+5511999990000")
	if err != nil || !ok {
		t.Fatalf("lookup: ok=%v err=%v", ok, err)
	}
	if bot.ID != "wa-1" {
		t.Fatalf("id = %s", bot.ID)
	}
	if _, ok, _ := s.GetWhatsAppBotByPhone("+000"); ok {
		t.Fatalf("unknown phone should not match")
	}
}

func TestMemoryStoreStaffThreadCache(t *testing.T) {
	s := NewMemoryStore()
	if err := s.SaveStaffUser(domain.StaffUser{
		ID:          "staff-1",
		PhoneNumber: "+5511888880000",
		Status:      domain.StatusActive,
		CreatedAt:   time.Now().UTC(),
	}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SetStaffThread("staff-1", "thread-9"); err != nil {
		t.Fatalf("set thread: %v", err)
	}
	u, ok, _ := s.GetStaffUserByPhone("+5511888880000")
	if !ok || u.ThreadID != "thread-9" {
		t.Fatalf("thread id = %q ok=%v", u.ThreadID, ok)
	}
}

func TestMemoryStoreChatRecordsLimit(t *testing.T) {
	s := NewMemoryStore()
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		if err := s.AppendChatRecord(domain.ChatRecord{
			ID:          string(rune('a' + i)),
			BotID:       "bot-1",
			Channel:     domain.ChannelWebsite,
			UserMessage: "q",
			BotReply:    "a",
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	_ = s.AppendChatRecord(domain.ChatRecord{ID: "other", BotID: "bot-2"})

	recs, err := s.ListChatRecords("bot-1", 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	if recs[0].ID != "c" || recs[2].ID != "e" {
		t.Fatalf("expected the latest records in chronological order, got %v", recs)
	}
	if empty, _ := s.ListChatRecords("bot-1", 0); len(empty) != 0 {
		t.Fatalf("limit 0 must return nothing")
	}
}
