package store

import (
	"sort"
	"sync"

	"smartbots/pkg/domain"
)

// MemoryStore implements Store in memory for tests and local development.
type MemoryStore struct {
	mu           sync.RWMutex
	websiteBots  map[string]domain.WebsiteBot
	whatsappBots map[string]domain.WhatsAppBot
	staffUsers   map[string]domain.StaffUser
	chatRecords  []domain.ChatRecord
	staffHistory []domain.StaffHistory
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		websiteBots:  make(map[string]domain.WebsiteBot),
		whatsappBots: make(map[string]domain.WhatsAppBot),
		staffUsers:   make(map[string]domain.StaffUser),
	}
}

func (s *MemoryStore) SaveWebsiteBot(b domain.WebsiteBot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.websiteBots[b.ID] = b
	return nil
}

func (s *MemoryStore) GetWebsiteBot(id string) (domain.WebsiteBot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.websiteBots[id]
	return b, ok, nil
}

func (s *MemoryStore) SetWebsiteBotStatus(id string, status domain.BotStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.websiteBots[id]; ok {
		b.Status = status
		s.websiteBots[id] = b
	}
	return nil
}

func (s *MemoryStore) SetWebsiteBotFiles(id string, fileIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.websiteBots[id]; ok {
		b.FileIDs = append([]string(nil), fileIDs...)
		s.websiteBots[id] = b
	}
	return nil
}

func (s *MemoryStore) ListWebsiteBots() ([]domain.WebsiteBot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]domain.WebsiteBot, 0, len(s.websiteBots))
	for _, b := range s.websiteBots {
		res = append(res, b)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (s *MemoryStore) SaveWhatsAppBot(b domain.WhatsAppBot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.whatsappBots[b.ID] = b
	return nil
}

func (s *MemoryStore) GetWhatsAppBot(id string) (domain.WhatsAppBot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.whatsappBots[id]
	return b, ok, nil
}

func (s *MemoryStore) GetWhatsAppBotByPhone(phone string) (domain.WhatsAppBot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.whatsappBots {
		if b.PhoneNumber == phone {
			return b, true, nil
		}
	}
	return domain.WhatsAppBot{}, false, nil
}

func (s *MemoryStore) SetWhatsAppBotStatus(id string, status domain.BotStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.whatsappBots[id]; ok {
		b.Status = status
		s.whatsappBots[id] = b
	}
	return nil
}

func (s *MemoryStore) ListWhatsAppBots() ([]domain.WhatsAppBot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]domain.WhatsAppBot, 0, len(s.whatsappBots))
	for _, b := range s.whatsappBots {
		res = append(res, b)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (s *MemoryStore) SaveStaffUser(u domain.StaffUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staffUsers[u.ID] = u
	return nil
}

func (s *MemoryStore) GetStaffUser(id string) (domain.StaffUser, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.staffUsers[id]
	return u, ok, nil
}

func (s *MemoryStore) GetStaffUserByPhone(phone string) (domain.StaffUser, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.staffUsers {
		if u.PhoneNumber == phone {
			return u, true, nil
		}
	}
	return domain.StaffUser{}, false, nil
}

func (s *MemoryStore) SetStaffUserStatus(id string, status domain.BotStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.staffUsers[id]; ok {
		u.Status = status
		s.staffUsers[id] = u
	}
	return nil
}

func (s *MemoryStore) SetStaffThread(id, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.staffUsers[id]; ok {
		u.ThreadID = threadID
		s.staffUsers[id] = u
	}
	return nil
}

func (s *MemoryStore) ListStaffUsers() ([]domain.StaffUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]domain.StaffUser, 0, len(s.staffUsers))
	for _, u := range s.staffUsers {
		res = append(res, u)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (s *MemoryStore) AppendChatRecord(rec domain.ChatRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatRecords = append(s.chatRecords, rec)
	return nil
}

func (s *MemoryStore) ListChatRecords(botID string, limit int) ([]domain.ChatRecord, error) {
	if limit <= 0 {
		return []domain.ChatRecord{}, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []domain.ChatRecord
	for _, rec := range s.chatRecords {
		if rec.BotID == botID {
			matched = append(matched, rec)
		}
	}
	if len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	return append([]domain.ChatRecord{}, matched...), nil
}

func (s *MemoryStore) LatestChatThread(botID, phone string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.chatRecords) - 1; i >= 0; i-- {
		rec := s.chatRecords[i]
		if rec.BotID == botID && rec.PhoneNumber == phone {
			return rec.ThreadID, nil
		}
	}
	return "", nil
}

func (s *MemoryStore) AppendStaffHistory(h domain.StaffHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staffHistory = append(s.staffHistory, h)
	return nil
}

func (s *MemoryStore) ListStaffHistory(userID string, limit int) ([]domain.StaffHistory, error) {
	if limit <= 0 {
		return []domain.StaffHistory{}, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []domain.StaffHistory
	for _, h := range s.staffHistory {
		if h.UserID == userID {
			matched = append(matched, h)
		}
	}
	if len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	return append([]domain.StaffHistory{}, matched...), nil
}
