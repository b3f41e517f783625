package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
	"smartbots/pkg/domain"
)

const migrateLockID int64 = 58215821

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(
			&WebsiteBotModel{},
			&WhatsAppBotModel{},
			&StaffUserModel{},
			&ChatRecordModel{},
			&StaffHistoryModel{},
		); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// SaveWebsiteBot stores or updates a website bot.
func (s *GormStore) SaveWebsiteBot(b domain.WebsiteBot) error {
	model := websiteBotToModel(b)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"owner_name", "owner_email", "owner_whats_app", "company_name", "website", "assistant_id", "file_ids", "content_options", "widget_key_hash", "payment_link", "status", "updated_at"}),
	}).Create(&model).Error
}

// GetWebsiteBot retrieves a website bot.
func (s *GormStore) GetWebsiteBot(id string) (domain.WebsiteBot, bool, error) {
	var model WebsiteBotModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.WebsiteBot{}, false, nil
		}
		return domain.WebsiteBot{}, false, err
	}
	return websiteBotFromModel(model), true, nil
}

// SetWebsiteBotStatus updates the subscription status.
func (s *GormStore) SetWebsiteBotStatus(id string, status domain.BotStatus) error {
	return s.db.Model(&WebsiteBotModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		}).Error
}

// SetWebsiteBotFiles replaces the bot's knowledge file ids.
func (s *GormStore) SetWebsiteBotFiles(id string, fileIDs []string) error {
	raw, _ := json.Marshal(fileIDs)
	return s.db.Model(&WebsiteBotModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"file_ids":   raw,
			"updated_at": time.Now().UTC(),
		}).Error
}

// ListWebsiteBots returns all website bots ordered by created_at.
func (s *GormStore) ListWebsiteBots() ([]domain.WebsiteBot, error) {
	var models []WebsiteBotModel
	if err := s.db.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.WebsiteBot, 0, len(models))
	for _, m := range models {
		res = append(res, websiteBotFromModel(m))
	}
	return res, nil
}

// SaveWhatsAppBot stores or updates a WhatsApp bot.
func (s *GormStore) SaveWhatsAppBot(b domain.WhatsAppBot) error {
	model := whatsAppBotToModel(b)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"owner_name", "owner_email", "owner_whats_app", "company_name", "website", "business_description", "assistant_id", "file_ids", "phone_number", "payment_link", "status", "updated_at"}),
	}).Create(&model).Error
}

// GetWhatsAppBot retrieves a WhatsApp bot.
func (s *GormStore) GetWhatsAppBot(id string) (domain.WhatsAppBot, bool, error) {
	var model WhatsAppBotModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.WhatsAppBot{}, false, nil
		}
		return domain.WhatsAppBot{}, false, err
	}
	return whatsAppBotFromModel(model), true, nil
}

// GetWhatsAppBotByPhone looks up a bot by its business number.
func (s *GormStore) GetWhatsAppBotByPhone(phone string) (domain.WhatsAppBot, bool, error) {
	var model WhatsAppBotModel
	if err := s.db.Where("phone_number = ?", phone).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.WhatsAppBot{}, false, nil
		}
		return domain.WhatsAppBot{}, false, err
	}
	return whatsAppBotFromModel(model), true, nil
}

// SetWhatsAppBotStatus updates the subscription status.
func (s *GormStore) SetWhatsAppBotStatus(id string, status domain.BotStatus) error {
	return s.db.Model(&WhatsAppBotModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		}).Error
}

// ListWhatsAppBots returns all WhatsApp bots ordered by created_at.
func (s *GormStore) ListWhatsAppBots() ([]domain.WhatsAppBot, error) {
	var models []WhatsAppBotModel
	if err := s.db.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.WhatsAppBot, 0, len(models))
	for _, m := range models {
		res = append(res, whatsAppBotFromModel(m))
	}
	return res, nil
}

// SaveStaffUser stores or updates a staff subscriber.
func (s *GormStore) SaveStaffUser(u domain.StaffUser) error {
	model := staffUserToModel(u)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "phone_number", "preferences", "assistant_id", "thread_id", "payment_link", "status", "updated_at"}),
	}).Create(&model).Error
}

// GetStaffUser retrieves a staff subscriber.
func (s *GormStore) GetStaffUser(id string) (domain.StaffUser, bool, error) {
	var model StaffUserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.StaffUser{}, false, nil
		}
		return domain.StaffUser{}, false, err
	}
	return staffUserFromModel(model), true, nil
}

// GetStaffUserByPhone looks up a subscriber by WhatsApp number.
func (s *GormStore) GetStaffUserByPhone(phone string) (domain.StaffUser, bool, error) {
	var model StaffUserModel
	if err := s.db.Where("phone_number = ?", phone).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.StaffUser{}, false, nil
		}
		return domain.StaffUser{}, false, err
	}
	return staffUserFromModel(model), true, nil
}

// SetStaffUserStatus updates the subscription status.
func (s *GormStore) SetStaffUserStatus(id string, status domain.BotStatus) error {
	return s.db.Model(&StaffUserModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		}).Error
}

// SetStaffThread caches the subscriber's conversation thread id.
func (s *GormStore) SetStaffThread(id, threadID string) error {
	return s.db.Model(&StaffUserModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"thread_id":  threadID,
			"updated_at": time.Now().UTC(),
		}).Error
}

// ListStaffUsers returns all staff subscribers ordered by created_at.
func (s *GormStore) ListStaffUsers() ([]domain.StaffUser, error) {
	var models []StaffUserModel
	if err := s.db.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.StaffUser, 0, len(models))
	for _, m := range models {
		res = append(res, staffUserFromModel(m))
	}
	return res, nil
}

// AppendChatRecord records one completed turn.
func (s *GormStore) AppendChatRecord(rec domain.ChatRecord) error {
	model := chatRecordToModel(rec)
	return s.db.Create(&model).Error
}

// ListChatRecords returns recent turns for a bot (newest first, then reversed
// to chronological).
func (s *GormStore) ListChatRecords(botID string, limit int) ([]domain.ChatRecord, error) {
	if limit <= 0 {
		return []domain.ChatRecord{}, nil
	}
	var models []ChatRecordModel
	if err := s.db.Where("bot_id = ?", botID).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	recs := make([]domain.ChatRecord, 0, len(models))
	for i := len(models) - 1; i >= 0; i-- {
		recs = append(recs, chatRecordFromModel(models[i]))
	}
	return recs, nil
}

// LatestChatThread returns the thread of the most recent turn between a bot
// and a phone number, or empty when they have not talked yet.
func (s *GormStore) LatestChatThread(botID, phone string) (string, error) {
	var model ChatRecordModel
	err := s.db.Where("bot_id = ? AND phone_number = ?", botID, phone).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", err
	}
	return model.ThreadID, nil
}

// AppendStaffHistory records one completed personal-assistant turn.
func (s *GormStore) AppendStaffHistory(h domain.StaffHistory) error {
	model := staffHistoryToModel(h)
	return s.db.Create(&model).Error
}

// ListStaffHistory returns recent turns for a subscriber.
func (s *GormStore) ListStaffHistory(userID string, limit int) ([]domain.StaffHistory, error) {
	if limit <= 0 {
		return []domain.StaffHistory{}, nil
	}
	var models []StaffHistoryModel
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	items := make([]domain.StaffHistory, 0, len(models))
	for i := len(models) - 1; i >= 0; i-- {
		items = append(items, staffHistoryFromModel(models[i]))
	}
	return items, nil
}

func websiteBotToModel(b domain.WebsiteBot) WebsiteBotModel {
	fileIDs, _ := json.Marshal(b.FileIDs)
	options, _ := json.Marshal(b.ContentOptions)
	return WebsiteBotModel{
		ID:             b.ID,
		OwnerName:      b.OwnerName,
		OwnerEmail:     b.OwnerEmail,
		OwnerWhatsApp:  b.OwnerWhatsApp,
		CompanyName:    b.CompanyName,
		Website:        b.Website,
		AssistantID:    b.AssistantID,
		FileIDs:        fileIDs,
		ContentOptions: options,
		WidgetKeyHash:  b.WidgetKeyHash,
		PaymentLink:    b.PaymentLink,
		Status:         string(b.Status),
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

func websiteBotFromModel(m WebsiteBotModel) domain.WebsiteBot {
	var fileIDs, options []string
	if len(m.FileIDs) > 0 {
		_ = json.Unmarshal(m.FileIDs, &fileIDs)
	}
	if len(m.ContentOptions) > 0 {
		_ = json.Unmarshal(m.ContentOptions, &options)
	}
	return domain.WebsiteBot{
		ID:             m.ID,
		OwnerName:      m.OwnerName,
		OwnerEmail:     m.OwnerEmail,
		OwnerWhatsApp:  m.OwnerWhatsApp,
		CompanyName:    m.CompanyName,
		Website:        m.Website,
		AssistantID:    m.AssistantID,
		FileIDs:        fileIDs,
		ContentOptions: options,
		WidgetKeyHash:  m.WidgetKeyHash,
		PaymentLink:    m.PaymentLink,
		Status:         domain.BotStatus(m.Status),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func whatsAppBotToModel(b domain.WhatsAppBot) WhatsAppBotModel {
	fileIDs, _ := json.Marshal(b.FileIDs)
	return WhatsAppBotModel{
		ID:                  b.ID,
		OwnerName:           b.OwnerName,
		OwnerEmail:          b.OwnerEmail,
		OwnerWhatsApp:       b.OwnerWhatsApp,
		CompanyName:         b.CompanyName,
		Website:             b.Website,
		BusinessDescription: b.BusinessDescription,
		AssistantID:         b.AssistantID,
		FileIDs:             fileIDs,
		PhoneNumber:         b.PhoneNumber,
		PaymentLink:         b.PaymentLink,
		Status:              string(b.Status),
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}
}

func whatsAppBotFromModel(m WhatsAppBotModel) domain.WhatsAppBot {
	var fileIDs []string
	if len(m.FileIDs) > 0 {
		_ = json.Unmarshal(m.FileIDs, &fileIDs)
	}
	return domain.WhatsAppBot{
		ID:                  m.ID,
		OwnerName:           m.OwnerName,
		OwnerEmail:          m.OwnerEmail,
		OwnerWhatsApp:       m.OwnerWhatsApp,
		CompanyName:         m.CompanyName,
		Website:             m.Website,
		BusinessDescription: m.BusinessDescription,
		AssistantID:         m.AssistantID,
		FileIDs:             fileIDs,
		PhoneNumber:         m.PhoneNumber,
		PaymentLink:         m.PaymentLink,
		Status:              domain.BotStatus(m.Status),
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func staffUserToModel(u domain.StaffUser) StaffUserModel {
	return StaffUserModel{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Preferences: u.Preferences,
		AssistantID: u.AssistantID,
		ThreadID:    u.ThreadID,
		PaymentLink: u.PaymentLink,
		Status:      string(u.Status),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func staffUserFromModel(m StaffUserModel) domain.StaffUser {
	return domain.StaffUser{
		ID:          m.ID,
		Name:        m.Name,
		Email:       m.Email,
		PhoneNumber: m.PhoneNumber,
		Preferences: m.Preferences,
		AssistantID: m.AssistantID,
		ThreadID:    m.ThreadID,
		PaymentLink: m.PaymentLink,
		Status:      domain.BotStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func chatRecordToModel(rec domain.ChatRecord) ChatRecordModel {
	return ChatRecordModel{
		ID:          rec.ID,
		BotID:       rec.BotID,
		Channel:     string(rec.Channel),
		ThreadID:    rec.ThreadID,
		PhoneNumber: rec.PhoneNumber,
		UserMessage: rec.UserMessage,
		BotReply:    rec.BotReply,
		CreatedAt:   rec.CreatedAt,
	}
}

func chatRecordFromModel(m ChatRecordModel) domain.ChatRecord {
	return domain.ChatRecord{
		ID:          m.ID,
		BotID:       m.BotID,
		Channel:     domain.Channel(m.Channel),
		ThreadID:    m.ThreadID,
		PhoneNumber: m.PhoneNumber,
		UserMessage: m.UserMessage,
		BotReply:    m.BotReply,
		CreatedAt:   m.CreatedAt,
	}
}

func staffHistoryToModel(h domain.StaffHistory) StaffHistoryModel {
	return StaffHistoryModel{
		ID:          h.ID,
		UserID:      h.UserID,
		PhoneNumber: h.PhoneNumber,
		ThreadID:    h.ThreadID,
		UserMessage: h.UserMessage,
		BotReply:    h.BotReply,
		CreatedAt:   h.CreatedAt,
	}
}

func staffHistoryFromModel(m StaffHistoryModel) domain.StaffHistory {
	return domain.StaffHistory{
		ID:          m.ID,
		UserID:      m.UserID,
		PhoneNumber: m.PhoneNumber,
		ThreadID:    m.ThreadID,
		UserMessage: m.UserMessage,
		BotReply:    m.BotReply,
		CreatedAt:   m.CreatedAt,
	}
}
