package app

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/ledongthuc/pdf"
	"smartbots/internal/util"
	"smartbots/pkg/domain"
)

// MaxDocumentBytes bounds uploaded knowledge documents.
const MaxDocumentBytes = 20 << 20

// AddDocument attaches an owner-supplied knowledge document to a website bot.
// PDFs are validated before upload; markdown and plain text are accepted
// as-is.
func (a *App) AddDocument(ctx context.Context, botID, filename string, data []byte) (domain.WebsiteBot, error) {
	bot, ok, err := a.store.GetWebsiteBot(botID)
	if err != nil {
		return domain.WebsiteBot{}, fmt.Errorf("load bot: %w", err)
	}
	if !ok {
		return domain.WebsiteBot{}, ErrBotNotFound
	}
	if len(data) == 0 {
		return domain.WebsiteBot{}, fmt.Errorf("%w: empty file", ErrInvalidDocument)
	}
	if len(data) > MaxDocumentBytes {
		return domain.WebsiteBot{}, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidDocument, MaxDocumentBytes)
	}

	contentType := "text/markdown"
	switch strings.ToLower(path.Ext(filename)) {
	case ".pdf":
		if err := validatePDF(data); err != nil {
			return domain.WebsiteBot{}, err
		}
		contentType = "application/pdf"
	case ".md", ".markdown", ".txt":
	default:
		return domain.WebsiteBot{}, fmt.Errorf("%w: unsupported file type %q", ErrInvalidDocument, path.Ext(filename))
	}

	fileID, err := a.platform.UploadFile(ctx, filename, data)
	if err != nil {
		return domain.WebsiteBot{}, fmt.Errorf("upload %s: %w", filename, err)
	}
	if a.archive != nil {
		if _, err := a.archive.ArchiveDocument(ctx, bot.ID, filename, data, contentType); err != nil {
			util.LoggerFromContext(ctx).Warn("archive document failed", "botId", bot.ID, "doc", filename, "err", err)
		}
	}

	fileIDs := append(append([]string(nil), bot.FileIDs...), fileID)
	if bot.AssistantID != "" {
		if err := a.platform.ReplaceAssistantFiles(ctx, bot.AssistantID, fileIDs); err != nil {
			return domain.WebsiteBot{}, fmt.Errorf("replace assistant files: %w", err)
		}
	}
	if err := a.store.SetWebsiteBotFiles(bot.ID, fileIDs); err != nil {
		return domain.WebsiteBot{}, fmt.Errorf("save file ids: %w", err)
	}
	bot.FileIDs = fileIDs
	return bot, nil
}

func validatePDF(data []byte) error {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("%w: unreadable pdf: %v", ErrInvalidDocument, err)
	}
	if reader.NumPage() < 1 {
		return fmt.Errorf("%w: pdf has no pages", ErrInvalidDocument)
	}
	return nil
}
