package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"smartbots/internal/util"
	"smartbots/pkg/assistant"
	"smartbots/pkg/auth"
	"smartbots/pkg/domain"
	"smartbots/pkg/extract"
	"smartbots/pkg/mailer"
	"smartbots/pkg/payments"
	"smartbots/pkg/queue"
	"smartbots/pkg/storage"
	"smartbots/pkg/store"
)

// SiteExtractor pulls bounded markdown content from a company website.
type SiteExtractor interface {
	ExtractSite(ctx context.Context, baseURL string, maxPages int) (*extract.Document, error)
}

// AssistantPlatform provisions assistants and their knowledge files.
type AssistantPlatform interface {
	UploadFile(ctx context.Context, filename string, data []byte) (string, error)
	CreateAssistant(ctx context.Context, spec assistant.AssistantSpec) (string, error)
	ReplaceAssistantFiles(ctx context.Context, assistantID string, fileIDs []string) error
}

// PreferenceCreator creates hosted checkout preferences.
type PreferenceCreator interface {
	CreatePreference(ctx context.Context, spec payments.PreferenceSpec) (payments.Preference, error)
}

// MailSender delivers transactional email.
type MailSender interface {
	Send(ctx context.Context, msg mailer.Message) (string, error)
}

// RefreshScheduler queues knowledge-refresh jobs and reports their status.
type RefreshScheduler interface {
	Enqueue(ctx context.Context, botID string) (queue.JobStatus, error)
	GetJob(ctx context.Context, jobID string) (queue.JobStatus, bool, error)
}

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL     string
	Store           store.Store
	Extractor       SiteExtractor
	Platform        AssistantPlatform
	Payments        PreferenceCreator
	Mailer          MailSender
	Scheduler       RefreshScheduler
	Archive         storage.KnowledgeArchive
	AssistantModel  string
	NotificationURL string
	CheckoutBackURL string
	ContactEmail    string
	MaxSitePages    int
}

// App provisions bots and staff subscribers end to end: scrape, knowledge
// upload, assistant creation, checkout preference, persistence, and email.
type App struct {
	store           store.Store
	extractor       SiteExtractor
	platform        AssistantPlatform
	payments        PreferenceCreator
	mailer          MailSender
	scheduler       RefreshScheduler
	archive         storage.KnowledgeArchive
	assistantModel  string
	notificationURL string
	checkoutBackURL string
	contactEmail    string
	maxSitePages    int
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
	if cfg.Extractor == nil {
		return nil, fmt.Errorf("site extractor required")
	}
	if cfg.Platform == nil {
		return nil, fmt.Errorf("assistant platform required")
	}
	if cfg.Payments == nil {
		return nil, fmt.Errorf("payments client required")
	}
	if cfg.Mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if cfg.AssistantModel == "" {
		return nil, fmt.Errorf("assistant model required")
	}
	maxPages := cfg.MaxSitePages
	if maxPages <= 0 {
		maxPages = 1
	}
	return &App{
		store:           dataStore,
		extractor:       cfg.Extractor,
		platform:        cfg.Platform,
		payments:        cfg.Payments,
		mailer:          cfg.Mailer,
		scheduler:       cfg.Scheduler,
		archive:         cfg.Archive,
		assistantModel:  cfg.AssistantModel,
		notificationURL: cfg.NotificationURL,
		checkoutBackURL: cfg.CheckoutBackURL,
		contactEmail:    cfg.ContactEmail,
		maxSitePages:    maxPages,
	}, nil
}

// Content options a customer can pick for their bot's knowledge base.
const (
	OptionScraping = "scraping"
	OptionText     = "text"
	OptionPDF      = "pdf"
)

// WebsiteBotRequest is the onboarding form for a website widget bot.
// ContentOptions picks the knowledge sources: scraping pulls the website,
// text folds ManualText into the knowledge document, pdf enables later
// document uploads.
type WebsiteBotRequest struct {
	OwnerName      string   `json:"ownerName"`
	OwnerEmail     string   `json:"ownerEmail"`
	OwnerWhatsApp  string   `json:"ownerWhatsApp"`
	CompanyName    string   `json:"companyName"`
	Website        string   `json:"website"`
	ContentOptions []string `json:"contentOptions"`
	ManualText     string   `json:"manualText"`
	Plan           string   `json:"plan"`
}

// WebsiteBotResult carries the provisioned bot plus the one-time widget key.
type WebsiteBotResult struct {
	Bot         domain.WebsiteBot `json:"bot"`
	WidgetKey   string            `json:"widgetKey"`
	PaymentLink string            `json:"paymentLink"`
}

// CreateWebsiteBot provisions a widget bot: scrapes the site (degrading to a
// profile note when the site yields nothing), uploads knowledge, creates the
// assistant, opens a checkout preference, and emails the owner. The bot stays
// pending_payment until the payment webhook activates it.
func (a *App) CreateWebsiteBot(ctx context.Context, req WebsiteBotRequest) (WebsiteBotResult, error) {
	if err := validateOwner(req.OwnerName, req.OwnerEmail); err != nil {
		return WebsiteBotResult{}, err
	}
	if strings.TrimSpace(req.CompanyName) == "" {
		return WebsiteBotResult{}, fmt.Errorf("%w: companyName required", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Website) == "" {
		return WebsiteBotResult{}, fmt.Errorf("%w: website required", ErrInvalidRequest)
	}
	options, err := normalizeContentOptions(req.ContentOptions)
	if err != nil {
		return WebsiteBotResult{}, err
	}
	price, err := payments.PlanPrice(req.Plan)
	if err != nil {
		return WebsiteBotResult{}, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}

	botID := uuid.NewString()
	logger := util.LoggerFromContext(ctx)

	docs := []knowledgeDoc{
		{name: "company.md", content: companyProfile(req.CompanyName, req.Website, req.OwnerName, req.OwnerWhatsApp), contentType: "text/markdown"},
	}
	if siteDoc := a.knowledgeDocument(ctx, req, options); siteDoc != "" {
		docs = append([]knowledgeDoc{{name: "website.md", content: siteDoc, contentType: "text/markdown"}}, docs...)
	}
	fileIDs, err := a.uploadKnowledge(ctx, botID, docs)
	if err != nil {
		return WebsiteBotResult{}, fmt.Errorf("upload knowledge: %w", err)
	}

	assistantID, err := a.platform.CreateAssistant(ctx, assistant.AssistantSpec{
		Name:         req.CompanyName + " Assistant",
		Instructions: widgetInstructions(req.CompanyName, options),
		Model:        a.assistantModel,
		FileIDs:      fileIDs,
	})
	if err != nil {
		return WebsiteBotResult{}, fmt.Errorf("create assistant: %w", err)
	}

	widgetKey, err := auth.NewWidgetKey()
	if err != nil {
		return WebsiteBotResult{}, err
	}
	keyHash, err := auth.HashKey(widgetKey)
	if err != nil {
		return WebsiteBotResult{}, err
	}

	pref, err := a.payments.CreatePreference(ctx, payments.PreferenceSpec{
		Title:             req.CompanyName + " website assistant",
		Description:       planDescription(req.Plan),
		UnitPrice:         price,
		PayerEmail:        req.OwnerEmail,
		ExternalReference: payments.ExternalRef(payments.RefWebsiteBot, botID),
		NotificationURL:   a.notificationURL,
		BackURL:           a.checkoutBackURL,
	})
	if err != nil {
		return WebsiteBotResult{}, fmt.Errorf("create checkout preference: %w", err)
	}

	now := time.Now().UTC()
	bot := domain.WebsiteBot{
		ID:             botID,
		OwnerName:      req.OwnerName,
		OwnerEmail:     req.OwnerEmail,
		OwnerWhatsApp:  req.OwnerWhatsApp,
		CompanyName:    req.CompanyName,
		Website:        req.Website,
		AssistantID:    assistantID,
		FileIDs:        fileIDs,
		ContentOptions: options,
		WidgetKeyHash:  keyHash,
		PaymentLink:    pref.InitPoint,
		Status:         domain.StatusPendingPayment,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := a.store.SaveWebsiteBot(bot); err != nil {
		return WebsiteBotResult{}, fmt.Errorf("save bot: %w", err)
	}

	if _, err := a.mailer.Send(ctx, websiteWelcomeEmail(bot, widgetKey)); err != nil {
		logger.Warn("welcome email failed", "botId", botID, "err", err)
	}

	return WebsiteBotResult{Bot: bot, WidgetKey: widgetKey, PaymentLink: pref.InitPoint}, nil
}

// WhatsAppBotRequest is the onboarding form for a commercial WhatsApp bot.
// CatalogPDF optionally carries a product catalog (base64 in JSON) attached
// to the assistant's knowledge.
type WhatsAppBotRequest struct {
	OwnerName           string `json:"ownerName"`
	OwnerEmail          string `json:"ownerEmail"`
	OwnerWhatsApp       string `json:"ownerWhatsApp"`
	CompanyName         string `json:"companyName"`
	Website             string `json:"website"`
	BusinessDescription string `json:"businessDescription"`
	PhoneNumber         string `json:"phoneNumber"`
	CatalogPDF          []byte `json:"catalogPdf,omitempty"`
	Plan                string `json:"plan"`
}

// CreateWhatsAppBot provisions a commercial bot bound to a business WhatsApp
// number.
func (a *App) CreateWhatsAppBot(ctx context.Context, req WhatsAppBotRequest) (domain.WhatsAppBot, error) {
	if err := validateOwner(req.OwnerName, req.OwnerEmail); err != nil {
		return domain.WhatsAppBot{}, err
	}
	if strings.TrimSpace(req.CompanyName) == "" {
		return domain.WhatsAppBot{}, fmt.Errorf("%w: companyName required", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.PhoneNumber) == "" {
		return domain.WhatsAppBot{}, fmt.Errorf("%w: phoneNumber required", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.BusinessDescription) == "" {
		return domain.WhatsAppBot{}, fmt.Errorf("%w: businessDescription required", ErrInvalidRequest)
	}
	if len(req.CatalogPDF) > 0 {
		if len(req.CatalogPDF) > MaxDocumentBytes {
			return domain.WhatsAppBot{}, fmt.Errorf("%w: catalog exceeds %d bytes", ErrInvalidDocument, MaxDocumentBytes)
		}
		if err := validatePDF(req.CatalogPDF); err != nil {
			return domain.WhatsAppBot{}, err
		}
	}
	price, err := payments.PlanPrice(req.Plan)
	if err != nil {
		return domain.WhatsAppBot{}, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}

	botID := uuid.NewString()
	logger := util.LoggerFromContext(ctx)

	docs := []knowledgeDoc{
		{name: "business.md", content: businessProfile(req.CompanyName, req.BusinessDescription, req.Website), contentType: "text/markdown"},
	}
	if strings.TrimSpace(req.Website) != "" {
		docs = append(docs, knowledgeDoc{
			name:        "website.md",
			content:     a.siteContent(ctx, req.CompanyName, req.Website),
			contentType: "text/markdown",
		})
	}
	if len(req.CatalogPDF) > 0 {
		docs = append(docs, knowledgeDoc{
			name:        "catalog.pdf",
			content:     string(req.CatalogPDF),
			contentType: "application/pdf",
		})
	}
	fileIDs, err := a.uploadKnowledge(ctx, botID, docs)
	if err != nil {
		return domain.WhatsAppBot{}, fmt.Errorf("upload knowledge: %w", err)
	}

	assistantID, err := a.platform.CreateAssistant(ctx, assistant.AssistantSpec{
		Name:         req.CompanyName + " WhatsApp Assistant",
		Instructions: whatsappInstructions(req.CompanyName),
		Model:        a.assistantModel,
		FileIDs:      fileIDs,
	})
	if err != nil {
		return domain.WhatsAppBot{}, fmt.Errorf("create assistant: %w", err)
	}

	pref, err := a.payments.CreatePreference(ctx, payments.PreferenceSpec{
		Title:             req.CompanyName + " WhatsApp assistant",
		Description:       planDescription(req.Plan),
		UnitPrice:         price,
		PayerEmail:        req.OwnerEmail,
		ExternalReference: payments.ExternalRef(payments.RefWhatsAppBot, botID),
		NotificationURL:   a.notificationURL,
		BackURL:           a.checkoutBackURL,
	})
	if err != nil {
		return domain.WhatsAppBot{}, fmt.Errorf("create checkout preference: %w", err)
	}

	now := time.Now().UTC()
	bot := domain.WhatsAppBot{
		ID:                  botID,
		OwnerName:           req.OwnerName,
		OwnerEmail:          req.OwnerEmail,
		OwnerWhatsApp:       req.OwnerWhatsApp,
		CompanyName:         req.CompanyName,
		Website:             req.Website,
		BusinessDescription: req.BusinessDescription,
		AssistantID:         assistantID,
		FileIDs:             fileIDs,
		PhoneNumber:         req.PhoneNumber,
		PaymentLink:         pref.InitPoint,
		Status:              domain.StatusPendingPayment,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := a.store.SaveWhatsAppBot(bot); err != nil {
		return domain.WhatsAppBot{}, fmt.Errorf("save bot: %w", err)
	}

	if _, err := a.mailer.Send(ctx, whatsappWelcomeEmail(bot)); err != nil {
		logger.Warn("welcome email failed", "botId", botID, "err", err)
	}
	return bot, nil
}

// StaffUserRequest is the signup form for the personal-assistant product.
type StaffUserRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Preferences string `json:"preferences"`
	Plan        string `json:"plan"`
}

// CreateStaffUser provisions a personal assistant reachable over WhatsApp.
func (a *App) CreateStaffUser(ctx context.Context, req StaffUserRequest) (domain.StaffUser, error) {
	if err := validateOwner(req.Name, req.Email); err != nil {
		return domain.StaffUser{}, err
	}
	if strings.TrimSpace(req.PhoneNumber) == "" {
		return domain.StaffUser{}, fmt.Errorf("%w: phoneNumber required", ErrInvalidRequest)
	}
	price, err := payments.PlanPrice(req.Plan)
	if err != nil {
		return domain.StaffUser{}, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}

	userID := "staff_" + uuid.NewString()
	logger := util.LoggerFromContext(ctx)

	assistantID, err := a.platform.CreateAssistant(ctx, assistant.AssistantSpec{
		Name:         req.Name + " Personal Assistant",
		Instructions: staffInstructions(req.Name, req.Preferences),
		Model:        a.assistantModel,
	})
	if err != nil {
		return domain.StaffUser{}, fmt.Errorf("create assistant: %w", err)
	}

	pref, err := a.payments.CreatePreference(ctx, payments.PreferenceSpec{
		Title:             "Personal assistant subscription",
		Description:       planDescription(req.Plan),
		UnitPrice:         price,
		PayerEmail:        req.Email,
		ExternalReference: payments.ExternalRef(payments.RefStaffUser, userID),
		NotificationURL:   a.notificationURL,
		BackURL:           a.checkoutBackURL,
	})
	if err != nil {
		return domain.StaffUser{}, fmt.Errorf("create checkout preference: %w", err)
	}

	now := time.Now().UTC()
	user := domain.StaffUser{
		ID:          userID,
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Preferences: req.Preferences,
		AssistantID: assistantID,
		PaymentLink: pref.InitPoint,
		Status:      domain.StatusPendingPayment,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := a.store.SaveStaffUser(user); err != nil {
		return domain.StaffUser{}, fmt.Errorf("save staff user: %w", err)
	}

	if _, err := a.mailer.Send(ctx, staffWelcomeEmail(user)); err != nil {
		logger.Warn("welcome email failed", "userId", userID, "err", err)
	}
	return user, nil
}

// ContactRequest is one lead from the public contact form.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Contact forwards a contact-form lead to the sales inbox.
func (a *App) Contact(ctx context.Context, req ContactRequest) error {
	if err := validateOwner(req.Name, req.Email); err != nil {
		return err
	}
	if strings.TrimSpace(req.Message) == "" {
		return fmt.Errorf("%w: message required", ErrInvalidRequest)
	}
	if a.contactEmail == "" {
		return fmt.Errorf("contact inbox not configured")
	}
	msg := mailer.Message{
		To:      a.contactEmail,
		Subject: "New contact from " + req.Name,
		Text:    fmt.Sprintf("From: %s <%s>\n\n%s", req.Name, req.Email, strings.TrimSpace(req.Message)),
	}
	if _, err := a.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send lead email: %w", err)
	}
	return nil
}

// ListWebsiteBots returns all provisioned website bots, oldest first.
func (a *App) ListWebsiteBots() ([]domain.WebsiteBot, error) {
	return a.store.ListWebsiteBots()
}

// ListWhatsAppBots returns all provisioned WhatsApp bots, oldest first.
func (a *App) ListWhatsAppBots() ([]domain.WhatsAppBot, error) {
	return a.store.ListWhatsAppBots()
}

// ListStaffUsers returns all staff subscribers, oldest first.
func (a *App) ListStaffUsers() ([]domain.StaffUser, error) {
	return a.store.ListStaffUsers()
}

// GetWebsiteBot returns a provisioned website bot.
func (a *App) GetWebsiteBot(id string) (domain.WebsiteBot, error) {
	bot, ok, err := a.store.GetWebsiteBot(id)
	if err != nil {
		return domain.WebsiteBot{}, err
	}
	if !ok {
		return domain.WebsiteBot{}, ErrBotNotFound
	}
	return bot, nil
}

// ScheduleRefresh queues a knowledge refresh for the bot.
func (a *App) ScheduleRefresh(ctx context.Context, botID string) (queue.JobStatus, error) {
	if a.scheduler == nil {
		return queue.JobStatus{}, fmt.Errorf("refresh queue not configured")
	}
	if _, ok, err := a.store.GetWebsiteBot(botID); err != nil {
		return queue.JobStatus{}, err
	} else if !ok {
		return queue.JobStatus{}, ErrBotNotFound
	}
	return a.scheduler.Enqueue(ctx, botID)
}

// Job reports the status of a queued refresh.
func (a *App) Job(ctx context.Context, jobID string) (queue.JobStatus, error) {
	if a.scheduler == nil {
		return queue.JobStatus{}, fmt.Errorf("refresh queue not configured")
	}
	job, ok, err := a.scheduler.GetJob(ctx, jobID)
	if err != nil {
		return queue.JobStatus{}, err
	}
	if !ok {
		return queue.JobStatus{}, ErrJobNotFound
	}
	return job, nil
}

// RefreshKnowledge re-extracts the bot's website, uploads the fresh document,
// and repoints the assistant at the new file set. Used as the queue handler.
func (a *App) RefreshKnowledge(ctx context.Context, botID string) error {
	bot, ok, err := a.store.GetWebsiteBot(botID)
	if err != nil {
		return fmt.Errorf("load bot: %w", err)
	}
	if !ok {
		return ErrBotNotFound
	}
	doc, err := a.extractor.ExtractSite(ctx, bot.Website, a.maxSitePages)
	if err != nil {
		return fmt.Errorf("re-extract %s: %w", bot.Website, err)
	}
	docs := []knowledgeDoc{
		{name: "website.md", content: doc.Content, contentType: "text/markdown"},
		{name: "company.md", content: companyProfile(bot.CompanyName, bot.Website, bot.OwnerName, bot.OwnerWhatsApp), contentType: "text/markdown"},
	}
	fileIDs, err := a.uploadKnowledge(ctx, bot.ID, docs)
	if err != nil {
		return fmt.Errorf("upload knowledge: %w", err)
	}
	if err := a.platform.ReplaceAssistantFiles(ctx, bot.AssistantID, fileIDs); err != nil {
		return fmt.Errorf("replace assistant files: %w", err)
	}
	return a.store.SetWebsiteBotFiles(bot.ID, fileIDs)
}

type knowledgeDoc struct {
	name        string
	content     string
	contentType string
}

// uploadKnowledge pushes documents to the assistant platform concurrently and
// archives a copy of each, preserving input order in the returned file ids.
func (a *App) uploadKnowledge(ctx context.Context, botID string, docs []knowledgeDoc) ([]string, error) {
	fileIDs := make([]string, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			fileID, err := a.platform.UploadFile(gctx, doc.name, []byte(doc.content))
			if err != nil {
				return fmt.Errorf("upload %s: %w", doc.name, err)
			}
			fileIDs[i] = fileID
			if a.archive != nil {
				if _, err := a.archive.ArchiveDocument(gctx, botID, doc.name, []byte(doc.content), doc.contentType); err != nil {
					util.LoggerFromContext(ctx).Warn("archive document failed", "botId", botID, "doc", doc.name, "err", err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return fileIDs, nil
}

// siteContent extracts the website, degrading to a profile note when the site
// cannot be read. Onboarding never fails on a bad website.
func (a *App) siteContent(ctx context.Context, companyName, website string) string {
	doc, err := a.extractor.ExtractSite(ctx, website, a.maxSitePages)
	if err != nil {
		util.LoggerFromContext(ctx).Warn("website extraction failed, using profile fallback", "website", website, "err", err)
		return fmt.Sprintf("# %s\n\nWebsite: %s\n\nNo content could be retrieved from the website during onboarding. Answer from the company profile and ask the visitor for specifics when unsure.", companyName, website)
	}
	return doc.Content
}

func validateOwner(name, email string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name required", ErrInvalidRequest)
	}
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: valid email required", ErrInvalidRequest)
	}
	return nil
}

// normalizeContentOptions lowercases and validates the selected knowledge
// sources. At least one known option must be picked.
func normalizeContentOptions(raw []string) ([]string, error) {
	options := make([]string, 0, len(raw))
	for _, opt := range raw {
		opt = strings.ToLower(strings.TrimSpace(opt))
		if opt == "" {
			continue
		}
		switch opt {
		case OptionScraping, OptionText, OptionPDF:
			options = append(options, opt)
		default:
			return nil, fmt.Errorf("%w: unknown content option %q", ErrInvalidRequest, opt)
		}
	}
	if len(options) == 0 {
		return nil, fmt.Errorf("%w: pick at least one content option", ErrInvalidRequest)
	}
	return options, nil
}

func hasOption(options []string, want string) bool {
	for _, opt := range options {
		if opt == want {
			return true
		}
	}
	return false
}

// knowledgeDocument assembles the website knowledge file from the selected
// sources: the scraped site when scraping is picked, the customer's manual
// text when text is picked. Empty when neither contributes (pdf-only bots get
// their knowledge through document uploads).
func (a *App) knowledgeDocument(ctx context.Context, req WebsiteBotRequest, options []string) string {
	var sections []string
	if hasOption(options, OptionScraping) {
		sections = append(sections, a.siteContent(ctx, req.CompanyName, req.Website))
	}
	if manual := strings.TrimSpace(req.ManualText); hasOption(options, OptionText) && manual != "" {
		sections = append(sections, "## Additional information\n\n"+manual)
	}
	return strings.Join(sections, "\n\n")
}

func planDescription(plan string) string {
	plan = strings.ToLower(strings.TrimSpace(plan))
	if plan == "" {
		plan = payments.PlanBasic
	}
	return "Monthly subscription (" + plan + " plan)"
}

func companyProfile(companyName, website, ownerName, ownerWhatsApp string) string {
	var sb strings.Builder
	sb.WriteString("# " + companyName + "\n\n")
	sb.WriteString("Website: " + website + "\n")
	if ownerName != "" {
		sb.WriteString("Contact: " + ownerName + "\n")
	}
	if ownerWhatsApp != "" {
		sb.WriteString("WhatsApp: " + ownerWhatsApp + "\n")
	}
	return sb.String()
}

func businessProfile(companyName, description, website string) string {
	var sb strings.Builder
	sb.WriteString("# " + companyName + "\n\n")
	sb.WriteString(description + "\n")
	if website != "" {
		sb.WriteString("\nWebsite: " + website + "\n")
	}
	return sb.String()
}

func widgetInstructions(companyName string, options []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are the virtual assistant for %s, answering visitors of the company website. ", companyName)
	sb.WriteString("Answer only from the attached knowledge files, in the language of the question. ")
	sb.WriteString("When the answer is not in the knowledge files, say so and offer to connect the visitor with the team.")
	if len(options) > 0 {
		sb.WriteString(" Focus on: " + strings.Join(options, ", ") + ".")
	}
	return sb.String()
}

func whatsappInstructions(companyName string) string {
	return fmt.Sprintf("You are the WhatsApp assistant for %s. Keep replies short and conversational, suitable for a chat message. Answer only from the attached knowledge files and offer to hand over to a human when unsure.", companyName)
}

func staffInstructions(name, preferences string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a personal assistant for %s, reachable over WhatsApp. Help with reminders, drafting messages, and quick research. Keep replies concise.", name)
	if strings.TrimSpace(preferences) != "" {
		sb.WriteString(" User preferences: " + strings.TrimSpace(preferences))
	}
	return sb.String()
}

func websiteWelcomeEmail(bot domain.WebsiteBot, widgetKey string) mailer.Message {
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your website assistant for <b>%s</b> is ready.</p><p>Complete the subscription to activate it: <a href=%q>pay now</a></p><p>Your widget key (keep it secret, it is shown only once):</p><pre>%s</pre>",
		bot.OwnerName, bot.CompanyName, bot.PaymentLink, widgetKey,
	)
	return mailer.Message{
		To:      bot.OwnerEmail,
		Subject: "Your website assistant is ready",
		HTML:    html,
	}
}

func whatsappWelcomeEmail(bot domain.WhatsAppBot) mailer.Message {
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your WhatsApp assistant for <b>%s</b> is ready on %s.</p><p>Complete the subscription to activate it: <a href=%q>pay now</a></p>",
		bot.OwnerName, bot.CompanyName, bot.PhoneNumber, bot.PaymentLink,
	)
	return mailer.Message{
		To:      bot.OwnerEmail,
		Subject: "Your WhatsApp assistant is ready",
		HTML:    html,
	}
}

func staffWelcomeEmail(user domain.StaffUser) mailer.Message {
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your personal assistant is ready. Message it on WhatsApp once your subscription is active.</p><p><a href=%q>Complete the subscription</a></p>",
		user.Name, user.PaymentLink,
	)
	return mailer.Message{
		To:      user.Email,
		Subject: "Your personal assistant is ready",
		HTML:    html,
	}
}
