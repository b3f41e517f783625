package app

import (
	"context"
	"fmt"
	"strconv"

	"smartbots/internal/util"
	"smartbots/pkg/domain"
	"smartbots/pkg/mailer"
	"smartbots/pkg/payments"
	"smartbots/pkg/store"
)

// PaymentAPI is the slice of the checkout provider this service uses.
type PaymentAPI interface {
	CreatePreference(ctx context.Context, spec payments.PreferenceSpec) (payments.Preference, error)
	GetPayment(ctx context.Context, paymentID string) (payments.Payment, error)
}

// MailSender delivers transactional email.
type MailSender interface {
	Send(ctx context.Context, msg mailer.Message) (string, error)
}

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL     string
	Store           store.Store
	Payments        PaymentAPI
	Mailer          MailSender
	NotificationURL string
	CheckoutBackURL string
}

// App creates checkout preferences and activates records when the provider
// reports an approved payment.
type App struct {
	store           store.Store
	payments        PaymentAPI
	mailer          MailSender
	notificationURL string
	checkoutBackURL string
}

// CheckoutRequest asks for a fresh payment link. RefKind and RefID tie the
// preference to an existing record so the webhook can activate it; both may
// be empty for a detached preference.
type CheckoutRequest struct {
	Plan       string `json:"plan"`
	RefKind    string `json:"refKind"`
	RefID      string `json:"refId"`
	PayerEmail string `json:"payerEmail"`
}

// CheckoutResult is the created preference.
type CheckoutResult struct {
	PaymentURL   string `json:"paymentUrl"`
	PreferenceID string `json:"preferenceId"`
}

// Notification is the provider's webhook payload, reduced to what routing
// needs.
type Notification struct {
	Type   string
	DataID string
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
	if cfg.Payments == nil {
		return nil, fmt.Errorf("payment client required")
	}
	return &App{
		store:           dataStore,
		payments:        cfg.Payments,
		mailer:          cfg.Mailer,
		notificationURL: cfg.NotificationURL,
		checkoutBackURL: cfg.CheckoutBackURL,
	}, nil
}

// CreateCheckout builds a checkout preference for a subscription plan. When
// the request references a record, the new payment link is saved back on it.
func (a *App) CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutResult, error) {
	price, err := payments.PlanPrice(req.Plan)
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}
	spec := payments.PreferenceSpec{
		Title:           "smartbots subscription",
		Description:     planDescription(req.Plan),
		UnitPrice:       price,
		PayerEmail:      req.PayerEmail,
		NotificationURL: a.notificationURL,
		BackURL:         a.checkoutBackURL,
	}
	if req.RefKind != "" || req.RefID != "" {
		email, err := a.payerEmailFor(req.RefKind, req.RefID)
		if err != nil {
			return CheckoutResult{}, err
		}
		if spec.PayerEmail == "" {
			spec.PayerEmail = email
		}
		spec.ExternalReference = payments.ExternalRef(req.RefKind, req.RefID)
	}
	pref, err := a.payments.CreatePreference(ctx, spec)
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("create preference: %w", err)
	}
	if spec.ExternalReference != "" {
		if err := a.savePaymentLink(req.RefKind, req.RefID, pref.InitPoint); err != nil {
			util.LoggerFromContext(ctx).Warn("save payment link failed", "kind", req.RefKind, "id", req.RefID, "err", err)
		}
	}
	return CheckoutResult{PaymentURL: pref.InitPoint, PreferenceID: pref.ID}, nil
}

// HandleWebhook processes one provider notification. Non-payment events and
// payments that cannot be routed are acknowledged without effect; only a
// failed payment lookup is reported back so the provider retries.
func (a *App) HandleWebhook(ctx context.Context, n Notification) error {
	logger := util.LoggerFromContext(ctx)
	if n.Type != "payment" {
		logger.Debug("ignoring notification", "type", n.Type)
		return nil
	}
	if n.DataID == "" {
		logger.Warn("payment notification without an id")
		return nil
	}
	payment, err := a.payments.GetPayment(ctx, n.DataID)
	if err != nil {
		return fmt.Errorf("fetch payment %s: %w", n.DataID, err)
	}
	if payment.Status != payments.PaymentApproved {
		logger.Info("payment not approved", "paymentId", payment.ID, "status", payment.Status)
		return nil
	}
	kind, id, err := payments.ParseExternalRef(payment.ExternalReference)
	if err != nil {
		logger.Warn("cannot route approved payment", "paymentId", payment.ID, "err", err)
		return nil
	}
	if err := a.activate(ctx, kind, id, payment); err != nil {
		logger.Error("activation failed", "kind", kind, "id", id, "err", err)
		return nil
	}
	logger.Info("record activated", "kind", kind, "id", id, "paymentId", payment.ID)
	return nil
}

func (a *App) activate(ctx context.Context, kind, id string, payment payments.Payment) error {
	var name, email, product string
	switch kind {
	case payments.RefWebsiteBot:
		bot, ok, err := a.store.GetWebsiteBot(id)
		if err != nil || !ok {
			return fmt.Errorf("website bot %s: ok=%v err=%w", id, ok, err)
		}
		if err := a.store.SetWebsiteBotStatus(id, domain.StatusActive); err != nil {
			return err
		}
		name, email, product = bot.OwnerName, bot.OwnerEmail, "website chat assistant"
	case payments.RefWhatsAppBot:
		bot, ok, err := a.store.GetWhatsAppBot(id)
		if err != nil || !ok {
			return fmt.Errorf("whatsapp bot %s: ok=%v err=%w", id, ok, err)
		}
		if err := a.store.SetWhatsAppBotStatus(id, domain.StatusActive); err != nil {
			return err
		}
		name, email, product = bot.OwnerName, bot.OwnerEmail, "WhatsApp assistant"
	case payments.RefStaffUser:
		user, ok, err := a.store.GetStaffUser(id)
		if err != nil || !ok {
			return fmt.Errorf("staff user %s: ok=%v err=%w", id, ok, err)
		}
		if err := a.store.SetStaffUserStatus(id, domain.StatusActive); err != nil {
			return err
		}
		name, email, product = user.Name, user.Email, "personal assistant"
	default:
		return ErrUnknownReference
	}
	a.sendActivationEmail(ctx, name, email, product, payment)
	return nil
}

func (a *App) sendActivationEmail(ctx context.Context, name, email, product string, payment payments.Payment) {
	if a.mailer == nil || email == "" {
		return
	}
	msg := mailer.Message{
		To:      email,
		Subject: "Your smartbots assistant is active",
		HTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>We confirmed your payment of R$ %s and your %s is now active.</p><p>Thanks for choosing smartbots!</p>",
			name, strconv.FormatFloat(payment.TransactionAmount, 'f', 2, 64), product),
	}
	if _, err := a.mailer.Send(ctx, msg); err != nil {
		util.LoggerFromContext(ctx).Warn("activation email failed", "to", email, "err", err)
	}
}

func (a *App) payerEmailFor(kind, id string) (string, error) {
	switch kind {
	case payments.RefWebsiteBot:
		bot, ok, err := a.store.GetWebsiteBot(id)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", ErrRecordNotFound
		}
		return bot.OwnerEmail, nil
	case payments.RefWhatsAppBot:
		bot, ok, err := a.store.GetWhatsAppBot(id)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", ErrRecordNotFound
		}
		return bot.OwnerEmail, nil
	case payments.RefStaffUser:
		user, ok, err := a.store.GetStaffUser(id)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", ErrRecordNotFound
		}
		return user.Email, nil
	}
	return "", ErrUnknownReference
}

func (a *App) savePaymentLink(kind, id, link string) error {
	switch kind {
	case payments.RefWebsiteBot:
		bot, ok, err := a.store.GetWebsiteBot(id)
		if err != nil || !ok {
			return err
		}
		bot.PaymentLink = link
		return a.store.SaveWebsiteBot(bot)
	case payments.RefWhatsAppBot:
		bot, ok, err := a.store.GetWhatsAppBot(id)
		if err != nil || !ok {
			return err
		}
		bot.PaymentLink = link
		return a.store.SaveWhatsAppBot(bot)
	case payments.RefStaffUser:
		user, ok, err := a.store.GetStaffUser(id)
		if err != nil || !ok {
			return err
		}
		user.PaymentLink = link
		return a.store.SaveStaffUser(user)
	}
	return ErrUnknownReference
}

var _ PaymentAPI = (*payments.Client)(nil)

func planDescription(plan string) string {
	if plan == payments.PlanPro {
		return "smartbots pro plan, monthly subscription"
	}
	return "smartbots basic plan, monthly subscription"
}
