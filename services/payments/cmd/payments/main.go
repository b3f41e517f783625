package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"smartbots/internal/util"
	"smartbots/pkg/mailer"
	"smartbots/pkg/payments"
	"smartbots/services/payments/internal/app"
	"smartbots/services/payments/internal/config"
	"smartbots/services/payments/internal/server"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := util.InitLogger(cfg.LogLevel, "payments")

	paymentClient, err := payments.NewClient(cfg.PaymentsToken, cfg.PaymentsBaseURL)
	if err != nil {
		util.Fatal("failed to init payment client", "err", err)
	}

	var mailClient app.MailSender
	if cfg.MailerAPIKey != "" {
		mailClient, err = mailer.NewClient(cfg.MailerAPIKey, cfg.MailerFrom, cfg.MailerBaseURL)
		if err != nil {
			util.Fatal("failed to init mailer", "err", err)
		}
	} else {
		slog.Warn("mailer not configured, activation emails disabled")
	}

	appCore, err := app.New(app.Config{
		DatabaseURL:     cfg.DatabaseURL,
		Payments:        paymentClient,
		Mailer:          mailClient,
		NotificationURL: cfg.NotificationURL,
		CheckoutBackURL: cfg.CheckoutBackURL,
	})
	if err != nil {
		util.Fatal("failed to init app", "err", err)
	}

	httpServer := server.New(server.Config{App: appCore})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("payments server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
