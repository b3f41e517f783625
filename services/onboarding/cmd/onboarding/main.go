package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"smartbots/internal/util"
	"smartbots/pkg/assistant"
	"smartbots/pkg/extract"
	"smartbots/pkg/mailer"
	"smartbots/pkg/payments"
	"smartbots/pkg/queue"
	"smartbots/pkg/storage"
	"smartbots/services/onboarding/internal/app"
	"smartbots/services/onboarding/internal/config"
	"smartbots/services/onboarding/internal/server"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := util.InitLogger(cfg.LogLevel, "onboarding")

	platform, err := assistant.NewClient(cfg.AssistantAPIKey, cfg.AssistantBaseURL)
	if err != nil {
		util.Fatal("failed to init assistant client", "err", err)
	}
	paymentsClient, err := payments.NewClient(cfg.PaymentsToken, "")
	if err != nil {
		util.Fatal("failed to init payments client", "err", err)
	}
	mailClient, err := mailer.NewClient(cfg.MailerAPIKey, cfg.MailerFrom, "")
	if err != nil {
		util.Fatal("failed to init mailer", "err", err)
	}

	var archive storage.KnowledgeArchive
	if cfg.MinioEndpoint != "" {
		minioArchive, err := storage.NewMinioArchive(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			util.Fatal("failed to init knowledge archive", "err", err)
		}
		archive = minioArchive
	}

	stream := cfg.RefreshStream
	if stream == "" {
		stream = "smartbots:refresh"
	}
	refreshQueue, err := queue.NewRefreshQueue(queue.RefreshQueueConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		Stream:   stream,
		Group:    "onboarding",
	})
	if err != nil {
		util.Fatal("failed to init refresh queue", "err", err)
	}

	appCore, err := app.New(app.Config{
		DatabaseURL:     cfg.DatabaseURL,
		Extractor:       extract.New(extract.Config{}),
		Platform:        platform,
		Payments:        paymentsClient,
		Mailer:          mailClient,
		Scheduler:       refreshQueue,
		Archive:         archive,
		AssistantModel:  cfg.AssistantModel,
		NotificationURL: cfg.NotificationURL,
		CheckoutBackURL: cfg.CheckoutBackURL,
		ContactEmail:    cfg.ContactEmail,
		MaxSitePages:    cfg.MaxSitePages,
	})
	if err != nil {
		util.Fatal("failed to init app", "err", err)
	}

	workers := cfg.WorkerCount
	if workers <= 0 {
		workers = 2
	}
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	refreshQueue.Start(workerCtx, workers, func(ctx context.Context, job queue.JobStatus) error {
		return appCore.RefreshKnowledge(ctx, job.BotID)
	})

	httpServer := server.New(server.Config{App: appCore})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("onboarding server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
