package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"smartbots/internal/util"
	"smartbots/pkg/assistant"
	"smartbots/services/whatsapp/internal/app"
	"smartbots/services/whatsapp/internal/config"
	"smartbots/services/whatsapp/internal/server"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := util.InitLogger(cfg.LogLevel, "whatsapp")

	client, err := assistant.NewClient(cfg.AssistantAPIKey, cfg.AssistantBaseURL)
	if err != nil {
		util.Fatal("failed to init assistant client", "err", err)
	}
	runner := assistant.NewRunner(client, assistant.RunnerConfig{})

	appCore, err := app.New(app.Config{
		DatabaseURL: cfg.DatabaseURL,
		Runner:      runner,
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

	slog.Info("whatsapp router listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
