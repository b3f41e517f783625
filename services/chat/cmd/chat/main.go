package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"smartbots/internal/ratelimit"
	"smartbots/internal/util"
	"smartbots/internal/widgettoken"
	"smartbots/pkg/assistant"
	"smartbots/services/chat/internal/app"
	"smartbots/services/chat/internal/config"
	"smartbots/services/chat/internal/server"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := util.InitLogger(cfg.LogLevel, "chat")

	client, err := assistant.NewClient(cfg.AssistantAPIKey, cfg.AssistantBaseURL)
	if err != nil {
		util.Fatal("failed to init assistant client", "err", err)
	}
	runner := assistant.NewRunner(client, assistant.RunnerConfig{})

	tokens, err := widgettoken.NewManager(cfg.WidgetTokenSecret, 0)
	if err != nil {
		util.Fatal("failed to init widget tokens", "err", err)
	}

	limit := cfg.RateLimitPerMin
	if limit <= 0 {
		limit = 30
	}
	limiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "smartbots:chat", limit, time.Minute)
	if err != nil {
		util.Fatal("failed to init rate limiter", "err", err)
	}

	appCore, err := app.New(app.Config{
		DatabaseURL: cfg.DatabaseURL,
		Runner:      runner,
		Tokens:      tokens,
		Limiter:     limiter,
	})
	if err != nil {
		util.Fatal("failed to init app", "err", err)
	}

	proxies, err := util.NewTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		util.Fatal("failed to parse trusted proxies", "err", err)
	}

	httpServer := server.New(server.Config{App: appCore, TrustedProxies: proxies})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("chat server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
