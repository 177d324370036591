package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/qs3c/dict_go_server/config"
	"github.com/qs3c/dict_go_server/internal/database"
	"github.com/qs3c/dict_go_server/internal/pkg/email"
	"github.com/qs3c/dict_go_server/internal/pkg/logger"
	"github.com/qs3c/dict_go_server/internal/pkg/pubsub"
	"github.com/qs3c/dict_go_server/internal/pkg/queue"
	"github.com/qs3c/dict_go_server/internal/worker"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log.Env)

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		logger.Fatal("failed to connect redis", "error", err)
	}
	defer rdb.Close()
	logger.Info("redis connected")

	mailQueue := queue.NewQueue(rdb, cfg.Queue.MailQueue)
	mailer := worker.NewMailer(mailQueue, email.NewService(&cfg.Email, cfg.Server.SiteURL), cfg.Queue.MaxWorkers)

	// 创建 context 用于优雅关闭
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal")
		cancel()
	}()

	// 账号事件只做审计日志
	go func() {
		err := pubsub.NewSubscriber(rdb).Subscribe(ctx, func(event *pubsub.AccountEvent) {
			logger.Info("account event",
				"type", event.Type,
				"account_id", event.AccountID,
				"operator_id", event.OperatorID,
				"occurred_at", event.OccurredAt,
			)
		})
		if err != nil && ctx.Err() == nil {
			logger.Error("account event subscription stopped", "error", err)
		}
	}()

	logger.Info("worker started", "max_workers", cfg.Queue.MaxWorkers)
	mailer.Run(ctx)
	logger.Info("worker shutdown complete")
}
