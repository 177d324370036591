package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qs3c/dict_go_server/config"
	"github.com/qs3c/dict_go_server/internal/admin"
	"github.com/qs3c/dict_go_server/internal/api"
	"github.com/qs3c/dict_go_server/internal/api/handler"
	"github.com/qs3c/dict_go_server/internal/database"
	"github.com/qs3c/dict_go_server/internal/pkg/cache"
	"github.com/qs3c/dict_go_server/internal/pkg/cron"
	"github.com/qs3c/dict_go_server/internal/pkg/logger"
	"github.com/qs3c/dict_go_server/internal/pkg/pubsub"
	"github.com/qs3c/dict_go_server/internal/pkg/queue"
	"github.com/qs3c/dict_go_server/internal/repository"
	"github.com/qs3c/dict_go_server/internal/service"
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

	// 初始化数据库
	db, err := database.Open(&cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect database", "error", err)
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Fatal("failed to migrate database", "error", err)
		}
	}
	logger.Info("database connected", "driver", cfg.Database.Driver)

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		logger.Fatal("failed to connect redis", "error", err)
	}
	defer rdb.Close()
	logger.Info("redis connected")

	// 初始化 Repository
	accountRepo := repository.NewAccountRepository(db)
	entryRepo := repository.NewEntryRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	relationRepo := repository.NewRelationRepository(db)
	verificationRepo := repository.NewVerificationRepository(db)

	publisher := pubsub.NewPublisher(rdb)
	mailQueue := queue.NewQueue(rdb, cfg.Queue.MailQueue)

	// 初始化 Service
	verificationService := service.NewVerificationService(verificationRepo, accountRepo, cfg)
	verificationService.SetMailQueue(mailQueue)
	verificationService.SetPublisher(publisher)

	accountService := service.NewAccountService(accountRepo, entryRepo, verificationRepo, cfg)
	accountService.SetPublisher(publisher)
	accountService.SetVerification(verificationService)
	if ttl := cfg.Account.StatsCacheTTL(); ttl > 0 {
		accountService.SetStatsCache(cache.NewStatsCache(rdb, ttl))
	}

	socialService := service.NewSocialService(relationRepo, accountRepo, entryRepo, categoryRepo)

	// 定时清理过期验证令牌
	cronService := cron.NewService(verificationService, cfg.Cron.TokenSweepInterval())
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Router
	registry := admin.NewDefaultRegistry(db, accountService, socialService)
	router := api.NewRouter(handler.NewAdminHandler(registry, accountService, cfg.JWT), accountService, cfg)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router.Setup(),
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}
