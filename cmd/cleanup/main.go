package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/qs3c/dict_go_server/config"
	"github.com/qs3c/dict_go_server/internal/database"
	"github.com/qs3c/dict_go_server/internal/pkg/logger"
	"github.com/qs3c/dict_go_server/internal/repository"
	"github.com/qs3c/dict_go_server/internal/service"
)

var dryRun = flag.Bool("dry-run", true, "Dry run mode, only count stale tokens")

func main() {
	flag.Parse()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log.Env)

	db, err := database.Open(&cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect database", "error", err)
	}

	verification := service.NewVerificationService(
		repository.NewVerificationRepository(db),
		repository.NewAccountRepository(db),
		cfg,
	)

	n, err := verification.SweepStale(*dryRun)
	if err != nil {
		logger.Fatal("token sweep failed", "error", err)
	}

	if *dryRun {
		logger.Info("dry run: stale verification tokens found", "count", n)
		return
	}
	logger.Info("stale verification tokens removed", "count", n)
}
