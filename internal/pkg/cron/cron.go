package cron

import (
	"sync"
	"time"

	"github.com/qs3c/dict_go_server/internal/pkg/logger"
)

// TokenSweeper 清理过期验证令牌
type TokenSweeper interface {
	SweepStale(dryRun bool) (int64, error)
}

type Service struct {
	sweeper  TokenSweeper
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewService(sweeper TokenSweeper, interval time.Duration) *Service {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Service{
		sweeper:  sweeper,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runTokenSweep()
	logger.Info("cron service started", "token_sweep_interval", s.interval.String())
}

// Stop 停止定时任务，可重复调用
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		logger.Info("cron service stopped")
	})
}

// runTokenSweep 按间隔清理过期令牌
func (s *Service) runTokenSweep() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			if _, err := s.RunNow(); err != nil {
				logger.WorkerLog("cron", "token_sweep", err)
			}
		}
	}
}

// RunNow 立即执行一次清理（用于测试或手动触发）
func (s *Service) RunNow() (int64, error) {
	if s.sweeper == nil {
		return 0, nil
	}

	n, err := s.sweeper.SweepStale(false)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Info("stale verification tokens removed", "count", n)
	}
	return n, nil
}
