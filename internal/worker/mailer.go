package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/qs3c/dict_go_server/internal/pkg/logger"
	"github.com/qs3c/dict_go_server/internal/pkg/queue"
)

// MailSource 邮件任务来源
type MailSource interface {
	Pop(ctx context.Context, timeout time.Duration) (*queue.MailMessage, error)
}

// MailSender 实际投递邮件
type MailSender interface {
	SendRegistrationConfirm(to, nick, token string) error
	SendEmailChangeConfirm(to, nick, token string) error
}

// Mailer 消费邮件队列并投递验证邮件
type Mailer struct {
	source      MailSource
	sender      MailSender
	workers     int
	pollTimeout time.Duration
}

func NewMailer(source MailSource, sender MailSender, workers int) *Mailer {
	if workers <= 0 {
		workers = 1
	}
	return &Mailer{
		source:      source,
		sender:      sender,
		workers:     workers,
		pollTimeout: 5 * time.Second,
	}
}

// Process 投递单封邮件
func (m *Mailer) Process(msg *queue.MailMessage) error {
	switch msg.Kind {
	case queue.MailRegistrationConfirm:
		return m.sender.SendRegistrationConfirm(msg.To, msg.Nick, msg.Token)
	case queue.MailEmailChangeConfirm:
		return m.sender.SendEmailChangeConfirm(msg.To, msg.Nick, msg.Token)
	default:
		return fmt.Errorf("unknown mail kind: %q", msg.Kind)
	}
}

// Run 启动 workers 个消费协程，ctx 取消后等待全部退出
func (m *Mailer) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < m.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			m.loop(ctx, workerID)
		}(i)
	}
	wg.Wait()
}

func (m *Mailer) loop(ctx context.Context, workerID int) {
	log := logger.With("worker", "mailer", "worker_id", workerID)
	for {
		select {
		case <-ctx.Done():
			log.Info("mail worker shutting down")
			return
		default:
		}

		msg, err := m.source.Pop(ctx, m.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("failed to pop mail", "error", err)
			continue
		}
		if msg == nil {
			continue
		}

		if err := m.Process(msg); err != nil {
			log.Error("mail delivery failed", "kind", msg.Kind, "account_id", msg.AccountID, "error", err)
			continue
		}
		log.Info("mail delivered", "kind", msg.Kind, "account_id", msg.AccountID)
	}
}
