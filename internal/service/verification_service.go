package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/dict_go_server/config"
	"github.com/qs3c/dict_go_server/internal/model"
	"github.com/qs3c/dict_go_server/internal/model/dto"
	"github.com/qs3c/dict_go_server/internal/pkg/logger"
	"github.com/qs3c/dict_go_server/internal/pkg/pubsub"
	"github.com/qs3c/dict_go_server/internal/pkg/queue"
	"github.com/qs3c/dict_go_server/internal/repository"
	"github.com/qs3c/dict_go_server/internal/validator"
)

// 令牌长度（hex 字符数）
const tokenLength = 64

// MailQueue 验证邮件投递队列
type MailQueue interface {
	Push(ctx context.Context, msg *queue.MailMessage) error
}

type VerificationService struct {
	verificationRepo *repository.VerificationRepository
	accountRepo      *repository.AccountRepository
	validator        *validator.Validator
	cfg              *config.Config
	mailQueue        MailQueue
	events           EventPublisher
	now              func() time.Time
}

func NewVerificationService(
	verificationRepo *repository.VerificationRepository,
	accountRepo *repository.AccountRepository,
	cfg *config.Config,
) *VerificationService {
	return &VerificationService{
		verificationRepo: verificationRepo,
		accountRepo:      accountRepo,
		validator:        validator.New(),
		cfg:              cfg,
		now:              time.Now,
	}
}

// SetMailQueue 签发后投递验证邮件
func (s *VerificationService) SetMailQueue(q MailQueue) {
	s.mailQueue = q
}

func (s *VerificationService) SetPublisher(p EventPublisher) {
	s.events = p
}

// SetClock 替换时间来源（测试用）
func (s *VerificationService) SetClock(now func() time.Time) {
	s.now = now
}

// IssueRegistration 签发注册验证令牌，旧令牌一并作废
func (s *VerificationService) IssueRegistration(ctx context.Context, account *model.Account) (*model.VerificationToken, error) {
	vt, err := s.issue(account.ID, nil)
	if err != nil {
		return nil, err
	}

	err = s.enqueue(ctx, &queue.MailMessage{
		Kind:      queue.MailRegistrationConfirm,
		AccountID: account.ID,
		To:        account.Email,
		Nick:      account.Nick,
		Token:     vt.Token,
	})
	return vt, err
}

// RequestEmailChange 签发修改邮箱令牌，验证邮件发往新邮箱
func (s *VerificationService) RequestEmailChange(ctx context.Context, accountID int64, req *dto.ChangeEmailRequest) (*model.VerificationToken, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	account, err := notFoundAs(s.accountRepo.GetByID(accountID))
	if err != nil {
		return nil, err
	}

	exists, err := s.accountRepo.ExistsByEmail(req.NewEmail)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	newEmail := req.NewEmail
	vt, err := s.issue(account.ID, &newEmail)
	if err != nil {
		return nil, err
	}

	err = s.enqueue(ctx, &queue.MailMessage{
		Kind:      queue.MailEmailChangeConfirm,
		AccountID: account.ID,
		To:        newEmail,
		Nick:      account.Nick,
		Token:     vt.Token,
	})
	return vt, err
}

// issue expiration_date 记为签发时间，有效期由 VerificationWindow 决定
func (s *VerificationService) issue(accountID int64, newEmail *string) (*model.VerificationToken, error) {
	token, err := generateToken(tokenLength)
	if err != nil {
		return nil, err
	}

	vt := &model.VerificationToken{
		AccountID:      accountID,
		Token:          token,
		NewEmail:       newEmail,
		ExpirationDate: s.now(),
	}
	if err := s.verificationRepo.Replace(vt); err != nil {
		return nil, err
	}
	return vt, nil
}

func (s *VerificationService) enqueue(ctx context.Context, msg *queue.MailMessage) error {
	if s.mailQueue == nil {
		return nil
	}
	return s.mailQueue.Push(ctx, msg)
}

// Confirm 使用令牌：注册令牌激活账号，改邮箱令牌替换邮箱，成功后删除令牌
func (s *VerificationService) Confirm(ctx context.Context, token string) (*model.Account, error) {
	vt, err := s.verificationRepo.GetByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	if !vt.IsFresh(s.now(), s.cfg.Account.VerificationWindow()) {
		return nil, ErrTokenExpired
	}

	fields := map[string]interface{}{}
	event := pubsub.EventEmailConfirmed
	if vt.IsEmailChange() {
		exists, err := s.accountRepo.ExistsByEmail(*vt.NewEmail)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailTaken
		}
		fields["email"] = *vt.NewEmail
		event = pubsub.EventEmailChanged
	} else {
		fields["is_active"] = true
	}

	if err := s.verificationRepo.Consume(vt, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	account, err := notFoundAs(s.accountRepo.GetByID(vt.AccountID))
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("verification token consumed", "account", account.String(), "event", event)
	if s.events != nil {
		err := s.events.PublishAccountEvent(ctx, &pubsub.AccountEvent{
			Type:       event,
			AccountID:  account.ID,
			Nick:       account.Nick,
			OccurredAt: s.now(),
		})
		if err != nil {
			logger.FromContext(ctx).Warn("publish account event failed", "type", event, "error", err)
		}
	}

	return account, nil
}

// SweepStale 清理已超出有效期的令牌，dryRun 时只统计
func (s *VerificationService) SweepStale(dryRun bool) (int64, error) {
	before := s.now().Add(-s.cfg.Account.VerificationWindow())
	if dryRun {
		return s.verificationRepo.CountStale(before)
	}
	return s.verificationRepo.DeleteStale(before)
}

func generateToken(length int) (string, error) {
	bytes := make([]byte, length/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
