package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/qs3c/dict_go_server/config"
	"github.com/qs3c/dict_go_server/internal/model"
	"github.com/qs3c/dict_go_server/internal/model/dto"
	"github.com/qs3c/dict_go_server/internal/pkg/cache"
	"github.com/qs3c/dict_go_server/internal/pkg/logger"
	"github.com/qs3c/dict_go_server/internal/pkg/pubsub"
	"github.com/qs3c/dict_go_server/internal/repository"
	"github.com/qs3c/dict_go_server/internal/validator"
)

// EventPublisher 账号事件的发布端
type EventPublisher interface {
	PublishAccountEvent(ctx context.Context, event *pubsub.AccountEvent) error
}

type AccountService struct {
	accountRepo      *repository.AccountRepository
	entryRepo        *repository.EntryRepository
	verificationRepo *repository.VerificationRepository
	validator        *validator.Validator
	cfg              *config.Config
	statsCache       *cache.StatsCache
	events           EventPublisher
	verification     *VerificationService
	now              func() time.Time
}

func NewAccountService(
	accountRepo *repository.AccountRepository,
	entryRepo *repository.EntryRepository,
	verificationRepo *repository.VerificationRepository,
	cfg *config.Config,
) *AccountService {
	return &AccountService{
		accountRepo:      accountRepo,
		entryRepo:        entryRepo,
		verificationRepo: verificationRepo,
		validator:        validator.New(),
		cfg:              cfg,
		now:              time.Now,
	}
}

// SetStatsCache 开启统计缓存
func (s *AccountService) SetStatsCache(c *cache.StatsCache) {
	s.statsCache = c
}

// SetPublisher 开启账号事件发布
func (s *AccountService) SetPublisher(p EventPublisher) {
	s.events = p
}

// SetVerification 注册后自动签发验证令牌
func (s *AccountService) SetVerification(v *VerificationService) {
	s.verification = v
}

// SetClock 替换时间来源（测试用）
func (s *AccountService) SetClock(now func() time.Time) {
	s.now = now
}

// Register 注册账号：建号与频道订阅初始化在同一个事务内完成
func (s *AccountService) Register(ctx context.Context, req *dto.RegisterRequest) (*model.Account, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	// 检查昵称是否存在
	exists, err := s.accountRepo.ExistsByNick(req.Nick)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrNickTaken
	}

	// 检查邮箱是否存在
	exists, err = s.accountRepo.ExistsByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	// 加密密码
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account := model.NewAccount(req.Nick, req.Email)
	account.PasswordHash = string(hashedPassword)
	if req.Gender != "" {
		account.Gender = req.Gender
	}
	if req.BirthDate != nil {
		d := datatypes.Date(*req.BirthDate)
		account.BirthDate = &d
	}

	err = s.accountRepo.Transaction(func(repo *repository.AccountRepository) error {
		if err := repo.Create(account); err != nil {
			return err
		}
		_, err := repo.BootstrapCategories(account.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.conflictError(req.Nick)
		}
		return nil, err
	}

	logger.FromContext(ctx).Info("account registered", "account", account.String())
	s.publish(ctx, &pubsub.AccountEvent{Type: pubsub.EventRegistered, AccountID: account.ID, Nick: account.Nick})

	if s.verification != nil {
		if _, err := s.verification.IssueRegistration(ctx, account); err != nil {
			logger.FromContext(ctx).Error("issue registration token failed", "account", account.String(), "error", err)
		}
	}

	return account, nil
}

// conflictError 并发注册撞上唯一索引时，判断是哪个字段冲突
func (s *AccountService) conflictError(nick string) error {
	if exists, err := s.accountRepo.ExistsByNick(nick); err == nil && exists {
		return ErrNickTaken
	}
	return ErrEmailTaken
}

// CheckPassword 校验邮箱与密码
func (s *AccountService) CheckPassword(email, password string) (*model.Account, error) {
	account, err := s.accountRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if account.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if account.IsBanned(s.now()) {
		return nil, ErrAccountBanned
	}
	return account, nil
}

// GetByID 获取账号
func (s *AccountService) GetByID(id int64) (*model.Account, error) {
	return notFoundAs(s.accountRepo.GetByID(id))
}

// GetByNick 按昵称查找
func (s *AccountService) GetByNick(nick string) (*model.Account, error) {
	return notFoundAs(s.accountRepo.GetByNick(nick))
}

// GetByEmail 按邮箱查找
func (s *AccountService) GetByEmail(email string) (*model.Account, error) {
	return notFoundAs(s.accountRepo.GetByEmail(email))
}

func notFoundAs(account *model.Account, err error) (*model.Account, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// UpdateProfile 更新资料，保存不会重新初始化频道订阅
func (s *AccountService) UpdateProfile(id int64, req *dto.UpdateProfileRequest) (*model.Account, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	account, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Gender != nil {
		account.Gender = *req.Gender
	}
	if req.BirthDate != nil {
		d := datatypes.Date(*req.BirthDate)
		account.BirthDate = &d
	}

	if err := s.accountRepo.Update(account); err != nil {
		return nil, err
	}
	return account, nil
}

// UpdatePreferences 更新分页与私信偏好
func (s *AccountService) UpdatePreferences(id int64, req *dto.UpdatePreferencesRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	fields := make(map[string]interface{})
	if req.EntriesPerPage != nil {
		fields["entries_per_page"] = *req.EntriesPerPage
	}
	if req.TopicsPerPage != nil {
		fields["topics_per_page"] = *req.TopicsPerPage
	}
	if req.MessagePreference != nil {
		fields["message_preference"] = *req.MessagePreference
	}
	if len(fields) == 0 {
		return nil
	}

	if err := s.accountRepo.UpdateFields(id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	return nil
}

// HoldApplication pending -> on-hold，记录申请时间
func (s *AccountService) HoldApplication(id int64) (*model.Account, error) {
	account, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !account.ApplicationStatus.CanAdvanceTo(model.StatusOnHold) {
		return nil, ErrInvalidTransition
	}

	now := s.now()
	err = s.accountRepo.UpdateFields(id, map[string]interface{}{
		"application_status": model.StatusOnHold,
		"application_date":   now,
	})
	if err != nil {
		return nil, err
	}

	account.ApplicationStatus = model.StatusOnHold
	account.ApplicationDate = &now
	return account, nil
}

// Activate 由拥有 can_activate_user 权限的操作者把新手转为作者
func (s *AccountService) Activate(ctx context.Context, operatorID, accountID int64) (*model.Account, error) {
	operator, err := s.GetByID(operatorID)
	if err != nil {
		return nil, err
	}
	if !operator.CanActivateUser {
		return nil, ErrPermissionDenied
	}

	account, err := s.GetByID(accountID)
	if err != nil {
		return nil, err
	}

	// 只有 on-hold 可以被激活
	if account.ApplicationStatus != model.StatusOnHold {
		return nil, ErrInvalidTransition
	}

	err = s.accountRepo.UpdateFields(accountID, map[string]interface{}{
		"application_status": model.StatusApproved,
		"is_novice":          false,
		"is_active":          true,
	})
	if err != nil {
		return nil, err
	}

	account.ApplicationStatus = model.StatusApproved
	account.IsNovice = false
	account.IsActive = true

	logger.FromContext(ctx).Info("account activated", "account", account.String(), "operator", operator.String())
	s.publish(ctx, &pubsub.AccountEvent{
		Type:       pubsub.EventActivated,
		AccountID:  account.ID,
		Nick:       account.Nick,
		OperatorID: operator.ID,
	})

	return account, nil
}

// Ban 封禁到 until，与申请状态无关
func (s *AccountService) Ban(id int64, until time.Time) error {
	if !until.After(s.now()) {
		return ErrInvalidTransition
	}
	return s.updateOrNotFound(id, map[string]interface{}{"banned_until": until})
}

// Unban 解除封禁
func (s *AccountService) Unban(id int64) error {
	return s.updateOrNotFound(id, map[string]interface{}{"banned_until": nil})
}

// IsBanned 当前是否处于封禁期
func (s *AccountService) IsBanned(id int64) (bool, error) {
	account, err := s.GetByID(id)
	if err != nil {
		return false, err
	}
	return account.IsBanned(s.now()), nil
}

// TouchActivity 刷新最后活跃时间
func (s *AccountService) TouchActivity(id int64) error {
	return s.accountRepo.TouchActivity(id, s.now())
}

func (s *AccountService) updateOrNotFound(id int64, fields map[string]interface{}) error {
	if err := s.accountRepo.UpdateFields(id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	return nil
}

// Delete 删除账号，备注、令牌和各类关系随之删除
func (s *AccountService) Delete(ctx context.Context, id int64) error {
	if err := s.accountRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	s.invalidateStats(ctx, id)
	logger.FromContext(ctx).Info("account deleted", "account_id", id)
	s.publish(ctx, &pubsub.AccountEvent{Type: pubsub.EventDeleted, AccountID: id})
	return nil
}

// ListNovices 新手队列
func (s *AccountService) ListNovices(status model.ApplicationStatus, page, pageSize int) ([]*model.Account, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}
	return s.accountRepo.ListNovices(status, page, pageSize)
}

// Followers 关注了该账号的所有账号
func (s *AccountService) Followers(id int64) ([]*model.Account, error) {
	return s.accountRepo.ListFollowers(id)
}

// EntryCount 已发布条目数
func (s *AccountService) EntryCount(id int64) (int64, error) {
	return s.entryRepo.CountPublished(id)
}

// EntryCountWithin 最近 window 内的已发布条目数，区间为 now-window <= date_created
func (s *AccountService) EntryCountWithin(id int64, window time.Duration) (int64, error) {
	return s.entryRepo.CountPublishedSince(id, s.now().Add(-window))
}

// LastEntryDate 最近一次发布时间，从未发布时返回 nil
func (s *AccountService) LastEntryDate(id int64) (*time.Time, error) {
	entry, err := s.entryRepo.LatestPublished(id)
	if err != nil || entry == nil {
		return nil, err
	}
	return &entry.DateCreated, nil
}

// EntryNice 评分最高的条目，评分不超过阈值时返回 nil
func (s *AccountService) EntryNice(id int64) (*model.Entry, error) {
	entry, err := s.entryRepo.BestPublished(id)
	if err != nil || entry == nil {
		return nil, err
	}
	if entry.VoteRate > model.NiceEntryThreshold {
		return entry, nil
	}
	return nil, nil
}

// EmailConfirmed 只有存在仍在有效期内的令牌时才视为未验证
func (s *AccountService) EmailConfirmed(id int64) (bool, error) {
	since := s.now().Add(-s.cfg.Account.VerificationWindow())
	pending, err := s.verificationRepo.HasFreshToken(id, since)
	if err != nil {
		return false, err
	}
	return !pending, nil
}

// Stats 汇总派生统计；条目相关部分可走缓存，邮箱状态每次实时计算
func (s *AccountService) Stats(ctx context.Context, id int64) (*dto.AccountStats, error) {
	if _, err := s.GetByID(id); err != nil {
		return nil, err
	}

	stats := &dto.AccountStats{}
	hit := false
	if s.statsCache != nil {
		var err error
		hit, err = s.statsCache.Get(ctx, id, stats)
		if err != nil {
			logger.FromContext(ctx).Warn("stats cache read failed", "account_id", id, "error", err)
			hit = false
		}
	}

	if !hit {
		computed, err := s.computeStats(id)
		if err != nil {
			return nil, err
		}
		stats = computed

		if s.statsCache != nil {
			if err := s.statsCache.Set(ctx, id, stats); err != nil {
				logger.FromContext(ctx).Warn("stats cache write failed", "account_id", id, "error", err)
			}
		}
	}

	confirmed, err := s.EmailConfirmed(id)
	if err != nil {
		return nil, err
	}
	stats.EmailConfirmed = confirmed

	return stats, nil
}

func (s *AccountService) computeStats(id int64) (*dto.AccountStats, error) {
	stats := &dto.AccountStats{}
	var err error

	if stats.EntryCount, err = s.EntryCount(id); err != nil {
		return nil, err
	}
	if stats.EntryCountMonth, err = s.EntryCountWithin(id, 30*24*time.Hour); err != nil {
		return nil, err
	}
	if stats.EntryCountWeek, err = s.EntryCountWithin(id, 7*24*time.Hour); err != nil {
		return nil, err
	}
	if stats.EntryCountDay, err = s.EntryCountWithin(id, 24*time.Hour); err != nil {
		return nil, err
	}
	if stats.LastEntryDate, err = s.LastEntryDate(id); err != nil {
		return nil, err
	}

	nice, err := s.EntryNice(id)
	if err != nil {
		return nil, err
	}
	if nice != nil {
		stats.EntryNiceID = &nice.ID
	}

	followers, err := s.Followers(id)
	if err != nil {
		return nil, err
	}
	stats.FollowerCount = len(followers)

	return stats, nil
}

func (s *AccountService) invalidateStats(ctx context.Context, id int64) {
	if s.statsCache == nil {
		return
	}
	if err := s.statsCache.Invalidate(ctx, id); err != nil {
		logger.FromContext(ctx).Warn("stats cache invalidate failed", "account_id", id, "error", err)
	}
}

// publish 事件发布失败只记录日志
func (s *AccountService) publish(ctx context.Context, event *pubsub.AccountEvent) {
	if s.events == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}
	if err := s.events.PublishAccountEvent(ctx, event); err != nil {
		logger.FromContext(ctx).Warn("publish account event failed", "type", event.Type, "account_id", event.AccountID, "error", err)
	}
}
