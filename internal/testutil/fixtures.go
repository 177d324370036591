package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/dict_go_server/internal/model"
)

var seq int64

// uniqueLetters 生成只含小写字母的唯一后缀，满足昵称格式
func uniqueLetters() string {
	n := atomic.AddInt64(&seq, 1)
	var b []byte
	for {
		b = append([]byte{byte('a' + n%26)}, b...)
		n /= 26
		if n == 0 {
			break
		}
	}
	return string(b)
}

// TestAccount 创建测试账号，默认是待审核的新手
func TestAccount(t *testing.T, db *gorm.DB, opts ...func(*model.Account)) *model.Account {
	t.Helper()

	suffix := uniqueLetters()
	account := model.NewAccount("test "+suffix, fmt.Sprintf("test_%s@example.com", suffix))
	account.PasswordHash = "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder

	for _, opt := range opts {
		opt(account)
	}

	if err := db.Create(account).Error; err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}

	return account
}

// WithNick 设置昵称
func WithNick(nick string) func(*model.Account) {
	return func(a *model.Account) {
		a.Nick = nick
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.Account) {
	return func(a *model.Account) {
		a.Email = email
	}
}

// WithAuthor 已转正的作者
func WithAuthor() func(*model.Account) {
	return func(a *model.Account) {
		a.IsNovice = false
		a.IsActive = true
		a.ApplicationStatus = model.StatusApproved
	}
}

// WithActive 设置激活状态
func WithActive(active bool) func(*model.Account) {
	return func(a *model.Account) {
		a.IsActive = active
	}
}

// WithStatus 设置申请状态
func WithStatus(status model.ApplicationStatus) func(*model.Account) {
	return func(a *model.Account) {
		a.ApplicationStatus = status
	}
}

// WithStaff 管理员，可激活用户
func WithStaff() func(*model.Account) {
	return func(a *model.Account) {
		a.IsStaff = true
		a.CanActivateUser = true
	}
}

// WithMessagePreference 设置私信偏好
func WithMessagePreference(pref model.MessagePreference) func(*model.Account) {
	return func(a *model.Account) {
		a.MessagePreference = pref
	}
}

// TestCategory 创建测试频道
func TestCategory(t *testing.T, db *gorm.DB, name string) *model.Category {
	t.Helper()

	category := &model.Category{
		Name: name,
		Slug: fmt.Sprintf("%s-%s", name, uniqueLetters()),
	}

	if err := db.Create(category).Error; err != nil {
		t.Fatalf("Failed to create test category: %v", err)
	}

	return category
}

// TestEntry 创建测试条目，默认已发布
func TestEntry(t *testing.T, db *gorm.DB, authorID int64, opts ...func(*model.Entry)) *model.Entry {
	t.Helper()

	entry := &model.Entry{
		AuthorID: authorID,
		Content:  fmt.Sprintf("entry %s", uniqueLetters()),
	}

	for _, opt := range opts {
		opt(entry)
	}

	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("Failed to create test entry: %v", err)
	}

	return entry
}

// WithDraft 设置为草稿
func WithDraft() func(*model.Entry) {
	return func(e *model.Entry) {
		e.IsDraft = true
	}
}

// WithVoteRate 设置评分
func WithVoteRate(rate float64) func(*model.Entry) {
	return func(e *model.Entry) {
		e.VoteRate = rate
	}
}

// WithCreatedAt 设置发布时间
func WithCreatedAt(at time.Time) func(*model.Entry) {
	return func(e *model.Entry) {
		e.DateCreated = at
	}
}

// TestMemento 创建测试备注
func TestMemento(t *testing.T, db *gorm.DB, holderID, patientID int64, body string) *model.Memento {
	t.Helper()

	memento := &model.Memento{
		HolderID:  holderID,
		PatientID: patientID,
		Body:      &body,
	}

	if err := db.Create(memento).Error; err != nil {
		t.Fatalf("Failed to create test memento: %v", err)
	}

	return memento
}

// TestToken 创建测试验证令牌
func TestToken(t *testing.T, db *gorm.DB, accountID int64, issuedAt time.Time) *model.VerificationToken {
	t.Helper()

	token := &model.VerificationToken{
		AccountID:      accountID,
		Token:          fmt.Sprintf("token-%s", uniqueLetters()),
		ExpirationDate: issuedAt,
	}

	if err := db.Create(token).Error; err != nil {
		t.Fatalf("Failed to create test token: %v", err)
	}

	return token
}
