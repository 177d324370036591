package model

import (
	"time"
)

// VerificationToken 邮箱验证令牌，每个账号同一时刻只保留一行
type VerificationToken struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	AccountID      int64     `gorm:"not null;uniqueIndex" json:"account_id"`
	Token          string    `gorm:"size:128;not null;index" json:"-"`
	NewEmail       *string   `gorm:"size:254" json:"new_email,omitempty"`
	ExpirationDate time.Time `gorm:"not null;index" json:"expiration_date"`

	Account *Account `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"-"`
}

func (VerificationToken) TableName() string {
	return "verification_tokens"
}

// IsEmailChange 令牌携带新邮箱时表示修改邮箱，否则为注册验证
func (t *VerificationToken) IsEmailChange() bool {
	return t.NewEmail != nil && *t.NewEmail != ""
}

// IsFresh expiration_date 落在 now-window 之内即为有效
func (t *VerificationToken) IsFresh(now time.Time, window time.Duration) bool {
	return !t.ExpirationDate.Before(now.Add(-window))
}
