package model

import (
	"time"
)

// 以下均为多对多关系的连接表，增删都按集合语义处理

// AccountFollowing account 关注 following（单向）
type AccountFollowing struct {
	AccountID   int64     `gorm:"primaryKey;autoIncrement:false" json:"account_id"`
	FollowingID int64     `gorm:"primaryKey;autoIncrement:false;index" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (AccountFollowing) TableName() string {
	return "account_following"
}

// AccountBlock account 屏蔽 blocked（单向）
type AccountBlock struct {
	AccountID int64     `gorm:"primaryKey;autoIncrement:false" json:"account_id"`
	BlockedID int64     `gorm:"primaryKey;autoIncrement:false;index" json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (AccountBlock) TableName() string {
	return "account_blocked"
}

// FavoriteEntry 收藏
type FavoriteEntry struct {
	AccountID int64     `gorm:"primaryKey;autoIncrement:false" json:"account_id"`
	EntryID   int64     `gorm:"primaryKey;autoIncrement:false;index" json:"entry_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (FavoriteEntry) TableName() string {
	return "account_favorite_entries"
}

// EntryVote 赞/踩合并为一行，方向互斥
type EntryVote struct {
	AccountID int64         `gorm:"primaryKey;autoIncrement:false" json:"account_id"`
	EntryID   int64         `gorm:"primaryKey;autoIncrement:false;index" json:"entry_id"`
	Direction VoteDirection `gorm:"not null" json:"direction"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (EntryVote) TableName() string {
	return "entry_votes"
}

// CategoryFollowing 频道订阅
type CategoryFollowing struct {
	AccountID  int64     `gorm:"primaryKey;autoIncrement:false" json:"account_id"`
	CategoryID int64     `gorm:"primaryKey;autoIncrement:false;index" json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (CategoryFollowing) TableName() string {
	return "account_following_categories"
}

// AllModels AutoMigrate 使用的全部模型，顺序即建表顺序
func AllModels() []interface{} {
	return []interface{}{
		&Category{},
		&Entry{},
		&Account{},
		&Memento{},
		&VerificationToken{},
		&AccountFollowing{},
		&AccountBlock{},
		&FavoriteEntry{},
		&EntryVote{},
		&CategoryFollowing{},
	}
}
