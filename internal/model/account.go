package model

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// MaxNickLength 昵称最大长度
const MaxNickLength = 50

type Account struct {
	ID                int64             `gorm:"primaryKey" json:"id"`
	Nick              string            `gorm:"column:username;size:50;uniqueIndex;not null" json:"nick"`
	Email             string            `gorm:"size:254;uniqueIndex;not null" json:"email"`
	PasswordHash      string            `gorm:"size:255" json:"-"`
	BirthDate         *datatypes.Date   `json:"birth_date,omitempty"`
	Gender            Gender            `gorm:"size:2;not null;default:NO" json:"gender"`
	IsNovice          bool              `gorm:"not null" json:"is_novice"`
	IsActive          bool              `gorm:"not null" json:"is_active"`
	IsStaff           bool              `gorm:"not null" json:"is_staff"`
	CanActivateUser   bool              `gorm:"not null" json:"can_activate_user"`
	ApplicationStatus ApplicationStatus `gorm:"size:2;not null;default:OH;index" json:"application_status"`
	ApplicationDate   *time.Time        `json:"application_date,omitempty"`
	LastActivity      *time.Time        `json:"last_activity,omitempty"`
	BannedUntil       *time.Time        `json:"banned_until,omitempty"`
	EntriesPerPage    int               `gorm:"not null;default:10" json:"entries_per_page"`
	TopicsPerPage     int               `gorm:"not null;default:50" json:"topics_per_page"`
	MessagePreference MessagePreference `gorm:"size:2;not null;default:AU" json:"message_preference"`
	PinnedEntryID     *int64            `gorm:"uniqueIndex" json:"pinned_entry_id,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`

	PinnedEntry *Entry `gorm:"foreignKey:PinnedEntryID;constraint:OnDelete:SET NULL" json:"-"`
}

func (Account) TableName() string {
	return "accounts"
}

// NewAccount 构造一个带默认偏好的新账号，尚未持久化
func NewAccount(nick, email string) *Account {
	return &Account{
		Nick:              nick,
		Email:             email,
		Gender:            GenderUnknown,
		IsNovice:          true,
		IsActive:          false,
		ApplicationStatus: StatusOnHold,
		EntriesPerPage:    DefaultEntriesPerPage,
		TopicsPerPage:     DefaultTopicsPerPage,
		MessagePreference: MessageAllUsers,
	}
}

func (a *Account) String() string {
	return fmt.Sprintf("%s:%d", a.Nick, a.ID)
}

// ProfilePath 用户主页路径
func (a *Account) ProfilePath() string {
	return "/biri/" + a.Nick + "/"
}

// IsBanned banned_until 在 now 之后即视为封禁中
func (a *Account) IsBanned(now time.Time) bool {
	return a.BannedUntil != nil && a.BannedUntil.After(now)
}

// IsAuthor 已转正的作者
func (a *Account) IsAuthor() bool {
	return !a.IsNovice && a.ApplicationStatus == StatusApproved
}
