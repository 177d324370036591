package dto

import (
	"time"

	"github.com/qs3c/dict_go_server/internal/model"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Nick      string       `json:"nick" validate:"required,max=50,nick"`
	Email     string       `json:"email" validate:"required,email,max=254"`
	Password  string       `json:"password" validate:"required,min=8,max=128"`
	BirthDate *time.Time   `json:"birth_date,omitempty"`
	Gender    model.Gender `json:"gender,omitempty" validate:"omitempty,gender"`
}

// UpdateProfileRequest 更新资料
type UpdateProfileRequest struct {
	BirthDate *time.Time    `json:"birth_date,omitempty"`
	Gender    *model.Gender `json:"gender,omitempty" validate:"omitempty,gender"`
}

// UpdatePreferencesRequest 更新偏好，nil 表示不修改
type UpdatePreferencesRequest struct {
	EntriesPerPage    *int                     `json:"entries_per_page,omitempty" validate:"omitempty,entries_per_page"`
	TopicsPerPage     *int                     `json:"topics_per_page,omitempty" validate:"omitempty,topics_per_page"`
	MessagePreference *model.MessagePreference `json:"message_preference,omitempty" validate:"omitempty,message_preference"`
}

// ChangeEmailRequest 申请修改邮箱
type ChangeEmailRequest struct {
	NewEmail string `json:"new_email" validate:"required,email,max=254"`
}

// AccountStats 账号的派生统计，全部只统计已发布条目
type AccountStats struct {
	EntryCount      int64      `json:"entry_count"`
	EntryCountMonth int64      `json:"entry_count_month"`
	EntryCountWeek  int64      `json:"entry_count_week"`
	EntryCountDay   int64      `json:"entry_count_day"`
	LastEntryDate   *time.Time `json:"last_entry_date"`
	EntryNiceID     *int64     `json:"entry_nice_id"`
	FollowerCount   int        `json:"follower_count"`
	EmailConfirmed  bool       `json:"email_confirmed"`
}
