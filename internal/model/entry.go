package model

import (
	"time"
)

// NiceEntryThreshold entry_nice 的最低评分，必须严格大于该值
const NiceEntryThreshold = 1.0

type Entry struct {
	ID          int64      `gorm:"primaryKey" json:"id"`
	TopicID     int64      `gorm:"index" json:"topic_id"`
	AuthorID    int64      `gorm:"not null;index" json:"author_id"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	IsDraft     bool       `gorm:"not null;index" json:"is_draft"`
	VoteRate    float64    `gorm:"type:decimal(7,2);not null;default:0;index" json:"vote_rate"`
	DateCreated time.Time  `gorm:"autoCreateTime;index" json:"date_created"`
	DateEdited  *time.Time `json:"date_edited,omitempty"`
}

func (Entry) TableName() string {
	return "entries"
}
