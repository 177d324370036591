package model

import (
	"fmt"
	"time"
)

// Memento 用户对另一个用户的私人备注，每对 (holder, patient) 至多一条
type Memento struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Body      *string   `gorm:"type:text" json:"body"`
	HolderID  int64     `gorm:"not null;uniqueIndex:unique_memento,priority:1" json:"holder_id"`
	PatientID int64     `gorm:"not null;uniqueIndex:unique_memento,priority:2;index" json:"patient_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Holder  *Account `gorm:"foreignKey:HolderID;constraint:OnDelete:CASCADE" json:"-"`
	Patient *Account `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Memento) TableName() string {
	return "mementos"
}

func (m *Memento) String() string {
	return fmt.Sprintf("Memento#%d, from %d about %d", m.ID, m.HolderID, m.PatientID)
}
