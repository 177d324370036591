package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/qs3c/dict_go_server/internal/model"
)

type MementoRepository struct {
	db *gorm.DB
}

func NewMementoRepository(db *gorm.DB) *MementoRepository {
	return &MementoRepository{db: db}
}

// Upsert 写入 (holder, patient) 的备注：先尝试插入，唯一约束冲突时改为更新正文
func (r *MementoRepository) Upsert(holderID, patientID int64, body *string) (*model.Memento, error) {
	memento := &model.Memento{HolderID: holderID, PatientID: patientID, Body: body}

	err := r.db.Create(memento).Error
	if err == nil {
		return memento, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, err
	}

	err = r.db.Model(&model.Memento{}).
		Where("holder_id = ? AND patient_id = ?", holderID, patientID).
		Update("body", body).Error
	if err != nil {
		return nil, err
	}
	return r.GetByPair(holderID, patientID)
}

// GetByPair 至多一条
func (r *MementoRepository) GetByPair(holderID, patientID int64) (*model.Memento, error) {
	var memento model.Memento
	err := r.db.Where("holder_id = ? AND patient_id = ?", holderID, patientID).First(&memento).Error
	if err != nil {
		return nil, err
	}
	return &memento, nil
}

func (r *MementoRepository) DeleteByPair(holderID, patientID int64) error {
	result := r.db.Where("holder_id = ? AND patient_id = ?", holderID, patientID).Delete(&model.Memento{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByHolder holder 写过的全部备注
func (r *MementoRepository) ListByHolder(holderID int64) ([]*model.Memento, error) {
	var mementos []*model.Memento
	err := r.db.Where("holder_id = ?", holderID).Order("updated_at DESC, id DESC").Find(&mementos).Error
	return mementos, err
}

func (r *MementoRepository) CountByPair(holderID, patientID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Memento{}).
		Where("holder_id = ? AND patient_id = ?", holderID, patientID).
		Count(&count).Error
	return count, err
}
