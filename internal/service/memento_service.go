package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/qs3c/dict_go_server/internal/model"
	"github.com/qs3c/dict_go_server/internal/repository"
)

type MementoService struct {
	mementoRepo *repository.MementoRepository
	accountRepo *repository.AccountRepository
}

func NewMementoService(mementoRepo *repository.MementoRepository, accountRepo *repository.AccountRepository) *MementoService {
	return &MementoService{
		mementoRepo: mementoRepo,
		accountRepo: accountRepo,
	}
}

// Save 写入 holder 对 patient 的备注，已存在时覆盖正文
func (s *MementoService) Save(holderID, patientID int64, body *string) (*model.Memento, error) {
	if _, err := notFoundAs(s.accountRepo.GetByID(patientID)); err != nil {
		return nil, err
	}
	return s.mementoRepo.Upsert(holderID, patientID, body)
}

// Get 返回 holder 对 patient 的备注，没有时返回 ErrMementoNotFound
func (s *MementoService) Get(holderID, patientID int64) (*model.Memento, error) {
	memento, err := s.mementoRepo.GetByPair(holderID, patientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMementoNotFound
		}
		return nil, err
	}
	return memento, nil
}

// Delete 删除备注
func (s *MementoService) Delete(holderID, patientID int64) error {
	err := s.mementoRepo.DeleteByPair(holderID, patientID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrMementoNotFound
	}
	return err
}

// List holder 写过的全部备注
func (s *MementoService) List(holderID int64) ([]*model.Memento, error) {
	return s.mementoRepo.ListByHolder(holderID)
}
