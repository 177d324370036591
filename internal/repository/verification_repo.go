package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/dict_go_server/internal/model"
)

type VerificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// Replace 删除账号已有的全部令牌后写入新令牌，整个过程在一个事务内完成
func (r *VerificationRepository) Replace(token *model.VerificationToken) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", token.AccountID).Delete(&model.VerificationToken{}).Error; err != nil {
			return err
		}

		// 并发签发时依赖 account_id 唯一索引收敛为一行
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"token", "new_email", "expiration_date"}),
		}).Create(token).Error
	})
}

func (r *VerificationRepository) GetByToken(token string) (*model.VerificationToken, error) {
	var vt model.VerificationToken
	err := r.db.Where("token = ?", token).First(&vt).Error
	if err != nil {
		return nil, err
	}
	return &vt, nil
}

func (r *VerificationRepository) GetByAccountID(accountID int64) (*model.VerificationToken, error) {
	var vt model.VerificationToken
	err := r.db.Where("account_id = ?", accountID).First(&vt).Error
	if err != nil {
		return nil, err
	}
	return &vt, nil
}

func (r *VerificationRepository) CountByAccountID(accountID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.VerificationToken{}).Where("account_id = ?", accountID).Count(&count).Error
	return count, err
}

// HasFreshToken 是否存在 expiration_date >= since 的令牌
func (r *VerificationRepository) HasFreshToken(accountID int64, since time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&model.VerificationToken{}).
		Where("account_id = ? AND expiration_date >= ?", accountID, since).
		Count(&count).Error
	return count > 0, err
}

// Consume 在同一事务内更新账号字段并删除令牌
func (r *VerificationRepository) Consume(token *model.VerificationToken, accountFields map[string]interface{}) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(accountFields) > 0 {
			result := tx.Model(&model.Account{}).Where("id = ?", token.AccountID).Updates(accountFields)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return tx.Delete(&model.VerificationToken{}, token.ID).Error
	})
}

func (r *VerificationRepository) Delete(id int64) error {
	return r.db.Delete(&model.VerificationToken{}, id).Error
}

// CountStale 统计 expiration_date 早于 before 的令牌
func (r *VerificationRepository) CountStale(before time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.VerificationToken{}).Where("expiration_date < ?", before).Count(&count).Error
	return count, err
}

// DeleteStale 清理过期令牌
func (r *VerificationRepository) DeleteStale(before time.Time) (int64, error) {
	result := r.db.Where("expiration_date < ?", before).Delete(&model.VerificationToken{})
	return result.RowsAffected, result.Error
}
