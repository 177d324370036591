package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/dict_go_server/internal/model"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// WithTx 返回绑定到事务的仓库
func (r *AccountRepository) WithTx(tx *gorm.DB) *AccountRepository {
	return &AccountRepository{db: tx}
}

// Transaction 在单个事务中执行 fn，fn 返回错误时回滚
func (r *AccountRepository) Transaction(fn func(repo *AccountRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

// Create 插入账号行
func (r *AccountRepository) Create(account *model.Account) error {
	return r.db.Create(account).Error
}

// BootstrapCategories 为新账号批量订阅当前已存在的全部频道，返回订阅数
func (r *AccountRepository) BootstrapCategories(accountID int64) (int, error) {
	var categoryIDs []int64
	if err := r.db.Model(&model.Category{}).Order("id").Pluck("id", &categoryIDs).Error; err != nil {
		return 0, err
	}
	if len(categoryIDs) == 0 {
		return 0, nil
	}

	rows := make([]model.CategoryFollowing, 0, len(categoryIDs))
	for _, categoryID := range categoryIDs {
		rows = append(rows, model.CategoryFollowing{AccountID: accountID, CategoryID: categoryID})
	}

	err := r.db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&rows, 100).Error
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (r *AccountRepository) GetByID(id int64) (*model.Account, error) {
	var account model.Account
	err := r.db.Where("id = ?", id).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) GetByEmail(email string) (*model.Account, error) {
	var account model.Account
	err := r.db.Where("email = ?", email).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) GetByNick(nick string) (*model.Account, error) {
	var account model.Account
	err := r.db.Where("username = ?", nick).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) GetByIDs(ids []int64) ([]*model.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var accounts []*model.Account
	err := r.db.Where("id IN ?", ids).Order("id").Find(&accounts).Error
	return accounts, err
}

// Update 保存整个账号，不会触发频道订阅初始化
func (r *AccountRepository) Update(account *model.Account) error {
	return r.db.Save(account).Error
}

func (r *AccountRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	result := r.db.Model(&model.Account{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// TouchActivity 更新最后活跃时间
func (r *AccountRepository) TouchActivity(id int64, at time.Time) error {
	return r.db.Model(&model.Account{}).Where("id = ?", id).
		UpdateColumn("last_activity", at).Error
}

func (r *AccountRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Account{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *AccountRepository) ExistsByNick(nick string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Account{}).Where("username = ?", nick).Count(&count).Error
	return count > 0, err
}

// ListFollowers 关注了该账号的所有账号
func (r *AccountRepository) ListFollowers(id int64) ([]*model.Account, error) {
	var accounts []*model.Account
	err := r.db.Model(&model.Account{}).
		Joins("JOIN account_following ON account_following.account_id = accounts.id").
		Where("account_following.following_id = ?", id).
		Order("accounts.id").
		Find(&accounts).Error
	return accounts, err
}

// ListNovices 按申请时间排列的新手队列
func (r *AccountRepository) ListNovices(status model.ApplicationStatus, page, pageSize int) ([]*model.Account, int64, error) {
	var accounts []*model.Account
	var total int64

	query := r.db.Model(&model.Account{}).
		Where("is_novice = ? AND application_status = ?", true, status)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("application_date ASC, id ASC").Offset(offset).Limit(pageSize).Find(&accounts).Error
	if err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// Delete 删除账号及其拥有的全部数据（备注、验证令牌、各类关系）
func (r *AccountRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		owned := []struct {
			model interface{}
			where string
		}{
			{&model.Memento{}, "holder_id = ? OR patient_id = ?"},
			{&model.AccountFollowing{}, "account_id = ? OR following_id = ?"},
			{&model.AccountBlock{}, "account_id = ? OR blocked_id = ?"},
		}
		for _, o := range owned {
			if err := tx.Where(o.where, id, id).Delete(o.model).Error; err != nil {
				return err
			}
		}

		for _, m := range []interface{}{
			&model.VerificationToken{},
			&model.FavoriteEntry{},
			&model.EntryVote{},
			&model.CategoryFollowing{},
		} {
			if err := tx.Where("account_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&model.Account{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
