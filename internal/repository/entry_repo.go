package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/dict_go_server/internal/model"
)

// Published 默认的已发布过滤：排除草稿
func Published(db *gorm.DB) *gorm.DB {
	return db.Where("is_draft = ?", false)
}

type EntryRepository struct {
	db        *gorm.DB
	published func(*gorm.DB) *gorm.DB
}

func NewEntryRepository(db *gorm.DB) *EntryRepository {
	return &EntryRepository{db: db, published: Published}
}

// WithPublishedScope 替换"已发布"的判定条件
func (r *EntryRepository) WithPublishedScope(scope func(*gorm.DB) *gorm.DB) *EntryRepository {
	return &EntryRepository{db: r.db, published: scope}
}

func (r *EntryRepository) Create(entry *model.Entry) error {
	return r.db.Create(entry).Error
}

func (r *EntryRepository) GetByID(id int64) (*model.Entry, error) {
	var entry model.Entry
	err := r.db.Where("id = ?", id).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *EntryRepository) GetByIDs(ids []int64) ([]*model.Entry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var entries []*model.Entry
	err := r.db.Where("id IN ?", ids).Order("id").Find(&entries).Error
	return entries, err
}

func (r *EntryRepository) publishedBy(authorID int64) *gorm.DB {
	return r.db.Model(&model.Entry{}).Scopes(r.published).Where("author_id = ?", authorID)
}

// CountPublished 已发布条目总数
func (r *EntryRepository) CountPublished(authorID int64) (int64, error) {
	var count int64
	err := r.publishedBy(authorID).Count(&count).Error
	return count, err
}

// CountPublishedSince since <= date_created 的已发布条目数
func (r *EntryRepository) CountPublishedSince(authorID int64, since time.Time) (int64, error) {
	var count int64
	err := r.publishedBy(authorID).Where("date_created >= ?", since).Count(&count).Error
	return count, err
}

// LatestPublished 最新一条已发布条目，没有时返回 nil, nil
func (r *EntryRepository) LatestPublished(authorID int64) (*model.Entry, error) {
	var entries []*model.Entry
	err := r.publishedBy(authorID).Order("date_created DESC, id DESC").Limit(1).Find(&entries).Error
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return entries[0], nil
}

// BestPublished 评分最高的已发布条目，没有时返回 nil, nil
func (r *EntryRepository) BestPublished(authorID int64) (*model.Entry, error) {
	var entries []*model.Entry
	err := r.publishedBy(authorID).Order("vote_rate DESC, id ASC").Limit(1).Find(&entries).Error
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return entries[0], nil
}

// Delete 删除条目：置空置顶引用，清理收藏与投票
func (r *EntryRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Account{}).Where("pinned_entry_id = ?", id).
			UpdateColumn("pinned_entry_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("entry_id = ?", id).Delete(&model.FavoriteEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("entry_id = ?", id).Delete(&model.EntryVote{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&model.Entry{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
