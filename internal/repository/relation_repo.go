package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/dict_go_server/internal/model"
)

// RelationRepository 账号的各类多对多关系：关注、屏蔽、收藏、投票、频道订阅
// 所有增删都是集合语义，重复添加或删除不存在的边都不会报错
type RelationRepository struct {
	db *gorm.DB
}

func NewRelationRepository(db *gorm.DB) *RelationRepository {
	return &RelationRepository{db: db}
}

func (r *RelationRepository) addEdge(edge interface{}) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(edge).Error
}

// Follow 关注账号
func (r *RelationRepository) Follow(accountID, targetID int64) error {
	return r.addEdge(&model.AccountFollowing{AccountID: accountID, FollowingID: targetID})
}

// Unfollow 取消关注
func (r *RelationRepository) Unfollow(accountID, targetID int64) error {
	return r.db.Where("account_id = ? AND following_id = ?", accountID, targetID).
		Delete(&model.AccountFollowing{}).Error
}

func (r *RelationRepository) IsFollowing(accountID, targetID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.AccountFollowing{}).
		Where("account_id = ? AND following_id = ?", accountID, targetID).
		Count(&count).Error
	return count > 0, err
}

// FollowingIDs 关注列表
func (r *RelationRepository) FollowingIDs(accountID int64) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&model.AccountFollowing{}).
		Where("account_id = ?", accountID).
		Order("following_id").
		Pluck("following_id", &ids).Error
	return ids, err
}

// FollowerIDs 反向查询：谁关注了 accountID
func (r *RelationRepository) FollowerIDs(accountID int64) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&model.AccountFollowing{}).
		Where("following_id = ?", accountID).
		Order("account_id").
		Pluck("account_id", &ids).Error
	return ids, err
}

// Block 屏蔽账号
func (r *RelationRepository) Block(accountID, targetID int64) error {
	return r.addEdge(&model.AccountBlock{AccountID: accountID, BlockedID: targetID})
}

// Unblock 取消屏蔽
func (r *RelationRepository) Unblock(accountID, targetID int64) error {
	return r.db.Where("account_id = ? AND blocked_id = ?", accountID, targetID).
		Delete(&model.AccountBlock{}).Error
}

func (r *RelationRepository) IsBlocked(accountID, targetID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.AccountBlock{}).
		Where("account_id = ? AND blocked_id = ?", accountID, targetID).
		Count(&count).Error
	return count > 0, err
}

func (r *RelationRepository) BlockedIDs(accountID int64) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&model.AccountBlock{}).
		Where("account_id = ?", accountID).
		Order("blocked_id").
		Pluck("blocked_id", &ids).Error
	return ids, err
}

// Favorite 收藏条目
func (r *RelationRepository) Favorite(accountID, entryID int64) error {
	return r.addEdge(&model.FavoriteEntry{AccountID: accountID, EntryID: entryID})
}

// Unfavorite 取消收藏
func (r *RelationRepository) Unfavorite(accountID, entryID int64) error {
	return r.db.Where("account_id = ? AND entry_id = ?", accountID, entryID).
		Delete(&model.FavoriteEntry{}).Error
}

func (r *RelationRepository) FavoriteEntryIDs(accountID int64) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&model.FavoriteEntry{}).
		Where("account_id = ?", accountID).
		Order("created_at DESC, entry_id DESC").
		Pluck("entry_id", &ids).Error
	return ids, err
}

// Vote 写入或改写投票方向，同一条目上赞与踩互斥
func (r *RelationRepository) Vote(accountID, entryID int64, direction model.VoteDirection) error {
	vote := &model.EntryVote{AccountID: accountID, EntryID: entryID, Direction: direction}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}, {Name: "entry_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"direction", "updated_at"}),
	}).Create(vote).Error
}

// Unvote 撤销投票
func (r *RelationRepository) Unvote(accountID, entryID int64) error {
	return r.db.Where("account_id = ? AND entry_id = ?", accountID, entryID).
		Delete(&model.EntryVote{}).Error
}

// GetVote 没有投票时返回 0
func (r *RelationRepository) GetVote(accountID, entryID int64) (model.VoteDirection, error) {
	var votes []model.EntryVote
	err := r.db.Where("account_id = ? AND entry_id = ?", accountID, entryID).Limit(1).Find(&votes).Error
	if err != nil || len(votes) == 0 {
		return 0, err
	}
	return votes[0].Direction, nil
}

// VotedEntryIDs 按方向列出投过票的条目
func (r *RelationRepository) VotedEntryIDs(accountID int64, direction model.VoteDirection) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&model.EntryVote{}).
		Where("account_id = ? AND direction = ?", accountID, direction).
		Order("entry_id").
		Pluck("entry_id", &ids).Error
	return ids, err
}

// FollowCategory 订阅频道
func (r *RelationRepository) FollowCategory(accountID, categoryID int64) error {
	return r.addEdge(&model.CategoryFollowing{AccountID: accountID, CategoryID: categoryID})
}

// UnfollowCategory 取消订阅频道
func (r *RelationRepository) UnfollowCategory(accountID, categoryID int64) error {
	return r.db.Where("account_id = ? AND category_id = ?", accountID, categoryID).
		Delete(&model.CategoryFollowing{}).Error
}

func (r *RelationRepository) FollowingCategoryIDs(accountID int64) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&model.CategoryFollowing{}).
		Where("account_id = ?", accountID).
		Order("category_id").
		Pluck("category_id", &ids).Error
	return ids, err
}
