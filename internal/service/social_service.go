package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/qs3c/dict_go_server/internal/model"
	"github.com/qs3c/dict_go_server/internal/repository"
)

// SocialService 关注、屏蔽、收藏、投票、频道订阅和置顶
type SocialService struct {
	relationRepo *repository.RelationRepository
	accountRepo  *repository.AccountRepository
	entryRepo    *repository.EntryRepository
	categoryRepo *repository.CategoryRepository
}

func NewSocialService(
	relationRepo *repository.RelationRepository,
	accountRepo *repository.AccountRepository,
	entryRepo *repository.EntryRepository,
	categoryRepo *repository.CategoryRepository,
) *SocialService {
	return &SocialService{
		relationRepo: relationRepo,
		accountRepo:  accountRepo,
		entryRepo:    entryRepo,
		categoryRepo: categoryRepo,
	}
}

func (s *SocialService) checkPair(accountID, targetID int64) error {
	if accountID == targetID {
		return ErrSelfRelation
	}
	_, err := notFoundAs(s.accountRepo.GetByID(targetID))
	return err
}

func (s *SocialService) checkEntry(entryID int64) (*model.Entry, error) {
	entry, err := s.entryRepo.GetByID(entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return entry, nil
}

// Follow 关注
func (s *SocialService) Follow(accountID, targetID int64) error {
	if err := s.checkPair(accountID, targetID); err != nil {
		return err
	}
	return s.relationRepo.Follow(accountID, targetID)
}

// Unfollow 取消关注
func (s *SocialService) Unfollow(accountID, targetID int64) error {
	return s.relationRepo.Unfollow(accountID, targetID)
}

// Following 关注的账号
func (s *SocialService) Following(accountID int64) ([]*model.Account, error) {
	ids, err := s.relationRepo.FollowingIDs(accountID)
	if err != nil {
		return nil, err
	}
	return s.accountRepo.GetByIDs(ids)
}

// Block 屏蔽
func (s *SocialService) Block(accountID, targetID int64) error {
	if err := s.checkPair(accountID, targetID); err != nil {
		return err
	}
	return s.relationRepo.Block(accountID, targetID)
}

// Unblock 取消屏蔽
func (s *SocialService) Unblock(accountID, targetID int64) error {
	return s.relationRepo.Unblock(accountID, targetID)
}

// Blocked 屏蔽的账号
func (s *SocialService) Blocked(accountID int64) ([]*model.Account, error) {
	ids, err := s.relationRepo.BlockedIDs(accountID)
	if err != nil {
		return nil, err
	}
	return s.accountRepo.GetByIDs(ids)
}

// Favorite 收藏条目
func (s *SocialService) Favorite(accountID, entryID int64) error {
	if _, err := s.checkEntry(entryID); err != nil {
		return err
	}
	return s.relationRepo.Favorite(accountID, entryID)
}

// Unfavorite 取消收藏
func (s *SocialService) Unfavorite(accountID, entryID int64) error {
	return s.relationRepo.Unfavorite(accountID, entryID)
}

func (s *SocialService) FavoriteEntries(accountID int64) ([]*model.Entry, error) {
	ids, err := s.relationRepo.FavoriteEntryIDs(accountID)
	if err != nil {
		return nil, err
	}
	return s.entryRepo.GetByIDs(ids)
}

// Upvote 赞，会覆盖之前的踩
func (s *SocialService) Upvote(accountID, entryID int64) error {
	return s.vote(accountID, entryID, model.VoteUp)
}

// Downvote 踩，会覆盖之前的赞
func (s *SocialService) Downvote(accountID, entryID int64) error {
	return s.vote(accountID, entryID, model.VoteDown)
}

func (s *SocialService) vote(accountID, entryID int64, direction model.VoteDirection) error {
	if _, err := s.checkEntry(entryID); err != nil {
		return err
	}
	return s.relationRepo.Vote(accountID, entryID, direction)
}

// Unvote 撤销投票
func (s *SocialService) Unvote(accountID, entryID int64) error {
	return s.relationRepo.Unvote(accountID, entryID)
}

func (s *SocialService) UpvotedEntries(accountID int64) ([]*model.Entry, error) {
	return s.votedEntries(accountID, model.VoteUp)
}

func (s *SocialService) DownvotedEntries(accountID int64) ([]*model.Entry, error) {
	return s.votedEntries(accountID, model.VoteDown)
}

func (s *SocialService) votedEntries(accountID int64, direction model.VoteDirection) ([]*model.Entry, error) {
	ids, err := s.relationRepo.VotedEntryIDs(accountID, direction)
	if err != nil {
		return nil, err
	}
	return s.entryRepo.GetByIDs(ids)
}

// FollowCategory 订阅频道
func (s *SocialService) FollowCategory(accountID, categoryID int64) error {
	if _, err := s.categoryRepo.GetByID(categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return s.relationRepo.FollowCategory(accountID, categoryID)
}

// UnfollowCategory 取消订阅频道
func (s *SocialService) UnfollowCategory(accountID, categoryID int64) error {
	return s.relationRepo.UnfollowCategory(accountID, categoryID)
}

func (s *SocialService) FollowingCategories(accountID int64) ([]*model.Category, error) {
	ids, err := s.relationRepo.FollowingCategoryIDs(accountID)
	if err != nil {
		return nil, err
	}
	return s.categoryRepo.GetByIDs(ids)
}

// PinEntry 置顶自己的条目
func (s *SocialService) PinEntry(accountID, entryID int64) error {
	entry, err := s.checkEntry(entryID)
	if err != nil {
		return err
	}
	if entry.AuthorID != accountID {
		return ErrPermissionDenied
	}

	err = s.accountRepo.UpdateFields(accountID, map[string]interface{}{"pinned_entry_id": entryID})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAccountNotFound
	}
	return err
}

// UnpinEntry 取消置顶
func (s *SocialService) UnpinEntry(accountID int64) error {
	err := s.accountRepo.UpdateFields(accountID, map[string]interface{}{"pinned_entry_id": nil})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAccountNotFound
	}
	return err
}

// DeleteEntry 删除条目，置顶引用被置空
func (s *SocialService) DeleteEntry(entryID int64) error {
	err := s.entryRepo.Delete(entryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrEntryNotFound
	}
	return err
}

// CanMessage 按接收方的私信偏好以及双方屏蔽关系判断能否发私信
func (s *SocialService) CanMessage(senderID, recipientID int64) (bool, error) {
	if senderID == recipientID {
		return false, nil
	}

	sender, err := notFoundAs(s.accountRepo.GetByID(senderID))
	if err != nil {
		return false, err
	}
	recipient, err := notFoundAs(s.accountRepo.GetByID(recipientID))
	if err != nil {
		return false, err
	}

	for _, pair := range [][2]int64{{recipientID, senderID}, {senderID, recipientID}} {
		blocked, err := s.relationRepo.IsBlocked(pair[0], pair[1])
		if err != nil {
			return false, err
		}
		if blocked {
			return false, nil
		}
	}

	switch recipient.MessagePreference {
	case model.MessageDisabled:
		return false, nil
	case model.MessageAllUsers:
		return true, nil
	case model.MessageAuthorsOnly:
		return !sender.IsNovice, nil
	case model.MessageFollowingOnly:
		return s.relationRepo.IsFollowing(recipientID, senderID)
	}
	return false, nil
}
