package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/dict_go_server/internal/model"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create 新建频道，不会回填到已有账号的订阅中
func (r *CategoryRepository) Create(category *model.Category) error {
	return r.db.Create(category).Error
}

func (r *CategoryRepository) GetByID(id int64) (*model.Category, error) {
	var category model.Category
	err := r.db.Where("id = ?", id).First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) GetByIDs(ids []int64) ([]*model.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var categories []*model.Category
	err := r.db.Where("id IN ?", ids).Order("weight DESC, id ASC").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) List() ([]*model.Category, error) {
	var categories []*model.Category
	err := r.db.Order("weight DESC, id ASC").Find(&categories).Error
	return categories, err
}
