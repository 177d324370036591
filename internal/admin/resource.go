package admin

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"
)

// FieldFunc 校验并规整后台提交的字段值
type FieldFunc func(value interface{}) (interface{}, error)

// GormResource 基于 gorm 的通用后台资源
type GormResource[T any] struct {
	name     string
	db       *gorm.DB
	order    string
	editable map[string]FieldFunc
	view     func(*T) interface{}
	remove   func(ctx context.Context, id int64) error
}

type Option[T any] func(*GormResource[T])

func NewGormResource[T any](name string, db *gorm.DB, opts ...Option[T]) *GormResource[T] {
	r := &GormResource[T]{
		name:     name,
		db:       db,
		order:    "id DESC",
		editable: make(map[string]FieldFunc),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func WithOrder[T any](order string) Option[T] {
	return func(r *GormResource[T]) { r.order = order }
}

// WithField 允许后台编辑 column
func WithField[T any](column string, fn FieldFunc) Option[T] {
	return func(r *GormResource[T]) { r.editable[column] = fn }
}

func WithView[T any](view func(*T) interface{}) Option[T] {
	return func(r *GormResource[T]) { r.view = view }
}

// WithDelete 替换默认的按主键删除
func WithDelete[T any](fn func(ctx context.Context, id int64) error) Option[T] {
	return func(r *GormResource[T]) { r.remove = fn }
}

func (r *GormResource[T]) Name() string {
	return r.name
}

func (r *GormResource[T]) render(item *T) interface{} {
	if r.view == nil {
		return item
	}
	return r.view(item)
}

func (r *GormResource[T]) List(ctx context.Context, page, pageSize int) (interface{}, int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(new(T))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*T
	offset := (page - 1) * pageSize
	if err := query.Order(r.order).Offset(offset).Limit(pageSize).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	items := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		items = append(items, r.render(row))
	}
	return items, total, nil
}

func (r *GormResource[T]) find(ctx context.Context, id int64) (*T, error) {
	var item T
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *GormResource[T]) Get(ctx context.Context, id int64) (interface{}, error) {
	item, err := r.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.render(item), nil
}

// Update 只写入白名单内的列
func (r *GormResource[T]) Update(ctx context.Context, id int64, fields map[string]interface{}) (interface{}, error) {
	if len(r.editable) == 0 {
		return nil, ErrReadOnly
	}

	updates := make(map[string]interface{}, len(fields))
	for column, raw := range fields {
		fn, ok := r.editable[column]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrFieldNotEditable, column)
		}
		value, err := fn(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", column, err)
		}
		updates[column] = value
	}

	if _, err := r.find(ctx, id); err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		err := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(updates).Error
		if err != nil {
			return nil, err
		}
	}
	return r.Get(ctx, id)
}

func (r *GormResource[T]) Delete(ctx context.Context, id int64) error {
	if r.remove != nil {
		return r.remove(ctx, id)
	}

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// 常用字段校验

func StringField(maxLen int) FieldFunc {
	return func(v interface{}) (interface{}, error) {
		s, ok := v.(string)
		if !ok || (maxLen > 0 && len([]rune(s)) > maxLen) {
			return nil, ErrInvalidValue
		}
		return s, nil
	}
}

// NullableStringField 允许 null
func NullableStringField() FieldFunc {
	return func(v interface{}) (interface{}, error) {
		if v == nil {
			return nil, nil
		}
		s, ok := v.(string)
		if !ok {
			return nil, ErrInvalidValue
		}
		return s, nil
	}
}

func BoolField() FieldFunc {
	return func(v interface{}) (interface{}, error) {
		b, ok := v.(bool)
		if !ok {
			return nil, ErrInvalidValue
		}
		return b, nil
	}
}

func FloatField() FieldFunc {
	return func(v interface{}) (interface{}, error) {
		f, ok := v.(float64)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, ErrInvalidValue
		}
		return f, nil
	}
}

// IntField choices 为空时接受任意整数
func IntField(choices ...int) FieldFunc {
	return func(v interface{}) (interface{}, error) {
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) {
			return nil, ErrInvalidValue
		}
		n := int(f)
		if len(choices) == 0 {
			return n, nil
		}
		for _, c := range choices {
			if c == n {
				return n, nil
			}
		}
		return nil, ErrInvalidValue
	}
}

// EnumField valid 判断存储值是否合法
func EnumField(valid func(string) bool) FieldFunc {
	return func(v interface{}) (interface{}, error) {
		s, ok := v.(string)
		if !ok || !valid(s) {
			return nil, ErrInvalidValue
		}
		return s, nil
	}
}

// TimeField RFC3339 字符串，null 表示清空
func TimeField() FieldFunc {
	return func(v interface{}) (interface{}, error) {
		if v == nil {
			return nil, nil
		}
		s, ok := v.(string)
		if !ok {
			return nil, ErrInvalidValue
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, ErrInvalidValue
		}
		return t, nil
	}
}
