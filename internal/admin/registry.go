package admin

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	ErrUnknownResource   = errors.New("后台资源不存在")
	ErrDuplicateResource = errors.New("后台资源重复注册")
	ErrRecordNotFound    = errors.New("记录不存在")
	ErrFieldNotEditable  = errors.New("字段不可编辑")
	ErrInvalidValue      = errors.New("字段取值无效")
	ErrReadOnly          = errors.New("该资源只读")
)

// Resource 一种可在后台管理的数据
type Resource interface {
	Name() string
	List(ctx context.Context, page, pageSize int) (interface{}, int64, error)
	Get(ctx context.Context, id int64) (interface{}, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) (interface{}, error)
	Delete(ctx context.Context, id int64) error
}

// Registry 按名称注册后台资源
type Registry struct {
	mu        sync.RWMutex
	resources map[string]Resource
}

func NewRegistry() *Registry {
	return &Registry{resources: make(map[string]Resource)}
}

func (r *Registry) Register(res Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.resources[res.Name()]; ok {
		return ErrDuplicateResource
	}
	r.resources[res.Name()] = res
	return nil
}

// MustRegister 启动阶段使用，重复注册直接 panic
func (r *Registry) MustRegister(res Resource) {
	if err := r.Register(res); err != nil {
		panic(err.Error() + ": " + res.Name())
	}
}

func (r *Registry) Get(name string) (Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.resources[name]
	if !ok {
		return nil, ErrUnknownResource
	}
	return res, nil
}

// Names 已注册资源名，按字母序
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.resources))
	for name := range r.resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
