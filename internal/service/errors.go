package service

import (
	"errors"
)

var (
	ErrNickTaken          = errors.New("该昵称已被使用")
	ErrEmailTaken         = errors.New("该邮箱已被注册")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrAccountNotFound    = errors.New("账号不存在")
	ErrEntryNotFound      = errors.New("条目不存在")
	ErrCategoryNotFound   = errors.New("频道不存在")
	ErrMementoNotFound    = errors.New("备注不存在")
	ErrTokenNotFound      = errors.New("验证链接无效")
	ErrTokenExpired       = errors.New("验证链接已过期")
	ErrInvalidTransition  = errors.New("申请状态不允许此操作")
	ErrPermissionDenied   = errors.New("权限不足")
	ErrSelfRelation       = errors.New("不能对自己执行此操作")
	ErrAccountBanned      = errors.New("账号已被封禁")
)
