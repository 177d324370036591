package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/qs3c/dict_go_server/config"
	"github.com/qs3c/dict_go_server/internal/admin"
	"github.com/qs3c/dict_go_server/internal/api/middleware"
	"github.com/qs3c/dict_go_server/internal/pkg/jwt"
	"github.com/qs3c/dict_go_server/internal/pkg/logger"
	"github.com/qs3c/dict_go_server/internal/pkg/response"
	"github.com/qs3c/dict_go_server/internal/service"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type AdminHandler struct {
	registry       *admin.Registry
	accountService *service.AccountService
	jwtCfg         config.JWTConfig
}

func NewAdminHandler(registry *admin.Registry, accountService *service.AccountService, jwtCfg config.JWTConfig) *AdminHandler {
	return &AdminHandler{
		registry:       registry,
		accountService: accountService,
		jwtCfg:         jwtCfg,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type banRequest struct {
	Until time.Time `json:"until" binding:"required"`
}

// Login 后台登录，只签发给 staff
// POST /admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	account, err := h.accountService.CheckPassword(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrAccountBanned):
			response.AuthError(c, err.Error())
		default:
			h.fail(c, err)
		}
		return
	}
	if !account.IsStaff {
		response.PermissionError(c, "")
		return
	}

	token, err := jwt.GenerateToken(jwt.Claims{
		AccountID:       account.ID,
		IsStaff:         account.IsStaff,
		CanActivateUser: account.CanActivateUser,
	}, h.jwtCfg.Secret, h.jwtCfg.ExpireHours)
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.accountService.TouchActivity(account.ID); err != nil {
		logger.FromContext(c.Request.Context()).Warn("touch activity failed", "error", err)
	}
	response.Success(c, gin.H{"token": token, "account": admin.NewAccountView(account)})
}

// Resources 列出已注册的后台资源
// GET /admin
func (h *AdminHandler) Resources(c *gin.Context) {
	response.Success(c, h.registry.Names())
}

// List 分页列出资源
// GET /admin/:resource
func (h *AdminHandler) List(c *gin.Context) {
	res, err := h.registry.Get(c.Param("resource"))
	if err != nil {
		h.fail(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	items, total, err := res.List(c.Request.Context(), page, pageSize)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessPage(c, total, page, pageSize, items)
}

// Get 获取单条记录
// GET /admin/:resource/:id
func (h *AdminHandler) Get(c *gin.Context) {
	res, id, ok := h.target(c)
	if !ok {
		return
	}

	item, err := res.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, item)
}

// Update 修改白名单字段
// PATCH /admin/:resource/:id
func (h *AdminHandler) Update(c *gin.Context) {
	res, id, ok := h.target(c)
	if !ok {
		return
	}

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	item, err := res.Update(c.Request.Context(), id, fields)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "更新成功", item)
}

// Delete 删除记录
// DELETE /admin/:resource/:id
func (h *AdminHandler) Delete(c *gin.Context) {
	res, id, ok := h.target(c)
	if !ok {
		return
	}

	if err := res.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	logger.FromContext(c.Request.Context()).Info("admin delete", "resource", res.Name(), "id", id)
	response.SuccessWithMessage(c, "删除成功", nil)
}

// Activate 把排队中的新手转为作者
// POST /admin/accounts/:id/activate
func (h *AdminHandler) Activate(c *gin.Context) {
	if !c.GetBool(middleware.CanActivateKey) {
		response.PermissionError(c, "")
		return
	}
	operatorID, _ := middleware.GetAccountID(c)

	id, ok := parseID(c)
	if !ok {
		return
	}

	account, err := h.accountService.Activate(c.Request.Context(), operatorID, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "激活成功", admin.NewAccountView(account))
}

// Ban 封禁账号
// POST /admin/accounts/:id/ban
func (h *AdminHandler) Ban(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req banRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.accountService.Ban(id, req.Until); err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "封禁成功", nil)
}

// Unban 解除封禁
// POST /admin/accounts/:id/unban
func (h *AdminHandler) Unban(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.accountService.Unban(id); err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "已解除封禁", nil)
}

// Stats 账号统计
// GET /admin/stats/:id
func (h *AdminHandler) Stats(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	stats, err := h.accountService.Stats(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, stats)
}

func (h *AdminHandler) target(c *gin.Context) (admin.Resource, int64, bool) {
	res, err := h.registry.Get(c.Param("resource"))
	if err != nil {
		h.fail(c, err)
		return nil, 0, false
	}
	id, ok := parseID(c)
	return res, id, ok
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, "无效的ID")
		return 0, false
	}
	return id, true
}

// fail 把领域错误映射为响应码
func (h *AdminHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, admin.ErrUnknownResource),
		errors.Is(err, admin.ErrRecordNotFound),
		errors.Is(err, service.ErrAccountNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, admin.ErrFieldNotEditable),
		errors.Is(err, admin.ErrInvalidValue),
		errors.Is(err, admin.ErrReadOnly):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrPermissionDenied):
		response.PermissionError(c, err.Error())
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, gorm.ErrDuplicatedKey):
		response.ConflictError(c, err.Error())
	default:
		logger.FromContext(c.Request.Context()).Error("admin request failed", "path", c.FullPath(), "error", err)
		response.ServerError(c, "")
	}
}
