package api

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/dict_go_server/config"
	"github.com/qs3c/dict_go_server/internal/api/handler"
	"github.com/qs3c/dict_go_server/internal/api/middleware"
)

type Router struct {
	adminHandler *handler.AdminHandler
	toucher      middleware.ActivityToucher
	cfg          *config.Config
}

func NewRouter(
	adminHandler *handler.AdminHandler,
	toucher middleware.ActivityToucher,
	cfg *config.Config,
) *Router {
	return &Router{
		adminHandler: adminHandler,
		toucher:      toucher,
		cfg:          cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLog())

	engine.GET("/healthz", func(c *gin.Context) {
		c.String(200, "ok")
	})

	engine.POST("/admin/login", r.adminHandler.Login)

	// 后台接口，仅限 staff
	adm := engine.Group("/admin")
	adm.Use(middleware.Auth(r.cfg.JWT.Secret), middleware.StaffOnly())
	if r.toucher != nil {
		adm.Use(middleware.Activity(r.toucher))
	}
	{
		adm.GET("", r.adminHandler.Resources)
		adm.GET("/stats/:id", r.adminHandler.Stats)

		// 账号特权操作
		adm.POST("/accounts/:id/activate", r.adminHandler.Activate)
		adm.POST("/accounts/:id/ban", r.adminHandler.Ban)
		adm.POST("/accounts/:id/unban", r.adminHandler.Unban)

		// 通用资源
		adm.GET("/:resource", r.adminHandler.List)
		adm.GET("/:resource/:id", r.adminHandler.Get)
		adm.PATCH("/:resource/:id", r.adminHandler.Update)
		adm.DELETE("/:resource/:id", r.adminHandler.Delete)
	}

	return engine
}
