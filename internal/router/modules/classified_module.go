package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/desinetwork/classifieds/internal/application"
	"github.com/desinetwork/classifieds/internal/container"
	handlers "github.com/desinetwork/classifieds/internal/interface/http"
	"github.com/desinetwork/classifieds/internal/interface/middleware"
)

// ClassifiedModule wires public browsing and owner CRUD.
// Writes require a verified email on top of authentication.
type ClassifiedModule struct {
	Handler *handlers.ClassifiedHandler
	Auth    *application.AuthService
}

func NewClassifiedModule(h *handlers.ClassifiedHandler, auth *application.AuthService) *ClassifiedModule {
	return &ClassifiedModule{Handler: h, Auth: auth}
}

func (m *ClassifiedModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	browseLimiter := middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByIP())
	writeLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIP())

	auth := middleware.Auth(m.Auth)
	verified := middleware.RequireVerifiedEmail()

	g := rg.Group("/classifieds")
	g.GET("", browseLimiter, m.Handler.List)
	g.GET("/my", auth, m.Handler.ListMine)
	g.GET("/:id", browseLimiter, m.Handler.Get)

	g.POST("", auth, verified, writeLimiter, m.Handler.Create)
	g.PUT("/:id", auth, verified, writeLimiter, m.Handler.Update)
	g.DELETE("/:id", auth, verified, writeLimiter, m.Handler.Delete)
}
