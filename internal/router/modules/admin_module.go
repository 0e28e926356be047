package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/desinetwork/classifieds/internal/application"
	"github.com/desinetwork/classifieds/internal/container"
	handlers "github.com/desinetwork/classifieds/internal/interface/http"
	"github.com/desinetwork/classifieds/internal/interface/middleware"
)

// AdminModule wires the moderation surface behind the admin role gate.
type AdminModule struct {
	Handler *handlers.AdminHandler
	Auth    *application.AuthService
}

func NewAdminModule(h *handlers.AdminHandler, auth *application.AuthService) *AdminModule {
	return &AdminModule{Handler: h, Auth: auth}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/admin")
	g.Use(
		middleware.Auth(m.Auth),
		middleware.AdminOnly(),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP()),
	)
	{
		g.GET("/stats", m.Handler.Stats)
		g.GET("/users", m.Handler.ListUsers)
		g.PUT("/users/:id/role", m.Handler.UpdateUserRole)
		g.GET("/classifieds", m.Handler.ListClassifieds)
		g.GET("/classifieds/search", m.Handler.SearchClassifieds)
		g.PUT("/classifieds/:id/status", m.Handler.SetClassifiedStatus)
		g.DELETE("/classifieds/:id", m.Handler.DeleteClassified)
		g.POST("/cities", m.Handler.CreateCity)
		g.DELETE("/cities/:id", m.Handler.DeleteCity)
	}
}
