package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/desinetwork/classifieds/internal/interface/http"
)

// CityModule serves the public city list.
type CityModule struct {
	Handler *handlers.CityHandler
}

func NewCityModule(h *handlers.CityHandler) *CityModule {
	return &CityModule{Handler: h}
}

func (m *CityModule) Register(rg *gin.RouterGroup) {
	rg.GET("/cities", m.Handler.List)
}
