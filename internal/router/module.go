package router

import "github.com/gin-gonic/gin"

// Module is one routable feature area, mounted on the shared /api group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
