package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/desinetwork/classifieds/internal/application"
	"github.com/desinetwork/classifieds/pkg/response"
)

type CityHandler struct {
	Svc    *application.CityService
	Logger *logrus.Logger
}

func NewCityHandler(svc *application.CityService, logger *logrus.Logger) *CityHandler {
	return &CityHandler{Svc: svc, Logger: logger}
}

func (h *CityHandler) List(c *gin.Context) {
	cities, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("list cities failed")
		response.Error(c, http.StatusInternalServerError, "could not load cities")
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"cities": cities})
}
