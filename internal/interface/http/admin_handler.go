package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/desinetwork/classifieds/internal/application"
	"github.com/desinetwork/classifieds/internal/domain/entity"
	"github.com/desinetwork/classifieds/internal/interface/middleware"
	"github.com/desinetwork/classifieds/pkg/response"
)

type AdminHandler struct {
	Svc    *application.AdminService
	Logger *logrus.Logger
}

func NewAdminHandler(svc *application.AdminService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Svc: svc, Logger: logger}
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft published"`
}

type createCityRequest struct {
	Name  string `json:"name" binding:"required"`
	State string `json:"state" binding:"required"`
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.Svc.Stats(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("admin stats failed")
		response.Error(c, http.StatusInternalServerError, "could not load stats")
		return
	}
	response.JSON(c, http.StatusOK, stats)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.Svc.ListUsers(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("admin list users failed")
		response.Error(c, http.StatusInternalServerError, "could not load users")
		return
	}
	public := make([]entity.PublicUser, 0, len(users))
	for i := range users {
		public = append(public, users[i].Public())
	}
	response.JSON(c, http.StatusOK, gin.H{"users": public})
}

func (h *AdminHandler) ListClassifieds(c *gin.Context) {
	list, err := h.Svc.ListClassifieds(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("admin list classifieds failed")
		response.Error(c, http.StatusInternalServerError, "could not load classifieds")
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"classifieds": list})
}

func (h *AdminHandler) SearchClassifieds(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error(c, http.StatusBadRequest, "q is required")
		return
	}
	size, _ := strconv.Atoi(c.Query("size"))

	hits, err := h.Svc.SearchClassifieds(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).Error("admin search failed")
		response.Error(c, http.StatusInternalServerError, "search failed")
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"results": hits})
}

func (h *AdminHandler) SetClassifiedStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	cl, err := h.Svc.SetClassifiedStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrClassifiedNotFound):
			response.Error(c, http.StatusNotFound, err.Error())
		case errors.Is(err, application.ErrInvalidStatus):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			h.Logger.WithError(err).Error("set classified status failed")
			response.Error(c, http.StatusInternalServerError, "could not update status")
		}
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"classified": cl})
}

func (h *AdminHandler) DeleteClassified(c *gin.Context) {
	if err := h.Svc.DeleteClassified(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, application.ErrClassifiedNotFound) {
			response.Error(c, http.StatusNotFound, err.Error())
			return
		}
		h.Logger.WithError(err).Error("admin delete classified failed")
		response.Error(c, http.StatusInternalServerError, "could not delete classified")
		return
	}
	response.Message(c, http.StatusOK, "classified deleted")
}

func (h *AdminHandler) CreateCity(c *gin.Context) {
	var req createCityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	city, err := h.Svc.CreateCity(c.Request.Context(), req.Name, req.State)
	if err != nil {
		if errors.Is(err, application.ErrCityExists) {
			response.Error(c, http.StatusConflict, err.Error())
			return
		}
		h.Logger.WithError(err).Error("create city failed")
		response.Error(c, http.StatusInternalServerError, "could not create city")
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{"city": city})
}

func (h *AdminHandler) DeleteCity(c *gin.Context) {
	if err := h.Svc.DeleteCity(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, application.ErrCityNotFound) {
			response.Error(c, http.StatusNotFound, err.Error())
			return
		}
		h.Logger.WithError(err).Error("delete city failed")
		response.Error(c, http.StatusInternalServerError, "could not delete city")
		return
	}
	response.Message(c, http.StatusOK, "city deleted")
}

func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}
	actor := middleware.CurrentUser(c)

	u, err := h.Svc.UpdateUserRole(c.Request.Context(), actor.ID, c.Param("id"), req.Role)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrUserNotFound):
			response.Error(c, http.StatusNotFound, err.Error())
		case errors.Is(err, application.ErrInvalidRole), errors.Is(err, application.ErrSelfDemotion):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			h.Logger.WithError(err).Error("update user role failed")
			response.Error(c, http.StatusInternalServerError, "could not update role")
		}
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"user": u.Public()})
}
