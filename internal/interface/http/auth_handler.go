package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/desinetwork/classifieds/internal/application"
	"github.com/desinetwork/classifieds/internal/interface/middleware"
	"github.com/desinetwork/classifieds/pkg/response"
)

type AuthHandler struct {
	Auth         *application.AuthService
	Verification *application.VerificationService
	Logger       *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, verification *application.VerificationService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Verification: verification, Logger: logger}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Name     string `json:"name" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type codeRequest struct {
	Code string `json:"code" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,pwd"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	u, token, err := h.Auth.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, application.ErrEmailTaken) {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.WithError(err).Error("registration failed")
		response.Error(c, http.StatusInternalServerError, "registration failed")
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{"token": token, "user": u.Public()})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	u, token, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, err.Error())
			return
		}
		h.Logger.WithError(err).Error("login failed")
		response.Error(c, http.StatusInternalServerError, "login failed")
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"token": token, "user": u.Public()})
}

func (h *AuthHandler) Me(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		response.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"user": u.Public()})
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	u, err := h.Verification.VerifyEmail(c.Request.Context(), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrCodeMalformed),
			errors.Is(err, application.ErrCodeExpired),
			errors.Is(err, application.ErrCodeInvalid):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			h.Logger.WithError(err).Error("email verification failed")
			response.Error(c, http.StatusInternalServerError, "verification failed")
		}
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "email verified", "user": u.Public()})
}

func (h *AuthHandler) ResendVerification(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		response.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	already, err := h.Verification.ResendVerification(c.Request.Context(), u.ID)
	if err != nil {
		if errors.Is(err, application.ErrDeliveryFailed) {
			response.Error(c, http.StatusInternalServerError, err.Error())
			return
		}
		h.Logger.WithError(err).Error("resend verification failed")
		response.Error(c, http.StatusInternalServerError, "could not resend verification code")
		return
	}
	if already {
		response.Message(c, http.StatusOK, "email is already verified")
		return
	}
	response.Message(c, http.StatusOK, "verification code sent")
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	if err := h.Verification.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, application.ErrDeliveryFailed) {
			response.Error(c, http.StatusInternalServerError, err.Error())
			return
		}
		h.Logger.WithError(err).Error("forgot password failed")
		response.Error(c, http.StatusInternalServerError, "could not process request")
		return
	}
	// Same reply whether or not the account exists.
	response.Message(c, http.StatusOK, "if that email is registered, a reset code is on the way")
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	_, err := h.Verification.ResetPassword(c.Request.Context(), req.Code, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrCodeMalformed),
			errors.Is(err, application.ErrCodeInvalid):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			h.Logger.WithError(err).Error("password reset failed")
			response.Error(c, http.StatusInternalServerError, "password reset failed")
		}
		return
	}
	response.Message(c, http.StatusOK, "password updated, you can log in now")
}
