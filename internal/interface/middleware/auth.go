package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/desinetwork/classifieds/internal/application"
	"github.com/desinetwork/classifieds/internal/domain/entity"
	"github.com/desinetwork/classifieds/pkg/response"
)

const (
	ctxUserKey   = "user"
	ctxUserIDKey = "userID"
)

// BearerToken pulls the token out of the Authorization header.
func BearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Auth requires a valid bearer token resolving to a live user and stores the
// user in the request context.
func Auth(auth *application.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "authentication required")
			return
		}
		u, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		c.Set(ctxUserKey, u)
		c.Set(ctxUserIDKey, u.ID)
		c.Next()
	}
}

// AdminOnly runs after Auth and rejects non-admin users.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil || !u.IsAdmin() {
			response.Error(c, http.StatusForbidden, "admin access required")
			return
		}
		c.Next()
	}
}

// RequireVerifiedEmail runs after Auth and blocks accounts that have not
// completed email verification.
func RequireVerifiedEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			response.Error(c, http.StatusUnauthorized, "authentication required")
			return
		}
		if !u.EmailVerified() {
			response.Error(c, http.StatusForbidden, "please verify your email first")
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by Auth, or nil.
func CurrentUser(c *gin.Context) *entity.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*entity.User)
	return u
}
