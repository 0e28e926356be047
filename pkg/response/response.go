package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/desinetwork/classifieds/pkg/validation"
)

// The API error envelope is intentionally small: {"error": msg} for single
// errors and {"errors": [...]} for field-validation batches. Success
// responses are plain JSON entities.

// Error writes a single-error envelope and aborts the request.
func Error(c *gin.Context, status int, msg string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// ValidationError writes a batch envelope from a binding/validation error.
func ValidationError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errors": validation.ToFieldErrors(err)})
}

// JSON writes a success payload.
func JSON(c *gin.Context, status int, payload any) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, payload)
}

// Message writes a {"message": msg} payload for mutations that return no
// entity.
func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}
