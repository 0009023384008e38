package response

import (
	"log"
	"net/http"

	"anoa.com/perpustakaan/internal/model"
	"anoa.com/perpustakaan/pkg/apperror"
	pkgvalidator "anoa.com/perpustakaan/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// CurrentUser retrieves the authenticated user loaded by the auth middleware.
func CurrentUser(c *gin.Context) (*model.User, error) {
	value, exists := c.Get("user")
	if !exists {
		return nil, apperror.ErrUnauthorized
	}

	user, ok := value.(*model.User)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}

	return user, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
	}

	c.JSON(code, gin.H{"error": err.Error()})
}

// BindError replies to a failed gin binding: validator errors become a
// per-field list, anything else a plain 400.
func BindError(c *gin.Context, err error) {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  pkgvalidator.FormatValidationError(err),
			"errors": pkgvalidator.FieldErrors(validationErrors),
		})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
