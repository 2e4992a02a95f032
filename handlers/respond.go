package handlers

import (
	"errors"
	"net/http"

	"food-distribution-backend/apperror"
	"food-distribution-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError writes the JSON error body for err. Unknown errors are
// logged and answered with a generic message.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	status := apperror.HTTPStatus(err)
	body := gin.H{"error": err.Error(), "code": apperror.Code(err)}

	var authErr *apperror.AuthError
	var validationErr *apperror.ValidationError
	var finalized *apperror.AlreadyFinalizedError
	switch {
	case errors.As(err, &authErr):
		body["field"] = authErr.Field
	case errors.As(err, &validationErr):
		if validationErr.Field != "" {
			body["field"] = validationErr.Field
		}
	case errors.As(err, &finalized):
		body["current"] = finalized.Current
	}

	if status == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		body["error"] = "Internal server error"
	}
	c.JSON(status, body)
}

// bindJSON decodes the request body. Validation happens in the services.
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": utils.SanitizeValidationError(err),
			"code":  apperror.Code(apperror.ErrValidation),
		})
		return false
	}
	return true
}
