// internal/utils/response.go
package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-api/internal/apperr"
	"github.com/javajoker/storefront-api/internal/i18n"
	"github.com/javajoker/storefront-api/internal/models"
)

const (
	ContextKeyLang   = "lang"
	ContextKeyUser   = "user"
	ContextKeyUserID = "user_id"
	ContextKeyLogger = "logger"
)

type APIResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Data:    data,
	})
}

func MessageResponse(c *gin.Context, key string) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: i18n.T(GetLangFromContext(c), key),
	})
}

func PaginatedResponse(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, APIResponse{
		Success:    true,
		Data:       data,
		Pagination: &pagination,
	})
}

// ErrorResponse writes the failure envelope; message may be an i18n key.
func ErrorResponse(c *gin.Context, statusCode int, message string, details interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Message: i18n.T(GetLangFromContext(c), message),
		Errors:  details,
	})
}

func AbortWithError(c *gin.Context, statusCode int, message string) {
	ErrorResponse(c, statusCode, message, nil)
	c.Abort()
}

func BadRequestResponse(c *gin.Context, message string, details interface{}) {
	ErrorResponse(c, http.StatusBadRequest, message, details)
}

func ValidationErrorResponse(c *gin.Context, errors []ValidationError) {
	message := i18n.KeyValidationFailed
	if len(errors) == 1 {
		message = errors[0].Message
	}
	ErrorResponse(c, http.StatusBadRequest, message, errors)
}

// HandleError maps a service error onto the HTTP response by its kind.
func HandleError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)

	if kind == apperr.KindInternal {
		GetLogger(c).WithError(err).Error("Request failed")
		ErrorResponse(c, http.StatusInternalServerError, i18n.KeyServerError, nil)
		return
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		ErrorResponse(c, kind.HTTPStatus(), appErr.Message, appErr.Details)
		return
	}
	ErrorResponse(c, kind.HTTPStatus(), err.Error(), nil)
}

func GetLangFromContext(c *gin.Context) string {
	if lang, exists := c.Get(ContextKeyLang); exists {
		if langStr, ok := lang.(string); ok {
			return langStr
		}
	}
	return i18n.DefaultLang
}

func GetUserFromContext(c *gin.Context) (*models.User, bool) {
	if v, exists := c.Get(ContextKeyUser); exists {
		if user, ok := v.(*models.User); ok {
			return user, true
		}
	}
	return nil, false
}

func GetUserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	if userID, exists := c.Get(ContextKeyUserID); exists {
		if id, ok := userID.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}

// GetLogger returns the request-scoped logger set by the request logger middleware.
func GetLogger(c *gin.Context) *logrus.Entry {
	if v, exists := c.Get(ContextKeyLogger); exists {
		if entry, ok := v.(*logrus.Entry); ok {
			return entry
		}
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
