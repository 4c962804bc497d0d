// internal/handlers/handlers.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/storefront-api/internal/i18n"
	"github.com/javajoker/storefront-api/internal/models"
	"github.com/javajoker/storefront-api/internal/utils"
)

// bindJSON decodes the body into req and answers 400 when it is malformed.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationField, "input"), err.Error())
		return false
	}
	return true
}

// uuidParam parses a path parameter, answering 404 with notFoundKey when it is not a uuid.
func uuidParam(c *gin.Context, name, notFoundKey string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.ErrorResponse(c, http.StatusNotFound, notFoundKey, nil)
		return uuid.Nil, false
	}
	return id, true
}

func currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := utils.GetUserFromContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, i18n.KeyAuthRequired, nil)
		return nil, false
	}
	return user, true
}

// floatQuery returns nil when the parameter is absent or not a number.
func floatQuery(c *gin.Context, name string) *float64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
