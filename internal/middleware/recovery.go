// internal/middleware/recovery.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/storefront-api/internal/i18n"
	"github.com/javajoker/storefront-api/internal/utils"
)

// Recovery logs the panic through the request logger and answers 500.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		utils.GetLogger(c).WithField("panic", recovered).Error("Recovered from panic")
		utils.AbortWithError(c, http.StatusInternalServerError, i18n.KeyServerError)
	})
}
