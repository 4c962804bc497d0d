// internal/middleware/logging.go
package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-api/internal/models"
	"github.com/javajoker/storefront-api/internal/observability"
	"github.com/javajoker/storefront-api/internal/repository"
	"github.com/javajoker/storefront-api/internal/utils"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger attaches a request-scoped logger, then logs and measures the request once it completes.
func RequestLogger(logger *logrus.Entry, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)
		c.Set(utils.ContextKeyLogger, logger.WithField("request_id", requestID))

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		statusCode := strconv.Itoa(status)

		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, statusCode).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route, statusCode).Observe(duration.Seconds())

		fields := logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"route":      route,
			"status":     status,
			"duration":   duration.Milliseconds(),
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		}
		if userID, ok := utils.GetUserIDFromContext(c); ok {
			fields["user_id"] = userID
		}

		entry := utils.GetLogger(c).WithFields(fields)
		if status >= http.StatusBadRequest {
			entry.Warn("Request processed")
			return
		}
		entry.Info("Request processed")
	}
}

// AuditLog records successful mutations in the audit trail. It is mounted on admin routes.
func AuditLog(audit repository.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		// Read request body; multipart uploads are not copied.
		var requestBody []byte
		if c.Request.Body != nil && !strings.HasPrefix(c.ContentType(), "multipart/") {
			requestBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		logger := utils.GetLogger(c)

		var requestData map[string]interface{}
		if len(requestBody) > 0 {
			if err := json.Unmarshal(requestBody, &requestData); err != nil {
				logger.WithError(err).Debug("Audit payload is not a JSON object")
			}
		}

		entry := &models.AuditLog{
			Action:       c.Request.Method + " " + c.FullPath(),
			ResourceType: extractResourceType(c.Request.URL.Path),
			StatusCode:   c.Writer.Status(),
			IPAddress:    c.ClientIP(),
			UserAgent:    c.Request.UserAgent(),
			NewValues:    models.JSONB(requestData),
		}
		if userID, ok := utils.GetUserIDFromContext(c); ok {
			entry.UserID = &userID
		}
		if resourceID := extractResourceID(c.Request.URL.Path); resourceID != nil {
			entry.ResourceID = resourceID
		}

		ctx := context.WithoutCancel(c.Request.Context())

		// Save audit log asynchronously
		go func() {
			if err := audit.Create(ctx, entry); err != nil {
				logger.WithError(err).Error("Failed to create audit log")
			}
		}()
	}
}

// extractResourceType returns the first path segment after /api, e.g. "products".
func extractResourceType(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "api" {
		return parts[1]
	}
	if len(parts) >= 1 && parts[0] != "" {
		return parts[0]
	}
	return "unknown"
}

func extractResourceID(path string) *uuid.UUID {
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if parsed, err := uuid.Parse(part); err == nil {
			return &parsed
		}
	}
	return nil
}
