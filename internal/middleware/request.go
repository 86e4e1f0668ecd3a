package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bidsmart-backend/internal/logger"
	"bidsmart-backend/internal/models"
)

const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
	AdminKeyHeader  = "X-Admin-Key"
)

// RequestID reuses an incoming X-Request-ID or assigns a new uuid.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// RequestLogger logs one line per request, at error level for 5xx and warn
// for 4xx.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		status := c.Writer.Status()
		kv := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start),
			"request_id", GetRequestID(c),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "errors", c.Errors.String())
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request completed", kv...)
		case status >= http.StatusBadRequest:
			log.Warn("request completed", kv...)
		default:
			log.Info("request completed", kv...)
		}
	}
}

// Recovery turns a panic into a 500 and logs it with the request id.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					"request_id", GetRequestID(c),
					"path", c.Request.URL.Path,
					"panic", fmt.Sprint(r),
					"stack", string(debug.Stack()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
					Error: "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// AdminAuth guards maintenance routes with a shared key. Without a
// configured key the routes answer 503.
func AdminAuth(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, models.ErrorResponse{
				Error:   "admin api disabled",
				Message: "ADMIN_API_KEY is not configured",
			})
			return
		}
		got := c.GetHeader(AdminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(adminKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid admin key"})
			return
		}
		c.Next()
	}
}

// ServiceKeyAuth accepts only the Supabase service-role key as bearer token.
func ServiceKeyAuth(serviceRoleKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok || serviceRoleKey == "" || subtle.ConstantTimeCompare([]byte(token), []byte(serviceRoleKey)) != 1 {
			unauthorized(c, "unauthorized", "")
			return
		}
		c.Next()
	}
}
