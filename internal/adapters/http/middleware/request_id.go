// Package middleware содержит HTTP middleware: request id, auth, CORS,
// логирование, recovery, rate limit и Prometheus метрики.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Haleralex/storehub/internal/adapters/http/common"
)

const (
	// RequestIDHeader - имя заголовка для Request ID
	RequestIDHeader = common.RequestIDHeader
	// RequestIDContextKey - ключ Request ID в gin.Context
	RequestIDContextKey = common.RequestIDKey

	maxRequestIDLen = 128
)

// RequestID берёт X-Request-ID клиента или генерирует UUID.
// Некорректный клиентский id (длинный, с управляющими символами) заменяется новым.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = uuid.NewString()
		}

		common.SetRequestID(c, requestID)

		c.Next()
	}
}

// GetRequestID извлекает Request ID из контекста Gin.
func GetRequestID(c *gin.Context) string {
	return common.GetRequestID(c)
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, r := range id {
		ok := r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' ||
			r == '-' || r == '_' || r == '.' || r == ':'
		if !ok {
			return false
		}
	}
	return true
}
