package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Haleralex/storehub/internal/adapters/http/common"
)

// BodyLimit ограничивает тело запроса limit байтами.
//
// Запрос с заявленным Content-Length больше лимита отклоняется сразу (413).
// Остальные читают через http.MaxBytesReader: handler получит
// *http.MaxBytesError при разборе формы или JSON.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			common.PayloadTooLargeResponse(c, limit)
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
