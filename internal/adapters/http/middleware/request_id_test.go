package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Haleralex/storehub/internal/pkg/logger"
)

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"Generated", "", false},
		{"ClientProvided", "custom-request-123", true},
		{"ClientUUID", "0b6f6a4e-3c1a-4f59-9d0e-4c2b8a9f1e77", true},
		{"TooLong", strings.Repeat("a", 129), false},
		{"UnsafeChars", "id\nInjected: 1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ginID, ctxID string
			router := gin.New()
			router.Use(RequestID())
			router.GET("/test", func(c *gin.Context) {
				ginID = GetRequestID(c)
				ctxID = logger.GetRequestID(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.incoming != "" {
				req.Header[RequestIDHeader] = []string{tt.incoming}
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			got := w.Header().Get(RequestIDHeader)
			if tt.keep {
				assert.Equal(t, tt.incoming, got)
			} else {
				assert.Len(t, got, 36)
				assert.NotEqual(t, tt.incoming, got)
			}
			assert.Equal(t, got, ginID)
			assert.Equal(t, got, ctxID)
		})
	}
}

func TestGetRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetRequestID(c))

	c.Set(RequestIDContextKey, "test-id-123")
	assert.Equal(t, "test-id-123", GetRequestID(c))

	c.Set(RequestIDContextKey, 12345)
	assert.Empty(t, GetRequestID(c), "не строка - пустой id")
}
