package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func corsRouter(config *CORSConfig) *gin.Engine {
	router := gin.New()
	router.Use(CORS(config))
	router.GET("/products", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.OPTIONS("/products", func(c *gin.Context) { c.String(http.StatusOK, "should not reach here") })
	return router
}

func corsRequest(router *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/products", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	shop := &CORSConfig{
		AllowOrigins:     []string{"https://shop.example.com/", "https://admin.example.com"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost},
		AllowHeaders:     []string{"Content-Type"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	}

	tests := []struct {
		name        string
		config      *CORSConfig
		method      string
		origin      string
		wantCode    int
		wantOrigin  string
		wantVary    bool
		wantMethods bool
	}{
		{"WildcardSimpleRequest", DefaultCORSConfig(), http.MethodGet, "http://localhost:3000", http.StatusOK, "*", false, false},
		{"WildcardPreflight", DefaultCORSConfig(), http.MethodOptions, "http://localhost:3000", http.StatusNoContent, "*", false, true},
		{"NilConfig", nil, http.MethodGet, "http://localhost:3000", http.StatusOK, "*", false, false},
		{"ListedOrigin", shop, http.MethodGet, "https://admin.example.com", http.StatusOK, "https://admin.example.com", true, false},
		{"ListedOriginTrailingSlash", shop, http.MethodGet, "https://shop.example.com", http.StatusOK, "https://shop.example.com", true, false},
		{"UnlistedOrigin", shop, http.MethodGet, "https://evil.example.com", http.StatusOK, "", false, false},
		{"NoOrigin", shop, http.MethodGet, "", http.StatusOK, "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := corsRequest(corsRouter(tt.config), tt.method, tt.origin)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantVary, w.Header().Get("Vary") == "Origin")
			assert.Equal(t, tt.wantMethods, w.Header().Get("Access-Control-Allow-Methods") != "")
		})
	}
}

func TestCORS_PreflightHeaders(t *testing.T) {
	config := ProductionCORSConfig([]string{"https://shop.example.com"})
	config.MaxAge = time.Hour

	w := corsRequest(corsRouter(config), http.MethodOptions, "https://shop.example.com")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	assert.NotContains(t, w.Body.String(), "should not reach here")
}

func TestCORS_WildcardWithCredentialsReflectsOrigin(t *testing.T) {
	config := DefaultCORSConfig()
	config.AllowCredentials = true

	w := corsRequest(corsRouter(config), http.MethodGet, "http://localhost:3000")

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestDefaultCORSConfig(t *testing.T) {
	config := DefaultCORSConfig()

	assert.Equal(t, []string{"*"}, config.AllowOrigins)
	assert.Contains(t, config.AllowMethods, http.MethodPatch)
	assert.Contains(t, config.AllowHeaders, "Authorization")
	assert.Contains(t, config.ExposeHeaders, "Retry-After")
	assert.False(t, config.AllowCredentials)
	assert.Equal(t, 24*time.Hour, config.MaxAge)
}

func TestProductionCORSConfig(t *testing.T) {
	origins := []string{"https://shop.example.com", "https://admin.example.com"}
	config := ProductionCORSConfig(origins)

	assert.Equal(t, origins, config.AllowOrigins)
	assert.True(t, config.AllowCredentials)
	assert.Contains(t, config.AllowMethods, http.MethodGet)
}
