package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Haleralex/storehub/internal/pkg/logger"
)

// fixedValidator: "good" - валиден, "stale" - истёк, остальное - ошибка подписи.
func fixedValidator(token string) (*AuthClaims, error) {
	switch token {
	case "good":
		return &AuthClaims{UserID: "17", Email: "buyer@storehub.local", Role: "user", Exp: time.Now().Add(time.Hour)}, nil
	case "forever":
		return &AuthClaims{UserID: "18", Role: "user"}, nil
	case "stale":
		return &AuthClaims{UserID: "17", Role: "user", Exp: time.Now().Add(-time.Minute)}, nil
	default:
		return nil, errors.New("signature is invalid")
	}
}

func authRouter(config *AuthConfig, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(config))
	if len(roles) > 0 {
		router.Use(RequireRole(roles...))
	}
	handler := func(c *gin.Context) {
		id, _ := GetAuthUserID(c)
		c.JSON(http.StatusOK, gin.H{
			"id":    id,
			"email": GetAuthUserEmail(c),
			"role":  GetAuthUserRole(c),
			"ctx":   logger.GetUserID(c.Request.Context()),
		})
	}
	router.GET("/products", handler)
	router.GET("/health", handler)
	return router
}

func authRequest(router *gin.Engine, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	router := authRouter(&AuthConfig{TokenValidator: fixedValidator, SkipPaths: []string{"/health"}})

	tests := []struct {
		name     string
		path     string
		header   string
		wantCode int
		wantMsg  string
	}{
		{"Valid", "/products", "Bearer good", http.StatusOK, ""},
		{"LowercaseScheme", "/products", "bearer good", http.StatusOK, ""},
		{"NoExpiry", "/products", "Bearer forever", http.StatusOK, ""},
		{"SkipPath", "/health", "", http.StatusOK, ""},
		{"MissingHeader", "/products", "", http.StatusUnauthorized, "Authorization header is required"},
		{"BasicScheme", "/products", "Basic good", http.StatusUnauthorized, "Invalid authorization header format"},
		{"NoSpace", "/products", "Bearergood", http.StatusUnauthorized, "Invalid authorization header format"},
		{"EmptyToken", "/products", "Bearer   ", http.StatusUnauthorized, "Token is required"},
		{"BadSignature", "/products", "Bearer forged", http.StatusUnauthorized, "Invalid or expired token"},
		{"Expired", "/products", "Bearer stale", http.StatusUnauthorized, "Token has expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := authRequest(router, tt.path, tt.header)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantMsg != "" {
				assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
				assert.Contains(t, w.Body.String(), tt.wantMsg)
			}
		})
	}
}

func TestAuth_ClaimsReachHandler(t *testing.T) {
	router := authRouter(&AuthConfig{TokenValidator: fixedValidator})

	w := authRequest(router, "/products", "Bearer good")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":17,"email":"buyer@storehub.local","role":"user","ctx":"17"}`, w.Body.String())
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		roles    []string
		token    string
		wantCode int
		wantMsg  string
	}{
		{"Allowed", []string{"admin"}, "admin:1", http.StatusOK, ""},
		{"OneOfMany", []string{"admin", "user"}, "5", http.StatusOK, ""},
		{"Insufficient", []string{"admin"}, "5", http.StatusForbidden, "Insufficient permissions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := authRouter(&AuthConfig{TokenValidator: MockTokenValidator}, tt.roles...)

			w := authRequest(router, "/products", "Bearer "+tt.token)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantMsg != "" {
				assert.Contains(t, w.Body.String(), "FORBIDDEN")
				assert.Contains(t, w.Body.String(), tt.wantMsg)
			}
		})
	}
}

func TestRequireRole_WithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequireRole("admin"))
	router.GET("/admin", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := authRequest(router, "/admin", "")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "User role not found")
}

func TestGetAuthUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		value  any
		set    bool
		wantID int64
		wantOK bool
	}{
		{"ValidID", "17", true, 17, true},
		{"NotSet", nil, false, 0, false},
		{"InvalidType", 12345, true, 0, false},
		{"NotNumeric", "not-a-number", true, 0, false},
		{"NonPositive", "0", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			if tt.set {
				c.Set(AuthUserIDKey, tt.value)
			}

			id, ok := GetAuthUserID(c)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestGetAuthUserEmailAndRole_WrongType(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(AuthUserEmailKey, 12345)
	c.Set(AuthUserRoleKey, true)

	assert.Empty(t, GetAuthUserEmail(c))
	assert.Empty(t, GetAuthUserRole(c))
}

func TestMockTokenValidator(t *testing.T) {
	tests := []struct {
		token    string
		wantID   string
		wantRole string
	}{
		{"42", "42", "user"},
		{"admin:7", "7", "admin"},
		{"administrator", "administrator", "user"},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			claims, err := MockTokenValidator(tt.token)

			require.NoError(t, err)
			assert.Equal(t, tt.wantID, claims.UserID)
			assert.Equal(t, tt.wantRole, claims.Role)
			assert.Contains(t, claims.Email, "@storehub.local")
			assert.True(t, claims.Exp.After(time.Now()))
		})
	}
}
