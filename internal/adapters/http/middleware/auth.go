// Package middleware - Authentication middleware.
//
// Bearer-токен валидируется через AuthConfig.TokenValidator:
// JWTTokenValidator в production, MockTokenValidator в development.
package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Haleralex/storehub/internal/adapters/http/common"
	"github.com/Haleralex/storehub/internal/pkg/logger"
)

const (
	// AuthUserIDKey - ключ для хранения User ID в контексте
	AuthUserIDKey = "auth_user_id"
	// AuthUserEmailKey - ключ для хранения email пользователя
	AuthUserEmailKey = "auth_user_email"
	// AuthUserRoleKey - ключ для хранения роли пользователя
	AuthUserRoleKey = "auth_user_role"
)

// AuthConfig - конфигурация для authentication middleware.
type AuthConfig struct {
	// TokenValidator - JWTTokenValidator или mock в development
	TokenValidator func(token string) (*AuthClaims, error)
	// SkipPaths - пути, которые не требуют авторизации
	SkipPaths []string
}

// AuthClaims - данные из токена авторизации.
type AuthClaims struct {
	UserID string
	Email  string
	Role   string
	// Exp - нулевое значение = без срока
	Exp time.Time
}

// Auth проверяет Bearer токен и кладёт claims в gin.Context.
// user_id дополнительно попадает в context запроса (логи use case'ов) и в текущий span.
func Auth(config *AuthConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skip[path] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithUnauthorized(c, "Authorization header is required")
			return
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			abortWithUnauthorized(c, "Invalid authorization header format")
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			abortWithUnauthorized(c, "Token is required")
			return
		}

		claims, err := config.TokenValidator(token)
		if err != nil {
			abortWithUnauthorized(c, "Invalid or expired token")
			return
		}
		if !claims.Exp.IsZero() && claims.Exp.Before(time.Now()) {
			abortWithUnauthorized(c, "Token has expired")
			return
		}

		c.Set(AuthUserIDKey, claims.UserID)
		c.Set(AuthUserEmailKey, claims.Email)
		c.Set(AuthUserRoleKey, claims.Role)

		ctx := logger.WithUserID(c.Request.Context(), claims.UserID)
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.String("enduser.id", claims.UserID),
			attribute.String("enduser.role", claims.Role),
		)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortWithUnauthorized(c *gin.Context, message string) {
	common.UnauthorizedResponse(c, message)
	c.Abort()
}

// RequireRole пропускает только перечисленные роли. Ставится после Auth.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		userRole := GetAuthUserRole(c)
		if userRole == "" {
			abortWithForbidden(c, "User role not found")
			return
		}
		if _, ok := allowed[userRole]; !ok {
			abortWithForbidden(c, "Insufficient permissions")
			return
		}

		c.Next()
	}
}

func abortWithForbidden(c *gin.Context, message string) {
	common.ForbiddenResponse(c, message)
	c.Abort()
}

// ============================================
// gin.Context accessors
// ============================================

// GetAuthUserID возвращает ID авторизованного пользователя.
// false - пользователь не авторизован или subject не числовой.
func GetAuthUserID(c *gin.Context) (int64, bool) {
	uid, err := strconv.ParseInt(c.GetString(AuthUserIDKey), 10, 64)
	if err != nil || uid <= 0 {
		return 0, false
	}
	return uid, true
}

// GetAuthUserEmail - "" без Auth.
func GetAuthUserEmail(c *gin.Context) string {
	return c.GetString(AuthUserEmailKey)
}

// GetAuthUserRole - "" без Auth.
func GetAuthUserRole(c *gin.Context) string {
	return c.GetString(AuthUserRoleKey)
}

// ============================================
// Development
// ============================================

// MockAdminPrefix - токен "admin:<id>" даёт роль admin.
const MockAdminPrefix = "admin:"

// MockTokenValidator принимает любой токен без проверки подписи: токен = user_id.
// Включается только config.Auth.EnableMockAuth в development.
func MockTokenValidator(token string) (*AuthClaims, error) {
	claims := &AuthClaims{
		UserID: token,
		Email:  "user" + token + "@storehub.local",
		Role:   "user",
		Exp:    time.Now().Add(24 * time.Hour),
	}
	if id, ok := strings.CutPrefix(token, MockAdminPrefix); ok {
		claims.UserID = id
		claims.Email = "admin" + id + "@storehub.local"
		claims.Role = "admin"
	}
	return claims, nil
}
