package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Haleralex/storehub/internal/adapters/http/common"
	"github.com/Haleralex/storehub/internal/adapters/http/middleware"
	"github.com/Haleralex/storehub/internal/application/dtos"
)

// RefreshTokenService - хранилище refresh tokens (token.Service).
type RefreshTokenService interface {
	Save(ctx context.Context, cmd dtos.SaveRefreshTokenCommand) (*dtos.RefreshTokenDTO, error)
	FindByToken(ctx context.Context, value string) (*dtos.RefreshTokenDTO, error)
	DeleteByUserID(ctx context.Context, userID int64) error
	DeleteToken(ctx context.Context, value string) error
}

// TokenHandler - управление сохранёнными refresh tokens.
type TokenHandler struct {
	tokens RefreshTokenService
}

// NewTokenHandler создаёт новый TokenHandler.
func NewTokenHandler(tokens RefreshTokenService) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

// RefreshTokenRequest - значение токена.
type RefreshTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// SaveToken сохраняет (или заменяет) токен пользователя.
//
// @Router /api/v1/admin/users/{id}/refresh-token [put]
func (h *TokenHandler) SaveToken(c *gin.Context) {
	userID, ok := ParseID(c, "id")
	if !ok {
		return
	}

	var req RefreshTokenRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.tokens.Save(c.Request.Context(), dtos.SaveRefreshTokenCommand{UserID: userID, Token: req.Token})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// DeleteUserToken удаляет токен пользователя.
//
// @Router /api/v1/admin/users/{id}/refresh-token [delete]
func (h *TokenHandler) DeleteUserToken(c *gin.Context) {
	userID, ok := ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.tokens.DeleteByUserID(c.Request.Context(), userID); err != nil {
		common.HandleDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// LookupToken ищет сохранённый токен по значению.
//
// @Router /api/v1/admin/refresh-tokens/lookup [post]
func (h *TokenHandler) LookupToken(c *gin.Context) {
	var req RefreshTokenRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.tokens.FindByToken(c.Request.Context(), req.Token)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// RevokeToken удаляет токен по значению.
//
// @Router /api/v1/admin/refresh-tokens/revoke [post]
func (h *TokenHandler) RevokeToken(c *gin.Context) {
	var req RefreshTokenRequest
	if !BindJSON(c, &req) {
		return
	}

	if err := h.tokens.DeleteToken(c.Request.Context(), req.Token); err != nil {
		common.HandleDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Logout удаляет refresh token авторизованного пользователя.
//
// @Router /api/v1/logout [post]
func (h *TokenHandler) Logout(c *gin.Context) {
	userID, ok := middleware.GetAuthUserID(c)
	if !ok {
		common.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	if err := h.tokens.DeleteByUserID(c.Request.Context(), userID); err != nil {
		common.HandleDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterProtectedRoutes регистрирует маршруты для авторизованных.
func (h *TokenHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	router.POST("/logout", h.Logout)
}

// RegisterAdminRoutes регистрирует административные маршруты.
func (h *TokenHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.PUT("/users/:id/refresh-token", h.SaveToken)
	router.DELETE("/users/:id/refresh-token", h.DeleteUserToken)
	router.POST("/refresh-tokens/lookup", h.LookupToken)
	router.POST("/refresh-tokens/revoke", h.RevokeToken)
}
