package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Haleralex/storehub/internal/adapters/http/common"
	"github.com/Haleralex/storehub/internal/adapters/http/middleware"
	"github.com/Haleralex/storehub/internal/application/dtos"
	"github.com/Haleralex/storehub/internal/domain/entities"
)

// CommentService - use cases отзывов (comment.Service).
type CommentService interface {
	Create(ctx context.Context, cmd dtos.CreateCommentCommand) (*dtos.CommentDTO, error)
	Get(ctx context.Context, id int64) (*dtos.CommentDTO, error)
	ListByProduct(ctx context.Context, productID int64, query dtos.ListQuery) ([]dtos.CommentDTO, error)
	Update(ctx context.Context, id int64, title, content *string) (*dtos.CommentDTO, error)
	Delete(ctx context.Context, id int64) (*dtos.CommentDTO, error)
}

// CommentHandler обрабатывает отзывы на товары.
type CommentHandler struct {
	comments CommentService
}

// NewCommentHandler создаёт новый CommentHandler.
func NewCommentHandler(comments CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// CreateCommentRequest - новый отзыв. Автор - авторизованный пользователь.
type CreateCommentRequest struct {
	Title   string `json:"title" binding:"required,max=255"`
	Content string `json:"content" binding:"required"`
}

// UpdateCommentRequest - правка отзыва.
type UpdateCommentRequest struct {
	Title   *string `json:"title" binding:"omitempty,min=1,max=255"`
	Content *string `json:"content" binding:"omitempty,min=1"`
}

// CreateComment оставляет отзыв на товар.
//
// @Router /api/v1/products/{id}/comments [post]
func (h *CommentHandler) CreateComment(c *gin.Context) {
	productID, ok := ParseID(c, "id")
	if !ok {
		return
	}
	userID, ok := middleware.GetAuthUserID(c)
	if !ok {
		common.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req CreateCommentRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.comments.Create(c.Request.Context(), dtos.CreateCommentCommand{
		UserID:    userID,
		ProductID: productID,
		Title:     req.Title,
		Content:   req.Content,
	})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	middleware.RecordCatalogWrite(string(entities.KindComment), "create")
	common.Success(c, http.StatusCreated, result)
}

// ListComments возвращает отзывы товара.
//
// @Router /api/v1/products/{id}/comments [get]
func (h *CommentHandler) ListComments(c *gin.Context) {
	productID, ok := ParseID(c, "id")
	if !ok {
		return
	}
	params := ParsePagination(c)

	result, err := h.comments.ListByProduct(c.Request.Context(), productID, params.ListQuery())
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.SuccessWithMeta(c, http.StatusOK, result, params.Meta())
}

// GetComment возвращает отзыв.
//
// @Router /api/v1/comments/{id} [get]
func (h *CommentHandler) GetComment(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	result, err := h.comments.Get(c.Request.Context(), id)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// UpdateComment правит заголовок и/или текст.
//
// @Router /api/v1/comments/{id} [patch]
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	var req UpdateCommentRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.comments.Update(c.Request.Context(), id, req.Title, req.Content)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	middleware.RecordCatalogWrite(string(entities.KindComment), "update")
	common.Success(c, http.StatusOK, result)
}

// DeleteComment удаляет отзыв.
//
// @Router /api/v1/comments/{id} [delete]
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	result, err := h.comments.Delete(c.Request.Context(), id)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	middleware.RecordCatalogWrite(string(entities.KindComment), "delete")
	common.Success(c, http.StatusOK, result)
}

// RegisterRoutes регистрирует публичные маршруты чтения.
func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/products/:id/comments", h.ListComments)
	router.GET("/comments/:id", h.GetComment)
}

// RegisterProtectedRoutes регистрирует маршруты для авторизованных.
func (h *CommentHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	router.POST("/products/:id/comments", h.CreateComment)
}

// RegisterAdminRoutes регистрирует модерацию отзывов.
func (h *CommentHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.PATCH("/comments/:id", h.UpdateComment)
	router.DELETE("/comments/:id", h.DeleteComment)
}
