// Package handlers - Transaction (purchase) HTTP handlers.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Haleralex/storehub/internal/adapters/http/common"
	"github.com/Haleralex/storehub/internal/adapters/http/middleware"
	"github.com/Haleralex/storehub/internal/application/dtos"
)

// ============================================
// Use Case Interfaces
// ============================================

// CreateTransactionUseCase - интерфейс для оформления покупки.
type CreateTransactionUseCase interface {
	Execute(ctx context.Context, cmd dtos.CreateTransactionCommand) (*dtos.TransactionDTO, error)
}

// TransactionByIDUseCase - получение или удаление покупки по ID.
type TransactionByIDUseCase interface {
	Execute(ctx context.Context, id int64) (*dtos.TransactionDTO, error)
}

// UpdateTransactionUseCase - правка покупки администратором.
type UpdateTransactionUseCase interface {
	Execute(ctx context.Context, cmd dtos.UpdateTransactionCommand) (*dtos.TransactionDTO, error)
}

// ListTransactionsUseCase - покупки товара или пользователя.
type ListTransactionsUseCase interface {
	ByProduct(ctx context.Context, productID int64, query dtos.ListQuery) ([]dtos.TransactionDTO, error)
	ByUser(ctx context.Context, userID int64, query dtos.ListQuery) ([]dtos.TransactionDTO, error)
}

// ============================================
// Transaction Handler
// ============================================

// TransactionHandler обрабатывает HTTP запросы для покупок.
type TransactionHandler struct {
	createTransaction CreateTransactionUseCase
	getTransaction    TransactionByIDUseCase
	updateTransaction UpdateTransactionUseCase
	deleteTransaction TransactionByIDUseCase
	listTransactions  ListTransactionsUseCase
}

// NewTransactionHandler создаёт новый TransactionHandler.
func NewTransactionHandler(
	createTransaction CreateTransactionUseCase,
	getTransaction TransactionByIDUseCase,
	updateTransaction UpdateTransactionUseCase,
	deleteTransaction TransactionByIDUseCase,
	listTransactions ListTransactionsUseCase,
) *TransactionHandler {
	return &TransactionHandler{
		createTransaction: createTransaction,
		getTransaction:    getTransaction,
		updateTransaction: updateTransaction,
		deleteTransaction: deleteTransaction,
		listTransactions:  listTransactions,
	}
}

// ============================================
// Request DTOs (HTTP layer)
// ============================================

// CreateTransactionRequest - покупка amount единиц товара.
type CreateTransactionRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Amount    int   `json:"amount" binding:"required,gt=0"`
}

// UpdateTransactionRequest - правка покупки; пустые поля не меняются.
type UpdateTransactionRequest struct {
	UserID    *int64  `json:"user_id" binding:"omitempty,gt=0"`
	ProductID *int64  `json:"product_id" binding:"omitempty,gt=0"`
	Amount    *int    `json:"amount" binding:"omitempty,gt=0"`
	FullPrice *string `json:"full_price" binding:"omitempty,max=32"`
}

// ============================================
// HTTP Handlers
// ============================================

// CreateTransaction оформляет покупку от имени авторизованного пользователя.
//
// @Summary Purchase a product
// @Tags Transactions
// @Accept json
// @Produce json
// @Param request body CreateTransactionRequest true "Purchase"
// @Success 201 {object} common.APIResponse{data=dtos.TransactionDTO}
// @Failure 400 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, ok := middleware.GetAuthUserID(c)
	if !ok {
		common.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	var req CreateTransactionRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.createTransaction.Execute(c.Request.Context(), dtos.CreateTransactionCommand{
		UserID:    userID,
		ProductID: req.ProductID,
		Amount:    req.Amount,
	})
	if err != nil {
		middleware.RecordPurchase("failed", 0)
		common.HandleDomainError(c, err)
		return
	}

	middleware.RecordPurchase("created", result.Amount)
	common.Success(c, http.StatusCreated, result)
}

// GetTransaction возвращает покупку по ID.
//
// @Router /api/v1/transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	result, err := h.getTransaction.Execute(c.Request.Context(), id)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// ListMyTransactions возвращает покупки авторизованного пользователя.
//
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) ListMyTransactions(c *gin.Context) {
	userID, ok := middleware.GetAuthUserID(c)
	if !ok {
		common.UnauthorizedResponse(c, "User not authenticated")
		return
	}
	params := ParsePagination(c)

	result, err := h.listTransactions.ByUser(c.Request.Context(), userID, params.ListQuery())
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.SuccessWithMeta(c, http.StatusOK, result, params.Meta())
}

// ListProductTransactions возвращает покупки товара.
//
// @Router /api/v1/admin/products/{id}/transactions [get]
func (h *TransactionHandler) ListProductTransactions(c *gin.Context) {
	productID, ok := ParseID(c, "id")
	if !ok {
		return
	}
	params := ParsePagination(c)

	result, err := h.listTransactions.ByProduct(c.Request.Context(), productID, params.ListQuery())
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.SuccessWithMeta(c, http.StatusOK, result, params.Meta())
}

// UpdateTransaction правит покупку. Новый user_id/product_id должен существовать.
//
// @Summary Update a purchase
// @Tags Transactions
// @Accept json
// @Produce json
// @Param id path int true "Transaction ID"
// @Param request body UpdateTransactionRequest true "Patch"
// @Success 200 {object} common.APIResponse{data=dtos.TransactionDTO}
// @Failure 400 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/admin/transactions/{id} [patch]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	var req UpdateTransactionRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.updateTransaction.Execute(c.Request.Context(), dtos.UpdateTransactionCommand{
		TransactionID: id,
		UserID:        req.UserID,
		ProductID:     req.ProductID,
		Amount:        req.Amount,
		FullPrice:     req.FullPrice,
	})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// DeleteTransaction удаляет запись о покупке.
//
// @Router /api/v1/admin/transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	result, err := h.deleteTransaction.Execute(c.Request.Context(), id)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// RegisterProtectedRoutes регистрирует маршруты покупок для авторизованных.
func (h *TransactionHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	transactions := router.Group("/transactions")
	{
		transactions.POST("", h.CreateTransaction)
		transactions.GET("", h.ListMyTransactions)
		transactions.GET("/:id", h.GetTransaction)
	}
}

// RegisterAdminRoutes регистрирует административные маршруты.
func (h *TransactionHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.GET("/products/:id/transactions", h.ListProductTransactions)
	router.PATCH("/transactions/:id", h.UpdateTransaction)
	router.DELETE("/transactions/:id", h.DeleteTransaction)
}
