// Package handlers - Product HTTP handlers.
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

// ============================================
// Use Case Interfaces
// ============================================

// ProductService - use cases товара (product.Service).
type ProductService interface {
	Create(ctx context.Context, cmd dtos.CreateProductCommand) (*dtos.ProductDTO, error)
	Get(ctx context.Context, id int64) (*dtos.ProductDTO, error)
	List(ctx context.Context, q dtos.ListQuery) ([]dtos.ProductDTO, error)
	Update(ctx context.Context, cmd dtos.UpdateProductCommand) (*dtos.ProductDTO, error)
	Delete(ctx context.Context, id int64) (*dtos.DeleteResultDTO, error)
}

// ProductAttributeService - связи Product<->Attribute (attribute.LinkService).
type ProductAttributeService interface {
	List(ctx context.Context, productID int64) ([]dtos.ProductAttributeDTO, error)
	Add(ctx context.Context, cmd dtos.LinkCommand) (*dtos.ProductAttributeDTO, error)
	Change(ctx context.Context, cmd dtos.LinkCommand) (*dtos.ProductAttributeDTO, error)
	Remove(ctx context.Context, cmd dtos.LinkCommand) error
}

// ============================================
// Product Handler
// ============================================

// ProductHandler обрабатывает HTTP запросы каталога товаров.
type ProductHandler struct {
	products   ProductService
	attributes ProductAttributeService
}

// NewProductHandler создаёт новый ProductHandler.
func NewProductHandler(products ProductService, attributes ProductAttributeService) *ProductHandler {
	return &ProductHandler{
		products:   products,
		attributes: attributes,
	}
}

// ============================================
// Request DTOs (HTTP layer)
// ============================================

// CreateProductRequest - тело создания товара.
//
// Как JSON body или как JSON в поле "data" multipart формы
// (тогда файлы передаются в поле "photos").
type CreateProductRequest struct {
	ProductName string            `json:"product_name" binding:"required,min=1,max=255"`
	Description string            `json:"description" binding:"max=5000"`
	Price       string            `json:"price" binding:"required,price"`
	Quantity    int               `json:"quantity" binding:"min=0"`
	Category    string            `json:"category" binding:"required"`
	Vendor      string            `json:"vendor" binding:"required"`
	Attributes  map[string]string `json:"attributes"`
}

// UpdateProductRequest - частичное обновление. Отсутствующее поле не меняется.
type UpdateProductRequest struct {
	ProductName *string `json:"product_name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	Price       *string `json:"price" binding:"omitempty,price"`
	Quantity    *int    `json:"quantity" binding:"omitempty,min=0"`
	IsActive    *bool   `json:"is_active"`
	Category    *string `json:"category"`
	Vendor      *string `json:"vendor"`
}

// ProductAttributeRequest - значение атрибута товара.
type ProductAttributeRequest struct {
	Value string `json:"value" binding:"max=255"`
}

// ============================================
// HTTP Handlers
// ============================================

// CreateProduct создаёт товар вместе с категорией, поставщиком,
// атрибутами и фотографиями в одной транзакции.
//
// @Summary Create a product
// @Tags Products
// @Accept json,mpfd
// @Produce json
// @Success 201 {object} common.APIResponse{data=dtos.ProductDTO}
// @Failure 400 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Router /api/v1/products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	var photos []dtos.FileUpload

	if isMultipart(c) {
		if !parseMultipart(c) || !bindForm(c, &req) {
			return
		}
		uploads, release, err := openUploads(c, "photos")
		if err != nil {
			common.BadRequestResponse(c, "Invalid multipart form: "+err.Error())
			return
		}
		defer release()
		photos = uploads
	} else if !BindJSON(c, &req) {
		return
	}

	result, err := h.products.Create(c.Request.Context(), dtos.CreateProductCommand{
		ProductName:  req.ProductName,
		Description:  req.Description,
		Price:        req.Price,
		Quantity:     req.Quantity,
		CategoryName: req.Category,
		VendorName:   req.Vendor,
		Attributes:   req.Attributes,
		Photos:       photos,
	})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	middleware.RecordCatalogWrite(string(entities.KindProduct), "create")
	common.Success(c, http.StatusCreated, result)
}

// GetProduct возвращает товар со всеми связями.
//
// @Summary Get product by ID
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} common.APIResponse{data=dtos.ProductDTO}
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	result, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// ListProducts возвращает страницу товаров.
//
// @Summary List products
// @Tags Products
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Success 200 {object} common.APIResponse{data=[]dtos.ProductDTO}
// @Router /api/v1/products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	params := ParsePagination(c)

	result, err := h.products.List(c.Request.Context(), params.ListQuery())
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.SuccessWithMeta(c, http.StatusOK, result, params.Meta())
}

// UpdateProduct частично обновляет товар.
//
// @Summary Update product
// @Tags Products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} common.APIResponse{data=dtos.ProductDTO}
// @Failure 404 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Router /api/v1/products/{id} [patch]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.products.Update(c.Request.Context(), dtos.UpdateProductCommand{
		ProductID:    id,
		ProductName:  req.ProductName,
		Description:  req.Description,
		Price:        req.Price,
		Quantity:     req.Quantity,
		IsActive:     req.IsActive,
		CategoryName: req.Category,
		VendorName:   req.Vendor,
	})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	middleware.RecordCatalogWrite(string(entities.KindProduct), "update")
	common.Success(c, http.StatusOK, result)
}

// DeleteProduct удаляет товар; отзывы и покупки отвязываются, фото удаляются.
//
// @Summary Delete product
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} common.APIResponse{data=dtos.DeleteResultDTO}
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	result, err := h.products.Delete(c.Request.Context(), id)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	middleware.RecordCatalogWrite(string(entities.KindProduct), "delete")
	common.Success(c, http.StatusOK, result)
}

// ============================================
// Product attributes
// ============================================

// ListAttributes возвращает атрибуты товара.
//
// @Router /api/v1/products/{id}/attributes [get]
func (h *ProductHandler) ListAttributes(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	result, err := h.attributes.List(c.Request.Context(), id)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// PutAttribute добавляет атрибут товару (POST) или меняет его значение (PUT).
//
// @Router /api/v1/products/{id}/attributes/{name} [post]
// @Router /api/v1/products/{id}/attributes/{name} [put]
func (h *ProductHandler) PutAttribute(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	var req ProductAttributeRequest
	if !BindJSON(c, &req) {
		return
	}

	cmd := dtos.LinkCommand{ProductID: id, AttributeName: c.Param("name"), Value: req.Value}

	var (
		result *dtos.ProductAttributeDTO
		err    error
		status = http.StatusOK
		op     = "update"
	)
	if c.Request.Method == http.MethodPost {
		result, err = h.attributes.Add(c.Request.Context(), cmd)
		status, op = http.StatusCreated, "create"
	} else {
		result, err = h.attributes.Change(c.Request.Context(), cmd)
	}
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	middleware.RecordCatalogWrite(string(entities.KindProductAttribute), op)
	common.Success(c, status, result)
}

// DeleteAttribute убирает атрибут у товара.
//
// @Router /api/v1/products/{id}/attributes/{name} [delete]
func (h *ProductHandler) DeleteAttribute(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	err := h.attributes.Remove(c.Request.Context(), dtos.LinkCommand{
		ProductID:     id,
		AttributeName: c.Param("name"),
	})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	middleware.RecordCatalogWrite(string(entities.KindProductAttribute), "delete")
	c.Status(http.StatusNoContent)
}

// RegisterRoutes регистрирует публичные маршруты чтения.
func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup) {
	products := router.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
		products.GET("/:id/attributes", h.ListAttributes)
	}
}

// RegisterAdminRoutes регистрирует маршруты изменения каталога.
func (h *ProductHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	products := router.Group("/products")
	{
		products.POST("", h.CreateProduct)
		products.PATCH("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
		products.POST("/:id/attributes/:name", h.PutAttribute)
		products.PUT("/:id/attributes/:name", h.PutAttribute)
		products.DELETE("/:id/attributes/:name", h.DeleteAttribute)
	}
}
