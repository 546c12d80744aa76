// Package handlers - Catalog directory handlers (categories, vendors, attributes, roles).
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

// DirectoryService - CRUD справочника (catalog.Directory[T]).
type DirectoryService[T entities.Identifiable] interface {
	Find(ctx context.Context, id int64) (T, error)
	FindAll(ctx context.Context, q dtos.ListQuery) ([]T, error)
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, id int64, patch entities.Fields) (T, error)
	Delete(ctx context.Context, id int64) (T, error)
}

// DirectoryRequest - создание записи справочника.
// Description используется только ролями.
type DirectoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255"`
	Description string `json:"description" binding:"max=255"`
}

// DirectoryPatchRequest - частичное обновление записи справочника.
type DirectoryPatchRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,max=255"`
}

// DirectoryHandler - HTTP адаптер одного справочника.
type DirectoryHandler[T entities.Identifiable] struct {
	svc   DirectoryService[T]
	path  string
	kind  entities.Kind
	build func(req DirectoryRequest) (T, error)
	patch func(req DirectoryPatchRequest) entities.Fields
	toDTO func(T) any
}

// NewCategoryHandler обслуживает /categories.
func NewCategoryHandler(svc DirectoryService[*entities.Category]) *DirectoryHandler[*entities.Category] {
	return &DirectoryHandler[*entities.Category]{
		svc:  svc,
		path: "/categories",
		kind: entities.KindCategory,
		build: func(req DirectoryRequest) (*entities.Category, error) {
			return entities.NewCategory(req.Name)
		},
		patch: namePatch("category_name"),
		toDTO: func(c *entities.Category) any { return dtos.ToCategoryDTO(c) },
	}
}

// NewVendorHandler обслуживает /vendors.
func NewVendorHandler(svc DirectoryService[*entities.Vendor]) *DirectoryHandler[*entities.Vendor] {
	return &DirectoryHandler[*entities.Vendor]{
		svc:  svc,
		path: "/vendors",
		kind: entities.KindVendor,
		build: func(req DirectoryRequest) (*entities.Vendor, error) {
			return entities.NewVendor(req.Name)
		},
		patch: namePatch("company_name"),
		toDTO: func(v *entities.Vendor) any { return dtos.ToVendorDTO(v) },
	}
}

// NewAttributeHandler обслуживает /attributes.
func NewAttributeHandler(svc DirectoryService[*entities.Attribute]) *DirectoryHandler[*entities.Attribute] {
	return &DirectoryHandler[*entities.Attribute]{
		svc:  svc,
		path: "/attributes",
		kind: entities.KindAttribute,
		build: func(req DirectoryRequest) (*entities.Attribute, error) {
			return entities.NewAttribute(req.Name)
		},
		patch: namePatch("attribute_name"),
		toDTO: func(a *entities.Attribute) any { return dtos.ToAttributeDTO(a) },
	}
}

// NewRoleHandler обслуживает /roles. name -> value.
func NewRoleHandler(svc DirectoryService[*entities.Role]) *DirectoryHandler[*entities.Role] {
	return &DirectoryHandler[*entities.Role]{
		svc:  svc,
		path: "/roles",
		kind: entities.KindRole,
		build: func(req DirectoryRequest) (*entities.Role, error) {
			return &entities.Role{Value: req.Name, Description: req.Description}, nil
		},
		patch: func(req DirectoryPatchRequest) entities.Fields {
			f := namePatch("value")(req)
			if req.Description != nil {
				f["description"] = *req.Description
			}
			return f
		},
		toDTO: func(r *entities.Role) any { return dtos.ToRoleDTO(r) },
	}
}

func namePatch(field string) func(DirectoryPatchRequest) entities.Fields {
	return func(req DirectoryPatchRequest) entities.Fields {
		f := entities.Fields{}
		if req.Name != nil {
			f[field] = *req.Name
		}
		return f
	}
}

// ============================================
// HTTP Handlers
// ============================================

// Create создаёт запись справочника (409 при дубликате имени).
func (h *DirectoryHandler[T]) Create(c *gin.Context) {
	var req DirectoryRequest
	if !BindJSON(c, &req) {
		return
	}

	rec, err := h.build(req)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	created, err := h.svc.Create(c.Request.Context(), rec)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	middleware.RecordCatalogWrite(string(h.kind), "create")
	common.Success(c, http.StatusCreated, h.toDTO(created))
}

// Get возвращает запись по ID.
func (h *DirectoryHandler[T]) Get(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	rec, err := h.svc.Find(c.Request.Context(), id)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, h.toDTO(rec))
}

// List возвращает страницу записей.
func (h *DirectoryHandler[T]) List(c *gin.Context) {
	params := ParsePagination(c)

	recs, err := h.svc.FindAll(c.Request.Context(), params.ListQuery())
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	out := make([]any, 0, len(recs))
	for _, r := range recs {
		out = append(out, h.toDTO(r))
	}

	common.SuccessWithMeta(c, http.StatusOK, out, params.Meta())
}

// Update меняет имя (и описание роли).
func (h *DirectoryHandler[T]) Update(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	var req DirectoryPatchRequest
	if !BindJSON(c, &req) {
		return
	}

	rec, err := h.svc.Update(c.Request.Context(), id, h.patch(req))
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	middleware.RecordCatalogWrite(string(h.kind), "update")
	common.Success(c, http.StatusOK, h.toDTO(rec))
}

// Delete удаляет запись; ссылающиеся товары и пользователи отвязываются.
func (h *DirectoryHandler[T]) Delete(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	rec, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	middleware.RecordCatalogWrite(string(h.kind), "delete")
	common.Success(c, http.StatusOK, h.toDTO(rec))
}

// RegisterRoutes регистрирует маршруты чтения.
func (h *DirectoryHandler[T]) RegisterRoutes(router *gin.RouterGroup) {
	g := router.Group(h.path)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
}

// RegisterAdminRoutes регистрирует маршруты изменения.
func (h *DirectoryHandler[T]) RegisterAdminRoutes(router *gin.RouterGroup) {
	g := router.Group(h.path)
	g.POST("", h.Create)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
