// Package handlers - User HTTP handlers.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Haleralex/storehub/internal/adapters/http/common"
	"github.com/Haleralex/storehub/internal/adapters/http/middleware"
	"github.com/Haleralex/storehub/internal/application/dtos"
	"github.com/Haleralex/storehub/internal/domain/entities"
)

// ============================================
// Use Case Interfaces
// ============================================

// CreateUserUseCase - интерфейс для создания пользователя.
type CreateUserUseCase interface {
	Execute(ctx context.Context, cmd dtos.CreateUserCommand) (*dtos.UserDTO, error)
}

// GetUserUseCase - интерфейс для получения пользователя.
type GetUserUseCase interface {
	Execute(ctx context.Context, userID int64) (*dtos.UserDTO, error)
}

// ListUsersUseCase - интерфейс для получения списка пользователей.
type ListUsersUseCase interface {
	Execute(ctx context.Context, query dtos.ListQuery) ([]dtos.UserDTO, error)
}

// UpdateUserUseCase - интерфейс для обновления пользователя.
type UpdateUserUseCase interface {
	Execute(ctx context.Context, cmd dtos.UpdateUserCommand) (*dtos.UserDTO, error)
}

// DeleteUserUseCase - интерфейс для удаления пользователя.
type DeleteUserUseCase interface {
	Execute(ctx context.Context, userID int64) (*dtos.DeleteResultDTO, error)
}

// ActivateUserUseCase - интерфейс для активации по ссылке из письма.
type ActivateUserUseCase interface {
	Execute(ctx context.Context, link string) (*dtos.UserDTO, error)
}

// UserRoleUseCase - добавление или снятие роли.
type UserRoleUseCase interface {
	Execute(ctx context.Context, cmd dtos.UserRoleCommand) (*dtos.UserDTO, error)
}

// UserUseCases - набор use cases пользователя для handler'а.
type UserUseCases struct {
	Create     CreateUserUseCase
	Get        GetUserUseCase
	List       ListUsersUseCase
	Update     UpdateUserUseCase
	Delete     DeleteUserUseCase
	Activate   ActivateUserUseCase
	AddRole    UserRoleUseCase
	RemoveRole UserRoleUseCase
}

// ============================================
// User Handler
// ============================================

// UserHandler обрабатывает HTTP запросы для пользователей.
//
// Pattern: Adapter (Hexagonal Architecture)
// - Преобразует HTTP запросы в Use Case вызовы
// - Преобразует результаты в HTTP ответы
type UserHandler struct {
	uc UserUseCases
}

// NewUserHandler создаёт новый UserHandler.
func NewUserHandler(uc UserUseCases) *UserHandler {
	return &UserHandler{uc: uc}
}

// ============================================
// Request DTOs (HTTP layer)
// ============================================

// CreateUserRequest - регистрация пользователя.
// Аватар передаётся файлом "avatar" в multipart форме.
//
// @Description Create user request body
type CreateUserRequest struct {
	FirstName string `json:"first_name" binding:"required,min=1,max=100"`
	LastName  string `json:"last_name" binding:"required,min=1,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6,max=72"`
	Phone     string `json:"phone" binding:"omitempty,max=32"`
	Birthday  string `json:"birthday" binding:"omitempty,datetime=2006-01-02"`
}

// UpdateUserRequest - частичное обновление пользователя.
type UpdateUserRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,min=1,max=100"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone" binding:"omitempty,max=32"`
	Birthday  *string `json:"birthday" binding:"omitempty,datetime=2006-01-02"`
}

// UserRoleRequest - роль по её value.
type UserRoleRequest struct {
	Value string `json:"value" binding:"required,max=50"`
}

// ============================================
// HTTP Handlers
// ============================================

// CreateUser регистрирует пользователя и ставит письмо активации в очередь.
//
// @Summary Create a new user
// @Tags Users
// @Accept json,mpfd
// @Produce json
// @Success 201 {object} common.APIResponse{data=dtos.UserDTO}
// @Failure 400 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Router /api/v1/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	var avatar *dtos.FileUpload

	if isMultipart(c) {
		if !parseMultipart(c) || !bindForm(c, &req) {
			return
		}
		uploads, release, err := openUploads(c, "avatar")
		if err != nil {
			common.BadRequestResponse(c, "Invalid multipart form: "+err.Error())
			return
		}
		defer release()
		if len(uploads) > 0 {
			avatar = &uploads[0]
		}
	} else if !BindJSON(c, &req) {
		return
	}

	cmd := dtos.CreateUserCommand{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		Avatar:    avatar,
	}
	if req.Birthday != "" {
		// формат уже проверен binding-тегом datetime
		birthday, _ := time.Parse(time.DateOnly, req.Birthday)
		cmd.Birthday = &birthday
	}

	result, err := h.uc.Create.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	middleware.RecordCatalogWrite(string(entities.KindUser), "create")
	common.Success(c, http.StatusCreated, result)
}

// GetUser возвращает пользователя с ролями и фото.
//
// @Summary Get user by ID
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} common.APIResponse{data=dtos.UserDTO}
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	result, err := h.uc.Get.Execute(c.Request.Context(), id)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// GetCurrentUser возвращает авторизованного пользователя.
//
// @Router /api/v1/me [get]
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	id, ok := middleware.GetAuthUserID(c)
	if !ok {
		common.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	result, err := h.uc.Get.Execute(c.Request.Context(), id)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// ListUsers возвращает страницу пользователей.
//
// @Router /api/v1/admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := ParsePagination(c)

	result, err := h.uc.List.Execute(c.Request.Context(), params.ListQuery())
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.SuccessWithMeta(c, http.StatusOK, result, params.Meta())
}

// UpdateUser частично обновляет пользователя.
//
// @Router /api/v1/admin/users/{id} [patch]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !BindJSON(c, &req) {
		return
	}

	cmd := dtos.UpdateUserCommand{
		UserID:    id,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	}
	if req.Birthday != nil {
		birthday, _ := time.Parse(time.DateOnly, *req.Birthday)
		cmd.Birthday = &birthday
	}

	result, err := h.uc.Update.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	middleware.RecordCatalogWrite(string(entities.KindUser), "update")
	common.Success(c, http.StatusOK, result)
}

// DeleteUser удаляет пользователя; отзывы и покупки отвязываются.
//
// @Router /api/v1/admin/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	result, err := h.uc.Delete.Execute(c.Request.Context(), id)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	middleware.RecordCatalogWrite(string(entities.KindUser), "delete")
	common.Success(c, http.StatusOK, result)
}

// ActivateUser активирует аккаунт по ссылке из письма.
//
// @Router /api/v1/users/activate/{link} [get]
func (h *UserHandler) ActivateUser(c *gin.Context) {
	link := c.Param("link")
	if link == "" {
		common.BadRequestResponse(c, "Activation link is required")
		return
	}

	result, err := h.uc.Activate.Execute(c.Request.Context(), link)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// AddRole выдаёт пользователю роль (409 если уже есть).
//
// @Router /api/v1/admin/users/{id}/roles [post]
func (h *UserHandler) AddRole(c *gin.Context) {
	h.changeRole(c, h.uc.AddRole, http.StatusCreated)
}

// RemoveRole снимает роль (404 если её не было).
//
// @Router /api/v1/admin/users/{id}/roles/{value} [delete]
func (h *UserHandler) RemoveRole(c *gin.Context) {
	h.changeRole(c, h.uc.RemoveRole, http.StatusOK)
}

func (h *UserHandler) changeRole(c *gin.Context, uc UserRoleUseCase, status int) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	value := c.Param("value")
	if value == "" {
		var req UserRoleRequest
		if !BindJSON(c, &req) {
			return
		}
		value = req.Value
	}

	result, err := uc.Execute(c.Request.Context(), dtos.UserRoleCommand{UserID: id, Value: value})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, status, result)
}

// RegisterRoutes регистрирует публичные маршруты пользователей.
//
// Routes:
// - POST /users                  - Регистрация
// - GET  /users/activate/:link   - Активация
// - GET  /users/:id              - Профиль
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("", h.CreateUser)
		users.GET("/activate/:link", h.ActivateUser)
		users.GET("/:id", h.GetUser)
	}
}

// RegisterProtectedRoutes регистрирует маршруты для авторизованных.
func (h *UserHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	router.GET("/me", h.GetCurrentUser)
}

// RegisterAdminRoutes регистрирует административные маршруты.
func (h *UserHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.PATCH("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
		users.POST("/:id/roles", h.AddRole)
		users.DELETE("/:id/roles/:value", h.RemoveRole)
	}
}
