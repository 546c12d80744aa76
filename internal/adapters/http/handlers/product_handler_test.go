package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Haleralex/storehub/internal/adapters/http/middleware"
	"github.com/Haleralex/storehub/internal/application/dtos"
	domainerrors "github.com/Haleralex/storehub/internal/domain/errors"
)

// ============================================
// Mock Services
// ============================================

type MockProductService struct {
	CreateFn func(ctx context.Context, cmd dtos.CreateProductCommand) (*dtos.ProductDTO, error)
	GetFn    func(ctx context.Context, id int64) (*dtos.ProductDTO, error)
	ListFn   func(ctx context.Context, q dtos.ListQuery) ([]dtos.ProductDTO, error)
	UpdateFn func(ctx context.Context, cmd dtos.UpdateProductCommand) (*dtos.ProductDTO, error)
	DeleteFn func(ctx context.Context, id int64) (*dtos.DeleteResultDTO, error)
}

func (m *MockProductService) Create(ctx context.Context, cmd dtos.CreateProductCommand) (*dtos.ProductDTO, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, cmd)
	}
	return nil, errors.New("not implemented")
}

func (m *MockProductService) Get(ctx context.Context, id int64) (*dtos.ProductDTO, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *MockProductService) List(ctx context.Context, q dtos.ListQuery) ([]dtos.ProductDTO, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, q)
	}
	return nil, errors.New("not implemented")
}

func (m *MockProductService) Update(ctx context.Context, cmd dtos.UpdateProductCommand) (*dtos.ProductDTO, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, cmd)
	}
	return nil, errors.New("not implemented")
}

func (m *MockProductService) Delete(ctx context.Context, id int64) (*dtos.DeleteResultDTO, error) {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil, errors.New("not implemented")
}

type MockProductAttributeService struct {
	ListFn   func(ctx context.Context, productID int64) ([]dtos.ProductAttributeDTO, error)
	AddFn    func(ctx context.Context, cmd dtos.LinkCommand) (*dtos.ProductAttributeDTO, error)
	ChangeFn func(ctx context.Context, cmd dtos.LinkCommand) (*dtos.ProductAttributeDTO, error)
	RemoveFn func(ctx context.Context, cmd dtos.LinkCommand) error
}

func (m *MockProductAttributeService) List(ctx context.Context, productID int64) ([]dtos.ProductAttributeDTO, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, productID)
	}
	return nil, errors.New("not implemented")
}

func (m *MockProductAttributeService) Add(ctx context.Context, cmd dtos.LinkCommand) (*dtos.ProductAttributeDTO, error) {
	if m.AddFn != nil {
		return m.AddFn(ctx, cmd)
	}
	return nil, errors.New("not implemented")
}

func (m *MockProductAttributeService) Change(ctx context.Context, cmd dtos.LinkCommand) (*dtos.ProductAttributeDTO, error) {
	if m.ChangeFn != nil {
		return m.ChangeFn(ctx, cmd)
	}
	return nil, errors.New("not implemented")
}

func (m *MockProductAttributeService) Remove(ctx context.Context, cmd dtos.LinkCommand) error {
	if m.RemoveFn != nil {
		return m.RemoveFn(ctx, cmd)
	}
	return errors.New("not implemented")
}

// ============================================
// Test Setup
// ============================================

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	SetupValidator()
	router := gin.New()

	// Add request ID middleware (needed for response helpers)
	router.Use(func(c *gin.Context) {
		c.Set("X-Request-ID", "test-request-123")
		c.Next()
	})

	return router
}

// withUser эмулирует Auth middleware.
func withUser(router *gin.Engine, userID string) {
	router.Use(func(c *gin.Context) {
		c.Set("auth_user_id", userID)
		c.Next()
	})
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type testFile struct {
	field, name, contentType, content string
}

func multipartBody(t *testing.T, data any, files ...testFile) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	if data != nil {
		raw, err := json.Marshal(data)
		require.NoError(t, err)
		require.NoError(t, mw.WriteField("data", string(raw)))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// ============================================
// Tests
// ============================================

func TestProductHandler_CreateProduct_JSON(t *testing.T) {
	var got dtos.CreateProductCommand
	svc := &MockProductService{
		CreateFn: func(ctx context.Context, cmd dtos.CreateProductCommand) (*dtos.ProductDTO, error) {
			got = cmd
			return &dtos.ProductDTO{ID: 1, ProductName: cmd.ProductName, Price: cmd.Price}, nil
		},
	}
	handler := NewProductHandler(svc, &MockProductAttributeService{})
	router := setupTestRouter()
	router.POST("/products", handler.CreateProduct)

	w := doJSON(router, http.MethodPost, "/products", CreateProductRequest{
		ProductName: "Phone",
		Price:       "199.90",
		Quantity:    3,
		Category:    "Electronics",
		Vendor:      "Acme",
		Attributes:  map[string]string{"color": "black"},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Electronics", got.CategoryName)
	assert.Equal(t, "Acme", got.VendorName)
	assert.Equal(t, "black", got.Attributes["color"])
	assert.Empty(t, got.Photos)
}

func TestProductHandler_CreateProduct_Multipart(t *testing.T) {
	var names []string
	var contents []string
	svc := &MockProductService{
		CreateFn: func(ctx context.Context, cmd dtos.CreateProductCommand) (*dtos.ProductDTO, error) {
			for _, p := range cmd.Photos {
				names = append(names, p.OriginalName)
				raw, err := io.ReadAll(p.Body)
				if err != nil {
					return nil, err
				}
				contents = append(contents, string(raw))
			}
			return &dtos.ProductDTO{ID: 1, ProductName: cmd.ProductName}, nil
		},
	}
	handler := NewProductHandler(svc, &MockProductAttributeService{})
	router := setupTestRouter()
	router.POST("/products", handler.CreateProduct)

	body, contentType := multipartBody(t,
		CreateProductRequest{ProductName: "Phone", Price: "10", Category: "C", Vendor: "V"},
		testFile{"photos", "front.png", "image/png", "png-bytes"},
		testFile{"photos", "back.jpg", "image/jpeg", "jpg-bytes"},
	)
	req := httptest.NewRequest(http.MethodPost, "/products", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, []string{"front.png", "back.jpg"}, names)
	assert.Equal(t, []string{"png-bytes", "jpg-bytes"}, contents)
}

func TestProductHandler_CreateProduct_UploadTooLarge(t *testing.T) {
	tests := []struct {
		name        string
		unknownSize bool
	}{
		{"DeclaredLength", false},
		{"Streamed", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			svc := &MockProductService{
				CreateFn: func(ctx context.Context, cmd dtos.CreateProductCommand) (*dtos.ProductDTO, error) {
					called = true
					return &dtos.ProductDTO{ID: 1}, nil
				},
			}
			router := setupTestRouter()
			router.Use(middleware.BodyLimit(1024))
			router.POST("/products", NewProductHandler(svc, nil).CreateProduct)

			body, contentType := multipartBody(t,
				CreateProductRequest{ProductName: "Phone", Price: "10", Category: "C", Vendor: "V"},
				testFile{"photos", "huge.png", "image/png", strings.Repeat("x", 4096)},
			)
			req := httptest.NewRequest(http.MethodPost, "/products", body)
			req.Header.Set("Content-Type", contentType)
			if tt.unknownSize {
				req.ContentLength = -1
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())
			assert.False(t, called)
		})
	}
}

func TestProductHandler_CreateProduct_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  CreateProductRequest
	}{
		{"missing name", CreateProductRequest{Price: "1", Category: "C", Vendor: "V"}},
		{"negative price", CreateProductRequest{ProductName: "P", Price: "-1", Category: "C", Vendor: "V"}},
		{"missing category", CreateProductRequest{ProductName: "P", Price: "1", Vendor: "V"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			svc := &MockProductService{
				CreateFn: func(ctx context.Context, cmd dtos.CreateProductCommand) (*dtos.ProductDTO, error) {
					called = true
					return nil, nil
				},
			}
			router := setupTestRouter()
			router.POST("/products", NewProductHandler(svc, nil).CreateProduct)

			w := doJSON(router, http.MethodPost, "/products", tt.req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, called)
		})
	}
}

func TestProductHandler_CreateProduct_MultipartWithoutData(t *testing.T) {
	router := setupTestRouter()
	router.POST("/products", NewProductHandler(&MockProductService{}, nil).CreateProduct)

	body, contentType := multipartBody(t, nil, testFile{"photos", "a.png", "image/png", "x"})
	req := httptest.NewRequest(http.MethodPost, "/products", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductHandler_CreateProduct_DomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"missing vendor", domainerrors.NewNotFound("Vendor", "company_name", "Acme"), http.StatusNotFound},
		{"duplicate", domainerrors.NewDuplicate("Product", []string{"product_name=Phone"}), http.StatusConflict},
		{"storage down", domainerrors.NewInfrastructure("store", errors.New("disk full")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockProductService{
				CreateFn: func(ctx context.Context, cmd dtos.CreateProductCommand) (*dtos.ProductDTO, error) {
					return nil, tt.err
				},
			}
			router := setupTestRouter()
			router.POST("/products", NewProductHandler(svc, nil).CreateProduct)

			w := doJSON(router, http.MethodPost, "/products", CreateProductRequest{
				ProductName: "Phone", Price: "1", Category: "C", Vendor: "Acme",
			})

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestProductHandler_GetProduct(t *testing.T) {
	svc := &MockProductService{
		GetFn: func(ctx context.Context, id int64) (*dtos.ProductDTO, error) {
			if id == 7 {
				return &dtos.ProductDTO{ID: 7, ProductName: "Lamp"}, nil
			}
			return nil, domainerrors.NewNotFound("Product", "id", id)
		},
	}
	router := setupTestRouter()
	NewProductHandler(svc, nil).RegisterRoutes(router.Group(""))

	w := doJSON(router, http.MethodGet, "/products/7", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, "Lamp", data["product_name"])

	w = doJSON(router, http.MethodGet, "/products/8", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodGet, "/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductHandler_ListProducts(t *testing.T) {
	var got dtos.ListQuery
	svc := &MockProductService{
		ListFn: func(ctx context.Context, q dtos.ListQuery) ([]dtos.ProductDTO, error) {
			got = q
			return []dtos.ProductDTO{{ID: 1}, {ID: 2}}, nil
		},
	}
	router := setupTestRouter()
	NewProductHandler(svc, nil).RegisterRoutes(router.Group(""))

	w := doJSON(router, http.MethodGet, "/products?page=2&per_page=5", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dtos.ListQuery{Offset: 5, Limit: 5}, got)
	assert.Len(t, decodeResponse(t, w)["data"], 2)
}

func TestProductHandler_UpdateProduct(t *testing.T) {
	var got dtos.UpdateProductCommand
	svc := &MockProductService{
		UpdateFn: func(ctx context.Context, cmd dtos.UpdateProductCommand) (*dtos.ProductDTO, error) {
			got = cmd
			return &dtos.ProductDTO{ID: cmd.ProductID}, nil
		},
	}
	router := setupTestRouter()
	NewProductHandler(svc, nil).RegisterAdminRoutes(router.Group(""))

	w := doJSON(router, http.MethodPatch, "/products/3", map[string]any{"price": "5.50", "is_active": false})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), got.ProductID)
	require.NotNil(t, got.Price)
	assert.Equal(t, "5.50", *got.Price)
	require.NotNil(t, got.IsActive)
	assert.False(t, *got.IsActive)
	assert.Nil(t, got.ProductName)

	w = doJSON(router, http.MethodPatch, "/products/3", map[string]any{"price": "abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductHandler_DeleteProduct(t *testing.T) {
	svc := &MockProductService{
		DeleteFn: func(ctx context.Context, id int64) (*dtos.DeleteResultDTO, error) {
			return &dtos.DeleteResultDTO{ID: id, Unbound: map[string]int64{"Comment": 2}}, nil
		},
	}
	router := setupTestRouter()
	NewProductHandler(svc, nil).RegisterAdminRoutes(router.Group(""))

	w := doJSON(router, http.MethodDelete, "/products/4", nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(4), data["id"])
}

func TestProductHandler_Attributes(t *testing.T) {
	var added, changed, removed dtos.LinkCommand
	attrs := &MockProductAttributeService{
		ListFn: func(ctx context.Context, productID int64) ([]dtos.ProductAttributeDTO, error) {
			return []dtos.ProductAttributeDTO{{ProductID: productID, AttributeName: "color", Value: "red"}}, nil
		},
		AddFn: func(ctx context.Context, cmd dtos.LinkCommand) (*dtos.ProductAttributeDTO, error) {
			added = cmd
			return &dtos.ProductAttributeDTO{ProductID: cmd.ProductID, AttributeName: cmd.AttributeName, Value: cmd.Value}, nil
		},
		ChangeFn: func(ctx context.Context, cmd dtos.LinkCommand) (*dtos.ProductAttributeDTO, error) {
			changed = cmd
			return &dtos.ProductAttributeDTO{ProductID: cmd.ProductID, AttributeName: cmd.AttributeName, Value: cmd.Value}, nil
		},
		RemoveFn: func(ctx context.Context, cmd dtos.LinkCommand) error {
			removed = cmd
			return nil
		},
	}
	handler := NewProductHandler(&MockProductService{}, attrs)
	router := setupTestRouter()
	handler.RegisterRoutes(router.Group(""))
	handler.RegisterAdminRoutes(router.Group(""))

	w := doJSON(router, http.MethodGet, "/products/1/attributes", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPost, "/products/1/attributes/size", ProductAttributeRequest{Value: "XL"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, dtos.LinkCommand{ProductID: 1, AttributeName: "size", Value: "XL"}, added)

	w = doJSON(router, http.MethodPut, "/products/1/attributes/size", ProductAttributeRequest{Value: "L"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "L", changed.Value)

	w = doJSON(router, http.MethodDelete, "/products/1/attributes/size", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "size", removed.AttributeName)
}

func TestProductHandler_AttributeNotLinked(t *testing.T) {
	attrs := &MockProductAttributeService{
		RemoveFn: func(ctx context.Context, cmd dtos.LinkCommand) error {
			return domainerrors.NewNotFound("ProductAttribute", "attribute", cmd.AttributeName)
		},
	}
	router := setupTestRouter()
	NewProductHandler(&MockProductService{}, attrs).RegisterAdminRoutes(router.Group(""))

	w := doJSON(router, http.MethodDelete, "/products/1/attributes/weight", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
