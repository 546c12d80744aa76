package container

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Haleralex/storehub/internal/adapters/http/middleware"
	"github.com/Haleralex/storehub/internal/config"
	"github.com/Haleralex/storehub/internal/domain/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildTestContainer(t *testing.T, cfg *config.Config) *Container {
	t.Helper()

	c, err := NewBuilder(cfg).
		WithLogger(discardLogger()).
		WithFilesystem(afero.NewMemMapFs()).
		Build(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = c.Shutdown(ctx)
	})
	return c
}

func TestNew(t *testing.T) {
	cfg := config.Test()
	c := New(cfg)

	require.NotNil(t, c)
	assert.Equal(t, cfg, c.Config())
}

func TestContainer_GettersBeforeInit(t *testing.T) {
	c := New(config.Test())

	assert.Nil(t, c.Logger())
	assert.Nil(t, c.Pool())
	assert.Nil(t, c.HTTPServer())
	assert.Nil(t, c.Registry())
	assert.Nil(t, c.UnitOfWork())
	assert.Nil(t, c.Catalog())
	assert.Nil(t, c.Products())
	assert.Nil(t, c.Links())
	assert.Nil(t, c.Users())
	assert.Nil(t, c.Comments())
	assert.Nil(t, c.Tokens())
}

func TestContainer_InitLogger(t *testing.T) {
	tests := []struct {
		level  string
		format string
		output string
	}{
		{"debug", "json", "stdout"},
		{"info", "text", "stdout"},
		{"warn", "json", "stderr"},
		{"error", "text", "stderr"},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			prev := slog.Default()
			t.Cleanup(func() { slog.SetDefault(prev) })

			cfg := config.Test()
			cfg.Log.Level = tt.level
			cfg.Log.Format = tt.format
			cfg.Log.Output = tt.output

			l := New(cfg).initLogger()

			require.NotNil(t, l)
			assert.Same(t, l, slog.Default())
		})
	}
}

func TestContainerBuilder_Build_Memory(t *testing.T) {
	c := buildTestContainer(t, config.Test())

	assert.NotNil(t, c.Logger())
	assert.Nil(t, c.Pool(), "memory backend не открывает пул")
	assert.NotNil(t, c.HTTPServer())
	assert.NotNil(t, c.UnitOfWork())
	assert.NotNil(t, c.Catalog())
	assert.NotNil(t, c.Products())
	assert.NotNil(t, c.Links())
	assert.NotNil(t, c.Users())
	assert.NotNil(t, c.Comments())
	assert.NotNil(t, c.Tokens())

	require.NotNil(t, c.Registry())
	assert.NoError(t, c.Registry().Validate(entities.AllKinds()...))
}

func TestContainerBuilder_Build_UnknownDriver(t *testing.T) {
	cfg := config.Test()
	cfg.Database.Driver = "oracle"

	c, err := NewBuilder(cfg).
		WithLogger(discardLogger()).
		WithFilesystem(afero.NewMemMapFs()).
		Build(context.Background())

	assert.Nil(t, c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize persistence")
	assert.Contains(t, err.Error(), "oracle")
}

func TestContainerBuilder_Build_UnknownStorage(t *testing.T) {
	cfg := config.Test()
	cfg.Storage.Driver = "ftp"

	_, err := NewBuilder(cfg).
		WithLogger(discardLogger()).
		WithFilesystem(afero.NewMemMapFs()).
		Build(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize file storage")
}

func TestContainer_Shutdown_NilComponents(t *testing.T) {
	c := New(config.Test())
	c.logger = discardLogger()

	assert.NoError(t, c.Shutdown(context.Background()))
}

// ============================================
// End-to-end через HTTP
// ============================================

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func call(t *testing.T, router http.Handler, method, path, token string, body any) (int, apiEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env apiEnvelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func TestContainer_CatalogFlow(t *testing.T) {
	cfg := config.Test()
	cfg.Auth.EnableMockAuth = false
	cfg.RateLimit.Enabled = false
	c := buildTestContainer(t, cfg)
	router := c.HTTPServer().Router()

	admin, err := middleware.GenerateJWT(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, "1", "admin@storehub.dev", "admin", time.Hour)
	require.NoError(t, err)

	code, _ := call(t, router, http.MethodPost, "/api/v1/admin/categories", admin, map[string]string{"name": "Tools"})
	require.Equal(t, http.StatusCreated, code)

	code, _ = call(t, router, http.MethodPost, "/api/v1/admin/vendors", admin, map[string]string{"name": "Acme"})
	require.Equal(t, http.StatusCreated, code)

	// повторная категория с тем же именем - дубликат
	code, _ = call(t, router, http.MethodPost, "/api/v1/admin/categories", admin, map[string]string{"name": "Tools"})
	assert.Equal(t, http.StatusConflict, code)

	code, env := call(t, router, http.MethodPost, "/api/v1/admin/products", admin, map[string]any{
		"product_name": "Hammer",
		"price":        "19.99",
		"quantity":     3,
		"category":     "Tools",
		"vendor":       "Acme",
	})
	require.Equal(t, http.StatusCreated, code)

	var created struct {
		ID       int64  `json:"id"`
		Price    string `json:"price"`
		Category struct {
			Name string `json:"name"`
		} `json:"category"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Positive(t, created.ID)

	// чтение публичное, токен не нужен
	code, env = call(t, router, http.MethodGet, "/api/v1/products/"+strconv.FormatInt(created.ID, 10), "", nil)
	require.Equal(t, http.StatusOK, code)

	var fetched struct {
		ProductName string `json:"product_name"`
		Price       string `json:"price"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Equal(t, "Hammer", fetched.ProductName)
	assert.Equal(t, "19.99", fetched.Price)

	// товар с несуществующим вендором не создаётся
	code, _ = call(t, router, http.MethodPost, "/api/v1/admin/products", admin, map[string]any{
		"product_name": "Saw",
		"price":        "5.00",
		"category":     "Tools",
		"vendor":       "Nobody",
	})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestContainer_AdminRoutesRequireRole(t *testing.T) {
	cfg := config.Test()
	cfg.Auth.EnableMockAuth = false
	cfg.RateLimit.Enabled = false
	c := buildTestContainer(t, cfg)
	router := c.HTTPServer().Router()

	userToken, err := middleware.GenerateJWT(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, "2", "user@storehub.dev", "user", time.Hour)
	require.NoError(t, err)

	code, _ := call(t, router, http.MethodPost, "/api/v1/admin/categories", "", map[string]string{"name": "Tools"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = call(t, router, http.MethodPost, "/api/v1/admin/categories", userToken, map[string]string{"name": "Tools"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = call(t, router, http.MethodGet, "/api/v1/categories", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestContainer_HealthEndpoints(t *testing.T) {
	c := buildTestContainer(t, config.Test())
	router := c.HTTPServer().Router()

	for _, path := range []string{"/health", "/live", "/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
