package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Haleralex/storehub/internal/adapters/http/common"
)

func init() {
	SetupValidator()
}

type offerRequest struct {
	Name     string `json:"product_name" binding:"required,min=2,max=50"`
	Email    string `json:"contact" binding:"omitempty,email"`
	Price    string `json:"price" binding:"required,price"`
	Quantity int    `json:"quantity" binding:"gte=0"`
}

func bindOffer(body string) (*httptest.ResponseRecorder, bool) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/offers", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req offerRequest
	return w, BindJSON(c, &req)
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) common.APIResponse {
	t.Helper()
	var resp common.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBindJSON_Valid(t *testing.T) {
	w, ok := bindOffer(`{"product_name":"Hammer","price":"19.99","quantity":3}`)

	assert.True(t, ok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestBindJSON_FieldErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
		wantCode  string
		wantMsg   string
	}{
		{"Missing", `{"price":"1"}`, "product_name", "required", "This field is required"},
		{"TooShort", `{"product_name":"H","price":"1"}`, "product_name", "min", "Value is too short (minimum: 2)"},
		{"Email", `{"product_name":"Hammer","price":"1","contact":"nope"}`, "contact", "email", "Invalid email format"},
		{"NegativePrice", `{"product_name":"Hammer","price":"-3"}`, "price", "price", "Invalid price"},
		{"PriceScale", `{"product_name":"Hammer","price":"1.999"}`, "price", "price", "Invalid price"},
		{"NegativeQuantity", `{"product_name":"Hammer","price":"1","quantity":-1}`, "quantity", "gte", "Value must be at least 0"},
		{"WrongType", `{"product_name":"Hammer","price":"1","quantity":"many"}`, "quantity", "type", "Expected int"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, ok := bindOffer(tt.body)

			assert.False(t, ok)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			resp := decodeEnvelope(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, common.ErrCodeValidation, resp.Error.Code)
			require.Len(t, resp.Error.Fields, 1)
			assert.Equal(t, tt.wantField, resp.Error.Fields[0].Field)
			assert.Equal(t, tt.wantCode, resp.Error.Fields[0].Code)
			assert.Contains(t, resp.Error.Fields[0].Message, tt.wantMsg)
		})
	}
}

func TestBindJSON_MalformedBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"Syntax", `{"product_name":`, "Invalid request body"},
		{"BadToken", `{"product_name" "x"}`, "Malformed JSON at offset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, ok := bindOffer(tt.body)

			assert.False(t, ok)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			resp := decodeEnvelope(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, common.ErrCodeBadRequest, resp.Error.Code)
			assert.Contains(t, resp.Error.Message, tt.wantMsg)
		})
	}
}

func TestFieldName(t *testing.T) {
	type sample struct {
		JSON    string `json:"product_name,omitempty"`
		Form    string `form:"category"`
		Hidden  string `json:"-"`
		NoName  string `json:",omitempty"`
		Untyped string
	}

	typ := reflect.TypeOf(sample{})
	want := []string{"product_name", "category", "", "NoName", "Untyped"}
	for i, name := range want {
		assert.Equal(t, name, fieldName(typ.Field(i)), typ.Field(i).Name)
	}
}

func TestValidate_ManualStruct(t *testing.T) {
	assert.NoError(t, validate(&offerRequest{Name: "Hammer", Price: "5"}))
	assert.Error(t, validate(&offerRequest{Name: "Hammer", Price: "five"}))
}

// ============================================
// Pagination
// ============================================

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query       string
		wantPage    int
		wantPerPage int
	}{
		{"", 1, DefaultPerPage},
		{"page=3&per_page=50", 3, 50},
		{"page=abc", 1, DefaultPerPage},
		{"page=0&per_page=0", 1, DefaultPerPage},
		{"page=-4", 1, DefaultPerPage},
		{"per_page=200", 1, DefaultPerPage},
		{"per_page=100", 1, MaxPerPage},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/products?"+tt.query, nil)

			params := ParsePagination(c)

			assert.Equal(t, tt.wantPage, params.Page)
			assert.Equal(t, tt.wantPerPage, params.PerPage)
		})
	}
}

func TestPaginationParams_ListQueryAndMeta(t *testing.T) {
	params := PaginationParams{Page: 3, PerPage: 10}

	q := params.ListQuery()
	assert.Equal(t, 20, q.Offset)
	assert.Equal(t, 10, q.Limit)

	meta := params.Meta()
	assert.Equal(t, 3, meta.Page)
	assert.Equal(t, 10, meta.PerPage)
	assert.Zero(t, meta.Total)
}

func TestParseID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/items/:id", func(c *gin.Context) {
		id, ok := ParseID(c, "id")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	tests := []struct {
		path string
		want int
	}{
		{"/items/5", http.StatusOK},
		{"/items/0", http.StatusBadRequest},
		{"/items/-2", http.StatusBadRequest},
		{"/items/abc", http.StatusBadRequest},
		{"/items/99999999999999999999", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
