// Package handlers - gin handlers StoreHub API.
//
// Handler разбирает запрос в command/query DTO, вызывает use case и
// отдаёт результат через common envelope. Бизнес-правил здесь нет.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Haleralex/storehub/internal/adapters/http/common"
	"github.com/Haleralex/storehub/internal/application/dtos"
	"github.com/Haleralex/storehub/internal/domain/valueobjects"
)

// ============================================
// Validator engine
// ============================================

var setupOnce sync.Once

// SetupValidator регистрирует в движке gin имена полей по json тегу и тег "price".
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldName)
		_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
			_, err := valueobjects.NewPrice(fl.Field().String())
			return err == nil
		})
	})
}

// fieldName: json, затем form; "-" скрывает поле.
func fieldName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		if tag, ok := fld.Tag.Lookup(key); ok {
			name, _, _ := strings.Cut(tag, ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
	}
	return fld.Name
}

// validate прогоняет binding-теги для тел, собранных вручную (multipart "data").
func validate(obj any) error {
	if binding.Validator == nil {
		return nil
	}
	return binding.Validator.ValidateStruct(obj)
}

// ============================================
// Validation errors
// ============================================

var errMissingData = errors.New(`multipart field "data" is required`)

var tagMessages = map[string]string{
	"required": "This field is required",
	"email":    "Invalid email format",
	"min":      "Value is too short (minimum: %s)",
	"max":      "Value is too long (maximum: %s)",
	"len":      "Value must be exactly %s characters",
	"oneof":    "Value must be one of: %s",
	"gt":       "Value must be greater than %s",
	"gte":      "Value must be at least %s",
	"price":    "Invalid price (use a non-negative decimal like '19.99')",
}

// HandleValidationErrors отвечает 400: VALIDATION_ERROR со списком полей,
// если ошибку удалось отнести к полям, иначе BAD_REQUEST.
func HandleValidationErrors(c *gin.Context, err error) {
	var (
		verrs     validator.ValidationErrors
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)

	switch {
	case errors.As(err, &verrs):
		fields := make([]common.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, common.FieldError{
				Field:   fe.Field(),
				Message: validationMessage(fe),
				Code:    fe.Tag(),
			})
		}
		common.ValidationErrorResponse(c, fields)
	case errors.As(err, &typeErr) && typeErr.Field != "":
		common.ValidationErrorResponse(c, []common.FieldError{{
			Field:   typeErr.Field,
			Message: "Expected " + typeErr.Type.String(),
			Code:    "type",
		}})
	case errors.As(err, &syntaxErr):
		common.BadRequestResponse(c, "Malformed JSON at offset "+strconv.FormatInt(syntaxErr.Offset, 10))
	default:
		common.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}
}

func validationMessage(fe validator.FieldError) string {
	msg, ok := tagMessages[fe.Tag()]
	if !ok {
		return "Invalid value"
	}
	if strings.Contains(msg, "%s") {
		return fmt.Sprintf(msg, fe.Param())
	}
	return msg
}

// BindJSON: false - ответ с ошибкой уже отправлен.
func BindJSON[T any](c *gin.Context, req *T) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if !tooLarge(c, err) {
			HandleValidationErrors(c, err)
		}
		return false
	}
	return true
}

// ============================================
// Path and pagination
// ============================================

// ParseID парсит положительный int64 path-параметр.
// false - ответ 400 уже отправлен.
func ParseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		common.BadRequestResponse(c, "Invalid "+param+": must be a positive integer")
		return 0, false
	}
	return id, true
}

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// PaginationParams - page/per_page из query string.
type PaginationParams struct {
	Page    int
	PerPage int
}

// ParsePagination не отвечает ошибкой: мусор и значения вне диапазона
// заменяются на page=1, per_page=DefaultPerPage.
func ParsePagination(c *gin.Context) PaginationParams {
	params := PaginationParams{Page: 1, PerPage: DefaultPerPage}

	if n, err := strconv.Atoi(c.Query("page")); err == nil && n > 0 {
		params.Page = n
	}
	if n, err := strconv.Atoi(c.Query("per_page")); err == nil && n > 0 && n <= MaxPerPage {
		params.PerPage = n
	}
	return params
}

// Offset - сколько записей пропустить.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// ListQuery переводит page/per_page в offset/limit use case слоя.
func (p PaginationParams) ListQuery() dtos.ListQuery {
	return dtos.ListQuery{Offset: p.Offset(), Limit: p.PerPage}
}

// Meta - блок meta ответа списка.
func (p PaginationParams) Meta() *common.APIMeta {
	return &common.APIMeta{Page: p.Page, PerPage: p.PerPage}
}
