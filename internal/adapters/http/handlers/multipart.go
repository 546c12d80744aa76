package handlers

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Haleralex/storehub/internal/adapters/http/common"
	"github.com/Haleralex/storehub/internal/application/dtos"
)

// isMultipart сообщает, пришёл ли запрос как multipart/form-data.
func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// parseMultipart разбирает форму до bindForm/openUploads: иначе
// c.PostForm проглотит ошибку превышения лимита тела.
// false - ответ (413 или 400) уже отправлен.
func parseMultipart(c *gin.Context) bool {
	if _, err := c.MultipartForm(); err != nil {
		if tooLarge(c, err) {
			return false
		}
		common.BadRequestResponse(c, "Invalid multipart form: "+err.Error())
		return false
	}
	return true
}

// tooLarge отвечает 413, если err - превышение BodyLimit.
func tooLarge(c *gin.Context, err error) bool {
	var maxErr *http.MaxBytesError
	if !errors.As(err, &maxErr) {
		return false
	}
	common.PayloadTooLargeResponse(c, maxErr.Limit)
	return true
}

// openUploads открывает файлы поля field multipart формы.
//
// Возвращённый release закрывает все открытые файлы; его нужно вызвать
// после того, как use case дочитал Body.
func openUploads(c *gin.Context, field string) ([]dtos.FileUpload, func(), error) {
	release := func() {}

	form, err := c.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart {
			return nil, release, nil
		}
		return nil, release, err
	}

	headers := form.File[field]
	uploads := make([]dtos.FileUpload, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	release = func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			release()
			return nil, func() {}, err
		}
		opened = append(opened, f)
		uploads = append(uploads, dtos.FileUpload{
			OriginalName: fh.Filename,
			ContentType:  fh.Header.Get("Content-Type"),
			Size:         fh.Size,
			Body:         f,
		})
	}

	return uploads, release, nil
}

// bindForm заполняет req из JSON поля "data" multipart формы.
//
// Так клиент шлёт структурированные данные (например, карту атрибутов)
// вместе с файлами в одном запросе.
func bindForm[T any](c *gin.Context, req *T) bool {
	raw := c.PostForm("data")
	if raw == "" {
		HandleValidationErrors(c, errMissingData)
		return false
	}
	if err := json.Unmarshal([]byte(raw), req); err != nil {
		HandleValidationErrors(c, err)
		return false
	}
	if err := validate(req); err != nil {
		HandleValidationErrors(c, err)
		return false
	}
	return true
}
