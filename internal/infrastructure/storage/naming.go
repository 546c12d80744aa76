// Package storage - общие части реализаций ports.FileStorage.
package storage

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// NewFilename returns a unique file name (without extension) and the
// extension for the upload.
//
// Расширение берётся из mime subtype ("image/png" -> "png"), иначе из
// исходного имени файла.
func NewFilename(contentType, originalName string) (string, string) {
	ext := ""
	if i := strings.IndexByte(contentType, '/'); i >= 0 {
		ext = contentType[i+1:]
		if j := strings.IndexAny(ext, ";+"); j >= 0 {
			ext = ext[:j]
		}
	}
	if ext == "" || ext == "octet-stream" {
		ext = strings.TrimPrefix(path.Ext(originalName), ".")
	}
	return uuid.NewString(), strings.ToLower(strings.TrimSpace(ext))
}

// ObjectName joins filename and extension.
func ObjectName(filename, ext string) string {
	if ext == "" {
		return filename
	}
	return filename + "." + ext
}
