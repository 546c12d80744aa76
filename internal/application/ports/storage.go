package ports

import (
	"context"
	"io"
)

// StoredFileInput - загружаемый файл и его метаданные.
type StoredFileInput struct {
	OriginalName string
	ContentType  string // e.g. "image/png"
	Size         int64
	Body         io.Reader
}

// StoredFile - результат сохранения.
type StoredFile struct {
	Filename    string // generated, unique, without extension
	Type        string // extension derived from ContentType
	URL         string
	Destination string
	Size        int64
}

// Name returns the object name under which the bytes were written.
func (f StoredFile) Name() string {
	if f.Type == "" {
		return f.Filename
	}
	return f.Filename + "." + f.Type
}

// FileStorage хранит бинарное содержимое фотографий.
//
// Запись файла не покрывается БД-транзакцией: вызывающий код обязан
// зарегистрировать компенсацию (удаление) на случай отката.
type FileStorage interface {
	// Store writes the file under a generated unique name.
	Store(ctx context.Context, in StoredFileInput) (StoredFile, error)

	// Delete removes a stored object. Missing objects are not an error.
	Delete(ctx context.Context, name string) error
}
