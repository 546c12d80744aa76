// Package photo управляет фотографиями товаров и пользователей.
//
// Байты живут в ports.FileStorage, метаданные - в таблице photos.
// Storage не участвует в транзакции БД, поэтому:
// - при создании вызывающий получает компенсацию (удаление файла);
// - при удалении файлы стираются только после commit.
package photo

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Haleralex/storehub/internal/application/compensation"
	"github.com/Haleralex/storehub/internal/application/consistency"
	"github.com/Haleralex/storehub/internal/application/dtos"
	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/domain/entities"
	domainerrors "github.com/Haleralex/storehub/internal/domain/errors"
)

// Service - use cases фотографий.
type Service struct {
	repos   ports.RepositoryResolver
	storage ports.FileStorage
	logger  *slog.Logger
}

// NewService creates a photo Service.
func NewService(repos ports.RepositoryResolver, storage ports.FileStorage, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repos: repos, storage: storage, logger: logger}
}

// Create stores the upload and inserts its Photo row in scope.
//
// Удаление сохранённого файла добавляется в comp сразу после записи,
// до вставки строки: откат на любом следующем шаге уберёт файл.
func (s *Service) Create(ctx context.Context, scope ports.Scope, comp *compensation.List, upload dtos.FileUpload) (*entities.Photo, error) {
	if upload.Body == nil {
		return nil, domainerrors.NewInvalidArgument("photo.Create", "upload has no body")
	}
	// Повтор транзакции передаёт ту же загрузку ещё раз
	if _, err := upload.Body.Seek(0, io.SeekStart); err != nil {
		return nil, domainerrors.NewInfrastructure("photo.Create: rewind upload", err)
	}

	stored, err := s.storage.Store(ctx, ports.StoredFileInput{
		OriginalName: upload.OriginalName,
		ContentType:  upload.ContentType,
		Size:         upload.Size,
		Body:         upload.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store %q: %w", upload.OriginalName, err)
	}

	name := stored.Name()
	comp.Add("delete file "+name, func(ctx context.Context) error {
		return s.storage.Delete(ctx, name)
	})

	photo := &entities.Photo{
		URL:         stored.URL,
		Filename:    stored.Filename,
		Type:        stored.Type,
		Size:        stored.Size,
		Destination: stored.Destination,
	}

	repo, err := s.repos.Resolve(entities.KindPhoto, scope)
	if err != nil {
		return nil, err
	}
	if err := repo.Insert(ctx, photo); err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "photo stored",
		slog.Int64("photo_id", photo.ID),
		slog.String("file", name),
	)
	return photo, nil
}

// Attach sets the owner foreign key (product_id or user_id) on the given photos.
func (s *Service) Attach(ctx context.Context, scope ports.Scope, photoIDs []int64, ownerField string, ownerID int64) error {
	if ownerField != entities.FieldProductID && ownerField != entities.FieldUserID {
		return domainerrors.NewInvalidArgument("photo.Attach", "photos cannot be owned through "+ownerField)
	}
	if len(photoIDs) == 0 {
		return nil
	}

	repo, err := s.repos.Resolve(entities.KindPhoto, scope)
	if err != nil {
		return err
	}
	for _, id := range photoIDs {
		n, err := repo.Update(ctx, entities.ByID(id), entities.Fields{ownerField: ownerID})
		if err != nil {
			return err
		}
		if n == 0 {
			return domainerrors.NewNotFound(string(entities.KindPhoto), entities.FieldID, id)
		}
	}
	return nil
}

// ListByOwner returns the photos referencing ownerID through ownerField.
func (s *Service) ListByOwner(ctx context.Context, scope ports.Scope, ownerField string, ownerID int64) ([]*entities.Photo, error) {
	repo, err := s.repos.Resolve(entities.KindPhoto, scope)
	if err != nil {
		return nil, err
	}
	recs, err := repo.Find(ctx, entities.Criteria{ownerField: ownerID})
	if err != nil {
		return nil, err
	}
	return entities.AsSlice[*entities.Photo](recs)
}

// DeleteByOwner hard deletes the owner's photo rows in scope and schedules
// removal of their files after commit. Returns the deleted row count.
func (s *Service) DeleteByOwner(ctx context.Context, scope ports.Scope, ownerField string, ownerID int64) (int64, error) {
	photos, err := s.ListByOwner(ctx, scope, ownerField, ownerID)
	if err != nil {
		return 0, err
	}
	if len(photos) == 0 {
		return 0, nil
	}

	repo, err := s.repos.Resolve(entities.KindPhoto, scope)
	if err != nil {
		return 0, err
	}
	n, err := repo.Delete(ctx, entities.Criteria{ownerField: ownerID})
	if err != nil {
		return 0, err
	}

	names := make([]string, 0, len(photos))
	for _, p := range photos {
		names = append(names, p.StoredName())
	}
	scope.AfterCommit(func(ctx context.Context) {
		s.deleteFiles(ctx, names)
	})
	return n, nil
}

// deleteFiles is best effort: storage errors are logged only.
func (s *Service) deleteFiles(ctx context.Context, names []string) {
	for _, name := range names {
		if err := s.storage.Delete(ctx, name); err != nil {
			s.logger.WarnContext(ctx, "failed to delete photo file",
				slog.String("file", name),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Register installs photo deletion as the Photo handler of the unbinder
// for Product and User parents.
func (s *Service) Register(u *consistency.Unbinder) {
	u.Handle(entities.KindProduct, entities.KindPhoto, func(ctx context.Context, scope ports.Scope, id int64) (int64, error) {
		return s.DeleteByOwner(ctx, scope, entities.FieldProductID, id)
	})
	u.Handle(entities.KindUser, entities.KindPhoto, func(ctx context.Context, scope ports.Scope, id int64) (int64, error) {
		return s.DeleteByOwner(ctx, scope, entities.FieldUserID, id)
	})
}
