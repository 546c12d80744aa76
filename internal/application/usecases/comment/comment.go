// Package comment - отзывы пользователей о товарах.
package comment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Haleralex/storehub/internal/application/consistency"
	"github.com/Haleralex/storehub/internal/application/dtos"
	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/domain/entities"
	"github.com/Haleralex/storehub/internal/domain/errors"
)

// Service - CRUD отзывов.
type Service struct {
	repos   ports.RepositoryResolver
	checker *consistency.Checker
	uow     ports.UnitOfWork
	logger  *slog.Logger
}

// NewService creates the comment service.
func NewService(repos ports.RepositoryResolver, checker *consistency.Checker, uow ports.UnitOfWork, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repos: repos, checker: checker, uow: uow, logger: logger}
}

// Create сохраняет отзыв. Пользователь и товар должны существовать.
func (s *Service) Create(ctx context.Context, cmd dtos.CreateCommentCommand) (*dtos.CommentDTO, error) {
	title, content := strings.TrimSpace(cmd.Title), strings.TrimSpace(cmd.Content)
	var verrs errors.ValidationErrors
	if title == "" {
		verrs.Add("title", "title must not be empty")
	}
	if content == "" {
		verrs.Add("content", "content must not be empty")
	}
	if verrs.HasErrors() {
		return nil, verrs
	}

	c, err := ports.ExecuteWithResult(ctx, s.uow, func(ctx context.Context, scope ports.Scope) (*entities.Comment, error) {
		if _, err := s.checker.RequireID(ctx, scope, entities.KindUser, cmd.UserID); err != nil {
			return nil, err
		}
		if _, err := s.checker.RequireID(ctx, scope, entities.KindProduct, cmd.ProductID); err != nil {
			return nil, err
		}

		c := &entities.Comment{
			Title:     title,
			Content:   content,
			UserID:    entities.Int64Ptr(cmd.UserID),
			ProductID: entities.Int64Ptr(cmd.ProductID),
			CreatedAt: time.Now().UTC(),
		}
		repo, err := s.repos.Resolve(entities.KindComment, scope)
		if err != nil {
			return nil, err
		}
		if err := repo.Insert(ctx, c); err != nil {
			return nil, err
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "comment created", "comment_id", c.ID, "product_id", cmd.ProductID)
	result := dtos.ToCommentDTO(c)
	return &result, nil
}

// Get returns a comment or NotFound("Comment", "id", id).
func (s *Service) Get(ctx context.Context, id int64) (*dtos.CommentDTO, error) {
	rec, err := s.checker.RequireID(ctx, s.uow.Scope(), entities.KindComment, id)
	if err != nil {
		return nil, err
	}
	result := dtos.ToCommentDTO(rec.(*entities.Comment))
	return &result, nil
}

// ListByProduct возвращает отзывы товара в порядке создания.
func (s *Service) ListByProduct(ctx context.Context, productID int64, query dtos.ListQuery) ([]dtos.CommentDTO, error) {
	scope := s.uow.Scope()
	if _, err := s.checker.RequireID(ctx, scope, entities.KindProduct, productID); err != nil {
		return nil, err
	}
	repo, err := s.repos.Resolve(entities.KindComment, scope)
	if err != nil {
		return nil, err
	}
	recs, err := repo.Find(ctx, entities.Criteria{entities.FieldProductID: productID})
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	from, to := query.Window(len(recs))
	comments, err := entities.AsSlice[*entities.Comment](recs[from:to])
	if err != nil {
		return nil, err
	}
	out := make([]dtos.CommentDTO, 0, len(comments))
	for _, c := range comments {
		out = append(out, dtos.ToCommentDTO(c))
	}
	return out, nil
}

// Update меняет title/content. nil = не изменять.
func (s *Service) Update(ctx context.Context, id int64, title, content *string) (*dtos.CommentDTO, error) {
	patch := entities.Fields{}
	if title != nil {
		patch["title"] = strings.TrimSpace(*title)
	}
	if content != nil {
		patch["content"] = strings.TrimSpace(*content)
	}

	c, err := ports.ExecuteWithResult(ctx, s.uow, func(ctx context.Context, scope ports.Scope) (*entities.Comment, error) {
		if _, err := s.checker.RequireID(ctx, scope, entities.KindComment, id); err != nil {
			return nil, err
		}
		if len(patch) > 0 {
			repo, err := s.repos.Resolve(entities.KindComment, scope)
			if err != nil {
				return nil, err
			}
			if _, err := repo.Update(ctx, entities.ByID(id), patch); err != nil {
				return nil, err
			}
		}
		rec, err := s.checker.RequireID(ctx, scope, entities.KindComment, id)
		if err != nil {
			return nil, err
		}
		return rec.(*entities.Comment), nil
	})
	if err != nil {
		return nil, err
	}
	result := dtos.ToCommentDTO(c)
	return &result, nil
}

// Delete удаляет отзыв и возвращает его последнее состояние.
func (s *Service) Delete(ctx context.Context, id int64) (*dtos.CommentDTO, error) {
	c, err := ports.ExecuteWithResult(ctx, s.uow, func(ctx context.Context, scope ports.Scope) (*entities.Comment, error) {
		rec, err := s.checker.RequireID(ctx, scope, entities.KindComment, id)
		if err != nil {
			return nil, err
		}
		repo, err := s.repos.Resolve(entities.KindComment, scope)
		if err != nil {
			return nil, err
		}
		if _, err := repo.Delete(ctx, entities.ByID(id)); err != nil {
			return nil, err
		}
		return rec.(*entities.Comment), nil
	})
	if err != nil {
		return nil, err
	}
	result := dtos.ToCommentDTO(c)
	return &result, nil
}
