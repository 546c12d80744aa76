// Package token хранит refresh tokens пользователей.
//
// Выпуск и ротация токенов - забота auth-слоя; здесь только хранение:
// у пользователя не больше одного refresh token.
package token

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Haleralex/storehub/internal/application/consistency"
	"github.com/Haleralex/storehub/internal/application/dtos"
	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/domain/entities"
	"github.com/Haleralex/storehub/internal/domain/errors"
)

const fieldToken = "token"

// Service - хранилище refresh tokens.
type Service struct {
	repos   ports.RepositoryResolver
	checker *consistency.Checker
	uow     ports.UnitOfWork
	logger  *slog.Logger
}

// NewService creates the token service.
func NewService(repos ports.RepositoryResolver, checker *consistency.Checker, uow ports.UnitOfWork, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repos: repos, checker: checker, uow: uow, logger: logger}
}

// Save - upsert токена пользователя. Пользователь должен существовать.
func (s *Service) Save(ctx context.Context, cmd dtos.SaveRefreshTokenCommand) (*dtos.RefreshTokenDTO, error) {
	value := strings.TrimSpace(cmd.Token)
	if value == "" {
		return nil, errors.ValidationError{Field: fieldToken, Message: "token must not be empty"}
	}

	tok, err := ports.ExecuteWithResult(ctx, s.uow, func(ctx context.Context, scope ports.Scope) (*entities.RefreshToken, error) {
		return s.SaveIn(ctx, scope, cmd.UserID, value)
	})
	if err != nil {
		return nil, err
	}
	return toDTO(tok), nil
}

// SaveIn is Save inside a caller-owned scope.
func (s *Service) SaveIn(ctx context.Context, scope ports.Scope, userID int64, value string) (*entities.RefreshToken, error) {
	if _, err := s.checker.RequireID(ctx, scope, entities.KindUser, userID); err != nil {
		return nil, err
	}
	repo, err := s.repos.Resolve(entities.KindRefreshToken, scope)
	if err != nil {
		return nil, err
	}

	byUser := entities.Criteria{entities.FieldUserID: userID}
	recs, err := repo.Find(ctx, byUser)
	if err != nil {
		return nil, err
	}
	if len(recs) > 0 {
		tok := recs[0].(*entities.RefreshToken)
		if _, err := repo.Update(ctx, tok.Key(), entities.Fields{fieldToken: value}); err != nil {
			return nil, err
		}
		tok.Token = value
		return tok, nil
	}

	tok := &entities.RefreshToken{UserID: userID, Token: value}
	if err := repo.Insert(ctx, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// FindByToken returns the stored token or NotFound("RefreshToken", "token", value).
func (s *Service) FindByToken(ctx context.Context, value string) (*dtos.RefreshTokenDTO, error) {
	rec, err := s.checker.RequireExists(ctx, s.uow.Scope(), entities.KindRefreshToken, fieldToken, value)
	if err != nil {
		return nil, err
	}
	return toDTO(rec.(*entities.RefreshToken)), nil
}

// DeleteByUserID удаляет токен пользователя (logout).
func (s *Service) DeleteByUserID(ctx context.Context, userID int64) error {
	return s.remove(ctx, entities.FieldUserID, userID)
}

// DeleteToken удаляет конкретный токен.
func (s *Service) DeleteToken(ctx context.Context, value string) error {
	return s.remove(ctx, fieldToken, value)
}

func (s *Service) remove(ctx context.Context, field string, value any) error {
	return s.uow.Execute(ctx, func(ctx context.Context, scope ports.Scope) error {
		if _, err := s.checker.RequireExists(ctx, scope, entities.KindRefreshToken, field, value); err != nil {
			return err
		}
		repo, err := s.repos.Resolve(entities.KindRefreshToken, scope)
		if err != nil {
			return err
		}
		_, err = repo.Delete(ctx, entities.Criteria{field: value})
		return err
	})
}

func toDTO(t *entities.RefreshToken) *dtos.RefreshTokenDTO {
	return &dtos.RefreshTokenDTO{ID: t.ID, UserID: t.UserID, Token: t.Token}
}
