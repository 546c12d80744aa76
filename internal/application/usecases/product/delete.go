package product

import (
	"context"

	"github.com/Haleralex/storehub/internal/application/dtos"
	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/domain/entities"
	"github.com/Haleralex/storehub/internal/domain/events"
)

// Delete удаляет товар вместе с зависимыми записями.
//
// Порядок внутри одной транзакции:
// 1. Товар должен существовать
// 2. Photo и ProductAttribute удаляются, Comment и Transaction отвязываются
// 3. Удаляется строка товара
//
// Файлы фотографий стираются после commit (photo service hook).
func (s *Service) Delete(ctx context.Context, id int64) (*dtos.DeleteResultDTO, error) {
	ctx, span := s.tracer.Start(ctx, "product.delete")
	defer span.End()

	result, err := ports.ExecuteWithResult(ctx, s.uow, func(ctx context.Context, scope ports.Scope) (*dtos.DeleteResultDTO, error) {
		rec, err := s.checker.RequireID(ctx, scope, entities.KindProduct, id)
		if err != nil {
			return nil, err
		}
		product, err := entities.As[*entities.Product](rec)
		if err != nil {
			return nil, err
		}

		report, err := s.unbinder.UnbindAll(ctx, scope, entities.KindProduct, id)
		if err != nil {
			return nil, err
		}

		products, err := s.products(scope)
		if err != nil {
			return nil, err
		}
		if _, err := products.Delete(ctx, entities.ByID(id)); err != nil {
			return nil, err
		}

		scope.AfterCommit(func(ctx context.Context) {
			s.invalidate(ctx, id)
			s.publish(ctx, events.NewProductDeleted(id, product.ProductName))
		})

		unbound := make(map[string]int64, len(report))
		for kind, n := range report {
			unbound[string(kind)] = n
		}
		return &dtos.DeleteResultDTO{ID: id, Unbound: unbound}, nil
	})
	if err != nil {
		return nil, s.fail(span, err)
	}

	s.logger.InfoContext(ctx, "product deleted", "product_id", id, "unbound", result.Unbound)
	return result, nil
}
