package product

import (
	"context"
	"encoding/json"

	"github.com/Haleralex/storehub/internal/application/dtos"
	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/domain/entities"
)

// load fetches the product with Category, Vendor, Photos and Attributes.
func (s *Service) load(ctx context.Context, scope ports.Scope, id int64) (*entities.Product, error) {
	rec, err := s.checker.RequireID(ctx, scope, entities.KindProduct, id)
	if err != nil {
		return nil, err
	}
	p, err := entities.As[*entities.Product](rec)
	if err != nil {
		return nil, err
	}

	if p.CategoryID != nil {
		if p.Category, err = s.catalog.Categories.GetByID(ctx, scope, *p.CategoryID); err != nil {
			return nil, err
		}
	}
	if p.VendorID != nil {
		if p.Vendor, err = s.catalog.Vendors.GetByID(ctx, scope, *p.VendorID); err != nil {
			return nil, err
		}
	}
	if p.Photos, err = s.photos.ListByOwner(ctx, scope, entities.FieldProductID, id); err != nil {
		return nil, err
	}
	if p.Attributes, err = s.links.GetLinks(ctx, scope, id); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns the full product view. The view is served from the cache when possible.
func (s *Service) Get(ctx context.Context, id int64) (*dtos.ProductDTO, error) {
	if payload, ok, err := s.cache.Get(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "product cache read failed", "product_id", id, "error", err)
	} else if ok {
		var dto dtos.ProductDTO
		if err := json.Unmarshal(payload, &dto); err == nil {
			return &dto, nil
		}
		s.logger.WarnContext(ctx, "corrupt product cache entry", "product_id", id)
	}

	p, err := s.load(ctx, s.uow.Scope(), id)
	if err != nil {
		return nil, err
	}
	dto := dtos.ToProductDTO(p)

	if payload, err := json.Marshal(dto); err == nil {
		if err := s.cache.Set(ctx, id, payload, s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "product cache write failed", "product_id", id, "error", err)
		}
	}
	return &dto, nil
}

// List returns a page of products with their relations.
func (s *Service) List(ctx context.Context, q dtos.ListQuery) ([]dtos.ProductDTO, error) {
	scope := s.uow.Scope()
	repo, err := s.products(scope)
	if err != nil {
		return nil, err
	}
	recs, err := repo.Find(ctx)
	if err != nil {
		return nil, err
	}
	from, to := q.Window(len(recs))

	result := make([]dtos.ProductDTO, 0, to-from)
	for _, rec := range recs[from:to] {
		p, err := s.load(ctx, scope, rec.(entities.Identifiable).GetID())
		if err != nil {
			return nil, err
		}
		result = append(result, dtos.ToProductDTO(p))
	}
	return result, nil
}

// invalidate drops the cached view. Failures are logged.
func (s *Service) invalidate(ctx context.Context, id int64) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "product cache invalidation failed", "product_id", id, "error", err)
	}
}
