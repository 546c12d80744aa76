// Package attribute - значения атрибутов товара (ProductAttribute).
//
// Все scope-методы работают в переданной области и ничего не коммитят
// сами: их вызывает product workflow и unbinder внутри своей транзакции.
// List/Add/Change/Remove - границы для HTTP слоя.
package attribute

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Haleralex/storehub/internal/application/consistency"
	"github.com/Haleralex/storehub/internal/application/dtos"
	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/application/usecases/catalog"
	"github.com/Haleralex/storehub/internal/domain/entities"
	domainerrors "github.com/Haleralex/storehub/internal/domain/errors"
)

// LinkService управляет связями Product<->Attribute.
type LinkService struct {
	repos      ports.RepositoryResolver
	attributes *catalog.Directory[*entities.Attribute]
	checker    *consistency.Checker
	uow        ports.UnitOfWork
	logger     *slog.Logger
}

// NewLinkService creates a LinkService.
func NewLinkService(
	repos ports.RepositoryResolver,
	attributes *catalog.Directory[*entities.Attribute],
	checker *consistency.Checker,
	uow ports.UnitOfWork,
	logger *slog.Logger,
) *LinkService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinkService{
		repos:      repos,
		attributes: attributes,
		checker:    checker,
		uow:        uow,
		logger:     logger,
	}
}

func (s *LinkService) links(scope ports.Scope) (ports.Repository, error) {
	return s.repos.Resolve(entities.KindProductAttribute, scope)
}

// GetLinks loads every link of the product with its Attribute.
// Fails NotFound when the product does not exist.
func (s *LinkService) GetLinks(ctx context.Context, scope ports.Scope, productID int64) ([]*entities.ProductAttribute, error) {
	if _, err := s.checker.RequireID(ctx, scope, entities.KindProduct, productID); err != nil {
		return nil, err
	}

	repo, err := s.links(scope)
	if err != nil {
		return nil, err
	}
	recs, err := repo.Find(ctx, entities.Criteria{entities.FieldProductID: productID})
	if err != nil {
		return nil, err
	}
	links, err := entities.AsSlice[*entities.ProductAttribute](recs)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return links, nil
	}

	// один запрос за всеми атрибутами
	criteria := make([]entities.Criteria, 0, len(links))
	for _, l := range links {
		criteria = append(criteria, entities.ByID(l.AttributeID))
	}
	attrRepo, err := s.repos.Resolve(entities.KindAttribute, scope)
	if err != nil {
		return nil, err
	}
	attrRecs, err := attrRepo.Find(ctx, criteria...)
	if err != nil {
		return nil, err
	}
	attrs, err := entities.AsSlice[*entities.Attribute](attrRecs)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*entities.Attribute, len(attrs))
	for _, a := range attrs {
		byID[a.ID] = a
	}
	for _, l := range links {
		l.Attribute = byID[l.AttributeID]
	}
	return links, nil
}

// AddLink resolves attributeName and inserts the (product, attribute) link.
// Fails NotFound for an unknown attribute and Duplicate when the pair exists.
func (s *LinkService) AddLink(ctx context.Context, scope ports.Scope, productID int64, attributeName, value string) (*entities.ProductAttribute, error) {
	attr, err := s.attributes.GetByName(ctx, scope, attributeName)
	if err != nil {
		return nil, err
	}
	return s.AddResolved(ctx, scope, productID, attr, value)
}

// AddResolved inserts a link for an already resolved attribute.
func (s *LinkService) AddResolved(ctx context.Context, scope ports.Scope, productID int64, attr *entities.Attribute, value string) (*entities.ProductAttribute, error) {
	link := &entities.ProductAttribute{
		ProductID:   productID,
		AttributeID: attr.ID,
		Value:       value,
	}
	if err := s.checker.CheckCreate(ctx, scope, link); err != nil {
		return nil, err
	}

	repo, err := s.links(scope)
	if err != nil {
		return nil, err
	}
	if err := repo.Insert(ctx, link); err != nil {
		return nil, err
	}
	link.Attribute = attr
	return link, nil
}

// UpdateLink overwrites the value of an existing link.
func (s *LinkService) UpdateLink(ctx context.Context, scope ports.Scope, productID int64, attributeName, value string) (*entities.ProductAttribute, error) {
	attr, err := s.attributes.GetByName(ctx, scope, attributeName)
	if err != nil {
		return nil, err
	}

	repo, err := s.links(scope)
	if err != nil {
		return nil, err
	}
	key := entities.Criteria{entities.FieldProductID: productID, entities.FieldAttributeID: attr.ID}
	n, err := repo.Update(ctx, key, entities.Fields{"value": value})
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, linkNotFound(productID, attributeName)
	}
	return &entities.ProductAttribute{
		ProductID:   productID,
		AttributeID: attr.ID,
		Value:       value,
		Attribute:   attr,
	}, nil
}

// DeleteLink removes one link. Returns the number of removed rows (0 or 1).
func (s *LinkService) DeleteLink(ctx context.Context, scope ports.Scope, productID int64, attributeName string) (int64, error) {
	attr, err := s.attributes.GetByName(ctx, scope, attributeName)
	if err != nil {
		return 0, err
	}
	repo, err := s.links(scope)
	if err != nil {
		return 0, err
	}
	return repo.Delete(ctx, entities.Criteria{entities.FieldProductID: productID, entities.FieldAttributeID: attr.ID})
}

// DeleteAllLinksForProduct removes every link of the product.
func (s *LinkService) DeleteAllLinksForProduct(ctx context.Context, scope ports.Scope, productID int64) (int64, error) {
	repo, err := s.links(scope)
	if err != nil {
		return 0, err
	}
	return repo.Delete(ctx, entities.Criteria{entities.FieldProductID: productID})
}

// Register makes the unbinder remove product links through this service.
func (s *LinkService) Register(u *consistency.Unbinder) {
	u.Handle(entities.KindProduct, entities.KindProductAttribute, s.DeleteAllLinksForProduct)
}

func linkNotFound(productID int64, attributeName string) error {
	err := domainerrors.NewNotFound(string(entities.KindProductAttribute), "attribute_name", attributeName)
	err.Message = fmt.Sprintf("ProductAttribute with given [product_id=%d + attribute_name=%s] not found", productID, attributeName)
	return err
}

// ============================================
// Boundary use cases
// ============================================

// List returns the links of a product.
func (s *LinkService) List(ctx context.Context, productID int64) ([]dtos.ProductAttributeDTO, error) {
	links, err := s.GetLinks(ctx, s.uow.Scope(), productID)
	if err != nil {
		return nil, err
	}
	return dtos.ToProductAttributeDTOList(links), nil
}

// Add links an attribute to an existing product.
func (s *LinkService) Add(ctx context.Context, cmd dtos.LinkCommand) (*dtos.ProductAttributeDTO, error) {
	return s.mutate(ctx, cmd, s.AddLink)
}

// Change updates the value of an existing link.
func (s *LinkService) Change(ctx context.Context, cmd dtos.LinkCommand) (*dtos.ProductAttributeDTO, error) {
	return s.mutate(ctx, cmd, s.UpdateLink)
}

// Remove deletes a link; the link must exist.
func (s *LinkService) Remove(ctx context.Context, cmd dtos.LinkCommand) error {
	return s.uow.Execute(ctx, func(ctx context.Context, scope ports.Scope) error {
		if _, err := s.checker.RequireID(ctx, scope, entities.KindProduct, cmd.ProductID); err != nil {
			return err
		}
		n, err := s.DeleteLink(ctx, scope, cmd.ProductID, cmd.AttributeName)
		if err != nil {
			return err
		}
		if n == 0 {
			return linkNotFound(cmd.ProductID, cmd.AttributeName)
		}
		return nil
	})
}

type linkOp func(ctx context.Context, scope ports.Scope, productID int64, attributeName, value string) (*entities.ProductAttribute, error)

func (s *LinkService) mutate(ctx context.Context, cmd dtos.LinkCommand, op linkOp) (*dtos.ProductAttributeDTO, error) {
	link, err := ports.ExecuteWithResult(ctx, s.uow, func(ctx context.Context, scope ports.Scope) (*entities.ProductAttribute, error) {
		if _, err := s.checker.RequireID(ctx, scope, entities.KindProduct, cmd.ProductID); err != nil {
			return nil, err
		}
		return op(ctx, scope, cmd.ProductID, cmd.AttributeName, cmd.Value)
	})
	if err != nil {
		return nil, err
	}
	dto := dtos.ToProductAttributeDTO(link)
	return &dto, nil
}
