package product

import (
	"context"
	"strings"
	"time"

	"github.com/Haleralex/storehub/internal/application/dtos"
	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/domain/entities"
	"github.com/Haleralex/storehub/internal/domain/errors"
	"github.com/Haleralex/storehub/internal/domain/valueobjects"
)

// Update применяет частичное обновление товара.
//
// Проверка дубликата выполняется только если payload затрагивает
// product_name; неизменённое собственное имя коллизией не считается.
// Пустые CategoryName/VendorName отвязывают товар от справочника.
func (s *Service) Update(ctx context.Context, cmd dtos.UpdateProductCommand) (*dtos.ProductDTO, error) {
	patch, err := columnPatch(cmd)
	if err != nil {
		return nil, err
	}

	p, err := ports.ExecuteWithResult(ctx, s.uow, func(ctx context.Context, scope ports.Scope) (*entities.Product, error) {
		existing, err := s.checker.RequireID(ctx, scope, entities.KindProduct, cmd.ProductID)
		if err != nil {
			return nil, err
		}

		if cmd.CategoryName != nil {
			patch[entities.FieldCategoryID] = nil
			if name := strings.TrimSpace(*cmd.CategoryName); name != "" {
				c, err := s.catalog.Categories.GetByName(ctx, scope, name)
				if err != nil {
					return nil, err
				}
				patch[entities.FieldCategoryID] = c.ID
			}
		}
		if cmd.VendorName != nil {
			patch[entities.FieldVendorID] = nil
			if name := strings.TrimSpace(*cmd.VendorName); name != "" {
				v, err := s.catalog.Vendors.GetByName(ctx, scope, name)
				if err != nil {
					return nil, err
				}
				patch[entities.FieldVendorID] = v.ID
			}
		}

		if err := s.checker.CheckUpdate(ctx, scope, existing, patch); err != nil {
			return nil, err
		}

		if len(patch) > 0 {
			patch["updated_at"] = time.Now().UTC()
			products, err := s.products(scope)
			if err != nil {
				return nil, err
			}
			if _, err := products.Update(ctx, entities.ByID(cmd.ProductID), patch); err != nil {
				return nil, err
			}
		}

		scope.AfterCommit(func(ctx context.Context) {
			s.invalidate(ctx, cmd.ProductID)
		})
		return s.load(ctx, scope, cmd.ProductID)
	})
	if err != nil {
		return nil, err
	}

	dto := dtos.ToProductDTO(p)
	return &dto, nil
}

// columnPatch validates scalar fields of cmd and converts them to columns.
func columnPatch(cmd dtos.UpdateProductCommand) (entities.Fields, error) {
	var verrs errors.ValidationErrors
	patch := entities.Fields{}

	if cmd.ProductName != nil {
		name := strings.TrimSpace(*cmd.ProductName)
		if name == "" {
			verrs.Add("product_name", errors.ErrEmptyName.Error())
		}
		patch["product_name"] = name
	}
	if cmd.Description != nil {
		patch["description"] = *cmd.Description
	}
	if cmd.Price != nil {
		price, err := valueobjects.NewPrice(*cmd.Price)
		if err != nil {
			verrs.Add("price", err.Error())
		} else {
			patch["price"] = price.Decimal()
		}
	}
	if cmd.Quantity != nil {
		if *cmd.Quantity < 0 {
			verrs.Add("quantity", errors.ErrInvalidQuantity.Error())
		}
		patch["quantity"] = *cmd.Quantity
	}
	if cmd.IsActive != nil {
		patch["is_active"] = *cmd.IsActive
	}

	if verrs.HasErrors() {
		return nil, verrs
	}
	return patch, nil
}
