package product

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Haleralex/storehub/internal/application/compensation"
	"github.com/Haleralex/storehub/internal/application/dtos"
	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/domain/entities"
	"github.com/Haleralex/storehub/internal/domain/errors"
	"github.com/Haleralex/storehub/internal/domain/events"
	"github.com/Haleralex/storehub/internal/domain/valueobjects"
)

// Шаги composition workflow (span events).
const (
	StepDuplicateChecked   = "duplicate_checked"
	StepCategoryResolved   = "category_resolved"
	StepVendorResolved     = "vendor_resolved"
	StepAttributesResolved = "attributes_resolved"
	StepPhotosPersisted    = "photos_persisted"
	StepRowInserted        = "row_inserted"
	StepRelationsWired     = "relations_wired"
)

type resolvedAttribute struct {
	attr  *entities.Attribute
	value string
}

// Create выполняет product composition workflow.
//
// Сценарий (один UnitOfWork, шаги строго последовательно):
// 1. Проверить product_name на дубликат
// 2. Найти Category по имени
// 3. Найти Vendor по company_name
// 4. Найти все атрибуты по имени (первый неизвестный -> NotFound)
// 5. Сохранить фотографии (файл + строка Photo)
// 6. Вставить строку Product
// 7. Проставить category_id/vendor_id, привязать фото, создать ProductAttribute
// 8. Перечитать товар со всеми связями
//
// Errors:
//   - ValidationError: невалидные поля команды
//   - NotFoundError: неизвестная категория, поставщик или атрибут
//   - DuplicateError: product_name занят
//   - InfrastructureError: сбой хранилища
//
// При любой ошибке транзакция откатывается, затем сохранённые файлы удаляются.
func (s *Service) Create(ctx context.Context, cmd dtos.CreateProductCommand) (*dtos.ProductDTO, error) {
	ctx, span := s.tracer.Start(ctx, "product.create",
		trace.WithAttributes(
			attribute.String("product.name", cmd.ProductName),
			attribute.Int("product.photos", len(cmd.Photos)),
		))
	defer span.End()

	price, err := valueobjects.NewPrice(cmd.Price)
	if err != nil {
		return nil, s.fail(span, errors.ValidationError{Field: "price", Message: err.Error()})
	}
	product, err := entities.NewProduct(cmd.ProductName, cmd.Description, price.Decimal(), cmd.Quantity)
	if err != nil {
		return nil, s.fail(span, err)
	}

	var (
		comp    compensation.List
		created *entities.Product
	)
	err = compensation.Guard(ctx, &comp, s.logger, func() error {
		return s.uow.Execute(ctx, func(ctx context.Context, scope ports.Scope) error {
			// UnitOfWork может повторить callback: файлы прошлой попытки
			// уже не нужны, строка товара собирается заново.
			comp.Run(ctx, s.logger)
			attempt := *product

			full, err := s.compose(ctx, scope, span, &comp, &attempt, cmd)
			if err != nil {
				return err
			}
			created = full

			scope.AfterCommit(func(ctx context.Context) {
				s.publish(ctx, events.NewProductCreated(full.ID, full.ProductName, full.CategoryID, full.VendorID, len(full.Photos)))
			})
			return nil
		})
	})
	if err != nil {
		return nil, s.fail(span, err)
	}

	span.SetAttributes(attribute.Int64("product.id", created.ID))
	s.logger.InfoContext(ctx, "product created",
		"product_id", created.ID,
		"product_name", created.ProductName,
		"photos", len(created.Photos),
		"attributes", len(created.Attributes),
	)

	dto := dtos.ToProductDTO(created)
	return &dto, nil
}

func (s *Service) compose(
	ctx context.Context,
	scope ports.Scope,
	span trace.Span,
	comp *compensation.List,
	product *entities.Product,
	cmd dtos.CreateProductCommand,
) (*entities.Product, error) {
	// 1. Дубликат по product_name - раньше любых внешних эффектов
	if err := s.checker.CheckCreate(ctx, scope, product); err != nil {
		return nil, err
	}
	span.AddEvent(StepDuplicateChecked)

	// 2-3. Справочники
	category, err := s.catalog.Categories.GetByName(ctx, scope, cmd.CategoryName)
	if err != nil {
		return nil, err
	}
	span.AddEvent(StepCategoryResolved)

	vendor, err := s.catalog.Vendors.GetByName(ctx, scope, cmd.VendorName)
	if err != nil {
		return nil, err
	}
	span.AddEvent(StepVendorResolved)

	// 4. Атрибуты: все или ничего
	names := make([]string, 0, len(cmd.Attributes))
	for name := range cmd.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	resolved := make([]resolvedAttribute, 0, len(names))
	for _, name := range names {
		attr, err := s.catalog.Attributes.GetByName(ctx, scope, name)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, resolvedAttribute{attr: attr, value: cmd.Attributes[name]})
	}
	span.AddEvent(StepAttributesResolved)

	// 5. Фотографии: каждый сохранённый файл регистрирует компенсацию
	photoIDs := make([]int64, 0, len(cmd.Photos))
	for _, upload := range cmd.Photos {
		p, err := s.photos.Create(ctx, scope, comp, upload)
		if err != nil {
			return nil, err
		}
		photoIDs = append(photoIDs, p.ID)
	}
	span.AddEvent(StepPhotosPersisted, trace.WithAttributes(attribute.Int("count", len(photoIDs))))

	// 6. Строка товара
	products, err := s.products(scope)
	if err != nil {
		return nil, err
	}
	if err := products.Insert(ctx, product); err != nil {
		return nil, err
	}
	span.AddEvent(StepRowInserted)

	// 7. Связи
	if _, err := products.Update(ctx, entities.ByID(product.ID), entities.Fields{
		entities.FieldCategoryID: category.ID,
		entities.FieldVendorID:   vendor.ID,
	}); err != nil {
		return nil, err
	}
	if err := s.photos.Attach(ctx, scope, photoIDs, entities.FieldProductID, product.ID); err != nil {
		return nil, err
	}
	for _, ra := range resolved {
		if _, err := s.links.AddResolved(ctx, scope, product.ID, ra.attr, ra.value); err != nil {
			return nil, err
		}
	}
	span.AddEvent(StepRelationsWired)

	// 8. Полное представление
	return s.load(ctx, scope, product.ID)
}

// fail records err on the span and returns it unchanged.
func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// publish is best effort: the operation has already committed.
func (s *Service) publish(ctx context.Context, event events.DomainEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event",
			"event_type", event.EventType(),
			"aggregate_id", event.AggregateID(),
			"error", err,
		)
	}
}
