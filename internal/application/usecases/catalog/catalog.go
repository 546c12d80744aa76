package catalog

import (
	"log/slog"

	"github.com/Haleralex/storehub/internal/application/consistency"
	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/domain/entities"
)

// Services - все справочники каталога.
type Services struct {
	Categories *Directory[*entities.Category]
	Vendors    *Directory[*entities.Vendor]
	Attributes *Directory[*entities.Attribute]
	Roles      *Directory[*entities.Role]
}

// NewServices wires the four directories over the same registry and UnitOfWork.
func NewServices(
	repos ports.RepositoryResolver,
	checker *consistency.Checker,
	unbinder *consistency.Unbinder,
	uow ports.UnitOfWork,
	logger *slog.Logger,
) *Services {
	return &Services{
		Categories: NewDirectory[*entities.Category](entities.KindCategory, "category_name", repos, checker, unbinder, uow, logger),
		Vendors:    NewDirectory[*entities.Vendor](entities.KindVendor, "company_name", repos, checker, unbinder, uow, logger),
		Attributes: NewDirectory[*entities.Attribute](entities.KindAttribute, "attribute_name", repos, checker, unbinder, uow, logger),
		Roles:      NewDirectory[*entities.Role](entities.KindRole, "value", repos, checker, unbinder, uow, logger),
	}
}
