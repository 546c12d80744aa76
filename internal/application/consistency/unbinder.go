package consistency

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Haleralex/storehub/internal/application/ports"
	"github.com/Haleralex/storehub/internal/domain/entities"
	domainerrors "github.com/Haleralex/storehub/internal/domain/errors"
)

// Mode - что сделать с зависимой записью при удалении родителя.
type Mode string

const (
	// Detach обнуляет FK: историческая запись переживает родителя.
	Detach Mode = "detach"
	// Remove удаляет зависимую запись.
	Remove Mode = "remove"
)

// Relation describes one dependent kind of a parent kind.
type Relation struct {
	Kind       entities.Kind
	ForeignKey string
	Mode       Mode
}

// DefaultRelations - зависимости по умолчанию.
// Comment и Transaction отвязываются, Photo, ProductAttribute и RefreshToken удаляются.
// Товары переживают удаление своей категории или поставщика.
func DefaultRelations() map[entities.Kind][]Relation {
	return map[entities.Kind][]Relation{
		entities.KindCategory: {
			{Kind: entities.KindProduct, ForeignKey: entities.FieldCategoryID, Mode: Detach},
		},
		entities.KindVendor: {
			{Kind: entities.KindProduct, ForeignKey: entities.FieldVendorID, Mode: Detach},
		},
		entities.KindAttribute: {
			{Kind: entities.KindProductAttribute, ForeignKey: entities.FieldAttributeID, Mode: Remove},
		},
		entities.KindRole: {
			{Kind: entities.KindUserRole, ForeignKey: entities.FieldRoleID, Mode: Remove},
		},
		entities.KindProduct: {
			{Kind: entities.KindComment, ForeignKey: entities.FieldProductID, Mode: Detach},
			{Kind: entities.KindTransaction, ForeignKey: entities.FieldProductID, Mode: Detach},
			{Kind: entities.KindProductAttribute, ForeignKey: entities.FieldProductID, Mode: Remove},
			{Kind: entities.KindPhoto, ForeignKey: entities.FieldProductID, Mode: Remove},
		},
		entities.KindUser: {
			{Kind: entities.KindComment, ForeignKey: entities.FieldUserID, Mode: Detach},
			{Kind: entities.KindTransaction, ForeignKey: entities.FieldUserID, Mode: Detach},
			{Kind: entities.KindPhoto, ForeignKey: entities.FieldUserID, Mode: Remove},
			{Kind: entities.KindRefreshToken, ForeignKey: entities.FieldUserID, Mode: Remove},
			{Kind: entities.KindUserRole, ForeignKey: entities.FieldUserID, Mode: Remove},
		},
	}
}

// UnbindFunc replaces the default handling of one (parent, related) pair.
// It must run in the given scope and return the affected row count.
type UnbindFunc func(ctx context.Context, scope ports.Scope, parentID int64) (int64, error)

type pair struct {
	parent  entities.Kind
	related entities.Kind
}

// Unbinder - каскадное отвязывание зависимых записей.
//
// Вызывается ДО удаления родителя и в том же scope: физический FK
// иначе заблокировал бы удаление родительской строки.
type Unbinder struct {
	repos     ports.RepositoryResolver
	relations map[entities.Kind][]Relation
	handlers  map[pair]UnbindFunc
	logger    *slog.Logger
}

// NewUnbinder creates an Unbinder with DefaultRelations.
func NewUnbinder(repos ports.RepositoryResolver, logger *slog.Logger) *Unbinder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Unbinder{
		repos:     repos,
		relations: DefaultRelations(),
		handlers:  make(map[pair]UnbindFunc),
		logger:    logger,
	}
}

// Handle registers fn for the (parent, related) pair.
// Photo service uses it to also schedule file deletion after commit.
func (u *Unbinder) Handle(parent, related entities.Kind, fn UnbindFunc) {
	u.handlers[pair{parent, related}] = fn
}

// Relations returns the dependents registered for parent.
func (u *Unbinder) Relations(parent entities.Kind) []Relation {
	return append([]Relation(nil), u.relations[parent]...)
}

// Unbind detaches or removes rows of related kind referencing parent parentID.
func (u *Unbinder) Unbind(ctx context.Context, scope ports.Scope, parent entities.Kind, parentID int64, related entities.Kind) (int64, error) {
	rel, ok := u.find(parent, related)
	if !ok {
		return 0, domainerrors.NewInvalidArgument("Unbinder.Unbind",
			fmt.Sprintf("%s is not a dependent of %s", related, parent))
	}

	var (
		n   int64
		err error
	)
	if fn, ok := u.handlers[pair{parent, related}]; ok {
		n, err = fn(ctx, scope, parentID)
	} else {
		n, err = u.apply(ctx, scope, rel, parentID)
	}
	if err != nil {
		return 0, err
	}

	unboundRows.WithLabelValues(string(parent), string(related), string(rel.Mode)).Add(float64(n))
	u.logger.DebugContext(ctx, "dependents unbound",
		slog.String("parent", string(parent)),
		slog.Int64("parent_id", parentID),
		slog.String("related", string(related)),
		slog.String("mode", string(rel.Mode)),
		slog.Int64("rows", n),
	)
	return n, nil
}

// UnbindAll runs Unbind for every dependent of parent, in registration order.
// Returns affected rows per related kind.
func (u *Unbinder) UnbindAll(ctx context.Context, scope ports.Scope, parent entities.Kind, parentID int64) (map[entities.Kind]int64, error) {
	report := make(map[entities.Kind]int64)
	for _, rel := range u.relations[parent] {
		n, err := u.Unbind(ctx, scope, parent, parentID, rel.Kind)
		if err != nil {
			return nil, err
		}
		report[rel.Kind] = n
	}
	return report, nil
}

func (u *Unbinder) find(parent, related entities.Kind) (Relation, bool) {
	for _, rel := range u.relations[parent] {
		if rel.Kind == related {
			return rel, true
		}
	}
	return Relation{}, false
}

func (u *Unbinder) apply(ctx context.Context, scope ports.Scope, rel Relation, parentID int64) (int64, error) {
	repo, err := u.repos.Resolve(rel.Kind, scope)
	if err != nil {
		return 0, err
	}
	where := entities.Criteria{rel.ForeignKey: parentID}
	switch rel.Mode {
	case Detach:
		return repo.Update(ctx, where, entities.Fields{rel.ForeignKey: nil})
	case Remove:
		return repo.Delete(ctx, where)
	default:
		return 0, domainerrors.NewConfigurationError("Unbinder.apply", "unknown mode "+string(rel.Mode))
	}
}
