package campus

import (
	"context"
	"sync"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Roles interface {
	repository.Repository[*Role]

	GetByName(ctx context.Context, name UserRole) (*Role, error)
	GetByNameTx(ctx context.Context, tx bun.IDB, name UserRole) (*Role, error)
	MustResolve(ctx context.Context) error
	IDFor(name UserRole) (uuid.UUID, bool)
}

type roles struct {
	repository.Repository[*Role]
	db *bun.DB

	mu    sync.RWMutex
	byID  map[uuid.UUID]UserRole
	cache map[UserRole]uuid.UUID
}

var _ Roles = (*roles)(nil)

func NewRolesRepository(db *bun.DB) Roles {
	repo := repository.NewRepository[*Role](db, repository.ModelHandlers[*Role]{
		NewRecord: func() *Role { return &Role{} },
		GetID: func(r *Role) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *Role, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
		GetIdentifier: func() string {
			return "name"
		},
	})

	return &roles{
		Repository: repo,
		db:         db,
		byID:       map[uuid.UUID]UserRole{},
		cache:      map[UserRole]uuid.UUID{},
	}
}

func (r *roles) GetByName(ctx context.Context, name UserRole) (*Role, error) {
	return r.GetByNameTx(ctx, r.db, name)
}

func (r *roles) GetByNameTx(ctx context.Context, tx bun.IDB, name UserRole) (*Role, error) {
	record := &Role{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.name = ?", name).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"name": name,
				})
		}
		return nil, err
	}

	return record, nil
}

// MustResolve loads the seeded role rows into the in memory lookup. Roles are
// immutable at runtime so the cache is warmed once at startup. A missing seed
// row is a deployment error.
func (r *roles) MustResolve(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range GetAllRoles() {
		record, err := r.GetByNameTx(ctx, r.db, name)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "system role not seeded").
				WithMetadata(map[string]any{
					"role": name,
				})
		}
		r.cache[name] = record.ID
		r.byID[record.ID] = name
	}

	return nil
}

// IDFor resolves a role name to its row id from the warmed cache
func (r *roles) IDFor(name UserRole) (uuid.UUID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.cache[name]
	return id, ok
}
