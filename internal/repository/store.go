package repository

import (
	"context"
	"database/sql"
)

// Store bundles the catalog repositories behind a single access point and
// provides transaction scoping for multi-step mutations.
type Store interface {
	Products() ProductRepository
	Categories() CategoryRepository
	Images() ImageRepository

	// WithinTx runs fn with a Store whose repositories are bound to one
	// transaction. If fn returns an error nothing is persisted.
	WithinTx(ctx context.Context, fn func(Store) error) error
}

type store struct {
	db *sql.DB
	q  Querier
}

// NewStore creates a Store backed by the given database handle.
func NewStore(db *sql.DB) Store {
	return &store{db: db, q: db}
}

func (s *store) Products() ProductRepository {
	return NewProductRepository(s.q)
}

func (s *store) Categories() CategoryRepository {
	return NewCategoryRepository(s.q)
}

func (s *store) Images() ImageRepository {
	return NewImageRepository(s.q)
}

func (s *store) WithinTx(ctx context.Context, fn func(Store) error) error {
	return WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(&store{db: s.db, q: tx})
	})
}
