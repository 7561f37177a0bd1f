// Package storemock is a function-field test double for the loan
// store. Unset hooks behave like an empty, always-succeeding store.
package storemock

import (
	"context"

	domain "loan-tracker/internal/domain/loan"
)

type Store struct {
	LoadAllFn func(ctx context.Context) *domain.Collection
	SaveAllFn func(ctx context.Context, c *domain.Collection) error
}

func (m *Store) LoadAll(ctx context.Context) *domain.Collection {
	if m.LoadAllFn != nil {
		return m.LoadAllFn(ctx)
	}
	return domain.NewCollection()
}

func (m *Store) SaveAll(ctx context.Context, c *domain.Collection) error {
	if m.SaveAllFn != nil {
		return m.SaveAllFn(ctx, c)
	}
	return nil
}

// InMemory is a Store backed by a collection mutated in place, with
// the revision bump a real save performs.
func InMemory(c *domain.Collection) *Store {
	return &Store{
		LoadAllFn: func(context.Context) *domain.Collection { return c },
		SaveAllFn: func(_ context.Context, saved *domain.Collection) error {
			saved.Revision++
			return nil
		},
	}
}
